package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	custom_error "fieldstock/pkg/errors"
	"fieldstock/pkg/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetItemType(ctx context.Context, id string) (*models.ItemType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ItemType), args.Error(1)
}

func (m *MockRepository) ListItemTypes(ctx context.Context) ([]models.ItemType, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.ItemType), args.Error(1)
}

func (m *MockRepository) CreateItemType(ctx context.Context, itemType models.ItemType) (*models.ItemType, error) {
	args := m.Called(ctx, itemType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ItemType), args.Error(1)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		id       string
		stored   *models.ItemType
		repoErr  error
		wantErr  error
		category string
	}{
		{"catalog entry", "routerX", &models.ItemType{ID: "routerX", Category: "devices", IsActive: true}, nil, nil, "devices"},
		{"legacy key absent from table", "n950", nil, custom_error.NewNotFound("item_type", "n950"), nil, "legacy"},
		{"unknown key", "laptop", nil, custom_error.NewNotFound("item_type", "laptop"), custom_error.ErrValidation, ""},
		{"inactive entry", "oldSim", &models.ItemType{ID: "oldSim", IsActive: false}, nil, custom_error.ErrValidation, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("GetItemType", ctx, tt.id).Return(tt.stored, tt.repoErr)

			itemType, err := NewCatalog(repo).Resolve(ctx, tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.category, itemType.Category)
		})
	}
}

func TestResolvePropagatesInfrastructureErrors(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetItemType", mock.Anything, "n950").Return(nil, errors.New("connection refused"))

	_, err := NewCatalog(repo).Resolve(context.Background(), "n950")
	assert.EqualError(t, err, "connection refused")
}

func TestListAddsMissingLegacyKeys(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListItemTypes", mock.Anything).Return([]models.ItemType{
		{ID: "n950", SortOrder: 1, IsActive: true, IsVisible: true},
		{ID: "routerX", SortOrder: 2, IsActive: true, IsVisible: true},
	}, nil)

	itemTypes, err := NewCatalog(repo).List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "n950", itemTypes[0].ID)
	assert.Equal(t, "routerX", itemTypes[1].ID)
	assert.Len(t, itemTypes, 11)
}

func TestCachedRepositoryFallsBackWhenRedisIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 50 * time.Millisecond,
	})
	defer client.Close()

	repo := new(MockRepository)
	repo.On("GetItemType", mock.Anything, "routerX").Return(&models.ItemType{ID: "routerX", IsActive: true}, nil)

	cached := NewCachedRepository(repo, client, time.Minute, zap.NewNop())
	itemType, err := cached.GetItemType(context.Background(), "routerX")

	require.NoError(t, err)
	assert.Equal(t, "routerX", itemType.ID)
	repo.AssertNumberOfCalls(t, "GetItemType", 1)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "item_type:stcSim", cacheKey("stcSim"))
}
