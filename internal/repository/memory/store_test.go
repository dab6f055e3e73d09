package memory

import (
	"context"
	"errors"
	"testing"

	"fieldstock/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errAbort = errors.New("abort")

// openTx starts a transaction that debits n950 boxes of technician 1's
// moving pool and then blocks until release yields its result.
func openTx(t *testing.T, s *Store, release <-chan error) (started <-chan struct{}, done <-chan error) {
	t.Helper()
	startedCh := make(chan struct{})
	doneCh := make(chan error, 1)
	go func() {
		doneCh <- s.WithinTransaction(context.Background(), func(tx *goqu.TxDatabase) error {
			record, err := s.LockRecord(context.Background(), tx, models.PoolTechnicianMoving, 1)
			if err != nil {
				close(startedCh)
				return err
			}
			record.Set("n950", models.PackagingBox, 9)
			if err := s.SaveRecord(context.Background(), tx, record); err != nil {
				close(startedCh)
				return err
			}
			close(startedCh)
			return <-release
		})
	}()
	return startedCh, doneCh
}

func movingBoxes(t *testing.T, s *Store) int {
	t.Helper()
	record, err := s.LoadRecord(context.Background(), models.PoolTechnicianMoving, 1)
	require.NoError(t, err)
	return record.Get("n950", models.PackagingBox)
}

func TestAuditEventSurvivesConcurrentRollback(t *testing.T) {
	s := NewStore()
	release := make(chan error)
	started, done := openTx(t, s, release)
	<-started

	written := make(chan error, 1)
	go func() {
		written <- s.Write(context.Background(), models.AuditLog{ResourceID: 5, ResourceType: "warehouse", Action: "receive"})
	}()

	release <- errAbort
	require.ErrorIs(t, <-done, errAbort)
	require.NoError(t, <-written)

	events := s.Events()
	require.Len(t, events, 1)
	assert.Equal(t, int64(5), events[0].ResourceID)
}

func TestUncommittedWritesAreInvisible(t *testing.T) {
	tests := []struct {
		name    string
		outcome error
		want    int
	}{
		{"rollback discards the change", errAbort, 3},
		{"commit publishes the change", nil, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			s.SeedPool(models.PoolTechnicianMoving, 1, "n950", models.PackagingBox, 3)

			release := make(chan error)
			started, done := openTx(t, s, release)
			<-started

			assert.Equal(t, 3, movingBoxes(t, s), "reads outside the transaction see committed state")

			release <- tt.outcome
			assert.ErrorIs(t, <-done, tt.outcome)
			assert.Equal(t, tt.want, movingBoxes(t, s))
		})
	}
}

func TestTransactionSeesItsOwnWrites(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	w, err := s.CreateWarehouse(ctx, models.CreateWarehouseRequest{Name: "North"})
	require.NoError(t, err)

	err = s.WithinTransaction(ctx, func(tx *goqu.TxDatabase) error {
		req := &models.InventoryRequest{TechnicianID: 4, Status: "pending"}
		if err := s.InsertRequest(ctx, tx, req); err != nil {
			return err
		}
		locked, err := s.LockRequest(ctx, tx, req.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, int64(4), locked.TechnicianID)

		_, err = s.GetRequest(ctx, req.ID)
		assert.Error(t, err, "uncommitted request is not visible outside the transaction")

		_, err = s.LockRecord(ctx, tx, models.PoolWarehouse, w.ID)
		return err
	})
	require.NoError(t, err)

	requests, err := s.ListRequests(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, requests, 1)
}

func TestListItemTypesHidesInactiveAndInvisible(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	for _, it := range []models.ItemType{
		{ID: "router", IsActive: true, IsVisible: true, SortOrder: 2},
		{ID: "modem", IsActive: true, IsVisible: true, SortOrder: 1},
		{ID: "retired", IsActive: false, IsVisible: true},
		{ID: "hidden", IsActive: true, IsVisible: false},
	} {
		_, err := s.CreateItemType(ctx, it)
		require.NoError(t, err)
	}

	list, err := s.ListItemTypes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "modem", list[0].ID)
	assert.Equal(t, "router", list[1].ID)

	_, err = s.GetItemType(ctx, "retired")
	assert.NoError(t, err, "direct lookups still return inactive types")
}
