package auditlog

import (
	"context"
	"errors"
	"testing"

	"fieldstock/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockSink struct {
	mock.Mock
}

func (m *MockSink) Name() string { return "mock" }

func (m *MockSink) Write(ctx context.Context, event models.AuditLog) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestLogFansOutToEverySink(t *testing.T) {
	failing := new(MockSink)
	working := new(MockSink)
	failing.On("Write", mock.Anything, mock.AnythingOfType("models.AuditLog")).Return(errors.New("broker down"))
	working.On("Write", mock.Anything, mock.AnythingOfType("models.AuditLog")).Return(nil)

	a := NewAuditLog(zap.NewNop(), failing, working)
	actor := int64(12)
	item := &models.InventoryRequest{ID: 5}

	event := a.Log(context.Background(), "approve", &actor, "Inventory request approved", map[string]interface{}{"warehouse_id": 2}, item)

	assert.Equal(t, "inventory_request", event.ResourceType)
	assert.Equal(t, int64(5), event.ResourceID)
	assert.Equal(t, "approve", event.Action)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, &actor, event.UserID)
	failing.AssertNumberOfCalls(t, "Write", 1)
	working.AssertNumberOfCalls(t, "Write", 1)
}

func TestLogSurvivesCancelledContext(t *testing.T) {
	sink := new(MockSink)
	sink.On("Write", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	NewAuditLog(zap.NewNop(), sink).Log(ctx, "add", nil, "Stock added", nil, &models.CentralItem{ID: 1})

	sink.AssertExpectations(t)
}
