package transfers

import (
	"testing"
	"time"

	"fieldstock/pkg/metadata"
	"fieldstock/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestGroupKey(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b models.WarehouseTransfer
		same bool
	}{
		{
			name: "same request id",
			a:    models.WarehouseTransfer{ID: 1, RequestID: ptr(int64(9)), CreatedAt: base},
			b:    models.WarehouseTransfer{ID: 2, RequestID: ptr(int64(9)), CreatedAt: base.Add(time.Hour)},
			same: true,
		},
		{
			name: "different request ids",
			a:    models.WarehouseTransfer{ID: 1, RequestID: ptr(int64(9)), CreatedAt: base},
			b:    models.WarehouseTransfer{ID: 2, RequestID: ptr(int64(10)), CreatedAt: base},
			same: false,
		},
		{
			name: "legacy rows in one bucket",
			a:    models.WarehouseTransfer{ID: 1, TechnicianID: 4, WarehouseID: 2, Status: metadata.TransferPending, CreatedAt: base},
			b:    models.WarehouseTransfer{ID: 2, TechnicianID: 4, WarehouseID: 2, Status: metadata.TransferPending, CreatedAt: base.Add(3 * time.Second)},
			same: true,
		},
		{
			name: "legacy rows in different buckets",
			a:    models.WarehouseTransfer{ID: 1, TechnicianID: 4, WarehouseID: 2, Status: metadata.TransferPending, CreatedAt: base},
			b:    models.WarehouseTransfer{ID: 2, TechnicianID: 4, WarehouseID: 2, Status: metadata.TransferPending, CreatedAt: base.Add(15 * time.Second)},
			same: false,
		},
		{
			name: "legacy rows with different notes",
			a:    models.WarehouseTransfer{ID: 1, TechnicianID: 4, WarehouseID: 2, Notes: ptr("a"), CreatedAt: base},
			b:    models.WarehouseTransfer{ID: 2, TechnicianID: 4, WarehouseID: 2, Notes: ptr("b"), CreatedAt: base},
			same: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka := GroupKey(tt.a, DefaultLegacyWindow)
			kb := GroupKey(tt.b, DefaultLegacyWindow)
			assert.Equal(t, tt.same, ka == kb, "keys %q and %q", ka, kb)
		})
	}

	assert.Equal(t, "9", GroupKey(models.WarehouseTransfer{RequestID: ptr(int64(9))}, DefaultLegacyWindow))
}

func TestLegacyGroupKeyWindows(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	row := func(offset time.Duration) models.WarehouseTransfer {
		return models.WarehouseTransfer{TechnicianID: 4, WarehouseID: 2, Status: metadata.TransferPending, CreatedAt: base.Add(offset)}
	}

	tests := []struct {
		name   string
		window time.Duration
		offset time.Duration
		same   bool
	}{
		{"sub-millisecond window, same bucket", 500 * time.Microsecond, 100 * time.Microsecond, true},
		{"sub-millisecond window, next bucket", 500 * time.Microsecond, 700 * time.Microsecond, false},
		{"nanosecond window", time.Nanosecond, time.Nanosecond, false},
		{"zero window falls back to default", 0, 3 * time.Second, true},
		{"negative window falls back to default", -time.Second, 15 * time.Second, false},
		{"millisecond boundary inside default window", DefaultLegacyWindow, 9999 * time.Millisecond, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ka, kb string
			require.NotPanics(t, func() {
				ka = GroupKey(row(0), tt.window)
				kb = GroupKey(row(tt.offset), tt.window)
			})
			assert.Equal(t, tt.same, ka == kb, "keys %q and %q", ka, kb)
		})
	}
}

func TestBatchStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []metadata.TransferStatus
		want     metadata.TransferStatus
	}{
		{"empty", nil, metadata.TransferPending},
		{"all pending", []metadata.TransferStatus{metadata.TransferPending, metadata.TransferPending}, metadata.TransferPending},
		{"all accepted", []metadata.TransferStatus{metadata.TransferAccepted}, metadata.TransferAccepted},
		{"disagreeing members", []metadata.TransferStatus{metadata.TransferAccepted, metadata.TransferPending}, metadata.TransferMixed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			members := make([]models.WarehouseTransfer, 0, len(tt.statuses))
			for _, s := range tt.statuses {
				members = append(members, models.WarehouseTransfer{Status: s})
			}
			assert.Equal(t, tt.want, BatchStatus(members))
		})
	}
}

func TestGroupOrdersNewestFirst(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := []models.WarehouseTransfer{
		{ID: 3, RequestID: ptr(int64(1)), Status: metadata.TransferPending, CreatedAt: base},
		{ID: 1, RequestID: ptr(int64(1)), Status: metadata.TransferAccepted, CreatedAt: base},
		{ID: 7, RequestID: ptr(int64(2)), Status: metadata.TransferPending, CreatedAt: base.Add(time.Minute)},
		{ID: 8, TechnicianID: 5, WarehouseID: 1, Status: metadata.TransferPending, CreatedAt: base.Add(-time.Minute)},
	}

	batches := Group(rows, DefaultLegacyWindow)
	require.Len(t, batches, 3)

	assert.Equal(t, "2", batches[0].Key)
	assert.Equal(t, "1", batches[1].Key)
	assert.Equal(t, metadata.TransferMixed, batches[1].Status)
	assert.Equal(t, int64(1), batches[1].Transfers[0].ID)
	assert.Equal(t, int64(3), batches[1].Transfers[1].ID)
	assert.True(t, batches[2].Legacy)
	assert.Nil(t, batches[2].RequestID)
}
