package transfers

import (
	"context"
	"errors"
	"testing"
	"time"

	"fieldstock/internal/inventory/catalog"
	inventorylog "fieldstock/internal/inventory/inventory_log"
	"fieldstock/internal/inventory/requests"
	"fieldstock/internal/inventory/units"
	"fieldstock/internal/repository/memory"
	"fieldstock/pkg/auditlog"
	custom_error "fieldstock/pkg/errors"
	"fieldstock/pkg/metadata"
	"fieldstock/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var _ TransferRepository = (*memory.Store)(nil)

const technicianID = int64(42)

type fixture struct {
	store       *memory.Store
	requests    *requests.RequestService
	transfers   *TransferService
	warehouseID int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	logger := zap.NewNop()
	log := inventorylog.NewInventoryLog(auditlog.NewAuditLog(logger, store))

	w, err := store.CreateWarehouse(context.Background(), models.CreateWarehouseRequest{Name: "Central"})
	require.NoError(t, err)

	return fixture{
		store:       store,
		requests:    requests.NewService(store, store, store, store, catalog.NewCatalog(store), log, nil, logger),
		transfers:   NewService(store, store, store, 0, log, nil, logger),
		warehouseID: w.ID,
	}
}

func (f fixture) value(t *testing.T, kind models.PoolKind, owner int64, itemType string, packaging models.Packaging) int {
	t.Helper()
	record, err := f.store.LoadRecord(context.Background(), kind, owner)
	require.NoError(t, err)
	return record.Get(itemType, packaging)
}

func (f fixture) approve(t *testing.T, legacy map[string]int) (*models.InventoryRequest, []models.WarehouseTransfer) {
	t.Helper()
	ctx := context.Background()
	req, err := f.requests.Submit(ctx, technicianID, models.SubmitRequestInput{Legacy: legacy})
	require.NoError(t, err)
	approved, rows, err := f.requests.Approve(ctx, req.ID, f.warehouseID, 1)
	require.NoError(t, err)
	return approved, rows
}

func ids(rows []models.WarehouseTransfer) []int64 {
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestRequestRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.SeedPool(models.PoolWarehouse, f.warehouseID, "n950", models.PackagingBox, 10)

	req, rows := f.approve(t, map[string]int{"n950Boxes": 3})
	assert.Equal(t, 7, f.value(t, models.PoolWarehouse, f.warehouseID, "n950", models.PackagingBox))
	assert.Equal(t, 0, f.value(t, models.PoolTechnicianMoving, technicianID, "n950", models.PackagingBox))

	batches, err := f.transfers.ListBatches(ctx, technicianID, "pending")
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, req.ID, *batches[0].RequestID)

	accepted, err := f.transfers.AcceptBatch(ctx, ids(rows), technicianID)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, metadata.TransferAccepted, accepted[0].Status)
	assert.NotNil(t, accepted[0].RespondedAt)

	assert.Equal(t, 7, f.value(t, models.PoolWarehouse, f.warehouseID, "n950", models.PackagingBox))
	assert.Equal(t, 3, f.value(t, models.PoolTechnicianMoving, technicianID, "n950", models.PackagingBox))

	_, err = f.transfers.AcceptBatch(ctx, ids(rows), technicianID)
	var memberErr *custom_error.BatchMemberError
	require.ErrorAs(t, err, &memberErr)
	assert.ErrorIs(t, err, custom_error.ErrConflict)
	assert.Equal(t, 3, f.value(t, models.PoolTechnicianMoving, technicianID, "n950", models.PackagingBox))
}

func TestRejectReturnsStockToWarehouse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.SeedPool(models.PoolWarehouse, f.warehouseID, "n950", models.PackagingBox, 10)
	f.store.SeedPool(models.PoolWarehouse, f.warehouseID, "stickers", models.PackagingUnit, 6)

	_, rows := f.approve(t, map[string]int{"n950Boxes": 3, "stickersUnits": 4})
	assert.Equal(t, 7, f.value(t, models.PoolWarehouse, f.warehouseID, "n950", models.PackagingBox))
	assert.Equal(t, 2, f.value(t, models.PoolWarehouse, f.warehouseID, "stickers", models.PackagingUnit))

	_, err := f.transfers.RejectBatch(ctx, ids(rows), " ", technicianID)
	assert.ErrorIs(t, err, custom_error.ErrValidation)

	rejected, err := f.transfers.RejectBatch(ctx, ids(rows), "damaged", technicianID)
	require.NoError(t, err)
	require.Len(t, rejected, 2)
	for _, r := range rejected {
		assert.Equal(t, metadata.TransferRejected, r.Status)
		require.NotNil(t, r.RejectionReason)
		assert.Equal(t, "damaged", *r.RejectionReason)
	}

	assert.Equal(t, 10, f.value(t, models.PoolWarehouse, f.warehouseID, "n950", models.PackagingBox))
	assert.Equal(t, 6, f.value(t, models.PoolWarehouse, f.warehouseID, "stickers", models.PackagingUnit))
	assert.Equal(t, 0, f.value(t, models.PoolTechnicianMoving, technicianID, "n950", models.PackagingBox))
}

func TestBatchIsAtomic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.SeedPool(models.PoolWarehouse, f.warehouseID, "n950", models.PackagingBox, 10)

	_, own := f.approve(t, map[string]int{"n950Boxes": 2})

	foreign, err := f.store.InsertTransfers(ctx, nil, []models.WarehouseTransfer{{
		WarehouseID:   f.warehouseID,
		TechnicianID:  technicianID + 1,
		ItemType:      "n950",
		PackagingType: models.PackagingBox,
		Quantity:      1,
		Status:        metadata.TransferPending,
		CreatedAt:     time.Now().UTC(),
	}})
	require.NoError(t, err)

	batch := append(ids(own), ids(foreign)...)
	_, err = f.transfers.AcceptBatch(ctx, batch, technicianID)
	require.Error(t, err)
	assert.ErrorIs(t, err, custom_error.ErrForbidden)
	var memberErr *custom_error.BatchMemberError
	require.True(t, errors.As(err, &memberErr))
	assert.Equal(t, foreign[0].ID, memberErr.TransferID)

	assert.Equal(t, 0, f.value(t, models.PoolTechnicianMoving, technicianID, "n950", models.PackagingBox))
	batches, err := f.transfers.ListBatches(ctx, technicianID, "")
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, metadata.TransferPending, batches[0].Status)

	_, err = f.transfers.AcceptBatch(ctx, []int64{own[0].ID, 9999}, technicianID)
	assert.ErrorIs(t, err, custom_error.ErrNotFound)
	assert.Equal(t, 0, f.value(t, models.PoolTechnicianMoving, technicianID, "n950", models.PackagingBox))
}

// failingPools fails the Nth save of a technician moving pool.
type failingPools struct {
	*memory.Store
	failOn int
	saves  int
}

var errCreditFailed = errors.New("credit failed")

func (p *failingPools) SaveRecord(ctx context.Context, tx *goqu.TxDatabase, record *units.Record) error {
	if record.Kind == models.PoolTechnicianMoving {
		p.saves++
		if p.saves == p.failOn {
			return errCreditFailed
		}
	}
	return p.Store.SaveRecord(ctx, tx, record)
}

func TestAcceptBatchRollsBackOnMidBatchCreditFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.SeedPool(models.PoolWarehouse, f.warehouseID, "n950", models.PackagingBox, 10)
	f.store.SeedPool(models.PoolWarehouse, f.warehouseID, "stickers", models.PackagingUnit, 10)
	f.store.SeedPool(models.PoolWarehouse, f.warehouseID, "zainSim", models.PackagingUnit, 10)

	_, rows := f.approve(t, map[string]int{"n950Boxes": 3, "stickersUnits": 4, "zainSimUnits": 5})
	require.Len(t, rows, 3)
	eventsBefore := len(f.store.Events())

	pools := &failingPools{Store: f.store, failOn: 2}
	svc := NewService(f.store, pools, f.store, 0, inventorylog.NewInventoryLog(auditlog.NewAuditLog(zap.NewNop(), f.store)), nil, zap.NewNop())

	batch := ids(rows)
	_, err := svc.AcceptBatch(ctx, batch, technicianID)
	require.ErrorIs(t, err, errCreditFailed)
	var memberErr *custom_error.BatchMemberError
	require.ErrorAs(t, err, &memberErr)
	assert.Equal(t, batch[1], memberErr.TransferID)

	for _, itemType := range []string{"n950", "stickers", "zainSim"} {
		assert.Zero(t, f.value(t, models.PoolTechnicianMoving, technicianID, itemType, models.PackagingBox), itemType)
		assert.Zero(t, f.value(t, models.PoolTechnicianMoving, technicianID, itemType, models.PackagingUnit), itemType)
	}
	stored, err := f.store.GetTransferRows(ctx, nil)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for _, row := range stored {
		assert.Equal(t, metadata.TransferPending, row.Status)
		assert.Nil(t, row.RespondedAt)
	}
	assert.Len(t, f.store.Events(), eventsBefore)

	accepted, err := f.transfers.AcceptBatch(ctx, batch, technicianID)
	require.NoError(t, err)
	assert.Len(t, accepted, 3)
	assert.Equal(t, 3, f.value(t, models.PoolTechnicianMoving, technicianID, "n950", models.PackagingBox))
}

func TestBulkAcceptByBatchKey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.SeedPool(models.PoolWarehouse, f.warehouseID, "n950", models.PackagingBox, 10)
	f.store.SeedPool(models.PoolWarehouse, f.warehouseID, "i9000s", models.PackagingUnit, 10)

	first, _ := f.approve(t, map[string]int{"n950Boxes": 1})
	second, _ := f.approve(t, map[string]int{"i9000sUnits": 2, "n950Boxes": 2})

	keys := []string{GroupKey(models.WarehouseTransfer{RequestID: &first.ID}, 0), GroupKey(models.WarehouseTransfer{RequestID: &second.ID}, 0)}
	accepted, err := f.transfers.BulkAccept(ctx, keys, technicianID)
	require.NoError(t, err)
	assert.Len(t, accepted, 3)

	assert.Equal(t, 3, f.value(t, models.PoolTechnicianMoving, technicianID, "n950", models.PackagingBox))
	assert.Equal(t, 2, f.value(t, models.PoolTechnicianMoving, technicianID, "i9000s", models.PackagingUnit))

	_, err = f.transfers.BulkAccept(ctx, []string{"legacy:nope"}, technicianID)
	assert.ErrorIs(t, err, custom_error.ErrNotFound)

	_, err = f.transfers.BulkReject(ctx, keys, "", technicianID)
	assert.ErrorIs(t, err, custom_error.ErrValidation)
}

func TestStockIsConserved(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.SeedPool(models.PoolWarehouse, f.warehouseID, "rollPaper", models.PackagingBox, 20)

	total := func() int {
		return f.value(t, models.PoolWarehouse, f.warehouseID, "rollPaper", models.PackagingBox) +
			f.value(t, models.PoolTechnicianMoving, technicianID, "rollPaper", models.PackagingBox)
	}

	_, a := f.approve(t, map[string]int{"rollPaperBoxes": 5})
	_, b := f.approve(t, map[string]int{"rollPaperBoxes": 4})

	inFlight := func() int {
		n := 0
		batches, err := f.transfers.ListBatches(ctx, technicianID, "pending")
		require.NoError(t, err)
		for _, batch := range batches {
			for _, row := range batch.Transfers {
				n += row.Quantity
			}
		}
		return n
	}
	assert.Equal(t, 20, total()+inFlight())

	_, err := f.transfers.AcceptBatch(ctx, ids(a), technicianID)
	require.NoError(t, err)
	assert.Equal(t, 20, total()+inFlight())

	_, err = f.transfers.RejectBatch(ctx, ids(b), "not needed", technicianID)
	require.NoError(t, err)
	assert.Equal(t, 20, total()+inFlight())
	assert.Equal(t, 15, f.value(t, models.PoolWarehouse, f.warehouseID, "rollPaper", models.PackagingBox))
}
