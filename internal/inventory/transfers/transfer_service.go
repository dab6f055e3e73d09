package transfers

import (
	"context"
	"sort"
	"strings"
	"time"

	inventorylog "fieldstock/internal/inventory/inventory_log"
	"fieldstock/internal/inventory/pools"
	"fieldstock/internal/repository"
	custom_error "fieldstock/pkg/errors"
	"fieldstock/pkg/metadata"
	"fieldstock/pkg/metrics"
	"fieldstock/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"
)

type TransferService struct {
	tx      repository.Transactor
	pool    *pools.Pool
	tr      TransferRepository
	window  time.Duration
	log     *inventorylog.InventoryLog
	metrics *metrics.Ledger
	logger  *zap.Logger
}

func NewService(
	tx repository.Transactor,
	poolRepo pools.Repository,
	tr TransferRepository,
	window time.Duration,
	log *inventorylog.InventoryLog,
	m *metrics.Ledger,
	logger *zap.Logger,
) *TransferService {
	if window <= 0 {
		window = DefaultLegacyWindow
	}
	return &TransferService{
		tx:      tx,
		pool:    pools.NewPool(poolRepo),
		tr:      tr,
		window:  window,
		log:     log,
		metrics: m,
		logger:  logger,
	}
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// checkMembers verifies that every locked row belongs to the actor and is
// still pending. The first offending row is reported.
func checkMembers(rows []models.WarehouseTransfer, actorID int64) error {
	for _, row := range rows {
		if row.TechnicianID != actorID {
			return &custom_error.BatchMemberError{
				TransferID: row.ID,
				Err:        &custom_error.ForbiddenError{Message: "transfer belongs to another technician"},
			}
		}
		if row.Status != metadata.TransferPending {
			return &custom_error.BatchMemberError{
				TransferID: row.ID,
				Err: &custom_error.ConflictError{
					Resource: "warehouse_transfer",
					ID:       row.ID,
					Status:   string(row.Status),
					Expected: string(metadata.TransferPending),
				},
			}
		}
	}
	return nil
}

// AcceptBatch credits the actor's moving pool with every row and marks the
// rows accepted. Either all rows change or none do.
func (s *TransferService) AcceptBatch(ctx context.Context, transferIDs []int64, actorID int64) ([]models.WarehouseTransfer, error) {
	rows, err := s.acceptBatch(ctx, transferIDs, actorID)
	s.metrics.Observe("accept_transfers", err)
	return rows, err
}

func (s *TransferService) acceptBatch(ctx context.Context, transferIDs []int64, actorID int64) ([]models.WarehouseTransfer, error) {
	ids := uniqueIDs(transferIDs)
	if len(ids) == 0 {
		return nil, custom_error.NewValidation("transfer_ids", "at least one transfer is required")
	}

	var rows []models.WarehouseTransfer
	err := s.tx.WithinTransaction(ctx, func(tx *goqu.TxDatabase) error {
		var err error
		if rows, err = s.tr.LockTransfers(ctx, tx, ids); err != nil {
			return err
		}
		if err := checkMembers(rows, actorID); err != nil {
			return err
		}

		for _, row := range rows {
			if _, err := s.pool.Apply(ctx, tx, models.PoolTechnicianMoving, row.TechnicianID, row.ItemType, row.PackagingType, row.Quantity); err != nil {
				return &custom_error.BatchMemberError{TransferID: row.ID, Err: err}
			}
		}

		now := time.Now().UTC()
		if err := s.tr.UpdateTransferStatus(ctx, tx, ids, metadata.TransferAccepted, nil, now); err != nil {
			return err
		}
		for i := range rows {
			rows[i].Status = metadata.TransferAccepted
			rows[i].RespondedAt = &now
		}
		return nil
	})
	if err != nil {
		s.logFailure("accept_transfers", err, zap.Int64s("transfer_ids", ids))
		return nil, err
	}

	s.logger.Info("Warehouse transfers accepted",
		zap.String("operation", "accept_transfers"),
		zap.Int64("technician_id", actorID),
		zap.Int64s("transfer_ids", ids),
	)
	s.log.CreateTransferLogEntry(ctx, "accept", actorID, rows)

	return rows, nil
}

// RejectBatch marks every row rejected and returns its quantity to the
// warehouse that was debited at approval.
func (s *TransferService) RejectBatch(ctx context.Context, transferIDs []int64, reason string, actorID int64) ([]models.WarehouseTransfer, error) {
	rows, err := s.rejectBatch(ctx, transferIDs, reason, actorID)
	s.metrics.Observe("reject_transfers", err)
	return rows, err
}

func (s *TransferService) rejectBatch(ctx context.Context, transferIDs []int64, reason string, actorID int64) ([]models.WarehouseTransfer, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, custom_error.NewValidation("reason", "is required when rejecting transfers")
	}
	ids := uniqueIDs(transferIDs)
	if len(ids) == 0 {
		return nil, custom_error.NewValidation("transfer_ids", "at least one transfer is required")
	}

	var rows []models.WarehouseTransfer
	err := s.tx.WithinTransaction(ctx, func(tx *goqu.TxDatabase) error {
		var err error
		if rows, err = s.tr.LockTransfers(ctx, tx, ids); err != nil {
			return err
		}
		if err := checkMembers(rows, actorID); err != nil {
			return err
		}

		for _, row := range rows {
			if _, err := s.pool.Apply(ctx, tx, models.PoolWarehouse, row.WarehouseID, row.ItemType, row.PackagingType, row.Quantity); err != nil {
				return &custom_error.BatchMemberError{TransferID: row.ID, Err: err}
			}
		}

		now := time.Now().UTC()
		if err := s.tr.UpdateTransferStatus(ctx, tx, ids, metadata.TransferRejected, &reason, now); err != nil {
			return err
		}
		for i := range rows {
			rows[i].Status = metadata.TransferRejected
			rows[i].RejectionReason = &reason
			rows[i].RespondedAt = &now
		}
		return nil
	})
	if err != nil {
		s.logFailure("reject_transfers", err, zap.Int64s("transfer_ids", ids))
		return nil, err
	}

	s.logger.Info("Warehouse transfers rejected",
		zap.String("operation", "reject_transfers"),
		zap.Int64("technician_id", actorID),
		zap.Int64s("transfer_ids", ids),
	)
	s.log.CreateTransferLogEntry(ctx, "reject", actorID, rows)

	return rows, nil
}

// BulkAccept resolves batch keys to their member rows and accepts them all
// in one transaction.
func (s *TransferService) BulkAccept(ctx context.Context, keys []string, actorID int64) ([]models.WarehouseTransfer, error) {
	ids, err := s.resolveKeys(ctx, keys, actorID)
	if err != nil {
		s.metrics.Observe("accept_transfers", err)
		return nil, err
	}
	return s.AcceptBatch(ctx, ids, actorID)
}

func (s *TransferService) BulkReject(ctx context.Context, keys []string, reason string, actorID int64) ([]models.WarehouseTransfer, error) {
	if strings.TrimSpace(reason) == "" {
		err := custom_error.NewValidation("reason", "is required when rejecting transfers")
		s.metrics.Observe("reject_transfers", err)
		return nil, err
	}
	ids, err := s.resolveKeys(ctx, keys, actorID)
	if err != nil {
		s.metrics.Observe("reject_transfers", err)
		return nil, err
	}
	return s.RejectBatch(ctx, ids, reason, actorID)
}

func (s *TransferService) resolveKeys(ctx context.Context, keys []string, technicianID int64) ([]int64, error) {
	if len(keys) == 0 {
		return nil, custom_error.NewValidation("request_ids", "at least one batch is required")
	}

	batches, err := s.ListBatches(ctx, technicianID, "")
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]models.TransferBatch, len(batches))
	for _, b := range batches {
		byKey[b.Key] = b
	}

	ids := make([]int64, 0)
	for _, key := range keys {
		batch, ok := byKey[key]
		if !ok {
			return nil, custom_error.NewNotFound("transfer_batch", key)
		}
		for _, t := range batch.Transfers {
			ids = append(ids, t.ID)
		}
	}

	return ids, nil
}

// ListBatches returns the technician's transfers grouped into batches,
// optionally filtered by batch status.
func (s *TransferService) ListBatches(ctx context.Context, technicianID int64, status string) ([]models.TransferBatch, error) {
	conditions := repository.NewQueryBuilder()
	conditions.AddCondition("technician_id", technicianID)

	rows, err := s.tr.GetTransferRows(ctx, conditions)
	if err != nil {
		return nil, err
	}

	batches := Group(rows, s.window)
	if status == "" {
		return batches, nil
	}

	filtered := make([]models.TransferBatch, 0, len(batches))
	for _, b := range batches {
		if string(b.Status) == status {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

func (s *TransferService) logFailure(operation string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("operation", operation), zap.Error(err))
	if metrics.Outcome(err) == "error" {
		s.logger.Error("Transfer workflow operation failed", fields...)
		return
	}
	s.logger.Warn("Transfer workflow operation rejected", fields...)
}
