package transfers

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fieldstock/internal/repository"
	custom_error "fieldstock/pkg/errors"
	"fieldstock/pkg/metadata"
	"fieldstock/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

type TransferRepository interface {
	InsertTransfers(ctx context.Context, tx *goqu.TxDatabase, transfers []models.WarehouseTransfer) ([]models.WarehouseTransfer, error)
	LockTransfers(ctx context.Context, tx *goqu.TxDatabase, ids []int64) ([]models.WarehouseTransfer, error)
	UpdateTransferStatus(ctx context.Context, tx *goqu.TxDatabase, ids []int64, status metadata.TransferStatus, reason *string, respondedAt time.Time) error
	GetTransferRows(ctx context.Context, conditions repository.QueryBuilder) ([]models.WarehouseTransfer, error)
}

type transferRepository struct {
	Repo *repository.Repository
}

func NewRepository(r *repository.Repository) *transferRepository {
	return &transferRepository{Repo: r}
}

func (r *transferRepository) InsertTransfers(ctx context.Context, tx *goqu.TxDatabase, transfers []models.WarehouseTransfer) ([]models.WarehouseTransfer, error) {
	created := make([]models.WarehouseTransfer, 0, len(transfers))
	for _, t := range transfers {
		_, err := tx.Insert("warehouse_transfers").
			Rows(goqu.Record{
				"request_id":     t.RequestID,
				"warehouse_id":   t.WarehouseID,
				"technician_id":  t.TechnicianID,
				"item_type":      t.ItemType,
				"packaging_type": t.PackagingType,
				"quantity":       t.Quantity,
				"status":         t.Status,
				"performed_by":   t.PerformedBy,
				"notes":          t.Notes,
				"created_at":     t.CreatedAt,
			}).
			Returning("id").
			Executor().
			ScanValContext(ctx, &t.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert warehouse transfer record: %w", custom_error.FromDB(err))
		}
		created = append(created, t)
	}

	return created, nil
}

// LockTransfers locks rows in id order. Any missing id fails the call.
func (r *transferRepository) LockTransfers(ctx context.Context, tx *goqu.TxDatabase, ids []int64) ([]models.WarehouseTransfer, error) {
	var rows []models.WarehouseTransfer
	err := tx.From("warehouse_transfers").
		Where(goqu.Ex{"id": ids}).
		Order(goqu.I("id").Asc()).
		ForUpdate(exp.Wait).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("unable to lock warehouse transfers: %w", err)
	}

	if len(rows) != len(ids) {
		found := make(map[int64]struct{}, len(rows))
		for _, row := range rows {
			found[row.ID] = struct{}{}
		}
		missing := make([]int64, 0)
		for _, id := range ids {
			if _, ok := found[id]; !ok {
				missing = append(missing, id)
			}
		}
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		if len(missing) > 0 {
			return nil, &custom_error.BatchMemberError{
				TransferID: missing[0],
				Err:        custom_error.NewNotFound("warehouse_transfer", missing[0]),
			}
		}
	}

	return rows, nil
}

func (r *transferRepository) UpdateTransferStatus(ctx context.Context, tx *goqu.TxDatabase, ids []int64, status metadata.TransferStatus, reason *string, respondedAt time.Time) error {
	updateResult, err := tx.Update("warehouse_transfers").
		Set(goqu.Record{
			"status":           status,
			"rejection_reason": reason,
			"responded_at":     respondedAt,
		}).
		Where(goqu.Ex{"id": ids, "status": metadata.TransferPending}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update warehouse transfers: %w", err)
	}

	rowsAffected, err := updateResult.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected != int64(len(ids)) {
		return fmt.Errorf("expected %d pending transfers to update, updated %d", len(ids), rowsAffected)
	}

	return nil
}

func (r *transferRepository) GetTransferRows(ctx context.Context, conditions repository.QueryBuilder) ([]models.WarehouseTransfer, error) {
	query := r.Repo.GoquDBWrapper.From("warehouse_transfers").
		Order(goqu.I("created_at").Desc(), goqu.I("id").Asc())
	if conditions != nil {
		query = query.Where(conditions.BuildConditions(nil))
	}

	rows := []models.WarehouseTransfer{}
	if err := query.ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("unable to select warehouse transfers: %w", err)
	}

	return rows, nil
}
