package ledger

import (
	"context"
	"fmt"

	"fieldstock/internal/repository"
	custom_error "fieldstock/pkg/errors"
	"fieldstock/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

// Repository stores the append-only ledger audit rows.
type Repository interface {
	InsertTransaction(ctx context.Context, tx *goqu.TxDatabase, t *models.Transaction) error
	ListTransactions(ctx context.Context, itemID int64) ([]models.Transaction, error)
	InsertStockMovement(ctx context.Context, tx *goqu.TxDatabase, m *models.StockMovement) error
	ListStockMovements(ctx context.Context, technicianID int64) ([]models.StockMovement, error)
}

type LedgerRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *LedgerRepository {
	return &LedgerRepository{repository: r}
}

func (r *LedgerRepository) InsertTransaction(ctx context.Context, tx *goqu.TxDatabase, t *models.Transaction) error {
	_, err := tx.Insert("transactions").
		Rows(goqu.Record{
			"item_id":    t.ItemID,
			"user_id":    t.UserID,
			"type":       t.Type,
			"quantity":   t.Quantity,
			"reason":     t.Reason,
			"created_at": t.CreatedAt,
		}).
		Returning("id").
		Executor().
		ScanValContext(ctx, &t.ID)
	if err != nil {
		return fmt.Errorf("failed to insert transaction for item %d: %w", t.ItemID, custom_error.FromDB(err))
	}

	return nil
}

func (r *LedgerRepository) ListTransactions(ctx context.Context, itemID int64) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	err := r.repository.GoquDBWrapper.From("transactions").
		Where(goqu.Ex{"item_id": itemID}).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		ScanStructsContext(ctx, &transactions)
	if err != nil {
		return nil, fmt.Errorf("unable to select transactions: %w", err)
	}

	return transactions, nil
}

func (r *LedgerRepository) InsertStockMovement(ctx context.Context, tx *goqu.TxDatabase, m *models.StockMovement) error {
	_, err := tx.Insert("stock_movements").
		Rows(goqu.Record{
			"technician_id":  m.TechnicianID,
			"item_type":      m.ItemType,
			"packaging_type": m.PackagingType,
			"quantity":       m.Quantity,
			"from_inventory": m.FromInventory,
			"to_inventory":   m.ToInventory,
			"performed_by":   m.PerformedBy,
			"reason":         m.Reason,
			"notes":          m.Notes,
			"created_at":     m.CreatedAt,
		}).
		Returning("id").
		Executor().
		ScanValContext(ctx, &m.ID)
	if err != nil {
		return fmt.Errorf("failed to insert stock movement: %w", custom_error.FromDB(err))
	}

	return nil
}

func (r *LedgerRepository) ListStockMovements(ctx context.Context, technicianID int64) ([]models.StockMovement, error) {
	movements := []models.StockMovement{}
	err := r.repository.GoquDBWrapper.From("stock_movements").
		Where(goqu.Ex{"technician_id": technicianID}).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		ScanStructsContext(ctx, &movements)
	if err != nil {
		return nil, fmt.Errorf("unable to select stock movements: %w", err)
	}

	return movements, nil
}
