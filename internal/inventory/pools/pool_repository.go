package pools

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fieldstock/internal/inventory/units"
	"fieldstock/internal/repository"
	custom_error "fieldstock/pkg/errors"
	"fieldstock/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

// Repository is the persistence contract of every pool kind.
type Repository interface {
	LoadRecord(ctx context.Context, kind models.PoolKind, ownerID int64) (*units.Record, error)
	LockRecord(ctx context.Context, tx *goqu.TxDatabase, kind models.PoolKind, ownerID int64) (*units.Record, error)
	SaveRecord(ctx context.Context, tx *goqu.TxDatabase, record *units.Record) error

	GetCentralItem(ctx context.Context, id int64) (*models.CentralItem, error)
	LockCentralItem(ctx context.Context, tx *goqu.TxDatabase, id int64) (*models.CentralItem, error)
	SaveCentralQuantity(ctx context.Context, tx *goqu.TxDatabase, id int64, quantity int) error
	ListCentralItems(ctx context.Context, conditions repository.QueryBuilder) ([]models.CentralItem, error)
	CreateCentralItem(ctx context.Context, req models.CreateCentralItemRequest) (*models.CentralItem, error)

	GetWarehouse(ctx context.Context, id int64) (*models.Warehouse, error)
	ListWarehouses(ctx context.Context) ([]models.Warehouse, error)
	CreateWarehouse(ctx context.Context, req models.CreateWarehouseRequest) (*models.Warehouse, error)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type PoolRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *PoolRepository {
	return &PoolRepository{repository: r}
}

func (r *PoolRepository) LoadRecord(ctx context.Context, kind models.PoolKind, ownerID int64) (*units.Record, error) {
	t, ok := poolTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown pool kind %s", kind)
	}
	db := r.repository.GoquDBWrapper

	record := units.NewRecord(kind, ownerID)
	ds := db.From(t.table).Where(goqu.Ex{t.ownerColumn: ownerID})
	found, err := scanLegacy(ctx, db, ds, record)
	if err != nil {
		return nil, err
	}
	if !found {
		return record, nil
	}

	var entries []units.Entry
	err = db.From(t.entriesTable).
		Select("item_type_id", "boxes", "units").
		Where(goqu.Ex{t.ownerColumn: ownerID}).
		ScanStructsContext(ctx, &entries)
	if err != nil {
		return nil, fmt.Errorf("unable to select %s entries: %w", kind, err)
	}
	record.Entries = units.NewEntries(entries)

	return record, nil
}

// LockRecord creates the pool row if it is missing and locks it together
// with its entries until the transaction ends.
func (r *PoolRepository) LockRecord(ctx context.Context, tx *goqu.TxDatabase, kind models.PoolKind, ownerID int64) (*units.Record, error) {
	t, ok := poolTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown pool kind %s", kind)
	}

	if kind == models.PoolWarehouse {
		var id int64
		found, err := tx.From("warehouses").Select("id").Where(goqu.Ex{"id": ownerID}).ScanValContext(ctx, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to check warehouse %d: %w", ownerID, err)
		}
		if !found {
			return nil, custom_error.NewNotFound("warehouse", ownerID)
		}
	}

	_, err := tx.Insert(t.table).
		Rows(goqu.Record{t.ownerColumn: ownerID}).
		OnConflict(goqu.DoNothing()).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure %s row for owner %d: %w", kind, ownerID, custom_error.FromDB(err))
	}

	record := units.NewRecord(kind, ownerID)
	ds := tx.From(t.table).Where(goqu.Ex{t.ownerColumn: ownerID}).ForUpdate(exp.Wait)
	if _, err := scanLegacy(ctx, tx, ds, record); err != nil {
		return nil, err
	}

	var entries []units.Entry
	err = tx.From(t.entriesTable).
		Select("item_type_id", "boxes", "units").
		Where(goqu.Ex{t.ownerColumn: ownerID}).
		ForUpdate(exp.Wait).
		ScanStructsContext(ctx, &entries)
	if err != nil {
		return nil, fmt.Errorf("unable to lock %s entries: %w", kind, err)
	}
	record.Entries = units.NewEntries(entries)

	return record, nil
}

func scanLegacy(ctx context.Context, q queryRower, ds *goqu.SelectDataset, record *units.Record) (bool, error) {
	columns := units.LegacyColumns()
	selected := make([]interface{}, 0, len(columns)+2)
	for _, col := range columns {
		selected = append(selected, col)
	}
	if record.Thresholds != nil {
		selected = append(selected, "low_stock_threshold", "critical_stock_threshold")
	}

	query, args, err := ds.Select(selected...).ToSQL()
	if err != nil {
		return false, fmt.Errorf("failed to build pool query: %w", err)
	}

	values := make([]int, len(columns))
	dest := make([]interface{}, 0, len(selected))
	for i := range values {
		dest = append(dest, &values[i])
	}
	var thresholds units.Thresholds
	if record.Thresholds != nil {
		dest = append(dest, &thresholds.Low, &thresholds.Critical)
	}

	if err := q.QueryRowContext(ctx, query, args...).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("unable to select %s record: %w", record.Kind, err)
	}

	byColumn := make(map[string]int, len(columns))
	for i, col := range columns {
		byColumn[col] = values[i]
	}
	record.Legacy = units.NewLegacyValues(byColumn)
	if record.Thresholds != nil {
		record.Thresholds = &thresholds
	}

	return true, nil
}

// SaveRecord writes back only the slots changed since the record was locked.
func (r *PoolRepository) SaveRecord(ctx context.Context, tx *goqu.TxDatabase, record *units.Record) error {
	t, ok := poolTables[record.Kind]
	if !ok {
		return fmt.Errorf("unknown pool kind %s", record.Kind)
	}

	if dirty := record.Legacy.Dirty(); len(dirty) > 0 {
		set := goqu.Record{"updated_at": goqu.L("NOW()")}
		for col, v := range dirty {
			set[col] = v
		}
		result, err := tx.Update(t.table).
			Set(set).
			Where(goqu.Ex{t.ownerColumn: record.OwnerID}).
			Executor().
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to update %s for owner %d: %w", record.Kind, record.OwnerID, custom_error.FromDB(err))
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to retrieve rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("%s row for owner %d disappeared during update", record.Kind, record.OwnerID)
		}
	}

	for _, entry := range record.Entries.Dirty() {
		_, err := tx.Insert(t.entriesTable).
			Rows(goqu.Record{
				t.ownerColumn:  record.OwnerID,
				"item_type_id": entry.ItemTypeID,
				"boxes":        entry.Boxes,
				"units":        entry.Units,
			}).
			OnConflict(
				goqu.DoUpdate(
					t.ownerColumn+", item_type_id",
					goqu.Record{
						"boxes": goqu.L("EXCLUDED.boxes"),
						"units": goqu.L("EXCLUDED.units"),
					},
				),
			).
			Executor().
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to upsert %s entry %s: %w", record.Kind, entry.ItemTypeID, custom_error.FromDB(err))
		}
	}

	return nil
}

func (r *PoolRepository) GetCentralItem(ctx context.Context, id int64) (*models.CentralItem, error) {
	var item models.CentralItem
	found, err := r.repository.GoquDBWrapper.From("items").
		Where(goqu.Ex{"id": id}).
		ScanStructContext(ctx, &item)
	if err != nil {
		return nil, fmt.Errorf("unable to select item %d: %w", id, err)
	}
	if !found {
		return nil, custom_error.NewNotFound("item", id)
	}

	return &item, nil
}

func (r *PoolRepository) LockCentralItem(ctx context.Context, tx *goqu.TxDatabase, id int64) (*models.CentralItem, error) {
	var item models.CentralItem
	found, err := tx.From("items").
		Where(goqu.Ex{"id": id}).
		ForUpdate(exp.Wait).
		ScanStructContext(ctx, &item)
	if err != nil {
		return nil, fmt.Errorf("unable to lock item %d: %w", id, err)
	}
	if !found {
		return nil, custom_error.NewNotFound("item", id)
	}

	return &item, nil
}

func (r *PoolRepository) SaveCentralQuantity(ctx context.Context, tx *goqu.TxDatabase, id int64, quantity int) error {
	result, err := tx.Update("items").
		Set(goqu.Record{
			"quantity":   quantity,
			"updated_at": goqu.L("NOW()"),
		}).
		Where(goqu.Ex{"id": id}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update item %d quantity: %w", id, custom_error.FromDB(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to retrieve rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return custom_error.NewNotFound("item", id)
	}

	return nil
}

func (r *PoolRepository) ListCentralItems(ctx context.Context, conditions repository.QueryBuilder) ([]models.CentralItem, error) {
	query := r.repository.GoquDBWrapper.From("items").Order(goqu.I("id").Asc())
	if conditions != nil {
		query = query.Where(conditions.BuildConditions(nil))
	}

	items := []models.CentralItem{}
	if err := query.ScanStructsContext(ctx, &items); err != nil {
		return nil, fmt.Errorf("unable to select items from database: %w", err)
	}

	return items, nil
}

func (r *PoolRepository) CreateCentralItem(ctx context.Context, req models.CreateCentralItemRequest) (*models.CentralItem, error) {
	now := time.Now().UTC()
	item := models.CentralItem{
		RegionID:     req.RegionID,
		Name:         req.Name,
		ItemTypeID:   req.ItemTypeID,
		Quantity:     req.Quantity,
		MinThreshold: req.MinThreshold,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := r.repository.GoquDBWrapper.Insert("items").
		Rows(goqu.Record{
			"region_id":     item.RegionID,
			"name":          item.Name,
			"item_type_id":  item.ItemTypeID,
			"quantity":      item.Quantity,
			"min_threshold": item.MinThreshold,
			"created_at":    now,
			"updated_at":    now,
		}).
		Returning("id").
		Executor().
		ScanValContext(ctx, &item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert item record: %w", custom_error.FromDB(err))
	}

	return &item, nil
}

func (r *PoolRepository) GetWarehouse(ctx context.Context, id int64) (*models.Warehouse, error) {
	var w models.Warehouse
	found, err := r.repository.GoquDBWrapper.From("warehouses").
		Where(goqu.Ex{"id": id}).
		ScanStructContext(ctx, &w)
	if err != nil {
		return nil, fmt.Errorf("unable to select warehouse %d: %w", id, err)
	}
	if !found {
		return nil, custom_error.NewNotFound("warehouse", id)
	}

	return &w, nil
}

func (r *PoolRepository) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	warehouses := []models.Warehouse{}
	err := r.repository.GoquDBWrapper.From("warehouses").
		Order(goqu.I("id").Asc()).
		ScanStructsContext(ctx, &warehouses)
	if err != nil {
		return nil, fmt.Errorf("unable to select warehouses: %w", err)
	}

	return warehouses, nil
}

func (r *PoolRepository) CreateWarehouse(ctx context.Context, req models.CreateWarehouseRequest) (*models.Warehouse, error) {
	w := models.Warehouse{Name: req.Name, RegionID: req.RegionID, CreatedAt: time.Now().UTC()}

	_, err := r.repository.GoquDBWrapper.Insert("warehouses").
		Rows(goqu.Record{
			"name":       w.Name,
			"region_id":  w.RegionID,
			"created_at": w.CreatedAt,
		}).
		Returning("id").
		Executor().
		ScanValContext(ctx, &w.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert warehouse: %w", custom_error.FromDB(err))
	}

	return &w, nil
}
