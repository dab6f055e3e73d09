package requests

import (
	"context"
	"fmt"

	"fieldstock/internal/repository"
	custom_error "fieldstock/pkg/errors"
	"fieldstock/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

type Repository interface {
	InsertRequest(ctx context.Context, tx *goqu.TxDatabase, req *models.InventoryRequest) error
	GetRequest(ctx context.Context, id int64) (*models.InventoryRequest, error)
	LockRequest(ctx context.Context, tx *goqu.TxDatabase, id int64) (*models.InventoryRequest, error)
	UpdateRequestReview(ctx context.Context, tx *goqu.TxDatabase, req *models.InventoryRequest) error
	ListRequests(ctx context.Context, conditions repository.QueryBuilder) ([]models.InventoryRequest, error)
}

type RequestRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *RequestRepository {
	return &RequestRepository{repository: r}
}

func (r *RequestRepository) InsertRequest(ctx context.Context, tx *goqu.TxDatabase, req *models.InventoryRequest) error {
	_, err := tx.Insert("inventory_requests").
		Rows(goqu.Record{
			"technician_id": req.TechnicianID,
			"status":        req.Status,
			"notes":         req.Notes,
			"created_at":    req.CreatedAt,
		}).
		Returning("id").
		Executor().
		ScanValContext(ctx, &req.ID)
	if err != nil {
		return fmt.Errorf("failed to insert inventory request: %w", custom_error.FromDB(err))
	}

	if len(req.Lines) == 0 {
		return nil
	}

	rows := make([]interface{}, 0, len(req.Lines))
	for i, line := range req.Lines {
		rows = append(rows, goqu.Record{
			"request_id":   req.ID,
			"position":     i,
			"item_type_id": line.ItemTypeID,
			"packaging":    line.Packaging,
			"quantity":     line.Quantity,
		})
	}
	if _, err := tx.Insert("inventory_request_entries").Rows(rows...).Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to insert entries of request %d: %w", req.ID, custom_error.FromDB(err))
	}

	return nil
}

func (r *RequestRepository) GetRequest(ctx context.Context, id int64) (*models.InventoryRequest, error) {
	db := r.repository.GoquDBWrapper
	var req models.InventoryRequest
	found, err := db.From("inventory_requests").Where(goqu.Ex{"id": id}).ScanStructContext(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("unable to select inventory request %d: %w", id, err)
	}
	if !found {
		return nil, custom_error.NewNotFound("inventory_request", id)
	}

	lines, err := r.selectLines(ctx, db.From("inventory_request_entries"), []int64{id})
	if err != nil {
		return nil, err
	}
	req.Lines = lines[id]

	return &req, nil
}

func (r *RequestRepository) LockRequest(ctx context.Context, tx *goqu.TxDatabase, id int64) (*models.InventoryRequest, error) {
	var req models.InventoryRequest
	found, err := tx.From("inventory_requests").
		Where(goqu.Ex{"id": id}).
		ForUpdate(exp.Wait).
		ScanStructContext(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("unable to lock inventory request %d: %w", id, err)
	}
	if !found {
		return nil, custom_error.NewNotFound("inventory_request", id)
	}

	lines, err := r.selectLines(ctx, tx.From("inventory_request_entries"), []int64{id})
	if err != nil {
		return nil, err
	}
	req.Lines = lines[id]

	return &req, nil
}

type lineRow struct {
	RequestID  int64            `db:"request_id"`
	ItemTypeID string           `db:"item_type_id"`
	Packaging  models.Packaging `db:"packaging"`
	Quantity   int              `db:"quantity"`
}

func (r *RequestRepository) selectLines(ctx context.Context, from *goqu.SelectDataset, ids []int64) (map[int64][]models.RequestLine, error) {
	var rows []lineRow
	err := from.
		Select("request_id", "item_type_id", "packaging", "quantity").
		Where(goqu.Ex{"request_id": ids}).
		Order(goqu.I("request_id").Asc(), goqu.I("position").Asc()).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("unable to select request entries: %w", err)
	}

	lines := make(map[int64][]models.RequestLine, len(ids))
	for _, row := range rows {
		lines[row.RequestID] = append(lines[row.RequestID], models.RequestLine{
			ItemTypeID: row.ItemTypeID,
			Packaging:  row.Packaging,
			Quantity:   row.Quantity,
		})
	}

	return lines, nil
}

func (r *RequestRepository) UpdateRequestReview(ctx context.Context, tx *goqu.TxDatabase, req *models.InventoryRequest) error {
	result, err := tx.Update("inventory_requests").
		Set(goqu.Record{
			"status":       req.Status,
			"warehouse_id": req.WarehouseID,
			"admin_notes":  req.AdminNotes,
			"reviewed_by":  req.ReviewedBy,
			"reviewed_at":  req.ReviewedAt,
		}).
		Where(goqu.Ex{"id": req.ID}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update inventory request %d: %w", req.ID, custom_error.FromDB(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to retrieve rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return custom_error.NewNotFound("inventory_request", req.ID)
	}

	return nil
}

func (r *RequestRepository) ListRequests(ctx context.Context, conditions repository.QueryBuilder) ([]models.InventoryRequest, error) {
	db := r.repository.GoquDBWrapper
	query := db.From("inventory_requests").Order(goqu.I("created_at").Desc(), goqu.I("id").Desc())
	if conditions != nil {
		query = query.Where(conditions.BuildConditions(nil))
	}

	requests := []models.InventoryRequest{}
	if err := query.ScanStructsContext(ctx, &requests); err != nil {
		return nil, fmt.Errorf("unable to select inventory requests: %w", err)
	}
	if len(requests) == 0 {
		return requests, nil
	}

	ids := make([]int64, 0, len(requests))
	for _, req := range requests {
		ids = append(ids, req.ID)
	}
	lines, err := r.selectLines(ctx, db.From("inventory_request_entries"), ids)
	if err != nil {
		return nil, err
	}
	for i := range requests {
		requests[i].Lines = lines[requests[i].ID]
	}

	return requests, nil
}
