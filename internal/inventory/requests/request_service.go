package requests

import (
	"context"
	"strings"
	"time"

	"fieldstock/internal/inventory/catalog"
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

// TransferWriter creates the warehouse transfer rows of an approval.
type TransferWriter interface {
	InsertTransfers(ctx context.Context, tx *goqu.TxDatabase, transfers []models.WarehouseTransfer) ([]models.WarehouseTransfer, error)
}

type RequestService struct {
	tx        repository.Transactor
	pool      *pools.Pool
	repo      Repository
	transfers TransferWriter
	catalog   catalog.Resolver
	log       *inventorylog.InventoryLog
	metrics   *metrics.Ledger
	logger    *zap.Logger
}

func NewService(
	tx repository.Transactor,
	poolRepo pools.Repository,
	repo Repository,
	transfers TransferWriter,
	resolver catalog.Resolver,
	log *inventorylog.InventoryLog,
	m *metrics.Ledger,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{
		tx:        tx,
		pool:      pools.NewPool(poolRepo),
		repo:      repo,
		transfers: transfers,
		catalog:   resolver,
		log:       log,
		metrics:   m,
		logger:    logger,
	}
}

func (s *RequestService) Submit(ctx context.Context, technicianID int64, input models.SubmitRequestInput) (*models.InventoryRequest, error) {
	req, err := s.submit(ctx, technicianID, input)
	s.metrics.Observe("submit_request", err)
	return req, err
}

func (s *RequestService) submit(ctx context.Context, technicianID int64, input models.SubmitRequestInput) (*models.InventoryRequest, error) {
	lines, err := normalizeLines(input)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if _, err := s.catalog.Resolve(ctx, line.ItemTypeID); err != nil {
			return nil, err
		}
	}

	req := &models.InventoryRequest{
		TechnicianID: technicianID,
		Status:       metadata.RequestPending,
		Lines:        lines,
		Notes:        input.Notes,
		CreatedAt:    time.Now().UTC(),
	}

	err = s.tx.WithinTransaction(ctx, func(tx *goqu.TxDatabase) error {
		return s.repo.InsertRequest(ctx, tx, req)
	})
	if err != nil {
		s.logger.Error("Unable to submit inventory request", zap.Int64("technician_id", technicianID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Inventory request submitted",
		zap.String("operation", "submit_request"),
		zap.Int64("request_id", req.ID),
		zap.Int64("technician_id", technicianID),
		zap.Int("lines", len(lines)),
	)
	s.log.CreateRequestLogEntry(ctx, "submit", technicianID, req, nil)

	return req, nil
}

// Approve debits the chosen warehouse for every line and fans the request
// out into pending transfers. Any uncovered line aborts the whole approval.
func (s *RequestService) Approve(ctx context.Context, requestID, warehouseID, actorID int64) (*models.InventoryRequest, []models.WarehouseTransfer, error) {
	req, transfers, err := s.approve(ctx, requestID, warehouseID, actorID)
	s.metrics.Observe("approve_request", err)
	return req, transfers, err
}

func (s *RequestService) approve(ctx context.Context, requestID, warehouseID, actorID int64) (*models.InventoryRequest, []models.WarehouseTransfer, error) {
	var (
		req     *models.InventoryRequest
		created []models.WarehouseTransfer
	)

	err := s.tx.WithinTransaction(ctx, func(tx *goqu.TxDatabase) error {
		var err error
		if req, err = s.repo.LockRequest(ctx, tx, requestID); err != nil {
			return err
		}
		if req.Status != metadata.RequestPending {
			return &custom_error.ConflictError{
				Resource: "inventory_request",
				ID:       requestID,
				Status:   string(req.Status),
				Expected: string(metadata.RequestPending),
			}
		}

		now := time.Now().UTC()
		rows := make([]models.WarehouseTransfer, 0, len(req.Lines))
		for _, line := range req.Lines {
			if line.Quantity <= 0 {
				continue
			}
			if _, err := s.pool.Apply(ctx, tx, models.PoolWarehouse, warehouseID, line.ItemTypeID, line.Packaging, -line.Quantity); err != nil {
				return err
			}
			rows = append(rows, models.WarehouseTransfer{
				RequestID:     &req.ID,
				WarehouseID:   warehouseID,
				TechnicianID:  req.TechnicianID,
				ItemType:      line.ItemTypeID,
				PackagingType: line.Packaging,
				Quantity:      line.Quantity,
				Status:        metadata.TransferPending,
				PerformedBy:   actorID,
				Notes:         req.Notes,
				CreatedAt:     now,
			})
		}

		if created, err = s.transfers.InsertTransfers(ctx, tx, rows); err != nil {
			return err
		}

		req.Status = metadata.RequestApproved
		req.WarehouseID = &warehouseID
		req.ReviewedBy = &actorID
		req.ReviewedAt = &now
		return s.repo.UpdateRequestReview(ctx, tx, req)
	})
	if err != nil {
		s.logFailure("approve_request", err, zap.Int64("request_id", requestID), zap.Int64("warehouse_id", warehouseID))
		return nil, nil, err
	}

	s.logger.Info("Inventory request approved",
		zap.String("operation", "approve_request"),
		zap.Int64("request_id", requestID),
		zap.Int64("warehouse_id", warehouseID),
		zap.Int("transfers", len(created)),
	)
	s.log.CreateRequestLogEntry(ctx, "approve", actorID, req, created)

	return req, created, nil
}

// Reject closes a pending request. Nothing was debited yet, so no pool is
// touched.
func (s *RequestService) Reject(ctx context.Context, requestID, actorID int64, adminNotes string) (*models.InventoryRequest, error) {
	req, err := s.reject(ctx, requestID, actorID, adminNotes)
	s.metrics.Observe("reject_request", err)
	return req, err
}

func (s *RequestService) reject(ctx context.Context, requestID, actorID int64, adminNotes string) (*models.InventoryRequest, error) {
	adminNotes = strings.TrimSpace(adminNotes)
	if adminNotes == "" {
		return nil, custom_error.NewValidation("admin_notes", "is required when rejecting a request")
	}

	var req *models.InventoryRequest
	err := s.tx.WithinTransaction(ctx, func(tx *goqu.TxDatabase) error {
		var err error
		if req, err = s.repo.LockRequest(ctx, tx, requestID); err != nil {
			return err
		}
		if req.Status != metadata.RequestPending {
			return &custom_error.ConflictError{
				Resource: "inventory_request",
				ID:       requestID,
				Status:   string(req.Status),
				Expected: string(metadata.RequestPending),
			}
		}

		now := time.Now().UTC()
		req.Status = metadata.RequestRejected
		req.AdminNotes = &adminNotes
		req.ReviewedBy = &actorID
		req.ReviewedAt = &now
		return s.repo.UpdateRequestReview(ctx, tx, req)
	})
	if err != nil {
		s.logFailure("reject_request", err, zap.Int64("request_id", requestID))
		return nil, err
	}

	s.logger.Info("Inventory request rejected",
		zap.String("operation", "reject_request"),
		zap.Int64("request_id", requestID),
	)
	s.log.CreateRequestLogEntry(ctx, "reject", actorID, req, nil)

	return req, nil
}

func (s *RequestService) Get(ctx context.Context, id int64) (*models.InventoryRequest, error) {
	return s.repo.GetRequest(ctx, id)
}

func (s *RequestService) List(ctx context.Context, status string, technicianID *int64) ([]models.InventoryRequest, error) {
	conditions := repository.NewQueryBuilder()
	if status != "" {
		parsed, err := metadata.NewRequestStatus(status)
		if err != nil {
			return nil, custom_error.NewValidation("status", err.Error())
		}
		conditions.AddCondition("status", parsed)
	}
	if technicianID != nil {
		conditions.AddCondition("technician_id", *technicianID)
	}

	return s.repo.ListRequests(ctx, conditions)
}

func (s *RequestService) logFailure(operation string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("operation", operation), zap.Error(err))
	if metrics.Outcome(err) == "error" {
		s.logger.Error("Request workflow operation failed", fields...)
		return
	}
	s.logger.Warn("Request workflow operation rejected", fields...)
}
