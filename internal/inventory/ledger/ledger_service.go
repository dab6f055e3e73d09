package ledger

import (
	"context"
	"time"

	"fieldstock/internal/inventory/catalog"
	inventorylog "fieldstock/internal/inventory/inventory_log"
	"fieldstock/internal/inventory/pools"
	"fieldstock/internal/repository"
	custom_error "fieldstock/pkg/errors"
	"fieldstock/pkg/metrics"
	"fieldstock/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"
)

type LedgerService struct {
	tx       repository.Transactor
	pool     *pools.Pool
	poolRepo pools.Repository
	repo     Repository
	catalog  catalog.Resolver
	log      *inventorylog.InventoryLog
	metrics  *metrics.Ledger
	logger   *zap.Logger
}

func NewService(
	tx repository.Transactor,
	poolRepo pools.Repository,
	repo Repository,
	resolver catalog.Resolver,
	log *inventorylog.InventoryLog,
	m *metrics.Ledger,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		tx:       tx,
		pool:     pools.NewPool(poolRepo),
		poolRepo: poolRepo,
		repo:     repo,
		catalog:  resolver,
		log:      log,
		metrics:  m,
		logger:   logger,
	}
}

func (s *LedgerService) AddStock(ctx context.Context, itemID int64, quantity int, reason *string, actorID *int64) (*models.CentralItem, error) {
	item, err := s.changeStock(ctx, models.TransactionAdd, itemID, quantity, reason, actorID)
	s.metrics.Observe("add_stock", err)
	return item, err
}

func (s *LedgerService) WithdrawStock(ctx context.Context, itemID int64, quantity int, reason *string, actorID *int64) (*models.CentralItem, error) {
	item, err := s.changeStock(ctx, models.TransactionWithdraw, itemID, quantity, reason, actorID)
	s.metrics.Observe("withdraw_stock", err)
	return item, err
}

func (s *LedgerService) changeStock(ctx context.Context, kind models.TransactionType, itemID int64, quantity int, reason *string, actorID *int64) (*models.CentralItem, error) {
	if quantity <= 0 {
		return nil, custom_error.NewValidation("quantity", "must be greater than zero")
	}

	delta := quantity
	if kind == models.TransactionWithdraw {
		delta = -quantity
	}

	var item *models.CentralItem
	transaction := &models.Transaction{
		ItemID:    itemID,
		UserID:    actorID,
		Type:      kind,
		Quantity:  quantity,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}

	err := s.tx.WithinTransaction(ctx, func(tx *goqu.TxDatabase) error {
		var err error
		if item, err = s.pool.ApplyCentral(ctx, tx, itemID, delta); err != nil {
			return err
		}
		return s.repo.InsertTransaction(ctx, tx, transaction)
	})
	if err != nil {
		s.logFailure(string(kind), err, zap.Int64("item_id", itemID), zap.Int("quantity", quantity))
		return nil, err
	}

	s.logger.Info("Central stock changed",
		zap.String("operation", string(kind)),
		zap.Int64("item_id", itemID),
		zap.Int("quantity", quantity),
		zap.Int("new_quantity", item.Quantity),
	)
	s.log.CreateStockChangeLogEntry(ctx, transaction, item)

	return item, nil
}

type TransferStockCommand struct {
	TechnicianID int64
	ItemType     string
	Packaging    string
	Quantity     int
	From         string
	To           string
	Reason       *string
	Notes        *string
}

// TransferStock moves a quantity between a technician's fixed and moving
// pools. Both sides go through Apply in one transaction.
func (s *LedgerService) TransferStock(ctx context.Context, cmd TransferStockCommand, actorID int64) (*models.TransferStockResult, error) {
	result, err := s.transferStock(ctx, cmd, actorID)
	s.metrics.Observe("transfer_stock", err)
	return result, err
}

func (s *LedgerService) transferStock(ctx context.Context, cmd TransferStockCommand, actorID int64) (*models.TransferStockResult, error) {
	if cmd.Quantity <= 0 {
		return nil, custom_error.NewValidation("quantity", "must be greater than zero")
	}
	packaging, err := models.NewPackaging(cmd.Packaging)
	if err != nil {
		return nil, custom_error.NewValidation("packaging", err.Error())
	}
	from, err := models.NewInventoryLocation(cmd.From)
	if err != nil {
		return nil, custom_error.NewValidation("from", err.Error())
	}
	to, err := models.NewInventoryLocation(cmd.To)
	if err != nil {
		return nil, custom_error.NewValidation("to", err.Error())
	}
	if from == to {
		return nil, custom_error.NewValidation("to", "source and destination inventory must differ")
	}
	if _, err := s.catalog.Resolve(ctx, cmd.ItemType); err != nil {
		return nil, err
	}

	movement := &models.StockMovement{
		TechnicianID:  cmd.TechnicianID,
		ItemType:      cmd.ItemType,
		PackagingType: packaging,
		Quantity:      cmd.Quantity,
		FromInventory: from,
		ToInventory:   to,
		PerformedBy:   actorID,
		Reason:        cmd.Reason,
		Notes:         cmd.Notes,
		CreatedAt:     time.Now().UTC(),
	}

	err = s.tx.WithinTransaction(ctx, func(tx *goqu.TxDatabase) error {
		if _, err := s.pool.Apply(ctx, tx, from.PoolKind(), cmd.TechnicianID, cmd.ItemType, packaging, -cmd.Quantity); err != nil {
			return err
		}
		if _, err := s.pool.Apply(ctx, tx, to.PoolKind(), cmd.TechnicianID, cmd.ItemType, packaging, cmd.Quantity); err != nil {
			return err
		}
		return s.repo.InsertStockMovement(ctx, tx, movement)
	})
	if err != nil {
		s.logFailure("transfer_stock", err, zap.Int64("technician_id", cmd.TechnicianID), zap.String("item_type", cmd.ItemType))
		return nil, err
	}

	s.logger.Info("Technician stock moved",
		zap.String("operation", "transfer_stock"),
		zap.Int64("technician_id", cmd.TechnicianID),
		zap.String("item_type", cmd.ItemType),
		zap.String("packaging", string(packaging)),
		zap.Int("quantity", cmd.Quantity),
		zap.String("from", string(from)),
	)
	s.log.CreateStockMovementLogEntry(ctx, movement)

	result := &models.TransferStockResult{Movement: movement}
	fixed, err := s.poolRepo.LoadRecord(ctx, models.PoolTechnicianFixed, cmd.TechnicianID)
	if err != nil {
		return nil, err
	}
	moving, err := s.poolRepo.LoadRecord(ctx, models.PoolTechnicianMoving, cmd.TechnicianID)
	if err != nil {
		return nil, err
	}
	result.Fixed = poolItem(fixed.Get(cmd.ItemType, models.PackagingBox), fixed.Get(cmd.ItemType, models.PackagingUnit), cmd.ItemType)
	result.Moving = poolItem(moving.Get(cmd.ItemType, models.PackagingBox), moving.Get(cmd.ItemType, models.PackagingUnit), cmd.ItemType)

	return result, nil
}

func poolItem(boxes, units int, itemType string) models.PoolItem {
	return models.PoolItem{ItemTypeID: itemType, Boxes: boxes, Units: units, Total: boxes + units}
}

// ReceiveStock credits a warehouse pool with goods arriving from outside
// the tracked pools.
func (s *LedgerService) ReceiveStock(ctx context.Context, warehouseID int64, itemType, packagingName string, quantity int, actorID int64) (*models.PoolItem, error) {
	item, err := s.receiveStock(ctx, warehouseID, itemType, packagingName, quantity, actorID)
	s.metrics.Observe("receive_stock", err)
	return item, err
}

func (s *LedgerService) receiveStock(ctx context.Context, warehouseID int64, itemType, packagingName string, quantity int, actorID int64) (*models.PoolItem, error) {
	if quantity <= 0 {
		return nil, custom_error.NewValidation("quantity", "must be greater than zero")
	}
	packaging, err := models.NewPackaging(packagingName)
	if err != nil {
		return nil, custom_error.NewValidation("packaging", err.Error())
	}
	if _, err := s.catalog.Resolve(ctx, itemType); err != nil {
		return nil, err
	}
	warehouse, err := s.poolRepo.GetWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	var newValue int
	err = s.tx.WithinTransaction(ctx, func(tx *goqu.TxDatabase) error {
		var applyErr error
		newValue, applyErr = s.pool.Apply(ctx, tx, models.PoolWarehouse, warehouseID, itemType, packaging, quantity)
		return applyErr
	})
	if err != nil {
		s.logFailure("receive_stock", err, zap.Int64("warehouse_id", warehouseID), zap.String("item_type", itemType))
		return nil, err
	}

	s.logger.Info("Warehouse stock received",
		zap.String("operation", "receive_stock"),
		zap.Int64("warehouse_id", warehouseID),
		zap.String("item_type", itemType),
		zap.Int("quantity", quantity),
		zap.Int("new_value", newValue),
	)
	s.log.CreateWarehouseReceiptLogEntry(ctx, actorID, warehouse, itemType, packaging, quantity, newValue)

	record, err := s.poolRepo.LoadRecord(ctx, models.PoolWarehouse, warehouseID)
	if err != nil {
		return nil, err
	}
	item := poolItem(record.Get(itemType, models.PackagingBox), record.Get(itemType, models.PackagingUnit), itemType)

	return &item, nil
}

func (s *LedgerService) ListTransactions(ctx context.Context, itemID int64) ([]models.Transaction, error) {
	if _, err := s.poolRepo.GetCentralItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(ctx, itemID)
}

func (s *LedgerService) ListStockMovements(ctx context.Context, technicianID int64) ([]models.StockMovement, error) {
	return s.repo.ListStockMovements(ctx, technicianID)
}

func (s *LedgerService) logFailure(operation string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("operation", operation), zap.Error(err))
	if metrics.Outcome(err) == "error" {
		s.logger.Error("Ledger operation failed", fields...)
		return
	}
	s.logger.Warn("Ledger operation rejected", fields...)
}
