package pools

import (
	"context"

	"fieldstock/internal/inventory/units"
	"fieldstock/internal/repository"
	custom_error "fieldstock/pkg/errors"
	"fieldstock/pkg/models"
)

// PoolService serves the read models of the pools and the catalog-style
// records that own them.
type PoolService struct {
	repo Repository
}

func NewService(repo Repository) *PoolService {
	return &PoolService{repo: repo}
}

func (s *PoolService) WarehouseInventory(ctx context.Context, warehouseID int64) (*models.PoolSnapshot, error) {
	if _, err := s.repo.GetWarehouse(ctx, warehouseID); err != nil {
		return nil, err
	}
	record, err := s.repo.LoadRecord(ctx, models.PoolWarehouse, warehouseID)
	if err != nil {
		return nil, err
	}

	snapshot := record.Snapshot()
	return &snapshot, nil
}

func (s *PoolService) TechnicianInventory(ctx context.Context, technicianID int64) (*models.TechnicianInventory, error) {
	fixed, err := s.repo.LoadRecord(ctx, models.PoolTechnicianFixed, technicianID)
	if err != nil {
		return nil, err
	}
	moving, err := s.repo.LoadRecord(ctx, models.PoolTechnicianMoving, technicianID)
	if err != nil {
		return nil, err
	}

	thresholds := units.DefaultThresholds
	if fixed.Thresholds != nil {
		thresholds = *fixed.Thresholds
	}
	fixedSnapshot := fixed.Snapshot()

	return &models.TechnicianInventory{
		TechnicianID:           technicianID,
		Fixed:                  fixedSnapshot,
		Moving:                 moving.Snapshot(),
		LowStockThreshold:      thresholds.Low,
		CriticalStockThreshold: thresholds.Critical,
		AlertLevel:             Alert(fixedSnapshot.Total, thresholds),
	}, nil
}

func (s *PoolService) ListCentralItems(ctx context.Context, regionID *int64) ([]models.CentralItem, error) {
	conditions := repository.NewQueryBuilder()
	if regionID != nil {
		conditions.AddCondition("region_id", *regionID)
	}

	items, err := s.repo.ListCentralItems(ctx, conditions)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Status = ItemStatus(items[i].Quantity, items[i].MinThreshold)
	}

	return items, nil
}

func (s *PoolService) GetCentralItem(ctx context.Context, id int64) (*models.CentralItem, error) {
	item, err := s.repo.GetCentralItem(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Status = ItemStatus(item.Quantity, item.MinThreshold)

	return item, nil
}

func (s *PoolService) CreateCentralItem(ctx context.Context, req models.CreateCentralItemRequest) (*models.CentralItem, error) {
	if req.Quantity < 0 {
		return nil, custom_error.NewValidation("quantity", "must not be negative")
	}
	if req.MinThreshold < 0 {
		return nil, custom_error.NewValidation("min_threshold", "must not be negative")
	}

	item, err := s.repo.CreateCentralItem(ctx, req)
	if err != nil {
		return nil, err
	}
	item.Status = ItemStatus(item.Quantity, item.MinThreshold)

	return item, nil
}

func (s *PoolService) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	return s.repo.ListWarehouses(ctx)
}

func (s *PoolService) CreateWarehouse(ctx context.Context, req models.CreateWarehouseRequest) (*models.Warehouse, error) {
	return s.repo.CreateWarehouse(ctx, req)
}
