package catalog

import (
	"context"
	"fmt"
	"time"

	"fieldstock/internal/repository"
	custom_error "fieldstock/pkg/errors"
	"fieldstock/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type Repository interface {
	GetItemType(ctx context.Context, id string) (*models.ItemType, error)
	ListItemTypes(ctx context.Context) ([]models.ItemType, error)
	CreateItemType(ctx context.Context, itemType models.ItemType) (*models.ItemType, error)
}

type ItemTypeRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *ItemTypeRepository {
	return &ItemTypeRepository{repository: r}
}

func (r *ItemTypeRepository) GetItemType(ctx context.Context, id string) (*models.ItemType, error) {
	var itemType models.ItemType
	found, err := r.repository.GoquDBWrapper.From("item_types").
		Where(goqu.Ex{"id": id}).
		ScanStructContext(ctx, &itemType)
	if err != nil {
		return nil, fmt.Errorf("unable to select item type %s: %w", id, err)
	}
	if !found {
		return nil, custom_error.NewNotFound("item_type", id)
	}

	return &itemType, nil
}

func (r *ItemTypeRepository) ListItemTypes(ctx context.Context) ([]models.ItemType, error) {
	itemTypes := []models.ItemType{}
	err := r.repository.GoquDBWrapper.From("item_types").
		Where(goqu.Ex{"is_active": true, "is_visible": true}).
		Order(goqu.I("sort_order").Asc(), goqu.I("id").Asc()).
		ScanStructsContext(ctx, &itemTypes)
	if err != nil {
		return nil, fmt.Errorf("unable to select item types: %w", err)
	}

	return itemTypes, nil
}

func (r *ItemTypeRepository) CreateItemType(ctx context.Context, itemType models.ItemType) (*models.ItemType, error) {
	itemType.CreatedAt = time.Now().UTC()
	_, err := r.repository.GoquDBWrapper.Insert("item_types").
		Rows(itemType).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to insert item type %s: %w", itemType.ID, custom_error.FromDB(err))
	}

	return &itemType, nil
}
