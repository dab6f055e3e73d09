package catalog

import (
	"context"
	"errors"
	"sort"

	"fieldstock/internal/inventory/units"
	custom_error "fieldstock/pkg/errors"
	"fieldstock/pkg/models"
)

// Resolver is what the ledger and workflow services need from the catalog.
type Resolver interface {
	Resolve(ctx context.Context, itemTypeID string) (*models.ItemType, error)
}

// Catalog resolves item types against the table, falling back to the
// legacy keys that every pool record carries as columns.
type Catalog struct {
	repo Repository
}

func NewCatalog(repo Repository) *Catalog {
	return &Catalog{repo: repo}
}

func legacyItemType(key string, sortOrder int) models.ItemType {
	return models.ItemType{
		ID:            key,
		NameLocalized: key,
		NameCanonical: key,
		Category:      "legacy",
		IsActive:      true,
		IsVisible:     true,
		SortOrder:     sortOrder,
	}
}

func (s *Catalog) Resolve(ctx context.Context, itemTypeID string) (*models.ItemType, error) {
	itemType, err := s.repo.GetItemType(ctx, itemTypeID)
	if err != nil {
		if !errors.Is(err, custom_error.ErrNotFound) {
			return nil, err
		}
		if !units.IsLegacyKey(itemTypeID) {
			return nil, custom_error.NewValidation("item_type", "unknown item type "+itemTypeID)
		}
		t := legacyItemType(itemTypeID, 0)
		return &t, nil
	}

	if !itemType.IsActive {
		return nil, custom_error.NewValidation("item_type", "item type "+itemTypeID+" is inactive")
	}

	return itemType, nil
}

// List returns active, visible item types plus any legacy key the table
// does not describe.
func (s *Catalog) List(ctx context.Context) ([]models.ItemType, error) {
	itemTypes, err := s.repo.ListItemTypes(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(itemTypes))
	for _, it := range itemTypes {
		known[it.ID] = struct{}{}
	}
	for i, key := range units.LegacyKeys() {
		if _, ok := known[key]; ok {
			continue
		}
		itemTypes = append(itemTypes, legacyItemType(key, 1000+i))
	}

	sort.SliceStable(itemTypes, func(i, j int) bool { return itemTypes[i].SortOrder < itemTypes[j].SortOrder })
	return itemTypes, nil
}

func (s *Catalog) Create(ctx context.Context, req models.CreateItemTypeRequest) (*models.ItemType, error) {
	visible := true
	if req.IsVisible != nil {
		visible = *req.IsVisible
	}

	return s.repo.CreateItemType(ctx, models.ItemType{
		ID:            req.ID,
		NameLocalized: req.NameLocalized,
		NameCanonical: req.NameCanonical,
		Category:      req.Category,
		UnitsPerBox:   req.UnitsPerBox,
		IsActive:      true,
		IsVisible:     visible,
		SortOrder:     req.SortOrder,
	})
}
