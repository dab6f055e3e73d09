package pools

import (
	"context"
	"fmt"

	custom_error "fieldstock/pkg/errors"
	"fieldstock/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

// Pool is the only writer of pool quantities. Every ledger and workflow
// mutation goes through Apply or ApplyCentral.
type Pool struct {
	repo Repository
}

func NewPool(repo Repository) *Pool {
	return &Pool{repo: repo}
}

// Get reads one slot outside a transaction. A missing pool reads as zero.
func (p *Pool) Get(ctx context.Context, kind models.PoolKind, ownerID int64, itemTypeID string, packaging models.Packaging) (int, error) {
	record, err := p.repo.LoadRecord(ctx, kind, ownerID)
	if err != nil {
		return 0, err
	}

	return record.Get(itemTypeID, packaging), nil
}

// Apply adds delta to one slot under a row lock and returns the new value.
// A result below zero fails with InsufficientStockError and writes nothing.
func (p *Pool) Apply(ctx context.Context, tx *goqu.TxDatabase, kind models.PoolKind, ownerID int64, itemTypeID string, packaging models.Packaging, delta int) (int, error) {
	record, err := p.repo.LockRecord(ctx, tx, kind, ownerID)
	if err != nil {
		return 0, err
	}

	current := record.Get(itemTypeID, packaging)
	next := current + delta
	if next < 0 {
		return current, &custom_error.InsufficientStockError{
			Pool:      string(kind),
			OwnerID:   ownerID,
			ItemType:  itemTypeID,
			Packaging: string(packaging),
			Available: current,
			Requested: -delta,
		}
	}

	record.Set(itemTypeID, packaging, next)
	if err := p.repo.SaveRecord(ctx, tx, record); err != nil {
		return 0, fmt.Errorf("failed to save %s pool of owner %d: %w", kind, ownerID, err)
	}

	return next, nil
}

// ApplyCentral is Apply for the single-quantity central item pool.
func (p *Pool) ApplyCentral(ctx context.Context, tx *goqu.TxDatabase, itemID int64, delta int) (*models.CentralItem, error) {
	item, err := p.repo.LockCentralItem(ctx, tx, itemID)
	if err != nil {
		return nil, err
	}

	next := item.Quantity + delta
	if next < 0 {
		return nil, &custom_error.InsufficientStockError{
			Pool:      "central",
			OwnerID:   item.RegionID,
			ItemType:  item.Name,
			Packaging: "quantity",
			Available: item.Quantity,
			Requested: -delta,
		}
	}

	if err := p.repo.SaveCentralQuantity(ctx, tx, itemID, next); err != nil {
		return nil, err
	}
	item.Quantity = next
	item.Status = ItemStatus(item.Quantity, item.MinThreshold)

	return item, nil
}
