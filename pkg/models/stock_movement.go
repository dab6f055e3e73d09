package models

import "time"

// StockMovement records a quantity moved between a technician's fixed and
// moving pools.
type StockMovement struct {
	ID            int64             `json:"id" db:"id"`
	TechnicianID  int64             `json:"technician_id" db:"technician_id"`
	ItemType      string            `json:"item_type" db:"item_type"`
	PackagingType Packaging         `json:"packaging_type" db:"packaging_type"`
	Quantity      int               `json:"quantity" db:"quantity"`
	FromInventory InventoryLocation `json:"from_inventory" db:"from_inventory"`
	ToInventory   InventoryLocation `json:"to_inventory" db:"to_inventory"`
	PerformedBy   int64             `json:"performed_by" db:"performed_by"`
	Reason        *string           `json:"reason,omitempty" db:"reason"`
	Notes         *string           `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
}

func (m *StockMovement) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   m.ID,
		ResourceType: "stock_movement",
	}
}
