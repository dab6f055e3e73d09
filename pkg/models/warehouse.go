package models

import "time"

type Warehouse struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	RegionID  *int64    `json:"region_id,omitempty" db:"region_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CreateWarehouseRequest struct {
	Name     string `json:"name" binding:"required"`
	RegionID *int64 `json:"region_id"`
}

type ReceiveStockInput struct {
	ItemType  string  `json:"item_type" binding:"required"`
	Packaging string  `json:"packaging" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required"`
	Notes     *string `json:"notes"`
}

func (w *Warehouse) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   w.ID,
		ResourceType: "warehouse",
	}
}
