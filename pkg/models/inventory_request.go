package models

import (
	"time"

	"fieldstock/pkg/metadata"
)

type RequestLine struct {
	ItemTypeID string    `json:"item_type_id" db:"item_type_id"`
	Packaging  Packaging `json:"packaging" db:"packaging"`
	Quantity   int       `json:"quantity" db:"quantity"`
}

type InventoryRequest struct {
	ID           int64                  `json:"id" db:"id"`
	TechnicianID int64                  `json:"technician_id" db:"technician_id"`
	Status       metadata.RequestStatus `json:"status" db:"status"`
	WarehouseID  *int64                 `json:"warehouse_id,omitempty" db:"warehouse_id"`
	Lines        []RequestLine          `json:"entries" db:"-"`
	Notes        *string                `json:"notes,omitempty" db:"notes"`
	AdminNotes   *string                `json:"admin_notes,omitempty" db:"admin_notes"`
	ReviewedBy   *int64                 `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt   *time.Time             `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt    time.Time              `json:"created_at" db:"created_at"`
}

func (r *InventoryRequest) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   r.ID,
		ResourceType: "inventory_request",
	}
}

type RequestEntryInput struct {
	ItemTypeID string `json:"item_type_id" binding:"required"`
	Packaging  string `json:"packaging" binding:"required"`
	Quantity   int    `json:"quantity"`
}

// SubmitRequestInput carries either dynamic entries or legacy per-item
// fields such as {"n950Boxes": 3}.
type SubmitRequestInput struct {
	Entries []RequestEntryInput `json:"entries"`
	Legacy  map[string]int      `json:"legacy"`
	Notes   *string             `json:"notes"`
}

type ApproveRequestInput struct {
	WarehouseID int64 `json:"warehouse_id" binding:"required"`
}

type RejectRequestInput struct {
	AdminNotes string `json:"admin_notes" binding:"required"`
}
