package models

import (
	"time"

	"fieldstock/pkg/metadata"
)

// WarehouseTransfer is one line of an approved request, moving a quantity
// of one item type and packaging from a warehouse to a technician.
type WarehouseTransfer struct {
	ID              int64                   `json:"id" db:"id"`
	RequestID       *int64                  `json:"request_id,omitempty" db:"request_id"`
	WarehouseID     int64                   `json:"warehouse_id" db:"warehouse_id"`
	TechnicianID    int64                   `json:"technician_id" db:"technician_id"`
	ItemType        string                  `json:"item_type" db:"item_type"`
	PackagingType   Packaging               `json:"packaging_type" db:"packaging_type"`
	Quantity        int                     `json:"quantity" db:"quantity"`
	Status          metadata.TransferStatus `json:"status" db:"status"`
	PerformedBy     int64                   `json:"performed_by" db:"performed_by"`
	Notes           *string                 `json:"notes,omitempty" db:"notes"`
	RejectionReason *string                 `json:"rejection_reason,omitempty" db:"rejection_reason"`
	RespondedAt     *time.Time              `json:"responded_at,omitempty" db:"responded_at"`
	CreatedAt       time.Time               `json:"created_at" db:"created_at"`
}

func (t *WarehouseTransfer) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   t.ID,
		ResourceType: "warehouse_transfer",
	}
}

// TransferBatch is the logical request a technician accepts or rejects.
type TransferBatch struct {
	Key          string                  `json:"key"`
	RequestID    *int64                  `json:"request_id,omitempty"`
	TechnicianID int64                   `json:"technician_id"`
	WarehouseID  int64                   `json:"warehouse_id"`
	Status       metadata.TransferStatus `json:"status"`
	Legacy       bool                    `json:"legacy"`
	Transfers    []WarehouseTransfer     `json:"transfers"`
	CreatedAt    time.Time               `json:"created_at"`
}

type TransferBatchInput struct {
	TransferIDs []int64 `json:"transfer_ids" binding:"required,min=1"`
	Reason      string  `json:"reason"`
}

type BulkTransferInput struct {
	RequestIDs []string `json:"request_ids" binding:"required,min=1"`
	Reason     string   `json:"reason"`
}
