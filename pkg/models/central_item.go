package models

import "time"

// CentralItem is a region-owned stock line in the central pool. It has a
// single quantity and no box/unit split.
type CentralItem struct {
	ID           int64     `json:"id" db:"id"`
	RegionID     int64     `json:"region_id" db:"region_id"`
	Name         string    `json:"name" db:"name"`
	ItemTypeID   *string   `json:"item_type_id,omitempty" db:"item_type_id"`
	Quantity     int       `json:"quantity" db:"quantity"`
	MinThreshold int       `json:"min_threshold" db:"min_threshold"`
	Status       string    `json:"status" db:"-"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

func (i *CentralItem) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   i.ID,
		ResourceType: "central_item",
	}
}

type CreateCentralItemRequest struct {
	RegionID     int64   `json:"region_id" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	ItemTypeID   *string `json:"item_type_id"`
	Quantity     int     `json:"quantity" binding:"gte=0"`
	MinThreshold int     `json:"min_threshold" binding:"gte=0"`
}

type TransactionType string

const (
	TransactionAdd      TransactionType = "add"
	TransactionWithdraw TransactionType = "withdraw"
)

// Transaction is the append-only audit row of a central item add/withdraw.
type Transaction struct {
	ID        int64           `json:"id" db:"id"`
	ItemID    int64           `json:"item_id" db:"item_id"`
	UserID    *int64          `json:"user_id,omitempty" db:"user_id"`
	Type      TransactionType `json:"type" db:"type"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Reason    *string         `json:"reason,omitempty" db:"reason"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
