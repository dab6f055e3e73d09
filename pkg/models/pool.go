package models

import (
	"fmt"
	"strings"
)

type PoolKind string

const (
	PoolWarehouse        PoolKind = "warehouse"
	PoolTechnicianFixed  PoolKind = "technician_fixed"
	PoolTechnicianMoving PoolKind = "technician_moving"
)

func (k PoolKind) IsValid() bool {
	switch k {
	case PoolWarehouse, PoolTechnicianFixed, PoolTechnicianMoving:
		return true
	default:
		return false
	}
}

// Packaging is the unit of measure of a pool quantity.
type Packaging string

const (
	PackagingBox  Packaging = "box"
	PackagingUnit Packaging = "unit"
)

// NewPackaging accepts both the singular and the plural selector.
func NewPackaging(value string) (Packaging, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "box", "boxes":
		return PackagingBox, nil
	case "unit", "units":
		return PackagingUnit, nil
	default:
		return "", fmt.Errorf("invalid packaging %q, only box and unit are allowed", value)
	}
}

// InventoryLocation names one of a technician's two pools.
type InventoryLocation string

const (
	LocationFixed  InventoryLocation = "fixed"
	LocationMoving InventoryLocation = "moving"
)

func NewInventoryLocation(value string) (InventoryLocation, error) {
	switch InventoryLocation(value) {
	case LocationFixed, LocationMoving:
		return InventoryLocation(value), nil
	default:
		return "", fmt.Errorf("invalid inventory location %q", value)
	}
}

func (l InventoryLocation) PoolKind() PoolKind {
	if l == LocationMoving {
		return PoolTechnicianMoving
	}
	return PoolTechnicianFixed
}

type PoolItem struct {
	ItemTypeID string `json:"item_type_id"`
	Boxes      int    `json:"boxes"`
	Units      int    `json:"units"`
	Total      int    `json:"total"`
}

type PoolSnapshot struct {
	Kind    PoolKind   `json:"kind"`
	OwnerID int64      `json:"owner_id"`
	Items   []PoolItem `json:"items"`
	Total   int        `json:"total"`
}

type AlertLevel string

const (
	AlertGood     AlertLevel = "good"
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"
)

type TechnicianInventory struct {
	TechnicianID           int64        `json:"technician_id"`
	Fixed                  PoolSnapshot `json:"fixed"`
	Moving                 PoolSnapshot `json:"moving"`
	LowStockThreshold      int          `json:"low_stock_threshold"`
	CriticalStockThreshold int          `json:"critical_stock_threshold"`
	AlertLevel             AlertLevel   `json:"alert_level"`
}
