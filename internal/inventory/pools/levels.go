package pools

import (
	"fieldstock/internal/inventory/units"
	"fieldstock/pkg/models"
)

const (
	StatusAvailable = "available"
	StatusLow       = "low"
	StatusOut       = "out"
)

// ItemStatus derives the central item status from its quantity.
func ItemStatus(quantity, minThreshold int) string {
	switch {
	case quantity <= 0:
		return StatusOut
	case quantity <= minThreshold:
		return StatusLow
	default:
		return StatusAvailable
	}
}

// Alert derives a technician's alert level from the total item count of
// the fixed pool.
func Alert(total int, t units.Thresholds) models.AlertLevel {
	switch {
	case total <= t.Critical:
		return models.AlertCritical
	case total <= t.Low:
		return models.AlertWarning
	default:
		return models.AlertGood
	}
}
