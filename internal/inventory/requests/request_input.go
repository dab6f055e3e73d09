package requests

import (
	"sort"

	"fieldstock/internal/inventory/units"
	custom_error "fieldstock/pkg/errors"
	"fieldstock/pkg/models"
)

type lineKey struct {
	itemType  string
	packaging models.Packaging
}

// normalizeLines folds dynamic entries and legacy per-item fields into one
// line per item type and packaging. Zero quantities are dropped.
func normalizeLines(input models.SubmitRequestInput) ([]models.RequestLine, error) {
	quantities := map[lineKey]int{}

	for _, entry := range input.Entries {
		packaging, err := models.NewPackaging(entry.Packaging)
		if err != nil {
			return nil, custom_error.NewValidation("packaging", err.Error())
		}
		if entry.ItemTypeID == "" {
			return nil, custom_error.NewValidation("item_type_id", "is required")
		}
		if entry.Quantity < 0 {
			return nil, custom_error.NewValidation("quantity", "must not be negative")
		}
		quantities[lineKey{entry.ItemTypeID, packaging}] += entry.Quantity
	}

	for field, quantity := range input.Legacy {
		key, packaging, ok := units.ParseLegacyField(field)
		if !ok {
			return nil, custom_error.NewValidation(field, "unknown legacy item field")
		}
		if quantity < 0 {
			return nil, custom_error.NewValidation(field, "must not be negative")
		}
		quantities[lineKey{key, packaging}] += quantity
	}

	lines := make([]models.RequestLine, 0, len(quantities))
	for k, q := range quantities {
		if q == 0 {
			continue
		}
		lines = append(lines, models.RequestLine{ItemTypeID: k.itemType, Packaging: k.packaging, Quantity: q})
	}
	if len(lines) == 0 {
		return nil, custom_error.NewValidation("entries", "request must ask for at least one item")
	}

	sort.Slice(lines, func(i, j int) bool {
		if lines[i].ItemTypeID != lines[j].ItemTypeID {
			return lines[i].ItemTypeID < lines[j].ItemTypeID
		}
		return lines[i].Packaging < lines[j].Packaging
	})

	return lines, nil
}
