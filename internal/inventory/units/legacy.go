package units

import (
	"strings"

	"fieldstock/pkg/models"
)

// LegacyField maps a fixed item-type key onto the column pair every pool
// table carries for it.
type LegacyField struct {
	Key         string
	BoxesField  string
	UnitsField  string
	BoxesColumn string
	UnitsColumn string
}

func legacy(key, column string) LegacyField {
	return LegacyField{
		Key:         key,
		BoxesField:  key + "Boxes",
		UnitsField:  key + "Units",
		BoxesColumn: column + "_boxes",
		UnitsColumn: column + "_units",
	}
}

var legacyFields = []LegacyField{
	legacy("n950", "n950"),
	legacy("i9000s", "i9000s"),
	legacy("i9100", "i9100"),
	legacy("rollPaper", "roll_paper"),
	legacy("stickers", "stickers"),
	legacy("newBatteries", "new_batteries"),
	legacy("mobilySim", "mobily_sim"),
	legacy("vodafoneSim", "vodafone_sim"),
	legacy("zainSim", "zain_sim"),
	legacy("stcSim", "stc_sim"),
}

var legacyByKey = func() map[string]LegacyField {
	m := make(map[string]LegacyField, len(legacyFields))
	for _, f := range legacyFields {
		m[f.Key] = f
	}
	return m
}()

// LegacyKeys returns the fixed item-type keys in schema order.
func LegacyKeys() []string {
	keys := make([]string, 0, len(legacyFields))
	for _, f := range legacyFields {
		keys = append(keys, f.Key)
	}
	return keys
}

func LookupLegacy(key string) (LegacyField, bool) {
	f, ok := legacyByKey[key]
	return f, ok
}

func IsLegacyKey(key string) bool {
	_, ok := legacyByKey[key]
	return ok
}

// Column returns the table column holding the given packaging.
func (f LegacyField) Column(p models.Packaging) string {
	if p == models.PackagingBox {
		return f.BoxesColumn
	}
	return f.UnitsColumn
}

// LegacyColumns lists every legacy column in schema order.
func LegacyColumns() []string {
	cols := make([]string, 0, len(legacyFields)*2)
	for _, f := range legacyFields {
		cols = append(cols, f.BoxesColumn, f.UnitsColumn)
	}
	return cols
}

// ParseLegacyField splits a per-item field name such as "n950Boxes" into
// its key and packaging.
func ParseLegacyField(name string) (string, models.Packaging, bool) {
	switch {
	case strings.HasSuffix(name, "Boxes"):
		key := strings.TrimSuffix(name, "Boxes")
		return key, models.PackagingBox, IsLegacyKey(key)
	case strings.HasSuffix(name, "Units"):
		key := strings.TrimSuffix(name, "Units")
		return key, models.PackagingUnit, IsLegacyKey(key)
	default:
		return "", "", false
	}
}
