package units

import (
	"testing"

	"fieldstock/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLegacyField(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		key       string
		packaging models.Packaging
		ok        bool
	}{
		{"boxes", "n950Boxes", "n950", models.PackagingBox, true},
		{"units", "stcSimUnits", "stcSim", models.PackagingUnit, true},
		{"camel case key", "rollPaperBoxes", "rollPaper", models.PackagingBox, true},
		{"unknown key", "laptopBoxes", "laptop", models.PackagingBox, false},
		{"no suffix", "n950", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, packaging, ok := ParseLegacyField(tt.field)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.packaging, packaging)
		})
	}
}

func TestLegacyFieldColumn(t *testing.T) {
	f, ok := LookupLegacy("newBatteries")
	require.True(t, ok)
	assert.Equal(t, "new_batteries_boxes", f.Column(models.PackagingBox))
	assert.Equal(t, "new_batteries_units", f.Column(models.PackagingUnit))
	assert.Len(t, LegacyColumns(), 2*len(LegacyKeys()))
}

func TestRecordResolution(t *testing.T) {
	tests := []struct {
		name         string
		itemTypeID   string
		seedEntries  []Entry
		expectLegacy bool
	}{
		{"legacy key without entry uses columns", "n950", nil, true},
		{"unknown key creates entry", "routerX", nil, false},
		{"existing entry wins over legacy column", "stickers", []Entry{{ItemTypeID: "stickers"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecord(models.PoolWarehouse, 1)
			r.Entries = NewEntries(tt.seedEntries)

			r.Set(tt.itemTypeID, models.PackagingBox, 4)

			assert.Equal(t, 4, r.Get(tt.itemTypeID, models.PackagingBox))
			assert.Equal(t, 0, r.Get(tt.itemTypeID, models.PackagingUnit))
			if tt.expectLegacy {
				assert.Len(t, r.Legacy.Dirty(), 1)
				assert.Empty(t, r.Entries.Dirty())
			} else {
				assert.Empty(t, r.Legacy.Dirty())
				require.Len(t, r.Entries.Dirty(), 1)
				assert.Equal(t, tt.itemTypeID, r.Entries.Dirty()[0].ItemTypeID)
			}
		})
	}
}

func TestMissingValuesReadAsZero(t *testing.T) {
	r := NewRecord(models.PoolTechnicianMoving, 3)
	assert.Equal(t, 0, r.Get("n950", models.PackagingBox))
	assert.Equal(t, 0, r.Get("neverSeen", models.PackagingUnit))
	assert.False(t, r.Entries.Has("neverSeen"))
}

func TestTotalsAddPackagingWithoutConversion(t *testing.T) {
	r := NewRecord(models.PoolTechnicianFixed, 3)
	r.Set("n950", models.PackagingBox, 2)
	r.Set("n950", models.PackagingUnit, 7)
	r.Set("routerX", models.PackagingUnit, 1)

	assert.Equal(t, 9, r.Total("n950"))

	snap := r.Snapshot()
	assert.Equal(t, 10, snap.Total)
	assert.Len(t, snap.Items, len(LegacyKeys())+1)
	assert.Equal(t, "routerX", snap.Items[len(snap.Items)-1].ItemTypeID)
	require.NotNil(t, r.Thresholds)
}

func TestCloneIsIndependent(t *testing.T) {
	r := NewRecord(models.PoolWarehouse, 1)
	r.Set("n950", models.PackagingBox, 10)
	r.Set("routerX", models.PackagingBox, 1)

	c := r.Clone()
	c.Set("n950", models.PackagingBox, 3)
	c.Set("routerX", models.PackagingBox, 0)

	assert.Equal(t, 10, r.Get("n950", models.PackagingBox))
	assert.Equal(t, 1, r.Get("routerX", models.PackagingBox))
	assert.Equal(t, 3, c.Get("n950", models.PackagingBox))
}
