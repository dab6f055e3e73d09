package units

import (
	"fieldstock/pkg/models"
)

type Thresholds struct {
	Low      int `json:"low_stock_threshold" db:"low_stock_threshold"`
	Critical int `json:"critical_stock_threshold" db:"critical_stock_threshold"`
}

var DefaultThresholds = Thresholds{Low: 5, Critical: 2}

// Record is one owner's pool with both representations loaded. Callers go
// through Get and Set and never pick a representation themselves.
type Record struct {
	Kind       models.PoolKind
	OwnerID    int64
	Legacy     *LegacyValues
	Entries    *Entries
	Thresholds *Thresholds
}

func NewRecord(kind models.PoolKind, ownerID int64) *Record {
	r := &Record{
		Kind:    kind,
		OwnerID: ownerID,
		Legacy:  NewLegacyValues(nil),
		Entries: NewEntries(nil),
	}
	if kind == models.PoolTechnicianFixed {
		t := DefaultThresholds
		r.Thresholds = &t
	}
	return r
}

// accessorFor resolves an item type to its storage: an existing entry wins,
// then the legacy column pair, otherwise a new entry.
func (r *Record) accessorFor(itemTypeID string) PoolAccessor {
	if r.Entries.Has(itemTypeID) {
		return r.Entries
	}
	if r.Legacy.Has(itemTypeID) {
		return r.Legacy
	}
	return r.Entries
}

func (r *Record) Get(itemTypeID string, packaging models.Packaging) int {
	return r.accessorFor(itemTypeID).Get(itemTypeID, packaging)
}

func (r *Record) Set(itemTypeID string, packaging models.Packaging, value int) {
	r.accessorFor(itemTypeID).Set(itemTypeID, packaging, value)
}

// Total is boxes plus units as stored, without box-size conversion.
func (r *Record) Total(itemTypeID string) int {
	return r.Get(itemTypeID, models.PackagingBox) + r.Get(itemTypeID, models.PackagingUnit)
}

// Items lists every legacy key followed by the dynamic entries.
func (r *Record) Items() []models.PoolItem {
	items := make([]models.PoolItem, 0, len(legacyFields)+len(r.Entries.items))
	seen := make(map[string]struct{}, len(legacyFields))
	for _, key := range LegacyKeys() {
		items = append(items, r.item(key))
		seen[key] = struct{}{}
	}
	for _, entry := range r.Entries.List() {
		if _, ok := seen[entry.ItemTypeID]; ok {
			continue
		}
		items = append(items, r.item(entry.ItemTypeID))
	}
	return items
}

func (r *Record) item(itemTypeID string) models.PoolItem {
	boxes := r.Get(itemTypeID, models.PackagingBox)
	units := r.Get(itemTypeID, models.PackagingUnit)
	return models.PoolItem{ItemTypeID: itemTypeID, Boxes: boxes, Units: units, Total: boxes + units}
}

func (r *Record) Snapshot() models.PoolSnapshot {
	items := r.Items()
	total := 0
	for _, it := range items {
		total += it.Total
	}
	return models.PoolSnapshot{Kind: r.Kind, OwnerID: r.OwnerID, Items: items, Total: total}
}

// Clone returns a deep copy with a clean dirty set.
func (r *Record) Clone() *Record {
	c := &Record{
		Kind:    r.Kind,
		OwnerID: r.OwnerID,
		Legacy:  NewLegacyValues(r.Legacy.values),
		Entries: NewEntries(r.Entries.List()),
	}
	if r.Thresholds != nil {
		t := *r.Thresholds
		c.Thresholds = &t
	}
	return c
}
