package units

import (
	"sort"

	"fieldstock/pkg/models"
)

// PoolAccessor reads and writes one packaging slot of an item type on a
// pool record, regardless of how the record stores it.
type PoolAccessor interface {
	Get(itemTypeID string, packaging models.Packaging) int
	Set(itemTypeID string, packaging models.Packaging, value int)
}

// LegacyValues backs the fixed column pairs of a pool row.
type LegacyValues struct {
	values map[string]int
	dirty  map[string]struct{}
}

func NewLegacyValues(columns map[string]int) *LegacyValues {
	values := make(map[string]int, len(columns))
	for k, v := range columns {
		values[k] = v
	}
	return &LegacyValues{values: values, dirty: map[string]struct{}{}}
}

func (l *LegacyValues) Has(itemTypeID string) bool {
	return IsLegacyKey(itemTypeID)
}

func (l *LegacyValues) Get(itemTypeID string, packaging models.Packaging) int {
	f, ok := LookupLegacy(itemTypeID)
	if !ok {
		return 0
	}
	return l.values[f.Column(packaging)]
}

// Set ignores keys outside the legacy table; Record never routes them here.
func (l *LegacyValues) Set(itemTypeID string, packaging models.Packaging, value int) {
	f, ok := LookupLegacy(itemTypeID)
	if !ok {
		return
	}
	col := f.Column(packaging)
	l.values[col] = value
	l.dirty[col] = struct{}{}
}

// Columns returns a copy of every column value, zero-filled.
func (l *LegacyValues) Columns() map[string]int {
	out := make(map[string]int, len(legacyFields)*2)
	for _, col := range LegacyColumns() {
		out[col] = l.values[col]
	}
	return out
}

// Dirty returns the columns written since construction.
func (l *LegacyValues) Dirty() map[string]int {
	out := make(map[string]int, len(l.dirty))
	for col := range l.dirty {
		out[col] = l.values[col]
	}
	return out
}

type Entry struct {
	ItemTypeID string `json:"item_type_id" db:"item_type_id"`
	Boxes      int    `json:"boxes" db:"boxes"`
	Units      int    `json:"units" db:"units"`
}

// Entries backs the dynamic per-item-type rows of a pool.
type Entries struct {
	items map[string]*Entry
	dirty map[string]struct{}
}

func NewEntries(list []Entry) *Entries {
	e := &Entries{items: make(map[string]*Entry, len(list)), dirty: map[string]struct{}{}}
	for i := range list {
		entry := list[i]
		e.items[entry.ItemTypeID] = &entry
	}
	return e
}

func (e *Entries) Has(itemTypeID string) bool {
	_, ok := e.items[itemTypeID]
	return ok
}

func (e *Entries) Get(itemTypeID string, packaging models.Packaging) int {
	entry, ok := e.items[itemTypeID]
	if !ok {
		return 0
	}
	if packaging == models.PackagingBox {
		return entry.Boxes
	}
	return entry.Units
}

// Set creates a zeroed entry on first write.
func (e *Entries) Set(itemTypeID string, packaging models.Packaging, value int) {
	entry, ok := e.items[itemTypeID]
	if !ok {
		entry = &Entry{ItemTypeID: itemTypeID}
		e.items[itemTypeID] = entry
	}
	if packaging == models.PackagingBox {
		entry.Boxes = value
	} else {
		entry.Units = value
	}
	e.dirty[itemTypeID] = struct{}{}
}

// List returns the entries ordered by item type.
func (e *Entries) List() []Entry {
	out := make([]Entry, 0, len(e.items))
	for _, entry := range e.items {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemTypeID < out[j].ItemTypeID })
	return out
}

func (e *Entries) Dirty() []Entry {
	out := make([]Entry, 0, len(e.dirty))
	for id := range e.dirty {
		out = append(out, *e.items[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemTypeID < out[j].ItemTypeID })
	return out
}

var (
	_ PoolAccessor = (*LegacyValues)(nil)
	_ PoolAccessor = (*Entries)(nil)
)
