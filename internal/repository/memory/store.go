// Package memory is a process-local implementation of every inventory
// repository. It backs the --in-memory server mode and the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fieldstock/internal/inventory/units"
	"fieldstock/internal/repository"
	custom_error "fieldstock/pkg/errors"
	"fieldstock/pkg/metadata"
	"fieldstock/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

// Postgres codes reported for the constraints the schema enforces.
const (
	uniqueViolation = "23505"
	checkViolation  = "23514"
)

type poolKey struct {
	kind    models.PoolKind
	ownerID int64
}

type state struct {
	pools        map[poolKey]*units.Record
	items        map[int64]models.CentralItem
	warehouses   map[int64]models.Warehouse
	itemTypes    map[string]models.ItemType
	transactions []models.Transaction
	movements    []models.StockMovement
	requests     map[int64]models.InventoryRequest
	transfers    map[int64]models.WarehouseTransfer
	events       []models.AuditLog
	nextID       int64
}

func newState() *state {
	return &state{
		pools:      map[poolKey]*units.Record{},
		items:      map[int64]models.CentralItem{},
		warehouses: map[int64]models.Warehouse{},
		itemTypes:  map[string]models.ItemType{},
		requests:   map[int64]models.InventoryRequest{},
		transfers:  map[int64]models.WarehouseTransfer{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, r := range s.pools {
		c.pools[k] = r.Clone()
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.itemTypes {
		c.itemTypes[k] = v
	}
	for k, v := range s.requests {
		v.Lines = append([]models.RequestLine(nil), v.Lines...)
		c.requests[k] = v
	}
	for k, v := range s.transfers {
		c.transfers[k] = v
	}
	c.transactions = append(c.transactions, s.transactions...)
	c.movements = append(c.movements, s.movements...)
	c.events = append(c.events, s.events...)
	c.nextID = s.nextID
	return c
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// Store keeps all inventory state in memory. Transactions are serialized
// and work on a private copy of the committed state that replaces it only
// on commit. Reads outside a transaction always see committed state.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data *state

	// work and active belong to the open transaction and are only touched
	// while txMu is held.
	work   *state
	active *goqu.TxDatabase
}

func NewStore() *Store {
	return &Store{data: newState()}
}

var _ repository.Transactor = (*Store)(nil)

// WithinTransaction hands fn a marker *goqu.TxDatabase. It is never used as
// a database handle; repository calls receiving it operate on the
// transaction's working copy.
func (s *Store) WithinTransaction(ctx context.Context, fn func(tx *goqu.TxDatabase) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.data.clone()
	s.mu.RUnlock()

	tx := new(goqu.TxDatabase)
	s.work, s.active = work, tx

	defer func() {
		s.work, s.active = nil, nil
		if p := recover(); p != nil {
			panic(p)
		}
		if err == nil {
			s.mu.Lock()
			s.data = work
			s.mu.Unlock()
		}
	}()

	err = fn(tx)
	return
}

// inTx reports whether tx is the marker of the transaction holding txMu.
// Only the goroutine running that transaction can hold the marker.
func (s *Store) inTx(tx *goqu.TxDatabase) bool {
	return tx != nil && tx == s.active
}

// write applies fn to the transaction's working copy, or to committed state
// as an autonomous write when tx is nil.
func (s *Store) write(tx *goqu.TxDatabase, fn func(d *state) error) error {
	if s.inTx(tx) {
		return fn(s.work)
	}
	return s.autonomous(fn)
}

// autonomous writes committed state directly. It waits for any open
// transaction, so a later rollback cannot discard it.
func (s *Store) autonomous(fn func(d *state) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) read(fn func(d *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

// view reads the working copy inside a transaction and committed state
// otherwise.
func (s *Store) view(tx *goqu.TxDatabase, fn func(d *state)) {
	if s.inTx(tx) {
		fn(s.work)
		return
	}
	s.read(fn)
}

func matches(conditions repository.QueryBuilder, fields map[string]interface{}) bool {
	if conditions == nil {
		return true
	}
	for key, want := range conditions.Conditions() {
		got, ok := fields[key]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// Pools

func (s *Store) LoadRecord(ctx context.Context, kind models.PoolKind, ownerID int64) (*units.Record, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown pool kind %s", kind)
	}
	var record *units.Record
	s.read(func(d *state) {
		if r, ok := d.pools[poolKey{kind, ownerID}]; ok {
			record = r.Clone()
		}
	})
	if record == nil {
		record = units.NewRecord(kind, ownerID)
	}
	return record, nil
}

func (s *Store) LockRecord(ctx context.Context, tx *goqu.TxDatabase, kind models.PoolKind, ownerID int64) (*units.Record, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown pool kind %s", kind)
	}
	var record *units.Record
	err := s.write(tx, func(d *state) error {
		if kind == models.PoolWarehouse {
			if _, ok := d.warehouses[ownerID]; !ok {
				return custom_error.NewNotFound("warehouse", ownerID)
			}
		}
		key := poolKey{kind, ownerID}
		r, ok := d.pools[key]
		if !ok {
			r = units.NewRecord(kind, ownerID)
			d.pools[key] = r
		}
		record = r.Clone()
		return nil
	})
	return record, err
}

func (s *Store) SaveRecord(ctx context.Context, tx *goqu.TxDatabase, record *units.Record) error {
	for col, v := range record.Legacy.Dirty() {
		if v < 0 {
			return custom_error.WrapDBError("negative quantity in "+col, checkViolation)
		}
	}
	for _, e := range record.Entries.Dirty() {
		if e.Boxes < 0 || e.Units < 0 {
			return custom_error.WrapDBError("negative quantity for "+e.ItemTypeID, checkViolation)
		}
	}
	return s.write(tx, func(d *state) error {
		d.pools[poolKey{record.Kind, record.OwnerID}] = record.Clone()
		return nil
	})
}

// SeedPool overwrites one owner's pool. Missing warehouses are created.
func (s *Store) SeedPool(kind models.PoolKind, ownerID int64, itemTypeID string, packaging models.Packaging, value int) {
	_ = s.autonomous(func(d *state) error {
		if kind == models.PoolWarehouse {
			if _, ok := d.warehouses[ownerID]; !ok {
				d.warehouses[ownerID] = models.Warehouse{ID: ownerID, Name: fmt.Sprintf("Warehouse %d", ownerID), CreatedAt: time.Now().UTC()}
				if ownerID > d.nextID {
					d.nextID = ownerID
				}
			}
		}
		key := poolKey{kind, ownerID}
		r, ok := d.pools[key]
		if !ok {
			r = units.NewRecord(kind, ownerID)
		}
		r = r.Clone()
		r.Set(itemTypeID, packaging, value)
		d.pools[key] = r
		return nil
	})
}

// Central items

func (s *Store) GetCentralItem(ctx context.Context, id int64) (*models.CentralItem, error) {
	var item *models.CentralItem
	s.read(func(d *state) {
		if v, ok := d.items[id]; ok {
			item = &v
		}
	})
	if item == nil {
		return nil, custom_error.NewNotFound("item", id)
	}
	return item, nil
}

func (s *Store) LockCentralItem(ctx context.Context, tx *goqu.TxDatabase, id int64) (*models.CentralItem, error) {
	var item *models.CentralItem
	s.view(tx, func(d *state) {
		if v, ok := d.items[id]; ok {
			item = &v
		}
	})
	if item == nil {
		return nil, custom_error.NewNotFound("item", id)
	}
	return item, nil
}

func (s *Store) SaveCentralQuantity(ctx context.Context, tx *goqu.TxDatabase, id int64, quantity int) error {
	if quantity < 0 {
		return custom_error.WrapDBError("negative item quantity", checkViolation)
	}
	return s.write(tx, func(d *state) error {
		item, ok := d.items[id]
		if !ok {
			return custom_error.NewNotFound("item", id)
		}
		item.Quantity = quantity
		item.UpdatedAt = time.Now().UTC()
		d.items[id] = item
		return nil
	})
}

func (s *Store) ListCentralItems(ctx context.Context, conditions repository.QueryBuilder) ([]models.CentralItem, error) {
	items := []models.CentralItem{}
	s.read(func(d *state) {
		for _, item := range d.items {
			if matches(conditions, map[string]interface{}{"region_id": item.RegionID, "id": item.ID}) {
				items = append(items, item)
			}
		}
	})
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *Store) CreateCentralItem(ctx context.Context, req models.CreateCentralItemRequest) (*models.CentralItem, error) {
	now := time.Now().UTC()
	item := models.CentralItem{
		RegionID:     req.RegionID,
		Name:         req.Name,
		ItemTypeID:   req.ItemTypeID,
		Quantity:     req.Quantity,
		MinThreshold: req.MinThreshold,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := s.autonomous(func(d *state) error {
		item.ID = d.id()
		d.items[item.ID] = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Warehouses

func (s *Store) GetWarehouse(ctx context.Context, id int64) (*models.Warehouse, error) {
	var w *models.Warehouse
	s.read(func(d *state) {
		if v, ok := d.warehouses[id]; ok {
			w = &v
		}
	})
	if w == nil {
		return nil, custom_error.NewNotFound("warehouse", id)
	}
	return w, nil
}

func (s *Store) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	warehouses := []models.Warehouse{}
	s.read(func(d *state) {
		for _, w := range d.warehouses {
			warehouses = append(warehouses, w)
		}
	})
	sort.Slice(warehouses, func(i, j int) bool { return warehouses[i].ID < warehouses[j].ID })
	return warehouses, nil
}

func (s *Store) CreateWarehouse(ctx context.Context, req models.CreateWarehouseRequest) (*models.Warehouse, error) {
	w := models.Warehouse{Name: req.Name, RegionID: req.RegionID, CreatedAt: time.Now().UTC()}
	err := s.autonomous(func(d *state) error {
		w.ID = d.id()
		d.warehouses[w.ID] = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Item types

func (s *Store) GetItemType(ctx context.Context, id string) (*models.ItemType, error) {
	var it *models.ItemType
	s.read(func(d *state) {
		if v, ok := d.itemTypes[id]; ok {
			it = &v
		}
	})
	if it == nil {
		return nil, custom_error.NewNotFound("item_type", id)
	}
	return it, nil
}

// ListItemTypes returns the active and visible catalog entries.
func (s *Store) ListItemTypes(ctx context.Context) ([]models.ItemType, error) {
	itemTypes := []models.ItemType{}
	s.read(func(d *state) {
		for _, it := range d.itemTypes {
			if it.IsActive && it.IsVisible {
				itemTypes = append(itemTypes, it)
			}
		}
	})
	sort.Slice(itemTypes, func(i, j int) bool {
		if itemTypes[i].SortOrder != itemTypes[j].SortOrder {
			return itemTypes[i].SortOrder < itemTypes[j].SortOrder
		}
		return itemTypes[i].ID < itemTypes[j].ID
	})
	return itemTypes, nil
}

func (s *Store) CreateItemType(ctx context.Context, itemType models.ItemType) (*models.ItemType, error) {
	itemType.CreatedAt = time.Now().UTC()
	err := s.autonomous(func(d *state) error {
		if _, ok := d.itemTypes[itemType.ID]; ok {
			return fmt.Errorf("failed to insert item type %s: %w", itemType.ID, custom_error.WrapDBError("item type already exists", uniqueViolation))
		}
		d.itemTypes[itemType.ID] = itemType
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &itemType, nil
}

// Ledger

func (s *Store) InsertTransaction(ctx context.Context, tx *goqu.TxDatabase, t *models.Transaction) error {
	return s.write(tx, func(d *state) error {
		t.ID = d.id()
		d.transactions = append(d.transactions, *t)
		return nil
	})
}

func (s *Store) ListTransactions(ctx context.Context, itemID int64) ([]models.Transaction, error) {
	out := []models.Transaction{}
	s.read(func(d *state) {
		for i := len(d.transactions) - 1; i >= 0; i-- {
			if d.transactions[i].ItemID == itemID {
				out = append(out, d.transactions[i])
			}
		}
	})
	return out, nil
}

func (s *Store) InsertStockMovement(ctx context.Context, tx *goqu.TxDatabase, m *models.StockMovement) error {
	return s.write(tx, func(d *state) error {
		m.ID = d.id()
		d.movements = append(d.movements, *m)
		return nil
	})
}

func (s *Store) ListStockMovements(ctx context.Context, technicianID int64) ([]models.StockMovement, error) {
	out := []models.StockMovement{}
	s.read(func(d *state) {
		for i := len(d.movements) - 1; i >= 0; i-- {
			if d.movements[i].TechnicianID == technicianID {
				out = append(out, d.movements[i])
			}
		}
	})
	return out, nil
}

// Requests

func (s *Store) InsertRequest(ctx context.Context, tx *goqu.TxDatabase, req *models.InventoryRequest) error {
	return s.write(tx, func(d *state) error {
		req.ID = d.id()
		stored := *req
		stored.Lines = append([]models.RequestLine(nil), req.Lines...)
		d.requests[req.ID] = stored
		return nil
	})
}

func (s *Store) GetRequest(ctx context.Context, id int64) (*models.InventoryRequest, error) {
	var req *models.InventoryRequest
	s.read(func(d *state) {
		if v, ok := d.requests[id]; ok {
			v.Lines = append([]models.RequestLine(nil), v.Lines...)
			req = &v
		}
	})
	if req == nil {
		return nil, custom_error.NewNotFound("inventory_request", id)
	}
	return req, nil
}

func (s *Store) LockRequest(ctx context.Context, tx *goqu.TxDatabase, id int64) (*models.InventoryRequest, error) {
	var req *models.InventoryRequest
	s.view(tx, func(d *state) {
		if v, ok := d.requests[id]; ok {
			v.Lines = append([]models.RequestLine(nil), v.Lines...)
			req = &v
		}
	})
	if req == nil {
		return nil, custom_error.NewNotFound("inventory_request", id)
	}
	return req, nil
}

func (s *Store) UpdateRequestReview(ctx context.Context, tx *goqu.TxDatabase, req *models.InventoryRequest) error {
	return s.write(tx, func(d *state) error {
		stored, ok := d.requests[req.ID]
		if !ok {
			return custom_error.NewNotFound("inventory_request", req.ID)
		}
		stored.Status = req.Status
		stored.WarehouseID = req.WarehouseID
		stored.AdminNotes = req.AdminNotes
		stored.ReviewedBy = req.ReviewedBy
		stored.ReviewedAt = req.ReviewedAt
		d.requests[req.ID] = stored
		return nil
	})
}

func (s *Store) ListRequests(ctx context.Context, conditions repository.QueryBuilder) ([]models.InventoryRequest, error) {
	out := []models.InventoryRequest{}
	s.read(func(d *state) {
		for _, req := range d.requests {
			fields := map[string]interface{}{
				"status":        req.Status,
				"technician_id": req.TechnicianID,
			}
			if matches(conditions, fields) {
				req.Lines = append([]models.RequestLine(nil), req.Lines...)
				out = append(out, req)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Transfers

func (s *Store) InsertTransfers(ctx context.Context, tx *goqu.TxDatabase, transfers []models.WarehouseTransfer) ([]models.WarehouseTransfer, error) {
	created := make([]models.WarehouseTransfer, 0, len(transfers))
	err := s.write(tx, func(d *state) error {
		for _, t := range transfers {
			if t.Quantity < 0 {
				return custom_error.WrapDBError("negative transfer quantity", checkViolation)
			}
			t.ID = d.id()
			d.transfers[t.ID] = t
			created = append(created, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) LockTransfers(ctx context.Context, tx *goqu.TxDatabase, ids []int64) ([]models.WarehouseTransfer, error) {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	rows := make([]models.WarehouseTransfer, 0, len(sorted))
	var missing int64
	s.view(tx, func(d *state) {
		for _, id := range sorted {
			row, ok := d.transfers[id]
			if !ok {
				missing = id
				return
			}
			rows = append(rows, row)
		}
	})
	if missing != 0 {
		return nil, &custom_error.BatchMemberError{
			TransferID: missing,
			Err:        custom_error.NewNotFound("warehouse_transfer", missing),
		}
	}
	return rows, nil
}

func (s *Store) UpdateTransferStatus(ctx context.Context, tx *goqu.TxDatabase, ids []int64, status metadata.TransferStatus, reason *string, respondedAt time.Time) error {
	return s.write(tx, func(d *state) error {
		for _, id := range ids {
			row, ok := d.transfers[id]
			if !ok || row.Status != metadata.TransferPending {
				return fmt.Errorf("expected %d pending transfers to update", len(ids))
			}
		}
		for _, id := range ids {
			row := d.transfers[id]
			at := respondedAt
			row.Status = status
			row.RejectionReason = reason
			row.RespondedAt = &at
			d.transfers[id] = row
		}
		return nil
	})
}

func (s *Store) GetTransferRows(ctx context.Context, conditions repository.QueryBuilder) ([]models.WarehouseTransfer, error) {
	rows := []models.WarehouseTransfer{}
	s.read(func(d *state) {
		for _, t := range d.transfers {
			fields := map[string]interface{}{
				"technician_id": t.TechnicianID,
				"warehouse_id":  t.WarehouseID,
				"status":        t.Status,
			}
			if t.RequestID != nil {
				fields["request_id"] = *t.RequestID
			}
			if matches(conditions, fields) {
				rows = append(rows, t)
			}
		}
	})
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID < rows[j].ID
	})
	return rows, nil
}

// Audit sink

func (s *Store) Name() string { return "memory" }

func (s *Store) Write(ctx context.Context, event models.AuditLog) error {
	return s.autonomous(func(d *state) error {
		event.ID = int64(len(d.events) + 1)
		d.events = append(d.events, event)
		return nil
	})
}

// Events returns the audit events recorded so far, oldest first.
func (s *Store) Events() []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AuditLog(nil), s.data.events...)
}

func (s *Store) GetResourceLog(ctx context.Context, id int64, resourceType string) ([]models.AuditLog, error) {
	out := []models.AuditLog{}
	s.read(func(d *state) {
		for _, e := range d.events {
			if e.ResourceID == id && e.ResourceType == resourceType {
				out = append(out, e)
			}
		}
	})
	return out, nil
}
