package inventorylog

import (
	"context"
	"fmt"

	"fieldstock/pkg/auditlog"
	"fieldstock/pkg/models"
)

// InventoryLog turns ledger and workflow results into audit events. Every
// method is called after the owning transaction committed.
type InventoryLog struct {
	a *auditlog.Auditlog
}

func NewInventoryLog(a *auditlog.Auditlog) *InventoryLog {
	return &InventoryLog{a: a}
}

func (s *InventoryLog) CreateStockChangeLogEntry(ctx context.Context, tx *models.Transaction, item *models.CentralItem) {
	messages := map[models.TransactionType]string{
		models.TransactionAdd:      "Stock added to central item",
		models.TransactionWithdraw: "Stock withdrawn from central item",
	}

	s.a.Log(ctx, string(tx.Type), tx.UserID, messages[tx.Type],
		map[string]interface{}{
			"transaction_id": tx.ID,
			"quantity":       tx.Quantity,
			"new_quantity":   item.Quantity,
			"status":         item.Status,
			"reason":         tx.Reason,
		},
		item,
	)
}

func (s *InventoryLog) CreateStockMovementLogEntry(ctx context.Context, m *models.StockMovement) {
	actor := m.PerformedBy
	s.a.Log(ctx, "transfer", &actor,
		fmt.Sprintf("Moved %d %s of %s from %s to %s", m.Quantity, m.PackagingType, m.ItemType, m.FromInventory, m.ToInventory),
		map[string]interface{}{
			"technician_id": m.TechnicianID,
			"item_type":     m.ItemType,
			"packaging":     m.PackagingType,
			"quantity":      m.Quantity,
			"from":          m.FromInventory,
			"to":            m.ToInventory,
		},
		m,
	)
}

func (s *InventoryLog) CreateWarehouseReceiptLogEntry(ctx context.Context, actorID int64, w *models.Warehouse, itemType string, packaging models.Packaging, quantity, newValue int) {
	s.a.Log(ctx, "receive", &actorID,
		fmt.Sprintf("Warehouse received %d %s of %s", quantity, packaging, itemType),
		map[string]interface{}{
			"item_type": itemType,
			"packaging": packaging,
			"quantity":  quantity,
			"new_value": newValue,
		},
		w,
	)
}

func (s *InventoryLog) CreateRequestLogEntry(ctx context.Context, action string, actorID int64, req *models.InventoryRequest, transfers []models.WarehouseTransfer) {
	logMessages := map[string]string{
		"submit":  "Inventory request submitted",
		"approve": "Inventory request approved",
		"reject":  "Inventory request rejected",
	}

	data := map[string]interface{}{
		"technician_id": req.TechnicianID,
		"status":        req.Status,
		"lines":         len(req.Lines),
	}
	if req.WarehouseID != nil {
		data["warehouse_id"] = *req.WarehouseID
	}
	if req.AdminNotes != nil {
		data["admin_notes"] = *req.AdminNotes
	}
	if len(transfers) > 0 {
		ids := make([]int64, 0, len(transfers))
		total := 0
		for _, t := range transfers {
			ids = append(ids, t.ID)
			total += t.Quantity
		}
		data["transfer_ids"] = ids
		data["total_quantity"] = total
	}

	s.a.Log(ctx, action, &actorID, logMessages[action], data, req)
}

func (s *InventoryLog) CreateTransferLogEntry(ctx context.Context, action string, actorID int64, transfers []models.WarehouseTransfer) {
	logMessages := map[string]string{
		"accept": "Transfer accepted into moving inventory",
		"reject": "Transfer rejected, stock returned to warehouse",
	}

	for i := range transfers {
		t := transfers[i]
		data := map[string]interface{}{
			"warehouse_id":  t.WarehouseID,
			"technician_id": t.TechnicianID,
			"item_type":     t.ItemType,
			"packaging":     t.PackagingType,
			"quantity":      t.Quantity,
		}
		if t.RequestID != nil {
			data["request_id"] = *t.RequestID
		}
		if t.RejectionReason != nil {
			data["reason"] = *t.RejectionReason
		}
		s.a.Log(ctx, action, &actorID, logMessages[action], data, &t)
	}
}
