package pools

import "fieldstock/pkg/models"

type poolTable struct {
	table        string
	ownerColumn  string
	entriesTable string
}

var poolTables = map[models.PoolKind]poolTable{
	models.PoolWarehouse: {
		table:        "warehouse_inventories",
		ownerColumn:  "warehouse_id",
		entriesTable: "warehouse_inventory_entries",
	},
	models.PoolTechnicianFixed: {
		table:        "technician_fixed_inventories",
		ownerColumn:  "technician_id",
		entriesTable: "technician_fixed_inventory_entries",
	},
	models.PoolTechnicianMoving: {
		table:        "technician_moving_inventories",
		ownerColumn:  "technician_id",
		entriesTable: "technician_moving_inventory_entries",
	},
}
