package models

type TransferStockInput struct {
	ItemType  string  `json:"item_type" binding:"required"`
	Packaging string  `json:"packaging" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required"`
	From      string  `json:"from" binding:"required"`
	To        string  `json:"to" binding:"required"`
	Reason    *string `json:"reason"`
	Notes     *string `json:"notes"`
}

type TransferStockResult struct {
	Movement *StockMovement `json:"movement"`
	Fixed    PoolItem       `json:"fixed"`
	Moving   PoolItem       `json:"moving"`
}

type StockChangeInput struct {
	Quantity int     `json:"quantity" binding:"required"`
	Reason   *string `json:"reason"`
}
