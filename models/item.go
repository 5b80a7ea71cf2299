package models

import "github.com/shopspring/decimal"

type Item struct {
	ItemID      int64           `json:"item_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	SellPrice   decimal.Decimal `json:"sell_price"`
	ShowItem    string          `json:"show_item"`
	Quantity    int64           `json:"quantity"`
	Images      []string        `json:"images,omitempty"`
}

type CreateItemRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description" binding:"required"`
	Category    string           `json:"category" binding:"required"`
	CostPrice   *decimal.Decimal `json:"cost_price"`
	SellPrice   *decimal.Decimal `json:"sell_price"`
	ShowItem    string           `json:"show_item"`
	Quantity    int64            `json:"quantity"`
}

type CreateItemResponse struct {
	Success bool   `json:"success"`
	ItemID  int64  `json:"item_id"`
	Message string `json:"message"`
}
