package domain

import "github.com/shopspring/decimal"

// InventorySnapshot é o resumo pontual do inventário exibido no painel.
// TotalValue é a soma de CurrentStock * Price de todos os produtos, calculada
// em aritmética decimal exata.
type InventorySnapshot struct {
	TotalProducts   int             `json:"total_products"`
	OutOfStockCount int             `json:"out_of_stock_count"`
	LowStockCount   int             `json:"low_stock_count"`
	TotalValue      decimal.Decimal `json:"total_value"`
}
