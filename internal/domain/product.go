package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa o item de inventário (a Entidade raiz do sistema).
// O estoque atual (CurrentStock) vive na própria linha do produto e só é
// mutado pelo fluxo de ajuste de estoque; os campos descritivos possuem um
// caminho de atualização direto e separado.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	CurrentStock int             `json:"current_stock"` // Invariante: nunca negativo
	MinStock     int             `json:"min_stock"`
	MaxStock     int             `json:"max_stock"`
	Price        decimal.Decimal `json:"price"` // Decimal exato (NUMERIC no DB), nunca float
	Supplier     string          `json:"supplier"`
	Description  string          `json:"description,omitempty"`
	Version      int             `json:"version"` // Para Controle de Concorrência Otimista (OCC)
	CreatedAt    time.Time       `json:"created_at"`
	LastUpdated  time.Time       `json:"last_updated"` // Atualizado em toda mutação
}

// IsLowStock indica se o produto está com estoque baixo segundo o limiar
// configurado no próprio produto (0 < estoque <= MinStock).
func (p Product) IsLowStock() bool {
	return p.CurrentStock > 0 && p.CurrentStock <= p.MinStock
}

// ProductFilter define os parâmetros de busca na listagem de produtos.
// Category vazia (ou "all") significa todas as categorias.
type ProductFilter struct {
	Category    string
	Search      string // Busca case-insensitive por substring no nome
	InStockOnly bool
}

// ProductUpdate é o payload do caminho de atualização direta de campos
// descritivos e de limiares. Campos nil são mantidos como estão.
type ProductUpdate struct {
	Price       *decimal.Decimal `json:"price,omitempty"`
	MinStock    *int             `json:"min_stock,omitempty"`
	MaxStock    *int             `json:"max_stock,omitempty"`
	Supplier    *string          `json:"supplier,omitempty"`
	Description *string          `json:"description,omitempty"`
}
