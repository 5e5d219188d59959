package domain

import "time"

// ConsumptionEvent registra uma baixa de estoque de um produto em um instante.
// O evento é imutável após criado e tem o ciclo de vida vinculado ao Produto
// (deleção em cascata quando o produto dono é removido).
type ConsumptionEvent struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"` // Preenchido via JOIN nas consultas de relatório
	Quantity    int       `json:"quantity"`               // Invariante: sempre positivo
	ConsumedAt  time.Time `json:"consumed_at"`
}

// StockDirection indica o sentido de um ajuste de estoque.
type StockDirection string

const (
	DirectionIncrease StockDirection = "add"
	DirectionDecrease StockDirection = "remove"
)

// StockAdjustment é o pedido de ajuste de estoque já validado na borda.
// A camada de apresentação é responsável por transformar a entrada externa
// (possivelmente malformada) em um Quantity não-negativo antes de chegar aqui.
type StockAdjustment struct {
	ProductID string         `json:"product_id"`
	Quantity  int            `json:"quantity"`
	Direction StockDirection `json:"direction"`
}

// StockAdjustmentResult é o resultado de um ajuste.
// Applied é false quando uma baixa excede o estoque atual: nesse caso a
// operação é um no-op silencioso e CurrentStock volta inalterado (paridade
// com o comportamento de referência do sistema).
type StockAdjustmentResult struct {
	ProductID    string    `json:"product_id"`
	Applied      bool      `json:"applied"`
	CurrentStock int       `json:"current_stock"`
	LastUpdated  time.Time `json:"last_updated"`
}
