package consumptionrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"invtrack/internal/domain"
	"invtrack/internal/errors"
	"invtrack/internal/pkg/cache"
	"invtrack/internal/pkg/logger"
	"invtrack/internal/repository/productrepo"
)

// ConsumptionRepository implementa o log de consumo (append-only) e o ajuste
// transacional de estoque. O decremento do estoque e o registro do evento de
// consumo acontecem na mesma transação: um leitor nunca observa um sem o outro.
type ConsumptionRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewConsumptionRepository cria e retorna uma nova instância do Repositório de Consumo.
func NewConsumptionRepository(db *sql.DB, cacheClient cache.Client, dbTimeout time.Duration, logger logger.Logger) *ConsumptionRepository {
	return &ConsumptionRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// ApplyAdjustment aplica um ajuste de estoque dentro de uma transação, usando
// SELECT ... FOR UPDATE para serializar ajustes concorrentes sobre o mesmo
// produto, mais checagem de versão (OCC) na escrita.
//
// Regras:
//   - increase: sempre aplica (sem teto contra max_stock).
//   - decrease: aplica somente se current_stock >= quantidade; caso contrário a
//     operação é um no-op que reporta sucesso com o valor inalterado.
//   - toda baixa efetiva com quantidade > 0 insere exatamente um evento de
//     consumo na mesma transação.
//   - last_updated é atualizado em qualquer caso (inclusive no no-op), como no
//     comportamento de referência.
func (r *ConsumptionRepository) ApplyAdjustment(ctx context.Context, adjustment domain.StockAdjustment) (domain.StockAdjustmentResult, error) {
	r.logger.Debug("Iniciando ajuste de estoque no repositório.", map[string]interface{}{
		"product_id": adjustment.ProductID,
		"quantity":   adjustment.Quantity,
		"direction":  adjustment.Direction,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de ajuste de estoque.", err)
		return domain.StockAdjustmentResult{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback() // Rollback em caso de erro; no-op após Commit

	// 1. Obter o estoque atual com FOR UPDATE para bloquear a linha na transação.
	var currentStock, version int
	querySelect := `SELECT current_stock, version FROM products WHERE id = $1 FOR UPDATE`
	err = tx.QueryRowContext(ctxTimeout, querySelect, adjustment.ProductID).Scan(&currentStock, &version)
	if err == sql.ErrNoRows {
		return domain.StockAdjustmentResult{}, errors.NewNotFoundError(
			fmt.Sprintf("Produto %s não encontrado.", adjustment.ProductID))
	}
	if err != nil {
		r.logger.Error("Falha ao selecionar estoque para ajuste.", err)
		return domain.StockAdjustmentResult{}, errors.NewDBError("Falha ao buscar estoque para ajuste", err)
	}

	// 2. Calcular o novo estoque conforme a direção.
	newStock := currentStock
	applied := false
	switch adjustment.Direction {
	case domain.DirectionIncrease:
		newStock = currentStock + adjustment.Quantity
		applied = true
	case domain.DirectionDecrease:
		if currentStock >= adjustment.Quantity {
			newStock = currentStock - adjustment.Quantity
			applied = true
		}
		// Estoque insuficiente: no-op silencioso (applied permanece false).
	default:
		return domain.StockAdjustmentResult{}, errors.NewValidationError(
			fmt.Sprintf("Direção de ajuste desconhecida: %q.", adjustment.Direction))
	}

	// 3. Escrever o estoque (o last_updated muda mesmo no no-op) com checagem OCC.
	now := time.Now().UTC()
	queryUpdate := `
        UPDATE products
        SET current_stock = $1, version = $2, last_updated = $3
        WHERE id = $4 AND version = $5`

	result, err := tx.ExecContext(ctxTimeout, queryUpdate,
		newStock,
		version+1,
		now,
		adjustment.ProductID,
		version,
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar estoque.", err)
		return domain.StockAdjustmentResult{}, errors.NewDBError("Falha ao atualizar estoque", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.StockAdjustmentResult{}, errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		// Com FOR UPDATE isso não deveria acontecer; a checagem de versão fica
		// como proteção contra escritas fora do fluxo de ajuste.
		r.logger.Warn("Conflito de versão ao ajustar estoque.", map[string]interface{}{
			"product_id":       adjustment.ProductID,
			"expected_version": version,
		})
		return domain.StockAdjustmentResult{}, errors.NewConflictError(
			"O estoque foi modificado por outra operação. Tente novamente.")
	}

	// 4. Registrar o evento de consumo para baixas efetivas.
	// Quantidade zero não gera evento (o invariante do evento exige quantity > 0).
	if applied && adjustment.Direction == domain.DirectionDecrease && adjustment.Quantity > 0 {
		event := domain.ConsumptionEvent{
			ID:         uuid.New().String(),
			ProductID:  adjustment.ProductID,
			Quantity:   adjustment.Quantity,
			ConsumedAt: now,
		}
		if err := r.appendEvent(ctxTimeout, tx, event); err != nil {
			return domain.StockAdjustmentResult{}, err
		}
	}

	// 5. Commit
	if commitErr := tx.Commit(); commitErr != nil {
		r.logger.Error("Falha ao commitar transação de ajuste de estoque.", commitErr)
		return domain.StockAdjustmentResult{}, errors.NewDBError("Falha ao commitar transação", commitErr)
	}

	// O estoque mudou: a entrada em cache do produto precisa ser invalidada para
	// que leituras subsequentes não vejam o valor anterior.
	_ = r.Cache.Delete(ctxTimeout, productrepo.CacheKey(adjustment.ProductID))

	r.logger.Info("Ajuste de estoque concluído.", map[string]interface{}{
		"product_id": adjustment.ProductID,
		"applied":    applied,
		"new_stock":  newStock,
	})

	return domain.StockAdjustmentResult{
		ProductID:    adjustment.ProductID,
		Applied:      applied,
		CurrentStock: newStock,
		LastUpdated:  now,
	}, nil
}

// appendEvent insere um evento de consumo dentro da transação do ajuste.
// Eventos são imutáveis: não existe UPDATE para esta tabela.
func (r *ConsumptionRepository) appendEvent(ctx context.Context, tx *sql.Tx, event domain.ConsumptionEvent) error {
	query := `
        INSERT INTO consumption_events (id, product_id, quantity, consumed_at)
        VALUES ($1, $2, $3, $4)`

	if _, err := tx.ExecContext(ctx, query, event.ID, event.ProductID, event.Quantity, event.ConsumedAt); err != nil {
		r.logger.Error("Falha ao inserir evento de consumo.", err)
		return errors.NewDBError("Falha ao registrar evento de consumo", err)
	}
	return nil
}

// QueryByTimeRange retorna os eventos de consumo com consumed_at dentro de
// [start, end], cada um já com o nome do produto (JOIN) para os relatórios.
func (r *ConsumptionRepository) QueryByTimeRange(ctx context.Context, start, end time.Time) ([]domain.ConsumptionEvent, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT c.id, c.product_id, p.name, c.quantity, c.consumed_at
        FROM consumption_events c
        JOIN products p ON p.id = c.product_id
        WHERE c.consumed_at >= $1 AND c.consumed_at <= $2
        ORDER BY c.consumed_at ASC`

	rows, err := r.DB.QueryContext(ctxTimeout, query, start, end)
	if err != nil {
		r.logger.Error("Falha ao consultar eventos de consumo.", err)
		return nil, errors.NewDBError("Falha ao consultar eventos de consumo", err)
	}
	defer rows.Close()

	var events []domain.ConsumptionEvent
	for rows.Next() {
		var e domain.ConsumptionEvent
		if err := rows.Scan(&e.ID, &e.ProductID, &e.ProductName, &e.Quantity, &e.ConsumedAt); err != nil {
			return nil, errors.NewDBError("Falha ao ler evento de consumo", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar eventos de consumo", err)
	}

	return events, nil
}
