package stockservice

import (
	"context"
	"errors"

	"invtrack/internal/domain"
	apperror "invtrack/internal/errors"
	"invtrack/internal/pkg/logger"
)

// Número de tentativas do ajuste quando a transação falha por conflito
// transitório. Esgotadas as tentativas, o conflito é reportado ao chamador.
const maxAdjustAttempts = 3

// ConsumptionRepository define o contrato que o Serviço de Estoque espera da
// camada de Persistência: o ajuste transacional (decremento + evento na mesma
// transação).
type ConsumptionRepository interface {
	ApplyAdjustment(ctx context.Context, adjustment domain.StockAdjustment) (domain.StockAdjustmentResult, error)
}

// Service implementa a lógica de negócio de ajuste de estoque.
type Service struct {
	repo   ConsumptionRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Estoque.
func NewService(repo ConsumptionRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// AdjustStock aplica um ajuste de estoque a um produto.
//
// O pedido chega aqui já tipado e validado pela borda (a quantidade nunca é
// negativa). Aumentos sempre aplicam; baixas aplicam somente quando há estoque
// suficiente — caso contrário a operação reporta sucesso com o valor inalterado
// e Applied=false. Toda baixa efetiva registra exatamente um evento de consumo,
// atomicamente com o decremento.
func (s *Service) AdjustStock(ctx context.Context, adjustment domain.StockAdjustment) (domain.StockAdjustmentResult, error) {
	s.logger.Debug("Iniciando ajuste de estoque no serviço.", map[string]interface{}{
		"product_id": adjustment.ProductID,
		"quantity":   adjustment.Quantity,
		"direction":  adjustment.Direction,
	})

	if adjustment.ProductID == "" {
		return domain.StockAdjustmentResult{}, apperror.NewValidationError("O ID do produto é obrigatório.")
	}
	if adjustment.Quantity < 0 {
		// A borda coage entradas malformadas para zero; uma quantidade negativa
		// aqui indica um chamador programático incorreto.
		return domain.StockAdjustmentResult{}, apperror.NewValidationError("A quantidade do ajuste não pode ser negativa.")
	}
	if adjustment.Direction != domain.DirectionIncrease && adjustment.Direction != domain.DirectionDecrease {
		return domain.StockAdjustmentResult{}, apperror.NewValidationError("A direção do ajuste deve ser 'add' ou 'remove'.")
	}

	// Conflitos transitórios da transação são repetidos aqui; os demais erros
	// sobem imediatamente para o chamador.
	var result domain.StockAdjustmentResult
	var err error
	for attempt := 1; attempt <= maxAdjustAttempts; attempt++ {
		result, err = s.repo.ApplyAdjustment(ctx, adjustment)
		if err == nil {
			break
		}

		var conflictErr *apperror.ConflictError
		if !errors.As(err, &conflictErr) {
			break
		}
		s.logger.Warn("Conflito ao ajustar estoque, repetindo transação.", map[string]interface{}{
			"product_id": adjustment.ProductID,
			"attempt":    attempt,
		})
	}
	if err != nil {
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return domain.StockAdjustmentResult{}, err
		}
		s.logger.Error("Falha ao ajustar estoque no repositório.", err)
		return domain.StockAdjustmentResult{}, err
	}

	if !result.Applied {
		s.logger.Info("Baixa maior que o estoque atual: ajuste ignorado.", map[string]interface{}{
			"product_id":    adjustment.ProductID,
			"quantity":      adjustment.Quantity,
			"current_stock": result.CurrentStock,
		})
		return result, nil
	}

	s.logger.Info("Estoque ajustado com sucesso.", map[string]interface{}{
		"product_id": result.ProductID,
		"new_stock":  result.CurrentStock,
	})
	return result, nil
}
