package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"invtrack/internal/domain"
	apperror "invtrack/internal/errors"
	"invtrack/internal/pkg/logger"
)

// StockService define o contrato que o Handler espera da camada de Serviço.
type StockService interface {
	AdjustStock(ctx context.Context, adjustment domain.StockAdjustment) (domain.StockAdjustmentResult, error)
}

// Handler agrupa os métodos de Handler de ajuste de estoque.
type Handler struct {
	Service StockService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc StockService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// stockUpdatePayload é o corpo aceito pelo endpoint de ajuste.
// Amount chega como string porque a origem é um formulário: valores
// malformados são coagidos para zero em vez de rejeitados (leniência herdada
// do comportamento de referência e mantida por paridade).
type stockUpdatePayload struct {
	Amount string `json:"amount"`
	Type   string `json:"type"` // "add" ou "remove"
}

// parseAmount converte a entrada externa em uma quantidade tipada e válida.
// Malformada ou negativa => 0. O núcleo nunca vê entrada não-parseada.
func parseAmount(raw string) int {
	amount, err := strconv.Atoi(raw)
	if err != nil || amount < 0 {
		return 0
	}
	return amount
}

// AdjustStockHandler lida com POST /v1/products/{id}/stock.
func (h *Handler) AdjustStockHandler(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")

	var payload stockUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
		return
	}

	adjustment := domain.StockAdjustment{
		ProductID: productID,
		Quantity:  parseAmount(payload.Amount),
		Direction: domain.StockDirection(payload.Type),
	}

	result, err := h.Service.AdjustStock(r.Context(), adjustment)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	// Resposta no formato do endpoint original: success + estoque resultante.
	response := map[string]interface{}{
		"success":       true,
		"applied":       result.Applied,
		"current_stock": result.CurrentStock,
	}
	h.handleServiceResponse(w, r, response, nil, http.StatusOK)
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
				http.Error(w, "Erro ao codificar resposta", http.StatusInternalServerError)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	errorResponse := domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}
