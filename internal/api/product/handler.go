package product

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"invtrack/internal/domain"
	apperror "invtrack/internal/errors"
	"invtrack/internal/pkg/logger"
)

// ProductService define o contrato que o Handler espera da camada de Serviço.
type ProductService interface {
	CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	GetProductByID(ctx context.Context, id string) (domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	UpdateProduct(ctx context.Context, id string, update domain.ProductUpdate) (domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// Handler agrupa todos os métodos de Handler do produto.
type Handler struct {
	Service ProductService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProductService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// CreateProductHandler lida com POST /v1/products.
func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusCreated)
		return
	}

	created, err := h.Service.CreateProduct(r.Context(), product)
	h.handleServiceResponse(w, r, created, err, http.StatusCreated)
}

// GetProductByIDHandler lida com GET /v1/products/{id}.
func (h *Handler) GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	product, err := h.Service.GetProductByID(r.Context(), id)
	h.handleServiceResponse(w, r, product, err, http.StatusOK)
}

// ListProductsHandler lida com GET /v1/products.
// Filtros por query string: ?category=...&search=...&in_stock=true
func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	filter := domain.ProductFilter{
		Category:    r.URL.Query().Get("category"),
		Search:      r.URL.Query().Get("search"),
		InStockOnly: r.URL.Query().Get("in_stock") == "true",
	}

	products, err := h.Service.ListProducts(r.Context(), filter)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	if products == nil {
		products = []domain.Product{} // Lista vazia em JSON, não null
	}
	h.handleServiceResponse(w, r, products, nil, http.StatusOK)
}

// ListCategoriesHandler lida com GET /v1/products/categories.
func (h *Handler) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.ListCategories(r.Context())
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	h.handleServiceResponse(w, r, categories, nil, http.StatusOK)
}

// UpdateProductHandler lida com PUT /v1/products/{id} (campos descritivos).
func (h *Handler) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var update domain.ProductUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
		return
	}

	product, err := h.Service.UpdateProduct(r.Context(), id, update)
	h.handleServiceResponse(w, r, product, err, http.StatusOK)
}

// DeleteProductHandler lida com DELETE /v1/products/{id}.
func (h *Handler) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := h.Service.DeleteProduct(r.Context(), id)
	h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)

		h.Logger.Info("Requisição concluída com sucesso", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": successStatus,
		})

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
