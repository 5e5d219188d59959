package stock_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"invtrack/internal/api/stock"
	"invtrack/internal/domain"
	apperror "invtrack/internal/errors"
	"invtrack/internal/pkg/logger"
)

// MockStockService é uma implementação mock da interface StockService.
type MockStockService struct {
	mock.Mock
}

func (m *MockStockService) AdjustStock(ctx context.Context, adjustment domain.StockAdjustment) (domain.StockAdjustmentResult, error) {
	args := m.Called(ctx, adjustment)
	return args.Get(0).(domain.StockAdjustmentResult), args.Error(1)
}

// newTestMux monta um mux com a mesma rota do roteador real, para que o
// r.PathValue("id") funcione nos testes.
func newTestMux(h *stock.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/products/{id}/stock", h.AdjustStockHandler)
	return mux
}

// TestAdjustStockHandler_Success testa o caminho feliz do ajuste via HTTP.
func TestAdjustStockHandler_Success(t *testing.T) {
	mockSvc := new(MockStockService)
	h := stock.NewHandler(mockSvc, logger.NewLogger("error"))
	mux := newTestMux(h)

	productID := uuid.New().String()
	expectedAdjustment := domain.StockAdjustment{
		ProductID: productID,
		Quantity:  3,
		Direction: domain.DirectionDecrease,
	}
	mockSvc.On("AdjustStock", mock.Anything, expectedAdjustment).Return(domain.StockAdjustmentResult{
		ProductID:    productID,
		Applied:      true,
		CurrentStock: 7,
	}, nil)

	body := strings.NewReader(`{"amount": "3", "type": "remove"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/products/"+productID+"/stock", body)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, true, response["success"])
	assert.Equal(t, true, response["applied"])
	assert.Equal(t, float64(7), response["current_stock"])
	mockSvc.AssertExpectations(t)
}

// TestAdjustStockHandler_MalformedAmountCoercedToZero testa a leniência da
// borda: amount malformado vira quantidade 0, nunca chega cru ao serviço.
func TestAdjustStockHandler_MalformedAmountCoercedToZero(t *testing.T) {
	mockSvc := new(MockStockService)
	h := stock.NewHandler(mockSvc, logger.NewLogger("error"))
	mux := newTestMux(h)

	productID := uuid.New().String()
	expectedAdjustment := domain.StockAdjustment{
		ProductID: productID,
		Quantity:  0, // "abc" coagido para zero
		Direction: domain.DirectionIncrease,
	}
	mockSvc.On("AdjustStock", mock.Anything, expectedAdjustment).Return(domain.StockAdjustmentResult{
		ProductID:    productID,
		Applied:      true,
		CurrentStock: 10,
	}, nil)

	body := strings.NewReader(`{"amount": "abc", "type": "add"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/products/"+productID+"/stock", body)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockSvc.AssertExpectations(t)
}

// TestAdjustStockHandler_NegativeAmountCoercedToZero testa que um valor
// negativo também é coagido para zero na borda.
func TestAdjustStockHandler_NegativeAmountCoercedToZero(t *testing.T) {
	mockSvc := new(MockStockService)
	h := stock.NewHandler(mockSvc, logger.NewLogger("error"))
	mux := newTestMux(h)

	productID := uuid.New().String()
	expectedAdjustment := domain.StockAdjustment{
		ProductID: productID,
		Quantity:  0,
		Direction: domain.DirectionDecrease,
	}
	mockSvc.On("AdjustStock", mock.Anything, expectedAdjustment).Return(domain.StockAdjustmentResult{
		ProductID:    productID,
		Applied:      true,
		CurrentStock: 10,
	}, nil)

	body := strings.NewReader(`{"amount": "-5", "type": "remove"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/products/"+productID+"/stock", body)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockSvc.AssertExpectations(t)
}

// TestAdjustStockHandler_ProductNotFound testa o mapeamento do NotFound para 404.
func TestAdjustStockHandler_ProductNotFound(t *testing.T) {
	mockSvc := new(MockStockService)
	h := stock.NewHandler(mockSvc, logger.NewLogger("error"))
	mux := newTestMux(h)

	productID := uuid.New().String()
	mockSvc.On("AdjustStock", mock.Anything, mock.Anything).
		Return(domain.StockAdjustmentResult{}, apperror.NewNotFoundError("Produto não encontrado."))

	body := strings.NewReader(`{"amount": "1", "type": "remove"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/products/"+productID+"/stock", body)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var response domain.ErrorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "NOT_FOUND", response.Category)
}
