package stockservice_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"invtrack/internal/domain"
	apperror "invtrack/internal/errors"
	"invtrack/internal/pkg/logger"
	"invtrack/internal/service/stockservice"
)

// MockConsumptionRepository é uma implementação mock da interface ConsumptionRepository.
type MockConsumptionRepository struct {
	mock.Mock
}

func (m *MockConsumptionRepository) ApplyAdjustment(ctx context.Context, adjustment domain.StockAdjustment) (domain.StockAdjustmentResult, error) {
	args := m.Called(ctx, adjustment)
	return args.Get(0).(domain.StockAdjustmentResult), args.Error(1)
}

// TestAdjustStock_Increase_Success testa um aumento de estoque bem-sucedido.
func TestAdjustStock_Increase_Success(t *testing.T) {
	mockRepo := new(MockConsumptionRepository)
	mockLogger := logger.NewLogger("error")

	svc := stockservice.NewService(mockRepo, mockLogger)

	productID := uuid.New().String()
	adjustment := domain.StockAdjustment{
		ProductID: productID,
		Quantity:  5,
		Direction: domain.DirectionIncrease,
	}

	expected := domain.StockAdjustmentResult{
		ProductID:    productID,
		Applied:      true,
		CurrentStock: 15,
		LastUpdated:  time.Now(),
	}
	mockRepo.On("ApplyAdjustment", mock.Anything, adjustment).Return(expected, nil)

	result, err := svc.AdjustStock(context.Background(), adjustment)

	assert.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, 15, result.CurrentStock)
	mockRepo.AssertExpectations(t)
}

// TestAdjustStock_Decrease_Success testa uma baixa de estoque bem-sucedida.
func TestAdjustStock_Decrease_Success(t *testing.T) {
	mockRepo := new(MockConsumptionRepository)
	mockLogger := logger.NewLogger("error")

	svc := stockservice.NewService(mockRepo, mockLogger)

	productID := uuid.New().String()
	adjustment := domain.StockAdjustment{
		ProductID: productID,
		Quantity:  3,
		Direction: domain.DirectionDecrease,
	}

	expected := domain.StockAdjustmentResult{
		ProductID:    productID,
		Applied:      true,
		CurrentStock: 7,
		LastUpdated:  time.Now(),
	}
	mockRepo.On("ApplyAdjustment", mock.Anything, adjustment).Return(expected, nil)

	result, err := svc.AdjustStock(context.Background(), adjustment)

	assert.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, 7, result.CurrentStock)
	mockRepo.AssertExpectations(t)
}

// TestAdjustStock_Decrease_InsufficientStock testa o no-op silencioso: baixa
// maior que o estoque reporta sucesso com o valor inalterado e Applied=false.
func TestAdjustStock_Decrease_InsufficientStock(t *testing.T) {
	mockRepo := new(MockConsumptionRepository)
	mockLogger := logger.NewLogger("error")

	svc := stockservice.NewService(mockRepo, mockLogger)

	productID := uuid.New().String()
	adjustment := domain.StockAdjustment{
		ProductID: productID,
		Quantity:  50,
		Direction: domain.DirectionDecrease,
	}

	expected := domain.StockAdjustmentResult{
		ProductID:    productID,
		Applied:      false,
		CurrentStock: 10, // Inalterado
		LastUpdated:  time.Now(),
	}
	mockRepo.On("ApplyAdjustment", mock.Anything, adjustment).Return(expected, nil)

	result, err := svc.AdjustStock(context.Background(), adjustment)

	assert.NoError(t, err) // Sucesso, não erro
	assert.False(t, result.Applied)
	assert.Equal(t, 10, result.CurrentStock)
	mockRepo.AssertExpectations(t)
}

// TestAdjustStock_Fail_NegativeQuantity testa a rejeição de quantidade negativa
// vinda de um chamador programático (a borda HTTP coage para zero antes).
func TestAdjustStock_Fail_NegativeQuantity(t *testing.T) {
	mockRepo := new(MockConsumptionRepository)
	mockLogger := logger.NewLogger("error")

	svc := stockservice.NewService(mockRepo, mockLogger)

	adjustment := domain.StockAdjustment{
		ProductID: uuid.New().String(),
		Quantity:  -5,
		Direction: domain.DirectionDecrease,
	}

	_, err := svc.AdjustStock(context.Background(), adjustment)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "ApplyAdjustment", mock.Anything, mock.Anything)
}

// TestAdjustStock_Fail_InvalidDirection testa a rejeição de direção desconhecida.
func TestAdjustStock_Fail_InvalidDirection(t *testing.T) {
	mockRepo := new(MockConsumptionRepository)
	mockLogger := logger.NewLogger("error")

	svc := stockservice.NewService(mockRepo, mockLogger)

	adjustment := domain.StockAdjustment{
		ProductID: uuid.New().String(),
		Quantity:  1,
		Direction: "transfer",
	}

	_, err := svc.AdjustStock(context.Background(), adjustment)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "ApplyAdjustment", mock.Anything, mock.Anything)
}

// TestAdjustStock_Fail_ProductNotFound testa a propagação do NotFound.
func TestAdjustStock_Fail_ProductNotFound(t *testing.T) {
	mockRepo := new(MockConsumptionRepository)
	mockLogger := logger.NewLogger("error")

	svc := stockservice.NewService(mockRepo, mockLogger)

	adjustment := domain.StockAdjustment{
		ProductID: uuid.New().String(),
		Quantity:  1,
		Direction: domain.DirectionIncrease,
	}
	mockRepo.On("ApplyAdjustment", mock.Anything, adjustment).
		Return(domain.StockAdjustmentResult{}, apperror.NewNotFoundError("Produto não encontrado."))

	_, err := svc.AdjustStock(context.Background(), adjustment)

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertExpectations(t)
}

// TestAdjustStock_RetriesOnConflict testa que conflitos transitórios são
// repetidos até a transação passar.
func TestAdjustStock_RetriesOnConflict(t *testing.T) {
	mockRepo := new(MockConsumptionRepository)
	mockLogger := logger.NewLogger("error")

	svc := stockservice.NewService(mockRepo, mockLogger)

	productID := uuid.New().String()
	adjustment := domain.StockAdjustment{
		ProductID: productID,
		Quantity:  2,
		Direction: domain.DirectionDecrease,
	}

	conflict := apperror.NewConflictError("O estoque foi modificado por outra operação. Tente novamente.")
	success := domain.StockAdjustmentResult{
		ProductID:    productID,
		Applied:      true,
		CurrentStock: 8,
	}

	mockRepo.On("ApplyAdjustment", mock.Anything, adjustment).Return(domain.StockAdjustmentResult{}, conflict).Twice()
	mockRepo.On("ApplyAdjustment", mock.Anything, adjustment).Return(success, nil).Once()

	result, err := svc.AdjustStock(context.Background(), adjustment)

	assert.NoError(t, err)
	assert.Equal(t, 8, result.CurrentStock)
	mockRepo.AssertNumberOfCalls(t, "ApplyAdjustment", 3)
}

// TestAdjustStock_ConflictExhaustsRetries testa que o conflito é reportado
// quando todas as tentativas falham.
func TestAdjustStock_ConflictExhaustsRetries(t *testing.T) {
	mockRepo := new(MockConsumptionRepository)
	mockLogger := logger.NewLogger("error")

	svc := stockservice.NewService(mockRepo, mockLogger)

	adjustment := domain.StockAdjustment{
		ProductID: uuid.New().String(),
		Quantity:  2,
		Direction: domain.DirectionDecrease,
	}

	conflict := apperror.NewConflictError("O estoque foi modificado por outra operação. Tente novamente.")
	mockRepo.On("ApplyAdjustment", mock.Anything, adjustment).Return(domain.StockAdjustmentResult{}, conflict)

	_, err := svc.AdjustStock(context.Background(), adjustment)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	mockRepo.AssertNumberOfCalls(t, "ApplyAdjustment", 3)
}

// fakeSerializedRepo simula o comportamento serializado do banco (FOR UPDATE):
// um mutex faz o papel do lock de linha. Usado para a propriedade de
// concorrência: N baixas concorrentes nunca levam o estoque a negativo e cada
// baixa aplicada gera exatamente um evento.
type fakeSerializedRepo struct {
	mu     sync.Mutex
	stock  int
	events int
}

func (f *fakeSerializedRepo) ApplyAdjustment(ctx context.Context, adjustment domain.StockAdjustment) (domain.StockAdjustmentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	applied := false
	if adjustment.Direction == domain.DirectionIncrease {
		f.stock += adjustment.Quantity
		applied = true
	} else if f.stock >= adjustment.Quantity {
		f.stock -= adjustment.Quantity
		applied = true
		if adjustment.Quantity > 0 {
			f.events++
		}
	}

	return domain.StockAdjustmentResult{
		ProductID:    adjustment.ProductID,
		Applied:      applied,
		CurrentStock: f.stock,
		LastUpdated:  time.Now(),
	}, nil
}

// TestAdjustStock_ConcurrentDecreases verifica a propriedade de concorrência:
// com estoque inicial 10 e 25 baixas concorrentes de 1 unidade, exatamente 10
// aplicam, o estoque termina em 0 e há um evento por baixa aplicada.
func TestAdjustStock_ConcurrentDecreases(t *testing.T) {
	repo := &fakeSerializedRepo{stock: 10}
	svc := stockservice.NewService(repo, logger.NewLogger("error"))

	productID := uuid.New().String()
	const workers = 25

	var wg sync.WaitGroup
	var appliedCount int64
	var appliedMu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.AdjustStock(context.Background(), domain.StockAdjustment{
				ProductID: productID,
				Quantity:  1,
				Direction: domain.DirectionDecrease,
			})
			assert.NoError(t, err)
			if result.Applied {
				appliedMu.Lock()
				appliedCount++
				appliedMu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), appliedCount)
	assert.Equal(t, 0, repo.stock)
	assert.Equal(t, 10, repo.events) // Um evento por baixa aplicada
	assert.GreaterOrEqual(t, repo.stock, 0)
}
