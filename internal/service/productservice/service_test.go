package productservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"invtrack/internal/domain"
	apperror "invtrack/internal/errors"
	"invtrack/internal/pkg/logger"
	"invtrack/internal/service/productservice"
)

// MockProductRepository é uma implementação mock da interface ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepository) ListCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, id string, update domain.ProductUpdate) (domain.Product, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// TestCreateProduct_Success testa a criação de um produto válido.
func TestCreateProduct_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewLogger("error"))

	product := domain.Product{
		Name:         "Café em grãos",
		Category:     "Bebidas",
		CurrentStock: 10,
		MinStock:     5,
		MaxStock:     50,
		Price:        decimal.RequireFromString("42.90"),
		Supplier:     "Fazenda Boa Vista",
	}

	saved := product
	saved.ID = uuid.New().String()
	mockRepo.On("Save", mock.Anything, product).Return(saved, nil)

	created, err := svc.CreateProduct(context.Background(), product)

	assert.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Café em grãos", created.Name)
	mockRepo.AssertExpectations(t)
}

// TestCreateProduct_Fail_MissingName testa a rejeição de produto sem nome.
func TestCreateProduct_Fail_MissingName(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewLogger("error"))

	_, err := svc.CreateProduct(context.Background(), domain.Product{Category: "Bebidas"})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// TestCreateProduct_Fail_NegativePrice testa a rejeição de preço negativo.
func TestCreateProduct_Fail_NegativePrice(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewLogger("error"))

	product := domain.Product{
		Name:     "Café",
		Category: "Bebidas",
		Price:    decimal.RequireFromString("-1.00"),
	}

	_, err := svc.CreateProduct(context.Background(), product)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// TestCreateProduct_Fail_NegativeStock testa a rejeição de estoque inicial negativo.
func TestCreateProduct_Fail_NegativeStock(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewLogger("error"))

	product := domain.Product{
		Name:         "Café",
		Category:     "Bebidas",
		CurrentStock: -3,
	}

	_, err := svc.CreateProduct(context.Background(), product)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// TestCreateProduct_MinAboveMax_IsAllowed testa que min_stock > max_stock é
// uma expectativa suave: gera aviso, não rejeição.
func TestCreateProduct_MinAboveMax_IsAllowed(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewLogger("error"))

	product := domain.Product{
		Name:     "Café",
		Category: "Bebidas",
		MinStock: 50,
		MaxStock: 10,
	}
	mockRepo.On("Save", mock.Anything, product).Return(product, nil)

	_, err := svc.CreateProduct(context.Background(), product)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// TestGetProductByID_Fail_InvalidUUID testa a validação de formato do ID.
func TestGetProductByID_Fail_InvalidUUID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewLogger("error"))

	_, err := svc.GetProductByID(context.Background(), "not-a-uuid")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

// TestGetProductByID_Fail_NotFound testa a propagação do NotFound do repositório.
func TestGetProductByID_Fail_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewLogger("error"))

	id := uuid.New().String()
	mockRepo.On("FindByID", mock.Anything, id).
		Return(domain.Product{}, apperror.NewNotFoundError("Produto não encontrado."))

	_, err := svc.GetProductByID(context.Background(), id)

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertExpectations(t)
}

// TestUpdateProduct_Fail_NegativePrice testa a rejeição de preço negativo no
// caminho de atualização direta.
func TestUpdateProduct_Fail_NegativePrice(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewLogger("error"))

	negative := decimal.RequireFromString("-0.01")
	_, err := svc.UpdateProduct(context.Background(), uuid.New().String(), domain.ProductUpdate{Price: &negative})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

// TestDeleteProduct_Success testa a remoção de um produto existente.
func TestDeleteProduct_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewLogger("error"))

	id := uuid.New().String()
	mockRepo.On("Delete", mock.Anything, id).Return(nil)

	err := svc.DeleteProduct(context.Background(), id)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// TestListProducts_PassesFilter testa que o filtro chega intacto ao repositório.
func TestListProducts_PassesFilter(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, logger.NewLogger("error"))

	filter := domain.ProductFilter{Category: "Bebidas", Search: "café", InStockOnly: true}
	mockRepo.On("FindAll", mock.Anything, filter).Return([]domain.Product{}, nil)

	products, err := svc.ListProducts(context.Background(), filter)

	assert.NoError(t, err)
	assert.Empty(t, products)
	mockRepo.AssertExpectations(t)
}
