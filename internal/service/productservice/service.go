package productservice

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"invtrack/internal/domain"
	apperror "invtrack/internal/errors"
	"invtrack/internal/pkg/logger"
)

// ProductRepository define o contrato (interface) que este Serviço espera da
// camada de Persistência (DB, Cache).
type ProductRepository interface {
	Save(ctx context.Context, product domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, id string) (domain.Product, error)
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id string, update domain.ProductUpdate) (domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// Service implementa a lógica de negócio do catálogo de produtos.
type Service struct {
	repo   ProductRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
func NewService(repo ProductRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateProduct valida e persiste um novo produto.
func (s *Service) CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	if product.Name == "" || product.Category == "" {
		return domain.Product{}, apperror.NewValidationError("Nome e categoria são obrigatórios para o produto.")
	}
	if product.Price.IsNegative() {
		return domain.Product{}, apperror.NewValidationError("O preço do produto não pode ser negativo.")
	}
	if product.CurrentStock < 0 {
		return domain.Product{}, apperror.NewValidationError("O estoque inicial não pode ser negativo.")
	}
	// min_stock <= max_stock é uma expectativa suave, não um invariante da
	// camada de dados: registramos, mas não rejeitamos.
	if product.MinStock > product.MaxStock {
		s.logger.Warn("Produto criado com min_stock maior que max_stock.", map[string]interface{}{
			"name":      product.Name,
			"min_stock": product.MinStock,
			"max_stock": product.MaxStock,
		})
	}

	createdProduct, err := s.repo.Save(ctx, product)
	if err != nil {
		s.logger.Error("Falha ao salvar produto no repositório.", err)
		return domain.Product{}, err
	}

	return createdProduct, nil
}

// GetProductByID busca um produto pelo ID.
func (s *Service) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Product{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return domain.Product{}, err
		}
		s.logger.Error("Falha ao buscar produto no repositório.", err)
		return domain.Product{}, err
	}

	return product, nil
}

// ListProducts lista produtos aplicando o filtro informado.
func (s *Service) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.repo.FindAll(ctx, filter)
}

// ListCategories retorna as categorias distintas dos produtos cadastrados.
func (s *Service) ListCategories(ctx context.Context) ([]string, error) {
	return s.repo.ListCategories(ctx)
}

// UpdateProduct aplica o caminho de atualização direta (campos descritivos e
// limiares). O estoque atual não é tocado por esta operação.
func (s *Service) UpdateProduct(ctx context.Context, id string, update domain.ProductUpdate) (domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Product{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}
	if update.Price != nil && update.Price.IsNegative() {
		return domain.Product{}, apperror.NewValidationError("O preço do produto não pode ser negativo.")
	}

	return s.repo.Update(ctx, id, update)
}

// DeleteProduct remove um produto e, em cascata, seus eventos de consumo.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}

	return s.repo.Delete(ctx, id)
}
