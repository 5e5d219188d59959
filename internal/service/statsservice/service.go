package statsservice

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"invtrack/internal/domain"
	"invtrack/internal/pkg/cache"
	"invtrack/internal/pkg/logger"
)

// Chave e TTL do cache do snapshot do painel. O TTL é curto: o snapshot é uma
// leitura barata de servir do cache mas não pode ficar muito defasado.
const (
	snapshotCacheKey = "inventory:snapshot"
	snapshotCacheTTL = 15 * time.Second
)

// ProductStore define o contrato de leitura que o calculador de estatísticas
// espera da camada de Persistência.
type ProductStore interface {
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
}

// Service calcula o resumo pontual do inventário (contagens, valoração e
// faixas de saúde de estoque). Leitura pura sobre o ProductStore.
type Service struct {
	store  ProductStore
	cache  cache.Client
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do calculador de estatísticas.
func NewService(store ProductStore, cacheClient cache.Client, logger logger.Logger) *Service {
	return &Service{store: store, cache: cacheClient, logger: logger}
}

// Snapshot computa o resumo do inventário a partir de uma única leitura do
// ProductStore (um SELECT = um snapshot consistente; nenhuma leitura parcial
// intercalada com ajustes concorrentes). A valoração usa aritmética decimal
// exata: nada de float no caminho do dinheiro.
func (s *Service) Snapshot(ctx context.Context) (domain.InventorySnapshot, error) {
	// Tenta o cache primeiro; qualquer falha de cache cai para o cálculo.
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, snapshotCacheKey); err == nil {
			var snapshot domain.InventorySnapshot
			if json.Unmarshal([]byte(cached), &snapshot) == nil {
				s.logger.Debug("Cache HIT para snapshot do inventário.", nil)
				return snapshot, nil
			}
		}
	}

	products, err := s.store.FindAll(ctx, domain.ProductFilter{})
	if err != nil {
		s.logger.Error("Falha ao ler produtos para o snapshot.", err)
		return domain.InventorySnapshot{}, err
	}

	snapshot := domain.InventorySnapshot{
		TotalProducts: len(products),
		TotalValue:    decimal.Zero,
	}
	for _, p := range products {
		if p.CurrentStock == 0 {
			snapshot.OutOfStockCount++
		}
		if p.IsLowStock() {
			snapshot.LowStockCount++
		}
		snapshot.TotalValue = snapshot.TotalValue.Add(
			p.Price.Mul(decimal.NewFromInt(int64(p.CurrentStock))))
	}

	if s.cache != nil {
		if data, marshalErr := json.Marshal(snapshot); marshalErr == nil {
			if cacheErr := s.cache.Set(ctx, snapshotCacheKey, string(data), snapshotCacheTTL); cacheErr != nil {
				s.logger.Warn("Falha ao popular cache do snapshot.", nil)
			}
		}
	}

	return snapshot, nil
}
