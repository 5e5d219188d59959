package productrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"invtrack/internal/domain"
	"invtrack/internal/errors"
	"invtrack/internal/pkg/cache"
	"invtrack/internal/pkg/logger"
)

// Chave de cache para produtos individuais.
const productCacheKey = "product:%s"

// CacheKey monta a chave de cache de um produto. Exportada para que outras
// mutações de produto (ajuste de estoque) invalidem a mesma entrada.
func CacheKey(id string) string {
	return fmt.Sprintf(productCacheKey, id)
}

// TTL do cache de produto. Curto de propósito: o estoque muda com frequência
// e o cache é invalidado explicitamente em toda mutação.
const productCacheTTL = 60 * time.Second

// ProductRepository implementa a persistência de produtos (o ProductStore).
// Contém as conexões necessárias para acessar o PostgreSQL e o Redis.
type ProductRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewProductRepository cria e retorna uma nova instância do Repositório.
// Aqui injetamos as dependências de Infraestrutura (DB e Cache).
func NewProductRepository(db *sql.DB, cacheClient cache.Client, dbTimeout time.Duration, logger logger.Logger) *ProductRepository {
	return &ProductRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const productColumns = `id, name, category, current_stock, min_stock, max_stock, price, supplier, description, version, created_at, last_updated`

// scanProduct lê uma linha de produto na ordem de productColumns.
func scanProduct(row interface{ Scan(...interface{}) error }) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Category, &p.CurrentStock, &p.MinStock, &p.MaxStock,
		&p.Price, &p.Supplier, &p.Description, &p.Version, &p.CreatedAt, &p.LastUpdated,
	)
	return p, err
}

// Save persiste um novo Produto no banco de dados.
func (r *ProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	r.logger.Debug("Iniciando Save de produto no repositório.", map[string]interface{}{"name": product.Name})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.LastUpdated = now
	product.Version = 1

	query := `
        INSERT INTO products (` + productColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		product.ID, product.Name, product.Category, product.CurrentStock,
		product.MinStock, product.MaxStock, product.Price, product.Supplier,
		product.Description, product.Version, product.CreatedAt, product.LastUpdated,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir produto no DB.", err)
		return domain.Product{}, errors.NewDBError("Falha ao criar produto", err)
	}

	r.logger.Info("Produto salvo com sucesso.", map[string]interface{}{"product_id": product.ID, "name": product.Name})
	return product, nil
}

// FindByID busca um produto pelo ID, utilizando a estratégia Cache-Aside.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := CacheKey(id)
	var product domain.Product

	// 1. Tentar obter do Cache (Redis)
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		// Cache HIT
		if json.Unmarshal([]byte(cachedData), &product) == nil {
			r.logger.Debug("Cache HIT para produto.", map[string]interface{}{"product_id": id})
			return product, nil
		}
		// Entrada corrompida: ignora e segue para o DB
		_ = r.Cache.Delete(ctxTimeout, key)
	} else if err != cache.ErrCacheMiss {
		// Falha de infraestrutura do cache não impede a leitura; apenas registramos.
		r.logger.Warn("Falha ao consultar cache de produto, lendo do DB.", map[string]interface{}{"product_id": id})
	}

	// 2. Cache MISS: buscar no DB
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	product, err = scanProduct(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		return domain.Product{}, errors.NewNotFoundError(fmt.Sprintf("Produto %s não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar produto no DB.", err)
		return domain.Product{}, errors.NewDBError("Falha ao buscar produto", err)
	}

	// 3. Popular o cache para as próximas leituras
	if data, marshalErr := json.Marshal(product); marshalErr == nil {
		if cacheErr := r.Cache.Set(ctxTimeout, key, string(data), productCacheTTL); cacheErr != nil {
			r.logger.Warn("Falha ao popular cache de produto.", map[string]interface{}{"product_id": id})
		}
	}

	return product, nil
}

// FindAll lista produtos aplicando o filtro de categoria, busca por nome e
// disponibilidade em estoque. Um único SELECT garante que o resultado reflita
// um snapshot consistente do banco.
func (r *ProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products`
	var conditions []string
	var args []interface{}

	if filter.Category != "" && filter.Category != "all" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.InStockOnly {
		conditions = append(conditions, "current_stock > 0")
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name ASC"

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar produtos no DB.", err)
		return nil, errors.NewDBError("Falha ao listar produtos", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, scanErr := scanProduct(rows)
		if scanErr != nil {
			r.logger.Error("Falha ao ler linha de produto.", scanErr)
			return nil, errors.NewDBError("Falha ao ler produtos", scanErr)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar produtos", err)
	}

	return products, nil
}

// ListCategories retorna as categorias distintas cadastradas, para os filtros
// da camada de apresentação.
func (r *ProductRepository) ListCategories(ctx context.Context) ([]string, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, `SELECT DISTINCT category FROM products ORDER BY category ASC`)
	if err != nil {
		return nil, errors.NewDBError("Falha ao listar categorias", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, errors.NewDBError("Falha ao ler categoria", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar categorias", err)
	}

	return categories, nil
}

// Update aplica o caminho de atualização direta dos campos descritivos e de
// limiares. O estoque atual NÃO é alterado por aqui: mutações de estoque
// passam exclusivamente pelo fluxo de ajuste.
func (r *ProductRepository) Update(ctx context.Context, id string, update domain.ProductUpdate) (domain.Product, error) {
	r.logger.Debug("Iniciando Update de produto no repositório.", map[string]interface{}{"product_id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE products
        SET price       = COALESCE($2, price),
            min_stock   = COALESCE($3, min_stock),
            max_stock   = COALESCE($4, max_stock),
            supplier    = COALESCE($5, supplier),
            description = COALESCE($6, description),
            last_updated = $7
        WHERE id = $1
        RETURNING ` + productColumns

	product, err := scanProduct(r.DB.QueryRowContext(ctxTimeout, query,
		id, update.Price, update.MinStock, update.MaxStock, update.Supplier, update.Description, time.Now().UTC(),
	))
	if err == sql.ErrNoRows {
		return domain.Product{}, errors.NewNotFoundError(fmt.Sprintf("Produto %s não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar produto no DB.", err)
		return domain.Product{}, errors.NewDBError("Falha ao atualizar produto", err)
	}

	// Invalida o cache do produto após a mutação
	_ = r.Cache.Delete(ctxTimeout, CacheKey(id))

	r.logger.Info("Produto atualizado com sucesso.", map[string]interface{}{"product_id": id})
	return product, nil
}

// Delete remove um produto. Os eventos de consumo do produto são removidos em
// cascata pela foreign key (ON DELETE CASCADE) na migração.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debug("Iniciando Delete de produto no repositório.", map[string]interface{}{"product_id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao deletar produto no DB.", err)
		return errors.NewDBError("Falha ao deletar produto", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Produto %s não encontrado.", id))
	}

	_ = r.Cache.Delete(ctxTimeout, CacheKey(id))

	r.logger.Info("Produto deletado com sucesso (eventos de consumo em cascata).", map[string]interface{}{"product_id": id})
	return nil
}
