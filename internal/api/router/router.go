package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"invtrack/internal/api/analytics"
	"invtrack/internal/api/openapi"
	"invtrack/internal/api/product"
	"invtrack/internal/api/stock"
	"invtrack/internal/api/user"
	"invtrack/internal/domain"
	"invtrack/internal/pkg/cache"
	"invtrack/internal/pkg/middleware"
)

// RateLimitConfig agrupa os parâmetros do rate limiter global.
type RateLimitConfig struct {
	MaxRequests int
	Period      time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
// Rotas mutantes exigem um JWT válido; a aprovação de contas exige role admin.
func NewRouter(
	productHandler *product.Handler,
	stockHandler *stock.Handler,
	analyticsHandler *analytics.Handler,
	userHandler *user.Handler,
	tokenSvc middleware.TokenService,
	cacheClient cache.Client,
	rateLimit RateLimitConfig,
) http.Handler {

	mux := http.NewServeMux()
	auth := middleware.NewAuthMiddleware(tokenSvc)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// --- 1. Health Check ---
	mux.HandleFunc("GET /ping", PingHandler)

	// --- 2. Usuários ---
	mux.HandleFunc("POST /v1/users/register", userHandler.RegisterHandler)
	mux.HandleFunc("POST /v1/users/login", userHandler.LoginHandler)
	mux.HandleFunc("POST /v1/users/approve", auth(adminOnly(userHandler.ApproveHandler)))

	// --- 3. Produtos ---
	mux.HandleFunc("GET /v1/products", productHandler.ListProductsHandler)
	mux.HandleFunc("GET /v1/products/categories", productHandler.ListCategoriesHandler)
	mux.HandleFunc("GET /v1/products/{id}", productHandler.GetProductByIDHandler)
	mux.HandleFunc("POST /v1/products", auth(productHandler.CreateProductHandler))
	mux.HandleFunc("PUT /v1/products/{id}", auth(productHandler.UpdateProductHandler))
	mux.HandleFunc("DELETE /v1/products/{id}", auth(productHandler.DeleteProductHandler))

	// --- 4. Ajuste de Estoque ---
	mux.HandleFunc("POST /v1/products/{id}/stock", auth(stockHandler.AdjustStockHandler))

	// --- 5. Analytics e Painel ---
	mux.HandleFunc("GET /v1/analytics/sales", analyticsHandler.SalesAnalyticsHandler)
	mux.HandleFunc("GET /v1/analytics/most-consumed", analyticsHandler.MostConsumedHandler)
	mux.HandleFunc("GET /v1/analytics/real-time", analyticsHandler.RealTimeAnalyticsHandler)
	mux.HandleFunc("GET /v1/analytics/stats", analyticsHandler.StatsHandler)

	// --- 6. Documentação (Swagger UI sobre o documento OpenAPI embutido) ---
	mux.HandleFunc("GET /swagger/doc.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(openapi.YAML)
	})
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.yaml"),
	))

	// --- 7. Middlewares globais ---
	return middleware.RateLimiter(cacheClient, rateLimit.MaxRequests, rateLimit.Period)(mux)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
