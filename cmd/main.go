package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Pacotes de infraestrutura e utilitários
	"invtrack/config"
	"invtrack/internal/pkg/cache"
	"invtrack/internal/pkg/database"
	"invtrack/internal/pkg/logger"
	"invtrack/internal/pkg/token"

	// Camadas da aplicação para Injeção de Dependências
	"invtrack/internal/api/analytics"
	"invtrack/internal/api/product"
	"invtrack/internal/api/router"
	"invtrack/internal/api/stock"
	"invtrack/internal/api/user"
	"invtrack/internal/repository/consumptionrepo"
	"invtrack/internal/repository/productrepo"
	"invtrack/internal/repository/userrepo"
	"invtrack/internal/service/analyticsservice"
	"invtrack/internal/service/productservice"
	"invtrack/internal/service/statsservice"
	"invtrack/internal/service/stockservice"
	"invtrack/internal/service/userservice"
)

func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando serviço InvTrack...")

	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	// Se não existir, seguimos: as variáveis podem estar no ambiente (ex: Docker).
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	appLog := logger.NewLogger(cfg.LogLevel)
	appLog.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		appLog.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	appLog.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	appLog.Info("Conexão Redis estabelecida.", nil)

	// C. Serviço de Tokens (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)

	// 3. INJEÇÃO DE DEPENDÊNCIAS
	// Ordem: Repository -> Service -> Handler

	// A. Repositórios (Camada de Acesso a Dados)
	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, appLog)
	consumptionRepo := consumptionrepo.NewConsumptionRepository(db, cacheClient, cfg.DBTimeout, appLog)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, appLog)
	appLog.Debug("Repositórios inicializados.", nil)

	// B. Serviços (Camada de Lógica de Negócio)
	productSvc := productservice.NewService(productRepo, appLog)
	stockSvc := stockservice.NewService(consumptionRepo, appLog)
	analyticsSvc := analyticsservice.NewService(consumptionRepo, appLog)
	statsSvc := statsservice.NewService(productRepo, cacheClient, appLog)
	userSvc := userservice.NewService(userRepo, tokenSvc, appLog)
	appLog.Debug("Serviços inicializados.", nil)

	// C. Handlers (Camada de Apresentação)
	productHandler := product.NewHandler(productSvc, appLog)
	stockHandler := stock.NewHandler(stockSvc, appLog)
	analyticsHandler := analytics.NewHandler(analyticsSvc, statsSvc, appLog)
	userHandler := user.NewHandler(userSvc, appLog)
	appLog.Debug("Handlers inicializados.", nil)

	// 4. Configuração e Início do Roteador/Servidor
	r := router.NewRouter(
		productHandler,
		stockHandler,
		analyticsHandler,
		userHandler,
		tokenSvc,
		cacheClient,
		router.RateLimitConfig{
			MaxRequests: cfg.RateLimitMaxRequests,
			Period:      cfg.RateLimitPeriod,
		},
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		appLog.Info("Servidor InvTrack ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Servidor falhou.", err)
		}
	}()

	// Captura de sinal para desligamento gracioso
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLog.Error("Desligamento do servidor forçado.", err)
	}

	appLog.Info("Servidor encerrado com sucesso.", nil)
}
