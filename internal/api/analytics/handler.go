package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"invtrack/internal/domain"
	apperror "invtrack/internal/errors"
	"invtrack/internal/pkg/logger"
)

// AnalyticsService define o contrato do motor de agregação de consumo.
type AnalyticsService interface {
	Aggregate(ctx context.Context, period domain.AnalyticsPeriod, now time.Time) ([]domain.ConsumptionRollup, error)
	MostConsumed(ctx context.Context, period domain.AnalyticsPeriod, now time.Time) ([]domain.ConsumptionRollup, error)
	RealTimeSeries(ctx context.Context, period domain.AnalyticsPeriod, now time.Time) ([]domain.SeriesPoint, error)
}

// StatsService define o contrato do calculador de estatísticas do inventário.
type StatsService interface {
	Snapshot(ctx context.Context) (domain.InventorySnapshot, error)
}

// Handler agrupa os endpoints de relatórios e do painel.
type Handler struct {
	Analytics AnalyticsService
	Stats     StatsService
	Logger    logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando os Services e o Logger.
func NewHandler(analyticsSvc AnalyticsService, statsSvc StatsService, log logger.Logger) *Handler {
	return &Handler{
		Analytics: analyticsSvc,
		Stats:     statsSvc,
		Logger:    log,
	}
}

// periodFromQuery lê ?period=; valores desconhecidos caem em "daily"
// (o serviço também trata isso, aqui só normalizamos o echo da resposta).
func periodFromQuery(r *http.Request) domain.AnalyticsPeriod {
	switch domain.AnalyticsPeriod(r.URL.Query().Get("period")) {
	case domain.PeriodWeekly:
		return domain.PeriodWeekly
	case domain.PeriodMonthly:
		return domain.PeriodMonthly
	default:
		return domain.PeriodDaily
	}
}

// SalesAnalyticsHandler lida com GET /v1/analytics/sales?period=.
// Retorna o ranking completo de consumo da janela.
func (h *Handler) SalesAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	period := periodFromQuery(r)

	rollups, err := h.Analytics.Aggregate(r.Context(), period, time.Now().UTC())
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	if rollups == nil {
		rollups = []domain.ConsumptionRollup{}
	}

	response := map[string]interface{}{
		"period":    period,
		"analytics": rollups,
	}
	h.handleServiceResponse(w, r, response, nil, http.StatusOK)
}

// MostConsumedHandler lida com GET /v1/analytics/most-consumed?period=.
// Mesma agregação do ranking completo, truncada no top-10.
func (h *Handler) MostConsumedHandler(w http.ResponseWriter, r *http.Request) {
	period := periodFromQuery(r)

	rollups, err := h.Analytics.MostConsumed(r.Context(), period, time.Now().UTC())
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	if rollups == nil {
		rollups = []domain.ConsumptionRollup{}
	}

	response := map[string]interface{}{
		"period":       period,
		"consumptions": rollups,
	}
	h.handleServiceResponse(w, r, response, nil, http.StatusOK)
}

// RealTimeAnalyticsHandler lida com GET /v1/analytics/real-time?period=.
// Usa o perfil real-time (janelas próprias) e devolve apenas nome + total.
func (h *Handler) RealTimeAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	period := periodFromQuery(r)

	points, err := h.Analytics.RealTimeSeries(r.Context(), period, time.Now().UTC())
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	if points == nil {
		points = []domain.SeriesPoint{}
	}

	response := map[string]interface{}{
		"period": period,
		"series": points,
	}
	h.handleServiceResponse(w, r, response, nil, http.StatusOK)
}

// StatsHandler lida com GET /v1/analytics/stats.
// Devolve o snapshot pontual do inventário (contagens e valoração).
func (h *Handler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.Stats.Snapshot(r.Context())
	h.handleServiceResponse(w, r, snapshot, err, http.StatusOK)
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
