package analyticsservice

import (
	"context"
	"sort"
	"time"

	"invtrack/internal/domain"
	"invtrack/internal/pkg/logger"
)

// Tamanho do corte da visão "mais consumidos".
const mostConsumedLimit = 10

// ConsumptionLog define o contrato de leitura que o motor de analytics espera
// do log de consumo.
type ConsumptionLog interface {
	QueryByTimeRange(ctx context.Context, start, end time.Time) ([]domain.ConsumptionEvent, error)
}

// Service agrega eventos de consumo em rollups por produto dentro de janelas
// de tempo retroativas. Operação de leitura pura: nenhum estado é mantido
// entre chamadas e nada é escrito.
type Service struct {
	log    ConsumptionLog
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do motor de analytics.
func NewService(log ConsumptionLog, logger logger.Logger) *Service {
	return &Service{log: log, logger: logger}
}

// Aggregate retorna a lista completa de rollups da janela, ordenada por
// quantidade total decrescente. Empates são desempatados por ID de produto
// ascendente, para que a mesma entrada produza sempre a mesma saída.
func (s *Service) Aggregate(ctx context.Context, period domain.AnalyticsPeriod, now time.Time) ([]domain.ConsumptionRollup, error) {
	return s.aggregate(ctx, domain.ProfileStandard, period, now)
}

// MostConsumed retorna o topo do ranking (até 10 produtos) da mesma agregação
// de Aggregate.
func (s *Service) MostConsumed(ctx context.Context, period domain.AnalyticsPeriod, now time.Time) ([]domain.ConsumptionRollup, error) {
	rollups, err := s.aggregate(ctx, domain.ProfileStandard, period, now)
	if err != nil {
		return nil, err
	}
	if len(rollups) > mostConsumedLimit {
		rollups = rollups[:mostConsumedLimit]
	}
	return rollups, nil
}

// RealTimeSeries produz a série (nome, total) do perfil real-time, usado pelos
// gráficos do painel. O perfil usa constantes de lookback próprias (daily=7d,
// weekly=8 semanas, monthly=365d), distintas das do perfil padrão.
func (s *Service) RealTimeSeries(ctx context.Context, period domain.AnalyticsPeriod, now time.Time) ([]domain.SeriesPoint, error) {
	rollups, err := s.aggregate(ctx, domain.ProfileRealTime, period, now)
	if err != nil {
		return nil, err
	}

	points := make([]domain.SeriesPoint, 0, len(rollups))
	for _, r := range rollups {
		points = append(points, domain.SeriesPoint{
			ProductName:   r.ProductName,
			TotalQuantity: r.TotalQuantity,
		})
	}
	return points, nil
}

// aggregate implementa a agregação comum: seleciona os eventos da janela,
// agrupa por produto, soma quantidades, conta eventos e ordena.
func (s *Service) aggregate(ctx context.Context, profile domain.AnalyticsProfile, period domain.AnalyticsPeriod, now time.Time) ([]domain.ConsumptionRollup, error) {
	since := now.Add(-profile.Lookback(period))

	s.logger.Debug("Agregando eventos de consumo.", map[string]interface{}{
		"profile": profile,
		"period":  period,
		"since":   since.Format(time.RFC3339),
	})

	events, err := s.log.QueryByTimeRange(ctx, since, now)
	if err != nil {
		s.logger.Error("Falha ao consultar o log de consumo.", err)
		return nil, err
	}

	grouped := make(map[string]*domain.ConsumptionRollup)
	for _, e := range events {
		rollup, ok := grouped[e.ProductID]
		if !ok {
			rollup = &domain.ConsumptionRollup{
				ProductID:   e.ProductID,
				ProductName: e.ProductName,
			}
			grouped[e.ProductID] = rollup
		}
		rollup.TotalQuantity += e.Quantity
		rollup.EventCount++
	}

	rollups := make([]domain.ConsumptionRollup, 0, len(grouped))
	for _, r := range grouped {
		rollups = append(rollups, *r)
	}

	sort.Slice(rollups, func(i, j int) bool {
		if rollups[i].TotalQuantity != rollups[j].TotalQuantity {
			return rollups[i].TotalQuantity > rollups[j].TotalQuantity
		}
		return rollups[i].ProductID < rollups[j].ProductID
	})

	return rollups, nil
}
