package domain

import "time"

// AnalyticsPeriod é o nome da janela de agregação de consumo.
type AnalyticsPeriod string

const (
	PeriodDaily   AnalyticsPeriod = "daily"
	PeriodWeekly  AnalyticsPeriod = "weekly"
	PeriodMonthly AnalyticsPeriod = "monthly"
)

// AnalyticsProfile seleciona o conjunto de constantes de lookback.
// O perfil "real-time" do sistema original usa janelas maiores para os mesmos
// nomes de período (daily=7d, weekly=8 semanas, monthly=365d); a divergência é
// preservada como perfil nomeado em vez de unificada.
type AnalyticsProfile string

const (
	ProfileStandard AnalyticsProfile = "standard"
	ProfileRealTime AnalyticsProfile = "real-time"
)

// Lookback resolve o período para a duração de retrocesso a partir de "now".
// Períodos desconhecidos caem no comportamento diário.
func (p AnalyticsProfile) Lookback(period AnalyticsPeriod) time.Duration {
	if p == ProfileRealTime {
		switch period {
		case PeriodWeekly:
			return 8 * 7 * 24 * time.Hour
		case PeriodMonthly:
			return 365 * 24 * time.Hour
		default:
			return 7 * 24 * time.Hour
		}
	}
	switch period {
	case PeriodWeekly:
		return 7 * 24 * time.Hour
	case PeriodMonthly:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// ConsumptionRollup é o total agregado de consumo de um produto dentro de uma
// janela, ordenado por quantidade consumida.
type ConsumptionRollup struct {
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	TotalQuantity int    `json:"total_quantity"`
	EventCount    int    `json:"event_count"`
}

// SeriesPoint é a forma reduzida usada pelo perfil real-time (nome + total),
// destinada a gráficos.
type SeriesPoint struct {
	ProductName   string `json:"product_name"`
	TotalQuantity int    `json:"total_quantity"`
}
