package service

import (
	"time"

	"signal_bot/internal/models"
)

// SymbolState — всё состояние по одному символу. Мутирует его только цикл
// этого символа; дашборд читает снапшот под локом раннера.
type SymbolState struct {
	Symbol string
	TV     string

	History []float64 // последние цены, старые вытесняются
	histCap int

	LastDecision  models.Decision
	HoldStartedAt time.Time // нулевое время = таймер не идёт

	LastPrice     float64
	LastChange24h float64

	Trade *models.Trade // максимум одна активная сделка
	Flags models.TargetFlags
}

func NewSymbolState(symbol, tv string, histCap int) *SymbolState {
	if histCap <= 0 {
		histCap = 50
	}
	return &SymbolState{
		Symbol:  symbol,
		TV:      tv,
		History: make([]float64, 0, histCap),
		histCap: histCap,
	}
}

// PushPrice добавляет цену в историю, вытесняя самую старую при переполнении.
func (s *SymbolState) PushPrice(p float64) {
	if len(s.History) == s.histCap {
		copy(s.History, s.History[1:])
		s.History = s.History[:s.histCap-1]
	}
	s.History = append(s.History, p)
	s.LastPrice = p
}

// Closes — копия истории, безопасная для чтения вне лока.
func (s *SymbolState) Closes() []float64 {
	out := make([]float64, len(s.History))
	copy(out, s.History)
	return out
}
