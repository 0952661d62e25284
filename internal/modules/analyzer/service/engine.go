package service

import (
	"fmt"
	"time"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
)

// Engine — ядро анализа с настройками из конфига: агрегация голосов,
// дебаунс, уровни и жизненный цикл сделки. Никакого I/O.
type Engine struct {
	cfg *config.Config
}

func NewEngine(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

func (e *Engine) NewState(s config.Symbol) *SymbolState {
	return NewSymbolState(s.Name, s.TV, e.cfg.HistorySize)
}

func (e *Engine) Aggregate(votes []models.Decision) models.Decision {
	return Aggregate(votes, e.cfg.VoteThreshold)
}

func (e *Engine) Debounce(st *SymbolState, decision models.Decision, now time.Time) models.Action {
	return Debounce(st, decision, now, e.cfg.HoldAlertInterval)
}

// LevelsFor — уровни для символа: ATR-режим с откатом на процентный,
// пока истории не хватает.
func (e *Engine) LevelsFor(st *SymbolState, price float64, side models.Decision) models.Levels {
	if e.cfg.LevelsMode == "atr" {
		if atr := ATR(st.History, e.cfg.ATRPeriod); atr > 0 {
			return ComputeLevelsATR(price, atr, side)
		}
	}
	return ComputeLevels(price, side, e.cfg.SymbolVolatility(st.Symbol))
}

func (e *Engine) Open(st *SymbolState, side models.Decision, lv models.Levels, now time.Time) bool {
	return Open(st, side, lv, now)
}

func (e *Engine) Evaluate(st *SymbolState, price float64, now time.Time) []TradeEvent {
	return Evaluate(st, price, now, e.cfg.TradeEvalAfter, e.cfg.CloseOnTP1)
}

// FallbackTrend — решение по последним двум ценам, когда голосов нет вообще.
func (e *Engine) FallbackTrend(st *SymbolState) models.Decision {
	h := st.History
	if len(h) < 2 {
		return models.DecisionHold
	}
	switch {
	case h[len(h)-1] > h[len(h)-2]:
		return models.DecisionBuy
	case h[len(h)-1] < h[len(h)-2]:
		return models.DecisionSell
	}
	return models.DecisionHold
}

// Reason — строка причины для алерта и журнала: голоса + паттерн.
func (e *Engine) Reason(votes []models.Decision, pattern string) string {
	return fmt.Sprintf("MultiTF %v + pattern %s", votes, pattern)
}
