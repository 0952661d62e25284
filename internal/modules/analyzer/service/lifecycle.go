package service

import (
	"time"

	"signal_bot/internal/models"
)

type TradeEventKind int

const (
	EventPartialTarget TradeEventKind = iota
	EventClosed
)

// TradeEvent — что произошло со сделкой на этом тике. Раннер превращает
// события в нотификации и записи уже после коммита состояния.
type TradeEvent struct {
	Kind   TradeEventKind
	Level  string  // "TP1" для partial-алерта
	Price  float64 // цена уровня для partial-алерта
	Closed models.ClosedTrade
}

// Open открывает симулированную сделку. При уже активной сделке — отказ
// (false), существующая никогда не перезаписывается.
func Open(st *SymbolState, side models.Decision, lv models.Levels, now time.Time) bool {
	if st.Trade != nil {
		return false
	}
	if !side.Directional() {
		return false
	}

	st.Trade = &models.Trade{
		Symbol:   st.Symbol,
		TV:       st.TV,
		Side:     side,
		Entry:    lv.Entry,
		SL:       lv.SL,
		TP1:      lv.TP1,
		TP2:      lv.TP2,
		OpenedAt: now,
		Status:   models.TradeOpen,
	}
	st.Flags = models.TargetFlags{}
	return true
}

// Evaluate проверяет выходы по приоритету: TP2 -> TP1 -> SL -> таймаут.
// TP1 по умолчанию только помечается и анонсируется, позицию закрывают
// TP2/SL/таймаут; closeOnTP1 включает поведение старых вариантов.
// Все закрытия — по текущей наблюдаемой цене (mark-to-market).
func Evaluate(st *SymbolState, price float64, now time.Time, evalAfter time.Duration, closeOnTP1 bool) []TradeEvent {
	t := st.Trade
	if t == nil || t.Status != models.TradeOpen {
		return nil
	}

	buy := t.Side == models.DecisionBuy
	hitTP2 := (buy && price >= t.TP2) || (!buy && price <= t.TP2)
	hitTP1 := (buy && price >= t.TP1) || (!buy && price <= t.TP1)
	hitSL := (buy && price <= t.SL) || (!buy && price >= t.SL)

	var evs []TradeEvent
	switch {
	case hitTP2:
		st.Flags.TP2Sent = true
		if ct, ok := CloseTrade(st, models.CloseTP2, price, now); ok {
			evs = append(evs, TradeEvent{Kind: EventClosed, Closed: ct})
		}

	case hitTP1 && closeOnTP1:
		st.Flags.TP1Sent = true
		if ct, ok := CloseTrade(st, models.CloseTP1, price, now); ok {
			evs = append(evs, TradeEvent{Kind: EventClosed, Closed: ct})
		}

	case hitTP1 && !st.Flags.TP1Sent:
		st.Flags.TP1Sent = true
		evs = append(evs, TradeEvent{Kind: EventPartialTarget, Level: "TP1", Price: t.TP1})

	case hitSL:
		st.Flags.SLSent = true
		if ct, ok := CloseTrade(st, models.CloseSL, price, now); ok {
			evs = append(evs, TradeEvent{Kind: EventClosed, Closed: ct})
		}

	case now.Sub(t.OpenedAt) >= evalAfter:
		if ct, ok := CloseTrade(st, models.CloseExpired, price, now); ok {
			evs = append(evs, TradeEvent{Kind: EventClosed, Closed: ct})
		}
	}

	return evs
}

// CloseTrade идемпотентно закрывает активную сделку и считает профит.
// Отсутствие сделки — no-op (ok=false), без событий и без паник.
func CloseTrade(st *SymbolState, reason models.CloseReason, exit float64, now time.Time) (models.ClosedTrade, bool) {
	t := st.Trade
	if t == nil || t.Status != models.TradeOpen {
		return models.ClosedTrade{}, false
	}

	var profit float64
	if t.Side == models.DecisionBuy {
		profit = (exit - t.Entry) / t.Entry * 100
	} else {
		profit = (t.Entry - exit) / t.Entry * 100
	}

	t.Status = models.TradeClosed
	ct := models.ClosedTrade{
		Symbol:    t.Symbol,
		TV:        t.TV,
		Side:      t.Side,
		Entry:     t.Entry,
		Exit:      exit,
		SL:        t.SL,
		TP1:       t.TP1,
		TP2:       t.TP2,
		Reason:    reason,
		ProfitPct: profit,
		OpenedAt:  t.OpenedAt,
		ClosedAt:  now,
		Duration:  now.Sub(t.OpenedAt),
	}
	st.Trade = nil
	return ct, true
}
