package models

import "time"

// Levels — расчётные уровни входа. Для HOLD все уровни равны цене.
type Levels struct {
	Entry float64
	SL    float64
	TP1   float64
	TP2   float64
}

type TradeStatus string

const (
	TradeOpen   TradeStatus = "OPEN"
	TradeClosed TradeStatus = "CLOSED"
)

type CloseReason string

const (
	CloseTP1     CloseReason = "TP1"
	CloseTP2     CloseReason = "TP2"
	CloseSL      CloseReason = "SL"
	CloseExpired CloseReason = "TIME_EXPIRED"
)

// Trade — симулированная позиция. Максимум одна на символ.
// Уровни фиксируются при открытии и дальше не мутируются.
type Trade struct {
	Symbol   string
	TV       string
	Side     Decision // BUY/SELL
	Entry    float64
	SL       float64
	TP1      float64
	TP2      float64
	OpenedAt time.Time
	Status   TradeStatus
}

// TargetFlags — какие уровневые алерты уже ушли по активной сделке.
// Сбрасываются при открытии новой.
type TargetFlags struct {
	TP1Sent bool
	TP2Sent bool
	SLSent  bool
}

// ClosedTrade — итог закрытия, уходит в нотификации и в стор.
type ClosedTrade struct {
	Symbol    string
	TV        string
	Side      Decision
	Entry     float64
	Exit      float64
	SL        float64
	TP1       float64
	TP2       float64
	Reason    CloseReason
	ProfitPct float64
	OpenedAt  time.Time
	ClosedAt  time.Time
	Duration  time.Duration
}
