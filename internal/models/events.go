package models

import "time"

// SignalEvent — одна строка в журнале сигналов (jsonl/pg).
type SignalEvent struct {
	At             time.Time `json:"at"`
	Symbol         string    `json:"symbol"`
	TV             string    `json:"tv_symbol"`
	Price          float64   `json:"price"`
	Decision       Decision  `json:"decision"`
	Reason         string    `json:"reason"`
	ExpectedProfit float64   `json:"expected_profit"`
}

// OpenTradeView — снапшот активной сделки для дашборда,
// с нереализованным профитом по последней виденной цене.
type OpenTradeView struct {
	Symbol        string
	Side          Decision
	Entry         float64
	Last          float64
	UnrealizedPct float64
	OpenedAt      time.Time
}

// DailyStats — счётчики за календарный день.
type DailyStats struct {
	Day       string  `json:"day"`
	Buy       int     `json:"buy"`
	Sell      int     `json:"sell"`
	Closed    int     `json:"closed"`
	ProfitSum float64 `json:"profit_sum"`
}

// DashboardSummary — сводка по всем символам для периодического отчёта.
type DashboardSummary struct {
	At    time.Time
	Buy   int
	Sell  int
	Hold  int
	Open  []OpenTradeView
	Today DailyStats
}
