package store

import (
	"context"
	"time"

	"signal_bot/internal/models"
)

// Recorder — append-only журнал решений и закрытых сделок плюс
// восстановимое состояние "последнее решение по символу", чтобы рестарт
// не переалертил всё заново.
type Recorder interface {
	Signal(ctx context.Context, ev models.SignalEvent) error
	TradeClosed(ctx context.Context, ct models.ClosedTrade) error

	LastDecisions(ctx context.Context) (map[string]models.Decision, error)
	SaveLastDecision(ctx context.Context, symbol string, d models.Decision) error

	Today(ctx context.Context, now time.Time) (models.DailyStats, error)
}
