package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
	"signal_bot/pkg/db"
)

const schema = `
CREATE TABLE IF NOT EXISTS signals (
	id              BIGSERIAL PRIMARY KEY,
	at              TIMESTAMPTZ NOT NULL,
	symbol          TEXT NOT NULL,
	tv_symbol       TEXT NOT NULL,
	price           DOUBLE PRECISION NOT NULL,
	decision        TEXT NOT NULL,
	reason          TEXT NOT NULL DEFAULT '',
	expected_profit DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS trades (
	id               BIGSERIAL PRIMARY KEY,
	symbol           TEXT NOT NULL,
	tv_symbol        TEXT NOT NULL,
	side             TEXT NOT NULL,
	entry            DOUBLE PRECISION NOT NULL,
	exit             DOUBLE PRECISION NOT NULL,
	sl               DOUBLE PRECISION NOT NULL,
	tp1              DOUBLE PRECISION NOT NULL,
	tp2              DOUBLE PRECISION NOT NULL,
	reason           TEXT NOT NULL,
	profit_pct       DOUBLE PRECISION NOT NULL,
	opened_at        TIMESTAMPTZ NOT NULL,
	closed_at        TIMESTAMPTZ NOT NULL,
	duration_seconds BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS symbol_state (
	symbol     TEXT PRIMARY KEY,
	decision   TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`

// Pg — рекордер в Postgres через транзакционный менеджер.
type Pg struct {
	tm *db.PgTxManager
}

func NewPg(ctx context.Context, tm *db.PgTxManager) (*Pg, error) {
	p := &Pg{tm: tm}
	err := tm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, schema)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "store: ensure schema")
	}
	return p, nil
}

func (p *Pg) Signal(ctx context.Context, ev models.SignalEvent) error {
	return p.tm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx,
			`INSERT INTO signals (at, symbol, tv_symbol, price, decision, reason, expected_profit)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			ev.At, ev.Symbol, ev.TV, ev.Price, string(ev.Decision), ev.Reason, ev.ExpectedProfit)
		return err
	})
}

func (p *Pg) TradeClosed(ctx context.Context, ct models.ClosedTrade) error {
	return p.tm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx,
			`INSERT INTO trades (symbol, tv_symbol, side, entry, exit, sl, tp1, tp2,
			                     reason, profit_pct, opened_at, closed_at, duration_seconds)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			ct.Symbol, ct.TV, string(ct.Side), ct.Entry, ct.Exit, ct.SL, ct.TP1, ct.TP2,
			string(ct.Reason), ct.ProfitPct, ct.OpenedAt, ct.ClosedAt, int64(ct.Duration.Seconds()))
		return err
	})
}

func (p *Pg) LastDecisions(ctx context.Context) (map[string]models.Decision, error) {
	out := make(map[string]models.Decision)
	err := p.tm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctxTx, `SELECT symbol, decision FROM symbol_state`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var symbol, decision string
			if err := rows.Scan(&symbol, &decision); err != nil {
				return err
			}
			out[symbol] = models.Decision(decision)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, errors.Wrap(err, "store: load state")
	}
	return out, nil
}

func (p *Pg) SaveLastDecision(ctx context.Context, symbol string, d models.Decision) error {
	return p.tm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx,
			`INSERT INTO symbol_state (symbol, decision, updated_at) VALUES ($1, $2, now())
			 ON CONFLICT (symbol) DO UPDATE SET decision = $2, updated_at = now()`,
			symbol, string(d))
		return err
	})
}

func (p *Pg) Today(ctx context.Context, now time.Time) (models.DailyStats, error) {
	day := helper.DayKey(now)
	st := models.DailyStats{Day: day}

	err := p.tm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctxTx,
			`SELECT count(*) FILTER (WHERE decision = 'BUY'),
			        count(*) FILTER (WHERE decision = 'SELL')
			 FROM signals WHERE (at AT TIME ZONE 'UTC')::date = $1::date`, day).
			Scan(&st.Buy, &st.Sell)
		if err != nil {
			return err
		}
		return tx.QueryRow(ctxTx,
			`SELECT count(*), COALESCE(sum(profit_pct), 0)
			 FROM trades WHERE (closed_at AT TIME ZONE 'UTC')::date = $1::date`, day).
			Scan(&st.Closed, &st.ProfitSum)
	})
	if err != nil {
		return models.DailyStats{}, errors.Wrap(err, "store: daily stats")
	}
	return st, nil
}
