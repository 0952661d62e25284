package runner

import (
	"context"
	"sync"
	"time"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
	"signal_bot/internal/modules/analyzer/service"
	"signal_bot/internal/modules/config"
	healthsvc "signal_bot/internal/modules/health/service"
	"signal_bot/internal/notify"
	"signal_bot/internal/store"
	"signal_bot/pkg/logger"
)

// PriceSource — внешний фид цены, один вызов на цикл символа.
type PriceSource interface {
	Price(ctx context.Context, symbol string) (models.PriceTick, error)
}

// VoteSource — голоса по таймфреймам; ошибка только когда нет ни одного
// живого голоса (упавшие таймфреймы приходят как HOLD).
type VoteSource interface {
	Votes(ctx context.Context, tvSymbol string, timeframes []string) (map[string]models.Decision, error)
}

// Runner гоняет независимый цикл на каждый символ и отдельный таймер
// дашборда. Медленный фетч одного символа не трогает остальные.
type Runner struct {
	cfg    *config.Config
	eng    *service.Engine
	mgr    *Manager
	prices PriceSource
	votes  VoteSource
	n      notify.Notifier
	rec    store.Recorder
	health *healthsvc.State
}

func NewRunner(
	cfg *config.Config,
	eng *service.Engine,
	mgr *Manager,
	prices PriceSource,
	votes VoteSource,
	n notify.Notifier,
	rec store.Recorder,
	health *healthsvc.State,
) *Runner {
	return &Runner{
		cfg:    cfg,
		eng:    eng,
		mgr:    mgr,
		prices: prices,
		votes:  votes,
		n:      n,
		rec:    rec,
		health: health,
	}
}

// Restore поднимает решения прошлого запуска из стора.
func (r *Runner) Restore(ctx context.Context) {
	last, err := r.rec.LastDecisions(ctx)
	if err != nil {
		logger.Error("runner: restore state: %v", err)
		return
	}
	r.mgr.Restore(last)
	logger.Info("runner: restored %d symbol decisions", len(last))
}

func (r *Runner) Start(ctx context.Context) {
	for _, sym := range r.cfg.Symbols {
		sym := sym
		go r.loopSymbol(ctx, sym)
	}
	go r.dashboardLoop(ctx)

	r.health.SetReady(true)
	logger.Info("runner: started %d symbols, check every %s", len(r.cfg.Symbols), r.cfg.CheckInterval)
}

func (r *Runner) loopSymbol(ctx context.Context, sym config.Symbol) {
	t := time.NewTicker(r.cfg.CheckInterval)
	defer t.Stop()

	r.cycle(ctx, sym)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.cycle(ctx, sym)
		}
	}
}

// cycle — один проход по символу: фетчи параллельно, затем синхронный блок
// переходов под локом, затем нотификации и записи по уже закоммиченному
// состоянию.
func (r *Runner) cycle(ctx context.Context, sym config.Symbol) {
	var (
		tick     models.PriceTick
		priceErr error
		byTF     map[string]models.Decision
		votesErr error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		tick, priceErr = r.prices.Price(ctx, sym.Name)
	}()
	go func() {
		defer wg.Done()
		byTF, votesErr = r.votes.Votes(ctx, sym.TV, r.cfg.Timeframes)
	}()
	wg.Wait()

	if priceErr != nil {
		// пропуск цикла, следующий тик попробует снова
		logger.Warn("runner: %s: price fetch failed: %v", sym.Name, priceErr)
		return
	}

	votes := make([]models.Decision, 0, len(r.cfg.Timeframes))
	for _, tf := range r.cfg.Timeframes {
		v, ok := byTF[helper.NormTF(tf)]
		if !ok {
			v = models.DecisionHold
		}
		votes = append(votes, v)
	}

	now := time.Now()

	var (
		decision    models.Decision
		action      models.Action
		lv          models.Levels
		reason      string
		expected    float64
		holdElapsed time.Duration
		openedNow   bool
		evs         []service.TradeEvent
	)

	r.mgr.WithState(sym.Name, func(st *service.SymbolState) {
		st.PushPrice(tick.Price)
		st.LastChange24h = tick.Change24h

		if votesErr != nil && r.cfg.TrendFallback {
			decision = r.eng.FallbackTrend(st)
		} else {
			decision = r.eng.Aggregate(votes)
		}

		reason = r.eng.Reason(votes, service.DetectPattern(st.History))
		lv = r.eng.LevelsFor(st, tick.Price, decision)
		expected = service.ExpectedProfit(lv, decision)

		holdSince := st.HoldStartedAt
		action = r.eng.Debounce(st, decision, now)
		if action == models.ActionHoldTimeout && !holdSince.IsZero() {
			holdElapsed = now.Sub(holdSince)
		}

		if action == models.ActionAlertChange && decision.Directional() && st.Trade == nil {
			openedNow = r.eng.Open(st, decision, lv, now)
		}

		// сделку, открытую этим тиком, не оцениваем по цене её же открытия
		if st.Trade != nil && !openedNow {
			evs = r.eng.Evaluate(st, tick.Price, now)
		}
	})

	switch action {
	case models.ActionAlertChange:
		ev := models.SignalEvent{
			At:             now,
			Symbol:         sym.Name,
			TV:             sym.TV,
			Price:          tick.Price,
			Decision:       decision,
			Reason:         reason,
			ExpectedProfit: expected,
		}
		if err := r.n.DecisionChange(ctx, ev, lv); err != nil {
			logger.Error("runner: %s: decision alert: %v", sym.Name, err)
		}
		if err := r.rec.Signal(ctx, ev); err != nil {
			logger.Error("runner: %s: record signal: %v", sym.Name, err)
		}
		if err := r.rec.SaveLastDecision(ctx, sym.Name, decision); err != nil {
			logger.Error("runner: %s: save state: %v", sym.Name, err)
		}

	case models.ActionHoldTimeout:
		if err := r.n.HoldTimeout(ctx, sym.TV, holdElapsed); err != nil {
			logger.Error("runner: %s: hold alert: %v", sym.Name, err)
		}
		ev := models.SignalEvent{
			At:       now,
			Symbol:   sym.Name,
			TV:       sym.TV,
			Price:    tick.Price,
			Decision: decision,
			Reason:   "hold timeout",
		}
		if err := r.rec.Signal(ctx, ev); err != nil {
			logger.Error("runner: %s: record hold: %v", sym.Name, err)
		}
	}

	for _, e := range evs {
		switch e.Kind {
		case service.EventPartialTarget:
			if err := r.n.PartialTarget(ctx, sym.TV, e.Level, e.Price); err != nil {
				logger.Error("runner: %s: partial alert: %v", sym.Name, err)
			}
		case service.EventClosed:
			if err := r.n.TradeClosed(ctx, e.Closed); err != nil {
				logger.Error("runner: %s: close alert: %v", sym.Name, err)
			}
			if err := r.rec.TradeClosed(ctx, e.Closed); err != nil {
				logger.Error("runner: %s: record close: %v", sym.Name, err)
			}
		}
	}

	r.health.TouchCycle(now)
}

func (r *Runner) dashboardLoop(ctx context.Context) {
	t := time.NewTicker(r.cfg.DashboardInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.sendDashboard(ctx)
		}
	}
}

func (r *Runner) sendDashboard(ctx context.Context) {
	sum := r.mgr.Dashboard()
	if today, err := r.rec.Today(ctx, sum.At); err == nil {
		sum.Today = today
	} else {
		logger.Error("runner: daily stats: %v", err)
	}

	if err := r.n.Dashboard(ctx, sum); err != nil {
		logger.Error("runner: dashboard alert: %v", err)
	}
}
