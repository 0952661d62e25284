package service

import (
	"context"
	"sync"

	"signal_bot/internal/helper"
	"signal_bot/internal/modules/config"
	pricefeed "signal_bot/internal/modules/pricefeed/service"
	"signal_bot/internal/runner"
	"signal_bot/pkg/logger"
)

// Warmuper прогревает историю цен по REST-свечам, чтобы паттерны, ATR и
// fallback-тренд работали с первого цикла. Ошибки не фатальны: символ
// просто стартует с пустой историей.
type Warmuper struct {
	feed *pricefeed.Client
	mgr  *runner.Manager
	cfg  *config.Config

	// ограничитель параллелизма, чтобы не словить rate limit
	sem chan struct{}
}

func NewWarmuper(feed *pricefeed.Client, mgr *runner.Manager, cfg *config.Config) *Warmuper {
	return &Warmuper{
		feed: feed,
		mgr:  mgr,
		cfg:  cfg,
		sem:  make(chan struct{}, 4),
	}
}

func (w *Warmuper) Warmup(ctx context.Context) {
	interval := "1h"
	if len(w.cfg.Timeframes) > 0 {
		interval = helper.NormTF(w.cfg.Timeframes[0])
	}

	var wg sync.WaitGroup
	for _, sym := range w.cfg.Symbols {
		sym := sym
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.sem <- struct{}{}
			defer func() { <-w.sem }()

			candles, err := w.feed.Klines(ctx, sym.Name, interval, w.cfg.HistorySize)
			if err != nil {
				logger.Warn("warmup: %s: %v", sym.Name, err)
				return
			}

			closes := make([]float64, 0, len(candles))
			for _, c := range candles {
				closes = append(closes, c.Close)
			}
			w.mgr.SeedHistory(sym.Name, closes)
			logger.Info("warmup: %s seeded %d closes", sym.Name, len(closes))
		}()
	}
	wg.Wait()
}
