// Одноразовый диагностический прогон без fx: загрузить конфиг, сходить за
// ценой и голосами каждого символа, напечатать решение и уровни.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
	analyzersvc "signal_bot/internal/modules/analyzer/service"
	"signal_bot/internal/modules/config"
	indicatorsvc "signal_bot/internal/modules/indicator/service"
	pricefeedsvc "signal_bot/internal/modules/pricefeed/service"
	"signal_bot/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	logger.SetServiceName("signal_bot_check")
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	feed := pricefeedsvc.NewClient(cfg)
	scanner := indicatorsvc.NewClient(cfg)
	eng := analyzersvc.NewEngine(cfg)

	for _, sym := range cfg.Symbols {
		tick, err := feed.Price(ctx, sym.Name)
		if err != nil {
			fmt.Printf("%-12s price fetch failed: %v\n", sym.Name, err)
			continue
		}

		byTF, votesErr := scanner.Votes(ctx, sym.TV, cfg.Timeframes)
		votes := make([]models.Decision, 0, len(cfg.Timeframes))
		for _, tf := range cfg.Timeframes {
			v, ok := byTF[helper.NormTF(tf)]
			if !ok {
				v = models.DecisionHold
			}
			votes = append(votes, v)
		}

		decision := eng.Aggregate(votes)
		lv := analyzersvc.ComputeLevels(tick.Price, decision, cfg.SymbolVolatility(sym.Name))

		note := ""
		if votesErr != nil {
			note = " (votes unavailable)"
		}
		fmt.Printf("%-12s price=%v 24h=%+.2f%% votes=%v -> %s  entry=%v sl=%v tp1=%v tp2=%v%s\n",
			sym.Name, tick.Price, tick.Change24h, votes, decision, lv.Entry, lv.SL, lv.TP1, lv.TP2, note)
	}
}
