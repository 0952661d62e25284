package pricefeed

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/pricefeed/service"
	"signal_bot/internal/runner"
)

// Module поднимает фид цен: REST-клиент всегда (прогрев истории ходит по
// klines), в режиме ws дополнительно стример с кэшем последнего тика.
func Module() fx.Option {
	return fx.Module("pricefeed",
		fx.Provide(
			service.NewClient, // *service.Client
			service.NewStream, // *service.Stream
			func(cfg *config.Config, c *service.Client, s *service.Stream) runner.PriceSource {
				if cfg.Feed.Mode == "ws" {
					return s
				}
				return c
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, s *service.Stream, appCtx context.Context) {
			if cfg.Feed.Mode != "ws" {
				return
			}
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go s.Start(appCtx)
					return nil
				},
			})
		}),
	)
}
