package bootstrap

import (
	"context"

	"go.uber.org/fx"

	bootstrap "signal_bot/internal/modules/bootstrap/service"
	"signal_bot/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("bootstrap",
		fx.Provide(
			bootstrap.NewWarmuper, // *bootstrap.Warmuper
		),
		fx.Invoke(func(lc fx.Lifecycle, wu *bootstrap.Warmuper, appCtx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go func() {
						wu.Warmup(appCtx)
						logger.Info("warmup done")
					}()
					return nil
				},
			})
		}),
	)
}
