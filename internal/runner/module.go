package runner

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/notify"
)

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			NewManager, // *Manager
			NewRunner,  // *Runner
			func(m *Manager) notify.StatusProvider { return m },
		),
		fx.Invoke(func(lc fx.Lifecycle, r *Runner, appCtx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					r.Restore(ctx)
					go r.Start(appCtx)
					return nil
				},
			})
		}),
	)
}
