package notify

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	"signal_bot/pkg/logger"
)

// Module выбирает нотифайер: телеграм при включённом конфиге и токене,
// иначе stdout-заглушка.
func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(
			func(cfg *config.Config, status StatusProvider) (Notifier, error) {
				if cfg.Telegram.Enabled && cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
					return NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, status)
				}
				logger.Info("notify: telegram disabled, using stdout")
				return NewStdout(), nil
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, n Notifier, appCtx context.Context) {
			tg, ok := n.(*Telegram)
			if !ok {
				return
			}
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					return tg.Start(appCtx)
				},
			})
		}),
	)
}
