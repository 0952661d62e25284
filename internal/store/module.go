package store

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	"signal_bot/pkg/db"
	"signal_bot/pkg/logger"
)

// Module выбирает рекордер: Postgres при заданном DSN, иначе файлы в data_dir.
func Module() fx.Option {
	return fx.Module("store",
		fx.Provide(
			func(ctx context.Context, cfg *config.Config, tm *db.PgTxManager) (Recorder, error) {
				if tm != nil {
					logger.Info("store: recording to postgres")
					return NewPg(ctx, tm)
				}
				logger.Info("store: recording to %s", cfg.DataDir)
				return NewFile(cfg.DataDir)
			},
		),
	)
}
