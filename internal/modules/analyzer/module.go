package analyzer

import (
	"go.uber.org/fx"

	"signal_bot/internal/modules/analyzer/service"
)

func Module() fx.Option {
	return fx.Module("analyzer",
		fx.Provide(
			service.NewEngine, // *service.Engine
		),
	)
}
