package indicator

import (
	"go.uber.org/fx"

	"signal_bot/internal/modules/indicator/service"
	"signal_bot/internal/runner"
)

func Module() fx.Option {
	return fx.Module("indicator",
		fx.Provide(
			service.NewClient, // *service.Client
			func(c *service.Client) runner.VoteSource { return c },
		),
	)
}
