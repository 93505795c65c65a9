package background

import (
	"context"

	"go.uber.org/fx"
)

var Options = fx.Options(
	fx.Provide(NewPool),
	fx.Invoke(func(lc fx.Lifecycle, pool *Pool) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return pool.Stop(ctx)
			},
		})
	}),
)
