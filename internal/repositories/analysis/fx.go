package analysis

import (
	"go.uber.org/fx"
)

var Module = fx.Module("analysis_repository",
	fx.Provide(
		fx.Annotate(
			NewPgx,
			fx.As(new(Repository)),
		),
	),
)
