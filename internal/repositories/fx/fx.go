package fx

import (
	"github.com/orgball2608/insta-compliance-bot/internal/repositories/analysis"
	"go.uber.org/fx"
)

var Module = fx.Options(
	analysis.Module,
)
