package aligner

import "go.uber.org/fx"

// FXModule wires the aligner into Fx.
//
// It provides:
//   - *Aligner   (NewAligner)
//
// Dependencies resolved from the container: *logger.LoggerClient,
// *metrics.Metrics.
var FXModule = fx.Module("aligner",
	fx.Provide(
		NewAligner,
	),
)
