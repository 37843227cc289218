package generator

import "go.uber.org/fx"

// FXModule wires the generator into Fx.
//
// It provides:
//   - Config       (NewConfig)
//   - *Generator   (NewGenerator)
//
// Dependencies resolved from the container: *encoder.Provider,
// embeddingstore.Store, *logger.LoggerClient, *metrics.Metrics.
var FXModule = fx.Module("generator",
	fx.Provide(
		NewConfig,
		NewGenerator,
	),
)
