package tracer

import (
	"context"
	"log"

	"go.uber.org/fx"
)

// FXModule wires tracing into Fx.
//
// It provides:
//   - Config    (NewConfig)
//   - *Tracer   (NewClient)
//
// and registers a shutdown hook that flushes pending spans.
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewConfig,
		NewClient,
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// RegisterTracerLifecycle shuts the trace provider down cleanly so pending
// spans reach the collector before the process exits.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Println("INFO: shutting down tracer...")
			return tracer.Shutdown(ctx)
		},
	})
}
