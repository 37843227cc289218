package encoder

import (
	"context"

	"go.uber.org/fx"
)

// FXModule wires the encoder provider into Fx.
//
// It provides:
//   - *Provider   (NewProvider)
//
// The host application must supply a LoadFunc in the container, e.g.:
//
//	fx.Provide(func() encoder.LoadFunc { return myLoader })
//
// A shutdown hook releases the loaded capability.
var FXModule = fx.Module("encoder",
	fx.Provide(
		NewProvider,
	),
	fx.Invoke(RegisterProviderLifecycle),
)

// RegisterProviderLifecycle releases the shared capability on shutdown.
func RegisterProviderLifecycle(lc fx.Lifecycle, provider *Provider) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			provider.Release()
			return nil
		},
	})
}
