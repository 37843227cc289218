package session

import "go.uber.org/fx"

// FXModule wires session construction into Fx.
//
// It provides:
//   - Config     (NewConfig)
//   - *Session   (NewSession)
//
// A host that runs concurrent generation requests should provide a session
// factory instead of a shared instance; sessions are request-scoped.
var FXModule = fx.Module("session",
	fx.Provide(
		NewConfig,
		NewSession,
	),
)
