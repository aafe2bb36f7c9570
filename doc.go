// Package kasane provides a layered, override-capable configuration resolver.
//
// The name comes from the Japanese word for "layering" (重ね). Configuration
// sources are stacked in a fixed order and a key resolves to the value held by
// the highest layer that defines it:
//
//	RUNTIME      values set programmatically while the process runs
//	REMOTE       values polled from remote stores (see package remote)
//	SYSTEM       process properties and -Dkey=value definitions
//	ENVIRONMENT  environment variables
//	APPLICATION  application overrides and config files
//	LIBRARIES    per-library overrides, grouped by library name
//	DEFAULTS     fallback values
//
// The order never changes after bootstrap. Only the contents of the mutable
// layers (RUNTIME, DEFAULTS and the remote sources) do.
//
// Key features:
//   - Fixed, positional precedence with first-match resolution
//   - Deferred seeding of RUNTIME and DEFAULTS at activation
//   - Lock-free reads after activation
//   - Typed accessors and struct binding
//   - Conditional components (see package condition)
package kasane
