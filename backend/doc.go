// Package backend defines the graphics device abstraction that executes
// presentation graphs, and a registry for selecting an implementation.
//
// A Device exposes the narrow capability set graph execution needs:
// CreateSurface, SurfaceFormat, CreateImage, AddPass, and Present. The
// graph lifecycle logic in the root framegraph package is agnostic to
// the device; it depends only on the surface subset.
//
// Implementations register themselves on import:
//
//	import _ "github.com/gogpu/framegraph/backend/wgpu"     // GPU output
//	import _ "github.com/gogpu/framegraph/backend/headless" // tests, CI
//
// and are selected via Get() or Default().
package backend
