// Package framegraph owns the lifecycle of a presentation render graph.
//
// # Overview
//
// A presentation graph is the declarative, dependency-ordered set of
// resources (color and depth images) and passes (draw, present) that
// together define one frame's rendering work. Hosts that render into a
// window must throw that graph away and build a new one whenever the
// window's drawable size changes — but not on every transient size event.
//
// framegraph provides exactly that decision procedure plus the graph
// assembly:
//
//	ctrl := framegraph.NewController()
//
//	// once per frame tick, driven by the host's scheduler:
//	if ctrl.ShouldRebuild(window.Dimensions()) {
//	    desc, err := ctrl.Build(device, lineGroup)
//	    ...
//	}
//
// ShouldRebuild debounces resizes: a new size must be observed on two
// consecutive ticks before a rebuild is reported, so a single-frame
// glitch or a resize still in flight never triggers work against stale
// dimensions.
//
// # Architecture
//
// The module is organized into:
//   - Root package: Controller (rebuild decision + graph assembly) and
//     Builder/Description (the graph value types)
//   - backend/: the Device abstraction, a registry, and implementations
//     (backend/headless for tests and CI, backend/wgpu for GPU output)
//   - debugdraw/: debug-line buffers and the line draw group
//   - camera/: orthographic camera math
//   - config/: HCL display configuration
//   - engine/: the frame-driving loop and a minimal entity world
//
// # Concurrency
//
// A Controller is single-owner: ShouldRebuild and Build are invoked
// sequentially by one driving loop and carry no internal locking.
// Descriptions are immutable once built.
package framegraph
