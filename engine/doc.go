// Package engine drives the per-frame lifecycle: a minimal component
// world, a host window abstraction, and the Loop that runs systems,
// rebuilds the presentation graph when the window size settles, and
// executes it on a backend device.
//
// Everything is explicit dependency injection: the Loop receives its
// window, device, and world at construction and owns them for its
// lifetime. Nothing in the package is safe for concurrent use; one
// goroutine drives the loop.
package engine
