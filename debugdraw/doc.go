// Package debugdraw provides line-drawing primitives for debug overlays:
// grids, axes, and per-frame annotations.
//
// Two containers cover the two lifetimes debug content has:
//
//   - Buffer holds immediate lines, submitted every frame by systems and
//     cleared after each frame.
//   - Component holds persistent lines (a grid, axes) built once and
//     drawn every frame until changed.
//
// A GroupDesc bundles buffers, components, line parameters, and the
// camera into the draw group embedded in a presentation graph's draw
// pass. The graph treats it as an opaque handle; device backends know
// how to execute it.
package debugdraw
