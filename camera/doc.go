// Package camera provides the camera math for debug rendering: an
// orthographic projection and a translation transform, combined into a
// view-projection matrix suitable for GPU upload.
//
// Matrices are column-major [16]float32 values (golang.org/x/image/math/f32),
// matching the WGSL mat4x4<f32> layout. Depth maps to the [0, 1] range
// used by WebGPU.
package camera
