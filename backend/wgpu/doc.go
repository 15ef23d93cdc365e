// Package wgpu provides a GPU-backed Device on top of the gogpu/wgpu
// hardware abstraction layer.
//
// The device can run in two modes:
//
//   - Shared: the host application (e.g., a gogpu.App) owns the GPU
//     device and hands it over via WithDeviceProvider. The host also
//     owns the swapchain and exposes it via WithSurfaceSource; presented
//     frames are rendered directly into the host's surface view.
//   - Standalone: without a provider, Init opens its own Vulkan adapter
//     and device. Graphs still execute against offscreen images; there
//     is no surface to present to unless a SurfaceSource is configured.
//
// Importing the package registers the device under backend.DeviceWGPU:
//
//	import _ "github.com/gogpu/framegraph/backend/wgpu"
package wgpu
