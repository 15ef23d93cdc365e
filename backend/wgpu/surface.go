package wgpu

import "github.com/gogpu/gputypes"

// SurfaceSource exposes a host window's swapchain to the device.
// Host frameworks (gogpu.App draw contexts) satisfy it directly.
type SurfaceSource interface {
	// SurfaceView returns the hal.TextureView of the swapchain image
	// for the current frame. It may return nil while the window is
	// minimized or being recreated.
	SurfaceView() any

	// SurfaceSize returns the swapchain extent in pixels.
	SurfaceSize() (int, int)

	// SurfaceFormat returns the swapchain pixel format.
	SurfaceFormat() gputypes.TextureFormat

	// Present flips the current swapchain image to the screen.
	Present() error
}

// Surface is the graph-level presentation surface of the wgpu device.
// It wraps the host's SurfaceSource.
type Surface struct {
	source SurfaceSource
}

// Format returns the swapchain pixel format.
func (s *Surface) Format() gputypes.TextureFormat {
	return s.source.SurfaceFormat()
}

// Size returns the swapchain extent in pixels.
func (s *Surface) Size() (int, int) {
	return s.source.SurfaceSize()
}
