package backend

import (
	"errors"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gputypes"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested device is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")

	// ErrSurfaceLost is returned when the presentation surface is gone,
	// typically because the host window was destroyed.
	ErrSurfaceLost = errors.New("backend: surface lost")
)

// Device name constants.
const (
	// DeviceWGPU is the name of the GPU device (gogpu/wgpu HAL).
	DeviceWGPU = "wgpu"
	// DeviceHeadless is the name of the CPU-backed headless device.
	DeviceHeadless = "headless"
)

// Image is a device-level image allocated for a graph resource node.
type Image interface {
	// Width returns the image width in pixels.
	Width() uint32

	// Height returns the image height in pixels.
	Height() uint32

	// Format returns the image pixel format.
	Format() gputypes.TextureFormat

	// Destroy releases the resources backing the image.
	Destroy()
}

// Device is the interface for graph-executing graphics devices.
// It abstracts the rendering implementation so the graph lifecycle
// stays backend-agnostic.
//
// Devices must be registered via Register() and are selected via
// Get() or Default().
type Device interface {
	// Name returns the device identifier (e.g., "wgpu", "headless").
	Name() string

	// Init initializes the device.
	// This should be called before any other operation.
	Init() error

	// Close releases all device resources.
	// The device should not be used after Close is called.
	Close()

	// CreateSurface returns the device's presentable surface.
	CreateSurface() (framegraph.Surface, error)

	// SurfaceFormat returns the pixel format the surface was created with.
	SurfaceFormat(s framegraph.Surface) (gputypes.TextureFormat, error)

	// CreateImage allocates an image for a graph resource node.
	CreateImage(desc framegraph.ImageDesc) (Image, error)

	// AddPass executes one draw pass of the active graph generation.
	// Passes are submitted in the dependency order declared by the
	// description.
	AddPass(pass framegraph.Pass, images map[framegraph.ImageID]Image) error

	// Present hands the finished color image to the surface.
	Present(s framegraph.Surface, color Image) error
}
