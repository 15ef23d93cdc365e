// Package headless provides a CPU-backed Device for tests, CI, and
// environments without a GPU or a window. Images are plain byte buffers
// and Present is a no-op against an in-memory surface.
package headless

import (
	"sync"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/backend"
	"github.com/gogpu/gputypes"
)

// init registers the headless device on package import.
func init() {
	backend.Register(backend.DeviceHeadless, func() backend.Device {
		return New()
	})
}

// Surface is the in-memory presentation surface of the headless device.
// The last presented image is kept for inspection by tests.
type Surface struct {
	format gputypes.TextureFormat

	mu        sync.Mutex
	lastColor backend.Image
	presents  int
}

// Format returns the surface pixel format.
func (s *Surface) Format() gputypes.TextureFormat { return s.format }

// LastPresented returns the color image most recently handed to the
// surface, or nil if nothing was presented yet.
func (s *Surface) LastPresented() backend.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastColor
}

// PresentCount returns how many frames were presented.
func (s *Surface) PresentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presents
}

// Image is a CPU-backed image. Pixel storage is allocated eagerly at
// 4 bytes per pixel regardless of format; zero-sized images hold no data.
type Image struct {
	width  uint32
	height uint32
	format gputypes.TextureFormat
	pix    []byte
}

// Width returns the image width in pixels.
func (i *Image) Width() uint32 { return i.width }

// Height returns the image height in pixels.
func (i *Image) Height() uint32 { return i.height }

// Format returns the image pixel format.
func (i *Image) Format() gputypes.TextureFormat { return i.format }

// Pixels returns the backing pixel storage.
func (i *Image) Pixels() []byte { return i.pix }

// Destroy releases the pixel storage.
func (i *Image) Destroy() { i.pix = nil }

// Device is a CPU-backed backend.Device.
//
// It reports a fixed BGRA8 surface format (the common swapchain format)
// and accepts any image description without validation, so zero-sized
// graphs degrade gracefully instead of erroring.
type Device struct {
	mu          sync.Mutex
	surface     *Surface
	initialized bool
}

// New creates a headless device. Call Init before use.
func New() *Device {
	return &Device{}
}

// Name returns the device identifier.
func (d *Device) Name() string { return backend.DeviceHeadless }

// Init initializes the device.
func (d *Device) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.surface = &Surface{format: gputypes.TextureFormatBGRA8Unorm}
	d.initialized = true
	return nil
}

// Close releases device resources.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.surface = nil
	d.initialized = false
}

// CreateSurface returns the in-memory surface.
func (d *Device) CreateSurface() (framegraph.Surface, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return nil, backend.ErrNotInitialized
	}
	return d.surface, nil
}

// SurfaceFormat returns the surface pixel format.
func (d *Device) SurfaceFormat(s framegraph.Surface) (gputypes.TextureFormat, error) {
	hs, ok := s.(*Surface)
	if !ok || hs == nil {
		return 0, backend.ErrSurfaceLost
	}
	return hs.format, nil
}

// CreateImage allocates a CPU-backed image.
func (d *Device) CreateImage(desc framegraph.ImageDesc) (backend.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return nil, backend.ErrNotInitialized
	}
	return &Image{
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		pix:    make([]byte, int(desc.Width)*int(desc.Height)*4),
	}, nil
}

// AddPass accepts any draw pass. Headless execution performs no
// rasterization; clears and draw groups are ignored.
func (d *Device) AddPass(pass framegraph.Pass, images map[framegraph.ImageID]backend.Image) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return backend.ErrNotInitialized
	}
	for _, id := range pass.Writes {
		if images[id] == nil {
			return backend.ErrSurfaceLost
		}
	}
	return nil
}

// Present records the presented image on the surface.
func (d *Device) Present(s framegraph.Surface, color backend.Image) error {
	hs, ok := s.(*Surface)
	if !ok || hs == nil {
		return backend.ErrSurfaceLost
	}
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.lastColor = color
	hs.presents++
	return nil
}
