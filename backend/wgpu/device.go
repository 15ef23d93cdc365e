package wgpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/backend"
	"github.com/gogpu/framegraph/debugdraw"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// init registers the wgpu device on package import.
func init() {
	backend.Register(backend.DeviceWGPU, func() backend.Device {
		return New()
	})
}

// Option configures a Device.
type Option func(*Device)

// WithSurfaceSource attaches a host swapchain. Without one the device
// executes graphs offscreen and present passes fail with
// backend.ErrSurfaceLost.
func WithSurfaceSource(src SurfaceSource) Option {
	return func(d *Device) { d.source = src }
}

// WithDeviceProvider shares the host application's GPU device instead of
// opening a new one. The provider must additionally expose the HAL
// handles via HalDevice() any and HalQueue() any.
func WithDeviceProvider(provider gpucontext.DeviceProvider) Option {
	return func(d *Device) { d.provider = provider }
}

// Image is a GPU texture allocated for a graph resource node.
type Image struct {
	dev  hal.Device
	tex  hal.Texture
	view hal.TextureView
	desc framegraph.ImageDesc
}

// Width returns the image width in pixels.
func (i *Image) Width() uint32 { return i.desc.Width }

// Height returns the image height in pixels.
func (i *Image) Height() uint32 { return i.desc.Height }

// Format returns the image pixel format.
func (i *Image) Format() gputypes.TextureFormat { return i.desc.Format }

// Destroy releases the texture and its view.
func (i *Image) Destroy() {
	if i.dev == nil {
		return
	}
	if i.view != nil {
		i.dev.DestroyTextureView(i.view)
		i.view = nil
	}
	if i.tex != nil {
		i.dev.DestroyTexture(i.tex)
		i.tex = nil
	}
	i.dev = nil
}

// frameState holds the draw pass most recently executed, so Present can
// re-encode it against the swapchain view. The HAL exposes no
// texture-to-texture copy, so presentation redraws instead of blitting.
type frameState struct {
	groups       []*debugdraw.GroupDesc
	clearColor   gputypes.Color
	depthClear   float32
	stencilClear uint32
}

// depthTarget is the device-owned depth buffer used when redrawing a
// frame onto the swapchain, recreated when the surface size changes.
type depthTarget struct {
	tex    hal.Texture
	view   hal.TextureView
	width  uint32
	height uint32
}

func (t *depthTarget) destroy(dev hal.Device) {
	if t == nil || dev == nil {
		return
	}
	if t.view != nil {
		dev.DestroyTextureView(t.view)
	}
	if t.tex != nil {
		dev.DestroyTexture(t.tex)
	}
	t.view = nil
	t.tex = nil
}

// Device is a GPU-backed backend.Device on top of the gogpu/wgpu HAL.
type Device struct {
	mu sync.Mutex

	source   SurfaceSource
	provider gpucontext.DeviceProvider

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	// externalDevice is true when the HAL device is owned by the host
	// provider and must not be destroyed on Close.
	externalDevice bool
	initialized    bool

	pipelines    map[gputypes.TextureFormat]*linePipeline
	frame        *frameState
	presentDepth *depthTarget
}

var _ backend.Device = (*Device)(nil)

// New creates a wgpu device. Call Init before use.
func New(opts ...Option) *Device {
	d := &Device{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the device identifier.
func (d *Device) Name() string { return backend.DeviceWGPU }

// Init opens the GPU device: from the host provider when one is
// configured, otherwise via its own Vulkan instance.
func (d *Device) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.initialized {
		return nil
	}

	if d.provider != nil {
		if err := d.adoptProviderLocked(); err != nil {
			return err
		}
	} else if err := d.openOwnDeviceLocked(); err != nil {
		return err
	}

	d.pipelines = make(map[gputypes.TextureFormat]*linePipeline)
	d.initialized = true
	return nil
}

// adoptProviderLocked takes the HAL device and queue from the host
// provider.
func (d *Device) adoptProviderLocked() error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := d.provider.(halProvider)
	if !ok {
		return fmt.Errorf("%w: provider does not expose HAL handles", backend.ErrBackendNotAvailable)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("%w: provider HalDevice is not hal.Device", backend.ErrBackendNotAvailable)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("%w: provider HalQueue is not hal.Queue", backend.ErrBackendNotAvailable)
	}

	d.device = device
	d.queue = queue
	d.externalDevice = true
	framegraph.Logger().Info("wgpu device initialized", "mode", "shared")
	return nil
}

// openOwnDeviceLocked creates a standalone Vulkan instance and opens the
// first discrete or integrated adapter.
func (d *Device) openOwnDeviceLocked() error {
	halBackend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("%w: vulkan backend missing", backend.ErrBackendNotAvailable)
	}
	instance, err := halBackend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("%w: create instance: %w", backend.ErrBackendNotAvailable, err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return fmt.Errorf("%w: no GPU adapters found", backend.ErrBackendNotAvailable)
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return fmt.Errorf("%w: open device: %w", backend.ErrBackendNotAvailable, err)
	}

	d.instance = instance
	d.device = openDev.Device
	d.queue = openDev.Queue
	framegraph.Logger().Info("wgpu device initialized",
		"mode", "standalone", "adapter", selected.Info.Name)
	return nil
}

// Close releases pipelines and, for a standalone device, the HAL device
// and instance. Shared resources owned by the host are left alone.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, p := range d.pipelines {
		p.destroy()
	}
	d.pipelines = nil
	d.presentDepth.destroy(d.device)
	d.presentDepth = nil
	d.frame = nil

	if !d.externalDevice {
		if d.device != nil {
			d.device.Destroy()
		}
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device = nil
	d.queue = nil
	d.instance = nil
	d.externalDevice = false
	d.initialized = false
}

// CreateSurface wraps the configured host swapchain.
func (d *Device) CreateSurface() (framegraph.Surface, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return nil, backend.ErrNotInitialized
	}
	if d.source == nil {
		return nil, fmt.Errorf("%w: no surface source configured", backend.ErrSurfaceLost)
	}
	return &Surface{source: d.source}, nil
}

// SurfaceFormat returns the swapchain pixel format.
func (d *Device) SurfaceFormat(s framegraph.Surface) (gputypes.TextureFormat, error) {
	ws, ok := s.(*Surface)
	if !ok || ws == nil {
		return 0, backend.ErrSurfaceLost
	}
	return ws.Format(), nil
}

// CreateImage allocates a GPU texture with a full view.
func (d *Device) CreateImage(desc framegraph.ImageDesc) (backend.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return nil, backend.ErrNotInitialized
	}

	tex, view, err := d.createTextureLocked(desc.Label, desc.Width, desc.Height,
		maxMips(desc.MipLevels), desc.Format)
	if err != nil {
		return nil, err
	}
	return &Image{dev: d.device, tex: tex, view: view, desc: desc}, nil
}

func maxMips(n uint32) uint32 {
	if n < 1 {
		return 1
	}
	return n
}

func isDepthFormat(f gputypes.TextureFormat) bool {
	return f == gputypes.TextureFormatDepth24PlusStencil8
}

func (d *Device) createTextureLocked(label string, w, h, mips uint32, format gputypes.TextureFormat) (hal.Texture, hal.TextureView, error) {
	usage := gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc
	if isDepthFormat(format) {
		usage = gputypes.TextureUsageRenderAttachment
	}

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: mips,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create texture %q: %w", label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: label})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, nil, fmt.Errorf("create texture view %q: %w", label, err)
	}
	return tex, view, nil
}

// AddPass executes one draw pass into the graph's own attachments and
// keeps the encoded frame around for Present.
func (d *Device) AddPass(pass framegraph.Pass, images map[framegraph.ImageID]backend.Image) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return backend.ErrNotInitialized
	}
	if len(pass.Writes) == 0 {
		return fmt.Errorf("wgpu: draw pass %q has no color attachment", pass.Label)
	}

	color, err := passImage(images, pass.Writes[0])
	if err != nil {
		return err
	}
	if pass.DepthStencil == framegraph.InvalidID {
		return fmt.Errorf("wgpu: draw pass %q has no depth attachment", pass.Label)
	}
	depth, err := passImage(images, pass.DepthStencil)
	if err != nil {
		return err
	}

	groups := make([]*debugdraw.GroupDesc, 0, len(pass.Groups))
	for _, g := range pass.Groups {
		lines, ok := g.(*debugdraw.GroupDesc)
		if !ok {
			return fmt.Errorf("wgpu: unsupported draw group %q", g.GroupName())
		}
		groups = append(groups, lines)
	}

	frame := &frameState{
		groups:     groups,
		depthClear: 1,
	}
	if c := color.desc.Clear; c != nil {
		frame.clearColor = gputypes.Color{
			R: float64(c.Color[0]), G: float64(c.Color[1]),
			B: float64(c.Color[2]), A: float64(c.Color[3]),
		}
	}
	if c := depth.desc.Clear; c != nil {
		frame.depthClear = c.Depth
		frame.stencilClear = c.Stencil
	}

	p, err := d.pipelineLocked(color.desc.Format)
	if err != nil {
		return err
	}
	if err := p.encode(color.view, depth.view,
		frame.clearColor, frame.depthClear, frame.stencilClear, groups); err != nil {
		return fmt.Errorf("wgpu: pass %q: %w", pass.Label, err)
	}

	d.frame = frame
	return nil
}

func passImage(images map[framegraph.ImageID]backend.Image, id framegraph.ImageID) (*Image, error) {
	img, ok := images[id].(*Image)
	if !ok || img == nil {
		return nil, fmt.Errorf("wgpu: image %d not realized on this device", id)
	}
	return img, nil
}

// pipelineLocked returns the line pipeline for a color format, building
// it on first use.
func (d *Device) pipelineLocked(format gputypes.TextureFormat) (*linePipeline, error) {
	if p, ok := d.pipelines[format]; ok {
		return p, nil
	}
	p, err := newLinePipeline(d.device, d.queue, format)
	if err != nil {
		return nil, err
	}
	d.pipelines[format] = p
	return p, nil
}

// Present redraws the last executed frame onto the swapchain view and
// flips it to the screen.
func (d *Device) Present(s framegraph.Surface, color backend.Image) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return backend.ErrNotInitialized
	}
	ws, ok := s.(*Surface)
	if !ok || ws == nil || ws.source == nil {
		return backend.ErrSurfaceLost
	}

	sv := ws.source.SurfaceView()
	view, ok := sv.(hal.TextureView)
	if !ok || view == nil {
		return fmt.Errorf("%w: swapchain view unavailable", backend.ErrSurfaceLost)
	}
	sw, sh := ws.source.SurfaceSize()
	if sw <= 0 || sh <= 0 {
		return fmt.Errorf("%w: zero-sized swapchain", backend.ErrSurfaceLost)
	}

	frame := d.frame
	if frame == nil {
		frame = &frameState{depthClear: 1}
	}

	depth, err := d.presentDepthLocked(uint32(sw), uint32(sh))
	if err != nil {
		return err
	}
	p, err := d.pipelineLocked(ws.Format())
	if err != nil {
		return err
	}
	if err := p.encode(view, depth.view,
		frame.clearColor, frame.depthClear, frame.stencilClear, frame.groups); err != nil {
		return fmt.Errorf("wgpu: present: %w", err)
	}

	if err := ws.source.Present(); err != nil {
		return fmt.Errorf("%w: %w", backend.ErrSurfaceLost, err)
	}
	return nil
}

// presentDepthLocked returns the swapchain-sized depth buffer,
// recreating it when the surface extent changes.
func (d *Device) presentDepthLocked(w, h uint32) (*depthTarget, error) {
	if t := d.presentDepth; t != nil && t.width == w && t.height == h {
		return t, nil
	}
	d.presentDepth.destroy(d.device)
	d.presentDepth = nil

	tex, view, err := d.createTextureLocked("present_depth", w, h, 1,
		gputypes.TextureFormatDepth24PlusStencil8)
	if err != nil {
		return nil, err
	}
	d.presentDepth = &depthTarget{tex: tex, view: view, width: w, height: h}
	return d.presentDepth, nil
}
