package framegraph

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
)

// ErrSurfaceUnavailable is returned by Controller.Build when the device
// cannot produce a surface or its format (for example because the window
// has been destroyed). The rebuild stays scheduled; the caller should
// retry on a later tick once dimensions are next observed as stable.
var ErrSurfaceUnavailable = errors.New("framegraph: surface unavailable")

// Surface is an opaque handle to a presentable window surface.
// Backend packages define the concrete types.
type Surface any

// SurfaceDevice is the slice of the backend capability set the Controller
// needs: surface creation and the format query. Both are assumed cheap,
// but the format is queried at most once per Controller lifetime.
type SurfaceDevice interface {
	// CreateSurface returns the device's presentable surface.
	CreateSurface() (Surface, error)

	// SurfaceFormat returns the pixel format the surface was created with.
	SurfaceFormat(s Surface) (gputypes.TextureFormat, error)
}

// Graph construction constants. The background and depth clears match a
// black window with a standard 1.0/0 depth-stencil reset; the depth
// format is the portable WebGPU depth/stencil format.
const depthFormat = gputypes.TextureFormatDepth24PlusStencil8

var (
	backgroundClear = ClearValue{Color: [4]float32{0, 0, 0, 1}}
	depthClear      = ClearValue{Depth: 1, Stencil: 0}
)

// Controller decides, once per scheduling tick, whether the presentation
// graph is stale, and on demand produces a dependency-ordered graph
// description sized to the last stable window dimensions.
//
// Controller is single-owner: one driving loop calls ShouldRebuild and
// then conditionally Build, exactly once per tick. It has no internal
// synchronization and must not be shared across goroutines without
// external locking. Neither method blocks.
type Controller struct {
	lastDims Dimensions
	hasDims  bool

	// The surface format is queried on the first build and never again:
	// the pixel format does not depend on image size, so it survives
	// dimension changes for the life of the process.
	format    gputypes.TextureFormat
	hasFormat bool

	// dirty means a rebuild is owed but has not yet been delivered.
	// Set when a dimension change is first observed, cleared exactly
	// when a Build consumes it.
	dirty bool
}

// NewController creates a controller with no dimension observation.
func NewController() *Controller {
	return &Controller{}
}

// ShouldRebuild compares the current frame's observed window dimensions
// (nil if unavailable) against the previous observation and reports
// whether the presentation graph must be rebuilt.
//
// A change — including one side present and the other absent — records
// the new value, marks a rebuild as owed, and returns false: the rebuild
// is deferred by one tick so that a transient single-frame glitch, or a
// resize not yet settled, never triggers work against stale data. Only
// once the same dimensions are seen on a subsequent tick does
// ShouldRebuild return true, and it keeps returning true until a Build
// delivers the rebuild.
//
// On the very first call any concrete value counts as a change, forcing
// the one-tick debounce even on startup; no valid graph exists yet
// regardless.
func (c *Controller) ShouldRebuild(current *Dimensions) bool {
	if current == nil {
		if c.hasDims {
			c.hasDims = false
			c.dirty = true
			Logger().Debug("framegraph: dimensions lost, rebuild deferred")
			return false
		}
		return c.dirty
	}
	if !c.hasDims || *current != c.lastDims {
		c.lastDims = *current
		c.hasDims = true
		c.dirty = true
		Logger().Debug("framegraph: dimensions changed, rebuild deferred",
			"width", current.Width, "height", current.Height)
		return false
	}
	return c.dirty
}

// clampExtent converts an observed dimension to a pixel extent.
// Dimensions are accepted without validation, so negative values occur;
// they saturate to zero and the graph degrades to zero-sized images the
// same way a zero dimension does.
func clampExtent(v float64) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v)
}

// Build assembles a fresh presentation graph sized to the last observed
// dimensions: a color image in the surface format, a depth image, a draw
// pass writing both and containing the given draw groups, and a present
// pass that consumes the color image and depends on the draw pass.
//
// Build must only be called after ShouldRebuild reported true (or for a
// forced initial build once dimensions have been observed). Calling it
// with no prior dimension observation is a programming error and panics.
//
// On success the owed rebuild is consumed. If the device cannot produce
// a surface or its format, Build returns an error wrapping
// ErrSurfaceUnavailable and leaves the rebuild scheduled.
//
// For fixed inputs the produced topology is identical every call; only
// node IDs may differ.
func (c *Controller) Build(dev SurfaceDevice, groups ...DrawGroup) (*Description, error) {
	if !c.hasDims {
		panic("framegraph: Build called before any dimension observation")
	}

	surface, err := dev.CreateSurface()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSurfaceUnavailable, err)
	}
	if !c.hasFormat {
		format, err := dev.SurfaceFormat(surface)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSurfaceUnavailable, err)
		}
		c.format = format
		c.hasFormat = true
	}

	c.dirty = false

	width := clampExtent(c.lastDims.Width)
	height := clampExtent(c.lastDims.Height)

	bg := backgroundClear
	ds := depthClear

	b := NewBuilder()
	color := b.CreateImage(ImageDesc{
		Label:     "color",
		Width:     width,
		Height:    height,
		MipLevels: 1,
		Format:    c.format,
		Clear:     &bg,
	})
	depth := b.CreateImage(ImageDesc{
		Label:     "depth",
		Width:     width,
		Height:    height,
		MipLevels: 1,
		Format:    depthFormat,
		Clear:     &ds,
	})
	draw := b.AddPass(PassDesc{
		Label:        "draw",
		Colors:       []ImageID{color},
		DepthStencil: depth,
		Groups:       groups,
	})
	b.AddPresent(PresentDesc{
		Label:   "present",
		Source:  color,
		Surface: surface,
		After:   []NodeID{draw},
	})

	Logger().Info("framegraph: presentation graph rebuilt",
		"width", width, "height", height, "format", c.format)

	return b.Description(), nil
}
