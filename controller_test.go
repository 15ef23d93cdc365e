package framegraph

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

// fakeDevice is a scriptable SurfaceDevice for controller tests.
type fakeDevice struct {
	formats      []gputypes.TextureFormat // successive SurfaceFormat results
	surfaceErr   error
	formatErr    error
	surfaceCalls int
	formatCalls  int
}

func (d *fakeDevice) CreateSurface() (Surface, error) {
	d.surfaceCalls++
	if d.surfaceErr != nil {
		return nil, d.surfaceErr
	}
	return "fake-surface", nil
}

func (d *fakeDevice) SurfaceFormat(Surface) (gputypes.TextureFormat, error) {
	d.formatCalls++
	if d.formatErr != nil {
		return 0, d.formatErr
	}
	f := d.formats[0]
	if len(d.formats) > 1 {
		d.formats = d.formats[1:]
	}
	return f, nil
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{formats: []gputypes.TextureFormat{gputypes.TextureFormatBGRA8Unorm}}
}

func dims(w, h float64) *Dimensions {
	return &Dimensions{Width: w, Height: h}
}

func TestControllerShouldRebuildDebounce(t *testing.T) {
	tests := []struct {
		name string
		obs  []*Dimensions
		want []bool
	}{
		{
			"startup then stable",
			[]*Dimensions{dims(800, 600), dims(800, 600)},
			[]bool{false, true},
		},
		{
			"stays owed until consumed",
			[]*Dimensions{dims(800, 600), dims(800, 600), dims(800, 600)},
			[]bool{false, true, true},
		},
		{
			"absent then change then stable then change",
			[]*Dimensions{nil, dims(800, 600), dims(800, 600), dims(1024, 768)},
			[]bool{false, false, true, false},
		},
		{
			"single-frame glitch defers again",
			[]*Dimensions{dims(800, 600), dims(801, 600), dims(800, 600), dims(800, 600)},
			[]bool{false, false, false, true},
		},
		{
			"dimensions lost mid-run",
			[]*Dimensions{dims(800, 600), dims(800, 600), nil, nil},
			[]bool{false, true, false, true},
		},
		{
			"absent from the start",
			[]*Dimensions{nil, nil, nil},
			[]bool{false, false, false},
		},
		{
			"zero-sized accepted",
			[]*Dimensions{dims(0, 0), dims(0, 0)},
			[]bool{false, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController()
			for i, obs := range tt.obs {
				got := c.ShouldRebuild(obs)
				if got != tt.want[i] {
					t.Errorf("tick %d: ShouldRebuild() = %v, want %v", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestControllerBuildClearsOwedRebuild(t *testing.T) {
	c := NewController()
	dev := newFakeDevice()

	c.ShouldRebuild(dims(800, 600))
	if !c.ShouldRebuild(dims(800, 600)) {
		t.Fatal("ShouldRebuild() = false after stable observation, want true")
	}

	if _, err := c.Build(dev); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// The owed rebuild was consumed; unchanged dimensions stay clean.
	if c.ShouldRebuild(dims(800, 600)) {
		t.Error("ShouldRebuild() = true immediately after Build with unchanged dimensions, want false")
	}
}

func TestControllerFormatQueriedOnce(t *testing.T) {
	c := NewController()
	dev := newFakeDevice()
	dev.formats = []gputypes.TextureFormat{
		gputypes.TextureFormatBGRA8Unorm,
		gputypes.TextureFormatRGBA8Unorm,
	}

	c.ShouldRebuild(dims(800, 600))
	first, err := c.Build(dev)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// Resize and rebuild: the device now reports a different format, but
	// the controller must keep using the first one.
	c.ShouldRebuild(dims(1024, 768))
	c.ShouldRebuild(dims(1024, 768))
	second, err := c.Build(dev)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if dev.formatCalls != 1 {
		t.Errorf("SurfaceFormat called %d times, want 1", dev.formatCalls)
	}
	if got, want := second.Images[0].Desc.Format, first.Images[0].Desc.Format; got != want {
		t.Errorf("second build color format = %v, want cached %v", got, want)
	}
}

func TestControllerBuildTopology(t *testing.T) {
	c := NewController()
	dev := newFakeDevice()

	c.ShouldRebuild(dims(800, 600))
	desc, err := c.Build(dev)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(desc.Images) != 2 {
		t.Fatalf("len(Images) = %d, want 2", len(desc.Images))
	}
	if len(desc.Passes) != 2 {
		t.Fatalf("len(Passes) = %d, want 2", len(desc.Passes))
	}

	color, depth := desc.Images[0], desc.Images[1]
	if color.Desc.Label != "color" || depth.Desc.Label != "depth" {
		t.Errorf("image order = [%q, %q], want [color, depth]", color.Desc.Label, depth.Desc.Label)
	}
	for _, img := range desc.Images {
		if img.Desc.Width != 800 || img.Desc.Height != 600 {
			t.Errorf("image %q extent = %dx%d, want 800x600", img.Desc.Label, img.Desc.Width, img.Desc.Height)
		}
		if img.Desc.MipLevels != 1 {
			t.Errorf("image %q mip levels = %d, want 1", img.Desc.Label, img.Desc.MipLevels)
		}
		if img.Desc.Clear == nil {
			t.Errorf("image %q has no clear value", img.Desc.Label)
		}
	}
	if color.Desc.Format != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("color format = %v, want surface format", color.Desc.Format)
	}
	if depth.Desc.Format != depthFormat {
		t.Errorf("depth format = %v, want %v", depth.Desc.Format, depthFormat)
	}

	draw, present := desc.Passes[0], desc.Passes[1]
	if draw.Kind != PassDraw {
		t.Errorf("first pass kind = %v, want draw", draw.Kind)
	}
	if present.Kind != PassPresent {
		t.Errorf("second pass kind = %v, want present", present.Kind)
	}
	if len(draw.Writes) != 1 || draw.Writes[0] != color.ID {
		t.Errorf("draw writes = %v, want [%v]", draw.Writes, color.ID)
	}
	if draw.DepthStencil != depth.ID {
		t.Errorf("draw depth/stencil = %v, want %v", draw.DepthStencil, depth.ID)
	}
	if len(present.Reads) != 1 || present.Reads[0] != color.ID {
		t.Errorf("present reads = %v, want [%v]", present.Reads, color.ID)
	}

	// The present pass must depend on the draw pass that writes the
	// color image it presents.
	if !desc.DependsOn(present.ID, draw.ID) {
		t.Error("present pass does not depend on draw pass")
	}
	if present.Surface == nil {
		t.Error("present pass has no surface")
	}
}

func TestControllerBuildSaturatesNegativeDimensions(t *testing.T) {
	c := NewController()
	dev := newFakeDevice()

	c.ShouldRebuild(dims(-800, -600))
	if !c.ShouldRebuild(dims(-800, -600)) {
		t.Fatal("ShouldRebuild() = false after stable observation, want true")
	}

	desc, err := c.Build(dev)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	for _, img := range desc.Images {
		if img.Desc.Width != 0 || img.Desc.Height != 0 {
			t.Errorf("image %q extent = %dx%d, want 0x0 for negative dimensions",
				img.Desc.Label, img.Desc.Width, img.Desc.Height)
		}
	}
}

func TestControllerBuildDeterministicTopology(t *testing.T) {
	build := func() *Description {
		c := NewController()
		c.ShouldRebuild(dims(800, 600))
		desc, err := c.Build(newFakeDevice())
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		return desc
	}

	a, b := build(), build()
	if len(a.Images) != len(b.Images) || len(a.Passes) != len(b.Passes) {
		t.Fatalf("topologies differ: %d/%d images, %d/%d passes",
			len(a.Images), len(b.Images), len(a.Passes), len(b.Passes))
	}
	for i := range a.Passes {
		if a.Passes[i].Kind != b.Passes[i].Kind {
			t.Errorf("pass %d kind = %v vs %v", i, a.Passes[i].Kind, b.Passes[i].Kind)
		}
	}
}

func TestControllerBuildWithoutObservationPanics(t *testing.T) {
	c := NewController()

	defer func() {
		if recover() == nil {
			t.Error("Build() did not panic without a dimension observation")
		}
	}()
	_, _ = c.Build(newFakeDevice())
}

func TestControllerBuildSurfaceUnavailable(t *testing.T) {
	t.Run("surface creation fails", func(t *testing.T) {
		c := NewController()
		dev := newFakeDevice()
		dev.surfaceErr = errors.New("window destroyed")

		c.ShouldRebuild(dims(800, 600))
		c.ShouldRebuild(dims(800, 600))

		_, err := c.Build(dev)
		if !errors.Is(err, ErrSurfaceUnavailable) {
			t.Fatalf("Build() error = %v, want ErrSurfaceUnavailable", err)
		}

		// The rebuild must stay scheduled so the caller retries later.
		if !c.ShouldRebuild(dims(800, 600)) {
			t.Error("ShouldRebuild() = false after failed Build, want true (retry scheduled)")
		}
	})

	t.Run("format query fails and is not cached", func(t *testing.T) {
		c := NewController()
		dev := newFakeDevice()
		dev.formatErr = errors.New("surface lost")

		c.ShouldRebuild(dims(800, 600))
		c.ShouldRebuild(dims(800, 600))

		if _, err := c.Build(dev); !errors.Is(err, ErrSurfaceUnavailable) {
			t.Fatalf("Build() error = %v, want ErrSurfaceUnavailable", err)
		}

		// A later build must query the format again.
		dev.formatErr = nil
		if _, err := c.Build(dev); err != nil {
			t.Fatalf("retried Build() error = %v", err)
		}
		if dev.formatCalls != 2 {
			t.Errorf("SurfaceFormat called %d times, want 2", dev.formatCalls)
		}
	})
}
