package wgpu

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/backend"
	"github.com/gogpu/framegraph/debugdraw"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f32"
)

type fakeSource struct {
	format gputypes.TextureFormat
}

func (f *fakeSource) SurfaceView() any                      { return nil }
func (f *fakeSource) SurfaceSize() (int, int)               { return 640, 480 }
func (f *fakeSource) SurfaceFormat() gputypes.TextureFormat { return f.format }
func (f *fakeSource) Present() error                        { return nil }

func TestDeviceRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.DeviceWGPU) {
		t.Fatal("wgpu device not registered")
	}
	d := backend.Get(backend.DeviceWGPU)
	if d == nil {
		t.Fatal("Get(wgpu) = nil")
	}
	if d.Name() != backend.DeviceWGPU {
		t.Errorf("Name() = %q, want %q", d.Name(), backend.DeviceWGPU)
	}
}

func TestOperationsBeforeInit(t *testing.T) {
	d := New()

	if _, err := d.CreateSurface(); !errors.Is(err, backend.ErrNotInitialized) {
		t.Errorf("CreateSurface() error = %v, want ErrNotInitialized", err)
	}
	if _, err := d.CreateImage(framegraph.ImageDesc{Width: 16, Height: 16}); !errors.Is(err, backend.ErrNotInitialized) {
		t.Errorf("CreateImage() error = %v, want ErrNotInitialized", err)
	}
	if err := d.AddPass(framegraph.Pass{}, nil); !errors.Is(err, backend.ErrNotInitialized) {
		t.Errorf("AddPass() error = %v, want ErrNotInitialized", err)
	}
	if err := d.Present(&Surface{}, nil); !errors.Is(err, backend.ErrNotInitialized) {
		t.Errorf("Present() error = %v, want ErrNotInitialized", err)
	}
}

func TestSurfaceFormatRejectsForeignSurface(t *testing.T) {
	d := New()
	if _, err := d.SurfaceFormat(struct{}{}); !errors.Is(err, backend.ErrSurfaceLost) {
		t.Errorf("SurfaceFormat(foreign) error = %v, want ErrSurfaceLost", err)
	}
}

func TestOptionPlumbing(t *testing.T) {
	src := &fakeSource{format: gputypes.TextureFormatBGRA8Unorm}
	d := New(WithSurfaceSource(src))
	if d.source != src {
		t.Error("WithSurfaceSource did not set the source")
	}

	s := &Surface{source: src}
	if s.Format() != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("Format() = %v, want BGRA8Unorm", s.Format())
	}
	if w, h := s.Size(); w != 640 || h != 480 {
		t.Errorf("Size() = %dx%d, want 640x480", w, h)
	}
}

func TestLineVertexLayout(t *testing.T) {
	layouts := lineVertexLayout()
	if len(layouts) != 1 {
		t.Fatalf("len(layouts) = %d, want 1", len(layouts))
	}
	l := layouts[0]
	if l.ArrayStride != debugdraw.VertexStride {
		t.Errorf("ArrayStride = %d, want %d", l.ArrayStride, debugdraw.VertexStride)
	}
	if len(l.Attributes) != 2 {
		t.Fatalf("len(Attributes) = %d, want 2", len(l.Attributes))
	}
	if l.Attributes[0].Format != gputypes.VertexFormatFloat32x3 || l.Attributes[0].Offset != 0 {
		t.Errorf("position attribute = %+v", l.Attributes[0])
	}
	if l.Attributes[1].Format != gputypes.VertexFormatFloat32x4 || l.Attributes[1].Offset != 12 {
		t.Errorf("color attribute = %+v", l.Attributes[1])
	}
}

func TestPackVertices(t *testing.T) {
	vs := []debugdraw.Vertex{
		{Position: f32.Vec3{1, 2, 3}, Color: debugdraw.RGBA(0.5, 0, 0, 1)},
		{Position: f32.Vec3{4, 5, 6}, Color: debugdraw.RGBA(0, 1, 0, 1)},
	}
	data := packVertices(vs)
	if len(data) != 2*debugdraw.VertexStride {
		t.Fatalf("len(data) = %d, want %d", len(data), 2*debugdraw.VertexStride)
	}

	// First word is position.x = 1.0 in little-endian IEEE 754.
	got := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	if got != math.Float32bits(1) {
		t.Errorf("first word = %#x, want %#x", got, math.Float32bits(1))
	}
}

func TestPackMatrix(t *testing.T) {
	var m f32.Mat4
	m[0] = 2
	data := packMatrix(m)
	if len(data) != lineUniformSize {
		t.Fatalf("len(data) = %d, want %d", len(data), lineUniformSize)
	}
	got := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	if got != math.Float32bits(2) {
		t.Errorf("first word = %#x, want %#x", got, math.Float32bits(2))
	}
}

func TestDepthFormatClassification(t *testing.T) {
	if !isDepthFormat(gputypes.TextureFormatDepth24PlusStencil8) {
		t.Error("Depth24PlusStencil8 not classified as depth")
	}
	if isDepthFormat(gputypes.TextureFormatBGRA8Unorm) {
		t.Error("BGRA8Unorm classified as depth")
	}
}
