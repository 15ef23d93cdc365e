package backend

import (
	"errors"
	"testing"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gputypes"
)

// recordingDevice records the order of operations for graph execution tests.
type recordingDevice struct {
	stubDevice
	createErr error
	ops       []string
	destroyed int
}

type recordedImage struct {
	dev  *recordingDevice
	w, h uint32
}

func (i *recordedImage) Width() uint32                  { return i.w }
func (i *recordedImage) Height() uint32                 { return i.h }
func (i *recordedImage) Format() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (i *recordedImage) Destroy()                       { i.dev.destroyed++ }

func (d *recordingDevice) CreateImage(desc framegraph.ImageDesc) (Image, error) {
	if d.createErr != nil {
		return nil, d.createErr
	}
	d.ops = append(d.ops, "image:"+desc.Label)
	return &recordedImage{dev: d, w: desc.Width, h: desc.Height}, nil
}

func (d *recordingDevice) AddPass(pass framegraph.Pass, _ map[framegraph.ImageID]Image) error {
	d.ops = append(d.ops, "pass:"+pass.Label)
	return nil
}

func (d *recordingDevice) Present(_ framegraph.Surface, _ Image) error {
	d.ops = append(d.ops, "present")
	return nil
}

func presentationDesc() *framegraph.Description {
	b := framegraph.NewBuilder()
	color := b.CreateImage(framegraph.ImageDesc{Label: "color", Width: 64, Height: 64, MipLevels: 1})
	depth := b.CreateImage(framegraph.ImageDesc{Label: "depth", Width: 64, Height: 64, MipLevels: 1})
	draw := b.AddPass(framegraph.PassDesc{Label: "draw", Colors: []framegraph.ImageID{color}, DepthStencil: depth})
	b.AddPresent(framegraph.PresentDesc{Label: "present", Source: color, After: []framegraph.NodeID{draw}})
	return b.Description()
}

func TestRealizeAndRun(t *testing.T) {
	dev := &recordingDevice{}
	g, err := Realize(dev, presentationDesc())
	if err != nil {
		t.Fatalf("Realize() error = %v", err)
	}
	defer g.Retire()

	if err := g.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"image:color", "image:depth", "pass:draw", "present"}
	if len(dev.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", dev.ops, want)
	}
	for i := range want {
		if dev.ops[i] != want[i] {
			t.Errorf("ops[%d] = %q, want %q", i, dev.ops[i], want[i])
		}
	}
}

func TestRealizeCreateFailure(t *testing.T) {
	dev := &recordingDevice{createErr: errors.New("out of memory")}
	if _, err := Realize(dev, presentationDesc()); err == nil {
		t.Fatal("Realize() error = nil, want create failure")
	}
}

func TestRealizeNilDevice(t *testing.T) {
	if _, err := Realize(nil, presentationDesc()); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Realize(nil) error = %v, want ErrNotInitialized", err)
	}
}

func TestRunRejectsUnsatisfiedDependency(t *testing.T) {
	// Hand-build a description whose present pass depends on a node
	// that never runs.
	b := framegraph.NewBuilder()
	color := b.CreateImage(framegraph.ImageDesc{Label: "color", Width: 8, Height: 8, MipLevels: 1})
	b.AddPresent(framegraph.PresentDesc{Label: "present", Source: color,
		After: []framegraph.NodeID{framegraph.NodeID(42)}})

	dev := &recordingDevice{}
	g, err := Realize(dev, b.Description())
	if err != nil {
		t.Fatalf("Realize() error = %v", err)
	}
	defer g.Retire()

	if err := g.Run(); err == nil {
		t.Fatal("Run() error = nil, want unsatisfied dependency error")
	}
}

func TestRetireDestroysImages(t *testing.T) {
	dev := &recordingDevice{}
	g, err := Realize(dev, presentationDesc())
	if err != nil {
		t.Fatalf("Realize() error = %v", err)
	}

	g.Retire()
	if dev.destroyed != 2 {
		t.Errorf("destroyed %d images, want 2", dev.destroyed)
	}

	// Retire on a nil graph is a no-op.
	var nilGraph *Graph
	nilGraph.Retire()
}
