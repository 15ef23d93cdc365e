package debugdraw

import (
	"github.com/gogpu/framegraph/camera"
	"golang.org/x/image/math/f32"
)

// GroupName identifies the debug-line draw group.
const GroupName = "debug_lines"

// GroupDesc is the debug-line draw group embedded into a draw pass.
// It implements framegraph.DrawGroup and is otherwise opaque to the
// graph; device backends pull vertices and the view-projection matrix
// from it once per frame.
type GroupDesc struct {
	// Lines is the immediate per-frame buffer. May be nil.
	Lines *Buffer

	// Static are the persistent line sets drawn every frame.
	Static []*Component

	// Params configures rasterization.
	Params Params

	// Camera and View define the view-projection matrix. A zero View
	// places the camera at the origin.
	Camera camera.Camera
	View   camera.Transform
}

// NewGroupDesc creates a draw group with default parameters.
func NewGroupDesc() *GroupDesc {
	return &GroupDesc{Params: DefaultParams()}
}

// GroupName identifies the draw group for labeling and logging.
func (g *GroupDesc) GroupName() string { return GroupName }

// ViewProjection returns the matrix uploaded to the line shader.
func (g *GroupDesc) ViewProjection() f32.Mat4 {
	return camera.ViewProjection(g.Camera, g.View)
}

// Vertices gathers all line vertices for one frame: static components
// first, then the immediate buffer. The returned slice is freshly
// allocated each call.
func (g *GroupDesc) Vertices() []Vertex {
	n := 0
	for _, c := range g.Static {
		n += len(c.Vertices())
	}
	if g.Lines != nil {
		n += len(g.Lines.Vertices())
	}

	out := make([]Vertex, 0, n)
	for _, c := range g.Static {
		out = append(out, c.Vertices()...)
	}
	if g.Lines != nil {
		out = append(out, g.Lines.Vertices()...)
	}
	return out
}
