package debugdraw

import "golang.org/x/image/math/f32"

// Color is a straight-alpha sRGB color.
type Color [4]float32

// RGBA creates a color from components in [0, 1].
func RGBA(r, g, b, a float32) Color {
	return Color{r, g, b, a}
}

// Vertex is one endpoint of a debug line, in the layout uploaded to the
// vertex buffer: position, then color.
type Vertex struct {
	Position f32.Vec3
	Color    Color
}

// VertexStride is the size of one Vertex in bytes.
const VertexStride = 7 * 4

// Params configures debug-line rasterization.
type Params struct {
	// LineWidth is the rendered line width in logical pixels.
	LineWidth float32
}

// DefaultParams returns the default line parameters.
func DefaultParams() Params {
	return Params{LineWidth: 1}
}

// Buffer accumulates immediate debug lines. Systems draw into it each
// frame; the frame driver clears it after submission. Buffer is not safe
// for concurrent use.
type Buffer struct {
	vertices []Vertex
}

// NewBuffer creates an empty immediate line buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// DrawLine appends a line from a to b.
func (b *Buffer) DrawLine(a, to f32.Vec3, c Color) {
	b.vertices = append(b.vertices,
		Vertex{Position: a, Color: c},
		Vertex{Position: to, Color: c},
	)
}

// Len returns the number of buffered lines.
func (b *Buffer) Len() int {
	return len(b.vertices) / 2
}

// Vertices returns the buffered vertices, two per line.
func (b *Buffer) Vertices() []Vertex {
	return b.vertices
}

// Clear drops all buffered lines, keeping capacity for reuse.
func (b *Buffer) Clear() {
	b.vertices = b.vertices[:0]
}

// Component holds persistent debug lines. Unlike a Buffer it is not
// cleared between frames; its content is drawn every frame until the
// owner changes it.
type Component struct {
	vertices []Vertex
}

// NewComponent creates an empty persistent line set.
func NewComponent() *Component {
	return &Component{}
}

// WithCapacity creates a persistent line set with room for n lines.
func WithCapacity(n int) *Component {
	return &Component{vertices: make([]Vertex, 0, 2*n)}
}

// AddLine appends a line from a to b.
func (c *Component) AddLine(a, to f32.Vec3, col Color) {
	c.vertices = append(c.vertices,
		Vertex{Position: a, Color: col},
		Vertex{Position: to, Color: col},
	)
}

// AddGrid appends horizontal and vertical grid lines covering
// [0,width] x [0,height] at the given spacing, drawn at depth z.
// A non-positive step adds nothing.
func (c *Component) AddGrid(width, height, step, z float32, col Color) {
	if step <= 0 {
		return
	}
	for y := float32(0); y < height; y += step {
		c.AddLine(f32.Vec3{0, y, z}, f32.Vec3{width, y, z}, col)
	}
	for x := float32(0); x < width; x += step {
		c.AddLine(f32.Vec3{x, 0, z}, f32.Vec3{x, height, z}, col)
	}
}

// Len returns the number of stored lines.
func (c *Component) Len() int {
	return len(c.vertices) / 2
}

// Vertices returns the stored vertices, two per line.
func (c *Component) Vertices() []Vertex {
	return c.vertices
}

// Clear drops all stored lines, keeping capacity for reuse.
func (c *Component) Clear() {
	c.vertices = c.vertices[:0]
}
