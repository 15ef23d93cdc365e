package framegraph

import "github.com/gogpu/gputypes"

// Resource and node IDs
//
// These opaque IDs identify nodes within a single Description. Each
// Builder assigns them from its own counters, so IDs from different
// generations must not be mixed. The zero value is invalid.

// ImageID is an opaque handle to an image resource node.
type ImageID uint64

// NodeID is an opaque handle to a pass node.
type NodeID uint64

// InvalidID is the zero value, representing an invalid/null node.
const InvalidID = 0

// ClearValue specifies the initial contents of an image at the start of
// each pass that writes it. Color applies to color images; Depth and
// Stencil apply to depth/stencil images. The unused fields are ignored.
type ClearValue struct {
	Color   [4]float32
	Depth   float32
	Stencil uint32
}

// ImageDesc describes an image resource node.
type ImageDesc struct {
	// Label is an optional debug label.
	Label string

	// Width and Height are the image extent in pixels.
	Width  uint32
	Height uint32

	// MipLevels is the number of mipmap levels. Use 1 for no mipmaps.
	MipLevels uint32

	// Format is the pixel format.
	Format gputypes.TextureFormat

	// Clear, when non-nil, requests the image be cleared to this value
	// at the start of each pass that writes it.
	Clear *ClearValue
}

// DrawGroup is an opaque descriptor for one group of draw calls inside a
// pass. The graph treats it as a handle; draw-group packages (such as
// debugdraw) define the concrete types and the backends know how to
// execute them.
type DrawGroup interface {
	// GroupName identifies the draw group for labeling and logging.
	GroupName() string
}

// PassKind distinguishes the node types of a Description.
type PassKind uint32

const (
	// PassDraw is a rendering pass that writes image resources.
	PassDraw PassKind = iota + 1

	// PassPresent hands a finished color image to the output surface.
	PassPresent
)

// String returns the pass kind name.
func (k PassKind) String() string {
	switch k {
	case PassDraw:
		return "draw"
	case PassPresent:
		return "present"
	default:
		return "unknown"
	}
}

// PassDesc describes a draw pass: the images it writes and the draw
// groups it contains.
type PassDesc struct {
	// Label is an optional debug label.
	Label string

	// Colors are the color attachments the pass writes, in attachment order.
	Colors []ImageID

	// DepthStencil is the depth/stencil attachment, or InvalidID for none.
	DepthStencil ImageID

	// Groups are the draw groups executed by the pass, in order.
	Groups []DrawGroup
}

// PresentDesc describes a present pass: the color image it consumes, the
// surface it presents to, and its explicit ordering dependencies.
type PresentDesc struct {
	// Label is an optional debug label.
	Label string

	// Source is the color image handed to the surface.
	Source ImageID

	// Surface is the presentation surface.
	Surface Surface

	// After lists pass nodes that must execute before this one.
	After []NodeID
}

// Image is an image resource node of a Description.
type Image struct {
	ID   ImageID
	Desc ImageDesc
}

// Pass is a pass node of a Description. Writes, DepthStencil, and Reads
// are the pass→resource edges; DependsOn are the pass→pass edges.
type Pass struct {
	ID    NodeID
	Kind  PassKind
	Label string

	// Writes are the color images written by a draw pass.
	Writes []ImageID

	// DepthStencil is the depth/stencil image written by a draw pass,
	// or InvalidID.
	DepthStencil ImageID

	// Reads are the images consumed by the pass (the present source).
	Reads []ImageID

	// DependsOn lists passes that must execute before this one.
	DependsOn []NodeID

	// Groups are the draw groups of a draw pass.
	Groups []DrawGroup

	// Surface is the presentation surface of a present pass.
	Surface Surface
}

// Description is the output artifact of one graph build: resource and
// pass nodes in creation order plus their dependency edges.
//
// A Description is rebuilt wholesale on demand and never mutated
// incrementally; each rebuild discards and replaces the prior one. Its
// resources belong to the executing device for exactly one graph
// generation, until the next successful rebuild retires them.
type Description struct {
	// Images are the resource nodes in creation order.
	Images []Image

	// Passes are the pass nodes in creation order.
	Passes []Pass
}

// Image returns the image node with the given ID, or nil.
func (d *Description) Image(id ImageID) *Image {
	for i := range d.Images {
		if d.Images[i].ID == id {
			return &d.Images[i]
		}
	}
	return nil
}

// Pass returns the pass node with the given ID, or nil.
func (d *Description) Pass(id NodeID) *Pass {
	for i := range d.Passes {
		if d.Passes[i].ID == id {
			return &d.Passes[i]
		}
	}
	return nil
}

// DependsOn reports whether pass a declares an ordering dependency on pass b.
func (d *Description) DependsOn(a, b NodeID) bool {
	p := d.Pass(a)
	if p == nil {
		return false
	}
	for _, dep := range p.DependsOn {
		if dep == b {
			return true
		}
	}
	return false
}

// Builder accumulates image and pass nodes for one Description.
//
// Nodes are recorded in creation order, which is also a valid execution
// order: a pass may only reference images and passes created before it.
// Builder is not safe for concurrent use.
type Builder struct {
	nextImage ImageID
	nextNode  NodeID
	desc      Description
}

// NewBuilder creates an empty graph builder.
func NewBuilder() *Builder {
	return &Builder{nextImage: 1, nextNode: 1}
}

// CreateImage records an image resource node and returns its ID.
func (b *Builder) CreateImage(desc ImageDesc) ImageID {
	id := b.nextImage
	b.nextImage++
	b.desc.Images = append(b.desc.Images, Image{ID: id, Desc: desc})
	return id
}

// AddPass records a draw pass node and returns its ID.
func (b *Builder) AddPass(desc PassDesc) NodeID {
	id := b.nextNode
	b.nextNode++
	b.desc.Passes = append(b.desc.Passes, Pass{
		ID:           id,
		Kind:         PassDraw,
		Label:        desc.Label,
		Writes:       desc.Colors,
		DepthStencil: desc.DepthStencil,
		Groups:       desc.Groups,
	})
	return id
}

// AddPresent records a present pass node and returns its ID.
func (b *Builder) AddPresent(desc PresentDesc) NodeID {
	id := b.nextNode
	b.nextNode++
	b.desc.Passes = append(b.desc.Passes, Pass{
		ID:        id,
		Kind:      PassPresent,
		Label:     desc.Label,
		Reads:     []ImageID{desc.Source},
		DependsOn: desc.After,
		Surface:   desc.Surface,
	})
	return id
}

// Description returns the assembled graph description.
// The builder must not be reused afterwards.
func (b *Builder) Description() *Description {
	return &b.desc
}
