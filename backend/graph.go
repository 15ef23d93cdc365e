package backend

import (
	"fmt"

	"github.com/gogpu/framegraph"
)

// Graph is one realized generation of a graph description: a device
// image for every resource node, executed pass by pass each frame.
//
// A Graph owns its images until Retire is called. The usual lifecycle is
// realize → Run once per frame → Retire when the controller delivers the
// next generation.
type Graph struct {
	dev    Device
	desc   *framegraph.Description
	images map[framegraph.ImageID]Image
}

// Realize instantiates a description on a device, allocating an image
// for every resource node. On failure all images created so far are
// destroyed.
func Realize(dev Device, desc *framegraph.Description) (*Graph, error) {
	if dev == nil {
		return nil, ErrNotInitialized
	}

	images := make(map[framegraph.ImageID]Image, len(desc.Images))
	for _, node := range desc.Images {
		img, err := dev.CreateImage(node.Desc)
		if err != nil {
			for _, created := range images {
				created.Destroy()
			}
			return nil, fmt.Errorf("backend: create image %q: %w", node.Desc.Label, err)
		}
		images[node.ID] = img
	}

	framegraph.Logger().Info("backend: graph realized",
		"device", dev.Name(), "images", len(images), "passes", len(desc.Passes))

	return &Graph{dev: dev, desc: desc, images: images}, nil
}

// Description returns the description this graph was realized from.
func (g *Graph) Description() *framegraph.Description {
	return g.desc
}

// Image returns the device image backing a resource node, or nil.
func (g *Graph) Image(id framegraph.ImageID) Image {
	return g.images[id]
}

// Run executes the graph once. Passes run in creation order, which the
// Builder guarantees to be a valid execution order; declared pass→pass
// dependencies are verified as they are consumed.
func (g *Graph) Run() error {
	executed := make(map[framegraph.NodeID]bool, len(g.desc.Passes))

	for _, pass := range g.desc.Passes {
		for _, dep := range pass.DependsOn {
			if !executed[dep] {
				return fmt.Errorf("backend: pass %q scheduled before its dependency %v", pass.Label, dep)
			}
		}

		switch pass.Kind {
		case framegraph.PassDraw:
			if err := g.dev.AddPass(pass, g.images); err != nil {
				return fmt.Errorf("backend: pass %q: %w", pass.Label, err)
			}
		case framegraph.PassPresent:
			if len(pass.Reads) == 0 {
				return fmt.Errorf("backend: present pass %q has no source image", pass.Label)
			}
			color := g.images[pass.Reads[0]]
			if color == nil {
				return fmt.Errorf("backend: present pass %q references unknown image %v", pass.Label, pass.Reads[0])
			}
			if err := g.dev.Present(pass.Surface, color); err != nil {
				return fmt.Errorf("backend: present: %w", err)
			}
		}
		executed[pass.ID] = true
	}
	return nil
}

// Retire destroys this generation's images. The graph must not be used
// after Retire. Safe to call on a nil graph.
func (g *Graph) Retire() {
	if g == nil {
		return
	}
	for _, img := range g.images {
		img.Destroy()
	}
	g.images = nil
}
