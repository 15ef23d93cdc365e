package engine

import (
	"sort"

	"github.com/gogpu/framegraph/camera"
	"github.com/gogpu/framegraph/debugdraw"
)

// EntityID is a unique identifier for an entity (never recycled).
type EntityID uint64

// World holds all component maps and the next entity ID.
type World struct {
	nextID EntityID

	// Components
	Transform  map[EntityID]camera.Transform
	Camera     map[EntityID]camera.Camera
	DebugLines map[EntityID]*debugdraw.Component

	// ActiveCamera is the entity whose camera and transform drive
	// rendering. Zero means no camera.
	ActiveCamera EntityID
}

// NewWorld creates a new empty world.
func NewWorld() *World {
	return &World{
		nextID:     1, // 0 is "nil"
		Transform:  make(map[EntityID]camera.Transform),
		Camera:     make(map[EntityID]camera.Camera),
		DebugLines: make(map[EntityID]*debugdraw.Component),
	}
}

// NewEntity returns a new unique entity ID.
func (w *World) NewEntity() EntityID {
	id := w.nextID
	w.nextID++
	return id
}

// DestroyEntity removes all components for an entity.
func (w *World) DestroyEntity(id EntityID) {
	delete(w.Transform, id)
	delete(w.Camera, id)
	delete(w.DebugLines, id)
	if w.ActiveCamera == id {
		w.ActiveCamera = 0
	}
}

// Exists checks if an entity has any component.
func (w *World) Exists(id EntityID) bool {
	if _, ok := w.Transform[id]; ok {
		return true
	}
	if _, ok := w.Camera[id]; ok {
		return true
	}
	_, ok := w.DebugLines[id]
	return ok
}

// CreateCamera creates a camera entity and makes it the active camera.
func (w *World) CreateCamera(cam camera.Camera, tf camera.Transform) EntityID {
	id := w.NewEntity()
	w.Camera[id] = cam
	w.Transform[id] = tf
	w.ActiveCamera = id
	return id
}

// CreateDebugLines creates an entity holding a persistent line set.
func (w *World) CreateDebugLines(c *debugdraw.Component) EntityID {
	id := w.NewEntity()
	w.DebugLines[id] = c
	return id
}

// ActiveView returns the active camera and its transform, or zero values
// when no camera entity exists.
func (w *World) ActiveView() (camera.Camera, camera.Transform) {
	return w.Camera[w.ActiveCamera], w.Transform[w.ActiveCamera]
}

// Components returns all persistent line sets in entity order.
func (w *World) Components() []*debugdraw.Component {
	ids := make([]EntityID, 0, len(w.DebugLines))
	for id := range w.DebugLines {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*debugdraw.Component, 0, len(ids))
	for _, id := range ids {
		out = append(out, w.DebugLines[id])
	}
	return out
}
