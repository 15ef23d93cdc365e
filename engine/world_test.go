package engine

import (
	"testing"

	"github.com/gogpu/framegraph/camera"
	"github.com/gogpu/framegraph/debugdraw"
	"github.com/stretchr/testify/assert"
)

func TestNewWorld(t *testing.T) {
	w := NewWorld()

	assert.NotNil(t, w)
	assert.Equal(t, EntityID(1), w.nextID)
	assert.NotNil(t, w.Transform)
	assert.NotNil(t, w.Camera)
	assert.NotNil(t, w.DebugLines)
}

func TestNewEntity(t *testing.T) {
	w := NewWorld()

	id1 := w.NewEntity()
	id2 := w.NewEntity()

	assert.Equal(t, EntityID(1), id1)
	assert.Equal(t, EntityID(2), id2)
	assert.Equal(t, EntityID(3), w.nextID)
}

func TestEntityIDNeverRecycled(t *testing.T) {
	w := NewWorld()

	id1 := w.CreateDebugLines(debugdraw.NewComponent())
	w.DestroyEntity(id1)

	id2 := w.NewEntity()
	assert.NotEqual(t, id1, id2, "entity IDs should never be recycled")
}

func TestDestroyEntityClearsActiveCamera(t *testing.T) {
	w := NewWorld()

	id := w.CreateCamera(camera.Orthographic(0, 800, 0, 600, 0, 100), camera.Transform{})
	assert.Equal(t, id, w.ActiveCamera)
	assert.True(t, w.Exists(id))

	w.DestroyEntity(id)
	assert.False(t, w.Exists(id))
	assert.Equal(t, EntityID(0), w.ActiveCamera)
}

func TestActiveViewDefaultsToZero(t *testing.T) {
	w := NewWorld()

	cam, tf := w.ActiveView()
	assert.Equal(t, camera.Camera{}, cam)
	assert.Equal(t, camera.Transform{}, tf)
}

func TestComponentsInEntityOrder(t *testing.T) {
	w := NewWorld()

	first := debugdraw.NewComponent()
	second := debugdraw.NewComponent()
	w.CreateDebugLines(first)
	w.CreateDebugLines(second)

	got := w.Components()
	assert.Len(t, got, 2)
	assert.Same(t, first, got[0])
	assert.Same(t, second, got[1])
}
