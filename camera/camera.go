package camera

import "golang.org/x/image/math/f32"

// Identity returns the identity matrix.
func Identity() f32.Mat4 {
	return f32.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul returns the column-major product a * b.
func Mul(a, b f32.Mat4) f32.Mat4 {
	var out f32.Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// Camera holds a projection matrix.
type Camera struct {
	proj f32.Mat4
}

// Orthographic creates a camera with an orthographic projection mapping
// the box [left,right] x [bottom,top] x [znear,zfar] to normalized device
// coordinates, with depth in [0, 1].
//
// For pixel-space debug drawing the usual call is
// Orthographic(0, width, 0, height, 0, 100) with the Y axis pointing up.
func Orthographic(left, right, bottom, top, znear, zfar float32) Camera {
	rl := right - left
	tb := top - bottom
	fn := zfar - znear

	var m f32.Mat4
	m[0] = 2 / rl
	m[5] = 2 / tb
	m[10] = 1 / fn
	m[12] = -(right + left) / rl
	m[13] = -(top + bottom) / tb
	m[14] = -znear / fn
	m[15] = 1
	return Camera{proj: m}
}

// Projection returns the camera's projection matrix.
func (c Camera) Projection() f32.Mat4 {
	return c.proj
}

// Transform is a translation-only local transform, enough for positioning
// an orthographic debug camera.
type Transform struct {
	Translation f32.Vec3
}

// SetTranslationXYZ sets the transform's translation.
func (t *Transform) SetTranslationXYZ(x, y, z float32) {
	t.Translation = f32.Vec3{x, y, z}
}

// View returns the inverse of the transform: the world-to-camera matrix.
func (t Transform) View() f32.Mat4 {
	m := Identity()
	m[12] = -t.Translation[0]
	m[13] = -t.Translation[1]
	m[14] = -t.Translation[2]
	return m
}

// ViewProjection combines a camera and a camera transform into the
// matrix uploaded to the GPU.
func ViewProjection(c Camera, t Transform) f32.Mat4 {
	return Mul(c.proj, t.View())
}
