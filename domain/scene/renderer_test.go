package scene

import (
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoWalls places a near red wall on the left half and a far blue wall on the right.
func twoWalls() (*Scene, *Camera) {
	s := New()
	near := Cube(1)
	near.Transform = mgl32.Translate3D(-1, 0, 2).Mul4(mgl32.Scale3D(2, 4, 0.1))
	near.Color = color.RGBA{255, 0, 0, 255}
	far := Cube(1)
	far.Transform = mgl32.Translate3D(3, 0, -3).Mul4(mgl32.Scale3D(6, 4, 0.1))
	far.Color = color.RGBA{0, 0, 255, 255}
	s.AddMesh(near)
	s.AddMesh(far)

	cam := NewCamera("photo")
	cam.Position = mgl32.Vec3{0, 0, 5}
	cam.Target = mgl32.Vec3{0, 0, 0}
	cam.Far = 20
	cam.ClearColor = color.RGBA{10, 20, 30, 255}
	s.AddCamera(cam)
	return s, cam
}

func TestRender_DepthOrdersNearBeforeFar(t *testing.T) {
	s, cam := twoWalls()
	rt, err := NewRenderTexture(64, 32)
	require.NoError(t, err)
	cam.TargetTexture = rt

	require.NoError(t, NewRenderer(s).Render(cam, nil))

	nearD := rt.DepthAt(20, 16)
	farD := rt.DepthAt(44, 16)
	assert.Less(t, nearD, farD)
	assert.Less(t, farD, FarDepth)
	// view distance of the near wall's front face is about 5-2.05
	assert.InDelta(t, (5-2.05)/20.0, nearD, 0.02)

	// corners see nothing
	assert.Equal(t, FarDepth, rt.DepthAt(0, 0))
	assert.Equal(t, color.RGBA{10, 20, 30, 255}, rt.Color.RGBAAt(0, 0))
	assert.Greater(t, rt.Color.RGBAAt(20, 16).R, uint8(0))
	assert.Greater(t, rt.Color.RGBAAt(44, 16).B, uint8(0))
}

func TestRender_NilPostCopiesColor(t *testing.T) {
	s, cam := twoWalls()
	rt, _ := NewRenderTexture(16, 16)
	cam.TargetTexture = rt
	require.NoError(t, NewRenderer(s).Render(cam, nil))
	assert.Equal(t, rt.Color.Pix, rt.Resolved.Pix)
}

func TestRender_PostHookCalledOnce(t *testing.T) {
	s, cam := twoWalls()
	rt, _ := NewRenderTexture(8, 8)
	cam.TargetTexture = rt
	calls := 0
	err := NewRenderer(s).Render(cam, func(src *RenderTexture, dst *image.RGBA) {
		calls++
		assert.Same(t, rt, src)
		assert.Same(t, rt.Resolved, dst)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRender_Preconditions(t *testing.T) {
	s, cam := twoWalls()
	r := NewRenderer(s)
	assert.ErrorIs(t, r.Render(cam, nil), ErrNoTarget)
	cam.Enabled = false
	assert.ErrorIs(t, r.Render(cam, nil), ErrCameraDisabled)
	assert.ErrorIs(t, NewRenderer(nil).Render(cam, nil), ErrNilScene)
}

func TestNewRenderTexture_InvalidSize(t *testing.T) {
	_, err := NewRenderTexture(0, 10)
	assert.Error(t, err)
}

func TestCamera_CopyFromKeepsIdentity(t *testing.T) {
	ref := NewCamera("main")
	ref.Position = mgl32.Vec3{1, 2, 3}
	ref.FOV = 35
	ref.Far = 7
	ref.ClearColor = color.RGBA{1, 2, 3, 255}

	rt, _ := NewRenderTexture(4, 4)
	cam := NewCamera("photo")
	cam.Enabled = false
	cam.TargetTexture = rt

	require.NoError(t, cam.CopyFrom(ref))
	assert.Equal(t, "photo", cam.Name)
	assert.False(t, cam.Enabled)
	assert.Same(t, rt, cam.TargetTexture)
	assert.Equal(t, ref.Position, cam.Position)
	assert.Equal(t, float32(35), cam.FOV)
	assert.Equal(t, float32(7), cam.Far)
	assert.Equal(t, ref.ClearColor, cam.ClearColor)
}

func TestOrbitController_KeepsRadius(t *testing.T) {
	cam := NewCamera("main")
	cam.Position = mgl32.Vec3{0, 0, 4}
	o := NewOrbitController(cam)
	o.Rotate(0.5, 0.2)
	o.Apply(cam)
	assert.InDelta(t, 4, cam.Position.Sub(cam.Target).Len(), 1e-4)
	o.Rotate(0, 10)
	assert.LessOrEqual(t, o.Pitch, float32(maxPitch))
}
