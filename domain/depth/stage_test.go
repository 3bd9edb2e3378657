package depth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/photo3d-go/domain/scene"
)

func TestIntensity_Monotonic(t *testing.T) {
	for _, mult := range []float32{0.5, 1, 5, 20} {
		s := NewStage(mult)
		prev := s.Intensity(0)
		for i := 1; i <= 100; i++ {
			cur := s.Intensity(float32(i) / 100)
			if cur > prev {
				t.Fatalf("mult=%v: intensity rose from %v to %v at d=%v", mult, prev, cur, float32(i)/100)
			}
			prev = cur
		}
	}
}

func TestIntensity_Clamps(t *testing.T) {
	s := NewStage(5)
	assert.Equal(t, float32(1), s.Intensity(0))
	assert.InDelta(t, 0, s.Intensity(0.2), 1e-6)
	assert.Equal(t, float32(0), s.Intensity(1))
	assert.InDelta(t, 0.5, s.Intensity(0.1), 1e-6)
}

func TestIntensity_NonPositiveMultiplierIsConstant(t *testing.T) {
	for _, mult := range []float32{0, -3} {
		s := NewStage(mult)
		for _, d := range []float32{0, 0.1, 0.5, 1} {
			assert.Equal(t, float32(1), s.Intensity(d), "mult=%v d=%v", mult, d)
		}
	}
}

func gradient(t *testing.T, w, h int) *scene.RenderTexture {
	t.Helper()
	rt, err := scene.NewRenderTexture(w, h)
	require.NoError(t, err)
	for i := range rt.Depth {
		rt.Depth[i] = float32(i%w) / float32(w)
	}
	for i := range rt.Color.Pix {
		rt.Color.Pix[i] = uint8(i * 7)
	}
	return rt
}

func TestApply_GrayscaleCloserIsLighter(t *testing.T) {
	rt := gradient(t, 32, 5)
	NewStage(1).Apply(rt, rt.Resolved)
	for y := 0; y < 5; y++ {
		for x := 1; x < 32; x++ {
			a := rt.Resolved.RGBAAt(x-1, y)
			b := rt.Resolved.RGBAAt(x, y)
			assert.Equal(t, b.R, b.G)
			assert.Equal(t, b.R, b.B)
			assert.Equal(t, uint8(255), b.A)
			assert.GreaterOrEqual(t, a.R, b.R)
		}
	}
	assert.Equal(t, uint8(255), rt.Resolved.RGBAAt(0, 0).R)
}

func TestApply_BackgroundTransparent(t *testing.T) {
	rt, _ := scene.NewRenderTexture(2, 1)
	rt.Depth[0] = 0.1
	rt.Depth[1] = scene.FarDepth
	s := &Stage{Multiplier: 0.5, TransparentBackground: true}
	s.Apply(rt, rt.Resolved)
	assert.Equal(t, uint8(255), rt.Resolved.RGBAAt(0, 0).A)
	assert.Equal(t, uint8(0), rt.Resolved.RGBAAt(1, 0).A)

	s.TransparentBackground = false
	s.Apply(rt, rt.Resolved)
	bg := rt.Resolved.RGBAAt(1, 0)
	assert.Equal(t, uint8(255), bg.A)
	assert.Equal(t, uint8(128), bg.R)
}

func TestBlit_IsIdentity(t *testing.T) {
	rt := gradient(t, 9, 4)
	Blit(rt, rt.Resolved)
	assert.Equal(t, rt.Color.Pix, rt.Resolved.Pix)
}
