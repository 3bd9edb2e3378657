package scene

import (
	"errors"
	"fmt"
	"image"
)

// FarDepth is the linear depth stored where no geometry was drawn.
const FarDepth float32 = 1

// RenderTexture is an off-screen render target.
//
// Color and Depth hold the raw rendered frame; Resolved receives the output of
// the postprocess hook and is what callers read back.
type RenderTexture struct {
	Width, Height int

	Color *image.RGBA
	// Depth is linear in [0,1]: view distance divided by the far plane.
	Depth    []float32
	Resolved *image.RGBA
}

// NewRenderTexture allocates a w x h target.
func NewRenderTexture(w, h int) (*RenderTexture, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("scene: invalid render texture size %dx%d", w, h)
	}
	r := image.Rect(0, 0, w, h)
	return &RenderTexture{
		Width:    w,
		Height:   h,
		Color:    image.NewRGBA(r),
		Depth:    make([]float32, w*h),
		Resolved: image.NewRGBA(r),
	}, nil
}

// Bounds returns the texture rectangle.
func (t *RenderTexture) Bounds() image.Rectangle { return image.Rect(0, 0, t.Width, t.Height) }

// DepthAt returns the linear depth at (x, y), or FarDepth when out of range.
func (t *RenderTexture) DepthAt(x, y int) float32 {
	if x < 0 || y < 0 || x >= t.Width || y >= t.Height {
		return FarDepth
	}
	return t.Depth[y*t.Width+x]
}

func (t *RenderTexture) clearDepth() {
	for i := range t.Depth {
		t.Depth[i] = FarDepth
	}
}

// PostprocessFunc is invoked by the renderer once per rendered frame with the
// raw frame and the destination image.
type PostprocessFunc func(src *RenderTexture, dst *image.RGBA)

var (
	ErrCameraDisabled = errors.New("scene: camera disabled")
	ErrNoTarget       = errors.New("scene: camera has no target texture")
	ErrNilScene       = errors.New("scene: nil scene")
)
