// Package depth turns the linear depth plane of a rendered frame into a
// grayscale depth map.
package depth

import (
	"image"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/soocke/photo3d-go/domain/scene"
)

// DefaultMultiplier matches the usual tuning: small values wash the map toward
// white, large values push background geometry to black.
const DefaultMultiplier float32 = 5

// Stage maps depth to intensity as 1 - clamp(depth*Multiplier, 0, 1), so
// closer geometry is lighter. No per-shot range adjustment is done.
type Stage struct {
	Multiplier float32
	// TransparentBackground writes pixels with no geometry as transparent
	// black instead of mapping the far-plane depth.
	TransparentBackground bool
}

// NewStage returns a stage with the given multiplier.
func NewStage(multiplier float32) *Stage { return &Stage{Multiplier: multiplier} }

// Intensity returns the gray level in [0,1] for a linear depth value.
func (s *Stage) Intensity(d float32) float32 {
	v := d * s.Multiplier
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return 1 - v
}

func (s *Stage) gray(d float32) uint8 {
	return uint8(s.Intensity(d)*255 + 0.5)
}

// Apply writes the depth map of src into dst. It has the PostprocessFunc shape.
func (s *Stage) Apply(src *scene.RenderTexture, dst *image.RGBA) {
	if src == nil || dst == nil {
		return
	}
	w, h := src.Width, src.Height
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
			depths := src.Depth[y*w : (y+1)*w]
			for x, d := range depths {
				o := x * 4
				if s.TransparentBackground && d >= scene.FarDepth {
					row[o], row[o+1], row[o+2], row[o+3] = 0, 0, 0, 0
					continue
				}
				g := s.gray(d)
				row[o], row[o+1], row[o+2], row[o+3] = g, g, g, 0xFF
			}
		}
	})
}

// Blit copies the raw color plane of src into dst unchanged.
func Blit(src *scene.RenderTexture, dst *image.RGBA) {
	if src == nil || dst == nil {
		return
	}
	copy(dst.Pix, src.Color.Pix)
}
