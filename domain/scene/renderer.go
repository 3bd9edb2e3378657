package scene

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	xdraw "golang.org/x/image/draw"
)

// Renderer is a software rasterizer that draws a Scene from a Camera into the
// camera's bound RenderTexture, producing a color plane and a linear depth
// plane.
//
// A renderer is the rendering owner: calls to Render are serialized.
type Renderer struct {
	Scene *Scene

	mu sync.Mutex
}

// NewRenderer creates a renderer for s.
func NewRenderer(s *Scene) *Renderer { return &Renderer{Scene: s} }

// Render draws the scene from cam into cam.TargetTexture, then calls post with
// the raw frame and the texture's Resolved image. A nil post copies the color
// plane unchanged.
func (r *Renderer) Render(cam *Camera, post PostprocessFunc) error {
	if r == nil || r.Scene == nil {
		return ErrNilScene
	}
	if cam == nil || !cam.Enabled {
		return ErrCameraDisabled
	}
	rt := cam.TargetTexture
	if rt == nil {
		return ErrNoTarget
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.clear(cam, rt)

	aspect := float32(rt.Width) / float32(rt.Height)
	view := cam.View()
	proj := cam.Projection(aspect)
	for i := range r.Scene.Meshes {
		m := &r.Scene.Meshes[i]
		if !m.Enabled {
			continue
		}
		r.renderMesh(rt, cam, view, proj, m)
	}

	if post != nil {
		post(rt, rt.Resolved)
	} else {
		copy(rt.Resolved.Pix, rt.Color.Pix)
	}
	return nil
}

func (r *Renderer) clear(cam *Camera, rt *RenderTexture) {
	rt.clearDepth()
	if bd := r.Scene.Backdrop; bd != nil {
		xdraw.ApproxBiLinear.Scale(rt.Color, rt.Color.Bounds(), bd, bd.Bounds(), draw.Src, nil)
		return
	}
	draw.Draw(rt.Color, rt.Color.Bounds(), &image.Uniform{C: cam.ClearColor}, image.Point{}, draw.Src)
}

// vertex is a transformed vertex: screen position plus view distance.
type vertex struct {
	x, y  float32
	viewZ float32
}

func (r *Renderer) renderMesh(rt *RenderTexture, cam *Camera, view, proj mgl32.Mat4, m *Mesh) {
	if len(m.Vertices) == 0 || len(m.Indices) < 3 {
		return
	}
	model := m.Transform
	if model == (mgl32.Mat4{}) {
		model = mgl32.Ident4()
	}
	modelView := view.Mul4(model)
	light := r.Scene.Light

	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0, i1, i2 := int(m.Indices[i]), int(m.Indices[i+1]), int(m.Indices[i+2])
		n := len(m.Vertices)
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		var tri [3]vertex
		visible := true
		for k, idx := range [3]int{i0, i1, i2} {
			v, ok := project(modelView, proj, m.Vertices[idx], cam.Near, rt.Width, rt.Height)
			if !ok {
				visible = false
				break
			}
			tri[k] = v
		}
		// Triangles crossing the near plane are dropped rather than clipped.
		if !visible {
			continue
		}

		w0 := mgl32.TransformCoordinate(m.Vertices[i0], model)
		w1 := mgl32.TransformCoordinate(m.Vertices[i1], model)
		w2 := mgl32.TransformCoordinate(m.Vertices[i2], model)
		shade := lightIntensity(light, w1.Sub(w0).Cross(w2.Sub(w0)))
		c := scaleColor(m.Color, shade)

		r.fillTriangle(rt, cam.Far, tri, c)
	}
}

func project(modelView, proj mgl32.Mat4, p mgl32.Vec3, near float32, w, h int) (vertex, bool) {
	vp := modelView.Mul4x1(p.Vec4(1))
	viewZ := -vp.Z()
	if viewZ < near {
		return vertex{}, false
	}
	clip := proj.Mul4x1(vp)
	if clip.W() == 0 {
		return vertex{}, false
	}
	inv := 1 / clip.W()
	nx, ny := clip.X()*inv, clip.Y()*inv
	return vertex{
		x:     (nx*0.5 + 0.5) * float32(w),
		y:     (1 - (ny*0.5 + 0.5)) * float32(h),
		viewZ: viewZ,
	}, true
}

func lightIntensity(l Light, normal mgl32.Vec3) float32 {
	amb := clamp01(l.Ambient)
	if normal.Len() == 0 || l.Direction.Len() == 0 {
		return amb
	}
	// Two-sided: meshes are not required to share a winding order.
	d := math32.Abs(normal.Normalize().Dot(l.Direction.Normalize()))
	return clamp01(amb + d*clamp01(l.Amount))
}

func scaleColor(c color.RGBA, s float32) color.RGBA {
	mul := func(ch uint8) uint8 { return uint8(float32(ch)*s + 0.5) }
	return color.RGBA{R: mul(c.R), G: mul(c.G), B: mul(c.B), A: c.A}
}

func edge(ax, ay, bx, by, px, py float32) float32 {
	return (px-ax)*(by-ay) - (py-ay)*(bx-ax)
}

func (r *Renderer) fillTriangle(rt *RenderTexture, far float32, t [3]vertex, c color.RGBA) {
	area := edge(t[0].x, t[0].y, t[1].x, t[1].y, t[2].x, t[2].y)
	if area == 0 {
		return
	}
	minX := int(math32.Floor(min(t[0].x, t[1].x, t[2].x)))
	maxX := int(math32.Ceil(max(t[0].x, t[1].x, t[2].x)))
	minY := int(math32.Floor(min(t[0].y, t[1].y, t[2].y)))
	maxY := int(math32.Ceil(max(t[0].y, t[1].y, t[2].y)))
	minX, minY = max(minX, 0), max(minY, 0)
	maxX, maxY = min(maxX, rt.Width-1), min(maxY, rt.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	invArea := 1 / area
	iz0, iz1, iz2 := 1/t[0].viewZ, 1/t[1].viewZ, 1/t[2].viewZ
	pix := rt.Color.Pix
	stride := rt.Color.Stride

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			a0 := edge(t[1].x, t[1].y, t[2].x, t[2].y, px, py) * invArea
			a1 := edge(t[2].x, t[2].y, t[0].x, t[0].y, px, py) * invArea
			a2 := edge(t[0].x, t[0].y, t[1].x, t[1].y, px, py) * invArea
			if a0 < 0 || a1 < 0 || a2 < 0 {
				continue
			}
			// Perspective-correct view distance.
			z := 1 / (a0*iz0 + a1*iz1 + a2*iz2)
			d := z / far
			if d >= FarDepth {
				continue
			}
			idx := y*rt.Width + x
			if d >= rt.Depth[idx] {
				continue
			}
			rt.Depth[idx] = d
			o := y*stride + x*4
			pix[o+0] = c.R
			pix[o+1] = c.G
			pix[o+2] = c.B
			pix[o+3] = c.A
		}
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
