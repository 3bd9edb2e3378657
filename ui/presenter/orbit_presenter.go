package presenter

import (
	"image"
	"log/slog"

	"github.com/soocke/photo3d-go/domain/scene"
)

// Renderer draws a camera into its bound target.
type Renderer interface {
	Render(cam *scene.Camera, post scene.PostprocessFunc) error
}

// ViewportView shows the live reference camera view.
type ViewportView interface {
	UpdateViewport(img image.Image)
}

const (
	orbitStep = 0.08 // radians per key press
	zoomStep  = 0.5
)

// OrbitPresenter moves the reference camera from key presses and re-renders
// the viewport when the pose changed.
type OrbitPresenter struct {
	cam    *scene.Camera
	ctrl   *scene.OrbitController
	render Renderer
	target *scene.RenderTexture
	view   ViewportView
	logger *slog.Logger
	dirty  bool
}

// NewOrbitPresenter returns a presenter rendering cam at w x h into view.
func NewOrbitPresenter(cam *scene.Camera, r Renderer, w, h int, view ViewportView, logger *slog.Logger) (*OrbitPresenter, error) {
	target, err := scene.NewRenderTexture(w, h)
	if err != nil {
		return nil, err
	}
	return &OrbitPresenter{
		cam:    cam,
		ctrl:   scene.NewOrbitController(cam),
		render: r,
		target: target,
		view:   view,
		logger: logger,
		dirty:  true,
	}, nil
}

// OnKey handles a Tk keysym. It reports whether the key was consumed.
func (p *OrbitPresenter) OnKey(keysym string) bool {
	if p == nil || p.cam == nil {
		return false
	}
	switch keysym {
	case "Left":
		p.ctrl.Rotate(-orbitStep, 0)
	case "Right":
		p.ctrl.Rotate(orbitStep, 0)
	case "Up":
		p.ctrl.Rotate(0, orbitStep)
	case "Down":
		p.ctrl.Rotate(0, -orbitStep)
	case "plus", "equal", "KP_Add":
		p.ctrl.Zoom(-zoomStep)
	case "minus", "KP_Subtract":
		p.ctrl.Zoom(zoomStep)
	default:
		return false
	}
	p.ctrl.Apply(p.cam)
	p.dirty = true
	return true
}

// Tick re-renders the viewport when needed.
func (p *OrbitPresenter) Tick() {
	if p == nil || !p.dirty || p.cam == nil || p.render == nil || p.view == nil {
		return
	}
	p.dirty = false
	prev := p.cam.TargetTexture
	p.cam.TargetTexture = p.target
	err := p.render.Render(p.cam, nil)
	p.cam.TargetTexture = prev
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("viewport render", "error", err)
		}
		return
	}
	p.view.UpdateViewport(p.target.Resolved)
}
