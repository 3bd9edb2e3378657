package scene

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// Light is an ambient term plus one directional light.
type Light struct {
	Ambient   float32    // 0..1
	Direction mgl32.Vec3 // direction the light travels, toward the scene
	Amount    float32    // 0..1
}

// Scene is the set of objects and cameras the renderer draws.
type Scene struct {
	Light    Light
	Meshes   []Mesh
	Cameras  []*Camera
	Backdrop image.Image // drawn behind all geometry, stretched to the target
}

// New returns an empty scene with a default light.
func New() *Scene {
	return &Scene{
		Light: Light{
			Ambient:   0.3,
			Direction: mgl32.Vec3{-0.4, -1, -0.6}.Normalize(),
			Amount:    0.7,
		},
	}
}

// AddMesh appends m and returns its index.
func (s *Scene) AddMesh(m Mesh) int {
	if m.Transform == (mgl32.Mat4{}) {
		m.Transform = mgl32.Ident4()
	}
	if m.Color == (color.RGBA{}) {
		m.Color = color.RGBA{0xCC, 0xCC, 0xCC, 0xFF}
	}
	s.Meshes = append(s.Meshes, m)
	return len(s.Meshes) - 1
}

// AddCamera registers cam, replacing any camera with the same name.
func (s *Scene) AddCamera(cam *Camera) {
	for i, c := range s.Cameras {
		if c.Name == cam.Name {
			s.Cameras[i] = cam
			return
		}
	}
	s.Cameras = append(s.Cameras, cam)
}

// Camera returns the camera with the given name, or nil.
func (s *Scene) Camera(name string) *Camera {
	if s == nil {
		return nil
	}
	for _, c := range s.Cameras {
		if c.Name == name {
			return c
		}
	}
	return nil
}
