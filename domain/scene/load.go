package scene

import (
	"fmt"
	"image/color"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

type sceneFile struct {
	ClearColor [3]uint8    `yaml:"clear_color"`
	Light      *lightFile  `yaml:"light"`
	Cameras    []cameraDoc `yaml:"cameras"`
	Meshes     []meshDoc   `yaml:"meshes"`
}

type lightFile struct {
	Ambient   float32    `yaml:"ambient"`
	Direction [3]float32 `yaml:"direction"`
	Amount    float32    `yaml:"amount"`
}

type cameraDoc struct {
	Name       string      `yaml:"name"`
	Position   [3]float32  `yaml:"position"`
	Target     [3]float32  `yaml:"target"`
	Up         *[3]float32 `yaml:"up"`
	FOV        float32     `yaml:"fov"`
	Near       float32     `yaml:"near"`
	Far        float32     `yaml:"far"`
	ClearColor *[3]uint8   `yaml:"clear_color"`
}

type meshDoc struct {
	Name      string     `yaml:"name"`
	Shape     string     `yaml:"shape"`
	Size      float32    `yaml:"size"`
	Segments  int        `yaml:"segments"`
	Position  [3]float32 `yaml:"position"`
	RotationY float32    `yaml:"rotation_y"` // degrees
	Scale     [3]float32 `yaml:"scale"`
	Color     [3]uint8   `yaml:"color"`
}

// Parse builds a scene from its YAML description.
func Parse(data []byte) (*Scene, error) {
	var doc sceneFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("scene: decode: %w", err)
	}
	s := New()
	if doc.Light != nil {
		s.Light = Light{
			Ambient:   doc.Light.Ambient,
			Direction: mgl32.Vec3(doc.Light.Direction),
			Amount:    doc.Light.Amount,
		}
	}
	clear := rgb(doc.ClearColor)
	for _, cd := range doc.Cameras {
		if cd.Name == "" {
			return nil, fmt.Errorf("scene: camera without name")
		}
		cam := NewCamera(cd.Name)
		cam.Position = mgl32.Vec3(cd.Position)
		cam.Target = mgl32.Vec3(cd.Target)
		if cd.Up != nil {
			cam.Up = mgl32.Vec3(*cd.Up)
		}
		if cd.FOV > 0 {
			cam.FOV = cd.FOV
		}
		if cd.Near > 0 {
			cam.Near = cd.Near
		}
		if cd.Far > 0 {
			cam.Far = cd.Far
		}
		if cam.Far <= cam.Near {
			return nil, fmt.Errorf("scene: camera %q far plane %.3f not beyond near %.3f", cd.Name, cam.Far, cam.Near)
		}
		cam.ClearColor = clear
		if cd.ClearColor != nil {
			cam.ClearColor = rgb(*cd.ClearColor)
		}
		s.AddCamera(cam)
	}
	for i, md := range doc.Meshes {
		m, err := buildMesh(md)
		if err != nil {
			return nil, fmt.Errorf("scene: mesh %d: %w", i, err)
		}
		s.AddMesh(m)
	}
	return s, nil
}

// LoadFile reads and parses a scene file.
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func buildMesh(md meshDoc) (Mesh, error) {
	size := md.Size
	if size <= 0 {
		size = 1
	}
	var m Mesh
	switch md.Shape {
	case "cube":
		m = Cube(size)
	case "plane":
		m = Plane(size, md.Segments)
	case "sphere":
		m = Sphere(size/2, md.Segments)
	default:
		return Mesh{}, fmt.Errorf("unknown shape %q", md.Shape)
	}
	scale := mgl32.Vec3(md.Scale)
	if scale == (mgl32.Vec3{}) {
		scale = mgl32.Vec3{1, 1, 1}
	}
	m.Name = md.Name
	m.Transform = mgl32.Translate3D(md.Position[0], md.Position[1], md.Position[2]).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(md.RotationY))).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
	m.Color = rgb(md.Color)
	return m, nil
}

func rgb(c [3]uint8) color.RGBA {
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xFF}
}
