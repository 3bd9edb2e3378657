package scene

import (
	"image/color"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is a triangle list with an object transform and a flat base color.
type Mesh struct {
	Name     string
	Enabled  bool
	Vertices []mgl32.Vec3
	Indices  []uint32

	Transform mgl32.Mat4
	Color     color.RGBA
}

// Cube returns an axis-aligned cube of edge size centered at the origin.
func Cube(size float32) Mesh {
	h := size / 2
	v := []mgl32.Vec3{
		{-h, -h, -h}, {h, -h, -h}, {h, h, -h}, {-h, h, -h},
		{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h},
	}
	idx := []uint32{
		4, 5, 6, 4, 6, 7, // front
		1, 0, 3, 1, 3, 2, // back
		0, 4, 7, 0, 7, 3, // left
		5, 1, 2, 5, 2, 6, // right
		7, 6, 2, 7, 2, 3, // top
		0, 1, 5, 0, 5, 4, // bottom
	}
	return Mesh{Enabled: true, Vertices: v, Indices: idx, Transform: mgl32.Ident4()}
}

// Plane returns a horizontal square grid of the given size on y=0. Splitting
// it into segments lets the near-plane rejection drop only the cells behind
// the camera.
func Plane(size float32, segments int) Mesh {
	if segments < 1 {
		segments = 1
	}
	h := size / 2
	step := size / float32(segments)
	n := segments + 1
	v := make([]mgl32.Vec3, 0, n*n)
	for z := 0; z < n; z++ {
		for x := 0; x < n; x++ {
			v = append(v, mgl32.Vec3{-h + float32(x)*step, 0, -h + float32(z)*step})
		}
	}
	idx := make([]uint32, 0, segments*segments*6)
	for z := 0; z < segments; z++ {
		for x := 0; x < segments; x++ {
			a := uint32(z*n + x)
			b := a + 1
			c := a + uint32(n)
			d := c + 1
			idx = append(idx, a, c, b, b, c, d)
		}
	}
	return Mesh{Enabled: true, Vertices: v, Indices: idx, Transform: mgl32.Ident4()}
}

// Sphere returns a UV sphere of the given radius.
func Sphere(radius float32, segments int) Mesh {
	if segments < 4 {
		segments = 4
	}
	rings := segments / 2
	v := make([]mgl32.Vec3, 0, (rings+1)*(segments+1))
	for r := 0; r <= rings; r++ {
		phi := math32.Pi * float32(r) / float32(rings)
		for s := 0; s <= segments; s++ {
			theta := 2 * math32.Pi * float32(s) / float32(segments)
			v = append(v, mgl32.Vec3{
				radius * math32.Sin(phi) * math32.Cos(theta),
				radius * math32.Cos(phi),
				radius * math32.Sin(phi) * math32.Sin(theta),
			})
		}
	}
	idx := make([]uint32, 0, rings*segments*6)
	row := uint32(segments + 1)
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := uint32(r)*row + uint32(s)
			b := a + row
			idx = append(idx, a, b, a+1, a+1, b, b+1)
		}
	}
	return Mesh{Enabled: true, Vertices: v, Indices: idx, Transform: mgl32.Ident4()}
}
