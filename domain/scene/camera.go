package scene

import (
	"image/color"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/jinzhu/copier"
)

// Camera describes a perspective viewpoint into the scene. Cameras look down
// their local -Z axis toward Target.
type Camera struct {
	Name string `copier:"-"`

	// Enabled cameras may be rendered; the renderer refuses disabled ones.
	Enabled bool `copier:"-"`
	// TargetTexture receives the rendered frame. Nil means unbound.
	TargetTexture *RenderTexture `copier:"-"`

	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	// FOV is the vertical field of view in degrees.
	FOV  float32
	Near float32
	Far  float32

	ClearColor color.RGBA
}

// NewCamera returns an enabled camera looking at the origin from +Z.
func NewCamera(name string) *Camera {
	return &Camera{
		Name:       name,
		Enabled:    true,
		Position:   mgl32.Vec3{0, 0, 10},
		Target:     mgl32.Vec3{0, 0, 0},
		Up:         mgl32.Vec3{0, 1, 0},
		FOV:        60,
		Near:       0.1,
		Far:        100,
		ClearColor: color.RGBA{A: 0xFF},
	}
}

// CopyFrom copies projection, pose and clear color from ref. Name, enabled
// state and the bound target texture are left alone.
func (c *Camera) CopyFrom(ref *Camera) error {
	if c == nil || ref == nil {
		return nil
	}
	return copier.Copy(c, ref)
}

// SetPose moves the camera to ref's position and orientation.
func (c *Camera) SetPose(ref *Camera) {
	if c == nil || ref == nil {
		return
	}
	c.Position = ref.Position
	c.Target = ref.Target
	c.Up = ref.Up
}

func (c *Camera) up() mgl32.Vec3 {
	if c.Up == (mgl32.Vec3{}) {
		return mgl32.Vec3{0, 1, 0}
	}
	return c.Up
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.up())
}

// Projection returns the perspective matrix for the given aspect (w/h).
func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	fov := c.FOV
	if fov <= 0 {
		fov = 60
	}
	return mgl32.Perspective(mgl32.DegToRad(fov), aspect, c.Near, c.Far)
}

// OrbitController moves a camera on a sphere around a target point.
type OrbitController struct {
	Target mgl32.Vec3
	Yaw    float32 // radians around +Y
	Pitch  float32 // radians, clamped short of the poles
	Radius float32

	MinRadius float32
	MaxRadius float32
}

// NewOrbitController derives yaw, pitch and radius from the camera's current pose.
func NewOrbitController(cam *Camera) *OrbitController {
	o := &OrbitController{Target: cam.Target, MinRadius: 0.5, MaxRadius: 50}
	d := cam.Position.Sub(cam.Target)
	o.Radius = d.Len()
	if o.Radius == 0 {
		o.Radius = 3
		return o
	}
	o.Yaw = math32.Atan2(d.X(), d.Z())
	o.Pitch = math32.Asin(d.Y() / o.Radius)
	return o
}

// Apply writes the orbit position into cam.
func (o *OrbitController) Apply(cam *Camera) {
	if cam == nil {
		return
	}
	r := o.Radius
	if r <= 0 {
		r = 3
	}
	cp := math32.Cos(o.Pitch)
	offset := mgl32.Vec3{
		r * cp * math32.Sin(o.Yaw),
		r * math32.Sin(o.Pitch),
		r * cp * math32.Cos(o.Yaw),
	}
	cam.Position = o.Target.Add(offset)
	cam.Target = o.Target
	cam.Up = cam.up()
}

const maxPitch = 1.5

func (o *OrbitController) Rotate(deltaYaw, deltaPitch float32) {
	o.Yaw += deltaYaw
	o.Pitch += deltaPitch
	if o.Pitch > maxPitch {
		o.Pitch = maxPitch
	}
	if o.Pitch < -maxPitch {
		o.Pitch = -maxPitch
	}
}

func (o *OrbitController) Zoom(delta float32) {
	o.Radius += delta
	if o.MinRadius != 0 && o.Radius < o.MinRadius {
		o.Radius = o.MinRadius
	}
	if o.MaxRadius != 0 && o.Radius > o.MaxRadius {
		o.Radius = o.MaxRadius
	}
}
