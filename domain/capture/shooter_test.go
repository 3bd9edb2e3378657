package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/photo3d-go/domain/depth"
	"github.com/soocke/photo3d-go/domain/photo"
	"github.com/soocke/photo3d-go/domain/scene"
	"github.com/soocke/photo3d-go/domain/storage"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// memPolicy keeps written files in memory.
type memPolicy struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (m *memPolicy) Write(_ context.Context, name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[name] = data
	return "/mem/" + name, nil
}

// testScene places a near red wall on the left and a far blue wall on the right.
func testScene() (*scene.Scene, *scene.Camera, *scene.Camera) {
	s := scene.New()
	near := scene.Cube(1)
	near.Transform = mgl32.Translate3D(-1, 0, 2).Mul4(mgl32.Scale3D(2, 4, 0.1))
	near.Color = color.RGBA{255, 0, 0, 255}
	far := scene.Cube(1)
	far.Transform = mgl32.Translate3D(3, 0, -3).Mul4(mgl32.Scale3D(6, 4, 0.1))
	far.Color = color.RGBA{0, 0, 255, 255}
	s.AddMesh(near)
	s.AddMesh(far)

	ref := scene.NewCamera("main")
	ref.Position = mgl32.Vec3{0, 0, 5}
	ref.Far = 20
	ref.ClearColor = color.RGBA{10, 20, 30, 255}
	photoCam := scene.NewCamera("photo")
	s.AddCamera(ref)
	s.AddCamera(photoCam)
	return s, ref, photoCam
}

type fixture struct {
	scene   *scene.Scene
	ref     *scene.Camera
	cam     *scene.Camera
	policy  *memPolicy
	writer  *storage.Writer
	shooter *Shooter
}

func newFixture(t *testing.T, mult float32) *fixture {
	t.Helper()
	s, ref, cam := testScene()
	pol := &memPolicy{}
	w := storage.NewWriter(pol, "Demo", discardLogger)
	clock := func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local) }
	sh, err := NewShooter(Options{
		Host:      scene.NewRenderer(s),
		Camera:    cam,
		Reference: ref,
		Width:     64,
		Height:    32,
		Stage:     depth.Stage{Multiplier: mult},
		Sink:      w,
		Sessions:  photo.NewSessions(clock, true),
		Logger:    discardLogger,
	})
	require.NoError(t, err)
	return &fixture{scene: s, ref: ref, cam: cam, policy: pol, writer: w, shooter: sh}
}

func decodeRGBA(t *testing.T, data []byte) *image.RGBA {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

func TestCapture_WritesNamedPair(t *testing.T) {
	f := newFixture(t, depth.DefaultMultiplier)
	sess, err := f.shooter.Capture()
	require.NoError(t, err)
	require.NoError(t, f.writer.Wait())

	assert.Len(t, f.policy.files, 2)
	colorData := f.policy.files["Demo_Photo3D_2024_1_2_3_4_5.png"]
	depthData := f.policy.files["Demo_Photo3D_2024_1_2_3_4_5_depth.png"]
	require.NotNil(t, colorData)
	require.NotNil(t, depthData)
	assert.Equal(t, 0, sess.Seq)

	for _, data := range [][]byte{colorData, depthData} {
		cfg, err := png.DecodeConfig(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 64, cfg.Width)
		assert.Equal(t, 32, cfg.Height)
	}
}

func TestCapture_SecondCaptureInSameSecondIsSuffixed(t *testing.T) {
	f := newFixture(t, depth.DefaultMultiplier)
	_, err := f.shooter.Capture()
	require.NoError(t, err)
	sess, err := f.shooter.Capture()
	require.NoError(t, err)
	require.NoError(t, f.writer.Wait())

	assert.Equal(t, 1, sess.Seq)
	assert.Len(t, f.policy.files, 4)
	assert.Contains(t, f.policy.files, "Demo_Photo3D_2024_1_2_3_4_5_1.png")
	assert.Contains(t, f.policy.files, "Demo_Photo3D_2024_1_2_3_4_5_1_depth.png")
}

func TestCapture_ColorMatchesPlainRender(t *testing.T) {
	f := newFixture(t, depth.DefaultMultiplier)
	_, err := f.shooter.Capture()
	require.NoError(t, err)
	require.NoError(t, f.writer.Wait())

	// Render the reference camera directly with postprocessing off.
	rt, err := scene.NewRenderTexture(64, 32)
	require.NoError(t, err)
	f.ref.TargetTexture = rt
	require.NoError(t, scene.NewRenderer(f.scene).Render(f.ref, nil))

	got := decodeRGBA(t, f.policy.files["Demo_Photo3D_2024_1_2_3_4_5.png"])
	assert.Equal(t, rt.Color.Pix, got.Pix)
}

func TestCapture_DepthCloserIsLighter(t *testing.T) {
	f := newFixture(t, 1)
	_, err := f.shooter.Capture()
	require.NoError(t, err)
	require.NoError(t, f.writer.Wait())

	img := decodeRGBA(t, f.policy.files["Demo_Photo3D_2024_1_2_3_4_5_depth.png"])
	near := img.RGBAAt(20, 16)
	far := img.RGBAAt(44, 16)
	bg := img.RGBAAt(0, 0)
	assert.Equal(t, near.R, near.G)
	assert.Equal(t, near.R, near.B)
	assert.Greater(t, near.R, far.R)
	assert.Greater(t, far.R, bg.R)
	assert.Equal(t, uint8(0), bg.R)
}

func TestCapture_CameraDisabledAndUnboundAfter(t *testing.T) {
	f := newFixture(t, depth.DefaultMultiplier)
	assert.False(t, f.cam.Enabled)

	f.ref.Position = mgl32.Vec3{1, 2, 6}
	_, err := f.shooter.Capture()
	require.NoError(t, err)

	assert.False(t, f.cam.Enabled)
	assert.Nil(t, f.cam.TargetTexture)
	assert.Equal(t, f.ref.Position, f.cam.Position)
	assert.Equal(t, f.ref.Far, f.cam.Far)
	assert.Equal(t, "photo", f.cam.Name)
}

type failingHost struct {
	calls  int
	failOn int
}

func (h *failingHost) Render(cam *scene.Camera, post scene.PostprocessFunc) error {
	h.calls++
	if h.calls == h.failOn {
		return errors.New("gpu lost")
	}
	post(cam.TargetTexture, cam.TargetTexture.Resolved)
	return nil
}

func TestCapture_RenderFailureRestoresCamera(t *testing.T) {
	_, ref, cam := testScene()
	host := &failingHost{failOn: 2}
	pol := &memPolicy{}
	w := storage.NewWriter(pol, "Demo", discardLogger)
	sh, err := NewShooter(Options{Host: host, Camera: cam, Reference: ref, Width: 4, Height: 4, Sink: w, Logger: discardLogger})
	require.NoError(t, err)

	_, err = sh.Capture()
	require.Error(t, err)
	require.NoError(t, w.Wait())

	assert.False(t, cam.Enabled)
	assert.Nil(t, cam.TargetTexture)
	assert.Len(t, pol.files, 1, "color file was queued before the depth pass failed")
	assert.Equal(t, uint64(1), sh.Stats().Failures)
	assert.False(t, sh.Busy())
}

// reentrantHost triggers a nested capture from inside the render.
type reentrantHost struct {
	inner  Host
	sh     *Shooter
	nested error
}

func (h *reentrantHost) Render(cam *scene.Camera, post scene.PostprocessFunc) error {
	if h.sh != nil && h.nested == nil {
		_, h.nested = h.sh.Capture()
	}
	return h.inner.Render(cam, post)
}

func TestCapture_RejectsOverlappingTrigger(t *testing.T) {
	s, ref, cam := testScene()
	host := &reentrantHost{inner: scene.NewRenderer(s)}
	sh, err := NewShooter(Options{Host: host, Camera: cam, Reference: ref, Width: 8, Height: 8, Sink: storage.NewWriter(&memPolicy{}, "Demo", discardLogger)})
	require.NoError(t, err)
	host.sh = sh

	_, err = sh.Capture()
	require.NoError(t, err)
	assert.ErrorIs(t, host.nested, ErrCaptureInProgress)
	st := sh.Stats()
	assert.Equal(t, uint64(1), st.Captures)
	assert.Equal(t, uint64(1), st.Rejected)
}

func TestCapture_Deterministic(t *testing.T) {
	a := newFixture(t, depth.DefaultMultiplier)
	b := newFixture(t, depth.DefaultMultiplier)
	_, err := a.shooter.Capture()
	require.NoError(t, err)
	_, err = b.shooter.Capture()
	require.NoError(t, err)
	require.NoError(t, a.writer.Wait())
	require.NoError(t, b.writer.Wait())
	assert.Equal(t, a.policy.files, b.policy.files)
}

func TestCapture_OnCapturedReceivesPair(t *testing.T) {
	f := newFixture(t, depth.DefaultMultiplier)
	var gotColor, gotDepth *image.RGBA
	var gotSess photo.Session
	f.shooter.OnCaptured(func(s photo.Session, c, d *image.RGBA) {
		gotSess, gotColor, gotDepth = s, c, d
	})
	sess, err := f.shooter.Capture()
	require.NoError(t, err)
	assert.Equal(t, sess, gotSess)
	require.NotNil(t, gotColor)
	require.NotNil(t, gotDepth)
	assert.Equal(t, image.Rect(0, 0, 64, 32), gotColor.Bounds())
	assert.NotEqual(t, gotColor.Pix, gotDepth.Pix)
}

func TestCapture_SetStageAppliesToNextCapture(t *testing.T) {
	f := newFixture(t, depth.DefaultMultiplier)
	f.shooter.SetStage(depth.Stage{Multiplier: 0})
	_, err := f.shooter.Capture()
	require.NoError(t, err)
	require.NoError(t, f.writer.Wait())

	img := decodeRGBA(t, f.policy.files["Demo_Photo3D_2024_1_2_3_4_5_depth.png"])
	for _, p := range []image.Point{{0, 0}, {20, 16}, {44, 16}} {
		assert.Equal(t, uint8(255), img.RGBAAt(p.X, p.Y).R)
	}
}

func TestNewShooter_Validation(t *testing.T) {
	s, ref, cam := testScene()
	host := scene.NewRenderer(s)
	sink := storage.NewWriter(&memPolicy{}, "Demo", discardLogger)

	_, err := NewShooter(Options{Camera: cam, Sink: sink, Width: 1, Height: 1})
	assert.ErrorIs(t, err, ErrNoHost)
	_, err = NewShooter(Options{Host: host, Sink: sink, Width: 1, Height: 1})
	assert.ErrorIs(t, err, ErrNoCamera)
	_, err = NewShooter(Options{Host: host, Camera: cam, Width: 1, Height: 1})
	assert.ErrorIs(t, err, ErrNoSink)
	_, err = NewShooter(Options{Host: host, Camera: cam, Reference: ref, Sink: sink})
	assert.Error(t, err)
}

func TestPNGEncoder_Deterministic(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 5, 3))
	img.Set(1, 1, color.RGBA{1, 2, 3, 255})
	enc := NewPNGEncoder()
	a, err := enc.Encode(img)
	require.NoError(t, err)
	b, err := enc.Encode(img)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	cfg, err := png.DecodeConfig(bytes.NewReader(a))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Width)
	assert.Equal(t, 3, cfg.Height)
}
