package capture

import (
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/soocke/photo3d-go/domain/depth"
	"github.com/soocke/photo3d-go/domain/photo"
	"github.com/soocke/photo3d-go/domain/scene"
)

// Options configures a Shooter.
type Options struct {
	Host Host
	// Camera is the dedicated capture camera. It stays disabled and unbound
	// between captures.
	Camera *scene.Camera
	// Reference, when set, supplies projection parameters at construction and
	// the pose at every capture.
	Reference *scene.Camera

	Width, Height int

	Stage    depth.Stage
	Encoder  Encoder
	Sink     Sink
	Sessions *photo.Sessions
	Logger   *slog.Logger
}

// Shooter orchestrates one color and one depth render per Capture call.
// Capture runs on the caller's goroutine, which must be the render owner;
// only the file writes happen in the background.
type Shooter struct {
	host     Host
	cam      *scene.Camera
	ref      *scene.Camera
	target   *scene.RenderTexture
	enc      Encoder
	sink     Sink
	sessions *photo.Sessions
	logger   *slog.Logger

	mu         sync.Mutex
	stage      depth.Stage
	onCaptured CapturedFunc

	busy        atomic.Bool
	captures    atomic.Uint64
	failures    atomic.Uint64
	rejected    atomic.Uint64
	totalNanos  atomic.Uint64
	lastCapture atomic.Int64
}

// NewShooter validates opts, allocates the reusable render texture and copies
// the reference camera's parameters onto the capture camera.
func NewShooter(opts Options) (*Shooter, error) {
	switch {
	case opts.Host == nil:
		return nil, ErrNoHost
	case opts.Camera == nil:
		return nil, ErrNoCamera
	case opts.Sink == nil:
		return nil, ErrNoSink
	}
	target, err := scene.NewRenderTexture(opts.Width, opts.Height)
	if err != nil {
		return nil, fmt.Errorf("capture: render texture: %w", err)
	}
	if opts.Reference != nil && opts.Reference != opts.Camera {
		if err := opts.Camera.CopyFrom(opts.Reference); err != nil {
			return nil, fmt.Errorf("capture: copy reference camera: %w", err)
		}
	}
	opts.Camera.Enabled = false
	opts.Camera.TargetTexture = nil

	enc := opts.Encoder
	if enc == nil {
		enc = NewPNGEncoder()
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = photo.NewSessions(nil, true)
	}
	return &Shooter{
		host:     opts.Host,
		cam:      opts.Camera,
		ref:      opts.Reference,
		target:   target,
		enc:      enc,
		sink:     opts.Sink,
		sessions: sessions,
		logger:   opts.Logger,
		stage:    opts.Stage,
	}, nil
}

// SetStage replaces the depth mapping used by later captures.
func (s *Shooter) SetStage(st depth.Stage) {
	s.mu.Lock()
	s.stage = st
	s.mu.Unlock()
}

// Stage returns the current depth mapping.
func (s *Shooter) Stage() depth.Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// OnCaptured registers fn to receive each finished pair. Without a callback
// the read-back frames are recycled.
func (s *Shooter) OnCaptured(fn CapturedFunc) {
	s.mu.Lock()
	s.onCaptured = fn
	s.mu.Unlock()
}

// Busy reports whether a capture is running.
func (s *Shooter) Busy() bool { return s.busy.Load() }

// Capture renders, encodes and queues the color file and then the depth file
// of a new session. Both files share the returned session. A trigger that
// arrives while a capture runs is rejected with ErrCaptureInProgress.
func (s *Shooter) Capture() (photo.Session, error) {
	if !s.busy.CompareAndSwap(false, true) {
		s.rejected.Add(1)
		return photo.Session{}, ErrCaptureInProgress
	}
	defer s.busy.Store(false)

	start := time.Now()
	sess := s.sessions.Next()
	color, depthImg, err := s.shoot(sess)
	if err != nil {
		s.failures.Add(1)
		if s.logger != nil {
			s.logger.Error("capture failed", "session", sess.ID, "error", err)
		}
		return sess, err
	}

	elapsed := time.Since(start)
	s.totalNanos.Add(uint64(elapsed.Nanoseconds()))
	s.captures.Add(1)
	s.lastCapture.Store(time.Now().UnixNano())
	s.logStats()

	s.mu.Lock()
	hook := s.onCaptured
	s.mu.Unlock()
	if hook != nil {
		hook(sess, color, depthImg)
	} else {
		RecycleFrame(color)
		RecycleFrame(depthImg)
	}
	return sess, nil
}

func (s *Shooter) shoot(sess photo.Session) (color, depthImg *image.RGBA, err error) {
	if s.ref != nil && s.ref != s.cam {
		s.cam.SetPose(s.ref)
	}
	s.cam.TargetTexture = s.target
	s.cam.Enabled = true
	defer func() {
		s.cam.TargetTexture = nil
		s.cam.Enabled = false
	}()

	color, err = s.pass(sess, false, depth.Blit)
	if err != nil {
		return nil, nil, err
	}
	stage := s.Stage()
	depthImg, err = s.pass(sess, true, stage.Apply)
	if err != nil {
		RecycleFrame(color)
		return nil, nil, err
	}
	return color, depthImg, nil
}

func (s *Shooter) pass(sess photo.Session, isDepth bool, post scene.PostprocessFunc) (*image.RGBA, error) {
	kind := "color"
	if isDepth {
		kind = "depth"
	}
	if err := s.host.Render(s.cam, post); err != nil {
		return nil, fmt.Errorf("capture: render %s pass: %w", kind, err)
	}
	img := readback(s.target.Resolved)
	data, err := s.enc.Encode(img)
	if err != nil {
		RecycleFrame(img)
		return nil, fmt.Errorf("capture: encode %s pass: %w", kind, err)
	}
	if s.logger != nil {
		s.logger.Debug("capture pass", "session", sess.ID, "pass", kind, "size", humanize.Bytes(uint64(len(data))))
	}
	s.sink.Save(data, isDepth, sess)
	return img, nil
}

// Stats returns a snapshot of the shooter counters.
func (s *Shooter) Stats() CaptureStats {
	captures := s.captures.Load()
	total := s.totalNanos.Load()
	var avg time.Duration
	avgMicros := 0.0
	if captures > 0 && total > 0 {
		avg = time.Duration(total / captures)
		avgMicros = float64(avg) / float64(time.Microsecond)
	}
	var last time.Time
	var age time.Duration
	if ns := s.lastCapture.Load(); ns != 0 {
		last = time.Unix(0, ns)
		age = time.Since(last)
	}
	return CaptureStats{
		Captures:         captures,
		Failures:         s.failures.Load(),
		Rejected:         s.rejected.Load(),
		AvgCapture:       avg,
		AvgCaptureMicros: avgMicros,
		LastCapture:      last,
		LastCaptureAge:   age,
	}
}

func (s *Shooter) logStats() {
	if s.logger == nil {
		return
	}
	stats := s.Stats()
	s.logger.Debug("capture.stats",
		"captures", stats.Captures,
		"failures", stats.Failures,
		"rejected", stats.Rejected,
		"avg_capture", stats.AvgCapture,
	)
}
