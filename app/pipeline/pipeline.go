// Package pipeline assembles the capture pipeline from configuration: scene,
// renderer, shooter, writer and journal. It has no UI dependencies.
package pipeline

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/soocke/photo3d-go/assets"
	"github.com/soocke/photo3d-go/config"
	"github.com/soocke/photo3d-go/domain/capture"
	"github.com/soocke/photo3d-go/domain/depth"
	"github.com/soocke/photo3d-go/domain/journal"
	"github.com/soocke/photo3d-go/domain/photo"
	"github.com/soocke/photo3d-go/domain/scene"
	"github.com/soocke/photo3d-go/domain/storage"
)

// ErrMissingCamera reports that the configured capture camera is not in the scene.
var ErrMissingCamera = errors.New("pipeline: capture camera not found in scene")

// Pipeline holds the assembled capture components.
type Pipeline struct {
	Config    *config.Config
	Logger    *slog.Logger
	Scene     *scene.Scene
	Renderer  *scene.Renderer
	Camera    *scene.Camera
	Reference *scene.Camera // nil when the scene has no reference camera
	Sessions  *photo.Sessions
	Policy    storage.Policy
	Writer    *storage.Writer
	Journal   *journal.Store // nil unless journal_path is set
	Shooter   *capture.Shooter
}

// Build validates cfg and wires every component. Missing required pieces
// (scene, capture camera, photo size) are startup errors.
func Build(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{Config: cfg, Logger: logger}

	s, err := loadScene(cfg)
	if err != nil {
		return nil, err
	}
	p.Scene = s
	p.Scene.Backdrop = loadBackdrop(cfg.Backdrop, logger)
	p.Renderer = scene.NewRenderer(s)

	p.Camera = s.Camera(cfg.CaptureCamera)
	if p.Camera == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingCamera, cfg.CaptureCamera)
	}
	if cfg.ReferenceCamera != "" {
		p.Reference = s.Camera(cfg.ReferenceCamera)
		if p.Reference == nil && logger != nil {
			logger.Warn("reference camera not found, capture camera keeps its own pose", "camera", cfg.ReferenceCamera)
		}
	}

	p.Policy, err = storage.NewPolicy(cfg, logger)
	if err != nil {
		return nil, err
	}
	p.Writer = storage.NewWriter(p.Policy, cfg.ProgramTag, logger)

	if cfg.JournalPath != "" {
		path, err := storage.StaticDir(cfg.JournalPath)()
		if err != nil {
			return nil, err
		}
		p.Journal, err = journal.Open(path, logger)
		if err != nil {
			return nil, err
		}
		p.Writer.OnResult(p.Journal.Record)
	}

	p.Sessions = photo.NewSessions(nil, cfg.UniqueNames)
	p.Shooter, err = capture.NewShooter(capture.Options{
		Host:      p.Renderer,
		Camera:    p.Camera,
		Reference: p.Reference,
		Width:     cfg.PhotoWidth,
		Height:    cfg.PhotoHeight,
		Stage:     StageFor(cfg),
		Sink:      p.Writer,
		Sessions:  p.Sessions,
		Logger:    logger,
	})
	if err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// StageFor returns the depth mapping configured by cfg.
func StageFor(cfg *config.Config) depth.Stage {
	return depth.Stage{Multiplier: cfg.DepthMultiplier, TransparentBackground: cfg.TransparentBackground}
}

// ApplyLive pushes the settings that take effect without a restart. It must
// run on the goroutine that triggers captures.
func (p *Pipeline) ApplyLive(cfg *config.Config) {
	p.Shooter.SetStage(StageFor(cfg))
	p.Sessions.SetUnique(cfg.UniqueNames)
	if p.Logger != nil {
		p.Logger.Info("config applied", "depth_multiplier", cfg.DepthMultiplier, "transparent_background", cfg.TransparentBackground, "unique_names", cfg.UniqueNames)
	}
}

// Close waits for queued writes and closes the journal.
func (p *Pipeline) Close() error {
	var errs []error
	if p.Writer != nil {
		if err := p.Writer.Wait(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.Journal != nil {
		if err := p.Journal.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func loadScene(cfg *config.Config) (*scene.Scene, error) {
	if cfg.ScenePath == "" {
		return assets.DefaultScene()
	}
	path, err := storage.StaticDir(cfg.ScenePath)()
	if err != nil {
		return nil, err
	}
	s, err := scene.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: load scene: %w", err)
	}
	return s, nil
}

// loadBackdrop resolves the backdrop setting. Failures leave the camera
// clear color in place.
func loadBackdrop(setting string, logger *slog.Logger) (img image.Image) {
	var err error
	switch setting {
	case "", config.BackdropNone:
		return nil
	case config.BackdropScreen:
		img, err = scene.ScreenBackdrop()
	default:
		img, err = scene.FileBackdrop(setting)
	}
	if err != nil {
		if logger != nil {
			logger.Warn("backdrop unavailable", "backdrop", setting, "error", err)
		}
		return nil
	}
	return img
}
