package app

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/soocke/photo3d-go/app/pipeline"
	"github.com/soocke/photo3d-go/config"
	"github.com/soocke/photo3d-go/debug"
	"github.com/soocke/photo3d-go/domain/photo"
	"github.com/soocke/photo3d-go/ui/model"
	"github.com/soocke/photo3d-go/ui/presenter"
	"github.com/soocke/photo3d-go/ui/view"
)

const debugLogInterval = 30 * time.Second

// AppContainer assembles the pipeline, models, presenters and the root view.
type AppContainer struct {
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger
	Pipeline   *pipeline.Pipeline
	Shots      *model.ShotModel
	Preview    *model.PreviewModel
	RootView   *view.RootView
	UI         view.UI

	// Presenters
	ShootPresenter   *presenter.ShootPresenter
	StatusPresenter  *presenter.StatusPresenter
	PreviewPresenter *presenter.PreviewPresenter
	OrbitPresenter   *presenter.OrbitPresenter
	ConfigPresenter  *presenter.ConfigPresenter
	Loop             *presenter.Loop

	watcher   *config.Watcher
	pending   atomic.Pointer[config.Config]
	stopDebug context.CancelFunc
}

// BuildContainer constructs all components. Widgets are created later by
// RootView.Build on the Tk goroutine.
func BuildContainer(cfg *config.Config, cfgPath string, logger *slog.Logger) (*AppContainer, error) {
	p, err := pipeline.Build(cfg, logger)
	if err != nil {
		return nil, err
	}
	c := &AppContainer{Config: cfg, ConfigPath: cfgPath, Logger: logger, Pipeline: p}
	c.Shots = model.NewShotModel()
	c.Preview = model.NewPreviewModel()

	c.ShootPresenter = presenter.NewShootPresenter(p.Shooter, c.Shots, cfg.ProgramTag, logger)
	p.Writer.OnResult(c.ShootPresenter.OnWrite)
	p.Shooter.OnCaptured(func(_ photo.Session, color, depth *image.RGBA) {
		c.Preview.Set(color, depth)
	})

	c.ConfigPresenter = presenter.NewConfigPresenter(cfg, cfgPath, logger)
	c.ConfigPresenter.OnApply(p.ApplyLive)

	// View
	c.RootView = view.NewRootView(c.ConfigPresenter, logger)
	c.UI = c.RootView

	c.StatusPresenter = presenter.NewStatusPresenter(c.Shots, p.Writer, c.UI)
	c.PreviewPresenter = presenter.NewPreviewPresenter(c.Preview, c.UI, view.ThumbW, view.ThumbH, logger)
	if p.Reference != nil {
		c.OrbitPresenter, err = presenter.NewOrbitPresenter(p.Reference, p.Renderer, view.ViewportW, view.ViewportH, c.UI, logger)
		if err != nil {
			c.Close()
			return nil, err
		}
	}
	c.Loop = presenter.NewLoop(c.StatusPresenter, c.PreviewPresenter, c.OrbitPresenter, nil)

	if cfgPath != "" {
		w, err := config.Watch(cfgPath, logger, func(next *config.Config) { c.pending.Store(next) })
		if err != nil {
			logger.Warn("config watch disabled", "path", cfgPath, "error", err)
		} else {
			c.watcher = w
		}
	}

	if cfg.Debug {
		ctx, cancel := context.WithCancel(context.Background())
		c.stopDebug = cancel
		debug.StartMemLogger(ctx, debugLogInterval, logger)
		debug.StartGoroutineLogger(ctx, debugLogInterval, logger)
	}
	return c, nil
}

// ApplyPending applies a config reloaded from disk since the last call. It
// runs on the Tk goroutine so captures never see a half-applied config.
func (c *AppContainer) ApplyPending() {
	next := c.pending.Swap(nil)
	if next == nil {
		return
	}
	*c.Config = *next
	c.Pipeline.ApplyLive(c.Config)
	if c.RootView != nil {
		c.RootView.RefreshConfig()
	}
}

// Close stops background work and waits for queued writes.
func (c *AppContainer) Close() error {
	var errs []error
	if c.watcher != nil {
		errs = append(errs, c.watcher.Close())
	}
	if c.PreviewPresenter != nil {
		c.PreviewPresenter.Close()
	}
	if c.stopDebug != nil {
		c.stopDebug()
	}
	errs = append(errs, c.Pipeline.Close())
	return errors.Join(errs...)
}
