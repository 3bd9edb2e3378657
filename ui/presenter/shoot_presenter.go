package presenter

import (
	"errors"
	"log/slog"

	"github.com/soocke/photo3d-go/domain/capture"
	"github.com/soocke/photo3d-go/domain/photo"
	"github.com/soocke/photo3d-go/domain/storage"
	"github.com/soocke/photo3d-go/ui/model"
)

// Shooter is the capture entry point a trigger drives.
type Shooter interface {
	Capture() (photo.Session, error)
}

// ShootPresenter turns trigger events (button or key) into captures and
// records their outcome in the shot model. One event produces one capture.
type ShootPresenter struct {
	shooter Shooter
	model   *model.ShotModel
	tag     string
	logger  *slog.Logger
}

func NewShootPresenter(shooter Shooter, m *model.ShotModel, tag string, logger *slog.Logger) *ShootPresenter {
	return &ShootPresenter{shooter: shooter, model: m, tag: tag, logger: logger}
}

// Trigger runs one capture on the caller's goroutine.
func (p *ShootPresenter) Trigger() {
	if p == nil || p.shooter == nil {
		return
	}
	sess, err := p.shooter.Capture()
	switch {
	case errors.Is(err, capture.ErrCaptureInProgress):
		p.model.ShotRejected()
		if p.logger != nil {
			p.logger.Debug("trigger ignored, capture running")
		}
	case err != nil:
		p.model.ShotFailed(err)
	default:
		p.model.ShotTaken(sess.FileName(p.tag, false), sess.Time)
	}
}

// OnWrite is a storage.Writer result hook.
func (p *ShootPresenter) OnWrite(r storage.Result) {
	if p == nil {
		return
	}
	if r.Err != nil {
		p.model.FileFailed(r.Err)
		return
	}
	p.model.FileSaved(r.Path)
}
