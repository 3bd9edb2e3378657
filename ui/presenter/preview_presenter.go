package presenter

import (
	"image"
	"log/slog"
	"sync"

	"github.com/soocke/photo3d-go/ui/images"
	"github.com/soocke/photo3d-go/ui/model"
)

// PreviewView shows thumbnails of the last captured pair.
type PreviewView interface {
	UpdatePreview(color, depth image.Image)
}

type previewTask struct {
	version      uint64
	color, depth image.Image
}

type previewResult struct {
	version      uint64
	color, depth image.Image
}

// PreviewPresenter scales captured pairs into thumbnails on a worker
// goroutine and hands them to the view from the UI tick.
type PreviewPresenter struct {
	Model  *model.PreviewModel
	View   PreviewView
	MaxW   int
	MaxH   int
	logger *slog.Logger

	workerOnce  sync.Once
	workCh      chan previewTask
	resultCh    chan previewResult
	sentVersion uint64
}

func NewPreviewPresenter(m *model.PreviewModel, view PreviewView, maxW, maxH int, logger *slog.Logger) *PreviewPresenter {
	return &PreviewPresenter{
		Model:    m,
		View:     view,
		MaxW:     maxW,
		MaxH:     maxH,
		logger:   logger,
		workCh:   make(chan previewTask, 1),
		resultCh: make(chan previewResult, 1),
	}
}

// ProcessFrame schedules new pairs for scaling and applies finished thumbnails.
func (p *PreviewPresenter) ProcessFrame() {
	if p == nil || p.Model == nil || p.View == nil {
		return
	}
	p.workerOnce.Do(func() { go p.worker() })

	select {
	case res := <-p.resultCh:
		p.View.UpdatePreview(res.color, res.depth)
	default:
	}

	color, depth, version := p.Model.Latest()
	if version == 0 || version == p.sentVersion {
		return
	}
	select {
	case p.workCh <- previewTask{version: version, color: color, depth: depth}:
		p.sentVersion = version
	default:
		// worker busy; retry next tick
	}
}

func (p *PreviewPresenter) worker() {
	for task := range p.workCh {
		res := previewResult{version: task.version}
		func() {
			defer func() {
				if r := recover(); r != nil && p.logger != nil {
					p.logger.Error("preview worker panic", "error", r)
				}
			}()
			res.color = images.ScaleToFit(task.color, p.MaxW, p.MaxH)
			res.depth = images.ScaleToFit(task.depth, p.MaxW, p.MaxH)
		}()
		// keep only the newest result
		select {
		case <-p.resultCh:
		default:
		}
		p.resultCh <- res
	}
}

// Close stops the worker.
func (p *PreviewPresenter) Close() {
	if p == nil {
		return
	}
	p.workerOnce.Do(func() {})
	close(p.workCh)
}
