package presenter

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/soocke/photo3d-go/domain/storage"
	"github.com/soocke/photo3d-go/ui/model"
)

// WriterStats reports background write counters.
type WriterStats interface {
	Stats() storage.Stats
}

// StatusView displays the status line and shot counters.
type StatusView interface {
	SetStatusLabel(text string)
	SetShots(count int, last string)
}

// StatusPresenter formats the shot model and writer counters for the view.
type StatusPresenter struct {
	shots  *model.ShotModel
	writer WriterStats
	view   StatusView

	started      bool
	lastVersion  uint64
	lastInFlight int64
	lastText     string
	lastAge      string
}

func NewStatusPresenter(shots *model.ShotModel, writer WriterStats, view StatusView) *StatusPresenter {
	return &StatusPresenter{shots: shots, writer: writer, view: view}
}

// Tick pushes changed values to the view.
func (p *StatusPresenter) Tick(now time.Time) {
	if p == nil || p.shots == nil || p.view == nil {
		return
	}
	snap := p.shots.Snapshot()
	var ws storage.Stats
	if p.writer != nil {
		ws = p.writer.Stats()
	}
	changed := !p.started || snap.Version != p.lastVersion
	p.started = true
	if changed || ws.InFlight != p.lastInFlight {
		p.lastVersion = snap.Version
		p.lastInFlight = ws.InFlight
		if text := statusText(snap, ws); text != p.lastText {
			p.lastText = text
			p.view.SetStatusLabel(text)
		}
	}
	age := "never"
	if !snap.LastShot.IsZero() {
		age = humanize.RelTime(snap.LastShot, now, "ago", "from now")
	}
	if age != p.lastAge || changed {
		p.lastAge = age
		p.view.SetShots(snap.Shots, age)
	}
}

func statusText(s model.ShotSnapshot, ws storage.Stats) string {
	switch {
	case s.LastError != "":
		return "Error: " + s.LastError
	case ws.InFlight > 0:
		return fmt.Sprintf("Saving %s (%d pending)", s.LastName, ws.InFlight)
	case len(s.Saved) > 0:
		return "Saved " + filepath.Base(s.Saved[0])
	case s.Shots > 0:
		return "Captured " + s.LastName
	default:
		return "Ready"
	}
}
