package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick/ProcessFrame on the sub-presenters and invokes a
// scheduler callback. The zero value is usable (methods are nil-safe).
type Loop struct {
	Status   *StatusPresenter
	Preview  *PreviewPresenter
	Orbit    *OrbitPresenter
	Schedule func()
}

func NewLoop(status *StatusPresenter, preview *PreviewPresenter, orbit *OrbitPresenter, schedule func()) *Loop {
	return &Loop{Status: status, Preview: preview, Orbit: orbit, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.Orbit != nil {
		l.Orbit.Tick()
	}
	if l.Status != nil {
		l.Status.Tick(now)
	}
	if l.Preview != nil {
		l.Preview.ProcessFrame()
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
