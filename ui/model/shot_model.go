package model

import (
	"sync"
	"time"
)

// ShotModel records the outcome of triggers and background writes. Writer
// results arrive on worker goroutines, so access is synchronized.
// The zero value is ready to use.
type ShotModel struct {
	mu sync.Mutex

	shots     int
	rejected  int
	lastName  string
	lastShot  time.Time
	lastError string
	saved     []string // most recent first
	failed    int
	version   uint64
}

// maxSaved bounds the recent file list.
const maxSaved = 8

// NewShotModel returns a pointer to a ready-to-use ShotModel.
func NewShotModel() *ShotModel { return &ShotModel{} }

// ShotTaken records a successful capture whose color file is named name.
func (m *ShotModel) ShotTaken(name string, at time.Time) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shots++
	m.lastName = name
	m.lastShot = at
	m.lastError = ""
	m.version++
}

// ShotRejected counts a trigger ignored because a capture was running.
func (m *ShotModel) ShotRejected() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.rejected++
	m.version++
	m.mu.Unlock()
}

// ShotFailed records a capture error.
func (m *ShotModel) ShotFailed(err error) {
	if m == nil || err == nil {
		return
	}
	m.mu.Lock()
	m.lastError = err.Error()
	m.version++
	m.mu.Unlock()
}

// FileSaved records a finished write.
func (m *ShotModel) FileSaved(path string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append([]string{path}, m.saved...)
	if len(m.saved) > maxSaved {
		m.saved = m.saved[:maxSaved]
	}
	m.version++
}

// FileFailed records a write that was abandoned.
func (m *ShotModel) FileFailed(err error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.failed++
	if err != nil {
		m.lastError = err.Error()
	}
	m.version++
	m.mu.Unlock()
}

// ShotSnapshot is a copy of the model state.
type ShotSnapshot struct {
	Shots     int
	Rejected  int
	Failed    int
	LastName  string
	LastShot  time.Time
	LastError string
	Saved     []string
	Version   uint64
}

// Snapshot returns a copy of the current state.
func (m *ShotModel) Snapshot() ShotSnapshot {
	if m == nil {
		return ShotSnapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return ShotSnapshot{
		Shots:     m.shots,
		Rejected:  m.rejected,
		Failed:    m.failed,
		LastName:  m.lastName,
		LastShot:  m.lastShot,
		LastError: m.lastError,
		Saved:     append([]string(nil), m.saved...),
		Version:   m.version,
	}
}
