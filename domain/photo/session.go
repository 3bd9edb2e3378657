// Package photo holds the capture session shared by the color and depth
// halves of one 3D photo, and the naming rules that tie them together.
package photo

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DepthSuffix marks the depth half of a pair, inserted before the extension.
const DepthSuffix = "_depth"

// Session is a single capture: one timestamp for both the color and depth files.
type Session struct {
	ID   uuid.UUID
	Time time.Time
	// Seq is non-zero only for the second and later captures that land in the
	// same wall-clock second, see Sessions.
	Seq int
}

// BaseName returns the file name stem shared by both halves of the pair.
// Date and time fields are not zero padded.
func (s Session) BaseName(tag string) string {
	t := s.Time
	name := fmt.Sprintf("%s_Photo3D_%d_%d_%d_%d_%d_%d", tag, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
	if s.Seq > 0 {
		name = fmt.Sprintf("%s_%d", name, s.Seq)
	}
	return name
}

// FileName returns the PNG file name for the color (depth=false) or depth half.
func (s Session) FileName(tag string, depth bool) string {
	if depth {
		return s.BaseName(tag) + DepthSuffix + ".png"
	}
	return s.BaseName(tag) + ".png"
}

// Sessions hands out capture sessions from a clock.
//
// With Unique set, captures within the same second get increasing Seq values
// so the second pair does not overwrite the first.
type Sessions struct {
	Now    func() time.Time
	Unique bool

	mu      sync.Mutex
	lastSec int64
	seq     int
}

// NewSessions returns an allocator using now, or time.Now when nil.
func NewSessions(now func() time.Time, unique bool) *Sessions {
	if now == nil {
		now = time.Now
	}
	return &Sessions{Now: now, Unique: unique}
}

// Next creates a new session stamped with the current time.
func (s *Sessions) Next() Session {
	now := s.Now()
	sess := Session{ID: uuid.New(), Time: now}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Unique {
		return sess
	}
	sec := now.Unix()
	if sec == s.lastSec {
		s.seq++
	} else {
		s.lastSec = sec
		s.seq = 0
	}
	sess.Seq = s.seq
	return sess
}

// SetUnique toggles same-second suffixes for later sessions.
func (s *Sessions) SetUnique(unique bool) {
	s.mu.Lock()
	s.Unique = unique
	s.mu.Unlock()
}
