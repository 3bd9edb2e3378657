package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/soocke/photo3d-go/domain/photo"
)

// Result describes the outcome of one background write.
type Result struct {
	Session photo.Session
	Depth   bool
	Name    string
	Path    string // final path; empty on failure
	Size    int
	Err     error
	Elapsed time.Duration
}

// Stats summarises writer activity for instrumentation.
type Stats struct {
	Queued   uint64
	Written  uint64
	Failed   uint64
	InFlight int64
}

// Writer schedules file writes as background tasks. Save never blocks on I/O;
// failed writes are logged and abandoned, never retried.
type Writer struct {
	policy Policy
	tag    string
	logger *slog.Logger

	mu       sync.Mutex
	group    *errgroup.Group
	onResult []func(Result)

	queued   atomic.Uint64
	written  atomic.Uint64
	failed   atomic.Uint64
	inFlight atomic.Int64
}

// NewWriter returns a writer naming files with tag and persisting them via policy.
func NewWriter(policy Policy, tag string, logger *slog.Logger) *Writer {
	return &Writer{policy: policy, tag: tag, logger: logger, group: new(errgroup.Group)}
}

// OnResult registers fn to be called from the write goroutine after each write.
func (w *Writer) OnResult(fn func(Result)) {
	w.mu.Lock()
	w.onResult = append(w.onResult, fn)
	w.mu.Unlock()
}

// Save queues data for the color (depth=false) or depth file of session s.
// The task owns data; callers must not modify it afterwards.
func (w *Writer) Save(data []byte, depth bool, s photo.Session) {
	name := s.FileName(w.tag, depth)
	w.queued.Add(1)
	w.inFlight.Add(1)

	// The lock is held through Go so Wait cannot swap and wait on the group
	// while this task is being added to it.
	w.mu.Lock()
	defer w.mu.Unlock()
	hooks := append([]func(Result){}, w.onResult...)

	w.group.Go(func() (err error) {
		start := time.Now()
		res := Result{Session: s, Depth: depth, Name: name, Size: len(data)}
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("storage: write panic: %v", r)
				if w.logger != nil {
					w.logger.Error("write panic", "error", r, "stack", string(debug.Stack()))
				}
				res.Err = err
			}
			res.Elapsed = time.Since(start)
			w.finish(res, hooks)
		}()
		res.Path, res.Err = w.policy.Write(context.Background(), name, data)
		return res.Err
	})
}

func (w *Writer) finish(res Result, hooks []func(Result)) {
	w.inFlight.Add(-1)
	switch {
	case res.Err == nil:
		w.written.Add(1)
		if w.logger != nil {
			w.logger.Info("photo saved", "session", res.Session.ID, "path", res.Path, "size", humanize.Bytes(uint64(res.Size)), "elapsed", res.Elapsed)
		}
	case errors.Is(res.Err, ErrPathResolution):
		w.failed.Add(1)
		if w.logger != nil {
			w.logger.Debug("photo write aborted", "session", res.Session.ID, "file", res.Name, "error", res.Err)
		}
	default:
		w.failed.Add(1)
		if w.logger != nil {
			w.logger.Warn("photo write failed", "session", res.Session.ID, "file", res.Name, "error", res.Err)
		}
	}
	for _, fn := range hooks {
		fn(res)
	}
}

// Wait blocks until every write queued so far has finished and returns the
// first error among them. Writes queued after Wait starts are not waited on.
func (w *Writer) Wait() error {
	w.mu.Lock()
	g := w.group
	w.group = new(errgroup.Group)
	w.mu.Unlock()
	return g.Wait()
}

// Stats returns a snapshot of the writer counters.
func (w *Writer) Stats() Stats {
	return Stats{
		Queued:   w.queued.Load(),
		Written:  w.written.Load(),
		Failed:   w.failed.Load(),
		InFlight: w.inFlight.Load(),
	}
}
