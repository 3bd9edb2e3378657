// Package capture runs the two-pass photo pipeline: a color render and a
// depth render of the same camera, each read back, PNG encoded and handed to
// a writer under one shared session.
package capture

import (
	"errors"
	"image"

	"github.com/soocke/photo3d-go/domain/photo"
	"github.com/soocke/photo3d-go/domain/scene"
)

var (
	// ErrCaptureInProgress rejects a trigger that arrives while a capture runs.
	ErrCaptureInProgress = errors.New("capture: capture already in progress")
	// ErrNoCamera reports a missing capture camera at construction.
	ErrNoCamera = errors.New("capture: capture camera not configured")
	// ErrNoHost reports a missing render host at construction.
	ErrNoHost = errors.New("capture: render host not configured")
	// ErrNoSink reports a missing writer at construction.
	ErrNoSink = errors.New("capture: writer not configured")
)

// Host renders cam into its bound target texture and invokes post once per
// frame with the raw frame and the destination image.
type Host interface {
	Render(cam *scene.Camera, post scene.PostprocessFunc) error
}

// Encoder turns a read-back image into file bytes.
type Encoder interface {
	Encode(img image.Image) ([]byte, error)
}

// Sink accepts encoded files. Save must not block on I/O.
type Sink interface {
	Save(data []byte, depth bool, s photo.Session)
}

// CapturedFunc receives the read-back pair of a finished capture. The images
// belong to the callee.
type CapturedFunc func(s photo.Session, color, depth *image.RGBA)
