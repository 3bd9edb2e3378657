// Package storage persists encoded photos. A Writer schedules each file as a
// background task and hands it to a Policy that knows where files go on the
// current platform.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soocke/photo3d-go/config"
)

// ErrPathResolution reports that a storage root could not be determined.
// Writes failing with it are aborted before anything is written.
var ErrPathResolution = errors.New("storage: path resolution failed")

// Policy writes one named file and returns its final path.
type Policy interface {
	Write(ctx context.Context, name string, data []byte) (string, error)
}

// NewPolicy builds the policy selected by cfg.StoragePolicy. "auto" resolves to
// DefaultPolicy, which depends on the build configuration.
func NewPolicy(cfg *config.Config, logger *slog.Logger) (Policy, error) {
	kind := cfg.StoragePolicy
	if kind == "" || kind == config.PolicyAuto {
		kind = DefaultPolicy
	}
	switch kind {
	case config.PolicyDirect:
		root := ExecutableDir
		if cfg.OutputDir != "" {
			root = StaticDir(cfg.OutputDir)
		}
		return &DirectPolicy{Root: root}, nil
	case config.PolicyGallery:
		return NewGalleryPolicy(cfg.ProgramTag,
			PrivateStorage(cfg.PrivateDir, cfg.ProgramTag),
			PublicStorage(cfg.GalleryRoot),
			logger), nil
	default:
		return nil, fmt.Errorf("storage: unknown policy %q", kind)
	}
}
