package storage

import (
	"context"
	"os"
	"path/filepath"
)

// DirectPolicy writes files straight into a fixed directory.
type DirectPolicy struct {
	Root Resolver
}

func (p *DirectPolicy) Write(ctx context.Context, name string, data []byte) (string, error) {
	root, err := resolve(p.Root)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(root, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
