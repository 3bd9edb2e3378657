package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/h2non/filetype"
)

// TempName is the staging file name inside private storage.
const TempName = "image.png"

const (
	defaultConfirmTimeout = 2 * time.Second
	confirmPoll           = 5 * time.Millisecond
)

var errNotConfirmed = errors.New("storage: staged file not confirmed")

// GalleryPolicy stages each file in private storage, then copies it into
// <public>/DCIM/<tag>/ where gallery apps pick it up, and removes the staged
// copy. All gallery writes share TempName so they run one at a time.
type GalleryPolicy struct {
	Tag     string
	Private Resolver
	Public  Resolver
	Logger  *slog.Logger

	ConfirmTimeout time.Duration

	mu sync.Mutex
}

// NewGalleryPolicy returns a gallery policy for the given program tag.
func NewGalleryPolicy(tag string, private, public Resolver, logger *slog.Logger) *GalleryPolicy {
	return &GalleryPolicy{Tag: tag, Private: private, Public: public, Logger: logger, ConfirmTimeout: defaultConfirmTimeout}
}

// GalleryDir returns <public>/DCIM/<tag>.
func (p *GalleryPolicy) GalleryDir() (string, error) {
	public, err := resolve(p.Public)
	if err != nil {
		return "", err
	}
	return filepath.Join(public, "DCIM", p.Tag), nil
}

func (p *GalleryPolicy) Write(ctx context.Context, name string, data []byte) (string, error) {
	gallery, err := p.GalleryDir()
	if err != nil {
		return "", err
	}
	private, err := resolve(p.Private)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.MkdirAll(private, 0o755); err != nil {
		return "", err
	}
	tmp := filepath.Join(private, TempName)
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	defer func() {
		if rmErr := os.Remove(tmp); rmErr != nil && !os.IsNotExist(rmErr) && p.Logger != nil {
			p.Logger.Warn("gallery temp cleanup", "path", tmp, "error", rmErr)
		}
	}()

	if err := p.confirm(ctx, tmp); err != nil {
		return "", err
	}
	if err := os.MkdirAll(gallery, 0o755); err != nil {
		return "", err
	}
	final := filepath.Join(gallery, name)
	if err := copyFile(tmp, final); err != nil {
		return "", fmt.Errorf("storage: copy to gallery: %w", err)
	}
	return final, nil
}

// confirm waits until the staged file is visible and carries a PNG header.
func (p *GalleryPolicy) confirm(ctx context.Context, path string) error {
	timeout := p.ConfirmTimeout
	if timeout <= 0 {
		timeout = defaultConfirmTimeout
	}
	deadline := time.Now().Add(timeout)
	for {
		if isPNG(path) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s", errNotConfirmed, path)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(confirmPoll):
		}
	}
}

func isPNG(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	head := make([]byte, 261)
	n, _ := io.ReadFull(f, head)
	return filetype.Is(head[:n], "png")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
