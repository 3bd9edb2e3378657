package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/mitchellh/go-homedir"
)

// Resolver returns a storage root directory.
type Resolver func() (string, error)

// StaticDir resolves to path with a leading ~ expanded.
func StaticDir(path string) Resolver {
	return func() (string, error) {
		p, err := homedir.Expand(path)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrPathResolution, err)
		}
		return p, nil
	}
}

// ExecutableDir resolves to the directory holding the running binary.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPathResolution, err)
	}
	return filepath.Dir(exe), nil
}

// PublicStorage resolves the root that holds the DCIM gallery: the override
// when set, else $EXTERNAL_STORAGE, else the user's home directory.
func PublicStorage(override string) Resolver {
	if override != "" {
		return StaticDir(override)
	}
	return func() (string, error) {
		if p := os.Getenv("EXTERNAL_STORAGE"); p != "" {
			return p, nil
		}
		if xdg.Home == "" {
			return "", fmt.Errorf("%w: no external storage or home directory", ErrPathResolution)
		}
		return xdg.Home, nil
	}
}

// PrivateStorage resolves the app-private staging directory: the override
// when set, else <xdg data home>/<tag>.
func PrivateStorage(override, tag string) Resolver {
	if override != "" {
		return StaticDir(override)
	}
	return func() (string, error) {
		if xdg.DataHome == "" {
			return "", fmt.Errorf("%w: no data home", ErrPathResolution)
		}
		return filepath.Join(xdg.DataHome, tag), nil
	}
}

// Failing returns a resolver that always fails, for platforms without the API.
func Failing(reason string) Resolver {
	return func() (string, error) {
		return "", fmt.Errorf("%w: %s", ErrPathResolution, reason)
	}
}

func resolve(r Resolver) (string, error) {
	if r == nil {
		return "", fmt.Errorf("%w: no resolver", ErrPathResolution)
	}
	p, err := r()
	if err != nil {
		if !errors.Is(err, ErrPathResolution) {
			err = fmt.Errorf("%w: %v", ErrPathResolution, err)
		}
		return "", err
	}
	return p, nil
}
