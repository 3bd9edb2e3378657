//go:build android

package storage

import "github.com/soocke/photo3d-go/config"

// DefaultPolicy on Android stages files and copies them into the public gallery.
const DefaultPolicy = config.PolicyGallery
