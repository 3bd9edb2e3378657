//go:build !android

package storage

import "github.com/soocke/photo3d-go/config"

// DefaultPolicy on desktop writes next to the running executable.
const DefaultPolicy = config.PolicyDirect
