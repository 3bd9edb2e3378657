package assets

import (
	_ "embed"
	"fmt"

	"github.com/soocke/photo3d-go/domain/scene"
)

// DefaultSceneYAML contains the raw YAML of the built-in demo scene.
//
//go:embed default_scene.yaml
var DefaultSceneYAML []byte

// DefaultScene parses the embedded scene.
func DefaultScene() (*scene.Scene, error) {
	if len(DefaultSceneYAML) == 0 {
		return nil, fmt.Errorf("embedded default_scene.yaml is empty")
	}
	return scene.Parse(DefaultSceneYAML)
}
