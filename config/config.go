package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Storage policy names accepted by StoragePolicy.
const (
	PolicyAuto    = "auto"
	PolicyDirect  = "direct"
	PolicyGallery = "gallery"
)

// Backdrop names accepted by Backdrop. Any other value is treated as an image path.
const (
	BackdropNone   = "none"
	BackdropScreen = "screen"
)

// Config holds runtime configuration for the shooter and app behavior.
// Fields may be loaded from a JSON, YAML or TOML file chosen by extension.
type Config struct {
	Debug bool `json:"debug" yaml:"debug" toml:"debug"`

	// Photo parameters
	DepthMultiplier       float32 `json:"depth_multiplier" yaml:"depth_multiplier" toml:"depth_multiplier"`
	PhotoWidth            int     `json:"photo_width" yaml:"photo_width" toml:"photo_width"`
	PhotoHeight           int     `json:"photo_height" yaml:"photo_height" toml:"photo_height"`
	ProgramTag            string  `json:"program_tag" yaml:"program_tag" toml:"program_tag"`
	TransparentBackground bool    `json:"transparent_background" yaml:"transparent_background" toml:"transparent_background"`
	UniqueNames           bool    `json:"unique_names" yaml:"unique_names" toml:"unique_names"`

	// Scene wiring
	CaptureCamera   string `json:"capture_camera" yaml:"capture_camera" toml:"capture_camera"`
	ReferenceCamera string `json:"reference_camera" yaml:"reference_camera" toml:"reference_camera"`
	ScenePath       string `json:"scene_path" yaml:"scene_path" toml:"scene_path"`
	Backdrop        string `json:"backdrop" yaml:"backdrop" toml:"backdrop"`

	// Persistence
	StoragePolicy string `json:"storage_policy" yaml:"storage_policy" toml:"storage_policy"`
	OutputDir     string `json:"output_dir" yaml:"output_dir" toml:"output_dir"`
	GalleryRoot   string `json:"gallery_root" yaml:"gallery_root" toml:"gallery_root"`
	PrivateDir    string `json:"private_dir" yaml:"private_dir" toml:"private_dir"`
	JournalPath   string `json:"journal_path" yaml:"journal_path" toml:"journal_path"`

	// Trigger
	TriggerKey string `json:"trigger_key" yaml:"trigger_key" toml:"trigger_key"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:                 false,
		DepthMultiplier:       5,
		PhotoWidth:            1920,
		PhotoHeight:           1080,
		ProgramTag:            "Photo3DApp",
		TransparentBackground: false,
		UniqueNames:           true,
		CaptureCamera:         "photo",
		ReferenceCamera:       "main",
		ScenePath:             "",
		Backdrop:              BackdropNone,
		StoragePolicy:         PolicyAuto,
		OutputDir:             "",
		GalleryRoot:           "",
		PrivateDir:            "",
		JournalPath:           "",
		TriggerKey:            "p",
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	if math32.IsNaN(c.DepthMultiplier) || math32.IsInf(c.DepthMultiplier, 0) {
		return fmt.Errorf("config: depth_multiplier must be finite, got %v", c.DepthMultiplier)
	}
	if c.PhotoWidth <= 0 {
		c.PhotoWidth = 1920
	}
	if c.PhotoHeight <= 0 {
		c.PhotoHeight = 1080
	}
	c.ProgramTag = strings.TrimSpace(c.ProgramTag)
	if c.ProgramTag == "" {
		c.ProgramTag = "Photo3DApp"
	}
	if strings.ContainsAny(c.ProgramTag, `/\`) {
		return fmt.Errorf("config: program_tag %q must not contain path separators", c.ProgramTag)
	}
	if c.CaptureCamera == "" {
		c.CaptureCamera = "photo"
	}
	switch c.StoragePolicy {
	case PolicyAuto, PolicyDirect, PolicyGallery:
	case "":
		c.StoragePolicy = PolicyAuto
	default:
		return fmt.Errorf("config: unknown storage_policy %q", c.StoragePolicy)
	}
	if c.Backdrop == "" {
		c.Backdrop = BackdropNone
	}
	c.TriggerKey = strings.TrimSpace(c.TriggerKey)
	if c.TriggerKey == "" {
		c.TriggerKey = "p"
	}
	return nil
}

type format int

const (
	formatJSON format = iota
	formatYAML
	formatTOML
)

func formatOf(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	case ".toml":
		return formatTOML
	default:
		return formatJSON
	}
}

// Load attempts to read configuration from the given file path. If the file does not
// exist it returns DefaultConfig(). On decode error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	loaded := DefaultConfig()
	if err := decode(formatOf(path), data, loaded); err != nil {
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := loaded.Validate(); err != nil {
		return cfg, err
	}
	return loaded, nil
}

func decode(f format, data []byte, cfg *Config) error {
	switch f {
	case formatYAML:
		return yaml.Unmarshal(data, cfg)
	case formatTOML:
		return toml.Unmarshal(data, cfg)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		return dec.Decode(cfg)
	}
}

// Save writes the configuration to the given path in the format implied by its extension.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	var (
		data []byte
		err  error
	)
	switch formatOf(path) {
	case formatYAML:
		data, err = yaml.Marshal(c)
	case formatTOML:
		data, err = toml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	}
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
