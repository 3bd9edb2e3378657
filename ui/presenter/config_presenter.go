package presenter

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/photo3d-go/config"
)

// Config form field ids shared with the config panel.
const (
	FieldDepthMultiplier       = "depthMultiplier"
	FieldTransparentBackground = "transparentBackground"
	FieldUniqueNames           = "uniqueNames"
	FieldProgramTag            = "programTag"
	FieldPhotoWidth            = "photoWidth"
	FieldPhotoHeight           = "photoHeight"
)

// ConfigField describes one editable row of the config panel.
type ConfigField struct {
	ID    string
	Label string
	Value string
}

// ConfigPresenter parses the config form, persists valid changes and
// notifies listeners so live settings take effect without a restart.
type ConfigPresenter struct {
	cfg     *config.Config
	path    string
	logger  *slog.Logger
	onApply []func(*config.Config)
}

func NewConfigPresenter(cfg *config.Config, path string, logger *slog.Logger) *ConfigPresenter {
	return &ConfigPresenter{cfg: cfg, path: path, logger: logger}
}

// OnApply registers fn to receive the applied configuration.
func (p *ConfigPresenter) OnApply(fn func(*config.Config)) {
	p.onApply = append(p.onApply, fn)
}

// Fields returns the form rows for the current configuration.
func (p *ConfigPresenter) Fields() []ConfigField {
	c := p.cfg
	return []ConfigField{
		{FieldDepthMultiplier, "Depth Multiplier", fmt.Sprintf("%.2f", c.DepthMultiplier)},
		{FieldTransparentBackground, "Transparent Background (true/false)", fmt.Sprintf("%t", c.TransparentBackground)},
		{FieldUniqueNames, "Unique Names (true/false)", fmt.Sprintf("%t", c.UniqueNames)},
		{FieldProgramTag, "Program Tag (restart)", c.ProgramTag},
		{FieldPhotoWidth, "Photo Width (restart)", strconv.Itoa(c.PhotoWidth)},
		{FieldPhotoHeight, "Photo Height (restart)", strconv.Itoa(c.PhotoHeight)},
	}
}

// Apply parses values keyed by field id. Unparseable fields keep their
// previous value. An invalid result is rejected without touching the config.
func (p *ConfigPresenter) Apply(values map[string]string) error {
	if p == nil || p.cfg == nil {
		return nil
	}
	cfg := *p.cfg // copy
	if f, ok := parseFloatField(values[FieldDepthMultiplier]); ok {
		cfg.DepthMultiplier = float32(f)
	}
	if b, ok := parseBoolLoose(values[FieldTransparentBackground]); ok {
		cfg.TransparentBackground = b
	}
	if b, ok := parseBoolLoose(values[FieldUniqueNames]); ok {
		cfg.UniqueNames = b
	}
	if v := strings.TrimSpace(values[FieldProgramTag]); v != "" {
		cfg.ProgramTag = v
	}
	if i, ok := parseIntField(values[FieldPhotoWidth]); ok {
		cfg.PhotoWidth = i
	}
	if i, ok := parseIntField(values[FieldPhotoHeight]); ok {
		cfg.PhotoHeight = i
	}
	if err := cfg.Validate(); err != nil {
		if p.logger != nil {
			p.logger.Warn("config rejected", "error", err)
		}
		return err
	}
	*p.cfg = cfg
	if p.path != "" {
		if err := p.cfg.Save(p.path); err != nil {
			if p.logger != nil {
				p.logger.Error("config save failed", "error", err)
			}
		} else if p.logger != nil {
			p.logger.Info("config saved", "path", p.path)
		}
	}
	for _, fn := range p.onApply {
		fn(p.cfg)
	}
	return nil
}

// parsing helpers (unexported)
func parseFloatField(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
func parseIntField(s string) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return i, true
}
func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on", "t":
		return true, true
	case "false", "0", "no", "n", "off", "f":
		return false, true
	default:
		return false, false
	}
}
