package view

import (
	"image"
	"log/slog"

	"github.com/soocke/photo3d-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	form   ConfigForm
	logger *slog.Logger

	// Subviews
	Shots       ShotStats
	ConfigPanel ConfigPanel
	Preview     CapturePreview

	// Widgets
	StatusLabel *TLabelWidget
	ShootButton *TButtonWidget
}

// UI abstracts the subset of view operations needed by presenters, enabling decoupling
// from the concrete RootView implementation.
type UI interface {
	SetStatusLabel(text string)
	SetShots(count int, last string)
	UpdatePreview(color, depth image.Image)
	UpdateViewport(img image.Image)
}

var _ UI = (*RootView)(nil)

func NewRootView(form ConfigForm, logger *slog.Logger) *RootView {
	return &RootView{form: form, logger: logger}
}

// Build constructs the layout. Handlers are invoked on user actions.
func (rv *RootView) Build(onShoot func(), onExit func()) {
	if rv == nil {
		return
	}
	// Row 0: shot stats, status label, buttons frame
	rv.Shots = NewShotStats(nil, 0, 0)
	rv.StatusLabel = TLabel(Txt("Ready"), Style(theme.StyleStateLabel))
	Grid(rv.StatusLabel, Row(0), Column(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(3), Rowspan(2), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	rv.ShootButton = TButton(Txt("Shoot 3D Photo"), Style(theme.StylePrimaryButton), Command(onShoot))
	Grid(rv.ShootButton, In(btnFrame), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	exitBtn := TButton(Txt("Exit"), Style(theme.StyleDangerButton), Command(onExit))
	Grid(exitBtn, In(btnFrame), Row(1), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	// Preview rows (viewport, then thumbnails)
	rv.Preview = NewCapturePreview(1)

	// Config panel rows
	rv.ConfigPanel = NewConfigPanel(rv.form)
	rv.ConfigPanel.Build(3)
}

// SetStatusLabel updates the status label text.
func (rv *RootView) SetStatusLabel(text string) {
	if rv != nil && rv.StatusLabel != nil {
		rv.StatusLabel.Configure(Txt(text))
	}
}

// SetShots updates the photo count and last-shot age.
func (rv *RootView) SetShots(count int, last string) {
	if rv == nil || rv.Shots == nil {
		return
	}
	rv.Shots.SetCount(count)
	rv.Shots.SetLast(last)
}

// UpdatePreview proxies to the capture preview thumbnails.
func (rv *RootView) UpdatePreview(color, depth image.Image) {
	if rv != nil && rv.Preview != nil {
		rv.Preview.UpdatePair(color, depth)
	}
}

// UpdateViewport proxies to the live viewport.
func (rv *RootView) UpdateViewport(img image.Image) {
	if rv != nil && rv.Preview != nil {
		rv.Preview.UpdateViewport(img)
	}
}

// Editing reports whether the user is typing into the config form.
func (rv *RootView) Editing() bool {
	return rv != nil && rv.ConfigPanel != nil && rv.ConfigPanel.Editing()
}

// RefreshConfig reloads the config form after an external change.
func (rv *RootView) RefreshConfig() {
	if rv != nil && rv.ConfigPanel != nil {
		rv.ConfigPanel.Refresh()
	}
}
