package view

import (
	"strings"

	"github.com/soocke/photo3d-go/ui/presenter"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigForm supplies the rows of the panel and applies edited values.
type ConfigForm interface {
	Fields() []presenter.ConfigField
	Apply(values map[string]string) error
}

// ConfigPanel encapsulates the configuration form widgets.
type ConfigPanel interface {
	Build(startRow int) (endRow int) // constructs widgets starting at startRow, returns next free row
	ApplyChanges()
	Refresh()
	Editing() bool
}

type configPanel struct {
	form     ConfigForm
	applyBtn *ButtonWidget
	widgets  map[string]*TextWidget // keyed by field id
	focused  int                    // text widgets holding focus
}

// NewConfigPanel creates the view bound to form.
func NewConfigPanel(form ConfigForm) ConfigPanel {
	return &configPanel{form: form, widgets: make(map[string]*TextWidget)}
}

func (v *configPanel) Build(startRow int) (row int) {
	row = startRow
	for _, f := range v.form.Fields() {
		lbl := Label(Txt(f.Label), Anchor("w"))
		Grid(lbl, Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(16))
		Grid(w, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		setText(w, f.Value)
		Bind(w, "<FocusIn>", Command(func() { v.focused++ }))
		Bind(w, "<FocusOut>", Command(func() {
			if v.focused > 0 {
				v.focused--
			}
		}))
		v.widgets[f.ID] = w
		row++
	}
	v.applyBtn = Button(Txt("Apply Changes"), Command(func() { v.ApplyChanges() }))
	Grid(v.applyBtn, Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return row
}

// Refresh reloads widget text from the form, e.g. after an external config change.
func (v *configPanel) Refresh() {
	for _, f := range v.form.Fields() {
		if w := v.widgets[f.ID]; w != nil {
			setText(w, f.Value)
		}
	}
}

// Editing reports whether a form field has keyboard focus, so global key
// bindings can stay out of the way while the user types.
func (v *configPanel) Editing() bool { return v.focused > 0 }

func (v *configPanel) ApplyChanges() {
	values := make(map[string]string, len(v.widgets))
	for id, w := range v.widgets {
		values[id] = strings.TrimSpace(strings.Join(w.Get("1.0", END), ""))
	}
	if err := v.form.Apply(values); err != nil {
		// restore the last valid values
		v.Refresh()
	}
}

func setText(w *TextWidget, s string) {
	w.Delete("1.0", END)
	w.Insert("1.0", s)
}
