// Package app hosts the Tk window: it builds the container, binds the trigger
// key and drives the periodic update loop on the Tk goroutine.
package app

import (
	"fmt"
	"strings"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/photo3d-go/ui/theme"
)

const tick = 100 * time.Millisecond

// orbitKeys are forwarded to the orbit presenter.
var orbitKeys = []string{"Left", "Right", "Up", "Down", "plus", "equal", "KP_Add", "minus", "KP_Subtract"}

type app struct {
	c       *AppContainer
	title   string
	width   int
	height  int
	afterID string
	closed  bool
}

func NewApp(title string, width, height int, c *AppContainer) *app {
	return &app{c: c, title: title, width: width, height: height}
}

// Start builds the window and blocks until it is closed. Queued writes are
// flushed before it returns.
func (a *app) Start() error {
	App.WmTitle(a.title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", a.width, a.height))

	theme.InitStyles()
	a.c.RootView.Build(a.trigger, a.exitHandler)
	a.bindKeys()

	a.scheduleUpdate()
	App.Wait()
	return a.c.Close()
}

func (a *app) bindKeys() {
	for _, key := range triggerKeys(a.c.Config.TriggerKey) {
		Bind(App, fmt.Sprintf("<KeyPress-%s>", key), Command(a.trigger))
	}
	if orbit := a.c.OrbitPresenter; orbit != nil {
		for _, key := range orbitKeys {
			Bind(App, fmt.Sprintf("<KeyPress-%s>", key), Command(func() {
				if !a.c.RootView.Editing() {
					orbit.OnKey(key)
				}
			}))
		}
	}
	Bind(App, "<F2>", Command(func() { theme.ToggleDark() }))
}

// trigger runs one capture unless the user is typing into the config form.
func (a *app) trigger() {
	if a.c.RootView.Editing() {
		return
	}
	a.c.ShootPresenter.Trigger()
}

func (a *app) update() {
	if a.closed {
		return
	}
	a.c.ApplyPending()
	a.c.Loop.Tick()
	a.scheduleUpdate()
}

func (a *app) exitHandler() {
	if a.closed {
		return
	}
	a.closed = true
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	Destroy(App)
}

func (a *app) scheduleUpdate() {
	// TclAfter keeps updates on Tk's event loop thread.
	a.afterID = TclAfter(tick, a.update)
}

// triggerKeys returns the keysyms bound for key. Letters are bound in both
// cases so Caps Lock and Shift do not matter.
func triggerKeys(key string) []string {
	lower, upper := strings.ToLower(key), strings.ToUpper(key)
	if len(key) == 1 && lower != upper {
		return []string{lower, upper}
	}
	return []string{key}
}
