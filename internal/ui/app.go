// Package ui is the DeskMate shell: a borderless Gio window whose chrome
// (title bar, sidebar, status bar, log pane) and content panels are all
// layouts driven by the composition engine in internal/layouts. The App
// host owns the window event loop, the theme, the config store and the
// shared background services, and injects a Manager that decides what is
// visible each frame.
package ui

import (
	"fmt"
	"image"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"gioui.org/app"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/x/explorer"
	"github.com/google/uuid"
	"github.com/oligo/gioview/theme"

	"github.com/OpenDeskLab/DeskMate/internal/clipwatch"
	"github.com/OpenDeskLab/DeskMate/internal/config"
	"github.com/OpenDeskLab/DeskMate/internal/layouts"
)

// Layout names as registered with the manager.
const (
	layoutTitleBar  = "titlebar"
	layoutSidebar   = "sidebar"
	layoutStatusBar = "statusbar"
	layoutLogPane   = "logpane"
	layoutPomodoro  = "pomodoro"
	layoutExchange  = "exchange"
	layoutClipboard = "clipboard"
	layoutSettings  = "settings"
	layoutToasts    = "toasts"
	layoutTimerChip = "timerchip"
)

// maxLogLines bounds the in-app log ring.
const maxLogLines = 400

// Run launches the shell and blocks until the window closes.
func Run(cfg *config.Store, version string) error {
	go func() {
		a := NewApp(cfg, version)
		if err := a.Run(); err != nil {
			log.Printf("ui: %v", err)
		}
		os.Exit(0)
	}()

	app.Main()
	return nil
}

// App hosts one window and the manager driving its layouts.
type App struct {
	window *app.Window
	ops    op.Ops
	id     string

	mgr  *layouts.Manager
	wctx *layouts.WindowContext

	gvTheme  *theme.Theme
	darkMode bool

	cfg          *config.Store
	watcher      *clipwatch.Watcher
	fileExplorer *explorer.Explorer
	monoShaper   *text.Shaper
	version      string

	logMu   sync.Mutex
	logs    []string
	logText string
	logGen  int
}

// NewApp builds the shell around cfg. A nil cfg gets an in-memory store.
func NewApp(cfg *config.Store, version string) *App {
	if cfg == nil {
		cfg, _ = config.Open("")
	}
	w := new(app.Window)
	w.Option(
		app.Title("DeskMate"),
		app.Size(unit.Dp(1120), unit.Dp(760)),
		app.MinSize(unit.Dp(720), unit.Dp(480)),
		app.Decorated(false),
	)

	a := &App{
		window:  w,
		id:      uuid.NewString(),
		mgr:     layouts.New(nil),
		gvTheme: theme.NewTheme("", nil, true),
		cfg:     cfg,
		version: version,
	}
	a.wctx = &layouts.WindowContext{ID: a.id, Win: w}
	a.mgr.SetLogf(a.Logf)

	a.darkMode = cfg.GetBool("ui.dark_mode", false)
	applyPalette(a.gvTheme, a.darkMode)

	if mono := filterMonoFaces(); len(mono) > 0 {
		a.monoShaper = text.NewShaper(text.WithCollection(mono), text.NoSystemFonts())
	}

	a.watcher = clipwatch.New(nil,
		cfg.GetInt("clipboard.max", 50),
		cfg.GetDuration("clipboard.poll", 800*time.Millisecond),
	)
	a.watcher.SetOnChange(func() { a.wctx.Invalidate() })

	a.fileExplorer = explorer.NewExplorer(w)

	a.registerLayouts()
	a.mgr.RegisterHandler(a.id, "host", func(msg layouts.Message) {
		if cc, ok := msg.Payload.(layouts.ContentChanged); ok && cc.Current != "" {
			a.cfg.Put("ui.last_panel", cc.Current)
		}
	})

	a.Logf("[BOOT] DeskMate %s initialized (window %s)", version, shortID(a.id))
	return a
}

// Run processes window events until the window closes.
func (a *App) Run() error {
	a.mgr.RegisterWindow(a.wctx)
	defer a.mgr.UnregisterWindow(a.id)

	a.watcher.Start()
	defer a.watcher.Stop()

	a.showChrome()
	a.restoreContent()

	for {
		switch e := a.window.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.ConfigEvent:
			a.mgr.HandleEvent(e, a.id)
		case app.FrameEvent:
			gtx := app.NewContext(&a.ops, e)
			a.frame(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

func (a *App) frame(gtx layout.Context) {
	fillMax(gtx, a.gvTheme.Palette.Bg)
	a.mgr.UpdateAll(gtx, a.id)
	a.mgr.RenderAll(gtx, a.id)
}

// registerLayouts installs every layout type the shell knows about. The
// chrome is auto-created per window; panels are built on first switch.
func (a *App) registerLayouts() {
	m := a.mgr
	m.Register(layouts.Registration{
		Name: layoutTitleBar, Kind: layouts.KindSystem, Priority: layouts.PriorityHighest,
		AutoCreate: true, Persistent: true,
		Factory: func(win *layouts.WindowContext) (layouts.Layout, error) {
			return newTitleBar(a, win), nil
		},
	})
	m.Register(layouts.Registration{
		Name: layoutSidebar, Kind: layouts.KindSystem, Priority: layouts.PriorityHigh,
		AutoCreate: true, Persistent: true,
		Factory: func(win *layouts.WindowContext) (layouts.Layout, error) {
			return newSidebar(a, win), nil
		},
	})
	m.Register(layouts.Registration{
		Name: layoutStatusBar, Kind: layouts.KindSystem, Priority: layouts.PriorityLow,
		AutoCreate: true, Persistent: true,
		Factory: func(win *layouts.WindowContext) (layouts.Layout, error) {
			return newStatusBar(a, win), nil
		},
	})
	m.Register(layouts.Registration{
		Name: layoutLogPane, Kind: layouts.KindSystem, Priority: layouts.PriorityLow,
		Persistent: true,
		Factory: func(win *layouts.WindowContext) (layouts.Layout, error) {
			return newLogPane(a, win), nil
		},
	})
	m.Register(layouts.Registration{
		Name: layoutPomodoro, Kind: layouts.KindContent, Priority: layouts.PriorityNormal,
		Persistent: true,
		Factory: func(win *layouts.WindowContext) (layouts.Layout, error) {
			return newPomodoroPanel(a, win), nil
		},
	})
	m.Register(layouts.Registration{
		Name: layoutExchange, Kind: layouts.KindContent, Priority: layouts.PriorityNormal,
		Persistent: true,
		Factory: func(win *layouts.WindowContext) (layouts.Layout, error) {
			return newExchangePanel(a, win), nil
		},
	})
	m.Register(layouts.Registration{
		Name: layoutClipboard, Kind: layouts.KindContent, Priority: layouts.PriorityNormal,
		Persistent: true,
		Factory: func(win *layouts.WindowContext) (layouts.Layout, error) {
			return newClipboardPanel(a, win), nil
		},
	})
	m.Register(layouts.Registration{
		Name: layoutSettings, Kind: layouts.KindModal, Priority: layouts.PriorityHighest,
		Factory: func(win *layouts.WindowContext) (layouts.Layout, error) {
			return newSettingsModal(a, win), nil
		},
	})
	m.Register(layouts.Registration{
		Name: layoutToasts, Kind: layouts.KindOverlay, Priority: layouts.PriorityHighest,
		Factory: func(win *layouts.WindowContext) (layouts.Layout, error) {
			return newToastOverlay(a, win), nil
		},
	})
	m.Register(layouts.Registration{
		Name: layoutTimerChip, Kind: layouts.KindUtility, Priority: layouts.PriorityHigh,
		Dependencies: []string{layoutPomodoro},
		Conflicts:    []string{layoutPomodoro},
		Factory: func(win *layouts.WindowContext) (layouts.Layout, error) {
			return newTimerChip(a, win), nil
		},
	})
}

func (a *App) showChrome() {
	a.mgr.Show(layoutTitleBar)
	a.mgr.Show(layoutSidebar)
	a.mgr.Show(layoutStatusBar)
	if a.cfg.GetBool("ui.show_logs", false) {
		a.mgr.Show(layoutLogPane)
	}
}

// restoreContent switches to the panel that was open last session.
func (a *App) restoreContent() {
	name, ok := a.cfg.Get("ui.last_panel")
	if !ok || !a.mgr.IsRegistered(name) {
		name = layoutPomodoro
	}
	a.mgr.SwitchTo(name, false)
}

// toggleLogs flips the bottom log pane and remembers the choice.
func (a *App) toggleLogs() {
	show := true
	if l, ok := a.mgr.Get(layoutLogPane); ok && l.Visible() {
		show = false
	}
	a.mgr.SetVisible(layoutLogPane, show)
	a.cfg.PutBool("ui.show_logs", show)
	a.invalidate()
}

func (a *App) setDarkMode(enabled bool) {
	if a.darkMode == enabled {
		return
	}
	a.darkMode = enabled
	applyPalette(a.gvTheme, enabled)
	a.cfg.PutBool("ui.dark_mode", enabled)
	if enabled {
		a.Logf("[INFO] Theme switched to dark mode")
	} else {
		a.Logf("[INFO] Theme switched to light mode")
	}
	a.invalidate()
}

// Notify shows text as a transient toast, creating the overlay on
// demand. Event-loop only; workers use Logf and let a layout surface the
// outcome on the next frame.
func (a *App) Notify(n Notice) {
	a.mgr.Show(layoutToasts)
	a.mgr.Send(a.id, "host", a.id, layoutToasts, n)
	a.invalidate()
}

func (a *App) invalidate() {
	if a.window != nil {
		a.window.Invalidate()
	}
}

// Logf appends a timestamped line to the in-app log ring. Safe to call
// from background workers.
func (a *App) Logf(format string, args ...any) {
	entry := fmt.Sprintf("[%s] %s", time.Now().Format(time.Stamp), fmt.Sprintf(format, args...))
	a.logMu.Lock()
	a.logs = append(a.logs, entry)
	if len(a.logs) > maxLogLines {
		a.logs = a.logs[len(a.logs)-maxLogLines:]
	}
	a.logText = strings.Join(a.logs, "\n")
	a.logGen++
	a.logMu.Unlock()
	a.invalidate()
}

// logSnapshot returns the joined ring text and a generation counter that
// changes whenever the text does.
func (a *App) logSnapshot() (string, int) {
	a.logMu.Lock()
	defer a.logMu.Unlock()
	return a.logText, a.logGen
}

// heightOf measures a chrome layout through its HeightProvider capability.
func heightOf(l layouts.Layout) int {
	if hp, ok := layouts.As[layouts.HeightProvider](l); ok {
		return hp.Height()
	}
	return 0
}

func widthOf(l layouts.Layout) int {
	if wp, ok := layouts.As[layouts.WidthProvider](l); ok {
		return wp.Width()
	}
	return 0
}

// chromeBand returns the vertical pixel range left between the horizontal
// chrome strips (title bar above, log pane and status bar below).
func (a *App) chromeBand(size image.Point) (top, bottom int) {
	top, bottom = 0, size.Y
	if l, ok := a.mgr.GetIn(a.id, layoutTitleBar); ok && l.Visible() {
		top += heightOf(l)
	}
	if l, ok := a.mgr.GetIn(a.id, layoutStatusBar); ok && l.Visible() {
		bottom -= heightOf(l)
	}
	if l, ok := a.mgr.GetIn(a.id, layoutLogPane); ok && l.Visible() {
		bottom -= heightOf(l)
	}
	if bottom < top {
		bottom = top
	}
	return top, bottom
}

// contentArea is the rectangle left for content panels after all visible
// chrome is laid out.
func (a *App) contentArea(size image.Point) image.Rectangle {
	top, bottom := a.chromeBand(size)
	left := 0
	if l, ok := a.mgr.GetIn(a.id, layoutSidebar); ok && l.Visible() {
		left += widthOf(l)
	}
	if left > size.X {
		left = size.X
	}
	return image.Rect(left, top, size.X, bottom)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
