// Package layouts implements the composition engine behind the DeskMate
// shell: a registry of layout types, per-window instance management,
// visibility arbitration (priority, dependencies, conflicts) and a small
// synchronous message bus connecting layouts to each other.
//
// A Layout is one self-contained region of a window: chrome such as the
// title bar or sidebar, a content panel such as the pomodoro timer, a modal
// dialog, or a transient overlay. The Manager decides which layouts are
// visible, drives them once per frame, and multiplexes them across any
// number of host windows.
package layouts

import (
	"image"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
)

// Kind classifies the role a layout plays inside a window.
type Kind uint8

const (
	// KindSystem layouts are persistent chrome (title bar, sidebar, status
	// bar). They are exempt from hide-all sweeps and content switching.
	KindSystem Kind = iota
	// KindContent layouts occupy the main content region; at most one is
	// current per window.
	KindContent
	// KindModal layouts capture all input while active.
	KindModal
	// KindUtility layouts are small floating tools that coexist with
	// content.
	KindUtility
	// KindOverlay layouts are transient decorations such as toasts.
	KindOverlay
)

var kindNames = map[Kind]string{
	KindSystem:  "system",
	KindContent: "content",
	KindModal:   "modal",
	KindUtility: "utility",
	KindOverlay: "overlay",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Priority orders layouts for rendering and event routing. Higher priority
// paints later (on top) and receives events earlier.
type Priority int8

const (
	PriorityLowest Priority = iota
	PriorityLow
	PriorityNormal
	PriorityHigh
	PriorityHighest
)

var priorityNames = map[Priority]string{
	PriorityLowest:  "lowest",
	PriorityLow:     "low",
	PriorityNormal:  "normal",
	PriorityHigh:    "high",
	PriorityHighest: "highest",
}

func (p Priority) String() string {
	if s, ok := priorityNames[p]; ok {
		return s
	}
	return "unknown"
}

// Layout is the contract every panel of the shell implements. The manager
// calls Update once per frame for every live instance (visible or not),
// then Layout for the visible ones in priority order.
type Layout interface {
	// Name returns the registered layout name. Names are unique per window.
	Name() string

	Visible() bool
	SetVisible(visible bool)

	// Bounds is the advisory rectangle the layout last decided to occupy,
	// in window pixels. Chrome layouts recompute it during Update; the
	// manager renders each layout clipped to its bounds.
	Bounds() image.Rectangle
	SetBounds(r image.Rectangle)

	// Update advances time-based state (animations, timers) and recomputes
	// advisory geometry. It runs before any rendering in the frame and must
	// not emit draw operations.
	Update(gtx layout.Context)

	// Layout renders the layout into gtx.
	Layout(gtx layout.Context) layout.Dimensions

	// HandleEvent offers an application-level event to the layout and
	// reports whether it was consumed.
	HandleEvent(evt event.Event) bool
}

// FixedAreaRenderer is an optional capability for layouts that want the
// exact target rectangle instead of the clip-and-offset default applied by
// RenderIn.
type FixedAreaRenderer interface {
	LayoutIn(gtx layout.Context, area image.Rectangle) layout.Dimensions
}

// HeightProvider is implemented by horizontal chrome bands (title bar,
// status bar) so other layouts can measure them.
type HeightProvider interface {
	Height() int
}

// WidthProvider is implemented by vertical chrome bands (sidebar).
type WidthProvider interface {
	Width() int
}

// As reports whether layout l provides the capability T, returning the
// narrowed value when it does. It is the supported way to reach optional
// behaviour of a layout obtained from the manager.
func As[T any](l Layout) (T, bool) {
	t, ok := l.(T)
	return t, ok
}

// RenderIn draws l confined to area. Layouts implementing FixedAreaRenderer
// receive the rectangle directly; everything else is clipped and offset so
// its own origin lands at area.Min with exact constraints of area's size.
func RenderIn(l Layout, gtx layout.Context, area image.Rectangle) layout.Dimensions {
	if fa, ok := As[FixedAreaRenderer](l); ok {
		return fa.LayoutIn(gtx, area)
	}
	defer clip.Rect(area).Push(gtx.Ops).Pop()
	defer op.Offset(area.Min).Push(gtx.Ops).Pop()
	gtx.Constraints = layout.Exact(area.Size())
	return l.Layout(gtx)
}

// WindowContext identifies one host window inside a Manager and is the only
// context a layout factory receives. Win may be nil in headless use (tests,
// the extract command); Invalidate tolerates that.
type WindowContext struct {
	ID  string
	Win *app.Window

	mgr *Manager
}

// Manager returns the manager this window is registered with.
func (c *WindowContext) Manager() *Manager {
	if c == nil {
		return nil
	}
	return c.mgr
}

// Invalidate requests a redraw of the host window. Safe to call from any
// goroutine and on a windowless context.
func (c *WindowContext) Invalidate() {
	if c != nil && c.Win != nil {
		c.Win.Invalidate()
	}
}

// Base carries the bookkeeping shared by every layout implementation. Embed
// it and override Layout (always) plus Update/HandleEvent (as needed).
type Base struct {
	name    string
	win     *WindowContext
	bounds  image.Rectangle
	visible bool
}

// NewBase initializes the common layout state for name inside win.
func NewBase(name string, win *WindowContext) Base {
	return Base{name: name, win: win}
}

func (b *Base) Name() string { return b.name }

// Window returns the window context the layout was created for.
func (b *Base) Window() *WindowContext { return b.win }

func (b *Base) Visible() bool { return b.visible }

func (b *Base) SetVisible(visible bool) { b.visible = visible }

func (b *Base) Bounds() image.Rectangle { return b.bounds }

func (b *Base) SetBounds(r image.Rectangle) { b.bounds = r }

// Update is a no-op default.
func (b *Base) Update(layout.Context) {}

// HandleEvent ignores all events by default.
func (b *Base) HandleEvent(event.Event) bool { return false }
