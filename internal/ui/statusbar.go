package ui

import (
	"fmt"
	"image"
	"time"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"github.com/OpenDeskLab/DeskMate/internal/layouts"
)

const statusBarHeight = unit.Dp(28)

// statusBar is the strip along the window's bottom edge: current panel,
// the pomodoro countdown fed over the message bus, the log pane toggle
// and the version string.
type statusBar struct {
	layouts.Base
	app *App

	logsBtn  widget.Clickable
	timerBtn widget.Clickable

	status   TimerStatus
	hasTimer bool
	heightPx int

	logsIcon *widget.Icon
}

func newStatusBar(a *App, win *layouts.WindowContext) *statusBar {
	b := &statusBar{Base: layouts.NewBase(layoutStatusBar, win), app: a}
	b.logsIcon = loadIcon(icons.ActionList)
	a.mgr.RegisterHandler(win.ID, layoutStatusBar, b.onMessage)
	return b
}

func (b *statusBar) onMessage(msg layouts.Message) {
	if ts, ok := msg.Payload.(TimerStatus); ok {
		b.status = ts
		b.hasTimer = true
	}
}

// Height reports the strip's pixel height.
func (b *statusBar) Height() int { return b.heightPx }

func (b *statusBar) Update(gtx layout.Context) {
	if h := gtx.Dp(statusBarHeight); h != b.heightPx {
		b.heightPx = h
		b.Window().Invalidate()
	}
	size := gtx.Constraints.Max
	b.SetBounds(image.Rect(0, size.Y-b.heightPx, size.X, size.Y))

	if b.logsBtn.Clicked(gtx) {
		b.app.toggleLogs()
	}
	if b.timerBtn.Clicked(gtx) {
		b.app.mgr.SwitchTo(layoutPomodoro, true)
	}
}

func (b *statusBar) Layout(gtx layout.Context) layout.Dimensions {
	th := b.app.gvTheme
	size := gtx.Constraints.Max
	paint.FillShape(gtx.Ops, th.Bg2, clip.Rect{Max: size}.Op())

	layout.Inset{Left: unit.Dp(16), Right: unit.Dp(16)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				title := panelTitle(b.app.mgr.CurrentContentIn(b.Window().ID))
				lbl := material.Caption(th.Theme, title)
				lbl.Color = th.Palette.Fg
				return lbl.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(16)}.Layout),
			layout.Rigid(b.layoutTimerChip),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions { return layout.Dimensions{} }),
			layout.Rigid(b.layoutLogsToggle),
			layout.Rigid(layout.Spacer{Width: unit.Dp(12)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				lbl := material.Caption(th.Theme, b.app.version)
				lbl.Color = mutedFg(th.Palette.Fg)
				return lbl.Layout(gtx)
			}),
		)
	})
	return layout.Dimensions{Size: size}
}

// layoutTimerChip shows the compact countdown once the pomodoro panel has
// reported a status. Clicking it jumps to the pomodoro panel.
func (b *statusBar) layoutTimerChip(gtx layout.Context) layout.Dimensions {
	if !b.hasTimer {
		return layout.Dimensions{}
	}
	th := b.app.gvTheme
	text := fmt.Sprintf("%s %s", b.status.Phase, formatClock(b.status.Remaining))
	if !b.status.Running {
		text += " (paused)"
	}
	return b.timerBtn.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		bg := th.Palette.Bg
		fg := th.Palette.Fg
		if b.status.Running {
			bg = th.Palette.ContrastBg
			fg = th.Palette.ContrastFg
		}
		return layout.Background{}.Layout(gtx,
			func(gtx layout.Context) layout.Dimensions {
				roundedCard(gtx, bg, gtx.Constraints.Min, unit.Dp(9))
				return layout.Dimensions{Size: gtx.Constraints.Min}
			},
			func(gtx layout.Context) layout.Dimensions {
				return layout.Inset{Left: unit.Dp(8), Right: unit.Dp(8), Top: unit.Dp(2), Bottom: unit.Dp(2)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					lbl := material.Caption(th.Theme, text)
					lbl.Color = fg
					return lbl.Layout(gtx)
				})
			},
		)
	})
}

func (b *statusBar) layoutLogsToggle(gtx layout.Context) layout.Dimensions {
	th := b.app.gvTheme
	return b.logsBtn.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if b.logsIcon == nil {
					return layout.Dimensions{}
				}
				sz := gtx.Dp(unit.Dp(13))
				gtx.Constraints.Min = image.Pt(sz, sz)
				gtx.Constraints.Max = gtx.Constraints.Min
				return b.logsIcon.Layout(gtx, mutedFg(th.Palette.Fg))
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				lbl := material.Caption(th.Theme, "Logs")
				lbl.Color = mutedFg(th.Palette.Fg)
				return lbl.Layout(gtx)
			}),
		)
	})
}

// panelTitle maps a content layout name to its display title.
func panelTitle(name string) string {
	switch name {
	case layoutPomodoro:
		return "Pomodoro"
	case layoutExchange:
		return "Exchange Records"
	case layoutClipboard:
		return "Clipboard History"
	}
	return "DeskMate"
}

// formatClock renders d as mm:ss, or h:mm:ss past an hour, rounding up so
// a freshly started 25 minute phase reads 25:00.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
