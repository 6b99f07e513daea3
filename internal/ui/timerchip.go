package ui

import (
	"image"

	"gioui.org/layout"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/OpenDeskLab/DeskMate/internal/layouts"
	"github.com/OpenDeskLab/DeskMate/internal/pomodoro"
)

// timerChip is the floating countdown pinned to the content area's
// bottom-right corner while the pomodoro runs behind another panel.
// Clicking it returns to the pomodoro panel, which hides the chip again.
type timerChip struct {
	layouts.Base
	app   *App
	click widget.Clickable
}

func newTimerChip(a *App, win *layouts.WindowContext) *timerChip {
	return &timerChip{Base: layouts.NewBase(layoutTimerChip, win), app: a}
}

// source reaches the engine through the owning panel's TimerSource
// capability instead of assuming the panel's concrete type.
func (c *timerChip) source() *pomodoro.Timer {
	l, ok := c.app.mgr.GetIn(c.Window().ID, layoutPomodoro)
	if !ok {
		return nil
	}
	ts, ok := layouts.As[TimerSource](l)
	if !ok {
		return nil
	}
	return ts.Timer()
}

func (c *timerChip) Update(gtx layout.Context) {
	area := c.app.contentArea(gtx.Constraints.Max)
	w := gtx.Dp(unit.Dp(170))
	h := gtx.Dp(unit.Dp(58))
	margin := gtx.Dp(unit.Dp(16))
	c.SetBounds(image.Rect(
		area.Max.X-margin-w, area.Max.Y-margin-h,
		area.Max.X-margin, area.Max.Y-margin,
	))

	if c.click.Clicked(gtx) {
		c.app.mgr.SwitchTo(layoutPomodoro, true)
	}
}

func (c *timerChip) Layout(gtx layout.Context) layout.Dimensions {
	th := c.app.gvTheme
	size := gtx.Constraints.Max
	t := c.source()
	if t == nil {
		return layout.Dimensions{Size: size}
	}

	bg := th.Palette.ContrastBg
	fg := th.Palette.ContrastFg
	if !t.Running() {
		bg = th.Bg2
		fg = th.Palette.Fg
	}
	return c.click.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		roundedCard(gtx, bg, size, unit.Dp(10))
		layout.UniformInset(unit.Dp(10)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					label := t.Phase().String()
					if !t.Running() {
						label += " (paused)"
					}
					lbl := material.Caption(th.Theme, label)
					lbl.Color = mutedFg(fg)
					return lbl.Layout(gtx)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					lbl := material.Body1(th.Theme, formatClock(t.Remaining(gtx.Now)))
					lbl.Color = fg
					return lbl.Layout(gtx)
				}),
			)
		})
		return layout.Dimensions{Size: size}
	})
}
