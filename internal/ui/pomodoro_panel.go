package ui

import (
	"fmt"
	"time"

	gfont "gioui.org/font"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/OpenDeskLab/DeskMate/internal/config"
	"github.com/OpenDeskLab/DeskMate/internal/layouts"
	"github.com/OpenDeskLab/DeskMate/internal/pomodoro"
)

// TimerSource exposes a layout's pomodoro engine to other layouts (the
// floating chip, the settings dialog) without downcasting to a concrete
// panel type.
type TimerSource interface {
	Timer() *pomodoro.Timer
}

// pomodoroPanel is the focus timer content panel. It owns the engine and
// keeps the rest of the shell informed: per-second status to the status
// bar over the bus, phase changes as toasts, and the floating chip shown
// whenever the timer runs behind another panel.
type pomodoroPanel struct {
	layouts.Base
	app *App

	timer *pomodoro.Timer

	toggleBtn widget.Clickable
	skipBtn   widget.Clickable
	resetBtn  widget.Clickable

	lastSent TimerStatus
	sentOnce bool
}

// timerConfigFromStore assembles the engine config from the persisted
// settings, falling back to the classic 25/5/15 split.
func timerConfigFromStore(cfg *config.Store) pomodoro.Config {
	def := pomodoro.DefaultConfig()
	return pomodoro.Config{
		Focus:        cfg.GetDuration("pomodoro.focus", def.Focus),
		ShortBreak:   cfg.GetDuration("pomodoro.short_break", def.ShortBreak),
		LongBreak:    cfg.GetDuration("pomodoro.long_break", def.LongBreak),
		RoundsPerSet: cfg.GetInt("pomodoro.rounds", def.RoundsPerSet),
	}
}

func newPomodoroPanel(a *App, win *layouts.WindowContext) *pomodoroPanel {
	p := &pomodoroPanel{Base: layouts.NewBase(layoutPomodoro, win), app: a}
	p.timer = pomodoro.New(timerConfigFromStore(a.cfg))
	return p
}

// Timer implements TimerSource.
func (p *pomodoroPanel) Timer() *pomodoro.Timer { return p.timer }

var _ TimerSource = (*pomodoroPanel)(nil)

func (p *pomodoroPanel) Update(gtx layout.Context) {
	now := gtx.Now
	p.SetBounds(p.app.contentArea(gtx.Constraints.Max))

	if phase, crossed := p.timer.Tick(now); crossed {
		p.announce(phase)
	}

	if p.toggleBtn.Clicked(gtx) {
		p.timer.Toggle(now)
		if p.timer.Running() {
			p.app.Logf("[INFO] Pomodoro started: %s", p.timer.Phase())
		} else {
			p.app.Logf("[INFO] Pomodoro paused with %s left", formatClock(p.timer.Remaining(now)))
		}
	}
	if p.skipBtn.Clicked(gtx) {
		p.timer.Skip(now)
		p.app.Logf("[INFO] Pomodoro skipped to %s", p.timer.Phase())
	}
	if p.resetBtn.Clicked(gtx) {
		p.timer.Reset()
		p.app.Logf("[INFO] Pomodoro reset")
	}

	p.publishStatus(now)
	p.manageChip(now)

	if p.timer.Running() {
		gtx.Execute(op.InvalidateCmd{})
	}
}

func (p *pomodoroPanel) announce(phase pomodoro.Phase) {
	switch phase {
	case pomodoro.PhaseFocus:
		p.app.Notify(Notice{Text: "Break over, back to focus"})
	case pomodoro.PhaseShortBreak:
		p.app.Notify(Notice{Text: "Focus round complete, take a short break"})
	case pomodoro.PhaseLongBreak:
		p.app.Notify(Notice{Text: "Set complete, take a long break"})
	}
	p.app.Logf("[INFO] Pomodoro phase: %s (round %d)", phase, p.timer.Round())
}

// publishStatus sends the countdown to the status bar, but only when the
// displayed second, phase or run state actually changed.
func (p *pomodoroPanel) publishStatus(now time.Time) {
	st := TimerStatus{
		Phase:     p.timer.Phase(),
		Remaining: p.timer.Remaining(now),
		Running:   p.timer.Running(),
	}
	if p.sentOnce &&
		st.Phase == p.lastSent.Phase &&
		st.Running == p.lastSent.Running &&
		formatClock(st.Remaining) == formatClock(p.lastSent.Remaining) {
		return
	}
	p.lastSent = st
	p.sentOnce = true
	win := p.Window()
	p.app.mgr.Send(win.ID, p.Name(), win.ID, layoutStatusBar, st)
}

// manageChip keeps the floating countdown in step with the panel: it
// appears when the timer is engaged while another panel holds the content
// region, and leaves when this panel is on screen or the timer is idle.
func (p *pomodoroPanel) manageChip(now time.Time) {
	engaged := p.timer.Running() || p.timer.Elapsed(now) > 0
	chipUp := false
	if c, ok := p.app.mgr.GetIn(p.Window().ID, layoutTimerChip); ok && c.Visible() {
		chipUp = true
	}
	switch {
	case p.Visible() && chipUp:
		p.app.mgr.Hide(layoutTimerChip)
	case !p.Visible() && engaged && !chipUp:
		p.app.mgr.Show(layoutTimerChip)
	case !engaged && chipUp:
		p.app.mgr.Hide(layoutTimerChip)
	}
}

func (p *pomodoroPanel) Layout(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max
	layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		width := gtx.Dp(unit.Dp(440))
		if width > gtx.Constraints.Max.X {
			width = gtx.Constraints.Max.X
		}
		gtx.Constraints.Min.X = width
		gtx.Constraints.Max.X = width
		return layout.Background{}.Layout(gtx,
			func(gtx layout.Context) layout.Dimensions {
				roundedCard(gtx, p.app.gvTheme.Bg2, gtx.Constraints.Min, unit.Dp(12))
				return layout.Dimensions{Size: gtx.Constraints.Min}
			},
			func(gtx layout.Context) layout.Dimensions {
				return layout.UniformInset(unit.Dp(28)).Layout(gtx, p.layoutBody)
			},
		)
	})
	return layout.Dimensions{Size: size}
}

func (p *pomodoroPanel) layoutBody(gtx layout.Context) layout.Dimensions {
	th := p.app.gvTheme
	now := gtx.Now
	phase := p.timer.Phase()

	return layout.Flex{Axis: layout.Vertical, Alignment: layout.Middle}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			lbl := material.Body1(th.Theme, phase.String())
			if phase == pomodoro.PhaseFocus {
				lbl.Color = th.Palette.ContrastBg
			} else {
				lbl.Color = mutedFg(th.Palette.Fg)
			}
			return lbl.Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(6)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			clock := material.H2(th.Theme, formatClock(p.timer.Remaining(now)))
			clock.Font.Typeface = gfont.Typeface("Go Mono")
			if p.app.monoShaper != nil {
				clock.Shaper = p.app.monoShaper
			}
			clock.Color = th.Palette.Fg
			return clock.Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(16)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Min.X = gtx.Constraints.Max.X
			return material.ProgressBar(th.Theme, p.timer.Progress(now)).Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(10)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			text := fmt.Sprintf("Round %d/%d, %d completed",
				p.timer.Round(), p.timer.Config().RoundsPerSet, p.timer.Completed())
			lbl := material.Caption(th.Theme, text)
			lbl.Color = mutedFg(th.Palette.Fg)
			return lbl.Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(20)}.Layout),
		layout.Rigid(p.layoutControls),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if p.timer.Running() || p.timer.Elapsed(now) > 0 {
				return layout.Dimensions{}
			}
			return layout.Inset{Top: unit.Dp(14)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				lbl := material.Caption(th.Theme, "Press Start to begin a focus round.")
				lbl.Color = mutedFg(th.Palette.Fg)
				return lbl.Layout(gtx)
			})
		}),
	)
}

func (p *pomodoroPanel) layoutControls(gtx layout.Context) layout.Dimensions {
	th := p.app.gvTheme
	toggleLabel := "Start"
	if p.timer.Running() {
		toggleLabel = "Pause"
	}
	secondary := func(btn *widget.Clickable, label string) layout.Widget {
		return func(gtx layout.Context) layout.Dimensions {
			b := material.Button(th.Theme, btn, label)
			b.Background = th.Palette.Bg
			b.Color = th.Palette.Fg
			return b.Layout(gtx)
		}
	}
	return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
		layout.Rigid(material.Button(th.Theme, &p.toggleBtn, toggleLabel).Layout),
		layout.Rigid(layout.Spacer{Width: unit.Dp(10)}.Layout),
		layout.Rigid(secondary(&p.skipBtn, "Skip")),
		layout.Rigid(layout.Spacer{Width: unit.Dp(10)}.Layout),
		layout.Rigid(secondary(&p.resetBtn, "Reset")),
	)
}
