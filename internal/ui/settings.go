package ui

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
	"time"

	"gioui.org/gesture"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/OpenDeskLab/DeskMate/internal/layouts"
	"github.com/OpenDeskLab/DeskMate/internal/pomodoro"
)

// settingsModal is created fresh on every open, so its editors seed from
// the live timer and store and throwaway edits die with the instance.
type settingsModal struct {
	layouts.Base
	app *App

	scrim     gesture.Click
	cardGuard gesture.Click
	saveBtn   widget.Clickable
	cancelBtn widget.Clickable

	darkSwitch widget.Bool

	focusMin widget.Editor
	shortMin widget.Editor
	longMin  widget.Editor
	rounds   widget.Editor
	clipMax  widget.Editor
	clipPoll widget.Editor
	dataDir  widget.Editor

	body widget.List
}

func newSettingsModal(a *App, win *layouts.WindowContext) *settingsModal {
	s := &settingsModal{Base: layouts.NewBase(layoutSettings, win), app: a}
	s.body.Axis = layout.Vertical
	s.darkSwitch.Value = a.darkMode

	cfg := timerConfigFromStore(a.cfg)
	if l, ok := a.mgr.GetIn(win.ID, layoutPomodoro); ok {
		if ts, ok := layouts.As[TimerSource](l); ok {
			cfg = ts.Timer().Config()
		}
	}
	seed := func(ed *widget.Editor, v int) {
		ed.SingleLine = true
		ed.SetText(strconv.Itoa(v))
	}
	seed(&s.focusMin, int(cfg.Focus/time.Minute))
	seed(&s.shortMin, int(cfg.ShortBreak/time.Minute))
	seed(&s.longMin, int(cfg.LongBreak/time.Minute))
	seed(&s.rounds, cfg.RoundsPerSet)
	seed(&s.clipMax, a.cfg.GetInt("clipboard.max", 50))
	seed(&s.clipPoll, int(a.cfg.GetDuration("clipboard.poll", 800*time.Millisecond)/time.Millisecond))
	s.dataDir.SingleLine = true
	if dir, ok := a.cfg.Get("exchange.data_dir"); ok {
		s.dataDir.SetText(dir)
	}
	return s
}

func (s *settingsModal) Update(gtx layout.Context) {
	s.SetBounds(image.Rectangle{Max: gtx.Constraints.Max})

	for {
		ev, ok := s.scrim.Update(gtx.Source)
		if !ok {
			break
		}
		if ev.Kind == gesture.KindClick {
			s.app.mgr.ExitModal(s.Name())
		}
	}
	// Clicks on the card itself go nowhere; draining the guard keeps them
	// off the scrim.
	for {
		if _, ok := s.cardGuard.Update(gtx.Source); !ok {
			break
		}
	}

	if s.cancelBtn.Clicked(gtx) {
		s.app.mgr.ExitModal(s.Name())
	}
	if s.saveBtn.Clicked(gtx) && s.apply() {
		s.app.mgr.ExitModal(s.Name())
	}
}

func parsePositive(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%q is not a positive number", raw)
	}
	return n, nil
}

func parseMinutes(raw string) (time.Duration, error) {
	n, err := parsePositive(raw)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Minute, nil
}

// apply validates every field, persists, and pushes the new values into
// the running timer and watcher. Returns false (and leaves the modal up)
// on the first invalid field.
func (s *settingsModal) apply() bool {
	focus, err := parseMinutes(s.focusMin.Text())
	if err != nil {
		return s.reject("Focus", err)
	}
	short, err := parseMinutes(s.shortMin.Text())
	if err != nil {
		return s.reject("Short break", err)
	}
	long, err := parseMinutes(s.longMin.Text())
	if err != nil {
		return s.reject("Long break", err)
	}
	rounds, err := parsePositive(s.rounds.Text())
	if err != nil {
		return s.reject("Rounds per set", err)
	}
	clipMax, err := parsePositive(s.clipMax.Text())
	if err != nil {
		return s.reject("History size", err)
	}
	pollMS, err := parsePositive(s.clipPoll.Text())
	if err != nil {
		return s.reject("Poll interval", err)
	}
	s.commit(pomodoro.Config{
		Focus:        focus,
		ShortBreak:   short,
		LongBreak:    long,
		RoundsPerSet: rounds,
	}, clipMax, time.Duration(pollMS)*time.Millisecond)
	return true
}

func (s *settingsModal) reject(field string, err error) bool {
	s.app.Notify(Notice{Text: field + ": " + err.Error(), Error: true})
	return false
}

func (s *settingsModal) commit(cfg pomodoro.Config, clipMax int, poll time.Duration) {
	if poll < 100*time.Millisecond {
		poll = 100 * time.Millisecond
	}
	store := s.app.cfg
	store.PutDuration("pomodoro.focus", cfg.Focus)
	store.PutDuration("pomodoro.short_break", cfg.ShortBreak)
	store.PutDuration("pomodoro.long_break", cfg.LongBreak)
	store.PutInt("pomodoro.rounds", cfg.RoundsPerSet)
	store.PutInt("clipboard.max", clipMax)
	store.PutDuration("clipboard.poll", poll)

	dir := strings.TrimSpace(s.dataDir.Text())
	if dir == "" {
		store.Delete("exchange.data_dir")
	} else {
		store.Put("exchange.data_dir", dir)
	}

	if l, ok := s.app.mgr.GetIn(s.Window().ID, layoutPomodoro); ok {
		if ts, ok := layouts.As[TimerSource](l); ok {
			ts.Timer().SetConfig(cfg)
		}
	}
	s.app.watcher.SetInterval(poll)
	s.app.watcher.SetMax(clipMax)

	s.app.Logf("[INFO] Settings applied")
	s.app.Notify(Notice{Text: "Settings saved"})
}

func (s *settingsModal) Layout(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max

	paint.FillShape(gtx.Ops, color.NRGBA{A: 0x8A}, clip.Rect{Max: size}.Op())
	func() {
		defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
		s.scrim.Add(gtx.Ops)
	}()

	layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		w := gtx.Dp(500)
		if m := gtx.Constraints.Max.X - gtx.Dp(48); w > m {
			w = m
		}
		h := gtx.Dp(540)
		if m := gtx.Constraints.Max.Y - gtx.Dp(48); h > m {
			h = m
		}
		gtx.Constraints = layout.Exact(image.Pt(w, h))
		return s.layoutCard(gtx)
	})
	return layout.Dimensions{Size: size}
}

func (s *settingsModal) layoutCard(gtx layout.Context) layout.Dimensions {
	th := s.app.gvTheme
	size := gtx.Constraints.Max
	roundedCard(gtx, th.Palette.Bg, size, unit.Dp(12))
	func() {
		defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
		s.cardGuard.Add(gtx.Ops)
	}()

	layout.UniformInset(unit.Dp(20)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(material.H6(th.Theme, "Settings").Layout),
			layout.Rigid(layout.Spacer{Height: unit.Dp(4)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				lbl := material.Caption(th.Theme, "Saved values apply immediately and persist across launches.")
				lbl.Color = mutedFg(th.Palette.Fg)
				return lbl.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return material.List(th.Theme, &s.body).Layout(gtx, 1,
					func(gtx layout.Context, _ int) layout.Dimensions {
						return s.layoutSections(gtx)
					})
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
			layout.Rigid(s.layoutActions),
		)
	})
	return layout.Dimensions{Size: size}
}

func (s *settingsModal) layoutSections(gtx layout.Context) layout.Dimensions {
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return s.layoutSection(gtx, "Appearance", func(gtx layout.Context) layout.Dimensions {
				return s.layoutToggle(gtx, "Dark mode", "Switch between light and dark palettes.", &s.darkSwitch, s.app.setDarkMode)
			})
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return s.layoutSection(gtx, "Pomodoro", func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return s.layoutFieldRow(gtx,
							"Focus (minutes)", &s.focusMin,
							"Short break (minutes)", &s.shortMin)
					}),
					layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return s.layoutFieldRow(gtx,
							"Long break (minutes)", &s.longMin,
							"Rounds per set", &s.rounds)
					}),
				)
			})
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return s.layoutSection(gtx, "Clipboard", func(gtx layout.Context) layout.Dimensions {
				return s.layoutFieldRow(gtx,
					"History size", &s.clipMax,
					"Poll interval (ms)", &s.clipPoll)
			})
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return s.layoutSection(gtx, "Exchange Records", func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return s.numberField(gtx, "Data directory override", &s.dataDir)
					}),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						lbl := material.Caption(s.app.gvTheme.Theme, "Leave empty to auto-detect from the player log or registry.")
						lbl.Color = mutedFg(s.app.gvTheme.Palette.Fg)
						return lbl.Layout(gtx)
					}),
				)
			})
		}),
	)
}

func (s *settingsModal) layoutSection(gtx layout.Context, title string, content layout.Widget) layout.Dimensions {
	th := s.app.gvTheme
	return layout.Inset{Bottom: unit.Dp(14)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Background{}.Layout(gtx,
			func(gtx layout.Context) layout.Dimensions {
				roundedCard(gtx, th.Bg2, gtx.Constraints.Min, unit.Dp(10))
				return layout.Dimensions{Size: gtx.Constraints.Min}
			},
			func(gtx layout.Context) layout.Dimensions {
				return layout.UniformInset(unit.Dp(14)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
						layout.Rigid(material.Body2(th.Theme, title).Layout),
						layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
						layout.Rigid(content),
					)
				})
			},
		)
	})
}

func (s *settingsModal) layoutToggle(gtx layout.Context, title, subtitle string, control *widget.Bool, onChange func(bool)) layout.Dimensions {
	th := s.app.gvTheme
	prev := control.Value
	return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
				layout.Rigid(material.Body2(th.Theme, title).Layout),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					lbl := material.Caption(th.Theme, subtitle)
					lbl.Color = mutedFg(th.Palette.Fg)
					return lbl.Layout(gtx)
				}),
			)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			sw := material.Switch(th.Theme, control, title)
			d := sw.Layout(gtx)
			if prev != control.Value {
				onChange(control.Value)
			}
			return d
		}),
	)
}

func (s *settingsModal) layoutFieldRow(gtx layout.Context, label1 string, ed1 *widget.Editor, label2 string, ed2 *widget.Editor) layout.Dimensions {
	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return s.numberField(gtx, label1, ed1)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(12)}.Layout),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return s.numberField(gtx, label2, ed2)
		}),
	)
}

func (s *settingsModal) numberField(gtx layout.Context, label string, editor *widget.Editor) layout.Dimensions {
	th := s.app.gvTheme
	editor.SingleLine = true
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			lbl := material.Caption(th.Theme, label)
			lbl.Color = mutedFg(th.Palette.Fg)
			return lbl.Layout(gtx)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Top: unit.Dp(2)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return layout.Background{}.Layout(gtx,
					func(gtx layout.Context) layout.Dimensions {
						roundedCard(gtx, th.Palette.Bg, gtx.Constraints.Min, unit.Dp(6))
						return layout.Dimensions{Size: gtx.Constraints.Min}
					},
					func(gtx layout.Context) layout.Dimensions {
						return layout.Inset{Top: unit.Dp(6), Bottom: unit.Dp(6), Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
							ed := material.Editor(th.Theme, editor, "")
							ed.TextSize = unit.Sp(14)
							return ed.Layout(gtx)
						})
					},
				)
			})
		}),
	)
}

func (s *settingsModal) layoutActions(gtx layout.Context) layout.Dimensions {
	th := s.app.gvTheme
	return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
		layout.Flexed(1, layout.Spacer{}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			b := material.Button(th.Theme, &s.cancelBtn, "Cancel")
			b.Background = th.Bg2
			b.Color = th.Palette.Fg
			return b.Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return material.Button(th.Theme, &s.saveBtn, "Save").Layout(gtx)
		}),
	)
}
