package ui

import (
	"image"
	"time"

	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/OpenDeskLab/DeskMate/internal/layouts"
)

const toastLifetime = 4 * time.Second

type toast struct {
	text string
	err  bool
	at   time.Time
}

// toastOverlay stacks transient notices above the bottom edge. The
// instance exists only while notices are pending: Notify creates it on
// demand and it hides itself once the queue drains, which destroys it
// along with its bus handler.
type toastOverlay struct {
	layouts.Base
	app    *App
	toasts []toast
}

func newToastOverlay(a *App, win *layouts.WindowContext) *toastOverlay {
	t := &toastOverlay{Base: layouts.NewBase(layoutToasts, win), app: a}
	a.mgr.RegisterHandler(win.ID, layoutToasts, t.onMessage)
	return t
}

func (t *toastOverlay) onMessage(msg layouts.Message) {
	if n, ok := msg.Payload.(Notice); ok && n.Text != "" {
		t.toasts = append(t.toasts, toast{text: n.Text, err: n.Error, at: time.Now()})
	}
}

func (t *toastOverlay) Update(gtx layout.Context) {
	t.SetBounds(image.Rectangle{Max: gtx.Constraints.Max})

	keep := t.toasts[:0]
	for _, n := range t.toasts {
		if gtx.Now.Sub(n.at) < toastLifetime {
			keep = append(keep, n)
		}
	}
	t.toasts = keep

	if len(t.toasts) == 0 {
		t.app.mgr.Hide(layoutToasts)
		return
	}
	gtx.Execute(op.InvalidateCmd{})
}

func (t *toastOverlay) Layout(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max
	if len(t.toasts) == 0 {
		return layout.Dimensions{Size: size}
	}
	layout.Inset{Bottom: unit.Dp(48)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical, Alignment: layout.Middle}.Layout(gtx,
			layout.Flexed(1, layout.Spacer{}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				children := make([]layout.FlexChild, 0, len(t.toasts)*2)
				for i := range t.toasts {
					n := t.toasts[i]
					children = append(children,
						layout.Rigid(func(gtx layout.Context) layout.Dimensions {
							return t.layoutToast(gtx, n)
						}),
						layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
					)
				}
				return layout.Flex{Axis: layout.Vertical, Alignment: layout.Middle}.Layout(gtx, children...)
			}),
		)
	})
	return layout.Dimensions{Size: size}
}

func (t *toastOverlay) layoutToast(gtx layout.Context, n toast) layout.Dimensions {
	th := t.app.gvTheme
	bg := th.Palette.ContrastBg
	fg := th.Palette.ContrastFg
	if n.err {
		bg = errAccent
		fg = th.Palette.ContrastFg
	}
	return layout.Background{}.Layout(gtx,
		func(gtx layout.Context) layout.Dimensions {
			roundedCard(gtx, bg, gtx.Constraints.Min, unit.Dp(8))
			return layout.Dimensions{Size: gtx.Constraints.Min}
		},
		func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Top: unit.Dp(8), Bottom: unit.Dp(8), Left: unit.Dp(14), Right: unit.Dp(14)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				lbl := material.Body2(th.Theme, n.text)
				lbl.Color = fg
				return lbl.Layout(gtx)
			})
		},
	)
}
