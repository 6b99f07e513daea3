package ui

import (
	"image"

	gfont "gioui.org/font"
	"gioui.org/gesture"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/OpenDeskLab/DeskMate/internal/layouts"
)

const (
	logPaneMinHeight = unit.Dp(80)
	logPaneMaxHeight = unit.Dp(360)
	logSplitterSize  = unit.Dp(8)
)

// logPane is the resizable log viewer docked above the status bar. The
// handle on its top edge drags the pane height; the text is selectable
// and set in the bundled mono face.
type logPane struct {
	layouts.Base
	app *App

	splitter gesture.Drag
	dragging bool
	lastY    float32

	paneHeight float32 // px
	totalPx    int

	list       widget.List
	selectable widget.Selectable
	text       string
	gen        int
}

func newLogPane(a *App, win *layouts.WindowContext) *logPane {
	l := &logPane{Base: layouts.NewBase(layoutLogPane, win), app: a}
	l.paneHeight = float32(a.cfg.GetInt("ui.log_height", 0))
	l.list.Axis = layout.Vertical
	l.list.ScrollToEnd = true
	l.selectable.WrapPolicy = text.WrapGraphemes
	return l
}

// Height reports the full vertical footprint, splitter included.
func (l *logPane) Height() int { return l.totalPx }

func (l *logPane) Update(gtx layout.Context) {
	if snapshot, gen := l.app.logSnapshot(); gen != l.gen {
		l.gen = gen
		l.text = snapshot
		l.selectable.SetText(snapshot)
	}

	if l.paneHeight == 0 {
		l.paneHeight = float32(gtx.Dp(unit.Dp(160)))
	}
	l.clampHeight(gtx)

	if ev, ok := l.splitter.Update(gtx.Metric, gtx.Source, gesture.Vertical); ok {
		switch ev.Kind {
		case pointer.Press:
			l.dragging = true
			l.lastY = ev.Position.Y
		case pointer.Drag:
			if l.dragging {
				dy := ev.Position.Y - l.lastY
				l.lastY = ev.Position.Y
				l.paneHeight -= dy
				l.clampHeight(gtx)
				l.app.invalidate()
			}
		case pointer.Release, pointer.Cancel:
			if l.dragging {
				l.dragging = false
				l.app.cfg.PutInt("ui.log_height", int(l.paneHeight))
			}
		}
	}

	total := gtx.Dp(logSplitterSize) + int(l.paneHeight)
	if total != l.totalPx {
		l.totalPx = total
		l.Window().Invalidate()
	}

	size := gtx.Constraints.Max
	bottom := size.Y
	if sb, ok := l.app.mgr.GetIn(l.Window().ID, layoutStatusBar); ok && sb.Visible() {
		bottom -= heightOf(sb)
	}
	l.SetBounds(image.Rect(0, bottom-total, size.X, bottom))
}

func (l *logPane) clampHeight(gtx layout.Context) {
	lo := float32(gtx.Dp(logPaneMinHeight))
	hi := float32(gtx.Dp(logPaneMaxHeight))
	if half := float32(gtx.Constraints.Max.Y / 2); half > 0 && hi > half {
		hi = half
	}
	if l.paneHeight < lo {
		l.paneHeight = lo
	}
	if l.paneHeight > hi {
		l.paneHeight = hi
	}
}

func (l *logPane) Layout(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max
	layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(l.layoutSplitter),
		layout.Flexed(1, l.layoutBody),
	)
	return layout.Dimensions{Size: size}
}

func (l *logPane) layoutSplitter(gtx layout.Context) layout.Dimensions {
	height := gtx.Dp(logSplitterSize)
	if height < 4 {
		height = 4
	}
	size := image.Pt(gtx.Constraints.Max.X, height)
	handle := l.app.gvTheme.Palette.Fg
	handle.A = 0x30
	paint.FillShape(gtx.Ops, handle, clip.Rect{Max: size}.Op())

	stack := clip.Rect{Max: size}.Push(gtx.Ops)
	pointer.CursorRowResize.Add(gtx.Ops)
	l.splitter.Add(gtx.Ops)
	stack.Pop()

	return layout.Dimensions{Size: size}
}

func (l *logPane) layoutBody(gtx layout.Context) layout.Dimensions {
	th := l.app.gvTheme
	size := gtx.Constraints.Max
	paint.FillShape(gtx.Ops, th.Bg2, clip.Rect{Max: size}.Op())

	layout.Inset{Left: unit.Dp(16), Right: unit.Dp(16), Top: unit.Dp(6), Bottom: unit.Dp(6)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		gtx.Constraints.Min = gtx.Constraints.Max
		return l.list.Layout(gtx, 1, func(gtx layout.Context, _ int) layout.Dimensions {
			body := l.text
			if body == "" {
				body = "No log output yet."
			}
			label := material.Body2(th.Theme, body)
			label.State = &l.selectable
			label.WrapPolicy = text.WrapGraphemes
			label.Alignment = text.Start
			label.Font.Typeface = gfont.Typeface("Go Mono")
			if l.app.monoShaper != nil {
				label.Shaper = l.app.monoShaper
			}
			label.Color = opaque(th.Palette.Fg)
			sel := th.Palette.ContrastBg
			sel.A = 0x60
			label.SelectionColor = sel
			return label.Layout(gtx)
		})
	})
	return layout.Dimensions{Size: size}
}
