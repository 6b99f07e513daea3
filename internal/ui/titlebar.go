package ui

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/app"
	"gioui.org/gesture"
	"gioui.org/io/event"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"github.com/oligo/gioview/menu"
	"github.com/oligo/gioview/theme"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"github.com/OpenDeskLab/DeskMate/internal/layouts"
)

const titleBarHeight = unit.Dp(40)

// titleBar replaces the native window decorations: caption dragging,
// minimize/maximize/close, the global search box and the overflow menu.
// The window runs undecorated, so every titlebar job is handled here.
type titleBar struct {
	layouts.Base
	app *App

	caption  gesture.Click
	minBtn   widget.Clickable
	maxBtn   widget.Clickable
	closeBtn widget.Clickable
	menuBtn  widget.Clickable

	search    widget.Editor
	lastQuery string

	overflow  *menu.DropdownMenu
	maximized bool
	heightPx  int

	appIcon     *widget.Icon
	searchIcon  *widget.Icon
	minIcon     *widget.Icon
	maxIcon     *widget.Icon
	restoreIcon *widget.Icon
	closeIcon   *widget.Icon
	moreIcon    *widget.Icon
}

func newTitleBar(a *App, win *layouts.WindowContext) *titleBar {
	t := &titleBar{Base: layouts.NewBase(layoutTitleBar, win), app: a}
	t.search.SingleLine = true
	t.appIcon = loadIcon(icons.ActionDashboard)
	t.searchIcon = loadIcon(icons.ActionSearch)
	t.minIcon = loadIcon(icons.ContentRemove)
	t.maxIcon = loadIcon(icons.NavigationFullscreen)
	t.restoreIcon = loadIcon(icons.NavigationFullscreenExit)
	t.closeIcon = loadIcon(icons.NavigationClose)
	t.moreIcon = loadIcon(icons.NavigationMoreVert)
	t.overflow = t.buildOverflowMenu()
	return t
}

func (t *titleBar) buildOverflowMenu() *menu.DropdownMenu {
	items := []struct {
		label string
		run   func()
	}{
		{"Settings", func() { t.app.mgr.EnterModal(layoutSettings) }},
		{"Toggle log pane", t.app.toggleLogs},
		{"About DeskMate", func() {
			t.app.Notify(Notice{Text: fmt.Sprintf("DeskMate %s", t.app.version)})
		}},
	}
	opts := make([]menu.MenuOption, 0, len(items))
	for _, item := range items {
		run := item.run
		label := item.label
		opts = append(opts, menu.MenuOption{
			OnClicked: func() error {
				run()
				return nil
			},
			Layout: func(gtx menu.C, th *theme.Theme) menu.D {
				lbl := material.Body1(th.Theme, label)
				return layout.Inset{Left: unit.Dp(4), Right: unit.Dp(4)}.Layout(gtx, lbl.Layout)
			},
		})
	}
	drop := menu.NewDropdownMenu([][]menu.MenuOption{opts})
	drop.MaxWidth = unit.Dp(200)
	return drop
}

// Height reports the bar's pixel height so other layouts can stay clear
// of it.
func (t *titleBar) Height() int { return t.heightPx }

func (t *titleBar) Update(gtx layout.Context) {
	if h := gtx.Dp(titleBarHeight); h != t.heightPx {
		t.heightPx = h
		t.Window().Invalidate()
	}
	t.SetBounds(image.Rect(0, 0, gtx.Constraints.Max.X, t.heightPx))

	for {
		ev, ok := t.caption.Update(gtx.Source)
		if !ok {
			break
		}
		switch {
		case ev.Kind == gesture.KindClick && ev.NumClicks >= 2:
			t.toggleMaximize()
		case ev.Kind == gesture.KindPress && ev.NumClicks == 1:
			t.app.window.Perform(system.ActionMove)
		}
	}

	if t.minBtn.Clicked(gtx) {
		t.app.window.Perform(system.ActionMinimize)
	}
	if t.maxBtn.Clicked(gtx) {
		t.toggleMaximize()
	}
	if t.closeBtn.Clicked(gtx) {
		t.app.window.Perform(system.ActionClose)
	}
	if t.menuBtn.Clicked(gtx) && t.overflow != nil {
		t.overflow.ToggleVisibility(gtx)
	}

	if q := t.search.Text(); q != t.lastQuery {
		t.lastQuery = q
		win := t.Window()
		t.app.mgr.Send(win.ID, t.Name(), win.ID, "", SearchQuery{Text: q})
	}
}

func (t *titleBar) toggleMaximize() {
	if t.maximized {
		t.app.window.Perform(system.ActionUnmaximize)
	} else {
		t.app.window.Perform(system.ActionMaximize)
	}
}

// HandleEvent tracks the window mode so the maximize button can flip to a
// restore button. The event stays unconsumed for other layouts.
func (t *titleBar) HandleEvent(evt event.Event) bool {
	if ce, ok := evt.(app.ConfigEvent); ok {
		t.maximized = ce.Config.Mode == app.Maximized
	}
	return false
}

func (t *titleBar) Layout(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max
	paint.FillShape(gtx.Ops, t.app.gvTheme.Bg2, clip.Rect{Max: size}.Op())

	layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
		layout.Rigid(t.layoutBrand),
		layout.Rigid(t.layoutSearch),
		layout.Flexed(1, t.layoutCaption),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			dims := t.layoutWindowButton(gtx, &t.menuBtn, t.moreIcon, false)
			if t.overflow != nil {
				t.overflow.Layout(gtx, t.app.gvTheme)
			}
			return dims
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return t.layoutWindowButton(gtx, &t.minBtn, t.minIcon, false)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			icon := t.maxIcon
			if t.maximized {
				icon = t.restoreIcon
			}
			return t.layoutWindowButton(gtx, &t.maxBtn, icon, false)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return t.layoutWindowButton(gtx, &t.closeBtn, t.closeIcon, true)
		}),
	)
	return layout.Dimensions{Size: size}
}

// layoutBrand draws the app mark and name; the area doubles as caption
// surface so the window can be dragged from it.
func (t *titleBar) layoutBrand(gtx layout.Context) layout.Dimensions {
	th := t.app.gvTheme
	dims := layout.Inset{Left: unit.Dp(14), Right: unit.Dp(12)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if t.appIcon == nil {
					return layout.Dimensions{}
				}
				sz := gtx.Dp(unit.Dp(18))
				gtx.Constraints.Min = image.Pt(sz, sz)
				gtx.Constraints.Max = gtx.Constraints.Min
				return t.appIcon.Layout(gtx, th.Palette.ContrastBg)
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
			layout.Rigid(material.Body1(th.Theme, "DeskMate").Layout),
		)
	})
	area := clip.Rect{Max: image.Pt(dims.Size.X, t.heightPx)}.Push(gtx.Ops)
	t.caption.Add(gtx.Ops)
	area.Pop()
	return dims
}

func (t *titleBar) layoutSearch(gtx layout.Context) layout.Dimensions {
	th := t.app.gvTheme
	width := gtx.Dp(unit.Dp(240))
	if width > gtx.Constraints.Max.X {
		width = gtx.Constraints.Max.X
	}
	height := gtx.Dp(unit.Dp(28))
	return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		size := image.Pt(width, height)
		gtx.Constraints.Min = size
		gtx.Constraints.Max = size
		roundedCard(gtx, th.Palette.Bg, size, unit.Dp(6))
		return layout.Inset{Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					if t.searchIcon == nil {
						return layout.Dimensions{}
					}
					sz := gtx.Dp(unit.Dp(14))
					gtx.Constraints.Min = image.Pt(sz, sz)
					gtx.Constraints.Max = gtx.Constraints.Min
					return t.searchIcon.Layout(gtx, mutedFg(th.Palette.Fg))
				}),
				layout.Rigid(layout.Spacer{Width: unit.Dp(6)}.Layout),
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					ed := material.Editor(th.Theme, &t.search, "Search")
					ed.TextSize = unit.Sp(14)
					return ed.Layout(gtx)
				}),
			)
		})
	})
}

// layoutCaption fills the gap between the search box and the window
// buttons with a drag surface.
func (t *titleBar) layoutCaption(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max
	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	t.caption.Add(gtx.Ops)
	return layout.Dimensions{Size: size}
}

func (t *titleBar) layoutWindowButton(gtx layout.Context, btn *widget.Clickable, icon *widget.Icon, danger bool) layout.Dimensions {
	th := t.app.gvTheme
	size := image.Pt(gtx.Dp(unit.Dp(46)), gtx.Constraints.Max.Y)
	return btn.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		gtx.Constraints.Min = size
		gtx.Constraints.Max = size
		fg := th.Palette.Fg
		if btn.Hovered() {
			bg := th.Palette.Bg
			if danger {
				bg = color.NRGBA{R: 196, G: 43, B: 28, A: 255}
				fg = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			}
			paint.FillShape(gtx.Ops, bg, clip.Rect{Max: size}.Op())
		}
		if icon == nil {
			return layout.Dimensions{Size: size}
		}
		return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			sz := gtx.Dp(unit.Dp(16))
			gtx.Constraints.Min = image.Pt(sz, sz)
			gtx.Constraints.Max = gtx.Constraints.Min
			return icon.Layout(gtx, fg)
		})
	})
}
