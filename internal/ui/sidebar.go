package ui

import (
	"image"
	"strings"
	"time"

	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"github.com/OpenDeskLab/DeskMate/internal/layouts"
)

const (
	sidebarExpandedWidth  = unit.Dp(220)
	sidebarCollapsedWidth = unit.Dp(64)
	sidebarAnimDuration   = 180 * time.Millisecond
)

// sidebarNode is one row of the navigation tree. A leaf either switches
// the content region or runs an action; a parent folds its children.
type sidebarNode struct {
	label    string
	icon     *widget.Icon
	target   string
	action   func()
	children []*sidebarNode
	open     bool
	click    widget.Clickable
}

func (n *sidebarNode) leaf() bool { return len(n.children) == 0 }

// sidebar is the collapsible navigation tree on the window's left edge.
// Collapsed it shrinks to an icon rail; the title-bar search filters its
// rows through the message bus.
type sidebar struct {
	layouts.Base
	app *App

	nodes []*sidebarNode

	collapseBtn widget.Clickable
	collapsed   bool
	frac        float32 // 1 expanded, 0 collapsed
	animating   bool
	animStart   time.Time
	animFrom    float32

	filter   string
	selected string
	widthPx  int

	expandIcon   *widget.Icon
	collapseIcon *widget.Icon
	openIcon     *widget.Icon
	closedIcon   *widget.Icon
}

func newSidebar(a *App, win *layouts.WindowContext) *sidebar {
	s := &sidebar{Base: layouts.NewBase(layoutSidebar, win), app: a, frac: 1}
	s.expandIcon = loadIcon(icons.NavigationChevronRight)
	s.collapseIcon = loadIcon(icons.NavigationChevronLeft)
	s.openIcon = loadIcon(icons.NavigationExpandLess)
	s.closedIcon = loadIcon(icons.NavigationExpandMore)
	s.nodes = []*sidebarNode{
		{label: "Pomodoro", icon: loadIcon(icons.ActionAlarm), target: layoutPomodoro},
		{label: "Toolbox", icon: loadIcon(icons.ActionBuild), open: true, children: []*sidebarNode{
			{label: "Exchange Records", icon: loadIcon(icons.ActionCardGiftcard), target: layoutExchange},
			{label: "Clipboard History", icon: loadIcon(icons.ContentContentPaste), target: layoutClipboard},
		}},
		{label: "System", icon: loadIcon(icons.HardwareComputer), children: []*sidebarNode{
			{label: "Settings", icon: loadIcon(icons.ActionSettings), action: func() { a.mgr.EnterModal(layoutSettings) }},
			{label: "Logs", icon: loadIcon(icons.ActionList), action: a.toggleLogs},
		}},
	}
	if a.cfg.GetBool("ui.sidebar_collapsed", false) {
		s.collapsed = true
		s.frac = 0
	}
	s.selected = a.mgr.CurrentContentIn(win.ID)
	a.mgr.RegisterHandler(win.ID, layoutSidebar, s.onMessage)
	return s
}

func (s *sidebar) onMessage(msg layouts.Message) {
	switch p := msg.Payload.(type) {
	case SearchQuery:
		s.filter = strings.ToLower(strings.TrimSpace(p.Text))
	case layouts.ContentChanged:
		s.selected = p.Current
	}
}

// Width reports the current animated pixel width so content panels can
// stay clear of the rail.
func (s *sidebar) Width() int { return s.widthPx }

func (s *sidebar) toggleCollapsed() {
	s.collapsed = !s.collapsed
	s.animFrom = s.frac
	s.animStart = time.Now()
	s.animating = true
	s.app.cfg.PutBool("ui.sidebar_collapsed", s.collapsed)
	if s.collapsed {
		s.app.Logf("[INFO] Sidebar collapsed")
	} else {
		s.app.Logf("[INFO] Sidebar expanded")
	}
}

func (s *sidebar) Update(gtx layout.Context) {
	s.step(gtx)

	exp := gtx.Dp(sidebarExpandedWidth)
	col := gtx.Dp(sidebarCollapsedWidth)
	s.widthPx = col + int(s.frac*float32(exp-col)+0.5)

	top, bottom := s.app.chromeBand(gtx.Constraints.Max)
	s.SetBounds(image.Rect(0, top, s.widthPx, bottom))

	if s.collapseBtn.Clicked(gtx) {
		s.toggleCollapsed()
	}
	for _, n := range s.nodes {
		s.updateNode(gtx, n)
	}
}

// step advances the collapse animation with a smoothstep ease.
func (s *sidebar) step(gtx layout.Context) {
	if !s.animating {
		return
	}
	target := float32(1)
	if s.collapsed {
		target = 0
	}
	p := float32(gtx.Now.Sub(s.animStart)) / float32(sidebarAnimDuration)
	if p >= 1 {
		s.frac = target
		s.animating = false
		return
	}
	p = p * p * (3 - 2*p)
	s.frac = s.animFrom + (target-s.animFrom)*p
	gtx.Execute(op.InvalidateCmd{})
}

func (s *sidebar) updateNode(gtx layout.Context, n *sidebarNode) {
	if n.click.Clicked(gtx) {
		s.activate(n)
	}
	for _, c := range n.children {
		s.updateNode(gtx, c)
	}
}

func (s *sidebar) activate(n *sidebarNode) {
	switch {
	case !n.leaf():
		if s.collapsed {
			s.toggleCollapsed()
			n.open = true
			return
		}
		n.open = !n.open
	case n.target != "":
		s.app.mgr.SwitchTo(n.target, true)
	case n.action != nil:
		n.action()
	}
}

// nodeShown applies the search filter: a row survives when its own label
// or any descendant's label matches.
func (s *sidebar) nodeShown(n *sidebarNode, filter string) bool {
	if filter == "" {
		return true
	}
	if strings.Contains(strings.ToLower(n.label), filter) {
		return true
	}
	for _, c := range n.children {
		if s.nodeShown(c, filter) {
			return true
		}
	}
	return false
}

func (s *sidebar) Layout(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max
	paint.FillShape(gtx.Ops, s.app.gvTheme.Bg2, clip.Rect{Max: size}.Op())

	if s.frac < 0.5 {
		s.layoutRail(gtx)
	} else {
		s.layoutTree(gtx)
	}
	return layout.Dimensions{Size: size}
}

func (s *sidebar) layoutTree(gtx layout.Context) layout.Dimensions {
	return layout.Inset{Top: unit.Dp(10), Left: unit.Dp(10), Right: unit.Dp(10)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		children := []layout.FlexChild{
			layout.Rigid(s.layoutTreeHeader),
			layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		}
		for _, n := range s.nodes {
			if !s.nodeShown(n, s.filter) {
				continue
			}
			node := n
			children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return s.layoutNode(gtx, node, 0)
			}))
		}
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
	})
}

func (s *sidebar) layoutTreeHeader(gtx layout.Context) layout.Dimensions {
	th := s.app.gvTheme
	return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			lbl := material.Caption(th.Theme, "NAVIGATION")
			lbl.Color = mutedFg(th.Palette.Fg)
			return layout.Inset{Left: unit.Dp(10)}.Layout(gtx, lbl.Layout)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return s.layoutIconButton(gtx, &s.collapseBtn, s.collapseIcon, false)
		}),
	)
}

func (s *sidebar) layoutNode(gtx layout.Context, n *sidebarNode, depth int) layout.Dimensions {
	rows := []layout.FlexChild{
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Bottom: unit.Dp(6), Left: unit.Dp(14 * depth)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return s.layoutRow(gtx, n)
			})
		}),
	}
	if !n.leaf() && (n.open || s.filter != "") {
		for _, c := range n.children {
			if !s.nodeShown(c, s.filter) {
				continue
			}
			child := c
			rows = append(rows, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return s.layoutNode(gtx, child, depth+1)
			}))
		}
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, rows...)
}

func (s *sidebar) layoutRow(gtx layout.Context, n *sidebarNode) layout.Dimensions {
	th := s.app.gvTheme
	size := image.Pt(gtx.Constraints.Max.X, gtx.Dp(unit.Dp(38)))

	selected := n.leaf() && n.target != "" && n.target == s.selected
	return n.click.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		gtx.Constraints.Min = size
		gtx.Constraints.Max = size
		fg := th.Palette.Fg
		if selected {
			fg = th.Palette.ContrastFg
			roundedCard(gtx, th.Palette.ContrastBg, size, unit.Dp(6))
		} else if n.click.Hovered() {
			roundedCard(gtx, th.Palette.Bg, size, unit.Dp(6))
		}
		return layout.Inset{Left: unit.Dp(10), Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			children := []layout.FlexChild{
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					if n.icon == nil {
						return layout.Dimensions{}
					}
					sz := gtx.Dp(unit.Dp(18))
					gtx.Constraints.Min = image.Pt(sz, sz)
					gtx.Constraints.Max = gtx.Constraints.Min
					return n.icon.Layout(gtx, fg)
				}),
				layout.Rigid(layout.Spacer{Width: unit.Dp(10)}.Layout),
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					lbl := material.Body2(th.Theme, n.label)
					lbl.Color = fg
					lbl.MaxLines = 1
					return lbl.Layout(gtx)
				}),
			}
			if !n.leaf() {
				children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					chevron := s.closedIcon
					if n.open || s.filter != "" {
						chevron = s.openIcon
					}
					if chevron == nil {
						return layout.Dimensions{}
					}
					sz := gtx.Dp(unit.Dp(16))
					gtx.Constraints.Min = image.Pt(sz, sz)
					gtx.Constraints.Max = gtx.Constraints.Min
					return chevron.Layout(gtx, mutedFg(th.Palette.Fg))
				}))
			}
			return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx, children...)
			})
		})
	})
}

// layoutRail draws the collapsed icon strip: the expand chevron on top,
// then every leaf of the tree flattened into one column.
func (s *sidebar) layoutRail(gtx layout.Context) layout.Dimensions {
	var leaves []*sidebarNode
	for _, n := range s.nodes {
		if n.leaf() {
			leaves = append(leaves, n)
			continue
		}
		leaves = append(leaves, n.children...)
	}

	children := []layout.FlexChild{
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return s.layoutRailRow(gtx, &s.collapseBtn, s.expandIcon, false)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
	}
	for _, n := range leaves {
		if !s.nodeShown(n, s.filter) {
			continue
		}
		node := n
		children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			selected := node.target != "" && node.target == s.selected
			return s.layoutRailRow(gtx, &node.click, node.icon, selected)
		}))
	}
	return layout.Inset{Top: unit.Dp(10)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
	})
}

func (s *sidebar) layoutRailRow(gtx layout.Context, btn *widget.Clickable, icon *widget.Icon, selected bool) layout.Dimensions {
	return layout.Inset{Bottom: unit.Dp(6)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		gtx.Constraints.Min.X = gtx.Constraints.Max.X
		return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return s.layoutIconButton(gtx, btn, icon, selected)
		})
	})
}

func (s *sidebar) layoutIconButton(gtx layout.Context, btn *widget.Clickable, icon *widget.Icon, selected bool) layout.Dimensions {
	th := s.app.gvTheme
	sz := gtx.Dp(unit.Dp(32))
	size := image.Pt(sz, sz)
	return btn.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		gtx.Constraints.Min = size
		gtx.Constraints.Max = size
		fg := th.Palette.Fg
		if selected {
			fg = th.Palette.ContrastFg
			roundedCard(gtx, th.Palette.ContrastBg, size, unit.Dp(6))
		} else if btn.Hovered() {
			roundedCard(gtx, th.Palette.Bg, size, unit.Dp(6))
		}
		if icon == nil {
			return layout.Dimensions{Size: size}
		}
		return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			isz := gtx.Dp(unit.Dp(18))
			gtx.Constraints.Min = image.Pt(isz, isz)
			gtx.Constraints.Max = gtx.Constraints.Min
			return icon.Layout(gtx, fg)
		})
	})
}
