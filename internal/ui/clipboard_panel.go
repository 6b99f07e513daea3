package ui

import (
	"fmt"
	"image"
	"io"
	"strings"

	"gioui.org/layout"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"github.com/OpenDeskLab/DeskMate/internal/clipwatch"
	"github.com/OpenDeskLab/DeskMate/internal/layouts"
)

// clipRow holds the per-entry button state. Rows are keyed by entry text,
// which the watcher keeps unique.
type clipRow struct {
	pin    widget.Clickable
	copy   widget.Clickable
	remove widget.Clickable
}

// clipboardPanel renders the watcher's history with pin, copy back and
// remove actions per entry, plus clear and export for the whole list.
type clipboardPanel struct {
	layouts.Base
	app *App

	list      widget.List
	rows      map[string]*clipRow
	clearBtn  widget.Clickable
	exportBtn widget.Clickable

	starIcon       *widget.Icon
	starBorderIcon *widget.Icon
	copyIcon       *widget.Icon
	closeIcon      *widget.Icon
}

func newClipboardPanel(a *App, win *layouts.WindowContext) *clipboardPanel {
	c := &clipboardPanel{
		Base: layouts.NewBase(layoutClipboard, win),
		app:  a,
		rows: make(map[string]*clipRow),
	}
	c.list.Axis = layout.Vertical
	c.starIcon = loadIcon(icons.ToggleStar)
	c.starBorderIcon = loadIcon(icons.ToggleStarBorder)
	c.copyIcon = loadIcon(icons.ContentContentCopy)
	c.closeIcon = loadIcon(icons.NavigationClose)
	return c
}

func (c *clipboardPanel) row(text string) *clipRow {
	r, ok := c.rows[text]
	if !ok {
		r = &clipRow{}
		c.rows[text] = r
	}
	return r
}

// pruneRows drops button state for entries no longer in the history so
// the map doesn't grow with clipboard churn.
func (c *clipboardPanel) pruneRows(entries []clipwatch.Entry) {
	if len(c.rows) <= 2*len(entries)+8 {
		return
	}
	live := make(map[string]bool, len(entries))
	for _, e := range entries {
		live[e.Text] = true
	}
	for text := range c.rows {
		if !live[text] {
			delete(c.rows, text)
		}
	}
}

func (c *clipboardPanel) Update(gtx layout.Context) {
	c.SetBounds(c.app.contentArea(gtx.Constraints.Max))

	entries := c.app.watcher.Snapshot()
	c.pruneRows(entries)

	for i, e := range entries {
		r := c.row(e.Text)
		if r.pin.Clicked(gtx) {
			c.app.watcher.Pin(i, !e.Pinned)
		}
		if r.copy.Clicked(gtx) {
			if err := c.app.watcher.CopyTo(i); err != nil {
				c.app.Logf("[ERROR] Clipboard write failed: %v", err)
				c.app.Notify(Notice{Text: "Couldn't copy to clipboard", Error: true})
			} else {
				c.app.Notify(Notice{Text: "Copied to clipboard"})
			}
		}
		if r.remove.Clicked(gtx) {
			c.app.watcher.Remove(i)
		}
	}

	if c.clearBtn.Clicked(gtx) {
		c.app.watcher.Clear()
		c.app.Logf("[INFO] Clipboard history cleared")
	}
	if c.exportBtn.Clicked(gtx) {
		c.exportHistory()
	}
}

// exportHistory writes the history to a user-picked text file, oldest
// entry first.
func (c *clipboardPanel) exportHistory() {
	entries := c.app.watcher.Snapshot()
	if len(entries) == 0 {
		c.app.Notify(Notice{Text: "Nothing to export"})
		return
	}
	go func() {
		file, err := c.app.fileExplorer.CreateFile("clipboard-history.txt")
		if err != nil {
			if err != explorer.ErrUserDecline {
				c.app.Logf("[ERROR] Export picker failed: %v", err)
			}
			return
		}
		defer file.Close()

		var b strings.Builder
		for i := len(entries) - 1; i >= 0; i-- {
			e := entries[i]
			b.WriteString("[" + e.At.Format("2006-01-02 15:04:05") + "]")
			if e.Pinned {
				b.WriteString(" (pinned)")
			}
			b.WriteString("\n")
			b.WriteString(e.Text)
			b.WriteString("\n\n")
		}
		if _, err := io.WriteString(file, b.String()); err != nil {
			c.app.Logf("[ERROR] Export failed: %v", err)
			return
		}
		c.app.Logf("[INFO] Exported %d clipboard entries", len(entries))
		c.app.invalidate()
	}()
}

func (c *clipboardPanel) Layout(gtx layout.Context) layout.Dimensions {
	th := c.app.gvTheme
	size := gtx.Constraints.Max
	entries := c.app.watcher.Snapshot()

	layout.UniformInset(unit.Dp(24)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return c.layoutHeader(gtx, len(entries))
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				if len(entries) == 0 {
					lbl := material.Body2(th.Theme, "Nothing captured yet. Copy some text and it shows up here.")
					lbl.Color = mutedFg(th.Palette.Fg)
					return lbl.Layout(gtx)
				}
				return material.List(th.Theme, &c.list).Layout(gtx, len(entries),
					func(gtx layout.Context, i int) layout.Dimensions {
						return c.layoutEntry(gtx, entries[i])
					})
			}),
		)
	})
	return layout.Dimensions{Size: size}
}

func (c *clipboardPanel) layoutHeader(gtx layout.Context, count int) layout.Dimensions {
	th := c.app.gvTheme
	return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
		layout.Rigid(material.H6(th.Theme, "Clipboard History").Layout),
		layout.Rigid(layout.Spacer{Width: unit.Dp(12)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			text := fmt.Sprintf("%d entries, newest first", count)
			if err := c.app.watcher.LastError(); err != nil {
				text = fmt.Sprintf("clipboard unavailable: %v", err)
			}
			lbl := material.Caption(th.Theme, text)
			lbl.Color = mutedFg(th.Palette.Fg)
			return lbl.Layout(gtx)
		}),
		layout.Flexed(1, layout.Spacer{}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			b := material.Button(th.Theme, &c.exportBtn, "Export")
			b.Background = th.Bg2
			b.Color = th.Palette.Fg
			return b.Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			b := material.Button(th.Theme, &c.clearBtn, "Clear")
			b.Background = th.Bg2
			b.Color = th.Palette.Fg
			return b.Layout(gtx)
		}),
	)
}

func (c *clipboardPanel) layoutEntry(gtx layout.Context, e clipwatch.Entry) layout.Dimensions {
	th := c.app.gvTheme
	r := c.row(e.Text)
	return layout.Inset{Bottom: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Background{}.Layout(gtx,
			func(gtx layout.Context) layout.Dimensions {
				roundedCard(gtx, th.Bg2, gtx.Constraints.Min, unit.Dp(8))
				return layout.Dimensions{Size: gtx.Constraints.Min}
			},
			func(gtx layout.Context) layout.Dimensions {
				return layout.UniformInset(unit.Dp(10)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
						layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
							return c.layoutEntryText(gtx, e)
						}),
						layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
						layout.Rigid(func(gtx layout.Context) layout.Dimensions {
							icon := c.starBorderIcon
							if e.Pinned {
								icon = c.starIcon
							}
							return c.layoutIconButton(gtx, &r.pin, icon, e.Pinned)
						}),
						layout.Rigid(func(gtx layout.Context) layout.Dimensions {
							return c.layoutIconButton(gtx, &r.copy, c.copyIcon, false)
						}),
						layout.Rigid(func(gtx layout.Context) layout.Dimensions {
							return c.layoutIconButton(gtx, &r.remove, c.closeIcon, false)
						}),
					)
				})
			},
		)
	})
}

func (c *clipboardPanel) layoutEntryText(gtx layout.Context, e clipwatch.Entry) layout.Dimensions {
	th := c.app.gvTheme
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			lbl := material.Body2(th.Theme, e.Text)
			lbl.MaxLines = 2
			return lbl.Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(2)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			caption := e.At.Format("15:04:05")
			if e.Pinned {
				caption += ", pinned"
			}
			lbl := material.Caption(th.Theme, caption)
			lbl.Color = mutedFg(th.Palette.Fg)
			return lbl.Layout(gtx)
		}),
	)
}

func (c *clipboardPanel) layoutIconButton(gtx layout.Context, btn *widget.Clickable, icon *widget.Icon, active bool) layout.Dimensions {
	th := c.app.gvTheme
	return btn.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		side := gtx.Dp(28)
		gtx.Constraints = layout.Exact(image.Pt(side, side))
		if btn.Hovered() {
			roundedCard(gtx, th.Palette.Bg, gtx.Constraints.Max, unit.Dp(6))
		}
		return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			sz := gtx.Dp(16)
			gtx.Constraints = layout.Exact(image.Pt(sz, sz))
			col := mutedFg(th.Palette.Fg)
			if active {
				col = th.Palette.ContrastBg
			}
			if icon == nil {
				return layout.Dimensions{Size: gtx.Constraints.Max}
			}
			return icon.Layout(gtx, col)
		})
	})
}
