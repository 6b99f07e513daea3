package ui

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	gfont "gioui.org/font"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"github.com/oligo/gioview/menu"
	"github.com/oligo/gioview/theme"

	"github.com/OpenDeskLab/DeskMate/internal/gamelog"
	"github.com/OpenDeskLab/DeskMate/internal/layouts"
	"github.com/OpenDeskLab/DeskMate/internal/recordurl"
)

// exchangePanel extracts the exchange-record API URL from a game client's
// web cache. The scan runs off the frame loop: locate the data directory
// (override, player log, registry), then read the newest cache that
// yields a complete URL.
type exchangePanel struct {
	layouts.Base
	app *App

	profile     gamelog.Profile
	profileBtn  widget.Clickable
	profileMenu *menu.DropdownMenu

	scanBtn   widget.Clickable
	browseBtn widget.Clickable
	copyBtn   widget.Clickable
	clearBtn  widget.Clickable

	urlText widget.Selectable
	lastURL string

	// Written by the scan worker, read by the frame loop.
	mu        sync.Mutex
	scanning  bool
	hasResult bool
	record    recordurl.Record
	scanErr   error

	wasScanning bool
}

func newExchangePanel(a *App, win *layouts.WindowContext) *exchangePanel {
	e := &exchangePanel{Base: layouts.NewBase(layoutExchange, win), app: a}
	e.profile = gamelog.Profiles()[0]
	if name, ok := a.cfg.Get("exchange.profile"); ok {
		if p, found := gamelog.ProfileByName(name); found {
			e.profile = p
		}
	}
	e.urlText.WrapPolicy = text.WrapGraphemes
	e.profileMenu = e.buildProfileMenu()
	return e
}

func (e *exchangePanel) buildProfileMenu() *menu.DropdownMenu {
	ps := gamelog.Profiles()
	opts := make([]menu.MenuOption, 0, len(ps))
	for _, p := range ps {
		prof := p
		opts = append(opts, menu.MenuOption{
			OnClicked: func() error {
				e.setProfile(prof)
				return nil
			},
			Layout: func(gtx menu.C, th *theme.Theme) menu.D {
				lbl := material.Body1(th.Theme, prof.DisplayName)
				if prof.Name == e.profile.Name {
					lbl.Color = th.Palette.ContrastBg
				}
				return layout.Inset{Left: unit.Dp(4), Right: unit.Dp(4)}.Layout(gtx, lbl.Layout)
			},
		})
	}
	drop := menu.NewDropdownMenu([][]menu.MenuOption{opts})
	drop.MaxWidth = unit.Dp(260)
	return drop
}

func (e *exchangePanel) setProfile(p gamelog.Profile) {
	if e.profile.Name == p.Name {
		return
	}
	e.profile = p
	e.app.cfg.Put("exchange.profile", p.Name)
	e.mu.Lock()
	e.hasResult = false
	e.scanErr = nil
	e.mu.Unlock()
	e.app.Logf("[INFO] Exchange profile: %s", p.DisplayName)
	e.app.invalidate()
}

func (e *exchangePanel) Update(gtx layout.Context) {
	e.SetBounds(e.app.contentArea(gtx.Constraints.Max))

	e.mu.Lock()
	scanning := e.scanning
	hasResult := e.hasResult
	scanErr := e.scanErr
	rec := e.record
	e.mu.Unlock()

	// Toasts must come from the frame loop, so the worker only flips
	// state and the transition is announced here.
	if e.wasScanning && !scanning {
		switch {
		case scanErr != nil:
			e.app.Notify(Notice{Text: "No record URL found", Error: true})
		case hasResult:
			e.app.Notify(Notice{Text: "Record URL extracted"})
		}
	}
	e.wasScanning = scanning

	if hasResult && rec.URL != e.lastURL {
		e.lastURL = rec.URL
		e.urlText.SetText(rec.URL)
	}

	if e.scanBtn.Clicked(gtx) && !scanning {
		e.startScan()
	}
	if e.browseBtn.Clicked(gtx) {
		e.pickLogFile()
	}
	if e.copyBtn.Clicked(gtx) && hasResult {
		e.copyURL(rec)
	}
	if e.clearBtn.Clicked(gtx) {
		e.app.cfg.Delete("exchange.data_dir")
		e.app.cfg.Delete("exchange.log_file")
		e.app.Logf("[INFO] Exchange overrides cleared")
	}

	if scanning {
		gtx.Execute(op.InvalidateCmd{})
	}
}

func (e *exchangePanel) startScan() {
	e.mu.Lock()
	if e.scanning {
		e.mu.Unlock()
		return
	}
	e.scanning = true
	e.scanErr = nil
	e.mu.Unlock()

	profile := e.profile
	override, _ := e.app.cfg.Get("exchange.data_dir")
	logFile, _ := e.app.cfg.Get("exchange.log_file")
	e.app.Logf("[SCAN] Locating %s data directory", profile.DisplayName)

	go func() {
		rec, err := e.runScan(profile, override, logFile)
		e.mu.Lock()
		e.scanning = false
		if err != nil {
			e.scanErr = err
			e.hasResult = false
		} else {
			e.record = rec
			e.hasResult = true
		}
		e.mu.Unlock()
		if err != nil {
			e.app.Logf("[ERROR] Record scan failed: %v", err)
		} else {
			e.app.Logf("[SCAN] Record URL found in %s", rec.CacheFile)
		}
		e.app.invalidate()
	}()
}

func (e *exchangePanel) runScan(profile gamelog.Profile, override, logFile string) (recordurl.Record, error) {
	scanner, err := gamelog.NewScanner(profile)
	if err != nil {
		return recordurl.Record{}, err
	}
	scanner.SetLogf(e.app.Logf)
	if logFile != "" {
		scanner.SetLogCandidates(append([]string{logFile}, scanner.LogCandidates()...)...)
	}
	dataDir, err := scanner.FindDataDir(override)
	if err != nil {
		return recordurl.Record{}, err
	}
	e.app.Logf("[SCAN] Data directory: %s", dataDir)
	return recordurl.Extract(dataDir, profile.APIMarker)
}

// pickLogFile lets the user point at the client's player log when the
// default locations miss it.
func (e *exchangePanel) pickLogFile() {
	go func() {
		file, err := e.app.fileExplorer.ChooseFile("txt", "log")
		if err != nil {
			if err != explorer.ErrUserDecline {
				e.app.Logf("[ERROR] File picker failed: %v", err)
			}
			return
		}
		defer file.Close()
		if f, ok := file.(*os.File); ok {
			e.app.cfg.Put("exchange.log_file", f.Name())
			e.app.Logf("[INFO] Player log override: %s", f.Name())
			e.app.invalidate()
		} else {
			e.app.Logf("[ERROR] Unable to get file path from picker")
		}
	}()
}

func (e *exchangePanel) copyURL(rec recordurl.Record) {
	if err := e.app.watcher.Write(rec.URL); err != nil {
		e.app.Logf("[ERROR] Clipboard write failed: %v", err)
		e.app.Notify(Notice{Text: "Couldn't copy to clipboard", Error: true})
		return
	}
	e.app.Logf("[INFO] Record URL copied to clipboard")
	e.app.Notify(Notice{Text: "URL copied to clipboard"})
}

func (e *exchangePanel) Layout(gtx layout.Context) layout.Dimensions {
	th := e.app.gvTheme
	size := gtx.Constraints.Max

	layout.UniformInset(unit.Dp(24)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(material.H6(th.Theme, "Exchange Records").Layout),
			layout.Rigid(layout.Spacer{Height: unit.Dp(4)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				lbl := material.Body2(th.Theme, "Extract the exchange-record API URL from the game client's web cache.")
				lbl.Color = mutedFg(th.Palette.Fg)
				return lbl.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(16)}.Layout),
			layout.Rigid(e.layoutControls),
			layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
			layout.Rigid(e.layoutOverrides),
			layout.Rigid(layout.Spacer{Height: unit.Dp(16)}.Layout),
			layout.Rigid(e.layoutResult),
		)
	})
	return layout.Dimensions{Size: size}
}

func (e *exchangePanel) layoutControls(gtx layout.Context) layout.Dimensions {
	th := e.app.gvTheme
	e.mu.Lock()
	scanning := e.scanning
	hasResult := e.hasResult
	e.mu.Unlock()

	children := []layout.FlexChild{
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			b := material.Button(th.Theme, &e.profileBtn, e.profile.DisplayName)
			b.Background = th.Bg2
			b.Color = th.Palette.Fg
			dims := b.Layout(gtx)
			if e.profileMenu != nil {
				e.profileMenu.Layout(gtx, th)
			}
			return dims
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(10)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			label := "Scan"
			if scanning {
				dots := int(time.Now().UnixMilli()/500) % 4
				label = "Scanning" + strings.Repeat(".", dots)
			}
			return material.Button(th.Theme, &e.scanBtn, label).Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(10)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			b := material.Button(th.Theme, &e.browseBtn, "Browse log")
			b.Background = th.Bg2
			b.Color = th.Palette.Fg
			return b.Layout(gtx)
		}),
	}
	if hasResult {
		children = append(children,
			layout.Rigid(layout.Spacer{Width: unit.Dp(10)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return material.Button(th.Theme, &e.copyBtn, "Copy URL").Layout(gtx)
			}),
		)
	}
	return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx, children...)
}

// layoutOverrides surfaces the persisted data-dir and log overrides so a
// stale path doesn't silently hijack every scan.
func (e *exchangePanel) layoutOverrides(gtx layout.Context) layout.Dimensions {
	th := e.app.gvTheme
	override, _ := e.app.cfg.Get("exchange.data_dir")
	logFile, _ := e.app.cfg.Get("exchange.log_file")
	if override == "" && logFile == "" {
		return layout.Dimensions{}
	}
	var parts []string
	if override != "" {
		parts = append(parts, "data dir: "+override)
	}
	if logFile != "" {
		parts = append(parts, "player log: "+logFile)
	}
	return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			lbl := material.Caption(th.Theme, "Overrides: "+strings.Join(parts, ", "))
			lbl.Color = mutedFg(th.Palette.Fg)
			return lbl.Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			b := material.Button(th.Theme, &e.clearBtn, "Clear")
			b.Background = th.Bg2
			b.Color = th.Palette.Fg
			b.TextSize = unit.Sp(12)
			b.Inset = layout.UniformInset(unit.Dp(4))
			return b.Layout(gtx)
		}),
	)
}

func (e *exchangePanel) layoutResult(gtx layout.Context) layout.Dimensions {
	th := e.app.gvTheme
	e.mu.Lock()
	scanning := e.scanning
	hasResult := e.hasResult
	scanErr := e.scanErr
	rec := e.record
	e.mu.Unlock()

	switch {
	case scanning:
		lbl := material.Body2(th.Theme, "Reading web caches, newest client version first.")
		lbl.Color = mutedFg(th.Palette.Fg)
		return lbl.Layout(gtx)
	case scanErr != nil:
		return e.layoutError(gtx, scanErr)
	case hasResult:
		return e.layoutRecord(gtx, rec)
	}
	lbl := material.Body2(th.Theme, "Pick a profile and press Scan. The client must have opened its records page at least once.")
	lbl.Color = mutedFg(th.Palette.Fg)
	return lbl.Layout(gtx)
}

func (e *exchangePanel) layoutError(gtx layout.Context, err error) layout.Dimensions {
	th := e.app.gvTheme
	hint := "Scan failed. Check the log pane for details."
	switch {
	case errors.Is(err, gamelog.ErrNotFound):
		hint = "Couldn't locate the game installation. Set a data directory override or browse to the player log."
	case errors.Is(err, gamelog.ErrUnsupported):
		hint = "Automatic discovery needs Windows. Set a data directory override instead."
	case errors.Is(err, recordurl.ErrNoRecordURL), errors.Is(err, recordurl.ErrNoCache):
		hint = "The cache held no record URL. Open the in-game records page, close the game, then rescan."
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			lbl := material.Body2(th.Theme, err.Error())
			lbl.Color = errAccent
			return lbl.Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(4)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			lbl := material.Caption(th.Theme, hint)
			lbl.Color = mutedFg(th.Palette.Fg)
			return lbl.Layout(gtx)
		}),
	)
}

func (e *exchangePanel) layoutRecord(gtx layout.Context, rec recordurl.Record) layout.Dimensions {
	th := e.app.gvTheme
	return layout.Background{}.Layout(gtx,
		func(gtx layout.Context) layout.Dimensions {
			roundedCard(gtx, th.Bg2, gtx.Constraints.Min, unit.Dp(10))
			return layout.Dimensions{Size: gtx.Constraints.Min}
		},
		func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(unit.Dp(14)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						lbl := material.Caption(th.Theme, "Record URL")
						lbl.Color = mutedFg(th.Palette.Fg)
						return lbl.Layout(gtx)
					}),
					layout.Rigid(layout.Spacer{Height: unit.Dp(6)}.Layout),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						label := material.Body2(th.Theme, rec.URL)
						label.State = &e.urlText
						label.WrapPolicy = text.WrapGraphemes
						label.Font.Typeface = gfont.Typeface("Go Mono")
						if e.app.monoShaper != nil {
							label.Shaper = e.app.monoShaper
						}
						label.Color = opaque(th.Palette.Fg)
						sel := th.Palette.ContrastBg
						sel.A = 0x60
						label.SelectionColor = sel
						return label.Layout(gtx)
					}),
					layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						from := fmt.Sprintf("From %s, cached %s",
							rec.CacheFile, rec.CachedAt.Format("Jan 2 15:04"))
						lbl := material.Caption(th.Theme, from)
						lbl.Color = mutedFg(th.Palette.Fg)
						return lbl.Layout(gtx)
					}),
				)
			})
		},
	)
}
