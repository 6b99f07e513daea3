package ui

import (
	"image"
	"testing"
	"time"

	"gioui.org/widget"

	"github.com/OpenDeskLab/DeskMate/internal/layouts"
)

func openSettings(t *testing.T) (*App, *settingsModal) {
	t.Helper()
	a := newTestApp(t)
	startShell(a)
	frame(a, image.Pt(1200, 800))

	if !a.mgr.EnterModal(layoutSettings) {
		t.Fatal("EnterModal(settings) failed")
	}
	l, ok := a.mgr.GetIn(a.id, layoutSettings)
	if !ok {
		t.Fatal("settings modal has no instance")
	}
	return a, l.(*settingsModal)
}

func TestSettingsModalCapture(t *testing.T) {
	a, _ := openSettings(t)
	if got := a.mgr.ModalIn(a.id); got != layoutSettings {
		t.Errorf("modal = %q, want %q", got, layoutSettings)
	}
	if got := a.mgr.StateOf(layoutSettings); got != layouts.StateModal {
		t.Errorf("state = %v, want %v", got, layouts.StateModal)
	}

	a.mgr.ExitModal(layoutSettings)
	if got := a.mgr.ModalIn(a.id); got != "" {
		t.Errorf("modal after exit = %q, want none", got)
	}
	// Non-persistent: the instance and its throwaway edits are gone.
	if _, ok := a.mgr.GetIn(a.id, layoutSettings); ok {
		t.Error("settings instance survived exit")
	}
}

func TestSettingsSeedsFromLiveTimer(t *testing.T) {
	a := newTestApp(t)
	startShell(a)
	frame(a, image.Pt(1200, 800))

	l, _ := a.mgr.GetIn(a.id, layoutPomodoro)
	ts, _ := layouts.As[TimerSource](l)
	cfg := ts.Timer().Config()
	cfg.Focus = 42 * time.Minute
	ts.Timer().SetConfig(cfg)

	a.mgr.EnterModal(layoutSettings)
	sl, _ := a.mgr.GetIn(a.id, layoutSettings)
	s := sl.(*settingsModal)
	if got := s.focusMin.Text(); got != "42" {
		t.Errorf("seeded focus = %q, want %q", got, "42")
	}
}

func TestSettingsApply(t *testing.T) {
	a, s := openSettings(t)

	s.focusMin.SetText("30")
	s.shortMin.SetText("6")
	s.longMin.SetText("20")
	s.rounds.SetText("3")
	s.clipMax.SetText("5")
	s.clipPoll.SetText("250")
	s.dataDir.SetText(" /games/client/data ")

	if !s.apply() {
		t.Fatal("apply rejected valid values")
	}

	if got := a.cfg.GetDuration("pomodoro.focus", 0); got != 30*time.Minute {
		t.Errorf("persisted focus = %v, want 30m", got)
	}
	if got := a.cfg.GetInt("pomodoro.rounds", 0); got != 3 {
		t.Errorf("persisted rounds = %d, want 3", got)
	}
	if got := a.cfg.GetDuration("clipboard.poll", 0); got != 250*time.Millisecond {
		t.Errorf("persisted poll = %v, want 250ms", got)
	}
	if got, _ := a.cfg.Get("exchange.data_dir"); got != "/games/client/data" {
		t.Errorf("persisted data dir = %q, want trimmed path", got)
	}

	// The live timer picked the new lengths up immediately.
	l, _ := a.mgr.GetIn(a.id, layoutPomodoro)
	ts, _ := layouts.As[TimerSource](l)
	if got := ts.Timer().Config().Focus; got != 30*time.Minute {
		t.Errorf("live timer focus = %v, want 30m", got)
	}
}

func TestSettingsRejectsBadInput(t *testing.T) {
	_, s := openSettings(t)

	fields := []struct {
		name string
		ed   *widget.Editor
		bad  string
	}{
		{"non-numeric focus", &s.focusMin, "abc"},
		{"zero rounds", &s.rounds, "0"},
		{"negative history", &s.clipMax, "-3"},
		{"empty poll", &s.clipPoll, ""},
	}
	for _, tc := range fields {
		t.Run(tc.name, func(t *testing.T) {
			prev := tc.ed.Text()
			tc.ed.SetText(tc.bad)
			if s.apply() {
				t.Error("apply accepted an invalid value")
			}
			tc.ed.SetText(prev)
		})
	}
}

func TestSettingsPollClampedToFloor(t *testing.T) {
	a, s := openSettings(t)
	s.clipPoll.SetText("1")
	if !s.apply() {
		t.Fatal("apply rejected a tiny poll interval")
	}
	if got := a.cfg.GetDuration("clipboard.poll", 0); got != 100*time.Millisecond {
		t.Errorf("poll = %v, want the 100ms floor", got)
	}
}

func TestSettingsClearsDataDirOverride(t *testing.T) {
	a, s := openSettings(t)
	a.cfg.Put("exchange.data_dir", "/old/override")
	s.dataDir.SetText("   ")
	if !s.apply() {
		t.Fatal("apply rejected blank data dir")
	}
	if _, ok := a.cfg.Get("exchange.data_dir"); ok {
		t.Error("blank data dir did not clear the override")
	}
}
