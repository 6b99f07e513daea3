package ui

import (
	"image"
	"testing"
	"time"

	"github.com/OpenDeskLab/DeskMate/internal/layouts"
)

func TestTimerStatusDedupe(t *testing.T) {
	a := newTestApp(t)
	startShell(a)
	size := image.Pt(1200, 800)
	frame(a, size)

	// Swap the status bar's handler for a counter; sends target it by name.
	var hits int
	a.mgr.RegisterHandler(a.id, layoutStatusBar, func(layouts.Message) { hits++ })

	l, _ := a.mgr.GetIn(a.id, layoutPomodoro)
	p := l.(*pomodoroPanel)
	now := time.Now()

	p.timer.Start(now)
	p.publishStatus(now)
	if hits != 1 {
		t.Fatalf("sends after start = %d, want 1", hits)
	}
	p.publishStatus(now)
	p.publishStatus(now.Add(300 * time.Millisecond)) // same displayed second
	if hits != 1 {
		t.Errorf("sends after unchanged repeats = %d, want 1", hits)
	}
	p.publishStatus(now.Add(1200 * time.Millisecond)) // next second on the clock
	if hits != 2 {
		t.Errorf("sends after the clock moved = %d, want 2", hits)
	}
	p.timer.Pause(now.Add(1300 * time.Millisecond))
	p.publishStatus(now.Add(1300 * time.Millisecond)) // run state flipped
	if hits != 3 {
		t.Errorf("sends after pause = %d, want 3", hits)
	}
}

func TestTimerChipFollowsEngagement(t *testing.T) {
	a := newTestApp(t)
	startShell(a)
	size := image.Pt(1200, 800)
	frame(a, size)

	l, _ := a.mgr.GetIn(a.id, layoutPomodoro)
	ts, ok := layouts.As[TimerSource](l)
	if !ok {
		t.Fatal("pomodoro panel does not expose its timer")
	}
	ts.Timer().Start(time.Now())

	// With the panel on screen the chip stays away.
	frame(a, size)
	if c, ok := a.mgr.GetIn(a.id, layoutTimerChip); ok && c.Visible() {
		t.Error("chip visible while its panel holds the content region")
	}

	a.mgr.SwitchTo(layoutClipboard, true)
	frame(a, size)
	chip, ok := a.mgr.GetIn(a.id, layoutTimerChip)
	if !ok || !chip.Visible() {
		t.Fatal("chip absent while the timer runs in the background")
	}

	// Returning to the panel retires the chip through conflict resolution.
	a.mgr.SwitchTo(layoutPomodoro, true)
	frame(a, size)
	if c, ok := a.mgr.GetIn(a.id, layoutTimerChip); ok && c.Visible() {
		t.Error("chip survived switching back to the pomodoro panel")
	}
}

func TestTimerChipRetiresWhenIdle(t *testing.T) {
	a := newTestApp(t)
	startShell(a)
	size := image.Pt(1200, 800)
	frame(a, size)

	l, _ := a.mgr.GetIn(a.id, layoutPomodoro)
	p := l.(*pomodoroPanel)
	p.timer.Start(time.Now())
	a.mgr.SwitchTo(layoutClipboard, true)
	frame(a, size)
	if c, ok := a.mgr.GetIn(a.id, layoutTimerChip); !ok || !c.Visible() {
		t.Fatal("chip did not appear for a running background timer")
	}

	p.timer.Reset()
	frame(a, size)
	if c, ok := a.mgr.GetIn(a.id, layoutTimerChip); ok && c.Visible() {
		t.Error("chip still up after the timer was reset")
	}
}

func TestTimerConfigFromStore(t *testing.T) {
	a := newTestApp(t)
	a.cfg.PutDuration("pomodoro.focus", 50*time.Minute)
	a.cfg.PutInt("pomodoro.rounds", 2)

	cfg := timerConfigFromStore(a.cfg)
	if cfg.Focus != 50*time.Minute {
		t.Errorf("Focus = %v, want 50m", cfg.Focus)
	}
	if cfg.RoundsPerSet != 2 {
		t.Errorf("RoundsPerSet = %d, want 2", cfg.RoundsPerSet)
	}
	// Unset keys keep their defaults.
	if cfg.ShortBreak != 5*time.Minute {
		t.Errorf("ShortBreak = %v, want default 5m", cfg.ShortBreak)
	}
}
