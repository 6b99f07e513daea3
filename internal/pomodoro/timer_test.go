package pomodoro

import (
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func shortConfig() Config {
	return Config{
		Focus:        25 * time.Minute,
		ShortBreak:   5 * time.Minute,
		LongBreak:    15 * time.Minute,
		RoundsPerSet: 2,
	}
}

func TestConfigNormalization(t *testing.T) {
	tm := New(Config{})
	if got, want := tm.Config(), DefaultConfig(); got != want {
		t.Errorf("New(zero config) = %+v, want defaults %+v", got, want)
	}
	tm.SetConfig(Config{Focus: time.Minute, RoundsPerSet: -3})
	cfg := tm.Config()
	if cfg.Focus != time.Minute {
		t.Errorf("Focus = %v, want 1m", cfg.Focus)
	}
	if cfg.RoundsPerSet != DefaultConfig().RoundsPerSet {
		t.Errorf("RoundsPerSet = %d, want default", cfg.RoundsPerSet)
	}
}

func TestStartPauseResume(t *testing.T) {
	tm := New(shortConfig())
	if tm.Running() {
		t.Fatal("new timer is running")
	}
	tm.Start(t0)
	if got := tm.Remaining(t0.Add(10 * time.Minute)); got != 15*time.Minute {
		t.Errorf("Remaining after 10m = %v, want 15m", got)
	}

	tm.Pause(t0.Add(10 * time.Minute))
	// Time passing while paused must not count.
	if got := tm.Remaining(t0.Add(2 * time.Hour)); got != 15*time.Minute {
		t.Errorf("Remaining while paused = %v, want 15m", got)
	}

	resume := t0.Add(3 * time.Hour)
	tm.Start(resume)
	if got := tm.Remaining(resume.Add(5 * time.Minute)); got != 10*time.Minute {
		t.Errorf("Remaining after resume+5m = %v, want 10m", got)
	}
}

func TestPhaseCycle(t *testing.T) {
	tm := New(shortConfig())
	tm.Start(t0)

	steps := []struct {
		at        time.Duration
		wantPhase Phase
		wantMoved bool
	}{
		{10 * time.Minute, PhaseFocus, false},
		{25 * time.Minute, PhaseShortBreak, true}, // round 1 done
		{29 * time.Minute, PhaseShortBreak, false},
		{30 * time.Minute, PhaseFocus, true},
		{55 * time.Minute, PhaseLongBreak, true}, // round 2 done, set complete
		{70 * time.Minute, PhaseFocus, true},
	}
	for _, st := range steps {
		phase, moved := tm.Tick(t0.Add(st.at))
		if phase != st.wantPhase || moved != st.wantMoved {
			t.Fatalf("Tick(+%v) = %v, %v; want %v, %v", st.at, phase, moved, st.wantPhase, st.wantMoved)
		}
	}
	if got := tm.Completed(); got != 2 {
		t.Errorf("Completed() = %d, want 2", got)
	}
	if !tm.Running() {
		t.Error("timer stopped at a phase boundary, want it to keep running")
	}
}

func TestTickRollsThroughLongGap(t *testing.T) {
	tm := New(shortConfig())
	tm.Start(t0)

	// 25m focus + 5m break + 20m into the next focus round.
	phase, moved := tm.Tick(t0.Add(50 * time.Minute))
	if phase != PhaseFocus || !moved {
		t.Fatalf("Tick(+50m) = %v, %v; want %v, true", phase, moved, PhaseFocus)
	}
	if got := tm.Remaining(t0.Add(50 * time.Minute)); got != 5*time.Minute {
		t.Errorf("Remaining = %v, want 5m carried into the new round", got)
	}
}

func TestRoundDisplay(t *testing.T) {
	tm := New(shortConfig())
	tm.Start(t0)

	if got := tm.Round(); got != 1 {
		t.Fatalf("Round() at start = %d, want 1", got)
	}
	tm.Tick(t0.Add(25 * time.Minute)) // short break after round 1
	if got := tm.Round(); got != 1 {
		t.Errorf("Round() during first break = %d, want 1", got)
	}
	tm.Tick(t0.Add(30 * time.Minute)) // focus round 2
	if got := tm.Round(); got != 2 {
		t.Errorf("Round() in second focus = %d, want 2", got)
	}
	tm.Tick(t0.Add(55 * time.Minute)) // long break
	if got := tm.Round(); got != 2 {
		t.Errorf("Round() during long break = %d, want 2", got)
	}
}

func TestSkipAndReset(t *testing.T) {
	tm := New(shortConfig())
	tm.Start(t0)
	tm.Skip(t0.Add(time.Minute))

	if got := tm.Phase(); got != PhaseShortBreak {
		t.Fatalf("Phase after Skip = %v, want %v", got, PhaseShortBreak)
	}
	if got := tm.Completed(); got != 1 {
		t.Errorf("Completed after Skip = %d, want 1 (skipping finishes the round)", got)
	}
	if got := tm.Remaining(t0.Add(time.Minute)); got != 5*time.Minute {
		t.Errorf("Remaining after Skip = %v, want full break", got)
	}

	tm.Reset()
	if tm.Phase() != PhaseFocus || tm.Running() || tm.Completed() != 0 {
		t.Errorf("Reset left phase=%v running=%v completed=%d", tm.Phase(), tm.Running(), tm.Completed())
	}
}

func TestProgressBounds(t *testing.T) {
	tm := New(shortConfig())
	if got := tm.Progress(t0); got != 0 {
		t.Errorf("Progress before start = %v, want 0", got)
	}
	tm.Start(t0)
	got := tm.Progress(t0.Add(12*time.Minute + 30*time.Second))
	if got < 0.49 || got > 0.51 {
		t.Errorf("Progress at half = %v, want ~0.5", got)
	}
	// Past the end without a Tick it clamps rather than overflowing.
	if got := tm.Progress(t0.Add(time.Hour)); got != 1 {
		t.Errorf("Progress past end = %v, want 1", got)
	}
}

func TestToggle(t *testing.T) {
	tm := New(shortConfig())
	tm.Toggle(t0)
	if !tm.Running() {
		t.Fatal("Toggle did not start the timer")
	}
	tm.Toggle(t0.Add(time.Minute))
	if tm.Running() {
		t.Fatal("second Toggle did not pause")
	}
	if got := tm.Elapsed(t0.Add(time.Hour)); got != time.Minute {
		t.Errorf("Elapsed = %v, want 1m frozen by pause", got)
	}
}
