// Package pomodoro implements the focus-timer state machine shown by the
// pomodoro panel. It is pure bookkeeping: callers feed it the current time
// and read back phase, round and remaining duration, so it can be driven
// from a frame loop and tested with a synthetic clock.
package pomodoro

import "time"

// Phase is the segment of the focus cycle the timer is in.
type Phase uint8

const (
	PhaseFocus Phase = iota
	PhaseShortBreak
	PhaseLongBreak
)

var phaseNames = map[Phase]string{
	PhaseFocus:      "Focus",
	PhaseShortBreak: "Short break",
	PhaseLongBreak:  "Long break",
}

func (p Phase) String() string {
	if n, ok := phaseNames[p]; ok {
		return n
	}
	return "Unknown"
}

// Config sets the cycle durations. RoundsPerSet focus rounds are worked
// before a long break replaces the short one.
type Config struct {
	Focus        time.Duration
	ShortBreak   time.Duration
	LongBreak    time.Duration
	RoundsPerSet int
}

// DefaultConfig is the classic 25/5/15 split with four rounds per set.
func DefaultConfig() Config {
	return Config{
		Focus:        25 * time.Minute,
		ShortBreak:   5 * time.Minute,
		LongBreak:    15 * time.Minute,
		RoundsPerSet: 4,
	}
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.Focus <= 0 {
		c.Focus = def.Focus
	}
	if c.ShortBreak <= 0 {
		c.ShortBreak = def.ShortBreak
	}
	if c.LongBreak <= 0 {
		c.LongBreak = def.LongBreak
	}
	if c.RoundsPerSet <= 0 {
		c.RoundsPerSet = def.RoundsPerSet
	}
	return c
}

// Timer is a pausable pomodoro cycle. It is not safe for concurrent use;
// the panel owns it and drives it from the UI goroutine.
type Timer struct {
	cfg       Config
	phase     Phase
	completed int // focus rounds finished since Reset
	running   bool
	started   time.Time     // start of the running stretch
	elapsed   time.Duration // accumulated while paused
}

// New returns a stopped timer at the start of a focus round. Non-positive
// config fields fall back to the defaults.
func New(cfg Config) *Timer {
	return &Timer{cfg: cfg.normalized()}
}

func (t *Timer) Config() Config { return t.cfg }

// SetConfig applies cfg immediately. Elapsed time in the current phase is
// kept; if it now exceeds the phase length the next Tick advances.
func (t *Timer) SetConfig(cfg Config) { t.cfg = cfg.normalized() }

func (t *Timer) Phase() Phase { return t.phase }

func (t *Timer) Running() bool { return t.running }

// Completed returns the focus rounds finished since the last Reset.
func (t *Timer) Completed() int { return t.completed }

// Round returns the 1-based position within the current set, counting the
// round being worked (or just finished, during breaks).
func (t *Timer) Round() int {
	if t.phase == PhaseFocus {
		return t.completed%t.cfg.RoundsPerSet + 1
	}
	r := t.completed % t.cfg.RoundsPerSet
	if r == 0 {
		r = t.cfg.RoundsPerSet
	}
	return r
}

// Start begins or resumes the current phase.
func (t *Timer) Start(now time.Time) {
	if t.running {
		return
	}
	t.running = true
	t.started = now
}

// Pause freezes the timer, keeping the elapsed portion of the phase.
func (t *Timer) Pause(now time.Time) {
	if !t.running {
		return
	}
	t.elapsed += now.Sub(t.started)
	t.running = false
}

// Toggle flips between running and paused.
func (t *Timer) Toggle(now time.Time) {
	if t.running {
		t.Pause(now)
	} else {
		t.Start(now)
	}
}

// Reset stops the timer and returns to the start of a fresh focus set.
func (t *Timer) Reset() {
	t.phase = PhaseFocus
	t.completed = 0
	t.running = false
	t.elapsed = 0
}

// Skip abandons the current phase and moves to the next one, preserving
// the running state.
func (t *Timer) Skip(now time.Time) {
	t.advance()
	t.elapsed = 0
	t.started = now
}

func (t *Timer) phaseLength(p Phase) time.Duration {
	switch p {
	case PhaseShortBreak:
		return t.cfg.ShortBreak
	case PhaseLongBreak:
		return t.cfg.LongBreak
	default:
		return t.cfg.Focus
	}
}

// PhaseLength returns the full duration of the current phase.
func (t *Timer) PhaseLength() time.Duration { return t.phaseLength(t.phase) }

// Elapsed returns the time spent in the current phase as of now.
func (t *Timer) Elapsed(now time.Time) time.Duration {
	el := t.elapsed
	if t.running {
		el += now.Sub(t.started)
	}
	if el < 0 {
		el = 0
	}
	if limit := t.phaseLength(t.phase); el > limit {
		el = limit
	}
	return el
}

// Remaining returns the time left in the current phase as of now.
func (t *Timer) Remaining(now time.Time) time.Duration {
	return t.phaseLength(t.phase) - t.Elapsed(now)
}

// Progress returns the completed fraction of the current phase in [0, 1].
func (t *Timer) Progress(now time.Time) float32 {
	length := t.phaseLength(t.phase)
	if length <= 0 {
		return 0
	}
	return float32(t.Elapsed(now)) / float32(length)
}

func (t *Timer) advance() {
	switch t.phase {
	case PhaseFocus:
		t.completed++
		if t.completed%t.cfg.RoundsPerSet == 0 {
			t.phase = PhaseLongBreak
		} else {
			t.phase = PhaseShortBreak
		}
	default:
		t.phase = PhaseFocus
	}
}

// Tick advances the state machine to now and reports whether a phase
// boundary was crossed (so the caller can announce it). Large gaps roll
// through as many phases as they cover; the timer keeps running across
// boundaries.
func (t *Timer) Tick(now time.Time) (Phase, bool) {
	if !t.running {
		return t.phase, false
	}
	changed := false
	for {
		length := t.phaseLength(t.phase)
		el := t.elapsed + now.Sub(t.started)
		if el < length {
			break
		}
		t.advance()
		t.elapsed = el - length
		t.started = now
		changed = true
	}
	return t.phase, changed
}
