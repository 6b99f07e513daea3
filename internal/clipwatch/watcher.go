// Package clipwatch polls the system clipboard and keeps a bounded,
// deduplicated history of text snippets for the clipboard panel.
package clipwatch

import (
	"sync"
	"time"

	"github.com/atotto/clipboard"
)

// Source abstracts the system clipboard so the watcher can run against a
// fake in tests.
type Source interface {
	Read() (string, error)
	Write(text string) error
}

type systemSource struct{}

func (systemSource) Read() (string, error) { return clipboard.ReadAll() }

func (systemSource) Write(text string) error { return clipboard.WriteAll(text) }

// SystemSource returns the OS clipboard.
func SystemSource() Source { return systemSource{} }

// Entry is one captured clipboard text, newest first in the history.
type Entry struct {
	Text   string
	At     time.Time
	Pinned bool
}

// Watcher polls a Source on an interval and accumulates distinct entries.
// Pinned entries never count against the cap and survive Clear. Safe for
// concurrent use; the change callback fires on the polling goroutine.
type Watcher struct {
	mu       sync.Mutex
	src      Source
	entries  []Entry
	max      int
	interval time.Duration
	lastSeen string
	lastErr  error
	onChange func()
	stop     chan struct{}
	done     chan struct{}
}

// New creates a watcher over src keeping up to maxEntries unpinned
// entries. A nil src means the OS clipboard; non-positive arguments fall
// back to 50 entries and 800ms.
func New(src Source, maxEntries int, interval time.Duration) *Watcher {
	if src == nil {
		src = systemSource{}
	}
	if maxEntries <= 0 {
		maxEntries = 50
	}
	if interval <= 0 {
		interval = 800 * time.Millisecond
	}
	return &Watcher{src: src, max: maxEntries, interval: interval}
}

// SetOnChange registers fn to run after the history changes. The shell
// uses it to invalidate the window; it runs off the UI goroutine.
func (w *Watcher) SetOnChange(fn func()) {
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

// SetInterval changes the polling cadence for the next Start.
func (w *Watcher) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	w.mu.Lock()
	w.interval = d
	w.mu.Unlock()
}

// SetMax rebounds the unpinned-entry cap, evicting overflow immediately.
func (w *Watcher) SetMax(n int) {
	if n <= 0 {
		return
	}
	w.mu.Lock()
	w.max = n
	evicted := w.trimLocked()
	fn := w.onChange
	w.mu.Unlock()
	if evicted && fn != nil {
		fn()
	}
}

// Start launches the polling goroutine. Starting a running watcher is a
// no-op.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.stop != nil {
		w.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	w.stop, w.done = stop, done
	interval := w.interval
	w.mu.Unlock()
	go w.run(stop, done, interval)
}

// Stop halts polling and waits for the goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	stop, done := w.stop, w.done
	w.stop, w.done = nil, nil
	w.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (w *Watcher) run(stop, done chan struct{}, interval time.Duration) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	w.Poll()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.Poll()
		}
	}
}

// Poll reads the source once and reports whether the history changed.
// Also used by the panel's manual refresh action.
func (w *Watcher) Poll() bool {
	text, err := w.src.Read()
	w.mu.Lock()
	w.lastErr = err
	if err != nil || text == "" || text == w.lastSeen {
		w.mu.Unlock()
		return false
	}
	w.lastSeen = text
	w.insert(text, time.Now())
	fn := w.onChange
	w.mu.Unlock()
	if fn != nil {
		fn()
	}
	return true
}

// insert records text at the front, deduplicating against older entries
// and evicting the oldest unpinned entries past the cap. Callers hold
// w.mu.
func (w *Watcher) insert(text string, at time.Time) {
	pinned := false
	for i, e := range w.entries {
		if e.Text == text {
			pinned = e.Pinned
			w.entries = append(w.entries[:i], w.entries[i+1:]...)
			break
		}
	}
	w.entries = append([]Entry{{Text: text, At: at, Pinned: pinned}}, w.entries...)
	w.trimLocked()
}

// trimLocked evicts the oldest unpinned entries past the cap and reports
// whether anything was removed. Callers hold w.mu.
func (w *Watcher) trimLocked() bool {
	unpinned := 0
	for _, e := range w.entries {
		if !e.Pinned {
			unpinned++
		}
	}
	evicted := false
	for i := len(w.entries) - 1; i >= 0 && unpinned > w.max; i-- {
		if w.entries[i].Pinned {
			continue
		}
		w.entries = append(w.entries[:i], w.entries[i+1:]...)
		unpinned--
		evicted = true
	}
	return evicted
}

// Snapshot returns a copy of the history, newest first.
func (w *Watcher) Snapshot() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Entry(nil), w.entries...)
}

// Len returns the number of entries.
func (w *Watcher) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// LastError returns the most recent read failure, if the last poll failed.
func (w *Watcher) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Pin marks or unmarks the entry at index (snapshot order).
func (w *Watcher) Pin(index int, pinned bool) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if index < 0 || index >= len(w.entries) {
		return false
	}
	w.entries[index].Pinned = pinned
	return true
}

// Remove deletes the entry at index (snapshot order).
func (w *Watcher) Remove(index int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if index < 0 || index >= len(w.entries) {
		return false
	}
	w.entries = append(w.entries[:index], w.entries[index+1:]...)
	return true
}

// Clear drops the history, keeping pinned entries.
func (w *Watcher) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	kept := w.entries[:0]
	for _, e := range w.entries {
		if e.Pinned {
			kept = append(kept, e)
		}
	}
	w.entries = kept
}

// CopyTo writes the entry at index back to the clipboard and moves it to
// the front. The written text is remembered so the next poll does not
// re-record it.
func (w *Watcher) CopyTo(index int) error {
	w.mu.Lock()
	if index < 0 || index >= len(w.entries) {
		w.mu.Unlock()
		return nil
	}
	e := w.entries[index]
	w.entries = append(w.entries[:index], w.entries[index+1:]...)
	e.At = time.Now()
	w.entries = append([]Entry{e}, w.entries...)
	w.lastSeen = e.Text
	src := w.src
	w.mu.Unlock()
	return src.Write(e.Text)
}

// Write puts text on the clipboard and records it as the newest entry.
func (w *Watcher) Write(text string) error {
	if text == "" {
		return nil
	}
	w.mu.Lock()
	w.lastSeen = text
	w.insert(text, time.Now())
	src := w.src
	w.mu.Unlock()
	return src.Write(text)
}
