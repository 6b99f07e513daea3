package clipwatch

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeSource is a settable clipboard for tests.
type fakeSource struct {
	mu     sync.Mutex
	text   string
	err    error
	writes []string
}

func (f *fakeSource) Read() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text, f.err
}

func (f *fakeSource) Write(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
	f.writes = append(f.writes, text)
	return nil
}

func (f *fakeSource) set(text string) {
	f.mu.Lock()
	f.text = text
	f.mu.Unlock()
}

func texts(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Text
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPollRecordsChanges(t *testing.T) {
	src := &fakeSource{}
	w := New(src, 10, time.Second)

	if w.Poll() {
		t.Error("Poll on empty clipboard reported a change")
	}
	src.set("one")
	if !w.Poll() {
		t.Error("Poll missed new content")
	}
	if w.Poll() {
		t.Error("Poll re-recorded unchanged content")
	}
	src.set("two")
	w.Poll()

	if got := texts(w.Snapshot()); !equal(got, []string{"two", "one"}) {
		t.Errorf("history = %v, want [two one]", got)
	}
}

func TestDedupMovesToFront(t *testing.T) {
	src := &fakeSource{}
	w := New(src, 10, time.Second)
	for _, s := range []string{"a", "b", "c", "a"} {
		src.set(s)
		w.Poll()
	}
	got := texts(w.Snapshot())
	if !equal(got, []string{"a", "c", "b"}) {
		t.Errorf("history = %v, want [a c b] (a re-copied moves to front once)", got)
	}
}

func TestEvictionSparesPinned(t *testing.T) {
	src := &fakeSource{}
	w := New(src, 2, time.Second)
	src.set("keep")
	w.Poll()
	if !w.Pin(0, true) {
		t.Fatal("Pin failed")
	}
	for _, s := range []string{"b", "c", "d"} {
		src.set(s)
		w.Poll()
	}
	got := texts(w.Snapshot())
	if !equal(got, []string{"d", "c", "keep"}) {
		t.Errorf("history = %v, want [d c keep]", got)
	}
}

func TestSetMaxEvictsImmediately(t *testing.T) {
	src := &fakeSource{}
	w := New(src, 10, time.Second)
	for _, s := range []string{"a", "b", "c", "d"} {
		src.set(s)
		w.Poll()
	}
	w.Pin(3, true) // "a"

	var hits int
	w.SetOnChange(func() { hits++ })
	w.SetMax(2)

	if got := texts(w.Snapshot()); !equal(got, []string{"d", "c", "a"}) {
		t.Errorf("history = %v, want [d c a] (pinned spared)", got)
	}
	if hits != 1 {
		t.Errorf("onChange ran %d times, want 1", hits)
	}

	w.SetMax(5) // growing the cap evicts nothing
	if hits != 1 {
		t.Errorf("onChange ran %d times after growing cap, want 1", hits)
	}
	w.SetMax(0) // ignored
	if len(w.Snapshot()) != 3 {
		t.Errorf("non-positive cap changed the history")
	}
}

func TestReadErrorsAreQuiet(t *testing.T) {
	src := &fakeSource{err: errors.New("no display")}
	w := New(src, 10, time.Second)
	if w.Poll() {
		t.Error("Poll with failing source reported a change")
	}
	if w.LastError() == nil {
		t.Error("LastError lost the read failure")
	}
	src.mu.Lock()
	src.err = nil
	src.text = "recovered"
	src.mu.Unlock()
	if !w.Poll() {
		t.Error("Poll did not recover after the source did")
	}
	if w.LastError() != nil {
		t.Error("LastError kept a stale failure")
	}
}

func TestPinRemoveBounds(t *testing.T) {
	w := New(&fakeSource{}, 10, time.Second)
	if w.Pin(0, true) {
		t.Error("Pin on empty history = true")
	}
	if w.Remove(-1) {
		t.Error("Remove(-1) = true")
	}
}

func TestClearKeepsPinned(t *testing.T) {
	src := &fakeSource{}
	w := New(src, 10, time.Second)
	for _, s := range []string{"a", "b", "c"} {
		src.set(s)
		w.Poll()
	}
	w.Pin(1, true) // "b"
	w.Clear()
	if got := texts(w.Snapshot()); !equal(got, []string{"b"}) {
		t.Errorf("history after Clear = %v, want [b]", got)
	}
}

func TestCopyToSuppressesEcho(t *testing.T) {
	src := &fakeSource{}
	w := New(src, 10, time.Second)
	for _, s := range []string{"a", "b"} {
		src.set(s)
		w.Poll()
	}
	if err := w.CopyTo(1); err != nil { // copy "a" back
		t.Fatalf("CopyTo error: %v", err)
	}
	if got := texts(w.Snapshot()); !equal(got, []string{"a", "b"}) {
		t.Errorf("history after CopyTo = %v, want [a b]", got)
	}
	// The write landed on the clipboard but the next poll must not record
	// it again.
	if w.Poll() {
		t.Error("Poll recorded the watcher's own write")
	}
	if len(w.Snapshot()) != 2 {
		t.Errorf("history grew to %d entries after echo", len(w.Snapshot()))
	}
}

func TestWriteRecords(t *testing.T) {
	src := &fakeSource{}
	w := New(src, 10, time.Second)
	if err := w.Write("from-panel"); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if got := texts(w.Snapshot()); !equal(got, []string{"from-panel"}) {
		t.Errorf("history = %v, want [from-panel]", got)
	}
	src.mu.Lock()
	wrote := len(src.writes)
	src.mu.Unlock()
	if wrote != 1 {
		t.Errorf("source saw %d writes, want 1", wrote)
	}
	if w.Poll() {
		t.Error("Poll recorded the watcher's own write")
	}
}

func TestStartStop(t *testing.T) {
	src := &fakeSource{}
	src.set("live")
	w := New(src, 10, 5*time.Millisecond)
	var hits int
	var mu sync.Mutex
	w.SetOnChange(func() {
		mu.Lock()
		hits++
		mu.Unlock()
	})

	w.Start()
	w.Start() // double start is a no-op
	time.Sleep(30 * time.Millisecond)
	w.Stop()
	w.Stop() // double stop too

	if got := texts(w.Snapshot()); !equal(got, []string{"live"}) {
		t.Errorf("history = %v, want [live]", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if hits != 1 {
		t.Errorf("onChange ran %d times, want 1", hits)
	}
}
