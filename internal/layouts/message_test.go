package layouts

import (
	"fmt"
	"strings"
	"testing"
)

type pingMsg struct{ N int }

func TestSendExact(t *testing.T) {
	m := newTestManager(t, "w1")
	var got []Message
	m.RegisterHandler("w1", "panel", func(msg Message) { got = append(got, msg) })

	if !m.Send("w1", "sender", "w1", "panel", pingMsg{N: 7}) {
		t.Fatal("Send = false, want delivered")
	}
	if len(got) != 1 {
		t.Fatalf("handler ran %d times, want 1", len(got))
	}
	msg := got[0]
	if msg.FromWindow != "w1" || msg.FromLayout != "sender" {
		t.Errorf("message source = %s/%s, want w1/sender", msg.FromWindow, msg.FromLayout)
	}
	p, ok := msg.Payload.(pingMsg)
	if !ok || p.N != 7 {
		t.Errorf("payload = %#v, want pingMsg{7}", msg.Payload)
	}
}

func TestSendBroadcastWithinWindow(t *testing.T) {
	m := newTestManager(t, "w1", "w2")
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		m.RegisterHandler("w1", name, func(Message) { order = append(order, name) })
	}
	w2Hit := false
	m.RegisterHandler("w2", "listener", func(Message) { w2Hit = true })

	if !m.Send("w1", "src", "w1", "", pingMsg{}) {
		t.Fatal("broadcast Send = false")
	}
	if want := "first,second,third"; strings.Join(order, ",") != want {
		t.Errorf("delivery order = %v, want registration order %s", order, want)
	}
	if w2Hit {
		t.Error("window-scoped broadcast leaked into another window")
	}
}

func TestSendAllWindows(t *testing.T) {
	m := newTestManager(t, "w1", "w2")
	hits := map[string]int{}
	m.RegisterHandler("w1", "panel", func(Message) { hits["w1"]++ })
	m.RegisterHandler("w2", "panel", func(Message) { hits["w2"]++ })

	if !m.Send("w1", "src", "", "panel", pingMsg{}) {
		t.Fatal("all-window Send = false")
	}
	if hits["w1"] != 1 || hits["w2"] != 1 {
		t.Errorf("hits = %v, want one per window", hits)
	}
}

func TestSendUnroutable(t *testing.T) {
	m := newTestManager(t, "w1")
	var logged []string
	m.SetLogf(func(format string, args ...any) {
		logged = append(logged, fmt.Sprintf(format, args...))
	})

	if m.Send("w1", "src", "w1", "nobody", pingMsg{}) {
		t.Error("Send to missing handler = true, want false")
	}
	if m.Send("w1", "src", "ghost-window", "panel", pingMsg{}) {
		t.Error("Send to unknown window = true, want false")
	}
	if len(logged) != 2 {
		t.Errorf("unroutable sends produced %d diagnostics, want 2", len(logged))
	}
}

func TestRegisterHandlerReplaces(t *testing.T) {
	m := newTestManager(t, "w1")
	first, second := 0, 0
	m.RegisterHandler("w1", "panel", func(Message) { first++ })
	m.RegisterHandler("w1", "panel", func(Message) { second++ })

	m.Send("w1", "src", "w1", "panel", pingMsg{})
	if first != 0 {
		t.Errorf("replaced handler ran %d times, want 0", first)
	}
	if second != 1 {
		t.Errorf("replacement handler ran %d times, want 1", second)
	}

	m.RegisterHandler("w1", "panel", nil)
	if m.Send("w1", "src", "w1", "panel", pingMsg{}) {
		t.Error("Send after nil re-registration = true, want false")
	}
}

func TestHandlerRemovedWithInstance(t *testing.T) {
	m := newTestManager(t, "w1")
	m.Register(stubReg("toast", KindOverlay, PriorityHighest, func(r *Registration) {
		r.Persistent = false
	}))
	calls := 0
	m.Show("toast")
	m.RegisterHandler("w1", "toast", func(Message) { calls++ })
	m.Hide("toast") // destroys the non-persistent instance

	if m.Send("w1", "src", "w1", "toast", pingMsg{}) {
		t.Error("Send reached a handler after its instance was destroyed")
	}
	if calls != 0 {
		t.Errorf("destroyed layout's handler ran %d times, want 0", calls)
	}
}

func TestContentChangedBroadcast(t *testing.T) {
	m := newTestManager(t, "w1")
	m.Register(stubReg("a", KindContent, PriorityNormal))
	m.Register(stubReg("b", KindContent, PriorityNormal))
	var changes []ContentChanged
	m.RegisterHandler("w1", "observer", func(msg Message) {
		if c, ok := msg.Payload.(ContentChanged); ok {
			changes = append(changes, c)
		}
	})

	m.SwitchTo("a", false)
	m.SwitchTo("b", false)
	m.SwitchTo("b", false) // no-op, must not re-announce

	if len(changes) != 2 {
		t.Fatalf("got %d ContentChanged events, want 2", len(changes))
	}
	if changes[0].Previous != "" || changes[0].Current != "a" {
		t.Errorf("first change = %+v, want ''->a", changes[0])
	}
	if changes[1].Previous != "a" || changes[1].Current != "b" {
		t.Errorf("second change = %+v, want a->b", changes[1])
	}
	if changes[1].Window != "w1" {
		t.Errorf("change window = %q, want w1", changes[1].Window)
	}
}

func TestHandlerMaySend(t *testing.T) {
	// Handlers run synchronously on the sender's goroutine and may send
	// follow-up messages themselves.
	m := newTestManager(t, "w1")
	gotFollowUp := false
	m.RegisterHandler("w1", "relay", func(msg Message) {
		if _, ok := msg.Payload.(pingMsg); ok {
			m.Send("w1", "relay", "w1", "sink", "follow-up")
		}
	})
	m.RegisterHandler("w1", "sink", func(msg Message) {
		if s, ok := msg.Payload.(string); ok && s == "follow-up" {
			gotFollowUp = true
		}
	})

	m.Send("w1", "src", "w1", "relay", pingMsg{})
	if !gotFollowUp {
		t.Error("nested Send from a handler did not deliver")
	}
}
