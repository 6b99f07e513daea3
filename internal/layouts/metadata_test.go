package layouts

import (
	"testing"
	"time"
)

func TestMetadataRoundTrip(t *testing.T) {
	m := newTestManager(t, "w1")
	m.Register(stubReg("panel", KindContent, PriorityNormal))

	if v, ok := m.MetadataValue("panel", "scroll"); ok || v != "" {
		t.Errorf("MetadataValue before set = %q, %v; want empty, false", v, ok)
	}
	m.SetMetadata("panel", "scroll", "120")
	if v, ok := m.MetadataValue("panel", "scroll"); !ok || v != "120" {
		t.Errorf("MetadataValue = %q, %v; want %q, true", v, ok, "120")
	}
	m.SetMetadata("panel", "scroll", "0")
	if v, _ := m.MetadataValue("panel", "scroll"); v != "0" {
		t.Errorf("MetadataValue after overwrite = %q, want %q", v, "0")
	}
}

func TestStateLifecycle(t *testing.T) {
	m := newTestManager(t, "w1")
	m.Register(stubReg("panel", KindContent, PriorityNormal))

	if got := m.StateOf("panel"); got != StateInactive {
		t.Fatalf("initial StateOf = %v, want %v", got, StateInactive)
	}
	if !m.Activate("panel") {
		t.Fatal("Activate failed")
	}
	if got := m.StateOf("panel"); got != StateActive {
		t.Errorf("StateOf after Activate = %v, want %v", got, StateActive)
	}
	m.SwitchTo("panel", false)
	if got := m.StateOf("panel"); got != StateVisible {
		t.Errorf("StateOf after SwitchTo = %v, want %v", got, StateVisible)
	}
	if !m.Focus("panel") {
		t.Fatal("Focus failed")
	}
	if got := m.StateOf("panel"); got != StateFocused {
		t.Errorf("StateOf after Focus = %v, want %v", got, StateFocused)
	}
	m.Hide("panel")
	if got := m.StateOf("panel"); got != StateActive {
		t.Errorf("StateOf after Hide = %v, want %v", got, StateActive)
	}
	m.Deactivate("panel")
	if got := m.StateOf("panel"); got != StateInactive {
		t.Errorf("StateOf after Deactivate = %v, want %v", got, StateInactive)
	}

	if m.Activate("ghost") {
		t.Error("Activate(ghost) = true for unregistered name, want false")
	}
}

func TestFocusSingleOwner(t *testing.T) {
	m := newTestManager(t, "w1")
	m.Register(stubReg("bar", KindSystem, PriorityHighest))
	m.Register(stubReg("panel", KindContent, PriorityNormal))
	m.Show("bar")
	m.SwitchTo("panel", false)

	m.Focus("bar")
	m.Focus("panel")
	if got := m.StateOf("bar"); got != StateVisible {
		t.Errorf("StateOf(bar) = %v after focus moved on, want %v", got, StateVisible)
	}
	if got := m.StateOf("panel"); got != StateFocused {
		t.Errorf("StateOf(panel) = %v, want %v", got, StateFocused)
	}

	if m.Focus("hiddenish") {
		t.Error("Focus on a missing instance = true, want false")
	}
}

func TestModalTransitions(t *testing.T) {
	m := newTestManager(t, "w1")
	m.Register(stubReg("dialog", KindModal, PriorityHighest))
	m.Register(stubReg("flash", KindModal, PriorityHighest, func(r *Registration) {
		r.Persistent = false
	}))

	if !m.EnterModal("dialog") {
		t.Fatal("EnterModal(dialog) failed")
	}
	if got := m.StateOf("dialog"); got != StateModal {
		t.Errorf("StateOf in modal = %v, want %v", got, StateModal)
	}
	if got := m.ModalIn("w1"); got != "dialog" {
		t.Errorf("ModalIn = %q, want %q", got, "dialog")
	}
	if !m.ExitModal("dialog") {
		t.Fatal("ExitModal(dialog) failed")
	}
	// Persistent instance survives, so the name lands on Active.
	if got := m.StateOf("dialog"); got != StateActive {
		t.Errorf("StateOf after exit = %v, want %v", got, StateActive)
	}
	if mustStub(t, m, "w1", "dialog").Visible() {
		t.Error("modal layout still visible after exit")
	}

	m.EnterModal("flash")
	m.ExitModal("flash")
	// Non-persistent instance is destroyed on exit, so the name resets.
	if got := m.StateOf("flash"); got != StateInactive {
		t.Errorf("StateOf(flash) after exit = %v, want %v", got, StateInactive)
	}
	if m.ExitModal("flash") {
		t.Error("ExitModal twice = true, want false")
	}
}

func TestLastActiveAt(t *testing.T) {
	m := newTestManager(t, "w1")
	m.Register(stubReg("panel", KindContent, PriorityNormal))

	if !m.LastActiveAt("panel").IsZero() {
		t.Error("LastActiveAt nonzero before first activity")
	}
	before := time.Now()
	m.SwitchTo("panel", false)
	got := m.LastActiveAt("panel")
	if got.IsZero() || got.Before(before) {
		t.Errorf("LastActiveAt = %v, want >= %v", got, before)
	}
}

func TestStateStrings(t *testing.T) {
	tests := []struct {
		in   State
		want string
	}{
		{StateInactive, "inactive"},
		{StateActive, "active"},
		{StateVisible, "visible"},
		{StateFocused, "focused"},
		{StateModal, "modal"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}
