package layouts

import "time"

// State is the lifecycle position of a layout name within the manager.
type State uint8

const (
	// StateInactive: registered, no live instance demanding attention.
	StateInactive State = iota
	// StateActive: instantiated (or explicitly activated) but not shown.
	StateActive
	// StateVisible: currently rendered.
	StateVisible
	// StateFocused: visible and holding input focus.
	StateFocused
	// StateModal: capturing all input for its window.
	StateModal
)

var stateNames = map[State]string{
	StateInactive: "inactive",
	StateActive:   "active",
	StateVisible:  "visible",
	StateFocused:  "focused",
	StateModal:    "modal",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// Metadata is the manager's per-name bookkeeping. It is keyed by layout
// name, created lazily on first reference, and survives instance
// destruction so state such as custom entries outlives a non-persistent
// layout. Only Manager.Clear discards it.
type Metadata struct {
	State      State
	LastActive time.Time
	Dirty      bool
	Custom     map[string]string
}

func newMetadata() *Metadata {
	return &Metadata{Custom: make(map[string]string)}
}

// touch records activity now and returns the metadata for chaining.
func (m *Metadata) touch(now time.Time) *Metadata {
	m.LastActive = now
	return m
}

// metadata returns the entry for name, creating it on first use.
func (m *Manager) metadata(name string) *Metadata {
	md, ok := m.meta[name]
	if !ok {
		md = newMetadata()
		m.meta[name] = md
	}
	return md
}

// StateOf returns the lifecycle state recorded for name. Unknown names read
// as StateInactive without creating an entry.
func (m *Manager) StateOf(name string) State {
	if md, ok := m.meta[name]; ok {
		return md.State
	}
	return StateInactive
}

// LastActiveAt returns the last time name was created, shown, switched to
// or otherwise touched. The zero time means never.
func (m *Manager) LastActiveAt(name string) time.Time {
	if md, ok := m.meta[name]; ok {
		return md.LastActive
	}
	return time.Time{}
}

// SetMetadata stores a custom key/value pair for name.
func (m *Manager) SetMetadata(name, key, value string) {
	m.metadata(name).Custom[key] = value
}

// MetadataValue returns the custom value stored for (name, key). Unset keys
// read as the empty string with ok=false.
func (m *Manager) MetadataValue(name, key string) (string, bool) {
	md, ok := m.meta[name]
	if !ok {
		return "", false
	}
	v, ok := md.Custom[key]
	return v, ok
}

// SetDirty marks (or clears) the needs-redraw flag for name.
func (m *Manager) SetDirty(name string, dirty bool) {
	m.metadata(name).Dirty = dirty
}

// IsDirty reports whether name was touched since it was last rendered.
func (m *Manager) IsDirty(name string) bool {
	if md, ok := m.meta[name]; ok {
		return md.Dirty
	}
	return false
}
