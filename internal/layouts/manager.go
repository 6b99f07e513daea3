package layouts

import (
	"fmt"
	"sort"
	"time"

	"gioui.org/io/event"
	"gioui.org/layout"
)

// Switch records the most recent successful content switch in a window.
type Switch struct {
	From     string
	To       string
	At       time.Time
	Animated bool
}

// windowState is the per-window half of the manager: live instances plus
// the markers that only make sense inside one window.
type windowState struct {
	ctx     *WindowContext
	layouts map[string]Layout
	order   []string // instance creation order
	system  map[string]bool
	current string // current content layout, "" when none
	modal   string // layout holding modal input capture, "" when none
	last    Switch
}

// Manager owns every layout of the application: it instantiates them on
// demand from the registry, arbitrates visibility (priority, dependencies,
// conflicts), multiplexes instances across host windows and routes
// messages between them.
//
// A manager is not safe for concurrent use. The host drives it from a
// single UI goroutine; background workers hand results to their own layout
// state and request a redraw instead of calling in here.
type Manager struct {
	registry *Registry

	meta    map[string]*Metadata
	windows map[string]*windowState

	windowOrder []string
	active      string

	handlers     map[handlerKey]Handler
	handlerOrder map[string][]string

	logf func(format string, args ...any)
}

// New creates a manager over reg. A nil reg gives the manager a private
// registry; passing a shared one lets several managers serve the same
// layout catalogue.
func New(reg *Registry) *Manager {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Manager{
		registry:     reg,
		meta:         make(map[string]*Metadata),
		windows:      make(map[string]*windowState),
		handlers:     make(map[handlerKey]Handler),
		handlerOrder: make(map[string][]string),
	}
}

// Registry exposes the backing registry.
func (m *Manager) Registry() *Registry { return m.registry }

// SetLogf routes manager and registry diagnostics to logf. A nil logf
// silences them.
func (m *Manager) SetLogf(logf func(format string, args ...any)) {
	m.logf = logf
	m.registry.SetLogf(logf)
}

func (m *Manager) logError(err error, format string, args ...any) {
	if m.logf != nil {
		m.logf("layouts: %s: %v", fmt.Sprintf(format, args...), err)
	}
}

func (m *Manager) warnf(format string, args ...any) {
	if m.logf != nil {
		m.logf("layouts: "+format, args...)
	}
}

// Register adds reg to the registry and, for auto-create registrations,
// immediately instantiates the layout in the active window. Returns false
// on duplicate names.
func (m *Manager) Register(reg Registration) bool {
	if !m.registry.Register(reg) {
		return false
	}
	if reg.AutoCreate {
		if w := m.activeState(); w != nil {
			if err := m.createIn(w, reg.Name); err != nil {
				m.logError(err, "auto-create %q in window %s", reg.Name, w.ctx.ID)
			}
		}
	}
	return true
}

// Unregister removes the registration for name. Live instances are left
// alone; only future creations are prevented.
func (m *Manager) Unregister(name string) { m.registry.Unregister(name) }

// IsRegistered reports whether name has a registration.
func (m *Manager) IsRegistered(name string) bool { return m.registry.IsRegistered(name) }

// AddDependency records at runtime that name requires dep before it can be
// shown.
func (m *Manager) AddDependency(name, dep string) bool {
	return m.registry.AddDependency(name, dep)
}

// RemoveDependency removes a runtime dependency edge.
func (m *Manager) RemoveDependency(name, dep string) bool {
	return m.registry.RemoveDependency(name, dep)
}

// ByPriority returns all registered names ordered by descending priority,
// stable across calls.
func (m *Manager) ByPriority() []string { return m.registry.ByPriority() }

// RegisterWindow makes win known to the manager and instantiates every
// auto-create registration in it. The first registered window becomes the
// active one.
func (m *Manager) RegisterWindow(win *WindowContext) bool {
	if win == nil || win.ID == "" {
		m.logError(ErrNoWindow, "register window with empty id")
		return false
	}
	if _, dup := m.windows[win.ID]; dup {
		m.logError(ErrAlreadyRegistered, "register window %s", win.ID)
		return false
	}
	win.mgr = m
	w := &windowState{
		ctx:     win,
		layouts: make(map[string]Layout),
		system:  make(map[string]bool),
	}
	m.windows[win.ID] = w
	m.windowOrder = append(m.windowOrder, win.ID)
	if m.active == "" {
		m.active = win.ID
	}
	for _, name := range m.registry.Names() {
		reg, ok := m.registry.Lookup(name)
		if !ok || !reg.AutoCreate {
			continue
		}
		if err := m.createIn(w, name); err != nil {
			m.logError(err, "auto-create %q in window %s", name, win.ID)
		}
	}
	return true
}

// UnregisterWindow forgets windowID, destroying its instances. Layout
// names whose last instance lived there drop back to the inactive state.
func (m *Manager) UnregisterWindow(windowID string) {
	w, ok := m.windows[windowID]
	if !ok {
		return
	}
	for _, name := range append([]string(nil), w.order...) {
		m.destroyIn(w, name)
	}
	delete(m.windows, windowID)
	delete(m.handlerOrder, windowID)
	for i, id := range m.windowOrder {
		if id == windowID {
			m.windowOrder = append(m.windowOrder[:i], m.windowOrder[i+1:]...)
			break
		}
	}
	if m.active == windowID {
		m.active = ""
		if len(m.windowOrder) > 0 {
			m.active = m.windowOrder[0]
		}
	}
}

// SetActiveWindow selects the window addressed by operations that do not
// name one explicitly.
func (m *Manager) SetActiveWindow(windowID string) bool {
	if _, ok := m.windows[windowID]; !ok {
		m.logError(ErrNoWindow, "set active window %s", windowID)
		return false
	}
	m.active = windowID
	return true
}

// ActiveWindow returns the id of the active window, or "" when no window
// is registered.
func (m *Manager) ActiveWindow() string { return m.active }

// Windows returns the registered window ids in registration order.
func (m *Manager) Windows() []string {
	return append([]string(nil), m.windowOrder...)
}

// Window returns the context registered under windowID.
func (m *Manager) Window(windowID string) (*WindowContext, bool) {
	w, ok := m.windows[windowID]
	if !ok {
		return nil, false
	}
	return w.ctx, true
}

func (m *Manager) activeState() *windowState {
	if m.active == "" {
		return nil
	}
	return m.windows[m.active]
}

func (m *Manager) state(windowID string) *windowState {
	if windowID == "" {
		return m.activeState()
	}
	return m.windows[windowID]
}

// Get returns the live instance of name in the active window.
func (m *Manager) Get(name string) (Layout, bool) {
	return m.GetIn(m.active, name)
}

// GetIn returns the live instance of name in windowID.
func (m *Manager) GetIn(windowID, name string) (Layout, bool) {
	w := m.state(windowID)
	if w == nil {
		return nil, false
	}
	l, ok := w.layouts[name]
	return l, ok
}

// Create instantiates name in the active window without showing it. It is
// a no-op when an instance already exists.
func (m *Manager) Create(name string) bool {
	w := m.activeState()
	if w == nil {
		m.logError(ErrNoWindow, "create %q", name)
		return false
	}
	if err := m.createIn(w, name); err != nil {
		m.logError(err, "create %q in window %s", name, w.ctx.ID)
		return false
	}
	return true
}

func (m *Manager) createIn(w *windowState, name string) error {
	if _, exists := w.layouts[name]; exists {
		return nil
	}
	reg, ok := m.registry.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	l, err := buildInstance(&reg, w.ctx)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFactoryFailure, name, err)
	}
	w.layouts[name] = l
	w.order = append(w.order, name)
	if reg.Kind == KindSystem {
		w.system[name] = true
	}
	md := m.metadata(name).touch(time.Now())
	if md.State == StateInactive {
		md.State = StateActive
	}
	md.Dirty = true
	return nil
}

// buildInstance isolates factory calls so a panicking factory degrades to
// an error instead of taking the frame loop down.
func buildInstance(reg *Registration, win *WindowContext) (l Layout, err error) {
	if reg.Factory == nil {
		return nil, fmt.Errorf("no factory")
	}
	defer func() {
		if r := recover(); r != nil {
			l, err = nil, fmt.Errorf("factory panic: %v", r)
		}
	}()
	l, err = reg.Factory(win)
	if err == nil && l == nil {
		err = fmt.Errorf("factory returned nil layout")
	}
	return l, err
}

func (m *Manager) destroyIn(w *windowState, name string) {
	if _, ok := w.layouts[name]; !ok {
		return
	}
	delete(w.layouts, name)
	delete(w.system, name)
	for i, n := range w.order {
		if n == name {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	m.removeHandler(w.ctx.ID, name)
	if w.current == name {
		w.current = ""
	}
	if w.modal == name {
		w.modal = ""
	}
	if !m.instanceExists(name) {
		if md, ok := m.meta[name]; ok {
			md.State = StateInactive
		}
	}
}

func (m *Manager) instanceExists(name string) bool {
	for _, w := range m.windows {
		if _, ok := w.layouts[name]; ok {
			return true
		}
	}
	return false
}

// CheckDependencies reports whether every declared dependency of name has
// a live instance in the active window. The check is about existence, not
// visibility: a hidden dependency still satisfies it. Names without a
// registration declare nothing and pass vacuously.
func (m *Manager) CheckDependencies(name string) bool {
	w := m.activeState()
	if w == nil {
		return false
	}
	return m.checkDepsIn(w, name) == nil
}

func (m *Manager) checkDepsIn(w *windowState, name string) error {
	reg, ok := m.registry.Lookup(name)
	if !ok {
		return nil
	}
	for _, dep := range reg.Dependencies {
		if _, ok := w.layouts[dep]; !ok {
			return fmt.Errorf("%w: %s needs %s", ErrDependencyUnsatisfied, name, dep)
		}
	}
	return nil
}

// ResolveConflicts hides every visible layout of the active window that
// conflicts with name (the relation counts in both directions), then
// re-checks name's dependencies against the post-resolution state: a
// dependency that was itself a conflict casualty fails the check.
func (m *Manager) ResolveConflicts(name string) bool {
	w := m.activeState()
	if w == nil {
		m.logError(ErrNoWindow, "resolve conflicts for %q", name)
		return false
	}
	if err := m.resolveConflictsIn(w, name); err != nil {
		m.logError(err, "resolve conflicts for %q", name)
		return false
	}
	return true
}

func (m *Manager) resolveConflictsIn(w *windowState, name string) error {
	for _, other := range append([]string(nil), w.order...) {
		if other == name {
			continue
		}
		l, ok := w.layouts[other]
		if !ok || !l.Visible() {
			continue
		}
		if m.registry.conflictsWith(name, other) {
			m.hideIn(w, other)
			// A layout can refuse to hide by overriding SetVisible.
			if l, ok := w.layouts[other]; ok && l.Visible() {
				return fmt.Errorf("%w: %s still visible", ErrConflictUnresolved, other)
			}
		}
	}
	if err := m.checkDepsIn(w, name); err != nil {
		return fmt.Errorf("%w (post-resolution)", err)
	}
	return nil
}

// Show makes name visible in the active window, creating it on demand.
// Unlike SwitchTo it does not touch the current-content marker, which is
// what system, utility and overlay layouts want.
func (m *Manager) Show(name string) bool {
	w := m.activeState()
	if w == nil {
		m.logError(ErrNoWindow, "show %q", name)
		return false
	}
	if err := m.showIn(w, name); err != nil {
		m.logError(err, "show %q in window %s", name, w.ctx.ID)
		return false
	}
	return true
}

func (m *Manager) showIn(w *windowState, name string) error {
	if err := m.createIn(w, name); err != nil {
		return err
	}
	if err := m.resolveConflictsIn(w, name); err != nil {
		return err
	}
	l := w.layouts[name]
	l.SetVisible(true)
	md := m.metadata(name).touch(time.Now())
	if md.State != StateModal && md.State != StateFocused {
		md.State = StateVisible
	}
	md.Dirty = true
	return nil
}

// Hide makes name invisible in the active window. Non-persistent layouts
// are destroyed; persistent ones keep their instance and internal state.
// Hiding something that has no instance is a no-op success.
func (m *Manager) Hide(name string) bool {
	w := m.activeState()
	if w == nil {
		m.logError(ErrNoWindow, "hide %q", name)
		return false
	}
	m.hideIn(w, name)
	return true
}

func (m *Manager) hideIn(w *windowState, name string) {
	l, ok := w.layouts[name]
	if !ok {
		return
	}
	l.SetVisible(false)
	md := m.metadata(name)
	md.Dirty = true
	if md.State == StateVisible || md.State == StateFocused {
		md.State = StateActive
	}
	if w.current == name {
		w.current = ""
	}
	if reg, ok := m.registry.Lookup(name); ok && !reg.Persistent {
		m.destroyIn(w, name)
	}
}

// SetVisible toggles name between the Show and Hide paths.
func (m *Manager) SetVisible(name string, visible bool) bool {
	if visible {
		return m.Show(name)
	}
	return m.Hide(name)
}

// SwitchTo makes name the current content layout of the active window:
// dependencies are checked, conflicting layouts hidden, the previous
// content hidden (unless name is a system layout), and the target created
// on demand and shown. On success a ContentChanged broadcast goes out to
// the window and the switch is recorded for transition animation; on any
// failure the method logs, returns false and leaves the previous state as
// it stood when the failing step ran.
func (m *Manager) SwitchTo(name string, animated bool) bool {
	w := m.activeState()
	if w == nil {
		m.logError(ErrNoWindow, "switch to %q", name)
		return false
	}
	if w.current == name {
		if l, ok := w.layouts[name]; ok && l.Visible() {
			return true
		}
	}
	if _, live := w.layouts[name]; !live && !m.registry.IsRegistered(name) {
		m.logError(fmt.Errorf("%w: %s", ErrNotRegistered, name), "switch in window %s", w.ctx.ID)
		return false
	}
	if err := m.checkDepsIn(w, name); err != nil {
		m.logError(err, "switch to %q in window %s", name, w.ctx.ID)
		return false
	}
	if err := m.resolveConflictsIn(w, name); err != nil {
		m.logError(err, "switch to %q in window %s", name, w.ctx.ID)
		return false
	}
	targetSystem := w.system[name]
	if reg, ok := m.registry.Lookup(name); ok && reg.Kind == KindSystem {
		targetSystem = true
	}
	prev := w.current
	if !targetSystem && prev != "" && prev != name {
		m.hideIn(w, prev)
	}
	if err := m.createIn(w, name); err != nil {
		m.logError(err, "switch to %q in window %s", name, w.ctx.ID)
		return false
	}
	l := w.layouts[name]
	l.SetVisible(true)
	md := m.metadata(name).touch(time.Now())
	if md.State != StateModal && md.State != StateFocused {
		md.State = StateVisible
	}
	md.Dirty = true
	if !targetSystem {
		w.current = name
		if prev != name {
			w.last = Switch{From: prev, To: name, At: time.Now(), Animated: animated}
			m.Send(w.ctx.ID, "", w.ctx.ID, "", ContentChanged{Window: w.ctx.ID, Previous: prev, Current: name})
		}
	}
	return true
}

// HideAllContent hides every non-system layout in the active window and
// clears the current-content marker. System chrome stays up.
func (m *Manager) HideAllContent() {
	w := m.activeState()
	if w == nil {
		return
	}
	for _, name := range append([]string(nil), w.order...) {
		if w.system[name] {
			continue
		}
		m.hideIn(w, name)
	}
	w.current = ""
}

// CurrentContent returns the current content layout of the active window.
func (m *Manager) CurrentContent() string {
	return m.CurrentContentIn(m.active)
}

// CurrentContentIn returns the current content layout of windowID, or ""
// when the window has none.
func (m *Manager) CurrentContentIn(windowID string) string {
	w := m.state(windowID)
	if w == nil {
		return ""
	}
	return w.current
}

// LastSwitch returns the most recent successful content switch recorded
// for windowID ("" for the active window).
func (m *Manager) LastSwitch(windowID string) (Switch, bool) {
	w := m.state(windowID)
	if w == nil || w.last.To == "" {
		return Switch{}, false
	}
	return w.last, true
}

// Activate moves name from the inactive to the active state without
// showing anything.
func (m *Manager) Activate(name string) bool {
	if !m.registry.IsRegistered(name) && !m.instanceExists(name) {
		m.logError(fmt.Errorf("%w: %s", ErrNotRegistered, name), "activate")
		return false
	}
	md := m.metadata(name)
	if md.State == StateInactive {
		md.State = StateActive
	}
	md.touch(time.Now())
	return true
}

// Deactivate forces name back to the inactive state, hiding it in the
// active window first.
func (m *Manager) Deactivate(name string) bool {
	if w := m.activeState(); w != nil {
		m.hideIn(w, name)
	}
	if md, ok := m.meta[name]; ok {
		md.State = StateInactive
	}
	return true
}

// Focus gives name input focus in the active window. Only a visible
// instance can take focus; whichever layout previously held it drops back
// to the visible state.
func (m *Manager) Focus(name string) bool {
	w := m.activeState()
	if w == nil {
		m.logError(ErrNoWindow, "focus %q", name)
		return false
	}
	l, ok := w.layouts[name]
	if !ok || !l.Visible() {
		m.warnf("focus %q: no visible instance in window %s", name, w.ctx.ID)
		return false
	}
	for _, other := range w.order {
		if other == name {
			continue
		}
		if md, ok := m.meta[other]; ok && md.State == StateFocused {
			md.State = StateVisible
		}
	}
	md := m.metadata(name).touch(time.Now())
	if md.State != StateModal {
		md.State = StateFocused
	}
	return true
}

// EnterModal shows name (creating it on demand) and gives it exclusive
// input capture for the active window until ExitModal.
func (m *Manager) EnterModal(name string) bool {
	w := m.activeState()
	if w == nil {
		m.logError(ErrNoWindow, "enter modal %q", name)
		return false
	}
	if err := m.showIn(w, name); err != nil {
		m.logError(err, "enter modal %q in window %s", name, w.ctx.ID)
		return false
	}
	if w.modal != "" && w.modal != name {
		if md, ok := m.meta[w.modal]; ok && md.State == StateModal {
			md.State = StateActive
		}
	}
	w.modal = name
	md := m.metadata(name).touch(time.Now())
	md.State = StateModal
	md.Dirty = true
	return true
}

// ExitModal releases the modal capture held by name and hides it. The
// layout lands in the active state when an instance survives (persistent
// registrations) and inactive otherwise.
func (m *Manager) ExitModal(name string) bool {
	w := m.activeState()
	if w == nil || w.modal != name {
		m.warnf("exit modal %q: not the modal layout", name)
		return false
	}
	w.modal = ""
	m.hideIn(w, name)
	if md, ok := m.meta[name]; ok {
		if m.instanceExists(name) {
			md.State = StateActive
		} else {
			md.State = StateInactive
		}
	}
	return true
}

// ModalIn returns the layout holding modal capture in windowID, if any.
func (m *Manager) ModalIn(windowID string) string {
	w := m.state(windowID)
	if w == nil {
		return ""
	}
	return w.modal
}

// Clear destroys every instance in every window and resets metadata,
// handlers and switch history. Registrations and window contexts survive.
func (m *Manager) Clear() {
	for _, id := range m.windowOrder {
		w := m.windows[id]
		w.layouts = make(map[string]Layout)
		w.system = make(map[string]bool)
		w.order = nil
		w.current = ""
		w.modal = ""
		w.last = Switch{}
	}
	m.meta = make(map[string]*Metadata)
	m.handlers = make(map[handlerKey]Handler)
	m.handlerOrder = make(map[string][]string)
}

// renderOrder returns windowID's instances sorted by ascending priority,
// creation order breaking ties, so higher-priority layouts paint later
// (on top of) lower ones.
func (m *Manager) renderOrder(w *windowState) []string {
	names := append([]string(nil), w.order...)
	sort.SliceStable(names, func(i, j int) bool {
		return m.priorityOf(names[i]) < m.priorityOf(names[j])
	})
	return names
}

func (m *Manager) priorityOf(name string) Priority {
	if reg, ok := m.registry.Lookup(name); ok {
		return reg.Priority
	}
	return PriorityNormal
}

// UpdateAll drives Update on every live instance of windowID, visible or
// not, so hidden layouts keep timers and animations advancing. It runs
// once per frame before RenderAll.
func (m *Manager) UpdateAll(gtx layout.Context, windowID string) {
	w := m.state(windowID)
	if w == nil {
		return
	}
	for _, name := range append([]string(nil), w.order...) {
		l, ok := w.layouts[name]
		if !ok {
			continue
		}
		m.safeUpdate(name, l, gtx)
	}
}

func (m *Manager) safeUpdate(name string, l Layout, gtx layout.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.warnf("layout %q panicked in update: %v", name, r)
		}
	}()
	l.Update(gtx)
}

// RenderAll draws the visible layouts of windowID in ascending priority
// order, each confined to its own bounds, and clears their dirty flags.
func (m *Manager) RenderAll(gtx layout.Context, windowID string) {
	w := m.state(windowID)
	if w == nil {
		return
	}
	m.enforceContentInvariant(w)
	for _, name := range m.renderOrder(w) {
		l, ok := w.layouts[name]
		if !ok || !l.Visible() {
			continue
		}
		m.safeRender(name, l, gtx)
		m.metadata(name).Dirty = false
	}
}

func (m *Manager) safeRender(name string, l Layout, gtx layout.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.warnf("layout %q panicked in render: %v", name, r)
		}
	}()
	RenderIn(l, gtx, l.Bounds())
}

// enforceContentInvariant keeps at most one content layout visible per
// window. Violations can only come from low-level visibility toggles; the
// most recently active layout wins and the rest are hidden with a logged
// warning.
func (m *Manager) enforceContentInvariant(w *windowState) {
	var visible []string
	for _, name := range w.order {
		l, ok := w.layouts[name]
		if !ok || !l.Visible() {
			continue
		}
		if reg, ok := m.registry.Lookup(name); ok && reg.Kind == KindContent {
			visible = append(visible, name)
		}
	}
	if len(visible) <= 1 {
		return
	}
	keep := visible[0]
	for _, n := range visible[1:] {
		if m.LastActiveAt(n).After(m.LastActiveAt(keep)) {
			keep = n
		}
	}
	for _, n := range visible {
		if n == keep {
			continue
		}
		m.warnf("two content layouts visible in window %s: hiding %q, keeping %q", w.ctx.ID, n, keep)
		m.hideIn(w, n)
	}
	w.current = keep
}

// HandleEvent offers evt to windowID's layouts and reports whether one of
// them consumed it. A modal layout receives events exclusively; otherwise
// delivery walks visible layouts from highest to lowest priority and stops
// at the first consumer.
func (m *Manager) HandleEvent(evt event.Event, windowID string) bool {
	w := m.state(windowID)
	if w == nil {
		return false
	}
	if w.modal != "" {
		if l, ok := w.layouts[w.modal]; ok {
			return m.safeHandle(w.modal, l, evt)
		}
	}
	names := m.renderOrder(w)
	for i := len(names) - 1; i >= 0; i-- {
		l, ok := w.layouts[names[i]]
		if !ok || !l.Visible() {
			continue
		}
		if m.safeHandle(names[i], l, evt) {
			m.metadata(names[i]).touch(time.Now())
			return true
		}
	}
	return false
}

func (m *Manager) safeHandle(name string, l Layout, evt event.Event) (consumed bool) {
	defer func() {
		if r := recover(); r != nil {
			m.warnf("layout %q panicked handling %T: %v", name, evt, r)
			consumed = false
		}
	}()
	return l.HandleEvent(evt)
}
