package layouts

// Message is one datagram on the manager's bus. Addressing is by window id
// and layout name; an empty ToWindow broadcasts to every registered window,
// an empty ToLayout to every handler within the resolved window(s). The
// payload is an arbitrary value; receivers type-switch on it.
type Message struct {
	FromWindow string
	FromLayout string
	ToWindow   string
	ToLayout   string
	Payload    any
}

// Handler receives messages addressed to one (window, layout) slot.
// Handlers run synchronously on the sender's goroutine.
type Handler func(msg Message)

// ContentChanged is broadcast by the manager itself after a successful
// content switch, so chrome can track the current panel without polling.
type ContentChanged struct {
	Window   string
	Previous string
	Current  string
}

type handlerKey struct {
	window string
	layout string
}

// RegisterHandler installs h as the message handler for (windowID, layout).
// A second registration for the same slot replaces the first and keeps its
// position in the window's delivery order. A nil handler removes the slot.
func (m *Manager) RegisterHandler(windowID, layout string, h Handler) {
	key := handlerKey{windowID, layout}
	if h == nil {
		m.removeHandler(windowID, layout)
		return
	}
	if _, exists := m.handlers[key]; !exists {
		m.handlerOrder[windowID] = append(m.handlerOrder[windowID], layout)
	}
	m.handlers[key] = h
}

func (m *Manager) removeHandler(windowID, layout string) {
	key := handlerKey{windowID, layout}
	if _, exists := m.handlers[key]; !exists {
		return
	}
	delete(m.handlers, key)
	order := m.handlerOrder[windowID]
	for i, n := range order {
		if n == layout {
			m.handlerOrder[windowID] = append(order[:i], order[i+1:]...)
			break
		}
	}
}

// Send routes a message from (fromWindow, fromLayout) to the addressed
// handler(s) and reports whether at least one handler ran. Delivery is
// synchronous and in-process: within a window, handlers fire in the order
// they were registered; no ordering is promised across windows. An
// unroutable message is dropped with a logged diagnostic.
func (m *Manager) Send(fromWindow, fromLayout, toWindow, toLayout string, payload any) bool {
	msg := Message{
		FromWindow: fromWindow,
		FromLayout: fromLayout,
		ToWindow:   toWindow,
		ToLayout:   toLayout,
		Payload:    payload,
	}

	var targets []string
	if toWindow == "" {
		targets = m.windowOrder
	} else {
		if _, ok := m.windows[toWindow]; !ok {
			m.logError(ErrNoWindow, "send %T from %s/%s to %s/%s", payload, fromWindow, fromLayout, toWindow, toLayout)
			return false
		}
		targets = []string{toWindow}
	}

	delivered := false
	for _, win := range targets {
		if toLayout != "" {
			if h, ok := m.handlers[handlerKey{win, toLayout}]; ok {
				h(msg)
				delivered = true
			}
			continue
		}
		for _, layout := range append([]string(nil), m.handlerOrder[win]...) {
			if h, ok := m.handlers[handlerKey{win, layout}]; ok {
				h(msg)
				delivered = true
			}
		}
	}
	if !delivered {
		m.logError(ErrNoHandler, "send %T from %s/%s to %s/%s", payload, fromWindow, fromLayout, toWindow, toLayout)
	}
	return delivered
}
