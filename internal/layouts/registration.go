package layouts

import (
	"fmt"
	"sort"
)

// Factory builds a new layout instance for the given window. It is invoked
// on demand, possibly long after registration, and must not depend on any
// other context. Returning an error (or a nil layout) aborts creation.
type Factory func(win *WindowContext) (Layout, error)

// Registration describes a layout type. It is pure data: nothing here
// refers to a particular window or instance.
type Registration struct {
	Name     string
	Kind     Kind
	Priority Priority

	// Dependencies lists layout names that must already have an instance in
	// the target window before this layout can be shown.
	Dependencies []string

	// Conflicts lists layout names that may not be visible at the same time
	// as this layout. The relation is treated as symmetric at resolution
	// time regardless of which side declares it.
	Conflicts []string

	Factory Factory

	// AutoCreate instantiates the layout in the active window as soon as it
	// is registered (and in any window the manager is later asked to
	// populate), instead of waiting for the first switch.
	AutoCreate bool

	// Persistent layouts keep their instance (and internal state) when
	// hidden. Non-persistent layouts are destroyed on hide and rebuilt by
	// the factory next time they are needed.
	Persistent bool
}

// Registry holds layout registrations. It is independent of windows and
// instances, so a single registry may back several managers. A nil Logf
// silences diagnostics.
type Registry struct {
	regs  map[string]*Registration
	order []string // registration order, retained for stable sorts
	logf  func(format string, args ...any)
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{regs: make(map[string]*Registration)}
}

// SetLogf routes registry diagnostics to logf.
func (r *Registry) SetLogf(logf func(format string, args ...any)) {
	r.logf = logf
}

func (r *Registry) logError(err error, format string, args ...any) {
	if r.logf != nil {
		r.logf("layouts: %s: %v", fmt.Sprintf(format, args...), err)
	}
}

// Register adds reg to the registry. Registering a name twice fails and
// leaves the original untouched.
func (r *Registry) Register(reg Registration) bool {
	if reg.Name == "" {
		r.logError(ErrFactoryFailure, "register with empty name")
		return false
	}
	if _, dup := r.regs[reg.Name]; dup {
		r.logError(ErrAlreadyRegistered, "register %q", reg.Name)
		return false
	}
	c := reg
	c.Dependencies = append([]string(nil), reg.Dependencies...)
	c.Conflicts = append([]string(nil), reg.Conflicts...)
	r.regs[reg.Name] = &c
	r.order = append(r.order, reg.Name)
	return true
}

// Unregister removes the registration for name. Instances already created
// from it are not touched; only future creations are prevented.
func (r *Registry) Unregister(name string) {
	if _, ok := r.regs[name]; !ok {
		return
	}
	delete(r.regs, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// IsRegistered reports whether name has a registration.
func (r *Registry) IsRegistered(name string) bool {
	_, ok := r.regs[name]
	return ok
}

// Lookup returns a copy of the registration for name.
func (r *Registry) Lookup(name string) (Registration, bool) {
	reg, ok := r.regs[name]
	if !ok {
		return Registration{}, false
	}
	c := *reg
	c.Dependencies = append([]string(nil), reg.Dependencies...)
	c.Conflicts = append([]string(nil), reg.Conflicts...)
	return c, true
}

// Names returns all registered names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// ByPriority returns all registered names ordered by descending priority.
// Names of equal priority keep their registration order, so repeated calls
// yield identical slices.
func (r *Registry) ByPriority() []string {
	out := append([]string(nil), r.order...)
	sort.SliceStable(out, func(i, j int) bool {
		return r.regs[out[i]].Priority > r.regs[out[j]].Priority
	})
	return out
}

// AddDependency records that name requires dep. Both refer to layout names;
// only name must be registered.
func (r *Registry) AddDependency(name, dep string) bool {
	reg, ok := r.regs[name]
	if !ok {
		r.logError(ErrNotRegistered, "add dependency %q -> %q", name, dep)
		return false
	}
	for _, d := range reg.Dependencies {
		if d == dep {
			return true
		}
	}
	reg.Dependencies = append(reg.Dependencies, dep)
	return true
}

// RemoveDependency removes dep from name's dependency list.
func (r *Registry) RemoveDependency(name, dep string) bool {
	reg, ok := r.regs[name]
	if !ok {
		r.logError(ErrNotRegistered, "remove dependency %q -> %q", name, dep)
		return false
	}
	for i, d := range reg.Dependencies {
		if d == dep {
			reg.Dependencies = append(reg.Dependencies[:i], reg.Dependencies[i+1:]...)
			return true
		}
	}
	return true
}

// conflictsWith reports whether a and b may not be visible together,
// honouring declarations from either side.
func (r *Registry) conflictsWith(a, b string) bool {
	if ra, ok := r.regs[a]; ok {
		for _, c := range ra.Conflicts {
			if c == b {
				return true
			}
		}
	}
	if rb, ok := r.regs[b]; ok {
		for _, c := range rb.Conflicts {
			if c == a {
				return true
			}
		}
	}
	return false
}
