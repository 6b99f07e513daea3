package layouts

import "errors"

// Failure classes used in manager diagnostics. Manager operations report
// failure to callers as boolean returns; these values classify the logged
// reason and let internal helpers wrap detail with %w.
var (
	ErrNotRegistered         = errors.New("layout not registered")
	ErrAlreadyRegistered     = errors.New("layout already registered")
	ErrDependencyUnsatisfied = errors.New("layout dependency unsatisfied")
	ErrConflictUnresolved    = errors.New("layout conflict unresolved")
	ErrFactoryFailure        = errors.New("layout factory failure")
	ErrNoHandler             = errors.New("no message handler")
	ErrNoWindow              = errors.New("no such window")
)
