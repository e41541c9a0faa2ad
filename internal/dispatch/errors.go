package dispatch

import "errors"

// Lifecycle errors for dispatcher misuse.
var (
	// ErrAlreadyBound indicates Setup was called on a dispatcher that
	// already holds a kernel.
	ErrAlreadyBound = errors.New("dispatch: force is already bound to a kernel")

	// ErrNotBound indicates Evaluate or ApplyUpdate was called before a
	// successful Setup.
	ErrNotBound = errors.New("dispatch: force has no kernel (setup has not succeeded)")

	// ErrDestroyed indicates any operation after Destroy.
	ErrDestroyed = errors.New("dispatch: dispatcher has been destroyed")
)

// BackendError wraps a kernel's rejection of an otherwise-valid
// description.
type BackendError struct {
	Kernel  string
	Wrapped error
}

func (e *BackendError) Error() string {
	return "dispatch: backend initialization failed for kernel " + e.Kernel + ": " + e.Wrapped.Error()
}

func (e *BackendError) Unwrap() error {
	return e.Wrapped
}
