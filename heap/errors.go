package heap

import "errors"

var (
	// ErrAlreadyInstalled indicates a second Install; the process-wide heap
	// is bound once and never rebound.
	ErrAlreadyInstalled = errors.New("heap: already installed")

	// ErrNotInstalled indicates use of the package-level functions before
	// Install.
	ErrNotInstalled = errors.New("heap: not installed")

	// ErrNilBackend indicates a nil backend was passed to New or Install.
	ErrNilBackend = errors.New("heap: nil backend")

	// ErrCapacityOverflow indicates a container size that cannot be
	// expressed as a layout.
	ErrCapacityOverflow = errors.New("heap: capacity overflow")
)
