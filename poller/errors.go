package poller

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrSyscall matches every [*SyscallError] via [errors.Is].
	ErrSyscall = errors.New("poller: system call failed")

	// ErrDestroyed is returned by operations on a destroyed poller.
	ErrDestroyed = errors.New("poller: poller has been destroyed")

	// ErrConcurrentRun is returned when Run is entered while another Run on
	// the same poller is in progress.
	ErrConcurrentRun = errors.New("poller: concurrent Run on the same poller")

	// ErrReservedFD is returned when a caller attempts to register, modify or
	// remove the poller's internal wake descriptor.
	ErrReservedFD = errors.New("poller: descriptor is reserved by the poller")

	// ErrInvalidCapacity is returned by Create for an initial event buffer
	// capacity below MinCapacity.
	ErrInvalidCapacity = errors.New("poller: initial capacity below minimum")
)

// SyscallError is the single error kind for failed OS calls, carrying the
// operation and the descriptor it was applied to.
type SyscallError struct {
	Err error
	Op  string
	FD  int
}

// Error implements the error interface.
func (e *SyscallError) Error() string {
	return fmt.Sprintf("poller: %s fd=%d: %v", e.Op, e.FD, e.Err)
}

// Unwrap returns the underlying errno, for use with [errors.Is].
func (e *SyscallError) Unwrap() error {
	return e.Err
}

// Is reports true for [ErrSyscall].
func (e *SyscallError) Is(target error) bool {
	return target == ErrSyscall
}

func newSyscallError(op string, fd int, err error) error {
	if err == nil {
		return nil
	}
	return &SyscallError{Op: op, FD: fd, Err: err}
}
