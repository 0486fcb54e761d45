// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package poller

import (
	"github.com/joeycumines/logiface"
)

// MinCapacity is the smallest (and default) event buffer capacity.
const MinCapacity = 8

// WakeKind selects the mechanism behind a poller's wake channel.
type WakeKind int

const (
	// WakePipe uses a nonblocking self-pipe (the default).
	WakePipe WakeKind = iota
	// WakeEventFD uses a single nonblocking eventfd.
	WakeEventFD
)

// String returns a human-readable representation of the wake kind.
func (k WakeKind) String() string {
	switch k {
	case WakePipe:
		return "pipe"
	case WakeEventFD:
		return "eventfd"
	default:
		return "unknown"
	}
}

// pollerOptions holds configuration options for Poller creation.
type pollerOptions struct {
	logger          *logiface.Logger[logiface.Event]
	initialCapacity int
	wakeKind        WakeKind
	closeOnExec     bool
	reclamation     bool
}

// --- Poller Options ---

// Option configures a Poller instance.
type Option interface {
	applyPoller(*pollerOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyPollerFunc func(*pollerOptions) error
}

func (o *optionImpl) applyPoller(opts *pollerOptions) error {
	return o.applyPollerFunc(opts)
}

// WithCloseOnExec sets whether the epoll and wake descriptors are created
// close-on-exec. Defaults to true.
func WithCloseOnExec(enabled bool) Option {
	return &optionImpl{func(opts *pollerOptions) error {
		opts.closeOnExec = enabled
		return nil
	}}
}

// WithInitialCapacity sets the initial event buffer capacity, which must be
// at least MinCapacity. The buffer doubles each time a wait fills it.
func WithInitialCapacity(capacity int) Option {
	return &optionImpl{func(opts *pollerOptions) error {
		if capacity < MinCapacity {
			return ErrInvalidCapacity
		}
		opts.initialCapacity = capacity
		return nil
	}}
}

// WithWakeChannel selects the wake channel mechanism.
func WithWakeChannel(kind WakeKind) Option {
	return &optionImpl{func(opts *pollerOptions) error {
		opts.wakeKind = kind
		return nil
	}}
}

// WithLogger sets the structured logger. A nil logger disables logging,
// overriding any default set by SetDefaultLogger.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *pollerOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithReclamation sets whether the poller is tracked by the background
// sweep, which destroys it if it becomes unreachable without an explicit
// Destroy. Defaults to true.
func WithReclamation(enabled bool) Option {
	return &optionImpl{func(opts *pollerOptions) error {
		opts.reclamation = enabled
		return nil
	}}
}

// resolveOptions applies Option instances to pollerOptions.
func resolveOptions(opts []Option) (*pollerOptions, error) {
	cfg := &pollerOptions{
		logger:          getDefaultLogger(),
		initialCapacity: MinCapacity,
		wakeKind:        WakePipe,
		closeOnExec:     true,
		reclamation:     true,
	}
	for _, opt := range opts {
		if opt == nil {
			continue // Skip nil options gracefully
		}
		if err := opt.applyPoller(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
