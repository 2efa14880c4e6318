package drs

import "log/slog"

// Option configures an Archive.
type Option func(*Archive)

// WithOpener sets how Open reaches storage. The default opens local files.
func WithOpener(o Opener) Option {
	return func(a *Archive) {
		a.opener = o
	}
}

// WithTagLayout sets how table tags are decoded. The default is TagPacked;
// use TagLegacy for archives written by early tools.
func WithTagLayout(l TagLayout) Option {
	return func(a *Archive) {
		a.tagLayout = l
	}
}

// WithDispatcher sets the dispatcher used by Decode.
func WithDispatcher(d *Dispatcher) Option {
	return func(a *Archive) {
		a.dispatcher = d
	}
}

// WithLogger sets the logger for archive operations.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) {
		a.logger = logger
	}
}
