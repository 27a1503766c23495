package ecs

import "go.uber.org/zap"

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration and archetype creation
// events. A nil logger is ignored.
func WithLogger(log *zap.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}
