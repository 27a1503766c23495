package ecs

import "errors"

var (
	// ErrComponentLimit is returned when registering more than MaxComponents types.
	ErrComponentLimit = errors.New("component limit reached")

	// ErrUnregisteredComponent is returned when a component type or id is used
	// before it was registered with the registry.
	ErrUnregisteredComponent = errors.New("component not registered")

	// ErrEntityNotFound is returned when an entity handle is not where it claims
	// to be, usually because it was destroyed.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrComponentNotFound is returned when reading or removing a component the
	// entity does not have.
	ErrComponentNotFound = errors.New("component not found")

	// ErrTypeMismatch is returned when a type-erased value does not match the
	// column it is written to.
	ErrTypeMismatch = errors.New("component type mismatch")
)
