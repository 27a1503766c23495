package ecs

// System represents a behavior that operates on entities with specific components.
// User-defined systems implement Execute and usually hold one or more Groups,
// as well as custom state fields that persist between frames.
type System interface {
	Execute(frame *UpdateFrame)
}

// Initializer is implemented by systems that need the world before their
// first frame, typically to build their Groups.
type Initializer interface {
	Init(world *World) error
}
