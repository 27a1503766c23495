package ecs_test

import "github.com/plus3/archstore/ecs"

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type PlayerController struct{}

// Custom primitive types for testing non-struct components
type Score int32
type Tag string

func newTestRegistry() *ecs.Registry {
	registry := ecs.NewRegistry()
	ecs.MustRegister[Position](registry)
	ecs.MustRegister[Velocity](registry)
	ecs.MustRegister[Name](registry)
	ecs.MustRegister[Health](registry)
	ecs.MustRegister[PlayerController](registry)
	ecs.MustRegister[Score](registry)
	ecs.MustRegister[Tag](registry)
	return registry
}

func mustID[T any](r *ecs.Registry) ecs.ComponentID {
	id, err := ecs.ComponentIDOf[T](r)
	if err != nil {
		panic(err)
	}
	return id
}
