package ecs

type compX struct{ V int }
type compY struct{ V int }
type compZ struct{ V int }

func newXYZRegistry() (r *Registry, x, y, z ComponentID) {
	r = NewRegistry()
	x = MustRegister[compX](r)
	y = MustRegister[compY](r)
	z = MustRegister[compZ](r)
	return r, x, y, z
}
