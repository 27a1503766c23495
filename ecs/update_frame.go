package ecs

// UpdateFrame is handed to every system during one scheduler tick. Structural
// changes should go through Commands; they are flushed after the last system.
type UpdateFrame struct {
	DeltaTime float64
	Commands  *Commands
	World     *World
}

func newUpdateFrame(dt float64, world *World) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Commands:  newCommands(),
		World:     world,
	}
}
