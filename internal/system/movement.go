package system

import (
	"fmt"
	"time"

	"github.com/rtype/engine/internal/core/ecs"
	"github.com/rtype/engine/internal/core/event"
	coresys "github.com/rtype/engine/internal/core/system"
	"go.uber.org/zap"
)

// MovementSystem advances every entity with Position and Velocity by one
// velocity step per tick. Phase 2 (Update).
//
// The step is per tick, not per second: dt is ignored so results do not
// depend on wall-clock jitter. No clamping or collision is applied.
type MovementSystem struct {
	world *ecs.World
	bus   *event.Bus
	log   *zap.Logger
}

func NewMovementSystem(world *ecs.World, bus *event.Bus, log *zap.Logger) *MovementSystem {
	return &MovementSystem{world: world, bus: bus, log: log}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MovementSystem) Update(_ time.Duration) {
	s.Step()
}

// Step runs one movement pass and returns the number of entities moved.
func (s *MovementSystem) Step() int {
	moved := 0
	ecs.Each2(s.world.Registry(), func(id ecs.EntityID, pos *ecs.Position, vel *ecs.Velocity) {
		pos.X += vel.DX
		pos.Y += vel.DY
		moved++

		s.log.Info(fmt.Sprintf("entity %d moved to (%.1f, %.1f)", id, pos.X, pos.Y))
		event.Emit(s.bus, event.EntityMoved{EntityID: id, X: pos.X, Y: pos.Y})
	})
	return moved
}
