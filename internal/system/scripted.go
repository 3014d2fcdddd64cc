package system

import (
	"slices"
	"time"

	"github.com/rtype/engine/internal/core/ecs"
	coresys "github.com/rtype/engine/internal/core/system"
	"github.com/rtype/engine/internal/scripting"
	"go.uber.org/zap"
)

// Steerer computes a new velocity for a scripted entity.
type Steerer interface {
	Steer(name string, in scripting.SteerInput) (scripting.SteerResult, error)
}

// ScriptedMovementSystem lets Lua steering functions rewrite the Velocity
// of entities that carry a Script component. It runs before movement so
// the new velocity applies in the same tick. Phase 1 (PreUpdate).
type ScriptedMovementSystem struct {
	world   *ecs.World
	steerer Steerer
	log     *zap.Logger
}

func NewScriptedMovementSystem(world *ecs.World, steerer Steerer, log *zap.Logger) *ScriptedMovementSystem {
	return &ScriptedMovementSystem{world: world, steerer: steerer, log: log}
}

func (s *ScriptedMovementSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *ScriptedMovementSystem) Update(_ time.Duration) {
	ecs.Each3(s.world.Registry(), func(id ecs.EntityID, pos *ecs.Position, vel *ecs.Velocity, script *ecs.Script) {
		res, err := s.steerer.Steer(script.Name, scripting.SteerInput{
			Entity: uint64(id),
			Tick:   script.Tick,
			X:      pos.X,
			Y:      pos.Y,
			DX:     vel.DX,
			DY:     vel.DY,
		})
		if err != nil {
			// Keep the previous velocity; one broken script must not stall the tick.
			s.log.Warn("steering script failed",
				zap.Uint64("entity", uint64(id)),
				zap.String("script", script.Name),
				zap.Error(err))
			return
		}
		vel.DX, vel.DY = res.DX, res.DY
		script.Tick++
		if res.Despawn {
			s.world.MarkForDestruction(id)
		}
	})
}

// MissingScripts returns the distinct Script names held by entities in reg
// for which has reports false, in first-seen order.
func MissingScripts(reg *ecs.Registry, has func(name string) bool) []string {
	var missing []string
	for _, id := range reg.GetEntitiesWith(ecs.KindScript) {
		script, _ := ecs.Get[*ecs.Script](reg, id)
		if !has(script.Name) && !slices.Contains(missing, script.Name) {
			missing = append(missing, script.Name)
		}
	}
	return missing
}
