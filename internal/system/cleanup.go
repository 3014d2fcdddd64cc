package system

import (
	"time"

	"github.com/rtype/engine/internal/core/ecs"
	"github.com/rtype/engine/internal/core/event"
	coresys "github.com/rtype/engine/internal/core/system"
	"go.uber.org/zap"
)

// CleanupSystem flushes the deferred entity destruction queue at tick end.
// Phase 5 (Cleanup).
type CleanupSystem struct {
	world *ecs.World
	bus   *event.Bus
	log   *zap.Logger
}

func NewCleanupSystem(world *ecs.World, bus *event.Bus, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: world, bus: bus, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	for _, id := range s.world.FlushDestroyQueue() {
		s.log.Debug("entity despawned", zap.Uint64("entity", uint64(id)))
		event.Emit(s.bus, event.EntityDespawned{EntityID: id})
	}
}
