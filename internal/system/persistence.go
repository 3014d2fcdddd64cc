package system

import (
	"context"
	"time"

	"github.com/rtype/engine/internal/core/ecs"
	coresys "github.com/rtype/engine/internal/core/system"
	"go.uber.org/zap"
)

// SnapshotSaver stores a full copy of the registry.
type SnapshotSaver interface {
	Save(ctx context.Context, tick uint64, reg *ecs.Registry) (int64, error)
}

// PersistSystem periodically snapshots the whole registry. Phase 4 (Persist).
type PersistSystem struct {
	world     *ecs.World
	saver     SnapshotSaver
	log       *zap.Logger
	tick      uint64
	tickCount int
	interval  int // snapshot every N ticks
	saved     int
}

func NewPersistSystem(world *ecs.World, saver SnapshotSaver, log *zap.Logger, intervalTicks int) *PersistSystem {
	if intervalTicks <= 0 {
		intervalTicks = 1
	}
	return &PersistSystem{
		world:    world,
		saver:    saver,
		log:      log,
		interval: intervalTicks,
	}
}

func (s *PersistSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistSystem) Update(_ time.Duration) {
	s.tick++
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.save()
}

// Resume continues tick numbering from tick, the tick of a restored
// snapshot.
func (s *PersistSystem) Resume(tick uint64) {
	s.tick = tick
}

// SaveNow snapshots immediately regardless of the interval. Called on
// graceful shutdown.
func (s *PersistSystem) SaveNow() {
	s.save()
}

// Saved returns the number of snapshots written successfully.
func (s *PersistSystem) Saved() int { return s.saved }

func (s *PersistSystem) save() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := s.saver.Save(ctx, s.tick, s.world.Registry())
	if err != nil {
		s.log.Error("snapshot save failed", zap.Uint64("tick", s.tick), zap.Error(err))
		return
	}
	s.saved++
	s.log.Info("snapshot saved",
		zap.Int64("snapshot", id),
		zap.Uint64("tick", s.tick),
		zap.Int("entities", s.world.Registry().Len()))
}
