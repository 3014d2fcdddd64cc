package ecs

// World is the top-level ECS container. It owns the Registry and a deferred
// destruction queue flushed by CleanupSystem each tick, so systems can
// request despawns without mutating the entity set mid-iteration.
type World struct {
	registry     *Registry
	destroyQueue []EntityID
}

func NewWorld() *World {
	return &World{
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.registry.CreateEntity()
}

func (w *World) Alive(id EntityID) bool {
	return w.registry.Alive(id)
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// Pending returns the number of queued destructions.
func (w *World) Pending() int { return len(w.destroyQueue) }

// FlushDestroyQueue destroys all queued entities and returns the IDs that
// were actually removed. Duplicates and already-dead IDs are skipped.
func (w *World) FlushDestroyQueue() []EntityID {
	if len(w.destroyQueue) == 0 {
		return nil
	}
	removed := make([]EntityID, 0, len(w.destroyQueue))
	for _, id := range w.destroyQueue {
		if w.registry.DestroyEntity(id) {
			removed = append(removed, id)
		}
	}
	w.destroyQueue = w.destroyQueue[:0]
	return removed
}
