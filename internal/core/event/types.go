package event

import "github.com/rtype/engine/internal/core/ecs"

// EntityMoved is emitted by MovementSystem after an entity's position
// advanced by one tick.
type EntityMoved struct {
	EntityID ecs.EntityID
	X, Y     float64
}

// EntityDespawned is emitted when CleanupSystem destroys a queued entity.
type EntityDespawned struct {
	EntityID ecs.EntityID
}

// DatagramReceived carries one inbound datagram drained by InputSystem.
type DatagramReceived struct {
	Payload []byte
	Addr    string
	Port    int
}
