package ecs

import (
	"errors"
	"fmt"
	"slices"

	"github.com/kamstrup/intmap"
)

// ErrUnknownEntity is returned when an operation targets an entity that
// was never created or has been destroyed.
var ErrUnknownEntity = errors.New("unknown entity")

// ErrUnknownKind is returned when a component reports a kind outside the
// known set.
var ErrUnknownKind = errors.New("unknown component kind")

type record struct {
	mask       Mask
	components map[Kind]Component
}

// Registry is the sole owner of entities and their components.
//
// Component values handed out by GetComponent are borrowed: callers may
// mutate them in place during one system pass but must not hold on to
// them across passes.
//
// A Registry is not safe for concurrent use; the game loop owns it.
type Registry struct {
	pool    *EntityPool
	order   []EntityID // live entities, creation order
	records *intmap.Map[EntityID, *record]
}

func NewRegistry() *Registry {
	return &Registry{
		pool:    NewEntityPool(),
		order:   make([]EntityID, 0, 256),
		records: intmap.New[EntityID, *record](256),
	}
}

// CreateEntity allocates the next ID and registers an empty component map.
func (r *Registry) CreateEntity() EntityID {
	id := r.pool.Create()
	r.records.Put(id, &record{components: make(map[Kind]Component, 4)})
	r.order = append(r.order, id)
	return id
}

// AddComponent attaches c under its kind, replacing any component of the
// same kind already on the entity.
func (r *Registry) AddComponent(id EntityID, c Component) error {
	if c == nil {
		return fmt.Errorf("add component to entity %d: nil component", id)
	}
	k := c.Kind()
	if !k.Valid() {
		return fmt.Errorf("add %s to entity %d: %w", k, id, ErrUnknownKind)
	}
	rec, ok := r.records.Get(id)
	if !ok {
		return fmt.Errorf("add %s to entity %d: %w", k, id, r.unknown(id))
	}
	rec.components[k] = c
	rec.mask |= MaskOf(k)
	return nil
}

func (r *Registry) unknown(id EntityID) error {
	if r.pool.Issued(id) {
		return fmt.Errorf("%w (destroyed)", ErrUnknownEntity)
	}
	return ErrUnknownEntity
}

// GetComponent returns the entity's component of the given kind. The bool
// is false when the entity does not exist or holds no such component.
func (r *Registry) GetComponent(id EntityID, kind Kind) (Component, bool) {
	rec, ok := r.records.Get(id)
	if !ok {
		return nil, false
	}
	c, ok := rec.components[kind]
	return c, ok
}

func (r *Registry) HasComponent(id EntityID, kind Kind) bool {
	_, ok := r.GetComponent(id, kind)
	return ok
}

// RemoveComponent detaches the kind from the entity. It reports whether a
// component was removed.
func (r *Registry) RemoveComponent(id EntityID, kind Kind) bool {
	rec, ok := r.records.Get(id)
	if !ok {
		return false
	}
	if _, ok := rec.components[kind]; !ok {
		return false
	}
	delete(rec.components, kind)
	rec.mask &^= MaskOf(kind)
	return true
}

// DestroyEntity drops the entity and all of its components. The ID is
// retired and will never be handed out again.
func (r *Registry) DestroyEntity(id EntityID) bool {
	if _, ok := r.records.Get(id); !ok {
		return false
	}
	r.records.Del(id)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	return true
}

func (r *Registry) Alive(id EntityID) bool {
	_, ok := r.records.Get(id)
	return ok
}

// Len returns the number of live entities.
func (r *Registry) Len() int {
	return len(r.order)
}

// Kinds lists the kinds attached to the entity in enumeration order.
func (r *Registry) Kinds(id EntityID) []Kind {
	rec, ok := r.records.Get(id)
	if !ok {
		return nil
	}
	out := make([]Kind, 0, len(rec.components))
	for _, k := range AllKinds() {
		if rec.mask.Has(k) {
			out = append(out, k)
		}
	}
	return out
}
