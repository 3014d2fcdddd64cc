package ecs

// GetEntitiesWith returns every live entity holding all of the given kinds,
// in creation order. With no kinds it returns every live entity. A kind
// outside the known set matches nothing.
//
// The scan is linear over all entities. Any faster index must keep both
// the ordering and the superset semantics.
func (r *Registry) GetEntitiesWith(kinds ...Kind) []EntityID {
	for _, k := range kinds {
		if !k.Valid() {
			return []EntityID{}
		}
	}
	want := MaskOf(kinds...)
	out := make([]EntityID, 0, len(r.order))
	for _, id := range r.order {
		rec, ok := r.records.Get(id)
		if !ok {
			continue
		}
		if rec.mask.Contains(want) {
			out = append(out, id)
		}
	}
	return out
}

// Get returns the entity's component of type T.
// T must be a pointer component type such as *Position.
func Get[T Component](r *Registry, id EntityID) (T, bool) {
	var zero T
	c, ok := r.GetComponent(id, zero.Kind())
	if !ok {
		return zero, false
	}
	t, ok := c.(T)
	return t, ok
}

// Each2 calls fn for every entity that has both A and B, in creation order.
func Each2[A, B Component](r *Registry, fn func(EntityID, A, B)) {
	var za A
	var zb B
	for _, id := range r.GetEntitiesWith(za.Kind(), zb.Kind()) {
		a, okA := Get[A](r, id)
		b, okB := Get[B](r, id)
		if okA && okB {
			fn(id, a, b)
		}
	}
}

// Each3 calls fn for every entity that has A, B and C, in creation order.
func Each3[A, B, C Component](r *Registry, fn func(EntityID, A, B, C)) {
	var za A
	var zb B
	var zc C
	for _, id := range r.GetEntitiesWith(za.Kind(), zb.Kind(), zc.Kind()) {
		a, okA := Get[A](r, id)
		b, okB := Get[B](r, id)
		c, okC := Get[C](r, id)
		if okA && okB && okC {
			fn(id, a, b, c)
		}
	}
}
