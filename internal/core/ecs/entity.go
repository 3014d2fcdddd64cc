package ecs

// EntityID is an opaque entity handle. IDs are handed out in increasing
// order starting at 0 and are never reissued, even after destroy, so they
// stay safe to use as stable references outside the process.
type EntityID uint64

// EntityPool allocates entity IDs. Unlike a generational pool it keeps no
// free list: a destroyed index is retired for the lifetime of the pool.
type EntityPool struct {
	nextIndex EntityID
}

func NewEntityPool() *EntityPool {
	return &EntityPool{}
}

func (p *EntityPool) Create() EntityID {
	id := p.nextIndex
	p.nextIndex++
	return id
}

// Issued reports whether id was ever returned by Create.
func (p *EntityPool) Issued(id EntityID) bool {
	return id < p.nextIndex
}

// Next returns the ID the following Create call will hand out.
func (p *EntityPool) Next() EntityID { return p.nextIndex }
