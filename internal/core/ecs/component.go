package ecs

import (
	"fmt"
	"math/bits"
)

// Kind is the stable tag of a component type and the Registry's inner key.
// The set is closed: adding a component type means adding a Kind here and
// a layout in NewComponent.
type Kind uint8

const (
	KindPosition Kind = iota + 1
	KindVelocity
	KindScript

	kindCount = iota
)

var kindNames = [...]string{
	KindPosition: "Position",
	KindVelocity: "Velocity",
	KindScript:   "Script",
}

func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func (k Kind) Valid() bool {
	return k >= KindPosition && int(k) <= kindCount
}

// ParseKind maps a kind name back to its tag.
func ParseKind(name string) (Kind, error) {
	for k := KindPosition; int(k) <= kindCount; k++ {
		if kindNames[k] == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown component kind %q", name)
}

// AllKinds returns every known kind in enumeration order.
func AllKinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := KindPosition; int(k) <= kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Component is a passive data record. Implementations use pointer
// receivers so the Registry hands out mutable references.
type Component interface {
	Kind() Kind
}

// Position is a 2D location in world units.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (*Position) Kind() Kind { return KindPosition }

// Velocity is the displacement applied to Position once per tick.
type Velocity struct {
	DX float64 `json:"dx" yaml:"dx"`
	DY float64 `json:"dy" yaml:"dy"`
}

func (*Velocity) Kind() Kind { return KindVelocity }

// Script names the Lua steering function driving an entity. Tick counts
// how many times the script has run for this entity.
type Script struct {
	Name string `json:"name" yaml:"name"`
	Tick uint64 `json:"tick" yaml:"tick"`
}

func (*Script) Kind() Kind { return KindScript }

// NewComponent returns a zero value of the layout registered for kind.
func NewComponent(kind Kind) (Component, error) {
	switch kind {
	case KindPosition:
		return &Position{}, nil
	case KindVelocity:
		return &Velocity{}, nil
	case KindScript:
		return &Script{}, nil
	}
	return nil, fmt.Errorf("no layout for %s", kind)
}

// Mask is a bitset over kinds.
type Mask uint64

func MaskOf(kinds ...Kind) Mask {
	var m Mask
	for _, k := range kinds {
		m |= 1 << k
	}
	return m
}

// Contains reports whether every kind in other is also in m.
func (m Mask) Contains(other Mask) bool {
	return m&other == other
}

func (m Mask) Has(k Kind) bool {
	return m&(1<<k) != 0
}

func (m Mask) Len() int {
	return bits.OnesCount64(uint64(m))
}
