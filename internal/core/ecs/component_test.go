package ecs_test

import (
	"testing"

	"github.com/rtype/engine/internal/core/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindNames(t *testing.T) {
	for _, k := range ecs.AllKinds() {
		t.Run(k.String(), func(t *testing.T) {
			parsed, err := ecs.ParseKind(k.String())
			require.NoError(t, err)
			assert.Equal(t, k, parsed)

			c, err := ecs.NewComponent(k)
			require.NoError(t, err)
			assert.Equal(t, k, c.Kind())
		})
	}

	_, err := ecs.ParseKind("Health")
	assert.Error(t, err)

	_, err = ecs.NewComponent(ecs.Kind(0))
	assert.Error(t, err)
	assert.Equal(t, "Kind(0)", ecs.Kind(0).String())
	assert.False(t, ecs.Kind(200).Valid())
}

func TestComponentZeroDefaults(t *testing.T) {
	assert.Equal(t, ecs.Position{X: 0, Y: 0}, ecs.Position{})
	assert.Equal(t, ecs.Velocity{DX: 1.5, DY: 0}, ecs.Velocity{DX: 1.5})
}

func TestMask(t *testing.T) {
	m := ecs.MaskOf(ecs.KindPosition, ecs.KindVelocity)
	assert.Equal(t, 2, m.Len())
	assert.True(t, m.Has(ecs.KindPosition))
	assert.False(t, m.Has(ecs.KindScript))
	assert.True(t, m.Contains(ecs.MaskOf(ecs.KindVelocity)))
	assert.True(t, m.Contains(ecs.MaskOf()))
	assert.False(t, m.Contains(ecs.MaskOf(ecs.KindScript)))
}
