package data_test

import (
	"path/filepath"
	"testing"

	"github.com/rtype/engine/internal/core/ecs"
	"github.com/rtype/engine/internal/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSceneAndSpawn(t *testing.T) {
	s, err := data.ParseScene([]byte(`
entities:
  - name: ship
    position: {x: 1, y: 2}
    velocity: {dx: 0.5}
  - name: rock
    position: {x: 9}
  - name: drone
    position: {x: 3, y: 3}
    velocity: {dx: -1, dy: 0}
    script: zigzag
  - name: marker
`))
	require.NoError(t, err)
	assert.Equal(t, 4, s.Count())
	assert.Equal(t, []string{"zigzag"}, s.Scripts())

	reg := ecs.NewRegistry()
	ids, err := s.Spawn(reg)
	require.NoError(t, err)
	assert.Equal(t, []ecs.EntityID{0, 1, 2, 3}, ids)

	p, ok := ecs.Get[*ecs.Position](reg, ids[0])
	require.True(t, ok)
	assert.Equal(t, &ecs.Position{X: 1, Y: 2}, p)

	v, ok := ecs.Get[*ecs.Velocity](reg, ids[0])
	require.True(t, ok)
	assert.Equal(t, &ecs.Velocity{DX: 0.5, DY: 0}, v)

	assert.Equal(t, []ecs.Kind{ecs.KindPosition}, reg.Kinds(ids[1]))
	assert.Equal(t, []ecs.Kind{ecs.KindPosition, ecs.KindVelocity, ecs.KindScript}, reg.Kinds(ids[2]))
	assert.Empty(t, reg.Kinds(ids[3]))
}

func TestSpawnCopiesComponents(t *testing.T) {
	s := data.DefaultScene()
	reg := ecs.NewRegistry()

	first, err := s.Spawn(reg)
	require.NoError(t, err)
	second, err := s.Spawn(reg)
	require.NoError(t, err)

	p, _ := ecs.Get[*ecs.Position](reg, first[0])
	p.X = 100

	q, _ := ecs.Get[*ecs.Position](reg, second[0])
	assert.Equal(t, 0.0, q.X)
	assert.Equal(t, 0.0, s.Entities[0].Position.X)
}

func TestParseSceneErrors(t *testing.T) {
	_, err := data.ParseScene([]byte("entities:\n  - name: x\n    health: 3\n"))
	assert.Error(t, err, "unknown fields are rejected")

	s, err := data.ParseScene(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Count())

	_, err = data.LoadScene(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestShippedSceneMatchesDefault(t *testing.T) {
	s, err := data.LoadScene(filepath.Join("..", "..", "data", "scene.yaml"))
	require.NoError(t, err)
	assert.Equal(t, data.DefaultScene(), s)
}
