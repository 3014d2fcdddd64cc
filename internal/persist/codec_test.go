package persist_test

import (
	"math"
	"testing"

	"github.com/rtype/engine/internal/core/ecs"
	"github.com/rtype/engine/internal/persist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentCodec(t *testing.T) {
	tests := []struct {
		name     string
		in       ecs.Component
		wantKind string
		wantBody string
	}{
		{"position", &ecs.Position{X: 1.5, Y: -2}, "Position", `{"x":1.5,"y":-2}`},
		{"velocity", &ecs.Velocity{DX: -0.5}, "Velocity", `{"dx":-0.5,"dy":0}`},
		{"script", &ecs.Script{Name: "zigzag", Tick: 7}, "Script", `{"name":"zigzag","tick":7}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, body, err := persist.EncodeComponent(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, kind)
			assert.JSONEq(t, tt.wantBody, string(body))

			out, err := persist.DecodeComponent(kind, body)
			require.NoError(t, err)
			assert.Equal(t, tt.in, out)
		})
	}
}

func TestDecodeComponentErrors(t *testing.T) {
	_, err := persist.DecodeComponent("Health", []byte(`{}`))
	assert.ErrorContains(t, err, `unknown component kind "Health"`)

	_, err = persist.DecodeComponent("Position", []byte(`{"x":`))
	assert.ErrorContains(t, err, "decode Position")
}

// JSON has no NaN; such components cannot be snapshotted.
func TestEncodeComponentRejectsNaN(t *testing.T) {
	_, _, err := persist.EncodeComponent(&ecs.Position{X: math.NaN()})
	assert.ErrorContains(t, err, "encode Position")
}

func TestRestore(t *testing.T) {
	reg := ecs.NewRegistry()
	reg.CreateEntity() // occupies id 0 so remapping is visible

	remap, err := persist.Restore(reg, []ecs.EntityID{7, 3}, []persist.StoredComponent{
		{Entity: 3, Kind: "Position", Body: []byte(`{"x":1,"y":2}`)},
		{Entity: 7, Kind: "Velocity", Body: []byte(`{"dx":-0.5,"dy":0}`)},
		{Entity: 3, Kind: "Script", Body: []byte(`{"name":"zigzag","tick":4}`)},
	})
	require.NoError(t, err)
	assert.Equal(t, map[ecs.EntityID]ecs.EntityID{7: 1, 3: 2}, remap)
	assert.Equal(t, []ecs.EntityID{0, 1, 2}, reg.GetEntitiesWith())
	assert.Equal(t, []ecs.Kind{ecs.KindVelocity}, reg.Kinds(1))

	pos, ok := ecs.Get[*ecs.Position](reg, 2)
	require.True(t, ok)
	assert.Equal(t, ecs.Position{X: 1, Y: 2}, *pos)
}

func TestRestoreLeavesRegistryUntouchedOnError(t *testing.T) {
	tests := []struct {
		name    string
		stored  []persist.StoredComponent
		wantErr string
	}{
		{
			"unknown kind",
			[]persist.StoredComponent{
				{Entity: 1, Kind: "Position", Body: []byte(`{"x":1}`)},
				{Entity: 2, Kind: "Health", Body: []byte(`{}`)},
			},
			`unknown component kind "Health"`,
		},
		{
			"bad body",
			[]persist.StoredComponent{{Entity: 2, Kind: "Velocity", Body: []byte(`{"dx":`)}},
			"decode Velocity",
		},
		{
			"unsaved entity",
			[]persist.StoredComponent{{Entity: 9, Kind: "Position", Body: []byte(`{}`)}},
			"unsaved entity 9",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := ecs.NewRegistry()
			_, err := persist.Restore(reg, []ecs.EntityID{1, 2}, tt.stored)
			assert.ErrorContains(t, err, tt.wantErr)
			assert.Zero(t, reg.Len())
		})
	}
}
