package data

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rtype/engine/internal/core/ecs"
	"gopkg.in/yaml.v3"
)

// SceneEntry is one prefab: an optional name plus the components to attach.
// Absent sections mean the entity does not get that component.
type SceneEntry struct {
	Name     string        `yaml:"name"`
	Position *ecs.Position `yaml:"position"`
	Velocity *ecs.Velocity `yaml:"velocity"`
	Script   string        `yaml:"script"`
}

// Scene is an ordered list of prefabs.
type Scene struct {
	Entities []SceneEntry `yaml:"entities"`
}

// LoadScene loads a scene YAML file.
func LoadScene(path string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	s, err := ParseScene(raw)
	if err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}
	return s, nil
}

// ParseScene decodes scene YAML. Unknown keys are rejected.
func ParseScene(raw []byte) (*Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &Scene{}, nil
		}
		return nil, err
	}
	return &s, nil
}

// DefaultScene is the two-entity demo: a player at the origin drifting
// right-down and an enemy at (10, 5) drifting left.
func DefaultScene() *Scene {
	return &Scene{Entities: []SceneEntry{
		{
			Name:     "player",
			Position: &ecs.Position{X: 0, Y: 0},
			Velocity: &ecs.Velocity{DX: 1.0, DY: 0.5},
		},
		{
			Name:     "enemy",
			Position: &ecs.Position{X: 10, Y: 5},
			Velocity: &ecs.Velocity{DX: -0.5, DY: 0.0},
		},
	}}
}

// Spawn creates one entity per entry, in file order, and returns the IDs.
// Each spawned entity gets fresh component copies, so spawning the same
// scene twice yields independent entities.
func (s *Scene) Spawn(reg *ecs.Registry) ([]ecs.EntityID, error) {
	ids := make([]ecs.EntityID, 0, len(s.Entities))
	for i, e := range s.Entities {
		id := reg.CreateEntity()
		var comps []ecs.Component
		if e.Position != nil {
			p := *e.Position
			comps = append(comps, &p)
		}
		if e.Velocity != nil {
			v := *e.Velocity
			comps = append(comps, &v)
		}
		if e.Script != "" {
			comps = append(comps, &ecs.Script{Name: e.Script})
		}
		for _, c := range comps {
			if err := reg.AddComponent(id, c); err != nil {
				return ids, fmt.Errorf("spawn entry %d (%s): %w", i, e.Name, err)
			}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Count returns the number of prefabs in the scene.
func (s *Scene) Count() int {
	return len(s.Entities)
}

// Scripts returns the distinct script names referenced by the scene.
func (s *Scene) Scripts() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range s.Entities {
		if e.Script != "" && !seen[e.Script] {
			seen[e.Script] = true
			out = append(out, e.Script)
		}
	}
	return out
}
