package persist

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rtype/engine/internal/core/ecs"
)

// EncodeComponent returns the kind name and JSON body stored for c.
func EncodeComponent(c ecs.Component) (string, []byte, error) {
	body, err := json.Marshal(c)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s: %w", c.Kind(), err)
	}
	return c.Kind().String(), body, nil
}

// DecodeComponent rebuilds a component from its stored kind name and body.
func DecodeComponent(kind string, body []byte) (ecs.Component, error) {
	k, err := ecs.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	c, err := ecs.NewComponent(k)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, c); err != nil {
		return nil, fmt.Errorf("decode %s: %w", k, err)
	}
	return c, nil
}
