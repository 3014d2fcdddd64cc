package system_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rtype/engine/internal/core/ecs"
	"github.com/rtype/engine/internal/system"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSaver struct {
	ticks    []uint64
	entities []int
	err      error
}

func (f *fakeSaver) Save(ctx context.Context, tick uint64, reg *ecs.Registry) (int64, error) {
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("save without deadline")
	}
	if f.err != nil {
		return 0, f.err
	}
	f.ticks = append(f.ticks, tick)
	f.entities = append(f.entities, reg.Len())
	return int64(len(f.ticks)), nil
}

func TestPersistSystemInterval(t *testing.T) {
	w := ecs.NewWorld()
	w.CreateEntity()
	saver := &fakeSaver{}
	sys := system.NewPersistSystem(w, saver, zap.NewNop(), 3)

	for i := 0; i < 7; i++ {
		sys.Update(0)
	}
	assert.Equal(t, []uint64{3, 6}, saver.ticks)
	assert.Equal(t, []int{1, 1}, saver.entities)
	assert.Equal(t, 2, sys.Saved())

	w.CreateEntity()
	sys.SaveNow()
	assert.Equal(t, []uint64{3, 6, 7}, saver.ticks)
	assert.Equal(t, []int{1, 1, 2}, saver.entities)
}

func TestPersistSystemLogsFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	saver := &fakeSaver{err: errors.New("db down")}
	sys := system.NewPersistSystem(ecs.NewWorld(), saver, zap.New(core), 1)

	sys.Update(0)
	assert.Zero(t, sys.Saved())
	assert.Equal(t, 1, logs.FilterMessage("snapshot save failed").Len())
}

func TestPersistSystemResume(t *testing.T) {
	saver := &fakeSaver{}
	sys := system.NewPersistSystem(ecs.NewWorld(), saver, zap.NewNop(), 2)
	sys.Resume(100)

	for i := 0; i < 4; i++ {
		sys.Update(0)
	}
	sys.SaveNow()
	assert.Equal(t, []uint64{102, 104, 104}, saver.ticks)
}
