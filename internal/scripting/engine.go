package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ErrNoFunction is returned when a script name has no matching Lua global.
var ErrNoFunction = errors.New("lua function not found")

// Engine wraps a single gopher-lua VM used for movement scripts.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every .lua file in dir, sorted
// by name. A missing dir yields an engine with no scripts.
func NewEngine(dir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if dir != "" {
		if err := e.loadDir(dir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			e.log.Debug("script dir missing", zap.String("dir", dir))
			return nil
		}
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs an inline chunk, typically to define steering functions.
func (e *Engine) LoadString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("load inline script: %w", err)
	}
	return nil
}

// Has reports whether a global function with the given name exists.
func (e *Engine) Has(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

func (e *Engine) Close() {
	e.vm.Close()
}

// SteerInput is the per-entity state passed to a steering function.
type SteerInput struct {
	Entity uint64
	Tick   uint64
	X, Y   float64
	DX, DY float64
}

// SteerResult is the table a steering function returns. Missing dx/dy keep
// the current velocity.
type SteerResult struct {
	DX, DY  float64
	Despawn bool
}

// Steer calls the Lua global `name` with a context table
// {entity, tick, x, y, dx, dy} and decodes the returned {dx, dy, despawn}.
func (e *Engine) Steer(name string, in SteerInput) (SteerResult, error) {
	fn, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return SteerResult{}, fmt.Errorf("%w: %s", ErrNoFunction, name)
	}

	t := e.vm.NewTable()
	t.RawSetString("entity", lua.LNumber(in.Entity))
	t.RawSetString("tick", lua.LNumber(in.Tick))
	t.RawSetString("x", lua.LNumber(in.X))
	t.RawSetString("y", lua.LNumber(in.Y))
	t.RawSetString("dx", lua.LNumber(in.DX))
	t.RawSetString("dy", lua.LNumber(in.DY))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		return SteerResult{}, fmt.Errorf("lua %s: %w", name, err)
	}

	ret := e.vm.Get(-1)
	e.vm.Pop(1)

	res := SteerResult{DX: in.DX, DY: in.DY}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		if ret == lua.LNil {
			return res, nil
		}
		return SteerResult{}, fmt.Errorf("lua %s: expected table, got %s", name, ret.Type())
	}
	if v, ok := tbl.RawGetString("dx").(lua.LNumber); ok {
		res.DX = float64(v)
	}
	if v, ok := tbl.RawGetString("dy").(lua.LNumber); ok {
		res.DY = float64(v)
	}
	res.Despawn = lua.LVAsBool(tbl.RawGetString("despawn"))
	return res, nil
}
