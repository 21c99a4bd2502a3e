// Package scripting exposes the terminal interface to a Lua init script.
//
// The script may define calc_pos(lines, cols, n_tags) to lay out the panes,
// videos_input(key) to handle keys the videos pane ignores and
// open(type, ext_id) to open a video. It reaches back through the global
// curses table.
package scripting

import (
	"errors"
	"fmt"
	"log"

	lua "github.com/yuin/gopher-lua"

	"subs/internal/domain"
	"subs/internal/ui/coordinator"
)

// ErrNoLayout is returned by Layout when the script defines no calc_pos
var ErrNoLayout = errors.New("scripting: calc_pos not defined")

// Results of videos_input
const (
	KeyError   = 0
	KeyHandled = 1
	KeyIgnored = 2
)

// Binding is what scripts can reach in the running interface
type Binding interface {
	PostMessage(text string)
	CurrentVideo() (int64, bool)
	VideoIDs() []int64
	ShellMode(fn func() error) error
}

// Engine owns one Lua state. It must only be used from the control loop.
type Engine struct {
	L *lua.LState
	b Binding
}

// NewEngine creates a Lua state with the curses table installed
func NewEngine() *Engine {
	e := &Engine{L: lua.NewState()}
	e.registerAPI()
	return e
}

// Bind attaches the interface the curses table talks to
func (e *Engine) Bind(b Binding) {
	e.b = b
}

// Close releases the Lua state
func (e *Engine) Close() {
	if e.L != nil {
		e.L.Close()
		e.L = nil
	}
}

// DoFile runs a script file
func (e *Engine) DoFile(path string) error {
	if err := e.L.DoFile(path); err != nil {
		return fmt.Errorf("failed to run %s: %w", path, err)
	}
	return nil
}

// DoString runs script source
func (e *Engine) DoString(src string) error {
	if err := e.L.DoString(src); err != nil {
		return fmt.Errorf("failed to run script: %w", err)
	}
	return nil
}

func (e *Engine) function(name string) *lua.LFunction {
	fn, _ := e.L.GetGlobal(name).(*lua.LFunction)
	return fn
}

// HasLayout reports whether calc_pos is defined
func (e *Engine) HasLayout() bool {
	return e.function("calc_pos") != nil
}

// Layout calls calc_pos. It accepts either one table with message,
// source_bar, subs_bar and videos entries or sixteen numbers in that order.
func (e *Engine) Layout(lines, cols, nTags int) (coordinator.Layout, error) {
	fn := e.function("calc_pos")
	if fn == nil {
		return coordinator.Layout{}, ErrNoLayout
	}
	top := e.L.GetTop()
	defer e.L.SetTop(top)
	err := e.L.CallByParam(lua.P{Fn: fn, NRet: lua.MultRet, Protect: true},
		lua.LNumber(lines), lua.LNumber(cols), lua.LNumber(nTags))
	if err != nil {
		return coordinator.Layout{}, fmt.Errorf("calc_pos: %w", err)
	}
	n := e.L.GetTop() - top
	if n == 1 {
		tbl, ok := e.L.Get(top + 1).(*lua.LTable)
		if !ok {
			return coordinator.Layout{}, fmt.Errorf("calc_pos: expected a table, got %s", e.L.Get(top+1).Type())
		}
		return layoutFromTable(tbl)
	}
	if n < 16 {
		return coordinator.Layout{}, fmt.Errorf("calc_pos: expected 16 values, got %d", n)
	}
	vals := make([]int, 16)
	for i := range vals {
		v, ok := e.L.Get(top + 1 + i).(lua.LNumber)
		if !ok {
			return coordinator.Layout{}, fmt.Errorf("calc_pos: value %d is not a number", i+1)
		}
		vals[i] = int(v)
	}
	return layoutFromInts(vals), nil
}

// LayoutOr uses calc_pos when the script defines it and fallback otherwise
func (e *Engine) LayoutOr(fallback coordinator.LayoutFunc) coordinator.LayoutFunc {
	return func(lines, cols, nTags int) (coordinator.Layout, error) {
		if !e.HasLayout() {
			return fallback(lines, cols, nTags)
		}
		return e.Layout(lines, cols, nTags)
	}
}

// VideosInput implements panes.KeyHook by calling videos_input
func (e *Engine) VideosInput(key int) (bool, error) {
	fn := e.function("videos_input")
	if fn == nil {
		return false, nil
	}
	top := e.L.GetTop()
	defer e.L.SetTop(top)
	if err := e.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lua.LNumber(key)); err != nil {
		return true, fmt.Errorf("videos_input: %w", err)
	}
	switch ret := e.L.Get(-1); ret {
	case lua.LNumber(KeyHandled):
		return true, nil
	case lua.LNumber(KeyIgnored), lua.LNil:
		return false, nil
	default:
		return true, fmt.Errorf("videos_input: key %d failed (returned %s)", key, ret.String())
	}
}

// Open implements panes.Opener by calling open(type, ext_id)
func (e *Engine) Open(ref domain.VideoRef) error {
	fn := e.function("open")
	if fn == nil {
		log.Printf("videos: no opener defined")
		return nil
	}
	err := e.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true},
		lua.LNumber(ref.Type), lua.LString(ref.ExtID))
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	return nil
}
