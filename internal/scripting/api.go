package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"subs/internal/ui/coordinator"
	"subs/internal/ui/display"
)

func (e *Engine) registerAPI() {
	L := e.L
	curses := L.NewTable()
	curses.RawSetString("KEY_ERROR", lua.LNumber(KeyError))
	curses.RawSetString("KEY_HANDLED", lua.LNumber(KeyHandled))
	curses.RawSetString("KEY_IGNORED", lua.LNumber(KeyIgnored))
	curses.RawSetString("add_message", L.NewFunction(e.addMessage))
	curses.RawSetString("shell_mode", L.NewFunction(e.shellMode))

	videos := L.NewTable()
	videos.RawSetString("cur_item", L.NewFunction(e.curItem))
	videos.RawSetString("items", L.NewFunction(e.items))
	curses.RawSetString("videos", videos)

	L.SetGlobal("curses", curses)
}

// args skips the receiver of a method-style call such as
// curses:add_message(text)
func args(L *lua.LState) int {
	if _, ok := L.Get(1).(*lua.LTable); ok {
		return 2
	}
	return 1
}

func (e *Engine) binding(L *lua.LState) Binding {
	if e.b == nil {
		L.RaiseError("curses: interface not running")
	}
	return e.b
}

func (e *Engine) addMessage(L *lua.LState) int {
	text := L.CheckString(args(L))
	e.binding(L).PostMessage(text)
	return 0
}

func (e *Engine) curItem(L *lua.LState) int {
	id, ok := e.binding(L).CurrentVideo()
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(id))
	return 1
}

// items returns an iterator of index, id over the loaded videos
func (e *Engine) items(L *lua.LState) int {
	ids := e.binding(L).VideoIDs()
	iter := L.NewFunction(func(L *lua.LState) int {
		i := L.CheckInt(2)
		if i < 0 || i >= len(ids) {
			return 0
		}
		L.Push(lua.LNumber(i + 1))
		L.Push(lua.LNumber(ids[i]))
		return 2
	})
	L.Push(iter)
	L.Push(lua.LNil)
	L.Push(lua.LNumber(0))
	return 3
}

// shellMode runs fn with the terminal released
func (e *Engine) shellMode(L *lua.LState) int {
	fn := L.CheckFunction(args(L))
	b := e.binding(L)
	err := b.ShellMode(func() error {
		return L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	})
	if err != nil {
		L.RaiseError("shell_mode: %s", err.Error())
	}
	return 0
}

func field(tbl *lua.LTable, name string, index int) (int, error) {
	v := tbl.RawGetString(name)
	if v == lua.LNil {
		v = tbl.RawGetInt(index)
	}
	n, ok := v.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("field %s: expected a number, got %s", name, v.Type())
	}
	return int(n), nil
}

func rectFromTable(tbl *lua.LTable) (display.Rect, error) {
	var r display.Rect
	var err error
	if r.X, err = field(tbl, "x", 1); err != nil {
		return r, err
	}
	if r.Y, err = field(tbl, "y", 2); err != nil {
		return r, err
	}
	if r.W, err = field(tbl, "w", 3); err != nil {
		return r, err
	}
	if r.H, err = field(tbl, "h", 4); err != nil {
		return r, err
	}
	return r, nil
}

func layoutFromTable(tbl *lua.LTable) (coordinator.Layout, error) {
	var l coordinator.Layout
	parts := []struct {
		name string
		dst  *display.Rect
	}{
		{"message", &l.Message},
		{"source_bar", &l.Source},
		{"subs_bar", &l.Subs},
		{"videos", &l.Videos},
	}
	for _, p := range parts {
		sub, ok := tbl.RawGetString(p.name).(*lua.LTable)
		if !ok {
			return l, fmt.Errorf("calc_pos: missing %s", p.name)
		}
		r, err := rectFromTable(sub)
		if err != nil {
			return l, fmt.Errorf("calc_pos: %s: %w", p.name, err)
		}
		*p.dst = r
	}
	return l, nil
}

func layoutFromInts(v []int) coordinator.Layout {
	rect := func(i int) display.Rect {
		return display.Rect{X: v[i], Y: v[i+1], W: v[i+2], H: v[i+3]}
	}
	return coordinator.Layout{
		Message: rect(0),
		Source:  rect(4),
		Subs:    rect(8),
		Videos:  rect(12),
	}
}
