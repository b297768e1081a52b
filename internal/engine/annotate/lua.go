package annotate

import (
	"errors"
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"
)

// ErrNoAnnotateFunction is returned when a script does not define the
// annotate entry point.
var ErrNoAnnotateFunction = errors.New("script does not define annotate(text, line)")

// Lua annotates lines with a user-supplied script. The script must
// define a global function
//
//	function annotate(text, line)
//	  return "class"
//	end
//
// receiving the line's content and table index and returning the class
// to record. Display metrics are computed in Go and merged in.
//
// The underlying Lua state is not goroutine-safe; use a Lua annotator
// only from the goroutine that created it, and Close it when done.
type Lua struct {
	state *lua.LState
	fn    lua.LValue
}

// NewLua compiles a script from source.
func NewLua(script string) (*Lua, error) {
	L := lua.NewState()
	if err := L.DoString(script); err != nil {
		L.Close()
		return nil, fmt.Errorf("loading annotate script: %w", err)
	}
	return newLua(L)
}

// NewLuaFile compiles a script from a file.
func NewLuaFile(path string) (*Lua, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("annotate script: %w", err)
	}
	L := lua.NewState()
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("loading annotate script %s: %w", path, err)
	}
	return newLua(L)
}

func newLua(L *lua.LState) (*Lua, error) {
	fn := L.GetGlobal("annotate")
	if fn.Type() != lua.LTFunction {
		L.Close()
		return nil, ErrNoAnnotateFunction
	}
	return &Lua{state: L, fn: fn}, nil
}

// AnnotateLine implements Annotator.
func (l *Lua) AnnotateLine(text string, line int) (Note, error) {
	n, _ := Metrics{}.AnnotateLine(text, line)

	err := l.state.CallByParam(lua.P{
		Fn:      l.fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(text), lua.LNumber(line))
	if err != nil {
		return n, fmt.Errorf("annotate(%d): %w", line, err)
	}

	ret := l.state.Get(-1)
	l.state.Pop(1)
	if s, ok := ret.(lua.LString); ok {
		n.Class = string(s)
	}
	return n, nil
}

// Close releases the Lua state.
func (l *Lua) Close() {
	l.state.Close()
}
