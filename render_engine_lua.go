// render_engine_lua.go - Lua-scripted render engine for Prisma Viewport

/*
Prisma Viewport - double-buffered cross-thread frame exchange

(c) 2025 - 2026 Prisma Viewport authors
https://github.com/prismaviz/PrismaViewport
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"os"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// LuaEngine runs a user script once per frame. The script defines
//
//	function render(width, height, t) ... end
//
// and draws through the registered surface API: clear(r,g,b,a),
// set_pixel(x,y,r,g,b,a) and fill_rect(x,y,w,h,r,g,b,a). Coordinates
// are zero-based. Dirty tracking happens inside the surface methods, so
// scripts never touch it.
//
// The Lua state lives on the producer thread and is never shared;
// Render must only be called from the render loop that owns the engine.
type LuaEngine struct {
	state   *lua.LState
	render  lua.LValue
	start   time.Time
	surface *PixelSurface // valid only for the duration of Render
}

// NewLuaEngine compiles the script and resolves its render function.
func NewLuaEngine(script string) (*LuaEngine, error) {
	le := &LuaEngine{
		state: lua.NewState(),
		start: time.Now(),
	}
	le.registerAPI()

	if err := le.state.DoString(script); err != nil {
		le.state.Close()
		return nil, fmt.Errorf("lua script load failed: %w", err)
	}
	render := le.state.GetGlobal("render")
	if _, ok := render.(*lua.LFunction); !ok {
		le.state.Close()
		return nil, fmt.Errorf("lua script does not define a render(width, height, t) function")
	}
	le.render = render
	return le, nil
}

// NewLuaEngineFromFile loads the script from disk.
func NewLuaEngineFromFile(path string) (*LuaEngine, error) {
	script, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lua script read failed: %w", err)
	}
	return NewLuaEngine(string(script))
}

func (le *LuaEngine) registerAPI() {
	L := le.state

	L.SetGlobal("clear", L.NewFunction(func(L *lua.LState) int {
		if le.surface == nil {
			return 0
		}
		le.surface.Clear(luaColor(L, 1))
		return 0
	}))

	L.SetGlobal("set_pixel", L.NewFunction(func(L *lua.LState) int {
		if le.surface == nil {
			return 0
		}
		x := L.CheckInt(1)
		y := L.CheckInt(2)
		le.surface.SetPixel(x, y, luaColor(L, 3))
		return 0
	}))

	L.SetGlobal("fill_rect", L.NewFunction(func(L *lua.LState) int {
		if le.surface == nil {
			return 0
		}
		x := L.CheckInt(1)
		y := L.CheckInt(2)
		w := L.CheckInt(3)
		h := L.CheckInt(4)
		color := luaColor(L, 5)
		s := le.surface
		for py := y; py < y+h; py++ {
			for px := x; px < x+w; px++ {
				s.SetPixel(px, py, color)
			}
		}
		return 0
	}))
}

// luaColor reads r,g,b and an optional alpha starting at the given
// argument index.
func luaColor(L *lua.LState, arg int) [4]byte {
	r := L.CheckInt(arg)
	g := L.CheckInt(arg + 1)
	b := L.CheckInt(arg + 2)
	a := 255
	if L.GetTop() >= arg+3 {
		a = L.CheckInt(arg + 3)
	}
	return [4]byte{clampByte(r), clampByte(g), clampByte(b), clampByte(a)}
}

func clampByte(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func (le *LuaEngine) Render(s *PixelSurface) {
	le.surface = s
	defer func() { le.surface = nil }()

	t := time.Since(le.start).Seconds()
	err := le.state.CallByParam(lua.P{
		Fn:      le.render,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(s.Width), lua.LNumber(s.Height), lua.LNumber(t))
	if err != nil {
		fmt.Fprintf(os.Stderr, "lua render error: %v\n", err)
	}
}

// Close releases the Lua state. The engine is unusable afterwards.
func (le *LuaEngine) Close() {
	le.state.Close()
}
