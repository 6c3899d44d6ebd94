// Package script handles compilation and execution of Lua activity scripts.
package script

import (
	"bytes"
	"sync"

	"github.com/bookplay-cli/bookplay/filesystem"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

var bytecodeCache sync.Map

// PreCompileAndLoad executes a Lua script within the provided LState, utilizing
// a bytecode cache so the same script can back many activity instances without
// recompiling.
func PreCompileAndLoad(state *lua.LState, scriptPath string) error {
	if cached, exists := bytecodeCache.Load(scriptPath); exists {
		fn := state.NewFunctionFromProto(cached.(*lua.FunctionProto))
		state.Push(fn)
		return state.PCall(0, lua.MultRet, nil)
	}

	raw, err := filesystem.API().ReadFile(scriptPath)
	if err != nil {
		return err
	}

	chunk, err := parse.Parse(bytes.NewReader(raw), scriptPath)
	if err != nil {
		return err
	}

	proto, err := lua.Compile(chunk, scriptPath)
	if err != nil {
		return err
	}

	bytecodeCache.Store(scriptPath, proto)

	fn := state.NewFunctionFromProto(proto)
	state.Push(fn)
	return state.PCall(0, lua.MultRet, nil)
}
