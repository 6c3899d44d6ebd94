// Package custom provides a bridge between the activity registry and
// book-supplied Lua activity scripts.
package custom

import (
	"fmt"

	"github.com/bookplay-cli/bookplay/activity"
	"github.com/bookplay-cli/bookplay/book"
	"github.com/bookplay-cli/bookplay/constant"
	"github.com/bookplay-cli/bookplay/internal/script"
	"github.com/bookplay-cli/bookplay/key"
	"github.com/spf13/viper"

	libs "github.com/metafates/mangal-lua-libs"
	lua "github.com/yuin/gopher-lua"
)

// Loader resolves activity names to Lua scripts in the book's activities
// folder. It implements activity.Loader.
type Loader struct{}

// Load compiles and validates the named script, returning a module whose
// instances each run in their own Lua state.
func (Loader) Load(bk *book.Book, name string) (activity.Module, error) {
	if !viper.GetBool(key.ActivitiesEnableCustom) {
		return nil, fmt.Errorf("book-supplied activities are disabled")
	}

	path := bk.ActivityScriptPath(name)

	state, err := newState(path)
	if err != nil {
		return nil, err
	}
	defer state.Close()

	required := []string{
		constant.ActivityStartFn,
		constant.ActivityStopFn,
		constant.ActivityRequirementsFn,
	}
	for _, fn := range required {
		if state.GetGlobal(fn).Type() != lua.LTFunction {
			return nil, fmt.Errorf("function %s is required but not defined in %s", fn, name)
		}
	}

	req, err := readRequirements(state)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return &luaModule{name: name, path: path, req: req}, nil
}

// Validate compiles a script and checks it satisfies the activity contract
// without registering anything. Used by the CLI for script development.
func Validate(path string) error {
	state, err := newState(path)
	if err != nil {
		return err
	}
	defer state.Close()

	required := []string{
		constant.ActivityStartFn,
		constant.ActivityStopFn,
		constant.ActivityRequirementsFn,
	}
	for _, fn := range required {
		if state.GetGlobal(fn).Type() != lua.LTFunction {
			return fmt.Errorf("function %s is required but not defined in %s", fn, path)
		}
	}

	_, err = readRequirements(state)
	return err
}

// newState builds a fresh Lua state with the standard libraries preloaded and
// the script executed.
func newState(path string) (*lua.LState, error) {
	state := lua.NewState()
	libs.Preload(state)

	if err := script.PreCompileAndLoad(state, path); err != nil {
		state.Close()
		return nil, err
	}
	return state, nil
}

// readRequirements calls the script's requirements function and maps the
// returned table onto the capability contract. Absent fields mean false.
func readRequirements(state *lua.LState) (activity.Requirements, error) {
	var req activity.Requirements

	err := state.CallByParam(lua.P{
		Fn:      state.GetGlobal(constant.ActivityRequirementsFn),
		NRet:    1,
		Protect: true,
	})
	if err != nil {
		return req, err
	}

	ret := state.Get(-1)
	state.Pop(1)

	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return req, fmt.Errorf("%s returned %s, expected table", constant.ActivityRequirementsFn, ret.Type())
	}

	req.Dragging = lua.LVAsBool(tbl.RawGetString("dragging"))
	req.Clicking = lua.LVAsBool(tbl.RawGetString("clicking"))
	req.Typing = lua.LVAsBool(tbl.RawGetString("typing"))
	req.SoundManagement = lua.LVAsBool(tbl.RawGetString("soundManagement"))
	return req, nil
}

// luaModule produces one fresh Lua state per instance so an activity can
// never carry state over from a previous page visit.
type luaModule struct {
	name string
	path string
	req  activity.Requirements
}

func (m *luaModule) Requirements() activity.Requirements {
	return m.req
}

func (m *luaModule) New() activity.Activity {
	return &luaActivity{name: m.name, path: m.path}
}
