package custom

import (
	"fmt"
	"sync"

	"github.com/bookplay-cli/bookplay/activity"
	"github.com/bookplay-cli/bookplay/constant"
	"github.com/bookplay-cli/bookplay/log"
	lua "github.com/yuin/gopher-lua"
)

// luaActivity is one live instance of a book-supplied activity. Events arrive
// from the player's goroutine, so every entry into the Lua state is
// serialized behind the instance mutex.
type luaActivity struct {
	mu    sync.Mutex
	name  string
	path  string
	state *lua.LState
}

func (a *luaActivity) Start(ctx *activity.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	state, err := newState(a.path)
	if err != nil {
		return err
	}
	a.state = state

	return state.CallByParam(lua.P{
		Fn:      state.GetGlobal(constant.ActivityStartFn),
		NRet:    0,
		Protect: true,
	}, a.contextTable(ctx))
}

func (a *luaActivity) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == nil {
		return
	}

	err := a.state.CallByParam(lua.P{
		Fn:      a.state.GetGlobal(constant.ActivityStopFn),
		NRet:    0,
		Protect: true,
	})
	if err != nil {
		log.Warnf("stop activity %s: %v", a.name, err)
	}

	a.state.Close()
	a.state = nil
}

// contextTable exposes the activity context to the script as a table of
// closures. Must be called with the instance lock held.
func (a *luaActivity) contextTable(ctx *activity.Context) *lua.LTable {
	state := a.state
	tbl := state.NewTable()

	state.SetField(tbl, "reportScore", state.NewFunction(func(L *lua.LState) int {
		ctx.ReportScore(L.CheckInt(1), L.CheckInt(2))
		return 0
	}))

	state.SetField(tbl, "storeSessionPageData", state.NewFunction(func(L *lua.LState) int {
		ctx.StoreSessionPageData(L.CheckString(1), L.CheckString(2))
		return 0
	}))

	state.SetField(tbl, "getSessionPageData", state.NewFunction(func(L *lua.LState) int {
		value, ok := ctx.GetSessionPageData(L.CheckString(1))
		if !ok {
			L.Push(lua.LNil)
		} else {
			L.Push(lua.LString(value))
		}
		return 1
	}))

	state.SetField(tbl, "playSound", state.NewFunction(func(L *lua.LState) int {
		if err := ctx.PlaySound(L.CheckString(1)); err != nil {
			L.Push(lua.LString(err.Error()))
			return 1
		}
		L.Push(lua.LNil)
		return 1
	}))

	state.SetField(tbl, "addEventListener", state.NewFunction(func(L *lua.LState) int {
		event := L.CheckString(1)
		fn := L.CheckFunction(2)
		ctx.AddEventListener(event, a.eventHandler(fn))
		return 0
	}))

	return tbl
}

// eventHandler wraps a Lua callback for the player's input stream. The
// handler silently drops events once the instance is stopped, matching the
// stale-callback policy everywhere else.
func (a *luaActivity) eventHandler(fn *lua.LFunction) func(activity.Event) {
	return func(ev activity.Event) {
		a.mu.Lock()
		defer a.mu.Unlock()

		if a.state == nil {
			return
		}

		payload := a.state.NewTable()
		a.state.SetField(payload, "type", lua.LString(ev.Type))
		if ev.Key != "" {
			a.state.SetField(payload, "key", lua.LString(ev.Key))
		}
		if ev.Target != nil {
			if id, ok := ev.Target.Attr("id"); ok {
				a.state.SetField(payload, "targetId", lua.LString(id))
			}
		}

		err := a.state.CallByParam(lua.P{
			Fn:      fn,
			NRet:    0,
			Protect: true,
		}, payload)
		if err != nil {
			log.Warnf("activity %s handler: %v", a.name, err)
		}
	}
}

func (a *luaActivity) String() string {
	return fmt.Sprintf("%s (custom)", a.name)
}
