// Package script hosts the project's extension script. The control file
// is Lua executed in a sandboxed state against a narrow mutation API:
// ignore registration, helper registration, and attribute setting.
// Nothing else is reachable from the script.
package script

import (
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"

	"git.home.luguber.info/inful/sitebuilder/internal/helpers"
)

// ControlFile is the reserved control-file path relative to the source
// root. Its presence is optional; when present it runs on every sync.
const ControlFile = "_config.lua"

// Mutator is the mutation API bound to the running script. The project
// orchestrator implements it.
type Mutator interface {
	Ignore(pattern string)
	RegisterHelper(name string, fn helpers.Helper)
	SetAttr(name string, value any) error
}

// Runner owns one Lua state for the lifetime of a project session.
// Helper closures registered by the script call back into this state, so
// the state must outlive every registration; Close only at session end.
//
// Runner is not safe for concurrent use, matching the project's
// single-owner execution model.
type Runner struct {
	path string // absolute control file path
	l    *lua.LState
}

// NewRunner creates a runner for the control file at path. The Lua state
// is sandboxed immediately: script-loading globals are removed and
// module resolution from disk is disabled, leaving only the pure stdlib
// (string, table, math) and the bound site API.
func NewRunner(path string) *Runner {
	l := lua.NewState()
	sandbox(l)
	return &Runner{path: path, l: l}
}

// Close releases the Lua state. Helpers registered from the script must
// not be invoked afterwards.
func (r *Runner) Close() {
	r.l.Close()
}

// Run executes the control file against m. A missing control file is not
// an error. A script fault aborts the run; mutations already applied
// before the fault stay in effect. There is no rollback: the script
// reruns on the next sync anyway.
func (r *Runner) Run(m Mutator) error {
	if _, err := os.Stat(r.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat control file: %w", err)
	}

	r.l.SetGlobal("site", r.siteTable(m))
	if err := r.l.DoFile(r.path); err != nil {
		return fmt.Errorf("control script %s: %w", r.path, err)
	}
	return nil
}

// siteTable builds the mutation API table. Rebuilt per run so the bound
// mutator is always the current one.
func (r *Runner) siteTable(m Mutator) *lua.LTable {
	tbl := r.l.NewTable()

	r.l.SetField(tbl, "ignore", r.l.NewFunction(func(l *lua.LState) int {
		m.Ignore(l.CheckString(1))
		return 0
	}))

	r.l.SetField(tbl, "helper", r.l.NewFunction(func(l *lua.LState) int {
		name := l.CheckString(1)
		fn := l.CheckFunction(2)
		m.RegisterHelper(name, r.bindHelper(fn))
		return 0
	}))

	r.l.SetField(tbl, "set", r.l.NewFunction(func(l *lua.LState) int {
		name := l.CheckString(1)
		value := toGoValue(l.CheckAny(2))
		if err := m.SetAttr(name, value); err != nil {
			l.RaiseError("%s", err.Error())
		}
		return 0
	}))

	return tbl
}

// bindHelper wraps a Lua function as a Go helper calling back into the
// runner's state. Calls must happen on the goroutine owning the project,
// which is the same constraint every project mutation already carries.
func (r *Runner) bindHelper(fn *lua.LFunction) helpers.Helper {
	return func(args ...any) (any, error) {
		r.l.Push(fn)
		for _, arg := range args {
			r.l.Push(toLuaValue(r.l, arg))
		}
		if err := r.l.PCall(len(args), 1, nil); err != nil {
			return nil, fmt.Errorf("helper call: %w", err)
		}
		ret := r.l.Get(-1)
		r.l.Pop(1)
		return toGoValue(ret), nil
	}
}

// sandbox strips the capabilities the enumerated API does not need:
// loading further code and reaching the filesystem or process.
func sandbox(l *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "print"} {
		l.SetGlobal(name, lua.LNil)
	}
	l.SetGlobal("io", lua.LNil)
	l.SetGlobal("os", lua.LNil)
	l.SetGlobal("debug", lua.LNil)

	if pkg, ok := l.GetGlobal("package").(*lua.LTable); ok {
		l.SetField(pkg, "path", lua.LString(""))
		l.SetField(pkg, "cpath", lua.LString(""))
	}
}
