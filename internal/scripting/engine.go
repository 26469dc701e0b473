// Package scripting embeds a Lua VM for wave composition: the engine loads
// scripts/waves.lua and asks it what each wave should spawn. Go keeps a
// built-in plan as the fallback, so a missing or broken script never stops
// the match.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/AAwhittier/Parallax-Scrolling/internal/game"
)

// SpawnEntry is one archetype group in a wave plan.
type SpawnEntry struct {
	Archetype game.ArchetypeID
	Count     int
}

// Engine wraps a single gopher-lua VM. Single-goroutine access only
// (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all .lua files from scriptsDir.
// A missing directory yields an engine with no VM; WavePlan then always
// reports no script plan.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	entries, err := os.ReadDir(scriptsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return &Engine{log: log}, nil
		}
		return nil, fmt.Errorf("read scripts dir %s: %w", scriptsDir, err)
	}

	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(scriptsDir, entry.Name())
		if err := vm.DoFile(path); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		log.Debug("loaded lua script", zap.String("file", path))
	}
	return e, nil
}

// WavePlan asks the script for wave's spawn plan. The script must define
// a global function wave_plan(wave) returning a table of
// {archetype=string, count=number} entries. Returns (nil, false) when no
// script decides this wave, handing the decision back to the Go table.
func (e *Engine) WavePlan(wave int) ([]SpawnEntry, bool) {
	if e.vm == nil {
		return nil, false
	}
	fn := e.vm.GetGlobal("wave_plan")
	if fn == lua.LNil {
		return nil, false
	}

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lua.LNumber(wave)); err != nil {
		e.log.Warn("wave_plan failed, using built-in plan",
			zap.Int("wave", wave),
			zap.Error(err),
		)
		return nil, false
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)

	tbl, ok := ret.(*lua.LTable)
	if !ok {
		e.log.Warn("wave_plan returned non-table, using built-in plan", zap.Int("wave", wave))
		return nil, false
	}

	var plan []SpawnEntry
	tbl.ForEach(func(_, v lua.LValue) {
		entry, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		arch := lua.LVAsString(entry.RawGetString("archetype"))
		count := int(lua.LVAsNumber(entry.RawGetString("count")))
		if arch == "" || count <= 0 {
			return
		}
		plan = append(plan, SpawnEntry{
			Archetype: game.ArchetypeID(arch),
			Count:     count,
		})
	})
	if len(plan) == 0 {
		return nil, false
	}
	return plan, true
}

// Close releases the VM.
func (e *Engine) Close() {
	if e.vm != nil {
		e.vm.Close()
	}
}
