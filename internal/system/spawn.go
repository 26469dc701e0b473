package system

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	coreevent "github.com/AAwhittier/Parallax-Scrolling/internal/core/event"
	coresys "github.com/AAwhittier/Parallax-Scrolling/internal/core/system"
	"github.com/AAwhittier/Parallax-Scrolling/internal/game"
	"github.com/AAwhittier/Parallax-Scrolling/internal/scripting"
)

const (
	waveBreatherSecs = 3.0  // pause between wave completion and next spawn
	spawnBandMin     = 14.0 // enemies appear this far from the arena center
	spawnBandMax     = 24.0
	bossEvery        = 5
)

// SpawnSystem is the wave director: it starts wave 1 once a player is
// present, listens for wave completions on the bus, and spawns each wave's
// enemy set. Composition comes from the Lua script when one is loaded,
// otherwise from the built-in plan. Phase 3 (Resolve); spawns land after a
// breather, not in the completion step.
type SpawnSystem struct {
	world   *game.State
	scripts *scripting.Engine
	rng     *rand.Rand
	log     *zap.Logger

	pendingWave int     // wave waiting to spawn (0 = none)
	countdown   float64 // seconds until pendingWave spawns
}

func NewSpawnSystem(world *game.State, bus *coreevent.Bus, scripts *scripting.Engine, rng *rand.Rand, log *zap.Logger) *SpawnSystem {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &SpawnSystem{
		world:   world,
		scripts: scripts,
		rng:     rng,
		log:     log,
	}
	coreevent.Subscribe(bus, func(ev coreevent.WaveCompleted) {
		s.log.Info("wave complete", zap.Int("wave", ev.Wave))
		s.pendingWave = ev.Wave + 1
		s.countdown = waveBreatherSecs
	})
	return s
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhaseResolve }

func (s *SpawnSystem) Update(dt time.Duration) {
	// First wave: arm once the first player is in.
	if s.world.Wave == 0 && s.pendingWave == 0 && len(s.world.Players) > 0 {
		s.pendingWave = 1
		s.countdown = waveBreatherSecs
	}

	if s.pendingWave == 0 {
		return
	}
	s.countdown -= dt.Seconds()
	if s.countdown > 0 {
		return
	}

	wave := s.pendingWave
	s.pendingWave = 0
	s.spawnWave(wave)
}

func (s *SpawnSystem) spawnWave(wave int) {
	if s.world.Wave != wave {
		s.world.StartWave(wave)
	}

	plan, fromScript := s.scripts.WavePlan(wave)
	if !fromScript {
		plan = builtinPlan(wave)
	}

	total := 0
	for _, entry := range plan {
		for i := 0; i < entry.Count; i++ {
			s.world.SpawnEnemy(entry.Archetype, s.spawnPoint())
			total++
		}
	}
	s.log.Info("wave spawned",
		zap.Int("wave", wave),
		zap.Int("enemies", total),
		zap.Bool("scripted", fromScript),
	)
}

// spawnPoint picks a ground position in the spawn band, either side.
func (s *SpawnSystem) spawnPoint() game.Vec2 {
	x := spawnBandMin + s.rng.Float64()*(spawnBandMax-spawnBandMin)
	if s.rng.Intn(2) == 0 {
		x = -x
	}
	return game.Vec2{X: x, Y: 0}
}

// builtinPlan is the fallback wave composition: grunts scale with the wave
// number, archers and brutes mix in as waves climb, and every fifth wave
// is a boss wave.
func builtinPlan(wave int) []scripting.SpawnEntry {
	if wave%bossEvery == 0 {
		return []scripting.SpawnEntry{
			{Archetype: game.ArchetypeBoss, Count: 1},
			{Archetype: game.ArchetypeGrunt, Count: wave / 2},
		}
	}
	plan := []scripting.SpawnEntry{
		{Archetype: game.ArchetypeGrunt, Count: 3 + wave},
	}
	if wave >= 2 {
		plan = append(plan, scripting.SpawnEntry{Archetype: game.ArchetypeArcher, Count: wave / 2})
	}
	if wave >= 3 {
		plan = append(plan, scripting.SpawnEntry{Archetype: game.ArchetypeBrute, Count: wave / 3})
	}
	return plan
}
