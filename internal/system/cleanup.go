package system

import (
	"time"

	coresys "github.com/AAwhittier/Parallax-Scrolling/internal/core/system"
	"github.com/AAwhittier/Parallax-Scrolling/internal/game"
)

// CleanupSystem removes entities that are done: dead enemies after their
// despawn linger, spent projectiles, and advances the tick counter.
// Phase 6 (Cleanup) — the last phase of a step.
type CleanupSystem struct {
	world *game.State
}

func NewCleanupSystem(world *game.State) *CleanupSystem {
	return &CleanupSystem{world: world}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(dt time.Duration) {
	step := dt.Seconds()

	for id, e := range s.world.Enemies {
		if e.Alive {
			continue
		}
		e.Enemy.DespawnTimer -= step
		if e.Enemy.DespawnTimer <= 0 {
			delete(s.world.Enemies, id)
		}
	}

	for id, p := range s.world.Projectiles {
		if !p.Alive {
			delete(s.world.Projectiles, id)
		}
	}

	s.world.Tick++
}
