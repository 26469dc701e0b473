package system

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/AAwhittier/Parallax-Scrolling/internal/ai"
	coresys "github.com/AAwhittier/Parallax-Scrolling/internal/core/system"
	"github.com/AAwhittier/Parallax-Scrolling/internal/game"
)

const (
	projectileSpeed = 14.0
	projectileTTL   = 2.0
	projectileDrop  = 3.0 // light gravity on arrows, units/s²
)

// AISystem advances every living enemy's state machine and integrates
// projectiles. Phase 2 (Update).
type AISystem struct {
	world *game.State
	rng   *rand.Rand
	log   *zap.Logger

	// Tracks which enemies already fired during their current attack
	// window, so an archer loosing one swing releases one arrow.
	fired map[string]bool
}

func NewAISystem(world *game.State, rng *rand.Rand, log *zap.Logger) *AISystem {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &AISystem{
		world: world,
		rng:   rng,
		log:   log,
		fired: make(map[string]bool),
	}
}

func (s *AISystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *AISystem) Update(dt time.Duration) {
	step := dt.Seconds()

	for _, enemy := range s.world.Enemies {
		if !enemy.Alive {
			continue
		}
		safeStep(s.log, enemy.ID, func() {
			ai.Advance(enemy, s.world, step, s.rng)
			s.maybeFire(enemy)
		})
	}

	for _, proj := range s.world.Projectiles {
		safeStep(s.log, proj.ID, func() {
			s.updateProjectile(proj, step)
		})
	}

	// Drop fired-flags for enemies that died or despawned. An archer
	// killed mid-window never reaches maybeFire again, so its entry has
	// to be reclaimed here.
	for id := range s.fired {
		e, ok := s.world.Enemies[id]
		if !ok || !e.Alive {
			delete(s.fired, id)
		}
	}
}

// maybeFire releases one projectile per archer attack window.
func (s *AISystem) maybeFire(enemy *game.Entity) {
	es := enemy.Enemy
	if es.Archetype != game.ArchetypeArcher {
		return
	}
	if !ai.Attacking(enemy) {
		delete(s.fired, enemy.ID)
		return
	}
	if s.fired[enemy.ID] {
		return
	}
	s.fired[enemy.ID] = true

	target, ok := s.world.Players[es.TargetID]
	dir := game.Vec2{X: float64(enemy.Facing)}
	if ok && target.Alive {
		dir = target.Pos.Sub(enemy.Pos).Normalized()
	}
	origin := enemy.Pos.Add(game.Vec2{X: float64(enemy.Facing) * 0.5, Y: 1.2})
	s.world.SpawnProjectile(enemy.ID, origin, dir.Scale(projectileSpeed), es.Stats.Damage, projectileTTL)
}

func (s *AISystem) updateProjectile(proj *game.Entity, step float64) {
	p := proj.Projectile
	p.TTL -= step
	if p.TTL <= 0 {
		proj.Alive = false
		return
	}
	proj.Vel.Y -= projectileDrop * step
	proj.Pos = proj.Pos.Add(proj.Vel.Scale(step))
	if proj.Pos.Y < s.world.Tuning.GroundY {
		proj.Alive = false // stuck in the ground
	}
}
