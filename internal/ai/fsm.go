// Package ai drives enemy behavior: a per-entity finite state machine with
// distance-threshold transitions. The target is held as a player-id key and
// re-resolved against the live player map every step — never a durable
// pointer, since the target may disconnect at any point.
package ai

import (
	"math/rand"

	"github.com/AAwhittier/Parallax-Scrolling/internal/game"
)

const (
	idleMinSeconds   = 0.5
	idleMaxSeconds   = 2.0
	patrolRadius     = 6.0
	patrolTimeout    = 4.0
	patrolArriveEps  = 0.3
	leashMultiplier  = 2.0 // lose interest beyond detect range × this
	attackWindowSecs = 0.3
	retreatSeconds   = 0.8
	// Archers back off when the target closes inside this fraction of
	// their attack range.
	archerPanicFrac = 0.5
)

// Advance runs one FSM step for a single enemy. The caller guarantees e is
// a living enemy; w is passed for read-only target queries.
func Advance(e *game.Entity, w *game.State, dt float64, rng *rand.Rand) {
	es := e.Enemy

	if es.StateTimer > 0 {
		es.StateTimer -= dt
	}
	if es.AttackCooldown > 0 {
		es.AttackCooldown -= dt
	}
	if es.AttackWindow > 0 {
		es.AttackWindow -= dt
	}

	// Stunned overrides everything: velocity bleeds off, then back to Idle.
	if es.State == game.AIStunned {
		e.Vel.X *= 0.9
		e.Anim = "stunned"
		if es.StateTimer <= 0 {
			enterIdle(es, rng)
		}
		integrate(e, dt, w.Tuning)
		return
	}

	target := resolveTarget(e, w)

	switch es.State {
	case game.AIIdle:
		e.Vel.X = 0
		e.Anim = "idle"
		if target != nil {
			es.State = game.AIApproach
			break
		}
		if es.StateTimer <= 0 {
			enterPatrol(e, rng)
		}

	case game.AIPatrol:
		e.Anim = "walk"
		if target != nil {
			es.State = game.AIApproach
			break
		}
		moveTowardX(e, es.WaypointX, es.Stats.Speed*0.5)
		arrived := abs(e.Pos.X-es.WaypointX) < patrolArriveEps
		if arrived || es.StateTimer <= 0 {
			enterPatrol(e, rng) // re-pick waypoint
		}

	case game.AIApproach:
		if target == nil {
			enterIdle(es, rng)
			break
		}
		dist := game.Dist(e.Pos, target.Pos)
		if dist > es.Stats.DetectRange*leashMultiplier {
			es.TargetID = ""
			enterIdle(es, rng)
			break
		}
		if es.Archetype == game.ArchetypeArcher && dist < es.Stats.AttackRange*archerPanicFrac {
			es.State = game.AIRetreat
			es.StateTimer = retreatSeconds
			break
		}
		if dist <= es.Stats.AttackRange && es.AttackCooldown <= 0 {
			startAttack(e, target)
			break
		}
		e.Anim = "walk"
		moveTowardX(e, target.Pos.X, es.Stats.Speed)
		separate(e, w)

	case game.AIAttack:
		e.Vel.X = 0
		if es.AttackWindow > 0 {
			e.Anim = "attack"
			break
		}
		// Swing over: re-attack, chase, or drop out.
		if target == nil {
			enterIdle(es, rng)
			break
		}
		dist := game.Dist(e.Pos, target.Pos)
		switch {
		case dist <= es.Stats.AttackRange && es.AttackCooldown <= 0:
			startAttack(e, target) // self-loop
		case dist > es.Stats.AttackRange:
			es.State = game.AIApproach
		default:
			e.Anim = "idle" // waiting out cooldown in place
		}

	case game.AIRetreat:
		e.Anim = "walk"
		if target == nil {
			enterIdle(es, rng)
			break
		}
		// Back away from the target.
		dir := 1.0
		if target.Pos.X > e.Pos.X {
			dir = -1.0
		}
		e.Vel.X = dir * es.Stats.Speed
		if es.StateTimer <= 0 {
			es.State = game.AIApproach
		}

	default:
		// Unexpected state value: recover to Idle rather than wedge.
		enterIdle(es, rng)
	}

	integrate(e, dt, w.Tuning)
}

// Stun forces the FSM into Stunned for the given duration. Entered only
// via large-knockback damage (see combat).
func Stun(e *game.Entity, duration float64) {
	e.Enemy.State = game.AIStunned
	e.Enemy.StateTimer = duration
	e.Enemy.AttackWindow = 0
	e.Anim = "stunned"
}

// Attacking reports whether the enemy's swing window is currently open —
// the only period during which its hits land.
func Attacking(e *game.Entity) bool {
	return e.Enemy.AttackWindow > 0
}

// resolveTarget re-resolves the stored target key, acquiring the nearest
// living player in detect range when there is none. Enemies do not
// coordinate targets.
func resolveTarget(e *game.Entity, w *game.State) *game.Entity {
	es := e.Enemy
	if es.TargetID != "" {
		t, ok := w.Players[es.TargetID]
		if ok && t.Alive {
			return t
		}
		es.TargetID = ""
	}
	t := w.NearestLivingPlayer(e.Pos, es.Stats.DetectRange)
	if t != nil {
		es.TargetID = t.ID
	}
	return t
}

func startAttack(e *game.Entity, target *game.Entity) {
	es := e.Enemy
	es.State = game.AIAttack
	es.AttackWindow = attackWindowSecs
	es.AttackCooldown = es.Stats.AttackCooldown
	e.Vel.X = 0
	e.Anim = "attack"
	face(e, target.Pos.X)
}

func enterIdle(es *game.EnemyState, rng *rand.Rand) {
	es.State = game.AIIdle
	es.StateTimer = idleMinSeconds + rng.Float64()*(idleMaxSeconds-idleMinSeconds)
}

// enterPatrol picks a randomized horizontal waypoint near the current
// position.
func enterPatrol(e *game.Entity, rng *rand.Rand) {
	es := e.Enemy
	es.State = game.AIPatrol
	es.WaypointX = e.Pos.X + (rng.Float64()*2-1)*patrolRadius
	es.StateTimer = patrolTimeout
}

func moveTowardX(e *game.Entity, x, speed float64) {
	if x > e.Pos.X {
		e.Vel.X = speed
		e.Facing = 1
	} else {
		e.Vel.X = -speed
		e.Facing = -1
	}
}

func face(e *game.Entity, x float64) {
	if x >= e.Pos.X {
		e.Facing = 1
	} else {
		e.Facing = -1
	}
}

// separate nudges overlapping enemies apart horizontally so a crowd does
// not collapse onto a single point. No physics solver, just a push.
func separate(e *game.Entity, w *game.State) {
	for _, other := range w.Enemies {
		if other == e || !other.Alive {
			continue
		}
		dx := e.Pos.X - other.Pos.X
		if abs(dx) < 0.6 && abs(e.Pos.Y-other.Pos.Y) < 1.0 {
			if dx >= 0 {
				e.Vel.X += 1.5
			} else {
				e.Vel.X -= 1.5
			}
		}
	}
}

// integrate applies gravity and velocity. Enemies use the same ground
// plane as players but their horizontal speed is set directly by the FSM.
func integrate(e *game.Entity, dt float64, t game.MoveTuning) {
	e.Vel.Y -= t.Gravity * dt
	e.Pos.X += e.Vel.X * dt
	e.Pos.Y += e.Vel.Y * dt
	if e.Pos.Y <= t.GroundY {
		e.Pos.Y = t.GroundY
		e.Vel.Y = 0
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
