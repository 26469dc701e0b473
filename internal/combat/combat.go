// Package combat is the per-step hit resolution sweep: attacker hitboxes
// against victim bounds, producing damage, knockback and events. It holds
// no state of its own between steps.
package combat

import (
	"go.uber.org/zap"

	"github.com/AAwhittier/Parallax-Scrolling/internal/ai"
	coreevent "github.com/AAwhittier/Parallax-Scrolling/internal/core/event"
	"github.com/AAwhittier/Parallax-Scrolling/internal/game"
)

const (
	BasePlayerDamage = 10

	playerKnockbackBase  = 4.0
	playerKnockbackCombo = 1.0 // extra force per combo step
	enemyKnockbackForce  = 3.0 // fixed, no combo term for enemies

	// Knockback magnitude above this forces an enemy into Stunned.
	StunThreshold = 6.0
	stunDuration  = 1.2

	playerHitboxReach  = 1.4
	playerHitboxHeight = 1.6
	enemyHitboxReach   = 1.2
	enemyHitboxHeight  = 1.6
)

// Rect is an axis-aligned box, min-corner plus size. All hit testing is a
// single rectangle overlap — no continuous collision.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W &&
		r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// AttackHitbox is the box swept by an attacker's swing, extended in the
// facing direction from the entity's position.
func AttackHitbox(e *game.Entity, reach, height float64) Rect {
	if e.Facing >= 0 {
		return Rect{X: e.Pos.X, Y: e.Pos.Y, W: reach, H: height}
	}
	return Rect{X: e.Pos.X - reach, Y: e.Pos.Y, W: reach, H: height}
}

// Bounds is the victim-side box for an entity.
func Bounds(e *game.Entity) Rect {
	switch e.Kind {
	case game.KindEnemy:
		w, h := 0.9, 1.8
		if e.Enemy.Archetype == game.ArchetypeBrute {
			w, h = 1.3, 2.2
		}
		if e.Enemy.Archetype == game.ArchetypeBoss {
			w, h = 2.0, 3.0
		}
		return Rect{X: e.Pos.X - w/2, Y: e.Pos.Y, W: w, H: h}
	case game.KindProjectile:
		return Rect{X: e.Pos.X - 0.15, Y: e.Pos.Y - 0.15, W: 0.3, H: 0.3}
	default:
		return Rect{X: e.Pos.X - 0.4, Y: e.Pos.Y, W: 0.8, H: 1.8}
	}
}

// Resolve runs one combat sweep over the state. Note: an attack window
// spans several simulation steps and a swing that keeps overlapping the
// same target lands on each of those steps.
func Resolve(w *game.State, bus *coreevent.Bus, log *zap.Logger) {
	resolvePlayerAttacks(w, bus, log)
	resolveEnemyAttacks(w, bus)
	resolveProjectiles(w, bus)
}

func resolvePlayerAttacks(w *game.State, bus *coreevent.Bus, log *zap.Logger) {
	for _, attacker := range w.Players {
		ps := attacker.Player
		if !attacker.Alive || ps.AttackWindow <= 0 {
			continue
		}
		hitbox := AttackHitbox(attacker, playerHitboxReach, playerHitboxHeight)
		combo := ps.Combo
		if combo < 1 {
			combo = 1
		}
		damage := BasePlayerDamage * combo

		for _, victim := range w.Enemies {
			if !victim.Alive || !hitbox.Overlaps(Bounds(victim)) {
				continue
			}
			kb := knockback(attacker, victim, playerKnockbackBase+playerKnockbackCombo*float64(combo))
			if hitEnemy(w, bus, attacker, victim, damage, kb) {
				log.Debug("enemy killed",
					zap.String("enemy", victim.ID),
					zap.String("by", attacker.ID),
					zap.Int("wave_kills", w.WaveKills),
				)
			}
		}
	}
}

func resolveEnemyAttacks(w *game.State, bus *coreevent.Bus) {
	for _, attacker := range w.Enemies {
		if !attacker.Alive || !ai.Attacking(attacker) {
			continue
		}
		// Archers deal damage through projectiles, not a melee box.
		if attacker.Enemy.Archetype == game.ArchetypeArcher {
			continue
		}
		reach := enemyHitboxReach
		if attacker.Enemy.Stats.AttackRange > reach {
			reach = attacker.Enemy.Stats.AttackRange
		}
		hitbox := AttackHitbox(attacker, reach, enemyHitboxHeight)

		for _, victim := range w.Players {
			if !victim.Alive || !hitbox.Overlaps(Bounds(victim)) {
				continue
			}
			kb := knockback(attacker, victim, enemyKnockbackForce)
			hitPlayer(w, bus, attacker.ID, victim, attacker.Enemy.Stats.Damage, kb)
		}
	}
}

func resolveProjectiles(w *game.State, bus *coreevent.Bus) {
	for _, proj := range w.Projectiles {
		if !proj.Alive {
			continue
		}
		bounds := Bounds(proj)
		for _, victim := range w.Players {
			if !victim.Alive || !bounds.Overlaps(Bounds(victim)) {
				continue
			}
			kb := proj.Vel.Normalized().Scale(enemyKnockbackForce)
			hitPlayer(w, bus, proj.Projectile.OwnerID, victim, proj.Projectile.Damage, kb)
			proj.Alive = false // consumed by first hit
			break
		}
	}
}

func hitEnemy(w *game.State, bus *coreevent.Bus, attacker, victim *game.Entity, damage int, kb game.Vec2) bool {
	killed := victim.ApplyDamage(damage)
	victim.Vel = victim.Vel.Add(kb)

	w.Emit(game.Event{
		Type:       game.EventEnemyDamaged,
		AttackerID: attacker.ID,
		TargetID:   victim.ID,
		Damage:     damage,
		Knockback:  kb,
	})

	if stats := w.Stats[attacker.ID]; stats != nil {
		stats.DamageDealt += damage
	}

	if killed {
		victim.Anim = "death"
		victim.Enemy.DespawnTimer = 1.0
		w.Emit(game.Event{
			Type:       game.EventEnemyDied,
			AttackerID: attacker.ID,
			TargetID:   victim.ID,
		})
		if stats := w.Stats[attacker.ID]; stats != nil {
			stats.Kills++
		}
		coreevent.Emit(bus, coreevent.EnemyKilled{
			EnemyID:   victim.ID,
			Archetype: victim.Enemy.Archetype,
			KillerID:  attacker.ID,
			Wave:      w.Wave,
		})
		if completed := w.RecordEnemyKill(); completed > 0 {
			coreevent.Emit(bus, coreevent.WaveCompleted{Wave: completed})
		}
		return true
	}

	if kb.Len() > StunThreshold {
		ai.Stun(victim, stunDuration)
	}
	return false
}

func hitPlayer(w *game.State, bus *coreevent.Bus, attackerID string, victim *game.Entity, damage int, kb game.Vec2) {
	killed := victim.ApplyDamage(damage)
	victim.Vel = victim.Vel.Add(kb)

	w.Emit(game.Event{
		Type:       game.EventPlayerDamaged,
		AttackerID: attackerID,
		TargetID:   victim.ID,
		Damage:     damage,
		Knockback:  kb,
	})

	if stats := w.Stats[victim.ID]; stats != nil {
		stats.DamageTaken += damage
	}

	if killed {
		victim.Anim = "death"
		w.Emit(game.Event{
			Type:       game.EventPlayerDied,
			AttackerID: attackerID,
			TargetID:   victim.ID,
		})
		coreevent.Emit(bus, coreevent.PlayerKilled{PlayerID: victim.ID, KillerID: attackerID})
	}
}

// knockback is a unit vector from attacker to victim — or the attacker's
// facing when the two coincide — scaled by force.
func knockback(attacker, victim *game.Entity, force float64) game.Vec2 {
	dir := victim.Pos.Sub(attacker.Pos).Normalized()
	if dir.X == 0 && dir.Y == 0 {
		dir = game.Vec2{X: float64(attacker.Facing)}
	}
	return dir.Scale(force)
}
