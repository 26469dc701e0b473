package game

import "time"

// Kind discriminates the entity variant. Kind-specific fields live in the
// corresponding variant struct; exactly one of Player/Enemy/Projectile is
// non-nil, matching Kind.
type Kind int

const (
	KindPlayer Kind = iota
	KindEnemy
	KindProjectile
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindEnemy:
		return "enemy"
	case KindProjectile:
		return "projectile"
	default:
		return "unknown"
	}
}

// AIState is the enemy behavior state. Transitions are driven by
// internal/ai; Stunned is entered only via large-knockback damage.
type AIState int

const (
	AIIdle AIState = iota
	AIPatrol
	AIApproach
	AIAttack
	AIRetreat
	AIStunned
)

func (s AIState) String() string {
	switch s {
	case AIIdle:
		return "idle"
	case AIPatrol:
		return "patrol"
	case AIApproach:
		return "approach"
	case AIAttack:
		return "attack"
	case AIRetreat:
		return "retreat"
	case AIStunned:
		return "stunned"
	default:
		return "unknown"
	}
}

// Entity is any simulated object. Accessed only from the game loop
// goroutine — no locks.
type Entity struct {
	ID        string
	Kind      Kind
	Pos       Vec2
	Vel       Vec2
	Facing    int // +1 right, -1 left
	Alive     bool
	Health    int
	MaxHealth int
	Anim      string
	SpawnedAt time.Time

	Player     *PlayerState
	Enemy      *EnemyState
	Projectile *ProjectileState
}

// PlayerState carries the player-only fields of an Entity.
type PlayerState struct {
	SessionID uint64
	Name      string
	Index     int // 0..7, stable for the lifetime of the connection

	AttackCooldown float64 // seconds until the next swing may start
	AttackWindow   float64 // seconds the current swing still lands hits
	Combo          int
	ComboTimer     float64 // combo resets to 0 when this reaches 0

	// Queued input commands, drained in arrival order each step.
	// Filled by the input system, consumed by the movement system —
	// both run on the game loop goroutine.
	InputQueue []InputCommand

	// Highest input sequence applied to this entity. Sequence numbers
	// are monotonically non-decreasing per player; stale inputs are dropped.
	LastInputSeq uint32

	OnGround bool
}

// EnemyState carries the enemy-only fields of an Entity.
type EnemyState struct {
	Archetype ArchetypeID
	Stats     ArchetypeStats

	State AIState
	// TargetID is a lookup key into the player map, re-resolved every
	// tick. Never a durable pointer — the target may disconnect.
	TargetID string

	StateTimer     float64 // per-state countdown (patrol repick, stun, retreat)
	AttackCooldown float64
	AttackWindow   float64
	WaypointX      float64 // patrol destination

	// Ticks remaining before a dead enemy is removed from the state
	// (death animation linger).
	DespawnTimer float64
}

// ProjectileState carries the projectile-only fields of an Entity.
type ProjectileState struct {
	OwnerID string
	Damage  int
	TTL     float64 // seconds of flight remaining
}

// ApplyDamage subtracts dmg from the entity's health, clamped to
// [0, MaxHealth], and updates the alive flag. Returns true when this call
// killed the entity (alive before, health zero after).
func (e *Entity) ApplyDamage(dmg int) bool {
	if !e.Alive {
		return false
	}
	e.Health -= dmg
	if e.Health < 0 {
		e.Health = 0
	}
	if e.Health > e.MaxHealth {
		e.Health = e.MaxHealth
	}
	if e.Health == 0 {
		e.Alive = false
		return true
	}
	return false
}

// Heal restores health, clamped to MaxHealth. A dead entity stays dead.
func (e *Entity) Heal(amount int) {
	if !e.Alive {
		return
	}
	e.Health += amount
	if e.Health > e.MaxHealth {
		e.Health = e.MaxHealth
	}
}
