package protocol

import (
	"math"

	"github.com/AAwhittier/Parallax-Scrolling/internal/game"
)

// InputMessage wraps one input command with the sending player's id.
type InputMessage struct {
	PlayerID string            `json:"playerId"`
	Input    game.InputCommand `json:"input"`
}

// JoinGame is the payload of a JOIN_GAME envelope.
type JoinGame struct {
	Name string `json:"name"`
}

// GameJoined acknowledges a join and tells the client who it is.
type GameJoined struct {
	PlayerID string `json:"playerId"`
	Index    int    `json:"index"`
	Wave     int    `json:"wave"`
	TickRate int    `json:"tickRate"`
}

// PlayerView is one player as seen in a snapshot. The recipient's own
// entity is encoded at full precision; everyone else is quantized.
type PlayerView struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Index     int     `json:"index"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	VX        float64 `json:"vx"`
	VY        float64 `json:"vy"`
	Facing    int     `json:"facing"`
	Health    int     `json:"health"`
	MaxHealth int     `json:"maxHealth"`
	Anim      string  `json:"anim"`
	Alive     bool    `json:"alive"`
	Combo     int     `json:"combo"`
	// LastProcessedInput carries the reconciliation ack: the highest
	// input sequence the server applied to this entity.
	LastProcessedInput uint32 `json:"lastProcessedInput"`
}

// EnemyView is one enemy as seen in a snapshot (always quantized).
type EnemyView struct {
	ID        string  `json:"id"`
	Archetype string  `json:"archetype"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	VX        float64 `json:"vx"`
	VY        float64 `json:"vy"`
	Facing    int     `json:"facing"`
	Health    int     `json:"health"`
	MaxHealth int     `json:"maxHealth"`
	Anim      string  `json:"anim"`
	AIState   string  `json:"aiState"`
}

// ProjectileView is one projectile as seen in a snapshot.
type ProjectileView struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// EventView is one game event as delivered to a recipient.
type EventView struct {
	Type       string  `json:"type"`
	Tick       uint64  `json:"tick"`
	AttackerID string  `json:"attackerId,omitempty"`
	TargetID   string  `json:"targetId,omitempty"`
	Damage     int     `json:"damage,omitempty"`
	KX         float64 `json:"kx,omitempty"`
	KY         float64 `json:"ky,omitempty"`
	Wave       int     `json:"wave,omitempty"`
}

// Snapshot is a derived, per-recipient view of game state. It is never
// stored as authoritative state anywhere.
type Snapshot struct {
	Tick        uint64           `json:"tick"`
	Players     []PlayerView     `json:"players"`
	Enemies     []EnemyView      `json:"enemies"`
	Projectiles []ProjectileView `json:"projectiles"`
	Events      []EventView      `json:"events"`
	Wave        int              `json:"wave"`
}

// Quantize rounds to one decimal place, the transmission precision for
// entities the recipient does not own.
func Quantize(v float64) float64 {
	return math.Round(v*10) / 10
}

// PlayerViewOf builds a player view. full selects full numeric precision
// (the recipient's own entity) versus quantized.
func PlayerViewOf(e *game.Entity, full bool) PlayerView {
	v := PlayerView{
		ID:                 e.ID,
		Name:               e.Player.Name,
		Index:              e.Player.Index,
		X:                  e.Pos.X,
		Y:                  e.Pos.Y,
		VX:                 e.Vel.X,
		VY:                 e.Vel.Y,
		Facing:             e.Facing,
		Health:             e.Health,
		MaxHealth:          e.MaxHealth,
		Anim:               e.Anim,
		Alive:              e.Alive,
		Combo:              e.Player.Combo,
		LastProcessedInput: e.Player.LastInputSeq,
	}
	if !full {
		v.X, v.Y = Quantize(v.X), Quantize(v.Y)
		v.VX, v.VY = Quantize(v.VX), Quantize(v.VY)
	}
	return v
}

// EnemyViewOf builds a quantized enemy view.
func EnemyViewOf(e *game.Entity) EnemyView {
	return EnemyView{
		ID:        e.ID,
		Archetype: string(e.Enemy.Archetype),
		X:         Quantize(e.Pos.X),
		Y:         Quantize(e.Pos.Y),
		VX:        Quantize(e.Vel.X),
		VY:        Quantize(e.Vel.Y),
		Facing:    e.Facing,
		Health:    e.Health,
		MaxHealth: e.MaxHealth,
		Anim:      e.Anim,
		AIState:   e.Enemy.State.String(),
	}
}

// ProjectileViewOf builds a quantized projectile view.
func ProjectileViewOf(e *game.Entity) ProjectileView {
	return ProjectileView{
		ID: e.ID,
		X:  Quantize(e.Pos.X),
		Y:  Quantize(e.Pos.Y),
		VX: Quantize(e.Vel.X),
		VY: Quantize(e.Vel.Y),
	}
}

// EventViewOf converts a game event for the wire.
func EventViewOf(ev game.Event) EventView {
	return EventView{
		Type:       string(ev.Type),
		Tick:       ev.Tick,
		AttackerID: ev.AttackerID,
		TargetID:   ev.TargetID,
		Damage:     ev.Damage,
		KX:         ev.Knockback.X,
		KY:         ev.Knockback.Y,
		Wave:       ev.Wave,
	}
}
