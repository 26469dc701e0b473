package game

// InputCommand is one step's worth of player intent. Created on the
// input-producing side every simulation step, applied exactly once by the
// server (and once, predictively, by the local client).
type InputCommand struct {
	Seq      uint32  `json:"seq"`
	DT       float64 `json:"dt"` // client-reported step duration, seconds
	MoveX    float64 `json:"moveX"`
	MoveY    float64 `json:"moveY"`
	Jump     bool    `json:"jump"`
	Attack   bool    `json:"attack"`
	Special  bool    `json:"special"`
	Interact bool    `json:"interact"`
}

// MoveTuning is the shared movement integration rule. Server and client
// prediction must use identical values or predicted positions drift.
type MoveTuning struct {
	MoveSpeed   float64 // horizontal units/s at full stick
	Gravity     float64 // units/s² downward
	JumpImpulse float64 // vertical velocity applied on jump from ground
	Friction    float64 // horizontal velocity decay per second with no input
	GroundY     float64 // ground plane height
	MaxDT       float64 // clamp on client-reported step duration
}

func DefaultTuning() MoveTuning {
	return MoveTuning{
		MoveSpeed:   8,
		Gravity:     30,
		JumpImpulse: 12,
		Friction:    10,
		GroundY:     0,
		MaxDT:       1.0 / 20,
	}
}

// MoveResult is the output of one integration step.
type MoveResult struct {
	Pos      Vec2
	Vel      Vec2
	Facing   int // 0 = unchanged
	OnGround bool
}

// IntegrateMovement advances one entity's movement state by a single input
// command. This is the one integration rule in the system: the server runs
// it per queued command, the client runs it predictively, and
// reconciliation replays pending commands through it.
func IntegrateMovement(pos, vel Vec2, onGround bool, in InputCommand, t MoveTuning) MoveResult {
	dt := in.DT
	if dt <= 0 || dt > t.MaxDT {
		dt = t.MaxDT
	}

	if in.MoveX != 0 {
		vel.X = clamp(in.MoveX, -1, 1) * t.MoveSpeed
	} else {
		// Exponential friction toward rest.
		decay := 1 - t.Friction*dt
		if decay < 0 {
			decay = 0
		}
		vel.X *= decay
	}

	if in.Jump && onGround {
		vel.Y = t.JumpImpulse
		onGround = false
	}
	vel.Y -= t.Gravity * dt

	pos.X += vel.X * dt
	pos.Y += vel.Y * dt

	if pos.Y <= t.GroundY {
		pos.Y = t.GroundY
		vel.Y = 0
		onGround = true
	}

	facing := 0
	if in.MoveX > 0 {
		facing = 1
	} else if in.MoveX < 0 {
		facing = -1
	}

	return MoveResult{Pos: pos, Vel: vel, Facing: facing, OnGround: onGround}
}

// NeutralCommand is the zero-input command applied when a player's queue is
// empty for a step, so gravity and friction still advance.
func NeutralCommand(dt float64) InputCommand {
	return InputCommand{DT: dt}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
