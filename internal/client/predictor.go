// Package client is the input-producing side of the simulation: local
// prediction of the owned actor, reconciliation against authoritative
// snapshots, and interpolation of everything else.
package client

import (
	"math"

	"github.com/AAwhittier/Parallax-Scrolling/internal/game"
)

const (
	// DefaultErrorThreshold separates blend corrections from hard
	// snap-and-replay corrections, in world units.
	DefaultErrorThreshold = 0.5
	// DefaultBlendRate is the exponential approach rate toward the
	// authoritative position for sub-threshold errors, per second.
	DefaultBlendRate = 12.0
	// DefaultMaxPending caps the unacknowledged input list so stalled
	// acknowledgments cannot grow it without bound.
	DefaultMaxPending = 120
)

// Predictor forward-simulates the locally owned player with the same
// integration rule the server uses, so the visible result matches what
// the server will later compute.
type Predictor struct {
	Pos      game.Vec2
	Vel      game.Vec2
	Facing   int
	OnGround bool

	pending []game.InputCommand // unacknowledged, in sequence order

	tuning    game.MoveTuning
	threshold float64
	blendRate float64
	maxPend   int
}

func NewPredictor() *Predictor {
	return &Predictor{
		Facing:    1,
		OnGround:  true,
		tuning:    game.DefaultTuning(),
		threshold: DefaultErrorThreshold,
		blendRate: DefaultBlendRate,
		maxPend:   DefaultMaxPending,
	}
}

// Apply integrates one locally generated command immediately and holds it
// pending until the server acknowledges its sequence.
func (p *Predictor) Apply(cmd game.InputCommand) {
	res := game.IntegrateMovement(p.Pos, p.Vel, p.OnGround, cmd, p.tuning)
	p.Pos, p.Vel, p.OnGround = res.Pos, res.Vel, res.OnGround
	if res.Facing != 0 {
		p.Facing = res.Facing
	}

	if len(p.pending) >= p.maxPend {
		p.pending = p.pending[1:]
	}
	p.pending = append(p.pending, cmd)
}

// Reconcile corrects the predicted state against an authoritative update.
// lastProcessed is the highest input sequence the server applied; dt is
// the elapsed time since the previous authoritative update, used for the
// exponential blend. Below the error threshold the shadow state eases
// toward the authoritative value; above it, the state snaps and every
// still-pending input is replayed in order.
func (p *Predictor) Reconcile(authPos, authVel game.Vec2, lastProcessed uint32, dt float64) {
	// Acknowledge: discard every pending input the server has consumed.
	keep := p.pending[:0]
	for _, cmd := range p.pending {
		if cmd.Seq > lastProcessed {
			keep = append(keep, cmd)
		}
	}
	p.pending = keep

	errDist := game.Dist(p.Pos, authPos)
	if errDist <= p.threshold {
		// Exponential approach, no popping.
		alpha := 1 - math.Exp(-p.blendRate*dt)
		p.Pos.X += (authPos.X - p.Pos.X) * alpha
		p.Pos.Y += (authPos.Y - p.Pos.Y) * alpha
		return
	}

	// Hard correction: rebase on the authoritative state and replay the
	// pending inputs through the same integration rule.
	p.Pos, p.Vel = authPos, authVel
	p.OnGround = p.Pos.Y <= p.tuning.GroundY
	for _, cmd := range p.pending {
		res := game.IntegrateMovement(p.Pos, p.Vel, p.OnGround, cmd, p.tuning)
		p.Pos, p.Vel, p.OnGround = res.Pos, res.Vel, res.OnGround
		if res.Facing != 0 {
			p.Facing = res.Facing
		}
	}
}

// PendingLen reports the number of unacknowledged inputs.
func (p *Predictor) PendingLen() int { return len(p.pending) }
