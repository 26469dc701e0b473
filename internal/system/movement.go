package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/AAwhittier/Parallax-Scrolling/internal/core/system"
	"github.com/AAwhittier/Parallax-Scrolling/internal/game"
)

const (
	attackWindowSecs   = 0.3
	attackCooldownSecs = 0.5
	comboWindowSecs    = 2.0
)

// MovementSystem drains each player's queued input commands into that
// player's entity state, running the shared integration rule once per
// command. Phase 1 (Movement).
type MovementSystem struct {
	world *game.State
	log   *zap.Logger
}

func NewMovementSystem(world *game.State, log *zap.Logger) *MovementSystem {
	return &MovementSystem{world: world, log: log}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseMovement }

func (s *MovementSystem) Update(dt time.Duration) {
	step := dt.Seconds()
	for _, player := range s.world.Players {
		safeStep(s.log, player.ID, func() {
			s.updatePlayer(player, step)
		})
	}
}

func (s *MovementSystem) updatePlayer(e *game.Entity, step float64) {
	ps := e.Player

	if ps.AttackCooldown > 0 {
		ps.AttackCooldown -= step
	}
	if ps.AttackWindow > 0 {
		ps.AttackWindow -= step
	}
	if ps.ComboTimer > 0 {
		ps.ComboTimer -= step
		if ps.ComboTimer <= 0 {
			ps.ComboTimer = 0
			ps.Combo = 0
		}
	}

	if !e.Alive {
		ps.InputQueue = ps.InputQueue[:0]
		return
	}

	queue := ps.InputQueue
	ps.InputQueue = ps.InputQueue[:0]
	if len(queue) == 0 {
		s.applyCommand(e, game.NeutralCommand(step))
		return
	}
	for _, cmd := range queue {
		s.applyCommand(e, cmd)
	}
}

// applyCommand consumes one input command: movement through the shared
// integration rule, then attack initiation and animation.
func (s *MovementSystem) applyCommand(e *game.Entity, cmd game.InputCommand) {
	ps := e.Player

	res := game.IntegrateMovement(e.Pos, e.Vel, ps.OnGround, cmd, s.world.Tuning)
	e.Pos, e.Vel, ps.OnGround = res.Pos, res.Vel, res.OnGround
	if res.Facing != 0 {
		e.Facing = res.Facing
	}
	if cmd.Seq > ps.LastInputSeq {
		ps.LastInputSeq = cmd.Seq
	}

	if cmd.Attack && ps.AttackCooldown <= 0 {
		ps.AttackWindow = attackWindowSecs
		ps.AttackCooldown = attackCooldownSecs
		if ps.ComboTimer > 0 {
			ps.Combo++
		} else {
			ps.Combo = 1
		}
		ps.ComboTimer = comboWindowSecs
	}

	switch {
	case ps.AttackWindow > 0:
		e.Anim = "attack"
	case !ps.OnGround:
		e.Anim = "jump"
	case e.Vel.X > 0.5 || e.Vel.X < -0.5:
		e.Anim = "run"
	default:
		e.Anim = "idle"
	}
}
