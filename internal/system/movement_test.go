package system

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/AAwhittier/Parallax-Scrolling/internal/game"
)

const stepDur = time.Second / 60

func newMovementFixture(t *testing.T) (*game.State, *MovementSystem, *game.Entity) {
	t.Helper()
	w := game.NewState(nil, 0)
	p, err := w.AddPlayer(1, "runner")
	if err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	return w, NewMovementSystem(w, zap.NewNop()), p
}

func queueInput(p *game.Entity, cmds ...game.InputCommand) {
	p.Player.InputQueue = append(p.Player.InputQueue, cmds...)
}

func TestMovementDrainsQueueInOrder(t *testing.T) {
	_, sys, p := newMovementFixture(t)
	startX := p.Pos.X

	queueInput(p,
		game.InputCommand{Seq: 1, DT: 1.0 / 60, MoveX: 1},
		game.InputCommand{Seq: 2, DT: 1.0 / 60, MoveX: 1},
		game.InputCommand{Seq: 3, DT: 1.0 / 60, MoveX: 1},
	)
	sys.Update(stepDur)

	if len(p.Player.InputQueue) != 0 {
		t.Fatalf("queue not drained: %d left", len(p.Player.InputQueue))
	}
	if p.Player.LastInputSeq != 3 {
		t.Fatalf("LastInputSeq = %d, want 3", p.Player.LastInputSeq)
	}
	moved := p.Pos.X - startX
	want := 3 * 8.0 / 60 // three commands at full speed
	if moved < want-1e-9 || moved > want+1e-9 {
		t.Fatalf("moved %v, want %v", moved, want)
	}
}

func TestMovementEmptyQueueStillIntegrates(t *testing.T) {
	_, sys, p := newMovementFixture(t)
	p.Pos = game.Vec2{Y: 2}
	p.Player.OnGround = false

	sys.Update(stepDur)
	if p.Pos.Y >= 2 {
		t.Fatalf("gravity did not apply with an empty queue, Y = %v", p.Pos.Y)
	}
}

func TestAttackStartsComboAndWindow(t *testing.T) {
	_, sys, p := newMovementFixture(t)
	queueInput(p, game.InputCommand{Seq: 1, DT: 1.0 / 60, Attack: true})
	sys.Update(stepDur)

	ps := p.Player
	if ps.AttackWindow <= 0 {
		t.Fatalf("attack window not opened")
	}
	if ps.Combo != 1 {
		t.Fatalf("first attack combo = %d, want 1", ps.Combo)
	}
	if p.Anim != "attack" {
		t.Fatalf("anim = %q, want attack", p.Anim)
	}
}

func TestAttackWithinComboWindowIncrements(t *testing.T) {
	_, sys, p := newMovementFixture(t)

	queueInput(p, game.InputCommand{Seq: 1, DT: 1.0 / 60, Attack: true})
	sys.Update(stepDur)

	// Wait out the cooldown (0.5s) but stay inside the combo window (2s).
	for i := 0; i < 35; i++ {
		sys.Update(stepDur)
	}
	queueInput(p, game.InputCommand{Seq: 2, DT: 1.0 / 60, Attack: true})
	sys.Update(stepDur)

	if p.Player.Combo != 2 {
		t.Fatalf("second attack inside window combo = %d, want 2", p.Player.Combo)
	}
}

func TestComboResetsExactlyWhenTimerExpires(t *testing.T) {
	_, sys, p := newMovementFixture(t)

	queueInput(p, game.InputCommand{Seq: 1, DT: 1.0 / 60, Attack: true})
	sys.Update(stepDur)
	if p.Player.Combo != 1 {
		t.Fatalf("setup: combo = %d", p.Player.Combo)
	}

	// Run past the combo window with no further attacks.
	for i := 0; i < 125; i++ {
		sys.Update(stepDur)
	}
	if p.Player.Combo != 0 || p.Player.ComboTimer != 0 {
		t.Fatalf("combo = %d timer = %v, want both zero after expiry",
			p.Player.Combo, p.Player.ComboTimer)
	}

	// The next attack starts over at 1.
	queueInput(p, game.InputCommand{Seq: 2, DT: 1.0 / 60, Attack: true})
	sys.Update(stepDur)
	if p.Player.Combo != 1 {
		t.Fatalf("post-expiry attack combo = %d, want 1", p.Player.Combo)
	}
}

func TestAttackBlockedByCooldown(t *testing.T) {
	_, sys, p := newMovementFixture(t)

	queueInput(p,
		game.InputCommand{Seq: 1, DT: 1.0 / 60, Attack: true},
		game.InputCommand{Seq: 2, DT: 1.0 / 60, Attack: true},
	)
	sys.Update(stepDur)

	if p.Player.Combo != 1 {
		t.Fatalf("back-to-back attack bypassed cooldown, combo = %d", p.Player.Combo)
	}
}

func TestDeadPlayerDiscardsInput(t *testing.T) {
	_, sys, p := newMovementFixture(t)
	p.Alive = false
	start := p.Pos

	queueInput(p, game.InputCommand{Seq: 1, DT: 1.0 / 60, MoveX: 1, Jump: true})
	sys.Update(stepDur)

	if len(p.Player.InputQueue) != 0 {
		t.Fatalf("dead player's queue not cleared")
	}
	if p.Pos != start {
		t.Fatalf("dead player moved: %+v", p.Pos)
	}
}
