package system

import (
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/AAwhittier/Parallax-Scrolling/internal/game"
	gonet "github.com/AAwhittier/Parallax-Scrolling/internal/net"
)

func newSnapshotFixture(t *testing.T) (*game.State, *SnapshotSystem) {
	t.Helper()
	w := game.NewState(nil, 0)
	w.Tick = 10
	sys := NewSnapshotSystem(w, gonet.NewSessionStore(), "server-1", 3, 30, 40, zap.NewNop())
	return w, sys
}

func TestSnapshotCapsEnemyCount(t *testing.T) {
	w, sys := newSnapshotFixture(t)
	p, _ := w.AddPlayer(1, "viewer")
	p.Pos = game.Vec2{}

	for i := 0; i < 45; i++ {
		w.SpawnEnemy(game.ArchetypeGrunt, game.Vec2{X: float64(i) * 0.5})
	}

	snap := sys.BuildFor(p.ID, w.Tick)
	if len(snap.Enemies) != 30 {
		t.Fatalf("enemy list = %d, want capped at 30", len(snap.Enemies))
	}
}

func TestSnapshotKeepsNearestWhenOverCap(t *testing.T) {
	w, sys := newSnapshotFixture(t)
	p, _ := w.AddPlayer(1, "viewer")
	p.Pos = game.Vec2{}

	// 31 enemies inside the radius, one per unit of distance. The farthest
	// must be the one truncated.
	for i := 1; i <= 31; i++ {
		w.SpawnEnemy(game.ArchetypeGrunt, game.Vec2{X: float64(i)})
	}
	far := fmt.Sprintf("enemy-%d", 31)

	snap := sys.BuildFor(p.ID, w.Tick)
	if len(snap.Enemies) != 30 {
		t.Fatalf("enemy list = %d, want 30", len(snap.Enemies))
	}
	for _, e := range snap.Enemies {
		if e.ID == far {
			t.Fatalf("farthest enemy survived truncation")
		}
	}
}

func TestSnapshotCullsBeyondInterestRadius(t *testing.T) {
	w, sys := newSnapshotFixture(t)
	p, _ := w.AddPlayer(1, "viewer")
	p.Pos = game.Vec2{}

	near := w.SpawnEnemy(game.ArchetypeGrunt, game.Vec2{X: 39})
	w.SpawnEnemy(game.ArchetypeGrunt, game.Vec2{X: 41})

	snap := sys.BuildFor(p.ID, w.Tick)
	if len(snap.Enemies) != 1 || snap.Enemies[0].ID != near.ID {
		t.Fatalf("radius cull wrong: %+v", snap.Enemies)
	}

	// Projectiles follow the same radius.
	w.SpawnProjectile("enemy-1", game.Vec2{X: 10}, game.Vec2{}, 4, 2)
	w.SpawnProjectile("enemy-1", game.Vec2{X: 50}, game.Vec2{}, 4, 2)
	snap = sys.BuildFor(p.ID, w.Tick)
	if len(snap.Projectiles) != 1 {
		t.Fatalf("projectiles = %d, want 1 inside radius", len(snap.Projectiles))
	}
}

func TestSnapshotOwnEntityFullPrecisionOthersQuantized(t *testing.T) {
	w, sys := newSnapshotFixture(t)
	p, _ := w.AddPlayer(1, "me")
	q, _ := w.AddPlayer(2, "them")
	p.Pos = game.Vec2{X: 1.23456, Y: 0.98765}
	q.Pos = game.Vec2{X: 4.56789, Y: 0}

	snap := sys.BuildFor(p.ID, w.Tick)
	byID := map[string]float64{}
	for _, pv := range snap.Players {
		byID[pv.ID] = pv.X
	}
	if byID[p.ID] != 1.23456 {
		t.Fatalf("own X = %v, want full precision 1.23456", byID[p.ID])
	}
	if byID[q.ID] != 4.6 {
		t.Fatalf("other X = %v, want quantized 4.6", byID[q.ID])
	}
}

func TestSnapshotEventsDeliveredExactlyOnce(t *testing.T) {
	w, sys := newSnapshotFixture(t)
	p, _ := w.AddPlayer(1, "viewer")

	w.Tick = 11
	w.Emit(game.Event{Type: game.EventEnemyDamaged, TargetID: "enemy-1", Damage: 10})
	w.Emit(game.Event{Type: game.EventEnemyDied, TargetID: "enemy-1"})

	first := sys.BuildFor(p.ID, 10)
	if len(first.Events) < 2 {
		t.Fatalf("first snapshot carried %d events, want the 2 new ones", len(first.Events))
	}

	// Advancing sinceTick to the delivered snapshot's tick excludes them.
	second := sys.BuildFor(p.ID, first.Tick)
	if len(second.Events) != 0 {
		t.Fatalf("second snapshot re-delivered %d events", len(second.Events))
	}

	// New events after that tick show up again.
	w.Tick = 12
	w.Emit(game.Event{Type: game.EventWaveComplete, Wave: 1})
	third := sys.BuildFor(p.ID, first.Tick)
	if len(third.Events) != 1 || third.Events[0].Type != string(game.EventWaveComplete) {
		t.Fatalf("third snapshot events = %+v, want only the new one", third.Events)
	}
}

func TestSnapshotMidJoinRecipientGetsCappedUnrankedEnemies(t *testing.T) {
	w, sys := newSnapshotFixture(t)
	w.AddPlayer(1, "someone")
	for i := 0; i < 40; i++ {
		w.SpawnEnemy(game.ArchetypeGrunt, game.Vec2{X: float64(i) * 3})
	}

	snap := sys.BuildFor("", w.Tick)
	if len(snap.Enemies) != 30 {
		t.Fatalf("mid-join enemy list = %d, want capped at 30", len(snap.Enemies))
	}
	if len(snap.Players) != 1 {
		t.Fatalf("mid-join players = %d, want all players", len(snap.Players))
	}
}

func TestSnapshotCursorRemovedWithSession(t *testing.T) {
	w, sys := newSnapshotFixture(t)
	w.AddPlayer(1, "leaver")

	sess := newTestSession(t, 1)
	sess.PlayerID = "player-1"
	sys.sessions.Add(sess)

	// Reach a send interval so the cursor is created.
	for i := 0; i < 3; i++ {
		sys.Update(time.Second / 60)
	}
	if _, ok := sys.lastSentTick[sess.ID]; !ok {
		t.Fatalf("no cursor recorded for an active session")
	}

	// Retirement happens in the input phase: the session leaves the
	// store, never flagging closed to the snapshot pass.
	sys.sessions.Remove(sess.ID)
	for i := 0; i < 3; i++ {
		sys.Update(time.Second / 60)
	}
	if len(sys.lastSentTick) != 0 {
		t.Fatalf("cursors for departed sessions = %d, want 0", len(sys.lastSentTick))
	}
}

func TestSnapshotCursorsDoNotAccumulateAcrossSessions(t *testing.T) {
	_, sys := newSnapshotFixture(t)

	for i := uint64(1); i <= 20; i++ {
		sess := newTestSession(t, i)
		sys.sessions.Add(sess)
		for n := 0; n < 3; n++ {
			sys.Update(time.Second / 60)
		}
		sys.sessions.Remove(sess.ID)
	}
	for n := 0; n < 3; n++ {
		sys.Update(time.Second / 60)
	}

	if len(sys.lastSentTick) != 0 {
		t.Fatalf("cursors after 20 connect/disconnect cycles = %d, want 0", len(sys.lastSentTick))
	}
}

func TestSnapshotSkipsDeadEnemies(t *testing.T) {
	w, sys := newSnapshotFixture(t)
	p, _ := w.AddPlayer(1, "viewer")

	alive := w.SpawnEnemy(game.ArchetypeGrunt, game.Vec2{X: 2})
	dead := w.SpawnEnemy(game.ArchetypeGrunt, game.Vec2{X: 3})
	dead.Alive = false

	snap := sys.BuildFor(p.ID, w.Tick)
	if len(snap.Enemies) != 1 || snap.Enemies[0].ID != alive.ID {
		t.Fatalf("dead enemy leaked into snapshot: %+v", snap.Enemies)
	}
}
