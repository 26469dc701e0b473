package system

import (
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	coreevent "github.com/AAwhittier/Parallax-Scrolling/internal/core/event"
	"github.com/AAwhittier/Parallax-Scrolling/internal/game"
	gonet "github.com/AAwhittier/Parallax-Scrolling/internal/net"
	"github.com/AAwhittier/Parallax-Scrolling/internal/protocol"
)

func newInputFixture(t *testing.T) (*game.State, *coreevent.Bus, *InputSystem) {
	t.Helper()
	w := game.NewState(nil, 0)
	bus := coreevent.NewBus()
	sys := NewInputSystem(nil, gonet.NewSessionStore(), w, bus, "server-1", 60, 32, zap.NewNop())
	return w, bus, sys
}

// newTestSession builds a session over an in-memory pipe without starting
// its I/O goroutines.
func newTestSession(t *testing.T, id uint64) *gonet.Session {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close(); server.Close() })
	return gonet.NewSession(server, id, 16, 16, time.Second, zap.NewNop())
}

func envelope(t *testing.T, sender string, mt protocol.MessageType, payload any) *protocol.Envelope {
	t.Helper()
	data, err := protocol.Encode(sender, mt, payload)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	env, err := protocol.DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	return env
}

func TestJoinBindsPlayerAndAcks(t *testing.T) {
	w, bus, sys := newInputFixture(t)
	sess := newTestSession(t, 1)

	var joined []coreevent.PlayerJoined
	coreevent.Subscribe(bus, func(ev coreevent.PlayerJoined) { joined = append(joined, ev) })

	sys.handleJoin(sess, envelope(t, "client-1", protocol.MsgJoinGame, protocol.JoinGame{Name: "ann"}))

	if sess.PlayerID == "" {
		t.Fatalf("session not bound to a player")
	}
	p, ok := w.Players[sess.PlayerID]
	if !ok {
		t.Fatalf("player %q not in state", sess.PlayerID)
	}
	if p.Player.Name != "ann" {
		t.Fatalf("name = %q", p.Player.Name)
	}

	// The ack is buffered until the output phase.
	sess.FlushOutput()
	select {
	case data := <-sess.OutQueue:
		env, err := protocol.DecodeEnvelope(data)
		if err != nil {
			t.Fatalf("ack parse: %v", err)
		}
		if protocol.ParseMessageType(env.MessageType) != protocol.MsgGameJoined {
			t.Fatalf("ack type = %q", env.MessageType)
		}
		ack, err := protocol.DecodePayload[protocol.GameJoined](env)
		if err != nil {
			t.Fatalf("ack payload: %v", err)
		}
		if ack.PlayerID != sess.PlayerID || ack.TickRate != 60 {
			t.Fatalf("ack = %+v", ack)
		}
	default:
		t.Fatalf("no ack buffered")
	}

	bus.SwapBuffers()
	bus.DispatchAll()
	if len(joined) != 1 || joined[0].PlayerID != sess.PlayerID {
		t.Fatalf("PlayerJoined deliveries = %+v", joined)
	}
}

func TestSecondJoinOnSameSessionIgnored(t *testing.T) {
	w, _, sys := newInputFixture(t)
	sess := newTestSession(t, 1)

	sys.handleJoin(sess, envelope(t, "c", protocol.MsgJoinGame, protocol.JoinGame{Name: "one"}))
	first := sess.PlayerID
	sys.handleJoin(sess, envelope(t, "c", protocol.MsgJoinGame, protocol.JoinGame{Name: "two"}))

	if sess.PlayerID != first {
		t.Fatalf("second join rebound the session")
	}
	if len(w.Players) != 1 {
		t.Fatalf("players = %d, want 1", len(w.Players))
	}
}

func TestJoinRejectedWhenSlotsFull(t *testing.T) {
	_, _, sys := newInputFixture(t)

	for i := uint64(1); i <= 8; i++ {
		s := newTestSession(t, i)
		sys.handleJoin(s, envelope(t, "c", protocol.MsgJoinGame, protocol.JoinGame{}))
		if s.PlayerID == "" {
			t.Fatalf("join %d rejected with free slots", i)
		}
	}

	ninth := newTestSession(t, 9)
	sys.handleJoin(ninth, envelope(t, "c", protocol.MsgJoinGame, protocol.JoinGame{}))
	if ninth.PlayerID != "" {
		t.Fatalf("ninth join accepted")
	}
	if !ninth.IsClosed() {
		t.Fatalf("rejected session left open")
	}
}

func TestInputBeforeJoinDropped(t *testing.T) {
	w, _, sys := newInputFixture(t)
	sess := newTestSession(t, 1)

	sys.handleInput(sess, envelope(t, "c", protocol.MsgInput, protocol.InputMessage{
		Input: game.InputCommand{Seq: 1, DT: 1.0 / 60, MoveX: 1},
	}))
	if len(w.Players) != 0 {
		t.Fatalf("input before join created state")
	}
}

func TestStaleInputSequenceDropped(t *testing.T) {
	w, _, sys := newInputFixture(t)
	sess := newTestSession(t, 1)
	sys.handleJoin(sess, envelope(t, "c", protocol.MsgJoinGame, protocol.JoinGame{}))

	p := w.Players[sess.PlayerID]
	p.Player.LastInputSeq = 50

	sys.handleInput(sess, envelope(t, "c", protocol.MsgInput, protocol.InputMessage{
		Input: game.InputCommand{Seq: 49, DT: 1.0 / 60},
	}))
	if len(p.Player.InputQueue) != 0 {
		t.Fatalf("stale sequence queued")
	}

	sys.handleInput(sess, envelope(t, "c", protocol.MsgInput, protocol.InputMessage{
		Input: game.InputCommand{Seq: 51, DT: 1.0 / 60},
	}))
	if len(p.Player.InputQueue) != 1 {
		t.Fatalf("fresh sequence not queued")
	}
}

func TestDuplicateInputSequenceDropped(t *testing.T) {
	w, _, sys := newInputFixture(t)
	sess := newTestSession(t, 1)
	sys.handleJoin(sess, envelope(t, "c", protocol.MsgJoinGame, protocol.JoinGame{}))
	p := w.Players[sess.PlayerID]

	// A replay of the last applied sequence would integrate the same
	// command twice.
	p.Player.LastInputSeq = 10
	sys.handleInput(sess, envelope(t, "c", protocol.MsgInput, protocol.InputMessage{
		Input: game.InputCommand{Seq: 10, DT: 1.0 / 60, MoveX: 1},
	}))
	if len(p.Player.InputQueue) != 0 {
		t.Fatalf("duplicate of an applied sequence queued")
	}

	// The same sequence arriving twice within one step: only the first
	// copy may queue.
	for i := 0; i < 2; i++ {
		sys.handleInput(sess, envelope(t, "c", protocol.MsgInput, protocol.InputMessage{
			Input: game.InputCommand{Seq: 11, DT: 1.0 / 60, MoveX: 1},
		}))
	}
	if len(p.Player.InputQueue) != 1 {
		t.Fatalf("queued %d copies of sequence 11, want 1", len(p.Player.InputQueue))
	}
}

func TestInputQueueCapEvictsOldest(t *testing.T) {
	w, _, sys := newInputFixture(t)
	sess := newTestSession(t, 1)
	sys.handleJoin(sess, envelope(t, "c", protocol.MsgJoinGame, protocol.JoinGame{}))
	p := w.Players[sess.PlayerID]

	for seq := uint32(1); seq <= pendingInputCap+10; seq++ {
		sys.handleInput(sess, envelope(t, "c", protocol.MsgInput, protocol.InputMessage{
			Input: game.InputCommand{Seq: seq, DT: 1.0 / 60},
		}))
	}

	q := p.Player.InputQueue
	if len(q) != pendingInputCap {
		t.Fatalf("queue = %d, want capped at %d", len(q), pendingInputCap)
	}
	if q[0].Seq != 11 {
		t.Fatalf("oldest surviving seq = %d, want 11 after eviction", q[0].Seq)
	}
}

func TestRetirePublishesDepartureWithStats(t *testing.T) {
	w, bus, sys := newInputFixture(t)
	sess := newTestSession(t, 1)
	sys.handleJoin(sess, envelope(t, "c", protocol.MsgJoinGame, protocol.JoinGame{Name: "bye"}))
	w.Stats[sess.PlayerID].Kills = 4

	var left []coreevent.PlayerLeft
	coreevent.Subscribe(bus, func(ev coreevent.PlayerLeft) { left = append(left, ev) })

	sys.retire(sess)
	bus.SwapBuffers()
	bus.DispatchAll()

	if len(left) != 1 {
		t.Fatalf("PlayerLeft deliveries = %d, want 1", len(left))
	}
	if left[0].Stats.Kills != 4 {
		t.Fatalf("departure stats = %+v", left[0].Stats)
	}
	if len(w.Players) != 0 {
		t.Fatalf("player survived retirement")
	}
}
