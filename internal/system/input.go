package system

import (
	"time"

	"go.uber.org/zap"

	coreevent "github.com/AAwhittier/Parallax-Scrolling/internal/core/event"
	coresys "github.com/AAwhittier/Parallax-Scrolling/internal/core/system"
	"github.com/AAwhittier/Parallax-Scrolling/internal/game"
	gonet "github.com/AAwhittier/Parallax-Scrolling/internal/net"
	"github.com/AAwhittier/Parallax-Scrolling/internal/protocol"
)

// pendingInputCap bounds a player's unprocessed command queue. A client
// flooding inputs faster than the simulation consumes them loses the
// oldest commands rather than growing without bound.
const pendingInputCap = 120

// InputSystem admits and retires sessions and drains every connected
// session's message queue into game state. Phase 0 (Input). This is the
// only point where network data crosses into the simulation.
type InputSystem struct {
	netServer  *gonet.Server
	registry   *protocol.Registry
	sessions   *gonet.SessionStore
	world      *game.State
	bus        *coreevent.Bus
	serverID   string
	tickRate   int
	maxPerStep int
	log        *zap.Logger
}

func NewInputSystem(
	netServer *gonet.Server,
	sessions *gonet.SessionStore,
	world *game.State,
	bus *coreevent.Bus,
	serverID string,
	tickRate int,
	maxPerStep int,
	log *zap.Logger,
) *InputSystem {
	s := &InputSystem{
		netServer:  netServer,
		sessions:   sessions,
		world:      world,
		bus:        bus,
		serverID:   serverID,
		tickRate:   tickRate,
		maxPerStep: maxPerStep,
		log:        log,
	}
	reg := protocol.NewRegistry(serverID, log)
	reg.Register(protocol.MsgJoinGame, s.handleJoin)
	reg.Register(protocol.MsgInput, s.handleInput)
	s.registry = reg
	return s
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	// Admit new sessions.
	for {
		select {
		case sess := <-s.netServer.NewSessions():
			s.sessions.Add(sess)
		default:
			goto doneNew
		}
	}
doneNew:

	// Drain messages from each session, then retire the closed ones.
	for id, sess := range s.sessions.Raw() {
		limit := s.maxPerStep
		if sess.IsClosed() {
			// Drain remaining messages before removal so a final
			// input burst is not lost.
			limit = cap(sess.InQueue)
		}
		s.drain(sess, limit)

		if sess.IsClosed() {
			s.retire(sess)
			s.sessions.Remove(id)
		}
	}
}

func (s *InputSystem) drain(sess *gonet.Session, limit int) {
	for i := 0; i < limit; i++ {
		select {
		case data := <-sess.InQueue:
			if err := s.registry.Dispatch(sess, data); err != nil {
				s.log.Debug("message dropped",
					zap.Uint64("session", sess.ID),
					zap.Error(err),
				)
			}
		default:
			return
		}
	}
}

// handleJoin binds a player entity to the session and acknowledges.
func (s *InputSystem) handleJoin(sessAny any, env *protocol.Envelope) {
	sess := sessAny.(*gonet.Session)
	if sess.PlayerID != "" {
		return // already joined
	}

	join, err := protocol.DecodePayload[protocol.JoinGame](env)
	if err != nil {
		s.log.Debug("malformed JOIN_GAME payload", zap.Uint64("session", sess.ID), zap.Error(err))
		return
	}
	name := join.Name
	if name == "" {
		name = "anonymous"
	}

	player, err := s.world.AddPlayer(sess.ID, name)
	if err != nil {
		s.log.Warn("join rejected", zap.Uint64("session", sess.ID), zap.Error(err))
		sess.Close()
		return
	}
	sess.PlayerID = player.ID
	sess.Name = name

	ack, err := protocol.Encode(s.serverID, protocol.MsgGameJoined, protocol.GameJoined{
		PlayerID: player.ID,
		Index:    player.Player.Index,
		Wave:     s.world.Wave,
		TickRate: s.tickRate,
	})
	if err != nil {
		s.log.Error("encode GAME_JOINED", zap.Error(err))
		return
	}
	sess.Send(ack)

	coreevent.Emit(s.bus, coreevent.PlayerJoined{
		PlayerID:  player.ID,
		SessionID: sess.ID,
		Name:      name,
	})
	s.log.Info("player joined",
		zap.Uint64("session", sess.ID),
		zap.String("player", player.ID),
		zap.String("name", name),
	)
}

// handleInput queues one input command on the session's player entity.
// Sequence numbers must be strictly increasing per player; stale and
// duplicate commands are dropped.
func (s *InputSystem) handleInput(sessAny any, env *protocol.Envelope) {
	sess := sessAny.(*gonet.Session)
	if sess.PlayerID == "" {
		return // not joined yet
	}
	player, ok := s.world.Players[sess.PlayerID]
	if !ok {
		return
	}

	msg, err := protocol.DecodePayload[protocol.InputMessage](env)
	if err != nil {
		s.log.Debug("malformed INPUT payload", zap.Uint64("session", sess.ID), zap.Error(err))
		return
	}
	// Drop anything at or below the last applied sequence: a replayed
	// duplicate of an already-integrated command would move the player
	// twice. Same rule against the queue tail for duplicates arriving
	// within one step.
	if msg.Input.Seq <= player.Player.LastInputSeq {
		return
	}
	q := player.Player.InputQueue
	if len(q) > 0 && msg.Input.Seq <= q[len(q)-1].Seq {
		return
	}
	if len(q) >= pendingInputCap {
		q = q[1:] // evict oldest
	}
	player.Player.InputQueue = append(q, msg.Input)
}

// retire removes the session's player from game state and publishes the
// departure with its final stats.
func (s *InputSystem) retire(sess *gonet.Session) {
	player, stats := s.world.RemovePlayer(sess.ID)
	if player == nil {
		s.log.Info("session closed before join", zap.Uint64("session", sess.ID))
		return
	}
	ev := coreevent.PlayerLeft{
		PlayerID:  player.ID,
		SessionID: sess.ID,
		Wave:      s.world.Wave,
	}
	if stats != nil {
		ev.Stats = *stats
	}
	coreevent.Emit(s.bus, ev)
	s.log.Info("player left",
		zap.Uint64("session", sess.ID),
		zap.String("player", player.ID),
	)
}
