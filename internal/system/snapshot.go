package system

import (
	"sort"
	"time"

	"go.uber.org/zap"

	coresys "github.com/AAwhittier/Parallax-Scrolling/internal/core/system"
	"github.com/AAwhittier/Parallax-Scrolling/internal/game"
	gonet "github.com/AAwhittier/Parallax-Scrolling/internal/net"
	"github.com/AAwhittier/Parallax-Scrolling/internal/protocol"
)

// SnapshotSystem builds one view per recipient every send interval.
// Phase 4 (Snapshot). Policy: the recipient's own entity ships at full
// precision, everything else quantized; enemies are ranked by distance,
// radius-culled and truncated; events are delivered exactly once per
// recipient via a per-recipient last-serviced tick.
type SnapshotSystem struct {
	world    *game.State
	sessions *gonet.SessionStore
	serverID string

	stepsPerSnapshot int
	maxEnemies       int
	interestRadius   float64
	steps            int

	// lastSentTick tracks, per session, the tick of the last snapshot
	// produced for it. Only events with a strictly greater tick are
	// included next time.
	lastSentTick map[uint64]uint64

	log *zap.Logger
}

func NewSnapshotSystem(
	world *game.State,
	sessions *gonet.SessionStore,
	serverID string,
	stepsPerSnapshot, maxEnemies int,
	interestRadius float64,
	log *zap.Logger,
) *SnapshotSystem {
	if stepsPerSnapshot < 1 {
		stepsPerSnapshot = 1
	}
	return &SnapshotSystem{
		world:            world,
		sessions:         sessions,
		serverID:         serverID,
		stepsPerSnapshot: stepsPerSnapshot,
		maxEnemies:       maxEnemies,
		interestRadius:   interestRadius,
		lastSentTick:     make(map[uint64]uint64),
		log:              log,
	}
}

func (s *SnapshotSystem) Phase() coresys.Phase { return coresys.PhaseSnapshot }

func (s *SnapshotSystem) Update(_ time.Duration) {
	s.steps++
	if s.steps < s.stepsPerSnapshot {
		return
	}
	s.steps = 0

	for id, sess := range s.sessions.Raw() {
		if sess.IsClosed() {
			continue
		}
		snap := s.BuildFor(sess.PlayerID, s.lastSentTick[id])

		data, err := protocol.Encode(s.serverID, protocol.MsgSnapshot, snap)
		if err != nil {
			s.log.Error("encode snapshot", zap.Uint64("session", id), zap.Error(err))
			continue
		}
		sess.Send(data)
		s.lastSentTick[id] = snap.Tick
	}

	// Sweep cursors for sessions the input system has retired. The store
	// is the source of truth for liveness; anything absent from it will
	// never be serviced again.
	for id := range s.lastSentTick {
		if s.sessions.Get(id) == nil {
			delete(s.lastSentTick, id)
		}
	}
}

// BuildFor assembles the snapshot for one recipient. recipientID may be
// "" for a session still mid-join: that recipient gets all players
// unfiltered and a capped, unranked enemy list.
func (s *SnapshotSystem) BuildFor(recipientID string, sinceTick uint64) protocol.Snapshot {
	w := s.world
	snap := protocol.Snapshot{
		Tick: w.Tick,
		Wave: w.Wave,
	}

	for _, ev := range w.Events.Since(sinceTick) {
		snap.Events = append(snap.Events, protocol.EventViewOf(ev))
	}

	recipient := w.Players[recipientID]

	for _, p := range w.Players {
		snap.Players = append(snap.Players, protocol.PlayerViewOf(p, p.ID == recipientID))
	}
	sort.Slice(snap.Players, func(i, j int) bool {
		return snap.Players[i].ID < snap.Players[j].ID
	})

	if recipient == nil {
		// Mid-join: capped, unranked.
		for _, e := range w.Enemies {
			if !e.Alive {
				continue
			}
			if len(snap.Enemies) >= s.maxEnemies {
				break
			}
			snap.Enemies = append(snap.Enemies, protocol.EnemyViewOf(e))
		}
	} else {
		type ranked struct {
			e    *game.Entity
			dist float64
		}
		var near []ranked
		for _, e := range w.Enemies {
			if !e.Alive {
				continue
			}
			d := game.Dist(e.Pos, recipient.Pos)
			if d > s.interestRadius {
				continue
			}
			near = append(near, ranked{e, d})
		}
		sort.Slice(near, func(i, j int) bool {
			if near[i].dist != near[j].dist {
				return near[i].dist < near[j].dist
			}
			return near[i].e.ID < near[j].e.ID
		})
		if len(near) > s.maxEnemies {
			near = near[:s.maxEnemies]
		}
		for _, r := range near {
			snap.Enemies = append(snap.Enemies, protocol.EnemyViewOf(r.e))
		}
	}

	for _, p := range w.Projectiles {
		if !p.Alive {
			continue
		}
		if recipient != nil && game.Dist(p.Pos, recipient.Pos) > s.interestRadius {
			continue
		}
		snap.Projectiles = append(snap.Projectiles, protocol.ProjectileViewOf(p))
	}

	return snap
}
