package system

import (
	"time"

	coresys "github.com/AAwhittier/Parallax-Scrolling/internal/core/system"
	gonet "github.com/AAwhittier/Parallax-Scrolling/internal/net"
)

// OutputSystem hands every session's buffered frames to its writer
// goroutine. Phase 5 (Output). A slow recipient is disconnected by
// FlushOutput's backpressure, never waited on.
type OutputSystem struct {
	sessions *gonet.SessionStore
}

func NewOutputSystem(sessions *gonet.SessionStore) *OutputSystem {
	return &OutputSystem{sessions: sessions}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	s.sessions.ForEach(func(sess *gonet.Session) {
		sess.FlushOutput()
	})
}
