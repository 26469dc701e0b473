package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/AAwhittier/Parallax-Scrolling/internal/combat"
	coreevent "github.com/AAwhittier/Parallax-Scrolling/internal/core/event"
	coresys "github.com/AAwhittier/Parallax-Scrolling/internal/core/system"
	"github.com/AAwhittier/Parallax-Scrolling/internal/game"
)

// CombatSystem runs the hit resolution sweep once per simulation step.
// Phase 3 (Resolve).
type CombatSystem struct {
	world *game.State
	bus   *coreevent.Bus
	log   *zap.Logger
}

func NewCombatSystem(world *game.State, bus *coreevent.Bus, log *zap.Logger) *CombatSystem {
	return &CombatSystem{world: world, bus: bus, log: log}
}

func (s *CombatSystem) Phase() coresys.Phase { return coresys.PhaseResolve }

func (s *CombatSystem) Update(_ time.Duration) {
	combat.Resolve(s.world, s.bus, s.log)
}
