package system

import "time"

// Phase defines execution ordering within a single simulation step.
type Phase int

const (
	PhaseInput    Phase = iota // 0: admit sessions, drain message queues
	PhaseMovement              // 1: apply queued player inputs
	PhaseUpdate                // 2: AI transitions, enemy/projectile motion
	PhaseResolve               // 3: combat sweep, deaths, wave bookkeeping
	PhaseSnapshot              // 4: build per-recipient snapshots
	PhaseOutput                // 5: flush session output buffers
	PhaseCleanup               // 6: remove dead sessions and expired entities
)

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
