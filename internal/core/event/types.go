package event

import "github.com/AAwhittier/Parallax-Scrolling/internal/game"

// Loop-internal notifications. These are distinct from the wire-visible
// game.Event log: the bus decouples systems inside the process.

type PlayerJoined struct {
	PlayerID  string
	SessionID uint64
	Name      string
}

type PlayerLeft struct {
	PlayerID  string
	SessionID uint64
	Stats     game.PlayerStats
	Wave      int // wave in progress when the player left
}

type EnemyKilled struct {
	EnemyID   string
	Archetype game.ArchetypeID
	KillerID  string
	Wave      int
}

type PlayerKilled struct {
	PlayerID string
	KillerID string
}

type WaveCompleted struct {
	Wave int // the wave that finished; Wave+1 is now current
}
