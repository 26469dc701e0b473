package game

import (
	"fmt"
	"time"
)

const maxPlayers = 8

// PlayerStats aggregates per-player combat telemetry for the current match.
type PlayerStats struct {
	Name        string
	Kills       int
	DamageDealt int
	DamageTaken int
	JoinedAt    time.Time
}

// State is the authoritative aggregate: all entities, wave progression and
// the rolling event log. It is owned exclusively by the game loop
// goroutine; I/O code never touches it directly. Entities never reference
// State back.
type State struct {
	Tick uint64

	Players     map[string]*Entity
	Enemies     map[string]*Entity
	Projectiles map[string]*Entity

	Events *EventLog

	Wave        int
	WaveSpawned int // enemies spawned this wave
	WaveKills   int // enemies killed this wave

	Stats map[string]*PlayerStats // player id → aggregates

	Archetypes ArchetypeTable
	Tuning     MoveTuning

	usedIndex    [maxPlayers]bool
	nextEnemySeq uint64
	nextProjSeq  uint64
	now          func() time.Time
}

func NewState(archetypes ArchetypeTable, eventCapacity int) *State {
	if archetypes == nil {
		archetypes = DefaultArchetypes()
	}
	return &State{
		Players:     make(map[string]*Entity),
		Enemies:     make(map[string]*Entity),
		Projectiles: make(map[string]*Entity),
		Events:      NewEventLog(eventCapacity),
		Wave:        0,
		Stats:       make(map[string]*PlayerStats),
		Archetypes:  archetypes,
		Tuning:      DefaultTuning(),
		now:         time.Now,
	}
}

// Emit appends an event stamped with the current tick.
func (s *State) Emit(ev Event) {
	ev.Tick = s.Tick
	s.Events.Append(ev)
}

// AddPlayer creates a player entity for a session. Fails when all player
// slots are taken.
func (s *State) AddPlayer(sessionID uint64, name string) (*Entity, error) {
	idx := -1
	for i := range s.usedIndex {
		if !s.usedIndex[i] {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("player slots full (%d)", maxPlayers)
	}
	s.usedIndex[idx] = true

	id := fmt.Sprintf("player-%d", sessionID)
	e := &Entity{
		ID:        id,
		Kind:      KindPlayer,
		Pos:       Vec2{X: float64(idx) * 2, Y: 0},
		Facing:    1,
		Alive:     true,
		Health:    100,
		MaxHealth: 100,
		Anim:      "idle",
		SpawnedAt: s.now(),
		Player: &PlayerState{
			SessionID: sessionID,
			Name:      name,
			Index:     idx,
			OnGround:  true,
		},
	}
	s.Players[id] = e
	s.Stats[id] = &PlayerStats{Name: name, JoinedAt: s.now()}
	s.Emit(Event{Type: EventPlayerJoined, TargetID: id})
	return e, nil
}

// RemovePlayer deletes the player bound to sessionID and returns it with
// its accumulated stats, or nil if the session had no player.
func (s *State) RemovePlayer(sessionID uint64) (*Entity, *PlayerStats) {
	e := s.PlayerBySession(sessionID)
	if e == nil {
		return nil, nil
	}
	s.usedIndex[e.Player.Index] = false
	stats := s.Stats[e.ID]
	delete(s.Players, e.ID)
	delete(s.Stats, e.ID)
	// Enemies holding this player as target re-resolve next tick and
	// find nothing; no cleanup needed here.
	s.Emit(Event{Type: EventPlayerLeft, TargetID: e.ID})
	return e, stats
}

func (s *State) PlayerBySession(sessionID uint64) *Entity {
	for _, e := range s.Players {
		if e.Player.SessionID == sessionID {
			return e
		}
	}
	return nil
}

// NearestLivingPlayer returns the closest living player within maxDist of
// pos, or nil.
func (s *State) NearestLivingPlayer(pos Vec2, maxDist float64) *Entity {
	var best *Entity
	bestDist := maxDist
	for _, p := range s.Players {
		if !p.Alive {
			continue
		}
		d := Dist(pos, p.Pos)
		if d <= bestDist {
			bestDist = d
			best = p
		}
	}
	return best
}

// SpawnEnemy creates an enemy of the given archetype at pos and counts it
// toward the current wave.
func (s *State) SpawnEnemy(archetype ArchetypeID, pos Vec2) *Entity {
	stats := s.Archetypes.Get(archetype)
	s.nextEnemySeq++
	id := fmt.Sprintf("enemy-%d", s.nextEnemySeq)
	e := &Entity{
		ID:        id,
		Kind:      KindEnemy,
		Pos:       pos,
		Facing:    -1,
		Alive:     true,
		Health:    stats.Health,
		MaxHealth: stats.Health,
		Anim:      "idle",
		SpawnedAt: s.now(),
		Enemy: &EnemyState{
			Archetype: archetype,
			Stats:     stats,
			State:     AIIdle,
			WaypointX: pos.X,
		},
	}
	s.Enemies[id] = e
	s.WaveSpawned++
	if archetype == ArchetypeBoss {
		s.Emit(Event{Type: EventBossSpawned, TargetID: id, Wave: s.Wave})
	}
	return e
}

// SpawnProjectile creates a projectile owned by ownerID.
func (s *State) SpawnProjectile(ownerID string, pos, vel Vec2, damage int, ttl float64) *Entity {
	s.nextProjSeq++
	id := fmt.Sprintf("proj-%d", s.nextProjSeq)
	e := &Entity{
		ID:        id,
		Kind:      KindProjectile,
		Pos:       pos,
		Vel:       vel,
		Facing:    1,
		Alive:     true,
		Health:    1,
		MaxHealth: 1,
		Anim:      "fly",
		SpawnedAt: s.now(),
		Projectile: &ProjectileState{
			OwnerID: ownerID,
			Damage:  damage,
			TTL:     ttl,
		},
	}
	s.Projectiles[id] = e
	return e
}

// RecordEnemyKill books one kill for the current wave and completes the
// wave when the kill counter reaches the spawn counter. Returns the wave
// number that completed, or 0. Completion fires exactly once per
// threshold crossing: counters reset immediately.
func (s *State) RecordEnemyKill() int {
	s.WaveKills++
	if s.WaveSpawned > 0 && s.WaveKills >= s.WaveSpawned {
		completed := s.Wave
		s.Emit(Event{Type: EventWaveComplete, Wave: completed})
		s.Wave++
		s.WaveSpawned = 0
		s.WaveKills = 0
		return completed
	}
	return 0
}

// StartWave advances the wave counter without requiring a completion
// (used for the first wave of a match).
func (s *State) StartWave(n int) {
	s.Wave = n
	s.WaveSpawned = 0
	s.WaveKills = 0
}
