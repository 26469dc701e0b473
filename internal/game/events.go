package game

// EventType tags a GameEvent. Closed enumeration shared between the
// snapshot encode path and client decode path.
type EventType string

const (
	EventPlayerDamaged EventType = "PLAYER_DAMAGED"
	EventEnemyDamaged  EventType = "ENEMY_DAMAGED"
	EventPlayerDied    EventType = "PLAYER_DIED"
	EventEnemyDied     EventType = "ENEMY_DIED"
	EventPlayerJoined  EventType = "PLAYER_JOINED"
	EventPlayerLeft    EventType = "PLAYER_LEFT"
	EventWaveComplete  EventType = "WAVE_COMPLETE"
	EventBossSpawned   EventType = "BOSS_SPAWNED"
	EventUnknown       EventType = "UNKNOWN"
)

// ParseEventType maps a wire string onto the closed enum, with an explicit
// unknown fallback.
func ParseEventType(s string) EventType {
	switch EventType(s) {
	case EventPlayerDamaged, EventEnemyDamaged, EventPlayerDied, EventEnemyDied,
		EventPlayerJoined, EventPlayerLeft, EventWaveComplete, EventBossSpawned:
		return EventType(s)
	default:
		return EventUnknown
	}
}

// Event is one transient occurrence. Events are the only channel through
// which non-persistent happenings reach clients; they are append-only
// within a tick.
type Event struct {
	Type       EventType
	Tick       uint64
	AttackerID string
	TargetID   string
	Damage     int
	Knockback  Vec2
	Wave       int // WaveComplete / BossSpawned
}

// EventLog is a bounded ring of events ordered by tick. When full, the
// oldest event is evicted. Tick-indexed reads let slow recipients catch up
// without gaps as long as the capacity outlives their lag.
type EventLog struct {
	buf  []Event
	head int // index of oldest
	size int
}

func NewEventLog(capacity int) *EventLog {
	if capacity <= 0 {
		capacity = 1024
	}
	return &EventLog{buf: make([]Event, capacity)}
}

func (l *EventLog) Append(ev Event) {
	if l.size < len(l.buf) {
		l.buf[(l.head+l.size)%len(l.buf)] = ev
		l.size++
		return
	}
	// Full: overwrite oldest.
	l.buf[l.head] = ev
	l.head = (l.head + 1) % len(l.buf)
}

// Since returns all events with Tick strictly greater than tick, in append
// order.
func (l *EventLog) Since(tick uint64) []Event {
	var out []Event
	for i := 0; i < l.size; i++ {
		ev := l.buf[(l.head+i)%len(l.buf)]
		if ev.Tick > tick {
			out = append(out, ev)
		}
	}
	return out
}

func (l *EventLog) Len() int { return l.size }
