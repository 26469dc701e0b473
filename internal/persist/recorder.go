package persist

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	coreevent "github.com/AAwhittier/Parallax-Scrolling/internal/core/event"
)

// MatchSaver persists one match result. Satisfied by MatchRepo.
type MatchSaver interface {
	Save(ctx context.Context, res MatchResult) error
}

// Recorder subscribes to PlayerLeft events and writes one match-result row
// per departure. Database writes happen off the game loop goroutine; a
// failed write is logged and dropped, never propagated back into the
// simulation.
type Recorder struct {
	repo MatchSaver
	log  *zap.Logger
	wg   sync.WaitGroup
}

func NewRecorder(repo MatchSaver, log *zap.Logger) *Recorder {
	return &Recorder{repo: repo, log: log}
}

// Attach registers the recorder on the bus.
func (r *Recorder) Attach(bus *coreevent.Bus) {
	coreevent.Subscribe(bus, func(ev coreevent.PlayerLeft) {
		res := MatchResult{
			PlayerName:  ev.Stats.Name,
			WaveReached: ev.Wave,
			Kills:       ev.Stats.Kills,
			DamageDealt: ev.Stats.DamageDealt,
			DamageTaken: ev.Stats.DamageTaken,
			JoinedAt:    ev.Stats.JoinedAt,
			LeftAt:      time.Now(),
		}
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.save(res)
		}()
	})
}

// Drain blocks until every in-flight save finishes, up to timeout.
// Returns false when the timeout cut the wait short. Called at shutdown
// so the departure rows of still-connected players reach the database
// before the process exits.
func (r *Recorder) Drain(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (r *Recorder) save(res MatchResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.repo.Save(ctx, res); err != nil {
		r.log.Warn("match result not recorded",
			zap.String("player", res.PlayerName),
			zap.Error(err),
		)
		return
	}
	r.log.Info("match result recorded",
		zap.String("player", res.PlayerName),
		zap.Int("wave", res.WaveReached),
		zap.Int("kills", res.Kills),
	)
}
