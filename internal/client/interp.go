package client

import (
	"time"

	"github.com/AAwhittier/Parallax-Scrolling/internal/game"
)

// DefaultExtrapolationWindow bounds dead-reckoning when snapshots stop
// arriving: beyond it the entity holds position rather than drifting.
const DefaultExtrapolationWindow = 250 * time.Millisecond

// Interpolator smooths one remote entity's visual position between
// snapshot arrivals. Each arrival sets a from→to pair with a blend
// duration equal to the actual gap since the previous snapshot, so the
// blend self-adjusts to network jitter.
type Interpolator struct {
	from game.Vec2
	to   game.Vec2
	vel  game.Vec2 // last authoritative velocity, for extrapolation

	dur     float64 // blend duration, seconds
	t       float64 // time since last snapshot, seconds
	lastAt  time.Time
	started bool

	window float64 // extrapolation cap, seconds
}

func NewInterpolator() *Interpolator {
	return &Interpolator{window: DefaultExtrapolationWindow.Seconds()}
}

// Push records a new authoritative position/velocity pair. now is the
// arrival time.
func (it *Interpolator) Push(pos, vel game.Vec2, now time.Time) {
	if !it.started {
		it.from, it.to = pos, pos
		it.vel = vel
		it.dur, it.t = 0, 0
		it.lastAt = now
		it.started = true
		return
	}
	it.from = it.Position()
	it.to = pos
	it.vel = vel
	it.dur = now.Sub(it.lastAt).Seconds()
	it.t = 0
	it.lastAt = now
}

// Advance moves visual time forward by dt seconds.
func (it *Interpolator) Advance(dt float64) {
	it.t += dt
}

// Position returns the current visual position: linear interpolation
// inside the blend window, velocity extrapolation capped to the
// extrapolation window after it, then a hold.
func (it *Interpolator) Position() game.Vec2 {
	if !it.started {
		return game.Vec2{}
	}
	if it.dur > 0 && it.t < it.dur {
		f := it.t / it.dur
		return game.Vec2{
			X: it.from.X + (it.to.X-it.from.X)*f,
			Y: it.from.Y + (it.to.Y-it.from.Y)*f,
		}
	}
	over := it.t - it.dur
	if over < 0 {
		over = 0
	}
	if over > it.window {
		over = it.window
	}
	return it.to.Add(it.vel.Scale(over))
}
