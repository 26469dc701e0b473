// driftbot is a headless client: it joins a server, generates synthetic
// inputs through the real prediction stack, reconciles against incoming
// snapshots, and reports how far prediction drifted. Useful as a smoke
// test and as a load generator.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/AAwhittier/Parallax-Scrolling/internal/client"
	"github.com/AAwhittier/Parallax-Scrolling/internal/game"
	"github.com/AAwhittier/Parallax-Scrolling/internal/protocol"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7777", "server address")
	name := flag.String("name", "driftbot", "display name")
	duration := flag.Duration("duration", 30*time.Second, "how long to run")
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := runBot(*addr, *name, *duration, log); err != nil {
		log.Fatal("bot failed", zap.Error(err))
	}
}

func runBot(addr, name string, duration time.Duration, log *zap.Logger) error {
	c, err := client.Dial(addr, name, 5*time.Second, log)
	if err != nil {
		return err
	}
	defer c.Close()
	log.Info("joined",
		zap.String("player", c.PlayerID),
		zap.Int("index", c.Index),
		zap.Int("tick_rate", c.TickRate),
	)

	tickRate := c.TickRate
	if tickRate <= 0 {
		tickRate = 60
	}
	step := time.Second / time.Duration(tickRate)
	dt := step.Seconds()

	pred := client.NewPredictor()
	interps := make(map[string]*client.Interpolator)

	var (
		seq        uint32
		maxDrift   float64
		lastSnapAt = time.Now()
		deadline   = time.Now().Add(duration)
		report     = time.Now().Add(time.Second)
	)

	ticker := time.NewTicker(step)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-ticker.C:
			seq++
			cmd := syntheticInput(seq, dt)
			pred.Apply(cmd)
			if err := c.SendInput(protocol.InputMessage{PlayerID: c.PlayerID, Input: cmd}); err != nil {
				return fmt.Errorf("send input: %w", err)
			}
			for _, it := range interps {
				it.Advance(dt)
			}

		case snap, ok := <-c.Snapshots():
			if !ok {
				return fmt.Errorf("connection lost")
			}
			now := time.Now()
			gap := now.Sub(lastSnapAt).Seconds()
			lastSnapAt = now

			for _, pv := range snap.Players {
				if pv.ID == c.PlayerID {
					auth := game.Vec2{X: pv.X, Y: pv.Y}
					drift := game.Dist(game.Vec2{X: pred.Pos.X, Y: pred.Pos.Y}, auth)
					if drift > maxDrift {
						maxDrift = drift
					}
					pred.Reconcile(auth, game.Vec2{X: pv.VX, Y: pv.VY}, pv.LastProcessedInput, gap)
					continue
				}
				pushView(interps, pv.ID, pv.X, pv.Y, pv.VX, pv.VY, now)
			}
			for _, ev := range snap.Enemies {
				pushView(interps, ev.ID, ev.X, ev.Y, ev.VX, ev.VY, now)
			}
		}

		if time.Now().After(report) {
			report = time.Now().Add(time.Second)
			log.Info("drift",
				zap.Float64("max", maxDrift),
				zap.Int("pending", pred.PendingLen()),
				zap.Int("tracked", len(interps)),
			)
			maxDrift = 0
		}
	}
	return nil
}

// syntheticInput sweeps back and forth, hops occasionally, and swings
// often enough to exercise combat.
func syntheticInput(seq uint32, dt float64) game.InputCommand {
	t := float64(seq) * dt
	return game.InputCommand{
		Seq:    seq,
		DT:     dt,
		MoveX:  math.Sin(t / 2),
		Jump:   seq%180 == 0,
		Attack: seq%45 == 0,
	}
}

func pushView(interps map[string]*client.Interpolator, id string, x, y, vx, vy float64, now time.Time) {
	it, ok := interps[id]
	if !ok {
		it = client.NewInterpolator()
		interps[id] = it
	}
	it.Push(game.Vec2{X: x, Y: y}, game.Vec2{X: vx, Y: vy}, now)
}
