package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AAwhittier/Parallax-Scrolling/internal/config"
	coreevent "github.com/AAwhittier/Parallax-Scrolling/internal/core/event"
	coresys "github.com/AAwhittier/Parallax-Scrolling/internal/core/system"
	"github.com/AAwhittier/Parallax-Scrolling/internal/data"
	"github.com/AAwhittier/Parallax-Scrolling/internal/game"
	gonet "github.com/AAwhittier/Parallax-Scrolling/internal/net"
	"github.com/AAwhittier/Parallax-Scrolling/internal/persist"
	"github.com/AAwhittier/Parallax-Scrolling/internal/scripting"
	"github.com/AAwhittier/Parallax-Scrolling/internal/system"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("PARALLAX_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		// A missing default config falls back to built-ins; an explicit
		// path must exist.
		if os.Getenv("PARALLAX_CONFIG") != "" || !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = config.Default()
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting",
		zap.String("server", cfg.Server.Name),
		zap.Int("tick_rate", cfg.Simulation.TickRate),
	)

	// 3. Optional match-result recording
	bus := coreevent.NewBus()
	var recorder *persist.Recorder
	if cfg.Database.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			cancel()
			return fmt.Errorf("migrations: %w", err)
		}
		cancel()
		recorder = persist.NewRecorder(persist.NewMatchRepo(db), log)
		recorder.Attach(bus)
		log.Info("match recording enabled")
	}

	// 4. Load tuning data and scripts
	archetypes, err := data.LoadArchetypes(cfg.Simulation.ArchetypePath)
	if err != nil {
		return fmt.Errorf("load archetypes: %w", err)
	}

	luaEngine, err := scripting.NewEngine(cfg.Simulation.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()

	// 5. Game state
	world := game.NewState(archetypes, cfg.Snapshot.EventLogCapacity)

	// 6. Network server
	netServer, err := gonet.NewServer(
		cfg.Network.BindAddress,
		cfg.Network.MaxConnections,
		cfg.Network.InQueueSize,
		cfg.Network.OutQueueSize,
		cfg.Network.WriteTimeout,
		log,
	)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()

	// 7. Systems, in phase order
	sessions := gonet.NewSessionStore()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(netServer, sessions, world, bus,
		cfg.Server.ID, cfg.Simulation.TickRate, cfg.Network.MaxInputsPerStep, log))
	runner.Register(system.NewMovementSystem(world, log))
	runner.Register(system.NewAISystem(world, rng, log))
	runner.Register(system.NewCombatSystem(world, bus, log))
	runner.Register(system.NewSpawnSystem(world, bus, luaEngine, rng, log))
	runner.Register(system.NewSnapshotSystem(world, sessions, cfg.Server.ID,
		cfg.Snapshot.StepsPerSnapshot, cfg.Snapshot.MaxEnemies, cfg.Snapshot.InterestRadius, log))
	runner.Register(system.NewOutputSystem(sessions))
	runner.Register(system.NewCleanupSystem(world))

	// 8. Fixed-timestep loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	step := time.Second / time.Duration(cfg.Simulation.TickRate)
	log.Info("game loop started",
		zap.String("addr", netServer.Addr().String()),
		zap.Duration("step", step),
	)

	// Accumulator: each iteration banks elapsed wall time and runs as
	// many fixed-size steps as it affords, so host scheduling jitter
	// changes step spacing but never step size or count.
	var acc time.Duration
	prev := time.Now()
	for {
		select {
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			netServer.Shutdown()
			sessions.ForEach(func(s *gonet.Session) { s.Close() })
			// One last dispatch so departure events reach the recorder.
			bus.SwapBuffers()
			bus.DispatchAll()
			runner.Step(step)
			bus.SwapBuffers()
			bus.DispatchAll()
			if recorder != nil && !recorder.Drain(10*time.Second) {
				log.Warn("shutdown before all match results were recorded")
			}
			log.Info("server stopped", zap.Uint64("final_tick", world.Tick))
			return nil
		default:
		}

		now := time.Now()
		acc += now.Sub(prev)
		prev = now

		// Cap catch-up so a long stall cannot trigger a step spiral.
		if burst := step * time.Duration(cfg.Simulation.MaxStepsBurst); acc > burst {
			acc = burst
		}

		for acc >= step {
			bus.SwapBuffers()
			bus.DispatchAll()
			runner.Step(step)
			acc -= step
		}

		time.Sleep(step - acc)
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
