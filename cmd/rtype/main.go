package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rtype/engine/internal/config"
	"github.com/rtype/engine/internal/core/ecs"
	"github.com/rtype/engine/internal/core/event"
	coresys "github.com/rtype/engine/internal/core/system"
	"github.com/rtype/engine/internal/data"
	gonet "github.com/rtype/engine/internal/net"
	"github.com/rtype/engine/internal/persist"
	"github.com/rtype/engine/internal/scripting"
	"github.com/rtype/engine/internal/system"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultConfigPath = "config/server.toml"

const greeting = "Hello from R-Type!"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            R-Type engine  v0.1.0          \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", name)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ──────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := defaultConfigPath
	allowMissing := true
	if p := os.Getenv("RTYPE_CONFIG"); p != "" {
		cfgPath = p
		allowMissing = false
	}
	cfg, err := config.Load(cfgPath, allowMissing)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	ecsWorld := ecs.NewWorld()
	bus := event.NewBus()
	event.Subscribe(bus, func(e event.EntityDespawned) {
		log.Info("entity despawned", zap.Uint64("entity", uint64(e.EntityID)))
	})
	event.Subscribe(bus, func(e event.DatagramReceived) {
		log.Debug("datagram dispatched", zap.String("from", e.Addr), zap.Int("bytes", len(e.Payload)))
	})

	// 3. Scripts
	printSection("scripting")
	engine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()
	printOK(fmt.Sprintf("lua scripts loaded from %q", cfg.Scripting.Dir))
	fmt.Println()

	// 4. Persistence (optional) and initial state
	var snapshots *persist.SnapshotRepo
	var restoredTick uint64
	restored := false
	if cfg.Persist.Enabled {
		printSection("database")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Persist, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")

		snapshots = persist.NewSnapshotRepo(db)
		tick, remap, err := snapshots.LoadLatest(ctx, ecsWorld.Registry())
		switch {
		case errors.Is(err, persist.ErrNoSnapshot):
		case err != nil:
			return fmt.Errorf("restore snapshot: %w", err)
		default:
			restored = true
			restoredTick = tick
			printOK(fmt.Sprintf("restored %d entities from tick %d", len(remap), tick))
		}
		fmt.Println()
	}

	printSection("scene")
	if !restored {
		scene := data.DefaultScene()
		if cfg.Scene.Path != "" {
			if scene, err = data.LoadScene(cfg.Scene.Path); err != nil {
				return fmt.Errorf("scene: %w", err)
			}
		}
		if _, err := scene.Spawn(ecsWorld.Registry()); err != nil {
			return fmt.Errorf("scene: %w", err)
		}
	}
	if missing := system.MissingScripts(ecsWorld.Registry(), engine.Has); len(missing) > 0 {
		return fmt.Errorf("scene: script %q: %w", missing[0], scripting.ErrNoFunction)
	}
	printStat("entities", ecsWorld.Registry().Len())
	printStat("moving", len(ecsWorld.Registry().GetEntitiesWith(ecs.KindPosition, ecs.KindVelocity)))
	fmt.Println()

	// 5. Network
	runner := coresys.NewRunner(bus)
	if cfg.Network.Enabled {
		printSection("network")
		sock := gonet.NewUDPSocket(cfg.Network.BindHost, cfg.Network.MaxDatagramSize, log)
		if err := sock.Bind(cfg.Network.Port); err != nil {
			return fmt.Errorf("network: %w", err)
		}
		defer sock.Close()
		printOK(fmt.Sprintf("bound udp %s:%d", cfg.Network.BindHost, sock.LocalPort()))

		if err := greetSelf(sock, cfg.Network, log); err != nil {
			return fmt.Errorf("network: %w", err)
		}

		netServer := gonet.NewServer(sock, cfg.Network.PollTimeout, cfg.Network.InQueueSize, log)
		go netServer.ReceiveLoop()
		defer netServer.Shutdown()

		runner.Register(system.NewInputSystem(netServer, bus, cfg.Network.MaxDatagramsPerTick, cfg.Network.Echo, log))
		fmt.Println()
	}

	// 6. Systems
	runner.Register(system.NewScriptedMovementSystem(ecsWorld, engine, log))
	runner.Register(system.NewMovementSystem(ecsWorld, bus, log))
	var persistSys *system.PersistSystem
	if snapshots != nil {
		persistSys = system.NewPersistSystem(ecsWorld, snapshots, log, cfg.Persist.IntervalTicks)
		persistSys.Resume(restoredTick)
		runner.Register(persistSys)
	}
	runner.Register(system.NewCleanupSystem(ecsWorld, bus, log))

	// 7. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	ticker := time.NewTicker(cfg.Server.TickRate)
	defer ticker.Stop()

	printSection("ready")
	if cfg.Server.Ticks > 0 {
		printReady(fmt.Sprintf("game loop running %d ticks (tick: %s)", cfg.Server.Ticks, cfg.Server.TickRate))
	} else {
		printReady(fmt.Sprintf("game loop running until signal (tick: %s)", cfg.Server.TickRate))
	}
	fmt.Println()

	stop := func() {
		if persistSys != nil {
			persistSys.SaveNow()
		}
		log.Info("engine stopped", zap.Uint64("ticks", runner.Ticks()))
	}

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Server.TickRate)
			if cfg.Server.Ticks > 0 && runner.Ticks() >= uint64(cfg.Server.Ticks) {
				stop()
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			stop()
			return nil
		}
	}
}

// greetSelf sends the greeting to the socket's own address and waits for
// it, proving the bind/send/receive round trip before the loop starts.
func greetSelf(sock *gonet.UDPSocket, cfg config.NetworkConfig, log *zap.Logger) error {
	if err := sock.Send([]byte(greeting), cfg.BindHost, sock.LocalPort()); err != nil {
		return err
	}
	msg, ok, err := sock.Receive(cfg.ReadTimeout)
	if err != nil {
		return err
	}
	if !ok {
		log.Warn("no greeting received", zap.Duration("timeout", cfg.ReadTimeout))
		return nil
	}
	log.Info("received message",
		zap.String("message", string(msg.Payload)),
		zap.String("from", msg.Addr),
		zap.Int("port", msg.Port))
	printOK(fmt.Sprintf("round trip: %q", msg.Payload))
	return nil
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
