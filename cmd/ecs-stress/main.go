package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/archstore/ecs"
	"github.com/plus3/archstore/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	configPath := flag.String("config", "", "Path to a .toml or .yaml config file.")
	duration := flag.Duration("duration", 0, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 0, "The initial number of entities to create.")
	churn := flag.Int("churn", 0, "Component add/remove operations per tick.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	cfg := config.Defaults()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "duration":
			cfg.Bench.Duration = *duration
		case "entities":
			cfg.Bench.Entities = *entityCount
		case "churn":
			cfg.Bench.ChurnPerTick = *churn
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid settings: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, *gcPauseMetrics, log); err != nil {
		log.Fatal("stress test failed", zap.Error(err))
	}
}

func run(cfg *config.Config, gcPauseMetrics bool, log *zap.Logger) error {
	switch cfg.Profile.Mode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.Profile.Path), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath(cfg.Profile.Path), profile.NoShutdownHook).Stop()
	}

	seed := cfg.Bench.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	log.Info("starting ECS stress test", zap.Uint64("seed", seed))

	// 1. Setup Registry, World, and Scheduler
	registry := ecs.NewRegistry(ecs.WithLogger(log.Named("ecs")))
	ids, err := registerComponents(registry)
	if err != nil {
		return fmt.Errorf("register components: %w", err)
	}
	world := ecs.NewWorld(registry)
	scheduler := ecs.NewScheduler(world)

	lifetimes := &LifetimeSystem{}
	churner := &ChurnSystem{PerTick: cfg.Bench.ChurnPerTick, Rand: rng}
	for _, system := range []ecs.System{&MovementSystem{}, lifetimes, &HealthSystem{}, churner} {
		if err := scheduler.Register(system); err != nil {
			return err
		}
	}

	// 2. Populate the world with initial entities
	log.Info("populating world", zap.Int("entities", cfg.Bench.Entities))
	for i := 0; i < cfg.Bench.Entities; i++ {
		// 1 to 5 random components
		if _, err := spawnRandomEntity(world, rng, ids, rng.IntN(5)+1); err != nil {
			return fmt.Errorf("spawn entity %d: %w", i, err)
		}
	}
	log.Info("population complete", zap.Int("archetypes", len(registry.Archetypes())))

	// 3. Run the simulation loop
	report := &Report{
		Duration:       cfg.Bench.Duration,
		Entities:       cfg.Bench.Entities,
		Components:     len(ids),
		Systems:        len(scheduler.GetStats().Systems),
		ChurnPerTick:   cfg.Bench.ChurnPerTick,
		Seed:           seed,
		GCPauseMetrics: gcPauseMetrics,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Info("running simulation", zap.Duration("duration", cfg.Bench.Duration))
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Bench.Duration)
	defer cancel()

	ticker := time.NewTicker(cfg.Bench.TickInterval)
	defer ticker.Stop()

	startTime := time.Now()
	lastFrameTime := startTime

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		case now := <-ticker.C:
			deltaTime := now.Sub(lastFrameTime)
			lastFrameTime = now

			updateStart := time.Now()
			if err := scheduler.Once(deltaTime.Seconds()); err != nil {
				report.FailedCommands++
				log.Debug("frame finished with errors", zap.Error(err))
			}
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
			report.TotalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)
	report.Storage = world.CollectStats()
	report.Scheduler = scheduler.GetStats()
	report.Added, report.Removed, report.Expired = churner.Added, churner.Removed, lifetimes.Expired
	report.LiveEntities = world.Len()

	log.Info("simulation finished", zap.Int64("updates", report.TotalUpdates))

	// 4. Generate Report to Console
	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	fmt.Println("--- End of Report ---")
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
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
