package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/ecsim/internal/analysis"
	"github.com/san-kum/ecsim/internal/config"
	"github.com/san-kum/ecsim/internal/ecs"
	"github.com/san-kum/ecsim/internal/game"
	"github.com/san-kum/ecsim/internal/replaylog"
	"github.com/san-kum/ecsim/internal/tui"
)

var (
	configFile string
	preset     string
	ticks      int
	seed       int64
	enableLog  bool
	quiet      bool
	logLevel   string
	factor     float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ecsim",
		Short: "change-tracking entity-component-system playground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return tui.Run(cfg, resolveSeed(cfg))
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	simCmd := &cobra.Command{
		Use:   "sim [replay-log]",
		Short: "run the demo headless, or replay a session log",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSim,
	}
	simCmd.Flags().IntVar(&ticks, "ticks", 0, "number of ticks (default from config)")
	simCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time-based)")
	simCmd.Flags().BoolVar(&enableLog, "log", false, "enable replay logging")
	simCmd.Flags().BoolVar(&quiet, "quiet", false, "suppress per-tick frames")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [logfile]",
		Short: "analyze a session log, or a fresh in-memory run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().IntVar(&ticks, "ticks", 0, "number of ticks (default from config)")
	analyzeCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time-based)")
	analyzeCmd.Flags().Float64Var(&factor, "factor", 2.0, "anomaly threshold factor")

	rootCmd.AddCommand(simCmd, analyzeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("bad log level %q: %w", logLevel, err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (have: %s)",
				preset, strings.Join(config.ListPresets(), ", "))
		}
	default:
		cfg = config.DefaultConfig()
	}
	if cmd.Flags().Changed("ticks") {
		cfg.Ticks = ticks
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if enableLog {
		cfg.ReplayLog.Enabled = true
	}
	return cfg, nil
}

func resolveSeed(cfg *config.Config) int64 {
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	return time.Now().UnixNano()
}

func runSim(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return replaySession(args[0])
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	runSeed := resolveSeed(cfg)
	var sink func(string)
	if !quiet {
		sink = func(frame string) {
			fmt.Print("\x1b[2J\x1b[H")
			fmt.Println(frame)
		}
	}
	w, err := game.NewDemoWorld(game.Options{
		GridSize:   cfg.GridSize,
		Actors:     cfg.Actors,
		RenderSink: sink,
	}, runSeed)
	if err != nil {
		return err
	}

	writer, err := replaylog.NewWriter(cfg.ReplayLog, log)
	if err != nil {
		return err
	}
	w.AttachObserver(writer)
	log.Info("simulation starting",
		zap.Int("ticks", cfg.Ticks),
		zap.Int64("seed", runSeed),
		zap.Bool("replay_log", cfg.ReplayLog.Enabled))

	delay := time.Duration(cfg.TickMS) * time.Millisecond
	for i := 0; i < cfg.Ticks; i++ {
		if err := w.Update(); err != nil {
			writer.Close()
			return err
		}
		if !quiet && delay > 0 {
			time.Sleep(delay)
		}
	}
	if err := writer.Close(); err != nil {
		log.Warn("replay log incomplete", zap.Error(err))
	}

	fmt.Printf("ran %d ticks, %d entities\n", cfg.Ticks, w.EntityCount())
	if cfg.ReplayLog.Enabled && writer.Path() != "" {
		fmt.Printf("replay log: %s\n", writer.Path())
	}
	return nil
}

// replaySession rebuilds world state from a session log without executing
// any system logic.
func replaySession(path string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	reg := replaylog.NewRegistry()
	game.RegisterComponents(reg)

	session, err := replaylog.ParseFile(path, reg)
	if err != nil {
		return err
	}
	if !session.HasDetails {
		return fmt.Errorf("%s was written without component details and cannot be replayed", path)
	}
	log.Info("session parsed",
		zap.String("session", session.ID),
		zap.Int("ticks", session.History.Len()))

	w, err := ecs.Replay(session.History)
	if err != nil {
		return err
	}

	fmt.Printf("session %s\n\n", session.ID)
	fmt.Println(game.RenderGrid(game.DefaultGridSize, ecs.Query[game.Position](w)))
	fmt.Printf("replayed %d ticks, %d entities, %d systems (no system logic executed)\n",
		session.History.Len(), w.EntityCount(), w.SystemCount())
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		reg := replaylog.NewRegistry()
		game.RegisterComponents(reg)
		session, err := replaylog.ParseFile(args[0], reg)
		if err != nil {
			return err
		}
		fmt.Printf("session: %s\n", session.ID)
		if !session.Started.IsZero() {
			fmt.Printf("started: %s\n", session.Started.Format(time.RFC3339))
		}
		fmt.Println()
		return report(session.History)
	}

	// no log file: fresh seeded run, analyzed in memory, with a replay
	// verification pass
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	runSeed := resolveSeed(cfg)
	w, err := game.NewDemoWorld(game.Options{GridSize: cfg.GridSize, Actors: cfg.Actors}, runSeed)
	if err != nil {
		return err
	}
	for i := 0; i < cfg.Ticks; i++ {
		if err := w.Update(); err != nil {
			return err
		}
	}
	fmt.Printf("fresh run: %d ticks, seed %d\n\n", cfg.Ticks, runSeed)
	if err := report(w.History()); err != nil {
		return err
	}

	clone, err := ecs.Replay(w.History())
	if err != nil {
		return err
	}
	if ecs.StatesEqual(w, clone) {
		fmt.Println("\nreplay verification: reconstructed state matches the live run")
	} else {
		fmt.Println("\nreplay verification: MISMATCH")
	}
	return nil
}

func report(h *ecs.History) error {
	stats := analysis.Analyze(h)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ticks\t%d\n", stats.TotalTicks)
	fmt.Fprintf(tw, "system executions\t%d\n", stats.SystemExecutions)
	fmt.Fprintf(tw, "component changes\t%d\n", stats.ComponentChanges)
	fmt.Fprintf(tw, "structural operations\t%d\n", stats.StructuralOps)
	fmt.Fprintf(tw, "entities created\t%d\n", stats.EntitiesCreated)
	fmt.Fprintf(tw, "entities removed\t%d\n", stats.EntitiesRemoved)
	fmt.Fprintf(tw, "component types\t%s\n", strings.Join(stats.ComponentTypes, ", "))
	fmt.Fprintf(tw, "avg changes/tick\t%.2f\n", stats.AvgChangesPerTick)
	if stats.BusiestTick >= 0 {
		fmt.Fprintf(tw, "busiest tick\t%d (%d changes)\n", stats.BusiestTick, stats.BusiestTickChanges)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	data := analysis.ChangesPerTick(h)
	if len(data) > 1 {
		fmt.Println()
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("component changes per tick"))
		fmt.Println(graph)
	}

	if anomalous := analysis.AnomalousTicks(h, factor); len(anomalous) > 0 {
		fmt.Printf("\nanomalous ticks (%.1fx running average): %v\n", factor, anomalous)
	}
	return nil
}
