package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"lyricbench/internal/app"
	"lyricbench/internal/bench"
	"lyricbench/internal/config"
	"lyricbench/internal/ipc"
	"lyricbench/internal/lyrics"
	"lyricbench/internal/player"
	"lyricbench/pkg/timing"
)

var (
	configPath string
	reportPath string
	yamlPath   string
	promPath   string
	lrcPath    string
	providers  []string
	noRedis    bool
	orPrevious bool
	tailMs     int64
	startMs    int64
	speed      float64
	socketPath string
	followPlay bool

	rootCmd = &cobra.Command{
		Use:          "lyricbench",
		Short:        "Benchmark lyric position lookup strategies",
		SilenceUsage: true,
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Measure every provider over the weighted scenarios and write a report",
		RunE:  runBenchmark,
	}

	queryCmd = &cobra.Command{
		Use:   "query <file.lrc> <position-ms>...",
		Short: "Print the lines active at each position",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runQuery,
	}

	playCmd = &cobra.Command{
		Use:   "play <file.lrc>",
		Short: "Replay a song's lyrics against a simulated playback clock",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlay,
	}

	scenariosCmd = &cobra.Command{
		Use:   "scenarios",
		Short: "List benchmark scenarios and their weights",
		RunE:  runScenarios,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/lyricbench/config.toml)")

	runCmd.Flags().StringVarP(&reportPath, "out", "o", "", "markdown report path")
	runCmd.Flags().StringVar(&yamlPath, "yaml", "", "also write results as YAML to this path")
	runCmd.Flags().StringVar(&promPath, "metrics", "", "write a Prometheus textfile export to this path")
	runCmd.Flags().StringVar(&lrcPath, "lrc", "", "benchmark against a parsed LRC file instead of the synthetic corpus")
	runCmd.Flags().StringSliceVarP(&providers, "providers", "p", nil, "providers to measure, baseline first")
	runCmd.Flags().BoolVar(&noRedis, "no-redis", false, "skip saving the run to redis")

	for _, cmd := range []*cobra.Command{queryCmd, playCmd} {
		cmd.Flags().Int64Var(&tailMs, "tail", lyrics.DefaultTail, "duration in ms given to the last line")
	}
	queryCmd.Flags().BoolVar(&orPrevious, "or-previous", false, "report the preceding line during gaps")
	playCmd.Flags().Int64Var(&startMs, "start", 0, "playback start position in ms")
	playCmd.Flags().Float64Var(&speed, "speed", 1, "playback speed multiplier")
	playCmd.Flags().BoolVar(&followPlay, "follow-player", false, "follow the desktop player's position via playerctl")
	playCmd.Flags().StringVar(&socketPath, "socket", "", "also publish the active line on this unix socket")

	rootCmd.AddCommand(runCmd, queryCmd, playCmd, scenariosCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	app.SetupLogging(cfg.LogLevel)
	return cfg, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runBenchmark(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if reportPath != "" {
		cfg.Bench.ReportPath = reportPath
	}
	if yamlPath != "" {
		cfg.Bench.YAMLPath = yamlPath
	}
	if promPath != "" {
		cfg.Bench.MetricsPath = promPath
	}
	if lrcPath != "" {
		cfg.Bench.LRCPath = lrcPath
	}
	if len(providers) > 0 {
		cfg.Bench.Providers = providers
	}
	if noRedis {
		cfg.Redis.Enabled = false
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Run(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RANK\tPROVIDER\tSCORE\n")
	for i, sc := range res.Scores {
		mark := ""
		if sc.Incomplete {
			mark = " (incomplete)"
		}
		fmt.Fprintf(w, "%d\t%s\t%.4f%s\n", i+1, sc.Provider, sc.Score, mark)
	}
	return w.Flush()
}

func runQuery(cmd *cobra.Command, args []string) error {
	lines, err := lyrics.LoadFile(args[0], tailMs)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, arg := range args[1:] {
		var pos int64
		if _, err := fmt.Sscan(arg, &pos); err != nil {
			return fmt.Errorf("invalid position %q: %w", arg, err)
		}
		var active []timing.Line
		if orPrevious {
			active = timing.FilterByPositionOrPrevious(lines, pos)
		} else {
			active = timing.FilterByPosition(lines, pos)
		}
		if len(active) == 0 {
			fmt.Fprintf(out, "%d\t-\n", pos)
			continue
		}
		for _, l := range active {
			fmt.Fprintf(out, "%d\t%s\t%s\n", pos, l, l.Text)
		}
	}
	return nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	if speed <= 0 {
		return fmt.Errorf("speed must be positive, got %v", speed)
	}
	lines, err := lyrics.LoadFile(args[0], tailMs)
	if err != nil {
		return err
	}
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	var server *ipc.Server
	if socketPath != "" {
		server = ipc.NewServer(socketPath)
		if err := server.Start(); err != nil {
			return err
		}
		defer server.Close()
	}

	clock := app.WallClock(startMs, speed)
	if followPlay {
		if song, err := player.CurrentSong(); err == nil {
			log.Info().Str("song", song).Msg("Following player")
		}
		clock = player.Position
	}

	out := cmd.OutOrStdout()
	err = app.Replay(ctx, lines, clock, 0, func(pos int64, active []timing.Line) {
		texts := make([]string, len(active))
		for i, l := range active {
			texts[i] = l.Text
		}
		text := strings.Join(texts, " / ")
		fmt.Fprintf(out, "[%s] %s\n", formatMillis(pos), text)
		if server != nil {
			server.Broadcast(text)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runScenarios(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "KEY\tSCENARIO\tWEIGHT\n")
	for _, s := range bench.Scenarios {
		fmt.Fprintf(w, "%s\t%s\t%.2f\n", s.Key(), s.Label(), cfg.Weights[s])
	}
	return w.Flush()
}

func formatMillis(ms int64) string {
	return fmt.Sprintf("%02d:%02d.%03d", ms/60000, ms/1000%60, ms%1000)
}
