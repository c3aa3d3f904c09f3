package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lyricbench/internal/bench"
	"lyricbench/internal/config"
	"lyricbench/internal/corpus"
	"lyricbench/internal/lyrics"
	"lyricbench/internal/metrics"
	"lyricbench/internal/report"
	"lyricbench/internal/store"
	"lyricbench/internal/strategy"
	"lyricbench/pkg/fileutil"
	"lyricbench/pkg/redis"
	"lyricbench/pkg/timing"
)

// ResultSaver persists a finished run.
type ResultSaver interface {
	Save(ctx context.Context, res *bench.Result) error
}

type App struct {
	cfg      *config.Config
	registry *bench.Registry
	saver    ResultSaver
	closers  []io.Closer
	logger   zerolog.Logger
}

// SetupLogging 设置 zerolog 的全局配置
func SetupLogging(level zerolog.Level) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// New builds the app. When Redis is enabled the connection is established
// here so a bad address fails before any measurement starts.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	reg := strategy.NewRegistry()
	if len(cfg.Bench.Providers) > 0 {
		sub, err := reg.Select(cfg.Bench.Providers...)
		if err != nil {
			return nil, err
		}
		reg = sub
	}

	a := &App{
		cfg:      cfg,
		registry: reg,
		logger:   log.With().Str("component", "app").Logger(),
	}

	if cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		a.saver = store.NewResultStore(client, cfg.Redis.TTL)
		a.closers = append(a.closers, client)
		a.logger.Info().Str("addr", cfg.Redis.Addr).Msg("Result persistence enabled")
	}
	return a, nil
}

// WithSaver replaces the result sink.
func (a *App) WithSaver(s ResultSaver) *App {
	a.saver = s
	return a
}

func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Corpus returns the configured corpus: the parsed LRC file when one is set,
// the synthetic fixed corpus otherwise.
func (a *App) Corpus() ([]timing.Line, error) {
	b := a.cfg.Bench
	if b.LRCPath != "" {
		lines, err := lyrics.LoadFile(b.LRCPath, b.LRCTailMs)
		if err != nil {
			return nil, err
		}
		a.logger.Info().Str("path", b.LRCPath).Int("lines", len(lines)).Msg("Loaded LRC corpus")
		return lines, nil
	}
	return corpus.Fixed(b.CorpusSize, b.IntervalMs), nil
}

// Run performs one full benchmark and writes every configured output.
func (a *App) Run(ctx context.Context) (*bench.Result, error) {
	lines, err := a.Corpus()
	if err != nil {
		return nil, err
	}
	if err := timing.Validate(lines); err != nil {
		return nil, fmt.Errorf("app: corpus: %w", err)
	}

	engine, err := bench.NewEngine(a.registry, lines, a.cfg.Weights, a.cfg.Bench.Options)
	if err != nil {
		return nil, err
	}

	res, err := engine.Run(ctx, bench.Plans(corpus.TotalDuration(lines), a.cfg.Bench.Workload))
	if err != nil {
		return nil, err
	}

	if path := a.cfg.Bench.ReportPath; path != "" {
		if err := fileutil.WriteWith(path, 0o644, func(w io.Writer) error {
			return report.WriteMarkdown(w, res)
		}); err != nil {
			return res, err
		}
		a.logger.Info().Str("path", path).Msg("Report written")
	}
	if path := a.cfg.Bench.YAMLPath; path != "" {
		if err := fileutil.WriteWith(path, 0o644, func(w io.Writer) error {
			return report.WriteYAML(w, res)
		}); err != nil {
			return res, err
		}
		a.logger.Info().Str("path", path).Msg("YAML results written")
	}

	if path := a.cfg.Bench.MetricsPath; path != "" {
		rec := metrics.NewRecorder()
		rec.Observe(res)
		if err := rec.WriteTextfile(path); err != nil {
			return res, fmt.Errorf("app: metrics textfile: %w", err)
		}
		a.logger.Info().Str("path", path).Msg("Metrics written")
	}

	if a.saver != nil {
		// 报告已写入磁盘，保存失败只记录日志
		if err := a.saver.Save(ctx, res); err != nil {
			a.logger.Error().Err(err).Str("run_id", res.ID.String()).Msg("Failed to save run")
		}
	}

	for _, sc := range res.Scores {
		a.logger.Info().
			Str("provider", sc.Provider).
			Float64("score", sc.Score).
			Bool("incomplete", sc.Incomplete).
			Msg("Composite score")
	}
	return res, nil
}
