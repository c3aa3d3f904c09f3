package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lyricbench/internal/bench"
	"lyricbench/internal/corpus"
	"lyricbench/internal/lyrics"
)

const (
	DefaultReportPath = "LyricPositionProvider-Benchmark.md"
	DefaultRedisAddr  = "localhost:6379"
	DefaultRedisTTL   = 30 * 24 * time.Hour
	EnvPrefix         = "LYRICBENCH_"
)

// TomlConfig TOML配置文件结构，零值表示沿用默认值
type TomlConfig struct {
	Bench struct {
		CorpusSize            int      `toml:"corpus_size"`
		IntervalMs            int64    `toml:"interval_ms"`
		SinglePointTrials     int      `toml:"single_point_trials"`
		ContinuousDurationSec int      `toml:"continuous_duration_sec"`
		FrameRates            []int    `toml:"frame_rates"`
		HotJitterCount        int      `toml:"hot_jitter_count"`
		HotJitterRadiusMs     int64    `toml:"hot_jitter_radius_ms"`
		ForwardSeekStepMs     int64    `toml:"forward_seek_step_ms"`
		RandomSeekCount       int      `toml:"random_seek_count"`
		WarmupPasses          int      `toml:"warmup_passes"`
		WarmupMaxPosition     int64    `toml:"warmup_max_position"`
		WarmupStep            int64    `toml:"warmup_step"`
		Concurrency           int      `toml:"concurrency"`
		ReportPath            string   `toml:"report_path"`
		YAMLPath              string   `toml:"yaml_path"`
		LRCPath               string   `toml:"lrc_path"`
		LRCTailMs             int64    `toml:"lrc_tail_ms"`
		Providers             []string `toml:"providers"`
	} `toml:"bench"`

	Weights map[string]float64 `toml:"weights"`

	Redis struct {
		Enabled  bool   `toml:"enabled"`
		Addr     string `toml:"addr"`
		Password string `toml:"password"`
		DB       int    `toml:"db"`
		TTL      string `toml:"ttl"`
	} `toml:"redis"`

	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`

	Metrics struct {
		Textfile string `toml:"textfile"`
	} `toml:"metrics"`
}

// BenchConfig 基准测试配置：语料规模、负载和输出路径
type BenchConfig struct {
	CorpusSize int
	IntervalMs int64
	Workload   bench.Workload
	Options    bench.Options
	ReportPath string
	YAMLPath   string
	// 设置后导出 Prometheus textfile
	MetricsPath string
	// 设置后用解析出的歌曲代替合成语料
	LRCPath   string
	LRCTailMs int64
	// 限定并排序参与测试的实现，第一个为基准
	Providers []string
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Config 主配置结构
type Config struct {
	Bench    BenchConfig
	Weights  bench.Weights
	Redis    RedisConfig
	LogLevel zerolog.Level
}

// Default 返回内置默认配置
func Default() *Config {
	return &Config{
		Bench: BenchConfig{
			CorpusSize: corpus.DefaultSize,
			IntervalMs: corpus.DefaultInterval,
			Workload:   bench.DefaultWorkload(),
			Options:    bench.DefaultOptions(),
			ReportPath: DefaultReportPath,
			LRCTailMs:  lyrics.DefaultTail,
		},
		Weights: bench.DefaultWeights(),
		Redis: RedisConfig{
			Addr: DefaultRedisAddr,
			TTL:  DefaultRedisTTL,
		},
		LogLevel: zerolog.InfoLevel,
	}
}

// DefaultPath 获取配置文件路径
// 优先使用 XDG_CONFIG_HOME，否则使用 ~/.config，最后回退到当前目录
func DefaultPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "lyricbench", "config.toml")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warn().Err(err).Msg("Cannot get user home directory")
		return "config.toml"
	}
	return filepath.Join(homeDir, ".config", "lyricbench", "config.toml")
}

func loadTomlConfig(path string) (*TomlConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Info().Str("path", path).Msg("Config file not found, using defaults")
		return &TomlConfig{}, nil
	}

	var tc TomlConfig
	if _, err := toml.DecodeFile(path, &tc); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	log.Info().Str("path", path).Msg("Loaded config")
	return &tc, nil
}

// Load 读取配置文件（为空时使用 DefaultPath），覆盖默认值后校验
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	tc, err := loadTomlConfig(path)
	if err != nil {
		return nil, err
	}
	cfg, err := tc.apply(Default())
	if err != nil {
		return nil, err
	}
	loadDotEnv()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv 加载 $LYRICBENCH_ENV_PATH（默认 .env）到环境变量
// 已存在的环境变量不会被覆盖
func loadDotEnv() {
	path := os.Getenv(EnvPrefix + "ENV_PATH")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		log.Debug().Str("path", path).Msg("Skipping .env ...")
	}
}

// applyEnv 用 LYRICBENCH_* 环境变量覆盖配置文件
func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvPrefix + "REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv(EnvPrefix + "REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv(EnvPrefix + "REDIS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %sREDIS_ENABLED: %w", EnvPrefix, err)
		}
		cfg.Redis.Enabled = enabled
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		lvl, err := zerolog.ParseLevel(v)
		if err != nil {
			return fmt.Errorf("config: %sLOG_LEVEL: %w", EnvPrefix, err)
		}
		cfg.LogLevel = lvl
	}
	return nil
}

// Parse 解析 TOML 文本，用于内联配置和测试
func Parse(data string) (*Config, error) {
	var tc TomlConfig
	if _, err := toml.Decode(data, &tc); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg, err := tc.apply(Default())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (tc *TomlConfig) apply(cfg *Config) (*Config, error) {
	b := tc.Bench
	if b.CorpusSize != 0 {
		cfg.Bench.CorpusSize = b.CorpusSize
	}
	if b.IntervalMs != 0 {
		cfg.Bench.IntervalMs = b.IntervalMs
	}
	if b.SinglePointTrials != 0 {
		cfg.Bench.Workload.SinglePointTrials = b.SinglePointTrials
	}
	if b.ContinuousDurationSec != 0 {
		cfg.Bench.Workload.DurationSec = b.ContinuousDurationSec
	}
	if len(b.FrameRates) > 0 {
		cfg.Bench.Workload.FrameRates = b.FrameRates
	}
	if b.HotJitterCount != 0 {
		cfg.Bench.Workload.JitterCount = b.HotJitterCount
	}
	if b.HotJitterRadiusMs != 0 {
		cfg.Bench.Workload.JitterRadius = b.HotJitterRadiusMs
	}
	if b.ForwardSeekStepMs != 0 {
		cfg.Bench.Workload.ForwardStep = b.ForwardSeekStepMs
	}
	if b.RandomSeekCount != 0 {
		cfg.Bench.Workload.SeekCount = b.RandomSeekCount
	}
	if b.WarmupPasses != 0 {
		cfg.Bench.Options.WarmupPasses = b.WarmupPasses
	}
	if b.WarmupMaxPosition != 0 {
		cfg.Bench.Options.WarmupMaxPosition = b.WarmupMaxPosition
	}
	if b.WarmupStep != 0 {
		cfg.Bench.Options.WarmupStep = b.WarmupStep
	}
	if b.Concurrency != 0 {
		cfg.Bench.Options.Concurrency = b.Concurrency
	}
	if b.ReportPath != "" {
		cfg.Bench.ReportPath = b.ReportPath
	}
	if b.YAMLPath != "" {
		cfg.Bench.YAMLPath = b.YAMLPath
	}
	if b.LRCPath != "" {
		cfg.Bench.LRCPath = b.LRCPath
	}
	if tc.Metrics.Textfile != "" {
		cfg.Bench.MetricsPath = tc.Metrics.Textfile
	}
	if b.LRCTailMs != 0 {
		cfg.Bench.LRCTailMs = b.LRCTailMs
	}
	if len(b.Providers) > 0 {
		cfg.Bench.Providers = b.Providers
	}

	for key, w := range tc.Weights {
		s, err := bench.ParseScenario(key)
		if err != nil {
			return nil, fmt.Errorf("config: weights: %w", err)
		}
		cfg.Weights[s] = w
	}

	cfg.Redis.Enabled = tc.Redis.Enabled
	if tc.Redis.Addr != "" {
		cfg.Redis.Addr = tc.Redis.Addr
	}
	if tc.Redis.Password != "" {
		cfg.Redis.Password = tc.Redis.Password
	}
	if tc.Redis.DB != 0 {
		cfg.Redis.DB = tc.Redis.DB
	}
	if tc.Redis.TTL != "" {
		if d, err := time.ParseDuration(tc.Redis.TTL); err == nil {
			cfg.Redis.TTL = d
		} else {
			log.Warn().Str("ttl", tc.Redis.TTL).Msg("Invalid redis ttl format, using default")
		}
	}

	if tc.Log.Level != "" {
		lvl, err := zerolog.ParseLevel(tc.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("config: log level: %w", err)
		}
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

// Validate 校验权重之和为 1，以及各项数量为正
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.Bench.LRCPath == "" && c.Bench.CorpusSize <= 0 {
		return fmt.Errorf("config: corpus_size must be positive, got %d", c.Bench.CorpusSize)
	}
	if c.Bench.IntervalMs <= 0 {
		return fmt.Errorf("config: interval_ms must be positive, got %d", c.Bench.IntervalMs)
	}
	w := c.Bench.Workload
	if w.ForwardStep <= 0 {
		return fmt.Errorf("config: forward_seek_step_ms must be positive, got %d", w.ForwardStep)
	}
	if w.SinglePointTrials <= 0 {
		return fmt.Errorf("config: single_point_trials must be positive, got %d", w.SinglePointTrials)
	}
	if w.SeekCount <= 0 {
		return fmt.Errorf("config: random_seek_count must be positive, got %d", w.SeekCount)
	}
	if w.JitterCount <= 0 {
		return fmt.Errorf("config: hot_jitter_count must be positive, got %d", w.JitterCount)
	}
	if w.JitterRadius < 0 {
		return fmt.Errorf("config: hot_jitter_radius_ms must not be negative, got %d", w.JitterRadius)
	}
	if w.DurationSec <= 0 {
		return fmt.Errorf("config: continuous_duration_sec must be positive, got %d", w.DurationSec)
	}
	if len(w.FrameRates) == 0 {
		return fmt.Errorf("config: frame_rates must not be empty")
	}
	for _, fps := range w.FrameRates {
		if fps <= 0 {
			return fmt.Errorf("config: frame_rates must be positive, got %d", fps)
		}
	}
	if c.Bench.Options.Concurrency < 0 {
		c.Bench.Options.Concurrency = runtime.GOMAXPROCS(0)
	}
	return nil
}
