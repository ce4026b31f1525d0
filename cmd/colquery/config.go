package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dot5enko/colquery/compression"
	"github.com/dot5enko/colquery/query"
	"github.com/dot5enko/colquery/storage"
)

type Config struct {
	Rows          int      `mapstructure:"rows"`
	Seed          uint64   `mapstructure:"seed"`
	PageRows      int      `mapstructure:"page_rows"`
	PageCacheSize int      `mapstructure:"page_cache_size"`
	Codec         string   `mapstructure:"codec"`
	Indexed       []string `mapstructure:"indexed"`
	Workers       int      `mapstructure:"workers"`
	FindLocals    int      `mapstructure:"find_locals"`
	BestDist      int      `mapstructure:"best_dist"`
	ProbeMatches  int      `mapstructure:"probe_matches"`
	LogLevel      string   `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	def := query.DefaultConfig()

	v.SetDefault("rows", 100_000)
	v.SetDefault("seed", 1)
	v.SetDefault("page_rows", storage.DefaultPageRows)
	v.SetDefault("page_cache_size", storage.DefaultPageCacheSize)
	v.SetDefault("codec", "lz4")
	v.SetDefault("indexed", []string{"host"})
	v.SetDefault("workers", 4)
	v.SetDefault("find_locals", def.FindLocals)
	v.SetDefault("best_dist", def.BestDist)
	v.SetDefault("probe_matches", def.ProbeMatches)
	v.SetDefault("log_level", "info")
}

// loadConfig merges, from lowest to highest priority, the defaults, the
// optional config file, COLQUERY_* environment variables and flags.
func loadConfig(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config `%s`: %w", path, err)
		}
	}

	v.SetEnvPrefix("COLQUERY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return Config{}, bindErr
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c Config) tableOptions() ([]storage.Option, error) {
	codec, err := compression.ByName(c.Codec)
	if err != nil {
		return nil, err
	}
	return []storage.Option{
		storage.WithPageRows(c.PageRows),
		storage.WithPageCacheSize(c.PageCacheSize),
		storage.WithCodec(codec),
	}, nil
}

func (c Config) queryOptions() []query.Option {
	return []query.Option{
		query.WithWorkers(c.Workers),
		query.WithConfig(query.Config{
			FindLocals:   c.FindLocals,
			BestDist:     c.BestDist,
			ProbeMatches: c.ProbeMatches,
		}),
	}
}

func (c Config) logLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
