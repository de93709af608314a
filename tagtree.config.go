package tagtree

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the file form of the engine options. It is read from YAML or
// TOML depending on the file extension.
type Config struct {
	// TemplateDirs are searched in order by a FileSystemLoader
	TemplateDirs []string `yaml:"template_dirs" toml:"template_dirs"`
	// ScriptDirs hold Starlark tag libraries
	ScriptDirs []string `yaml:"script_dirs" toml:"script_dirs"`
	// MaxDepth bounds inheritance chains and include nesting
	MaxDepth int `yaml:"max_depth" toml:"max_depth"`
	// CacheTTL is a duration string such as "5m"; "-1s" disables caching
	CacheTTL string `yaml:"cache_ttl" toml:"cache_ttl"`
	// LogLevel is a zap level name; empty disables logging
	LogLevel string `yaml:"log_level" toml:"log_level"`
	// Postgres enables the PostgreSQL loader after the template directories
	Postgres *PostgresSection `yaml:"postgres" toml:"postgres"`
}

// PostgresSection configures the PostgreSQL loader from a config file
type PostgresSection struct {
	DSN         string `yaml:"dsn" toml:"dsn"`
	TablePrefix string `yaml:"table_prefix" toml:"table_prefix"`
	AutoMigrate bool   `yaml:"auto_migrate" toml:"auto_migrate"`
}

// LoadConfig reads a config file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError(ErrMsgConfigRead, path, err)
	}
	return ParseConfig(data, filepath.Ext(path))
}

// ParseConfig decodes config data. ext selects the format: ".yaml", ".yml" or ".toml".
func ParseConfig(data []byte, ext string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ConfigExtYAML, ConfigExtYML:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, NewConfigError(ErrMsgConfigDecode, "", err)
		}
	case ConfigExtTOML:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, NewConfigError(ErrMsgConfigDecode, "", err)
		}
	default:
		return nil, NewConfigError(ErrMsgConfigFormat+" '"+ext+"'", "", nil)
	}
	return &cfg, nil
}

// Logger builds a logger for LogLevel. An empty level yields a no-op logger.
func (c *Config) Logger() (*zap.Logger, error) {
	if c.LogLevel == "" {
		return zap.NewNop(), nil
	}
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, NewConfigError(ErrMsgConfigLogLevel, "", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

// Options converts the config to engine options. When a postgres section is
// present the loader is opened here; the caller owns it through the returned
// closer list.
func (c *Config) Options() ([]Option, []func() error, error) {
	var opts []Option
	var closers []func() error

	if len(c.TemplateDirs) > 0 {
		opts = append(opts, WithLoader(NewFileSystemLoader(c.TemplateDirs...)))
	}
	if len(c.ScriptDirs) > 0 {
		opts = append(opts, WithScriptDirs(c.ScriptDirs...))
	}
	if c.MaxDepth > 0 {
		opts = append(opts, WithMaxDepth(c.MaxDepth))
	}
	if c.CacheTTL != "" {
		ttl, err := time.ParseDuration(c.CacheTTL)
		if err != nil {
			return nil, nil, NewConfigError(ErrMsgConfigCacheTTL, "", err)
		}
		opts = append(opts, WithTemplateCache(ttl))
	}
	if c.Postgres != nil && c.Postgres.DSN != "" {
		pgConfig := DefaultPostgresConfig()
		pgConfig.ConnectionString = c.Postgres.DSN
		pgConfig.AutoMigrate = c.Postgres.AutoMigrate
		if c.Postgres.TablePrefix != "" {
			pgConfig.TablePrefix = c.Postgres.TablePrefix
		}
		loader, err := NewPostgresLoader(pgConfig)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, WithLoader(loader))
		closers = append(closers, loader.Close)
	}
	return opts, closers, nil
}
