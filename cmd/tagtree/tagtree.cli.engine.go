package main

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/itsatony/go-tagtree"
)

// defaultConfigPath returns the per-user config file, or "" when it does not exist
func defaultConfigPath() string {
	path := filepath.Join(xdg.ConfigHome, tagtree.ConfigDirName, tagtree.ConfigFileName)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// loadConfig reads the explicit config file, falling back to the per-user
// one. A missing default file yields an empty config.
func (o *globalOptions) loadConfig() (*tagtree.Config, error) {
	path := o.configPath
	if path == "" {
		path = defaultConfigPath()
	}
	if path == "" {
		return &tagtree.Config{}, nil
	}
	return tagtree.LoadConfig(path)
}

// newEngine builds an engine from the config file and the command line.
// extraDirs are searched before the configured template directories. The
// returned function releases loaders opened from the config.
func (o *globalOptions) newEngine(extraDirs ...string) (*tagtree.Engine, func(), error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, failure(ErrMsgConfigFailed, err)
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	cfg.TemplateDirs = append(append(append([]string{}, extraDirs...), o.templateDirs...), cfg.TemplateDirs...)
	cfg.ScriptDirs = append(append([]string{}, o.scriptDirs...), cfg.ScriptDirs...)

	logger, err := cfg.Logger()
	if err != nil {
		return nil, nil, failure(ErrMsgConfigFailed, err)
	}
	opts, closers, err := cfg.Options()
	if err != nil {
		return nil, nil, failure(ErrMsgEngineFailed, err)
	}
	cleanup := func() {
		for _, c := range closers {
			_ = c()
		}
		_ = logger.Sync()
	}

	opts = append(opts, tagtree.WithLogger(logger))
	engine, err := tagtree.New(opts...)
	if err != nil {
		cleanup()
		return nil, nil, failure(ErrMsgEngineFailed, err)
	}
	return engine, cleanup, nil
}
