package main

import (
	"fmt"
	"log/slog"

	"github.com/Zuo-Peng/slackprep/internal/config"
	"github.com/Zuo-Peng/slackprep/internal/index"
	"github.com/Zuo-Peng/slackprep/internal/logger"
	"github.com/Zuo-Peng/slackprep/internal/pipeline"
	"github.com/Zuo-Peng/slackprep/internal/scan"
	"github.com/Zuo-Peng/slackprep/internal/users"
)

type globalFlags struct {
	configPath string
	logLevel   string
}

// load reads the configuration and builds the logger for a command.
func (g *globalFlags) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	log := logger.New(cfg.LogLevel)
	if cfg.Source != "" {
		log.Debug("loaded config", "path", cfg.Source)
	}
	return cfg, log, nil
}

func pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		AbsoluteTimestamps: cfg.AbsoluteTimestamps,
		Filters:            cfg.Filters,
	}
}

// openExport scans the export under cfg.InputDir and builds a pipeline
// over its user directory.
func openExport(cfg *config.Config, log *slog.Logger) (*scan.Export, *pipeline.Pipeline, error) {
	exp, err := scan.ScanExport(cfg.InputDir)
	if err != nil {
		return nil, nil, err
	}
	dir, err := users.Load(exp.UsersPath())
	if err != nil {
		return nil, nil, err
	}
	p, err := pipeline.New(dir, pipelineOptions(cfg), log)
	if err != nil {
		return nil, nil, err
	}
	log.Debug("opened export", "root", exp.Root, "conversations", len(exp.List()), "users", dir.Len())
	return exp, p, nil
}

// refreshIndex brings the index up to date with the export.
func refreshIndex(db *index.DB, cfg *config.Config, log *slog.Logger) (index.Stats, error) {
	if err := db.EnsureSettings(index.Fingerprint(pipelineOptions(cfg))); err != nil {
		return index.Stats{}, fmt.Errorf("index settings: %w", err)
	}
	exp, p, err := openExport(cfg, log)
	if err != nil {
		return index.Stats{}, err
	}
	return index.IndexAll(db, exp, p, log)
}

// openIndex opens the database and, unless skipped, refreshes it first.
// A refresh failure is logged and the existing index is used.
func openIndex(cfg *config.Config, log *slog.Logger, refresh bool) (*index.DB, error) {
	db, err := index.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if refresh {
		if stats, err := refreshIndex(db, cfg, log); err != nil {
			log.Warn("index refresh failed", "error", err)
		} else {
			log.Debug("index refreshed", "stats", stats.String())
		}
	}
	return db, nil
}
