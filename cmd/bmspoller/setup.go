// cmd/bmspoller/setup.go
package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tamzrod/bms-poller/internal/config"
	"github.com/tamzrod/bms-poller/internal/writer"
	"github.com/tamzrod/bms-poller/internal/writer/console"
	"github.com/tamzrod/bms-poller/internal/writer/csvlog"
	"github.com/tamzrod/bms-poller/internal/writer/metrics"
	"github.com/tamzrod/bms-poller/internal/writer/sqlite"
)

// loadConfig runs Load, Validate and Normalize in that order.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

// buildWriter opens every enabled sink. The sqlite store is returned as well
// because it also keeps the machine uptime table; it is nil when disabled.
func buildWriter(o config.OutputsConfig, log zerolog.Logger) (writer.Writer, *sqlite.Store, error) {
	var (
		sinks []writer.Sink
		store *sqlite.Store
	)

	fail := func(err error) (writer.Writer, *sqlite.Store, error) {
		_ = writer.New(sinks...).Close()
		return nil, nil, err
	}

	if o.Console.Enabled {
		sinks = append(sinks, console.New(nil))
	}
	if o.CSV.Path != "" {
		l, err := csvlog.Open(csvlog.Config{Path: o.CSV.Path, RetentionDays: o.CSV.RetentionDays})
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, l)
	}
	if o.SQLite.Path != "" {
		s, err := sqlite.Open(o.SQLite.Path)
		if err != nil {
			return fail(err)
		}
		store = s
		sinks = append(sinks, s)
	}
	if o.Metrics.Listen != "" {
		e := metrics.New(log)
		e.Serve(o.Metrics.Listen)
		sinks = append(sinks, e)
	}

	for _, s := range sinks {
		log.Info().Str("sink", s.Name()).Msg("output enabled")
	}
	return writer.New(sinks...), store, nil
}
