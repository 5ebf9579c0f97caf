// cmd/airwarn/main.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// airwarn loads OpenAir airspace files, compiling them as needed, and
// can list them or replay a recorded flight track against them to show
// the warnings that would have been raised.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/glidernav/airwarn/airspace"
	"github.com/glidernav/airwarn/config"
	"github.com/glidernav/airwarn/conflict"
	"github.com/glidernav/airwarn/loader"
	"github.com/glidernav/airwarn/log"
	"github.com/glidernav/airwarn/openair"
	"github.com/glidernav/airwarn/projection"

	"github.com/goforj/godump"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	configFile = flag.String("config", "", "configuration file (YAML, JSON or TOML)")
	logLevel   = flag.String("loglevel", "", "logging level: debug, info, warn, error (overrides the configuration)")
	logDir     = flag.String("logdir", "", "log file directory (overrides the configuration)")
	list       = flag.Bool("list", false, "list the loaded airspaces")
	dump       = flag.String("dump", "", "dump the airspaces with the given name")
	trackPath  = flag.String("track", "", "replay a flight track (CSV, optionally zstd-compressed) against the airspaces")
	mappings   = flag.String("mappings", "", "print the class mappings in effect for the given OpenAir file")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logDir != "" {
		cfg.Log.Dir = *logDir
	}

	lg := log.New(cfg.Log.Level, cfg.Log.Dir)

	if *mappings != "" {
		if err := printMappings(os.Stdout, *mappings, lg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	proj, err := cfg.NewProjection()
	if err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	ld, err := loader.New(loader.Options{
		MapDirs:         cfg.MapDirs,
		Files:           cfg.AirspaceFiles,
		Projection:      proj,
		Logger:          lg,
		Registerer:      reg,
		MemoryCacheSize: cfg.MemoryCacheSize,
	})
	if err != nil {
		lg.Errorf("%v", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	repo, st := ld.Load(ctx)
	fmt.Println(st)

	if *list {
		listAirspaces(os.Stdout, repo)
	}
	if *dump != "" {
		for _, a := range repo.Airspaces() {
			if strings.EqualFold(a.Name, *dump) {
				godump.Dump(a.Record)
			}
		}
	}

	if *trackPath != "" {
		var updates chan conflict.Settings
		if *configFile != "" {
			updates = make(chan conflict.Settings, 1)
			err := config.Watch(*configFile, func(c *config.Config, err error) {
				if err != nil {
					lg.Warnf("configuration change ignored: %v", err)
					return
				}
				// Only the latest settings matter.
				select {
				case <-updates:
				default:
				}
				updates <- c.ConflictSettings()
			})
			if err != nil {
				lg.Warnf("%s: not watching for changes: %v", *configFile, err)
			}
		}

		if err := replay(ctx, os.Stdout, *trackPath, repo, proj, cfg.ConflictSettings(), updates, lg, reg); err != nil {
			lg.Errorf("%s: %v", *trackPath, err)
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func listAirspaces(w io.Writer, repo *airspace.Repository) {
	for _, a := range repo.Airspaces() {
		fmt.Fprintf(w, "%-14s %-32s %-10s %-10s %d points\n", a.TypeName(), a.Name, a.Lower, a.Upper, len(a.Points))
	}
}

func printMappings(w io.Writer, path string, lg *log.Logger) error {
	m, err := openair.LoadMapping(openair.MappingPath(path), lg)
	if err != nil {
		return err
	}
	for _, code := range m.Codes() {
		alias, _ := m.Alias(code)
		fmt.Fprintf(w, "%s=%s\n", code, alias)
	}
	return nil
}

// replay feeds the fixes of a track to a conflict aggregator, using the
// fix times as the clock, and prints the resulting warnings. Settings
// received on updates take effect from the next fix.
func replay(ctx context.Context, w io.Writer, path string, repo *airspace.Repository, proj projection.Projection,
	s conflict.Settings, updates <-chan conflict.Settings, lg *log.Logger, reg prometheus.Registerer) error {
	f, err := openTrack(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fixes, err := readTrack(f)
	if err != nil {
		return err
	}

	var now time.Time
	g := conflict.New(repo, proj, s, conflict.Options{
		Logger:     lg,
		Registerer: reg,
		Now:        func() time.Time { return now },
	})

	for _, fx := range fixes {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case s := <-updates:
			g.SetSettings(s)
		default:
		}

		now = fx.Time
		r := g.Tick(fx.Pos, fx.Alts)

		ts := fx.Time.UTC().Format(time.TimeOnly)
		if r.Status != nil {
			kind, text := "status", strings.TrimSpace(r.Status.Text)
			if r.Status.Alarm {
				kind = "ALARM"
			}
			if text == "" {
				text = "(clear)"
			}
			fmt.Fprintf(w, "%s %-6s %s\n", ts, kind, text)
		}
		if r.Popup != nil {
			fmt.Fprintf(w, "%s popup  %s\n", ts, strings.ReplaceAll(r.Popup.Text, "\n", "\n                "))
		}
	}
	return nil
}
