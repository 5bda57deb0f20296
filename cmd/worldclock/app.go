package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/worldclock/pkg/appstate"
	"github.com/codeGROOVE-dev/worldclock/pkg/client"
	"github.com/codeGROOVE-dev/worldclock/pkg/httpcache"
	"github.com/codeGROOVE-dev/worldclock/pkg/tzconvert"
	"github.com/codeGROOVE-dev/worldclock/pkg/worldclock"
	"github.com/spf13/cobra"
)

// app is what every command works with, built once per invocation.
type app struct {
	logger *slog.Logger
	dir    *worldclock.Directory
	store  appstate.Store
	state  *appstate.State
	client *client.Client
	cache  *httpcache.Cache
	cfg    fileConfig
	out    io.Writer
	dirty  bool
}

// flags shared by every command.
type rootFlags struct {
	statePath  string
	server     string
	configPath string
	verbose    bool
	noCache    bool
}

func newApp(ctx context.Context, cmd *cobra.Command, f *rootFlags) (*app, error) {
	level := slog.LevelError
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	configPath, explicit := f.configPath, f.configPath != ""
	if !explicit {
		configPath = defaultConfigPath()
	}
	cfg, err := loadConfig(configPath, explicit)
	if err != nil {
		return nil, err
	}

	statePath := f.statePath
	if statePath == "" {
		statePath = cfg.State
	}
	if statePath == "" {
		if statePath, err = appstate.DefaultPath(); err != nil {
			return nil, err
		}
	}
	store := appstate.NewFileStore(statePath, logger)
	state, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	a := &app{
		logger: logger,
		dir:    worldclock.New(worldclock.WithLogger(logger)),
		store:  store,
		state:  state,
		cfg:    cfg,
		out:    cmd.OutOrStdout(),
	}

	server := f.server
	if server == "" {
		server = os.Getenv("WORLDCLOCK_SERVER")
	}
	if server == "" {
		server = cfg.Server
	}
	if server != "" {
		opts := []client.Option{client.WithLogger(logger)}
		if !f.noCache {
			if a.cache, err = openCache(ctx, cfg.CacheDir, logger); err != nil {
				logger.Warn("response cache disabled", "error", err)
			} else {
				opts = append(opts, client.WithCache(a.cache))
			}
		}
		if a.client, err = client.New(server, opts...); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func openCache(ctx context.Context, dir string, logger *slog.Logger) (*httpcache.Cache, error) {
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("locating cache directory: %w", err)
		}
		dir = filepath.Join(base, "worldclock")
	}
	return httpcache.NewPersistent(ctx, dir, time.Hour, logger)
}

// close saves the state if a command changed it and flushes the response cache.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.dirty {
		errs = append(errs, a.store.Save(ctx, a.state))
	}
	if a.cache != nil {
		a.logger.Debug("closing response cache", "stats", a.cache.Stats())
		errs = append(errs, a.cache.Close())
	}
	return errors.Join(errs...)
}

func (a *app) changed() {
	a.dirty = true
}

func (a *app) prefs() appstate.Preferences {
	return a.cfg.overlay(a.state.Preferences())
}

func (a *app) format() worldclock.FormatSpec {
	p := a.prefs()
	spec := worldclock.FullFormat
	spec.Second = p.ShowSeconds
	spec.Hour12 = p.Hour12
	return spec
}

// resolve finds a city by IANA id, then by search. Zones outside the catalog
// still resolve if the timezone database knows them.
func (a *app) resolve(arg string) (worldclock.Record, error) {
	arg = strings.TrimSpace(arg)
	if rec, ok := a.dir.FindByIANA(arg); ok {
		return rec, nil
	}
	if hits := a.dir.Search(arg, 1); len(hits) > 0 {
		return hits[0], nil
	}
	if _, err := a.dir.Zone(arg); err != nil {
		return worldclock.Record{}, fmt.Errorf("no city or timezone matches %q: %w", arg, err)
	}
	return worldclock.Record{Name: arg, IANA: arg, Country: "-", Offset: tzconvert.FormatOffset(a.dir.OffsetHours(arg))}, nil
}
