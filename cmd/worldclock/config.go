package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codeGROOVE-dev/worldclock/pkg/appstate"
	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML configuration. Command-line flags win over it.
//
//	server: http://localhost:8080
//	state: ~/.config/worldclock/state.json
//	cache_dir: ~/.cache/worldclock
//	local_timezone: Europe/Berlin
//	hour12: true
//	show_seconds: false
type fileConfig struct {
	ShowSeconds   *bool  `yaml:"show_seconds"`
	Hour12        *bool  `yaml:"hour12"`
	Server        string `yaml:"server"`
	State         string `yaml:"state"`
	CacheDir      string `yaml:"cache_dir"`
	LocalTimezone string `yaml:"local_timezone"`
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "worldclock", "config.yaml")
}

// loadConfig reads path. A missing file is only an error when the path was given explicitly.
func loadConfig(path string, explicit bool) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.State = expandHome(cfg.State)
	cfg.CacheDir = expandHome(cfg.CacheDir)
	return cfg, nil
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// overlay applies configured display settings on top of stored preferences.
func (c fileConfig) overlay(p appstate.Preferences) appstate.Preferences {
	if c.LocalTimezone != "" {
		p.LocalTimezone = c.LocalTimezone
	}
	if c.Hour12 != nil {
		p.Hour12 = *c.Hour12
	}
	if c.ShowSeconds != nil {
		p.ShowSeconds = *c.ShowSeconds
	}
	return p
}
