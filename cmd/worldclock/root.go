package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codeGROOVE-dev/worldclock/pkg/board"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	titleColor = color.New(color.FgHiCyan, color.Bold)
	dimColor   = color.New(color.FgHiBlack)
	okColor    = color.New(color.FgHiGreen)
)

func newRootCmd() *cobra.Command {
	var (
		flags rootFlags
		a     *app
	)

	root := &cobra.Command{
		Use:   "worldclock",
		Short: "Show the time around the world",
		Long: `worldclock shows the current time in your selected cities, searches the
city catalog and converts times between timezones.

With --server (or WORLDCLOCK_SERVER) searches, lookups and conversions go
through a worldclock API server; otherwise everything is computed locally.

Examples:
  worldclock                          # board of selected cities
  worldclock search 东京               # find a city
  worldclock cities add 新加坡          # add it to the board
  worldclock convert "2025-01-15 20:00" 北京 纽约`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			var err error
			a, err = newApp(cmd.Context(), cmd, &flags)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a == nil {
				return nil
			}
			return a.close(cmd.Context())
		},
		RunE: func(*cobra.Command, []string) error {
			return runNow(a)
		},
	}

	root.PersistentFlags().StringVar(&flags.statePath, "state", "", "State file (default: user config dir)")
	root.PersistentFlags().StringVar(&flags.server, "server", "", "worldclock API server URL (or set WORLDCLOCK_SERVER)")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML config file (default: user config dir)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().BoolVar(&flags.noCache, "no-cache", false, "Disable the API response cache")

	getApp := func() *app { return a }
	root.AddCommand(
		&cobra.Command{
			Use:   "now",
			Short: "Show the board of selected cities",
			Args:  cobra.NoArgs,
			RunE:  func(*cobra.Command, []string) error { return runNow(a) },
		},
		newWatchCmd(getApp),
		newSearchCmd(getApp),
		newConvertCmd(getApp),
		newZoneCmd(getApp),
		newCitiesCmd(getApp),
		newFavCmd(getApp),
		newHistoryCmd(getApp),
		newPrefsCmd(getApp),
		&cobra.Command{
			Use:   "version",
			Short: "Show version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), "worldclock CLI v1.0.0")
			},
		},
	)
	return root
}

func boardOptions(a *app, title string) board.Options {
	return board.Options{
		Title:    title,
		Local:    a.prefs().LocalTimezone,
		Format:   a.format(),
		Favorite: a.state.IsFavorite,
	}
}

func runNow(a *app) error {
	return board.Render(a.out, a.dir, a.state.Cities(), boardOptions(a, "🌍 World Clock"))
}

func newWatchCmd(getApp func() *app) *cobra.Command {
	var (
		interval time.Duration
		count    int
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh the board until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p := a.prefs()
			if interval <= 0 {
				interval = p.RefreshInterval
			}
			if !p.AutoRefresh && count == 0 {
				count = 1
			}
			return watch(ctx, a, interval, count)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "Refresh interval (default: preference)")
	cmd.Flags().IntVar(&count, "count", 0, "Stop after this many refreshes, 0 runs until interrupted")
	return cmd
}

func watch(ctx context.Context, a *app, interval time.Duration, count int) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n := 1; ; n++ {
		fmt.Fprint(a.out, "\033[H\033[2J")
		if err := runNow(a); err != nil {
			return err
		}
		if count > 0 && n >= count {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
