package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/worldclock/pkg/appstate"
	"github.com/codeGROOVE-dev/worldclock/pkg/board"
	"github.com/codeGROOVE-dev/worldclock/pkg/worldclock"
	"github.com/spf13/cobra"
)

func printRecords(a *app, records []worldclock.Record) {
	if len(records) == 0 {
		dimColor.Fprintln(a.out, "  (none)")
		return
	}
	for _, r := range records {
		star := " "
		if a.state.IsFavorite(r.IANA) {
			star = "★"
		}
		fmt.Fprintf(a.out, "%s %s %s  %s  ", star, r.Flag, r.Name, r.Country)
		dimColor.Fprintf(a.out, "%s  UTC%s\n", r.IANA, r.Offset)
	}
}

func newSearchCmd(getApp func() *app) *cobra.Command {
	var (
		region string
		limit  int
		add    bool
	)
	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search the city catalog",
		Long: `Search cities by name, country or IANA timezone id.

Examples:
  worldclock search 美国
  worldclock search tokyo --add
  worldclock search "" --region 欧洲`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			keyword := ""
			if len(args) == 1 {
				keyword = args[0]
			}

			var (
				results []worldclock.Record
				total   int
			)
			if a.client != nil {
				res, err := a.client.Search(cmd.Context(), keyword, worldclock.Region(region), limit)
				if err != nil {
					return err
				}
				results, total = res.Cities, res.Total
			} else {
				results = a.dir.SearchRegion(keyword, worldclock.Region(region), limit)
				total = len(results)
			}

			if strings.TrimSpace(keyword) != "" {
				a.state.AddSearch(keyword)
				a.changed()
			}

			titleColor.Fprintf(a.out, "🔍 %d cities\n", total)
			printRecords(a, results)

			if add && len(results) > 0 {
				if a.state.AddCity(results[0]) {
					a.changed()
					okColor.Fprintf(a.out, "Added %s to the board\n", results[0].Name)
				} else {
					dimColor.Fprintf(a.out, "%s is already on the board\n", results[0].Name)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&region, "region", "", "Only cities in this region (亚洲, 欧洲, 美洲, 大洋洲, 非洲)")
	cmd.Flags().IntVar(&limit, "limit", worldclock.DefaultSearchLimit, "Maximum number of results")
	cmd.Flags().BoolVar(&add, "add", false, "Add the best match to the board")
	return cmd
}

// wallClockLayouts are accepted by convert, most specific first.
var wallClockLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
}

// parseWallClock reads s as wall-clock fields. A bare "15:04" uses today's date.
func parseWallClock(s string, today time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range wallClockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := today.Date()
			return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot read %q as a time, try \"2006-01-02 15:04\"", s)
}

func newConvertCmd(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <time> <from> <to>",
		Short: "Convert a time between two cities or timezones",
		Long: `Convert a wall-clock time from one city or timezone to another.
Cities may be given by name or IANA id.

Examples:
  worldclock convert "2025-01-15 20:00" 北京 纽约
  worldclock convert 09:30 Europe/London Asia/Tokyo`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			t, err := parseWallClock(args[0], a.dir.Now())
			if err != nil {
				return err
			}
			from, err := a.resolve(args[1])
			if err != nil {
				return err
			}
			to, err := a.resolve(args[2])
			if err != nil {
				return err
			}

			var (
				source, result string
				difference     float64
			)
			spec := a.format()
			if a.client != nil {
				conv, err := a.client.Convert(cmd.Context(), t, from.IANA, to.IANA)
				if err != nil {
					return err
				}
				source, result, difference = conv.Source, conv.Formatted, conv.Difference
			} else {
				converted, err := a.dir.ConvertWallClock(t, from.IANA, to.IANA)
				if err != nil {
					return err
				}
				source = a.dir.FormatTime(t, "UTC", spec)
				result = a.dir.FormatTime(converted, "UTC", spec)
				difference = a.dir.TimeDifferenceHours(to.IANA, from.IANA)
			}

			a.state.AddConversion(appstate.Conversion{From: from, To: to, Time: source, Result: result})
			a.changed()

			fmt.Fprintf(a.out, "%s %s  %s\n", from.Flag, from.Name, source)
			okColor.Fprintf(a.out, "%s %s  %s", to.Flag, to.Name, result)
			dimColor.Fprintf(a.out, "  (%s)\n", board.Difference(difference))
			return nil
		},
	}
}

func newZoneCmd(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "zone [city or timezone]",
		Short: "Show details of the current moment in one zone",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			id := a.prefs().LocalTimezone
			if len(args) == 1 {
				rec, err := a.resolve(args[0])
				if err != nil {
					return err
				}
				id = rec.IANA
			}

			var info worldclock.ZoneInfo
			if a.client != nil {
				infos, err := a.client.WorldTime(cmd.Context(), id)
				if err != nil {
					return err
				}
				info = infos[0]
			} else {
				var err error
				if info, err = a.dir.Snapshot(id); err != nil {
					return err
				}
			}

			titleColor.Fprintf(a.out, "🕐 %s\n", info.Timezone)
			fmt.Fprintf(a.out, "  time:        %s\n", info.Formatted)
			fmt.Fprintf(a.out, "  date:        %s\n", info.DateInfo)
			fmt.Fprintf(a.out, "  offset:      UTC%s\n", formatHours(info.Offset))
			fmt.Fprintf(a.out, "  dst:         %t\n", info.IsDST)
			fmt.Fprintf(a.out, "  day of year: %d\n", info.DayOfYear)
			return nil
		},
	}
}

func formatHours(h float64) string {
	d := board.Difference(h)
	if d == "same" {
		return "+0h"
	}
	return d
}

func newCitiesCmd(getApp func() *app) *cobra.Command {
	list := func(*cobra.Command, []string) error {
		a := getApp()
		titleColor.Fprintln(a.out, "📍 Selected cities")
		printRecords(a, a.state.Cities())
		return nil
	}
	cmd := &cobra.Command{
		Use:   "cities",
		Short: "Manage the cities on the board",
		Args:  cobra.NoArgs,
		RunE:  list,
	}
	cmd.AddCommand(
		&cobra.Command{Use: "list", Short: "List selected cities", Args: cobra.NoArgs, RunE: list},
		&cobra.Command{
			Use:   "add <city>...",
			Short: "Add cities to the board",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				a := getApp()
				for _, arg := range args {
					rec, err := a.resolve(arg)
					if err != nil {
						return err
					}
					if a.state.AddCity(rec) {
						a.changed()
						okColor.Fprintf(a.out, "Added %s (%s)\n", rec.Name, rec.IANA)
					} else {
						dimColor.Fprintf(a.out, "%s (%s) is already on the board\n", rec.Name, rec.IANA)
					}
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <city>...",
			Short: "Remove cities from the board",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				a := getApp()
				for _, arg := range args {
					rec, err := a.resolve(arg)
					if err != nil {
						return err
					}
					if !a.state.RemoveCity(rec.IANA) {
						return fmt.Errorf("%s is not on the board", arg)
					}
					a.changed()
					okColor.Fprintf(a.out, "Removed %s\n", rec.IANA)
				}
				return nil
			},
		},
	)
	return cmd
}

func newFavCmd(getApp func() *app) *cobra.Command {
	list := func(*cobra.Command, []string) error {
		a := getApp()
		titleColor.Fprintln(a.out, "★ Favorites")
		printRecords(a, a.state.Favorites())
		return nil
	}
	edit := func(use, short string, apply func(a *app, rec worldclock.Record) string) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <city>...",
			Short: short,
			Args:  cobra.MinimumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				a := getApp()
				for _, arg := range args {
					rec, err := a.resolve(arg)
					if err != nil {
						return err
					}
					fmt.Fprintln(a.out, apply(a, rec))
				}
				return nil
			},
		}
	}

	cmd := &cobra.Command{
		Use:   "fav",
		Short: "Manage favorite cities",
		Args:  cobra.NoArgs,
		RunE:  list,
	}
	cmd.AddCommand(
		&cobra.Command{Use: "list", Short: "List favorites", Args: cobra.NoArgs, RunE: list},
		edit("add", "Mark cities as favorite", func(a *app, rec worldclock.Record) string {
			if !a.state.AddFavorite(rec) {
				return rec.Name + " is already a favorite"
			}
			a.changed()
			return "★ " + rec.Name
		}),
		edit("remove", "Unmark favorite cities", func(a *app, rec worldclock.Record) string {
			if !a.state.RemoveFavorite(rec.IANA) {
				return rec.Name + " was not a favorite"
			}
			a.changed()
			return "☆ " + rec.Name
		}),
		edit("toggle", "Flip the favorite mark", func(a *app, rec worldclock.Record) string {
			a.changed()
			if a.state.ToggleFavorite(rec) {
				return "★ " + rec.Name
			}
			return "☆ " + rec.Name
		}),
	)
	return cmd
}

func newHistoryCmd(getApp func() *app) *cobra.Command {
	var clearHistory bool

	searches := func(a *app, all bool) {
		titleColor.Fprintln(a.out, "🔍 Recent searches")
		h := a.state.RecentSearches()
		if all {
			h = a.state.SearchHistory()
		}
		if len(h) == 0 {
			dimColor.Fprintln(a.out, "  (none)")
		}
		for i, kw := range h {
			fmt.Fprintf(a.out, "  %2d. %s\n", i+1, kw)
		}
	}
	conversions := func(a *app) {
		titleColor.Fprintln(a.out, "🔁 Conversions")
		h := a.state.ConversionHistory()
		if len(h) == 0 {
			dimColor.Fprintln(a.out, "  (none)")
		}
		for _, c := range h {
			when := a.dir.RelativeTime(time.UnixMilli(c.Timestamp))
			fmt.Fprintf(a.out, "  %s %s → %s %s  ", c.From.Name, c.Time, c.To.Name, c.Result)
			dimColor.Fprintf(a.out, "%s\n", when)
		}
	}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent searches and conversions",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			a := getApp()
			searches(a, false)
			conversions(a)
			return nil
		},
	}

	searchCmd := &cobra.Command{
		Use:   "searches",
		Short: "Show or clear the search history",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			a := getApp()
			if clearHistory {
				a.state.ClearSearchHistory()
				a.changed()
				okColor.Fprintln(a.out, "Search history cleared")
				return nil
			}
			searches(a, true)
			return nil
		},
	}
	conversionCmd := &cobra.Command{
		Use:   "conversions",
		Short: "Show or clear the conversion history",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			a := getApp()
			if clearHistory {
				a.state.ClearConversionHistory()
				a.changed()
				okColor.Fprintln(a.out, "Conversion history cleared")
				return nil
			}
			conversions(a)
			return nil
		},
	}
	cmd.PersistentFlags().BoolVar(&clearHistory, "clear", false, "Clear instead of showing")
	cmd.AddCommand(searchCmd, conversionCmd)
	return cmd
}

func newPrefsCmd(getApp func() *app) *cobra.Command {
	var (
		local    string
		hour12   bool
		seconds  bool
		refresh  time.Duration
		autoSync bool
		reset    bool
	)
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change display preferences",
		Long: `Show or change display preferences.

Examples:
  worldclock prefs
  worldclock prefs --local Europe/Berlin --hour12
  worldclock prefs --seconds=false
  worldclock prefs --reset`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			if reset {
				a.state.Reset()
				a.changed()
				okColor.Fprintln(a.out, "State reset to defaults")
				return nil
			}

			p := a.state.Preferences()
			f := cmd.Flags()
			if f.Changed("local") {
				if _, err := a.dir.Zone(local); err != nil {
					return err
				}
				p.LocalTimezone = local
			}
			if f.Changed("hour12") {
				p.Hour12 = hour12
			}
			if f.Changed("seconds") {
				p.ShowSeconds = seconds
			}
			if f.Changed("refresh") {
				if refresh <= 0 {
					return errors.New("refresh interval must be positive")
				}
				p.RefreshInterval = refresh
			}
			if f.Changed("auto-refresh") {
				p.AutoRefresh = autoSync
			}
			if p != a.state.Preferences() {
				a.state.SetPreferences(p)
				a.changed()
			}

			p = a.prefs()
			titleColor.Fprintln(a.out, "⚙️  Preferences")
			fmt.Fprintf(a.out, "  local timezone:   %s\n", p.LocalTimezone)
			fmt.Fprintf(a.out, "  show seconds:     %t\n", p.ShowSeconds)
			fmt.Fprintf(a.out, "  12-hour clock:    %t\n", p.Hour12)
			fmt.Fprintf(a.out, "  auto refresh:     %t\n", p.AutoRefresh)
			fmt.Fprintf(a.out, "  refresh interval: %s\n", p.RefreshInterval)
			return nil
		},
	}
	cmd.Flags().StringVar(&local, "local", "", "Timezone differences are measured against")
	cmd.Flags().BoolVar(&hour12, "hour12", false, "Use a 12-hour clock")
	cmd.Flags().BoolVar(&seconds, "seconds", true, "Show seconds")
	cmd.Flags().DurationVar(&refresh, "refresh", time.Second, "Board refresh interval for watch")
	cmd.Flags().BoolVar(&autoSync, "auto-refresh", true, "Refresh the board automatically")
	cmd.Flags().BoolVar(&reset, "reset", false, "Restore default cities, history and preferences")
	return cmd
}
