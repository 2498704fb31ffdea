package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/klokku/calbar/internal/config"
	"github.com/klokku/calbar/pkg/display"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the calbar command tree.
func NewRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "calbar",
		Short:         "Personal calendar aggregator for status bars",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "path to the configuration file")

	withApp := func(run func(cmd *cobra.Command, args []string, a *Application) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := NewApplication(configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			return run(cmd, args, a)
		}
	}

	root.AddCommand(
		newSyncCommand(withApp),
		newNextCommand(withApp),
		newAgendaCommand(withApp),
		newCalendarsCommand(withApp),
		newToggleCommand(withApp),
		newAuthCommand(withApp),
		newServeCommand(withApp),
	)
	return root
}

type appRunner func(run func(cmd *cobra.Command, args []string, a *Application) error) func(*cobra.Command, []string) error

func newSyncCommand(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch calendars and events from all sources",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *Application) error {
			report, err := a.deps.Syncer.Run(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %d calendar(s) and %d event(s)\n", report.Calendars, report.Events)
			for _, e := range report.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", e)
			}
			return err
		}),
	}
}

func newNextCommand(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Print the next event as a waybar status line",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *Application) error {
			event, ok, err := a.deps.CalendarService.NextEvent(cmd.Context(), a.cfg.Display.NextWithin)
			if err != nil || !ok {
				return err
			}
			status := display.StatusLine(event, a.deps.Clock.Now(), a.deps.Location)
			return display.WriteStatus(cmd.OutOrStdout(), status)
		}),
	}
}

func newAgendaCommand(withApp appRunner) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Print upcoming events of active calendars grouped by day",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *Application) error {
			if days <= 0 {
				days = a.cfg.Display.HorizonDays
			}
			now := a.deps.Clock.Now()
			groups, err := a.deps.CalendarService.Agenda(cmd.Context(), now, now.AddDate(0, 0, days), a.deps.Location, a.cfg.Display.DayFormat)
			if err != nil {
				return err
			}
			return display.RenderAgenda(cmd.OutOrStdout(), groups, a.deps.Location)
		}),
	}
	cmd.Flags().IntVar(&days, "days", 0, "number of days to show (defaults to display.horizondays)")
	return cmd
}

func newCalendarsCommand(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "calendars",
		Short: "List known calendars and whether they are active",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *Application) error {
			calendars, err := a.deps.CalendarService.Calendars(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range calendars.Sorted() {
				mark := " "
				if c.Active {
					mark = "x"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s  %s (%s)\n", mark, c.ID, c.Name, c.TimeZone)
			}
			return nil
		}),
	}
}

func newToggleCommand(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <calendar-id> on|off",
		Short: "Show or hide a calendar's events",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *Application) error {
			active, err := parseSwitch(args[1])
			if err != nil {
				return err
			}
			updated, err := a.deps.CalendarService.SetActive(cmd.Context(), args[0], active)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", updated.Name, switchName(updated.Active))
			return nil
		}),
	}
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func switchName(active bool) string {
	if active {
		return "on"
	}
	return "off"
}

func newAuthCommand(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize read access to Google Calendar",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *Application) error {
			return a.deps.GoogleAuth.RunAuthFlow(cmd.Context(), cmd.OutOrStdout())
		}),
	}
}

func newServeCommand(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and periodic sync",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *Application) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Serve(ctx)
		}),
	}
}

func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}
