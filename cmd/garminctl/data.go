package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/garminconnect"
)

// newLoginCmd creates the login subcommand.
func newLoginCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Check the credentials by signing in and out",
		Long:  `Run the full sign-in handshake, print the account identity and log out.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, logout, err := g.session(cmd)
			if err != nil {
				return err
			}
			defer logout()

			return g.printValue(cmd.OutOrStdout(), map[string]string{
				"username":     client.Username(),
				"display_name": client.DisplayName(),
			})
		},
	}
}

// summaryKinds maps the --kind flag to a daily accessor.
var summaryKinds = map[string]func(*garminconnect.Client, context.Context, time.Time) (json.RawMessage, error){
	"summary":   (*garminconnect.Client).GetUserSummary,
	"body":      (*garminconnect.Client).GetBodyComposition,
	"heart":     (*garminconnect.Client).GetHeartRates,
	"sleep":     (*garminconnect.Client).GetSleepData,
	"steps":     (*garminconnect.Client).GetStepsData,
	"hydration": (*garminconnect.Client).GetHydrationData,
}

type summaryConfig struct {
	date string
	kind string
}

// newSummaryCmd creates the summary subcommand.
func newSummaryCmd(g *globalOptions) *cobra.Command {
	cfg := &summaryConfig{}

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print daily health data",
		Long: `Print one day of health data. --kind selects the dataset:
summary, body, heart, sleep, steps or hydration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fetch, ok := summaryKinds[cfg.kind]
			if !ok {
				return fmt.Errorf("unknown summary kind %q", cfg.kind)
			}
			day, err := parseDate(cfg.date)
			if err != nil {
				return err
			}

			client, logout, err := g.session(cmd)
			if err != nil {
				return err
			}
			defer logout()

			body, err := fetch(client, cmd.Context(), day)
			if err != nil {
				return err
			}
			return g.printJSON(cmd.OutOrStdout(), body)
		},
	}

	cmd.Flags().StringVar(&cfg.date, "date", "", "calendar date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&cfg.kind, "kind", "summary", "dataset: summary, body, heart, sleep, steps, hydration")

	return cmd
}

// newDevicesCmd creates the devices subcommand.
func newDevicesCmd(g *globalOptions) *cobra.Command {
	var lastUsed bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List registered devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, logout, err := g.session(cmd)
			if err != nil {
				return err
			}
			defer logout()

			var body json.RawMessage
			if lastUsed {
				body, err = client.GetDeviceLastUsed(cmd.Context())
			} else {
				body, err = client.GetDevices(cmd.Context())
			}
			if err != nil {
				return err
			}
			return g.printJSON(cmd.OutOrStdout(), body)
		},
	}

	cmd.Flags().BoolVar(&lastUsed, "last-used", false, "show only the device that synced last")

	return cmd
}

// newAlarmsCmd creates the alarms subcommand.
func newAlarmsCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "alarms",
		Short: "List the alarms of all devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, logout, err := g.session(cmd)
			if err != nil {
				return err
			}
			defer logout()

			alarms, err := client.GetDeviceAlarms(cmd.Context())
			if err != nil {
				return err
			}
			body, err := json.Marshal(alarms)
			if err != nil {
				return err
			}
			return g.printJSON(cmd.OutOrStdout(), body)
		},
	}
}

type activitiesConfig struct {
	start        int
	limit        int
	from         string
	to           string
	activityType string
}

// newActivitiesCmd creates the activities subcommand.
func newActivitiesCmd(g *globalOptions) *cobra.Command {
	cfg := &activitiesConfig{}

	cmd := &cobra.Command{
		Use:   "activities",
		Short: "List activities",
		Long: `List one page of activities, newest first. With --from, --to or
--type the list is filtered by date range and activity type.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := garminconnect.ActivityQuery{
				ActivityType: cfg.activityType,
				Start:        cfg.start,
				Limit:        cfg.limit,
			}
			var err error
			if cfg.from != "" {
				if q.StartDate, err = parseDate(cfg.from); err != nil {
					return err
				}
			}
			if cfg.to != "" {
				if q.EndDate, err = parseDate(cfg.to); err != nil {
					return err
				}
			}

			client, logout, err := g.session(cmd)
			if err != nil {
				return err
			}
			defer logout()

			var body json.RawMessage
			if q.StartDate.IsZero() && q.EndDate.IsZero() && q.ActivityType == "" {
				body, err = client.GetActivities(cmd.Context(), q.Start, q.Limit)
			} else {
				body, err = client.GetActivitiesByDate(cmd.Context(), q)
			}
			if err != nil {
				return err
			}
			return g.printJSON(cmd.OutOrStdout(), body)
		},
	}

	cmd.Flags().IntVar(&cfg.start, "start", 0, "index of the first activity")
	cmd.Flags().IntVar(&cfg.limit, "limit", 20, "page size")
	cmd.Flags().StringVar(&cfg.from, "from", "", "first day YYYY-MM-DD")
	cmd.Flags().StringVar(&cfg.to, "to", "", "last day YYYY-MM-DD")
	cmd.Flags().StringVar(&cfg.activityType, "type", "", "activity type, e.g. running or cycling")

	return cmd
}

// parseDate parses YYYY-MM-DD in local time; "" means today.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}
