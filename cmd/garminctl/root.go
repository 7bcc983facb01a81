package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/garminconnect"
	"github.com/dmitrymomot/garminconnect/pkg/config"
	"github.com/dmitrymomot/garminconnect/pkg/logger"
)

const defaultEnvFile = ".env"

// globalOptions holds the persistent flags shared by all subcommands.
type globalOptions struct {
	envFile   string
	output    string
	logLevel  string
	logFormat string
}

// NewRootCmd creates the root command for the garminctl CLI.
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "garminctl",
		Short: "garminctl - Garmin Connect from the command line",
		Long: `garminctl signs in to Garmin Connect with the GARMIN_EMAIL and
GARMIN_PASSWORD credentials and prints health, device and activity data.
Variables may also come from an env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return g.validate()
		},
	}

	cmd.PersistentFlags().StringVar(&g.envFile, "env-file", defaultEnvFile, "env file with GARMIN_* variables")
	cmd.PersistentFlags().StringVarP(&g.output, "output", "o", "json", "output format: json or yaml")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", "log format: text or json")

	cmd.AddCommand(newLoginCmd(g))
	cmd.AddCommand(newSummaryCmd(g))
	cmd.AddCommand(newDevicesCmd(g))
	cmd.AddCommand(newAlarmsCmd(g))
	cmd.AddCommand(newActivitiesCmd(g))
	cmd.AddCommand(newDownloadCmd(g))

	return cmd
}

func (g *globalOptions) validate() error {
	if g.output != "json" && g.output != "yaml" {
		return fmt.Errorf("unsupported output format %q", g.output)
	}
	if _, err := logger.ParseLevel(g.logLevel); err != nil {
		return err
	}
	if g.logFormat != string(logger.FormatText) && g.logFormat != string(logger.FormatJSON) {
		return fmt.Errorf("unsupported log format %q", g.logFormat)
	}
	return nil
}

// envOptions returns the config options for the env file flag. The default
// file may be absent; an explicitly named one must exist.
func (g *globalOptions) envOptions() []config.Option {
	if g.envFile == "" {
		return nil
	}
	opts := []config.Option{config.WithEnvFile(g.envFile)}
	if g.envFile == defaultEnvFile {
		opts = append(opts, config.WithOptionalEnvFiles())
	}
	return opts
}

func (g *globalOptions) logger(w io.Writer) *slog.Logger {
	level, _ := logger.ParseLevel(g.logLevel)
	return logger.New(
		logger.WithLevel(level),
		logger.WithFormat(logger.Format(g.logFormat)),
		logger.WithOutput(w),
		logger.WithAttr(logger.Component("garminctl")),
	)
}

// session loads the configuration, logs in and returns the client with a
// function that logs out again.
func (g *globalOptions) session(cmd *cobra.Command) (*garminconnect.Client, func(), error) {
	cfg, err := garminconnect.LoadConfig(g.envOptions()...)
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	log := g.logger(cmd.ErrOrStderr())
	client, err := garminconnect.NewFromConfig(cfg, garminconnect.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}

	ctx := cmd.Context()
	if _, err := client.Login(ctx); err != nil {
		return nil, nil, fmt.Errorf("login: %w", err)
	}

	logout := func() {
		client.Logout(context.WithoutCancel(ctx))
	}
	return client, logout, nil
}

// printJSON writes a raw API body in the selected output format.
func (g *globalOptions) printJSON(w io.Writer, body json.RawMessage) error {
	if len(body) == 0 {
		body = json.RawMessage("null")
	}

	if g.output == "json" {
		var buf bytes.Buffer
		if err := json.Indent(&buf, body, "", "  "); err != nil {
			return fmt.Errorf("format json: %w", err)
		}
		buf.WriteByte('\n')
		_, err := w.Write(buf.Bytes())
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return g.printValue(w, v)
}

// printValue writes v in the selected output format.
func (g *globalOptions) printValue(w io.Writer, v any) error {
	switch g.output {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("format yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return errors.New("unsupported output format")
	}
}
