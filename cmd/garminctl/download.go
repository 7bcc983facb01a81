package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/garminconnect"
	"github.com/dmitrymomot/garminconnect/pkg/config"
	"github.com/dmitrymomot/garminconnect/pkg/export"
)

// exportConfig configures the S3 target, read from GARMIN_EXPORT_* variables.
type exportConfig struct {
	Bucket         string `env:"BUCKET"`
	Region         string `env:"REGION" envDefault:"us-east-1"`
	Prefix         string `env:"PREFIX"`
	AccessKeyID    string `env:"ACCESS_KEY_ID"`
	SecretKey      string `env:"SECRET_KEY"`
	Endpoint       string `env:"ENDPOINT"`
	BaseURL        string `env:"BASE_URL"`
	ForcePathStyle bool   `env:"FORCE_PATH_STYLE"`
}

type downloadConfig struct {
	format string
	dir    string
	s3     bool
}

// newDownloadCmd creates the download subcommand.
func newDownloadCmd(g *globalOptions) *cobra.Command {
	cfg := &downloadConfig{}

	cmd := &cobra.Command{
		Use:   "download <activity-id>...",
		Short: "Export activity files to a directory or S3",
		Long: `Download activities in the selected format and store them as
activities/<id>.<ext> under --dir, or in the S3 bucket configured by
GARMIN_EXPORT_BUCKET and GARMIN_EXPORT_REGION when --s3 is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := garminconnect.ParseDownloadFormat(cfg.format)
			if err != nil {
				return err
			}
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil || id <= 0 {
					return fmt.Errorf("invalid activity id %q", arg)
				}
				ids = append(ids, id)
			}

			store, err := g.storage(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			client, logout, err := g.session(cmd)
			if err != nil {
				return err
			}
			defer logout()

			files := make([]*export.File, 0, len(ids))
			for _, id := range ids {
				f, err := client.ExportActivity(cmd.Context(), store, id, format)
				if err != nil {
					return fmt.Errorf("activity %d: %w", id, err)
				}
				files = append(files, f)
			}
			return g.printValue(cmd.OutOrStdout(), files)
		},
	}

	cmd.Flags().StringVarP(&cfg.format, "format", "f", "tcx", "file format: original, tcx, gpx, kml, csv")
	cmd.Flags().StringVar(&cfg.dir, "dir", "exports", "local export directory")
	cmd.Flags().BoolVar(&cfg.s3, "s3", false, "store in S3 instead of --dir")

	return cmd
}

func (g *globalOptions) storage(ctx context.Context, cfg *downloadConfig) (export.Storage, error) {
	if !cfg.s3 {
		return export.NewLocalStorage(cfg.dir, "")
	}

	opts := append([]config.Option{config.WithPrefix(garminconnect.EnvPrefix + "EXPORT_")}, g.envOptions()...)
	ec, err := config.Load[exportConfig](opts...)
	if err != nil {
		return nil, fmt.Errorf("load export configuration: %w", err)
	}
	return export.NewS3Storage(ctx, export.S3Config{
		Bucket:         ec.Bucket,
		Region:         ec.Region,
		Prefix:         ec.Prefix,
		AccessKeyID:    ec.AccessKeyID,
		SecretKey:      ec.SecretKey,
		Endpoint:       ec.Endpoint,
		BaseURL:        ec.BaseURL,
		ForcePathStyle: ec.ForcePathStyle,
	})
}
