package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"racefeatures/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the racefeatures configuration",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample config.toml",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := configTarget(targetPath)
			if err != nil {
				return err
			}
			if err := refuseExisting(target, overwrite); err != nil {
				return err
			}
			// CreateSample creates the parent directory.
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			defaults := config.Default()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintf(out, "Seasons default to %d-%d; adjust [seasons] from/to or pass --from/--to.\n",
				defaults.Seasons.From, defaults.Seasons.To)
			fmt.Fprintf(out, "CSV files land in %q; change [paths] output_dir to move them.\n", defaults.Paths.OutputDir)
			fmt.Fprintln(out, "Then run: racefeatures features && racefeatures laps")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for config.toml (default ~/.config/racefeatures/config.toml)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func configTarget(flagValue string) (string, error) {
	if target := strings.TrimSpace(flagValue); target != "" {
		expanded, err := config.ExpandPath(target)
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
		return expanded, nil
	}
	path, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("determine default config path: %w", err)
	}
	return path, nil
}

func refuseExisting(target string, overwrite bool) error {
	if overwrite {
		return nil
	}
	_, err := os.Stat(target)
	switch {
	case err == nil:
		return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("check config path: %w", err)
	}
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and show the effective extraction settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			source := ctx.configPath
			if !ctx.configSeen {
				source += " (not found, defaults used)"
			}
			fmt.Fprintf(out, "Config: %s\n", source)
			renderSettings(out, cfg)
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func renderSettings(out io.Writer, cfg *config.Config) {
	cache := cfg.Paths.CacheDir
	if cfg.Provider.DisableCache {
		cache = "disabled"
	}
	logDir := cfg.Paths.LogDir
	if logDir == "" {
		logDir = "console only"
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Setting", "Value"})
	tw.AppendRows([]table.Row{
		{"Seasons", fmt.Sprintf("%d-%d", cfg.Seasons.From, cfg.Seasons.To)},
		{"Session", cfg.Batch.SessionType},
		{"Features CSV", cfg.FeaturesOutputPath()},
		{"Laps CSV", cfg.LapsOutputPath()},
		{"Ergast API", cfg.Provider.ErgastBaseURL},
		{"Live timing", cfg.Provider.LiveTimingBaseURL},
		{"Response cache", cache},
		{"Event delay", cfg.EventDelay().String()},
		{"Request spacing", cfg.MinRequestInterval().String()},
		{"Preview rows", strconv.Itoa(cfg.Batch.PreviewRows)},
		{"Logs", cfg.Logging.Level + " " + cfg.Logging.Format + ", " + logDir},
	})
	fmt.Fprintln(out, tw.Render())
}
