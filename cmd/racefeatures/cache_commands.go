package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"racefeatures/internal/provider/httpcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the HTTP response cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show response cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCache(cmd, ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Path:    %s\n", stats.Path)
			fmt.Fprintf(out, "Entries: %s\n", humanize.Comma(stats.Entries))
			fmt.Fprintf(out, "Size:    %s\n", humanize.IBytes(uint64(max(stats.Bytes, 0))))
			if stats.Entries == 0 {
				return nil
			}
			fmt.Fprintf(out, "Oldest:  %s\n", humanize.Time(stats.Oldest))
			fmt.Fprintf(out, "Newest:  %s\n", humanize.Time(stats.Newest))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached response",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCache(cmd, ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			if removed == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Cache already empty")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s cached responses\n", humanize.Comma(removed))
			return nil
		},
	}
}

func openCache(cmd *cobra.Command, ctx *commandContext) (*httpcache.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := httpcache.Open(cmd.Context(), cfg.Paths.CacheDir)
	if errors.Is(err, httpcache.ErrLocked) {
		return nil, fmt.Errorf("%w (wait for the running extraction to finish)", err)
	}
	return store, err
}
