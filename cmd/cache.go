package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/pitwall/internal/config"
	"github.com/derickschaefer/pitwall/internal/model"
	"github.com/derickschaefer/pitwall/internal/namecache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the local store",
	Long: `Commands for inspecting and clearing the local bbolt database.

The store holds learned option names (used to resolve deep links), saved
searches and the API session. Names are learned every time a filter list
is fetched; clearing them only means the next deep link resolves more slowly.

When cache_backend is "redis" the name cache lives in redis instead and
'cache clear --names' clears it there.`,
}

// ─── cache stats ──────────────────────────────────────────────────────────────

var cacheStatsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Show row counts and sizes for each bucket",
	Example: `  pitwall cache stats`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(cmd.Context()); err != nil {
			return err
		}
		defer deps.Close()

		stats, err := deps.Store.Stats()
		if err != nil {
			return fmt.Errorf("reading store stats: %w", err)
		}

		// Sort by bucket name for deterministic output
		sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })

		fmt.Fprintf(cmd.OutOrStdout(), "Database: %s\n", deps.Store.Path())
		fmt.Fprintf(cmd.OutOrStdout(), "Names:    %s\n\n", deps.Config.CacheBackend)
		printSimpleTable(cmd.OutOrStdout(), []string{"BUCKET", "ROWS", "SIZE"}, func(add func(...string)) {
			for _, s := range stats {
				add(s.Name, fmt.Sprintf("%d", s.Count), humanBytes(s.Bytes))
			}
		})
		return nil
	},
}

// ─── cache names ──────────────────────────────────────────────────────────────

var cacheNamesCmd = &cobra.Command{
	Use:   "names [DIMENSION]",
	Short: "List learned option names",
	Long: `Without an argument, list the dimensions that have learned names.
With a dimension, list every name → id mapping learned for it.`,
	Example: `  pitwall cache names
  pitwall cache names car`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(cmd.Context()); err != nil {
			return err
		}
		defer deps.Close()

		started := time.Now()
		if len(args) == 0 {
			dims, err := deps.Store.ListNameDimensions()
			if err != nil {
				return fmt.Errorf("listing name dimensions: %w", err)
			}
			tbl := model.Table{Headers: []string{"DIMENSION", "NAMES"}}
			for _, d := range dims {
				dim, ok := model.ParseDimension(d)
				if !ok {
					continue
				}
				e := deps.Names.Entry(cmd.Context(), dim)
				tbl.Rows = append(tbl.Rows, []string{d, strconv.Itoa(len(e.Names))})
			}
			return emit(cmd, deps, newResult(model.KindTable, "cache names", tbl, len(tbl.Rows)), started)
		}

		dim, ok := model.ParseDimension(args[0])
		if !ok {
			return fmt.Errorf("unknown dimension %q", args[0])
		}
		e := deps.Names.Entry(cmd.Context(), dim)
		keys := make([]string, 0, len(e.Names))
		for k := range e.Names {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		tbl := model.Table{Headers: []string{"NAME", "ID", "LABEL"}}
		for _, k := range keys {
			id := e.Names[k]
			label, _ := e.Label(id)
			tbl.Rows = append(tbl.Rows, []string{k, strconv.FormatInt(id, 10), label})
		}
		return emit(cmd, deps, newResult(model.KindTable, "cache names "+string(dim), tbl, len(tbl.Rows)), started)
	},
}

// ─── cache clear ──────────────────────────────────────────────────────────────

var (
	cacheClearAll    bool
	cacheClearBucket string
	cacheClearNames  bool
)

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete entries from the local store",
	Long: `Delete entries from one or all buckets.

Note: bbolt does not shrink the database file automatically after clearing.
Free pages are reused internally on the next write.`,
	Example: `  pitwall cache clear --all
  pitwall cache clear --bucket saved
  pitwall cache clear --names`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cacheClearAll && cacheClearBucket == "" && !cacheClearNames {
			return fmt.Errorf("specify --all, --names or --bucket <n>\n\nBuckets: names, saved, auth")
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(cmd.Context()); err != nil {
			return err
		}
		defer deps.Close()

		if cacheClearAll {
			if err := deps.Store.ClearAll(); err != nil {
				return fmt.Errorf("clearing all buckets: %w", err)
			}
			if err := clearRedisNames(cmd, deps.Config.CacheBackend, deps.Redis()); err != nil {
				return err
			}
			deps.Names.Forget()
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Cleared all buckets")
			return nil
		}

		if cacheClearNames {
			cacheClearBucket = "names"
			if err := clearRedisNames(cmd, deps.Config.CacheBackend, deps.Redis()); err != nil {
				return err
			}
		}
		if err := deps.Store.ClearBucket(cacheClearBucket); err != nil {
			return fmt.Errorf("clearing bucket %q: %w", cacheClearBucket, err)
		}
		deps.Names.Forget()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared bucket %q\n", cacheClearBucket)
		return nil
	},
}

// clearRedisNames empties the redis name cache when that backend is in use.
func clearRedisNames(cmd *cobra.Command, backend string, rb *namecache.RedisBackend) error {
	if backend != config.BackendRedis || rb == nil {
		return nil
	}
	if err := rb.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("clearing redis name cache: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Cleared redis name cache")
	return nil
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheNamesCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheClearCmd.Flags().BoolVar(&cacheClearAll, "all", false, "clear all buckets")
	cacheClearCmd.Flags().BoolVar(&cacheClearNames, "names", false, "clear learned option names (bbolt and redis)")
	cacheClearCmd.Flags().StringVar(&cacheClearBucket, "bucket", "", "clear a specific bucket: names|saved|auth")
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func humanBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
