package cli

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/gapfill/internal/cache"
	"github.com/ppiankov/gapfill/internal/model"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clean the exercise cache",
	Long: `Inspect and clean the on-disk cache of generated exercises and reviews.

The cache directory comes from cache.dir (default ~/.gapfill/cache).`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		dc, dir, err := diskCache()
		if err != nil {
			return err
		}
		u, err := dc.Usage()
		if err != nil {
			return err
		}
		printUsage(os.Stdout, dir, u)
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		dc, dir, err := diskCache()
		if err != nil {
			return err
		}
		removed, err := dc.Prune()
		if err != nil {
			return fmt.Errorf("prune cache: %w", err)
		}
		fmt.Printf("✓ Removed %d expired entries from %s\n", removed, dir)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		dc, dir, err := diskCache()
		if err != nil {
			return err
		}
		if err := dc.Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Printf("✓ Cleared %s\n", dir)
		return nil
	},
}

func diskCache() (*cache.DiskCache, string, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, "", fmt.Errorf("error decoding config: %w", err)
	}
	return cache.NewDiskCache(cfg.Cache.Dir, cfg.Cache.DiskTTL), cfg.Cache.Dir, nil
}

func printUsage(w io.Writer, dir string, u cache.Usage) {
	fmt.Fprintf(w, "  Directory:  %s\n", dir)
	fmt.Fprintf(w, "  Entries:    %d (%d expired)\n", u.Entries, u.Expired)
	fmt.Fprintf(w, "  Size:       %.1f KiB\n", float64(u.Bytes)/1024)

	kinds := make([]string, 0, len(u.ByKind))
	for k := range u.ByKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		name := k
		if name == "" {
			name = "other"
		}
		fmt.Fprintf(w, "    %-10s %d\n", name+":", u.ByKind[cache.Kind(k)])
	}
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
