package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/provebench/leanc/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:          "cache",
	Short:        "Inspect and maintain the compilation result cache",
	SilenceUsage: true,
}

var cacheStatsCmd = &cobra.Command{
	Use:          "stats",
	Short:        "Show cache entry counts and size",
	RunE:         runCacheStats,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
}

var cacheClearCmd = &cobra.Command{
	Use:          "clear",
	Short:        "Remove every cached result",
	RunE:         runCacheClear,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
}

var cacheEvictCmd = &cobra.Command{
	Use:          "evict",
	Short:        "Remove expired cache entries",
	RunE:         runCacheEvict,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheEvictCmd)
}

func loadComponents(cmd *cobra.Command) (*components, error) {
	bindPersistentFlags(cmd.Root())

	cfg, err := config.NewLoader().LoadForCompile(cmd, "")
	if err != nil {
		return nil, err
	}

	return newComponents(cfg)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	comps, err := loadComponents(cmd)
	if err != nil {
		return err
	}
	defer comps.close()

	return printJSON(comps.cache.ComputeStats())
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	comps, err := loadComponents(cmd)
	if err != nil {
		return err
	}
	defer comps.close()

	removed := comps.cache.Clear()
	fmt.Printf("Removed %d cached results\n", removed)

	return nil
}

func runCacheEvict(cmd *cobra.Command, args []string) error {
	comps, err := loadComponents(cmd)
	if err != nil {
		return err
	}
	defer comps.close()

	evicted := comps.cache.EvictExpired()
	fmt.Printf("Evicted %d expired entries\n", evicted)

	return nil
}
