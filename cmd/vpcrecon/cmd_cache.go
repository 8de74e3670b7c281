package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netscribe/vpcrecon/reportcache"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the API response cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache entry counts",
	RunE:  runCacheStatus,
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete all cached API responses",
	RunE:  runCachePurge,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
}

func runCacheStatus(cmd *cobra.Command, args []string) error {
	cache, err := reportcache.Open(cfg.CachePath())
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer func() { _ = cache.Close() }()

	stats, err := cache.Stat()
	if err != nil {
		return err
	}
	fmt.Printf("Cache: %s\n", cfg.CachePath())
	fmt.Printf("Entries: %d (%d expired)\n", stats.Entries, stats.Expired)
	return nil
}

func runCachePurge(cmd *cobra.Command, args []string) error {
	cache, err := reportcache.Open(cfg.CachePath())
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer func() { _ = cache.Close() }()

	if err := cache.Purge(); err != nil {
		return err
	}
	fmt.Println("Cache purged")
	return nil
}
