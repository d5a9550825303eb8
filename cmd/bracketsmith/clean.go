package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CostaMateus/bracketsmith/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Drop the clean-file skip cache",
	Long: `Clean removes the cache of content hashes already known to be at a
fixed point, forcing the next run to re-scan every file.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func runClean(_ *cobra.Command, _ []string) error {
	dir, err := driver.CacheDir()
	if err != nil {
		return fmt.Errorf("failed to resolve cache directory: %w", err)
	}

	cache, err := driver.OpenSkipCache()
	if err != nil {
		return fmt.Errorf("failed to open cache at %q: %w", dir, err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to remove %q: %w", dir, err)
	}
	_, _ = fmt.Fprintf(os.Stdout, "removed %s\n", dir)
	return nil
}
