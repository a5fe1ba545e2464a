package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shimmer/internal/polyfill"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the on-disk catalog cache",
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Drop every cached catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cache, err := polyfill.OpenDiskCache("shimmer")
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("drop cache: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "catalog cache cleaned")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheCleanCmd)
}
