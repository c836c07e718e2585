package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seoulmaps/placemeta/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "placemeta",
	Short: "Business-listing crawler for Naver Map places",
	Long:  "Searches a place on Naver Map, extracts its details, visitor reviews, first blog review, and photos, and persists the whole graph to Postgres in one transaction.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
