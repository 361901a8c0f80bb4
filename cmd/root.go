package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quizdash/quizdash/internal/app"
	"github.com/quizdash/quizdash/internal/config"
	"github.com/quizdash/quizdash/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "quizdash",
	Short: "Terminal trivia matches",
	Long:  "Quizdash plays timed trivia matches and practice rounds from your terminal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		log, err := logging.Setup(cfg.LogFile, cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("set up logging: %w", err)
		}

		return app.Run(cfg, log)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite history file (overrides QUIZDASH_DB env var)")
	rootCmd.PersistentFlags().String("api-url", "", "Match service base URL (overrides QUIZDASH_API_URL env var)")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// loadConfig reads the environment configuration and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if u, _ := cmd.Flags().GetString("api-url"); u != "" {
		cfg.APIBaseURL = u
	}
	return cfg, nil
}
