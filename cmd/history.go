package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quizdash/quizdash/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		dbPath := cfg.DBPath
		if dbPath == "" {
			dbPath, err = history.DefaultDBPath()
			if err != nil {
				return fmt.Errorf("resolve history path: %w", err)
			}
		}

		store, err := history.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()

		matches, err := store.RecentMatches(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}

		if len(matches) == 0 {
			fmt.Println("No matches recorded yet.")
			return nil
		}

		for _, m := range matches {
			outcome := ""
			if m.Outcome == history.OutcomeAborted {
				outcome = "  (aborted)"
			}
			fmt.Printf("%s  %-10s  %d/%d  %dm%02ds%s\n",
				m.CreatedAt.Local().Format("2006-01-02 15:04"),
				m.Mode,
				m.Score, m.TotalQuestions,
				m.DurationSecs/60, m.DurationSecs%60,
				outcome,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of matches to show")
}
