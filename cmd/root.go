package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyscout/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "studyscout",
	Short: "Chat with your PDFs and quiz yourself on them",
	Long:  "StudyScout loads a PDF as a study topic, answers questions grounded in its pages and generates multiple-choice quizzes from it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

// Execute runs the command line. ctx is cancelled on interrupt.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/studyscout/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides STUDYSCOUT_DB env var)")
	rootCmd.PersistentFlags().String("log-file", "", "Write logs to this file instead of stderr")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the db config key or STUDYSCOUT_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if configured != "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}
