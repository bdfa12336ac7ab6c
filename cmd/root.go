package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "adaptutor",
	Short: "Adaptive assessment and mastery engine",
	Long: "adaptutor picks practice questions matched to a learner's mastery, grades answers " +
		"(choice, short answer, essay, code) and schedules reviews with spaced repetition.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides ADAPTUTOR_CONFIG)")
	rootCmd.PersistentFlags().String("db", "", "Database path or postgres:// DSN (overrides ADAPTUTOR_DB)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(masteryCmd)
	rootCmd.AddCommand(learnerCmd)
	rootCmd.AddCommand(conceptsCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
