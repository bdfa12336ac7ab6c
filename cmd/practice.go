package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/adaptutor/internal/app"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Start an interactive practice session",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")

		e, err := openEnv(cmd, quietLogs())
		if err != nil {
			return err
		}
		defer e.Close()

		if !e.cfg.Judge.Enabled() {
			warnf("No judge configured: code questions will score zero. Set ADAPTUTOR_JUDGE_URL to run code.")
		}
		if e.provider == nil {
			warnf("No LLM provider configured: text answers are graded by similarity.")
		}

		return app.Run(app.Options{Service: e.tutor, UserID: user})
	},
}

func init() {
	practiceCmd.Flags().StringP("user", "u", "", "Learner id")
	_ = practiceCmd.MarkFlagRequired("user")
}
