package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptutor/internal/store"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the evaluation audit log",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List evaluations, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		concept, _ := cmd.Flags().GetString("concept")
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		entries, err := e.tutor.AuditLog(cmd.Context(), store.AuditFilter{
			UserID:  user,
			Concept: concept,
			Limit:   limit,
		})
		if err != nil {
			return fmt.Errorf("list audit: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return printJSON(out, entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "No evaluations recorded.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SEQ\tTIME\tUSER\tCONCEPT\tQUESTION\tSCORE\tQ\tOUTCOME")
		for _, a := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%.2f\t%d\t%s\n",
				a.Sequence,
				a.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				a.UserID, a.Concept, truncate(a.QuestionID, 12),
				a.Score, a.Quality, a.Outcome)
		}
		return w.Flush()
	},
}

func init() {
	auditListCmd.Flags().StringP("user", "u", "", "Filter by learner")
	auditListCmd.Flags().StringP("concept", "c", "", "Filter by concept")
	auditListCmd.Flags().IntP("limit", "n", 20, "Maximum rows")
	auditListCmd.Flags().Bool("json", false, "Print full entries as JSON")

	auditCmd.AddCommand(auditListCmd)
}
