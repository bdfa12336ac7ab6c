package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptutor/internal/tutor"
)

var selectCmd = &cobra.Command{
	Use:   "select <user> <concept>",
	Short: "Select practice questions for a learner",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("count")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		sel, err := e.tutor.SelectQuestions(cmd.Context(), args[0], args[1], n)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), sel)
	},
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Grade one answer and update mastery",
	Example: `  adaptutor evaluate --user u1 --qid 3f2a... --answer "O(log n)"
  adaptutor evaluate --user u1 --qid 9c1e... --code-file sum.py --language 71`,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		qid, _ := cmd.Flags().GetString("qid")
		concept, _ := cmd.Flags().GetString("concept")
		answer, _ := cmd.Flags().GetString("answer")
		codeFile, _ := cmd.Flags().GetString("code-file")
		lang, _ := cmd.Flags().GetInt("language")

		var source string
		if codeFile != "" {
			data, err := os.ReadFile(codeFile)
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}
			source = string(data)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.tutor.EvaluateAnswer(cmd.Context(), tutor.EvaluateRequest{
			UserID:     user,
			Concept:    concept,
			QuestionID: qid,
			Answer:     answer,
			SourceCode: source,
			LanguageID: lang,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var masteryCmd = &cobra.Command{
	Use:   "mastery <user> [concept]",
	Short: "Show a learner's mastery of one or all concepts",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		if len(args) == 2 {
			rec, err := e.tutor.GetMastery(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		}

		l, err := e.tutor.GetLearner(ctx, args[0])
		if err != nil {
			return err
		}
		concepts := l.Concepts()
		if len(concepts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No practice recorded yet.")
			return nil
		}

		now := time.Now()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CONCEPT\tSTATE\tSTRENGTH\tREVIEWS\tINTERVAL\tNEXT DUE")
		for _, c := range concepts {
			rec := l.Record(c)
			due := "-"
			if rec.NextDue != nil {
				due = rec.NextDue.Local().Format("2006-01-02")
			}
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\t%dd\t%s\n",
				c, rec.State(now).Label(), rec.Strength, rec.Reviews, rec.Interval, due)
		}
		return w.Flush()
	},
}

var learnerCmd = &cobra.Command{
	Use:   "learner",
	Short: "Manage learner profiles",
}

var learnerSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Create or update a learner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		l, err := e.tutor.UpsertLearner(cmd.Context(), args[0], name, email)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), l)
	},
}

var learnerGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a learner with mastery",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		l, err := e.tutor.GetLearner(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), l)
	},
}

var conceptsCmd = &cobra.Command{
	Use:   "concepts",
	Short: "List concepts in the question bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		concepts, err := e.tutor.Concepts(cmd.Context())
		if err != nil {
			return err
		}
		if len(concepts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Question bank is empty. Run `adaptutor questions seed` to load the built-in bank.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(concepts, "\n"))
		return nil
	},
}

func init() {
	selectCmd.Flags().IntP("count", "n", 0, "Number of questions (0 = default)")

	evaluateCmd.Flags().StringP("user", "u", "", "Learner id")
	evaluateCmd.Flags().String("qid", "", "Question id")
	evaluateCmd.Flags().StringP("concept", "c", "", "Concept (defaults to the question's)")
	evaluateCmd.Flags().StringP("answer", "a", "", "Answer text for mcq, short answer and essay")
	evaluateCmd.Flags().String("code-file", "", "Source file for code questions")
	evaluateCmd.Flags().IntP("language", "l", 0, "Judge0 language id (defaults to the question's)")
	_ = evaluateCmd.MarkFlagRequired("user")
	_ = evaluateCmd.MarkFlagRequired("qid")
	evaluateCmd.MarkFlagsMutuallyExclusive("answer", "code-file")

	learnerSetCmd.Flags().String("name", "", "Display name")
	learnerSetCmd.Flags().String("email", "", "Email address")
	learnerCmd.AddCommand(learnerSetCmd)
	learnerCmd.AddCommand(learnerGetCmd)
}
