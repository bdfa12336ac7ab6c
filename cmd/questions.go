package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptutor/internal/questiongen"
	"github.com/abhisek/adaptutor/internal/questions"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Manage the question bank",
}

var questionsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import questions from a YAML or JSON file",
	Long: "Import questions from a YAML or JSON file. A question already in the bank " +
		"(same concept, difficulty and prompt) is skipped.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		qs, err := questions.LoadFile(args[0])
		if err != nil {
			return err
		}

		e, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		stats, err := e.bank.Import(cmd.Context(), qs)
		if err != nil {
			return fmt.Errorf("import stopped after %d inserted: %w", stats.Inserted, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d questions (%d already present).\n", stats.Inserted, stats.Skipped)
		return nil
	},
}

var questionsSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the built-in data structures and algorithms bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		stats, err := questions.Seed(cmd.Context(), e.bank)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d questions (%d already present).\n", stats.Inserted, stats.Skipped)
		return nil
	},
}

var questionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List questions in the bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		concept, _ := cmd.Flags().GetString("concept")
		diff, _ := cmd.Flags().GetString("difficulty")
		limit, _ := cmd.Flags().GetInt("limit")

		var d questions.Difficulty
		if diff != "" {
			var err error
			if d, err = questions.ParseDifficulty(diff); err != nil {
				return err
			}
		}

		e, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		qs, err := e.bank.List(cmd.Context(), concept, d, limit)
		if err != nil {
			return err
		}
		if len(qs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No questions found.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCONCEPT\tDIFFICULTY\tTYPE\tSOURCE\tPROMPT")
		for _, q := range qs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				q.ID, q.Concept, q.Difficulty, q.Type, q.Source, truncate(oneLine(q.Prompt), 60))
		}
		return w.Flush()
	},
}

var questionsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a question with the configured LLM",
	RunE: func(cmd *cobra.Command, args []string) error {
		concept, _ := cmd.Flags().GetString("concept")
		diff, _ := cmd.Flags().GetString("difficulty")
		typ, _ := cmd.Flags().GetString("type")
		save, _ := cmd.Flags().GetBool("save")

		d, err := questions.ParseDifficulty(diff)
		if err != nil {
			return err
		}
		t := questions.Type(typ)
		if t != "" && !t.Known() {
			return fmt.Errorf("unknown question type %q", typ)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if e.provider == nil {
			return errors.New("no LLM provider configured (set llm.provider or ADAPTUTOR_LLM_PROVIDER)")
		}

		ctx := cmd.Context()
		existing, err := e.bank.Find(ctx, concept, d)
		if err != nil {
			return err
		}
		prior := make([]string, len(existing))
		for i, q := range existing {
			prior[i] = q.Prompt
		}

		gen := questiongen.New(e.provider, questiongen.DefaultConfig())
		q, err := gen.Generate(ctx, questiongen.Input{
			Concept:        concept,
			Difficulty:     d,
			Type:           t,
			PriorQuestions: prior,
		})
		if err != nil {
			return err
		}

		if save {
			id, inserted, err := e.bank.Add(ctx, *q)
			if err != nil {
				return fmt.Errorf("save question: %w", err)
			}
			q.ID = id
			if !inserted {
				warnf("An identical question already exists as %s.", id)
			}
		}
		return printJSON(cmd.OutOrStdout(), q)
	},
}

func init() {
	questionsListCmd.Flags().StringP("concept", "c", "", "Filter by concept")
	questionsListCmd.Flags().StringP("difficulty", "d", "", "Filter by difficulty (beginner, intermediate, advanced)")
	questionsListCmd.Flags().IntP("limit", "n", 50, "Maximum rows")

	questionsGenerateCmd.Flags().StringP("concept", "c", "", "Concept to generate for")
	questionsGenerateCmd.Flags().StringP("difficulty", "d", "beginner", "Difficulty")
	questionsGenerateCmd.Flags().StringP("type", "t", "", "Question type (mcq, short_answer, essay, code); empty lets the model pick")
	questionsGenerateCmd.Flags().Bool("save", false, "Store the question in the bank")
	_ = questionsGenerateCmd.MarkFlagRequired("concept")

	questionsCmd.AddCommand(questionsImportCmd)
	questionsCmd.AddCommand(questionsSeedCmd)
	questionsCmd.AddCommand(questionsListCmd)
	questionsCmd.AddCommand(questionsGenerateCmd)
}
