package questiongen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You write practice questions for a data structures and algorithms course.

Rules:
- Generate a single question for the given concept, difficulty and type.
- beginner questions check definitions and properties; intermediate questions apply the concept to a small example; advanced questions involve analysis, trade-offs or edge cases.
- mcq: provide 2 to 6 distinct options; correct_option must match one option exactly. Distractors should reflect common misconceptions.
- short_answer: expected_answer is one or two sentences. essay: expected_answer is a short paragraph.
- code: the program reads from stdin and writes to stdout. Give at least two testcases; expected is the exact stdout. The prompt must state the input and output format.
- Do not repeat any question from the "already in the bank" list.`

func buildUserMessage(input Input, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Concept: %s\n", strings.ReplaceAll(input.Concept, "_", " "))
	fmt.Fprintf(&b, "Difficulty: %s\n", input.Difficulty)
	if input.Type != "" {
		fmt.Fprintf(&b, "Type: %s\n", input.Type)
	} else {
		b.WriteString("Type: mcq or short_answer, whichever suits the concept\n")
	}

	b.WriteString("\nAlready in the bank:\n")
	b.WriteString(buildDedup(input.PriorQuestions, cfg.MaxPriorQuestions))

	return b.String()
}

// buildDedup formats prior prompts, keeping the most recent max.
func buildDedup(prior []string, max int) string {
	if len(prior) == 0 {
		return "None"
	}
	if max > 0 && len(prior) > max {
		prior = prior[len(prior)-max:]
	}

	var b strings.Builder
	for i, p := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p)
	}
	return strings.TrimRight(b.String(), "\n")
}
