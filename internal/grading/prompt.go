package grading

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/adaptutor/internal/llm"
)

const shortAnswerRubric = `You are an expert data structures and algorithms grader. Given an expected answer and a student's answer, evaluate correctness and completeness.

Return a JSON object ONLY (no explanation) with keys:
- "score": a number between 0.0 and 1.0 (1.0 = perfect match)
- "quality": integer 0..5 (5 = perfect)
- "feedback": short actionable feedback (1-2 sentences)

Use this rubric:
- 0.0: no understanding
- 0.1-0.4: partial or fragmentary
- 0.5-0.7: decent answer but missing important details
- 0.8-0.95: mostly complete (minor omissions)
- 0.96-1.0: perfect`

const codeRubric = `You are an experienced software engineering and algorithms grader. You are given a code submission, the testcases it was run against, and the raw execution results.

1) Evaluate correctness: the fraction of testcases passed (0..1).
2) Evaluate quality: integer 0..5 considering readability, correctness, edge-case handling and complexity awareness (5 = production-ready, 3 = acceptable, 1 = incorrect or insecure).
3) Give succinct feedback highlighting next steps and potential bugs (1-2 sentences).
4) Give one minor suggestion to improve performance or readability.

Return a JSON object ONLY (no extra commentary) with keys:
- "score": 0.0..1.0 (pass fraction)
- "quality": integer 0..5
- "feedback": string
- "suggestion": string`

// ShortAnswerPrompt builds the rubric prompt for a free-text answer.
func ShortAnswerPrompt(expected, answer string, maxTokens int) Prompt {
	if maxTokens <= 0 {
		maxTokens = DefaultShortAnswerMaxTokens
	}

	var b strings.Builder
	b.WriteString(shortAnswerRubric)
	b.WriteString("\n\nEXPECTED_ANSWER:\n")
	writeQuoted(&b, expected)
	b.WriteString("\nSTUDENT_ANSWER:\n")
	writeQuoted(&b, answer)
	b.WriteString("\nReturn JSON only.")

	return Prompt{Purpose: llm.PurposeGradeShortAnswer, Text: b.String(), MaxTokens: maxTokens}
}

// CodePrompt builds the rubric prompt for a code submission. testcases
// and results are rendered as JSON.
func CodePrompt(source string, testcases, results any, maxTokens int) Prompt {
	if maxTokens <= 0 {
		maxTokens = DefaultCodeMaxTokens
	}

	var b strings.Builder
	b.WriteString(codeRubric)
	b.WriteString("\n\nSOURCE_CODE:\n")
	writeQuoted(&b, source)
	b.WriteString("\nTESTCASES:\n")
	writeQuoted(&b, toJSON(testcases))
	b.WriteString("\nEXECUTION_RESULTS:\n")
	writeQuoted(&b, toJSON(results))
	b.WriteString("\nReturn JSON only.")

	return Prompt{Purpose: llm.PurposeGradeCode, Text: b.String(), MaxTokens: maxTokens}
}

func writeQuoted(b *strings.Builder, s string) {
	fmt.Fprintf(b, "\"\"\"%s\"\"\"\n", s)
}

func toJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
