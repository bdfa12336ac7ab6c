package evaluator

import (
	"fmt"
	"time"

	"github.com/abhisek/adaptutor/internal/mastery"
	"github.com/abhisek/adaptutor/internal/questions"
)

// Submission is what the learner handed in. Answer is used by mcq and
// text questions, SourceCode by code questions. LanguageID overrides the
// question's language when set.
type Submission struct {
	Answer     string `json:"answer,omitempty"`
	SourceCode string `json:"source_code,omitempty"`
	LanguageID int    `json:"language_id,omitempty"`
}

// Request is one evaluation.
type Request struct {
	UserID     string
	Concept    string
	Question   questions.Question
	Submission Submission
}

// TestcaseResult is the outcome of running one testcase. Error is set
// when the run itself failed, in which case Passed is false.
type TestcaseResult struct {
	Stdin         string `json:"stdin"`
	Expected      string `json:"expected"`
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr,omitempty"`
	CompileOutput string `json:"compile_output,omitempty"`
	Status        string `json:"status,omitempty"`
	Time          string `json:"time,omitempty"`
	Memory        int    `json:"memory,omitempty"`
	Passed        bool   `json:"passed"`
	Error         string `json:"error,omitempty"`
}

// Details holds the per-type evidence behind a score.
type Details struct {
	// Grading is how the score was produced: exact, strict, recovered,
	// heuristic or judge.
	Grading       string           `json:"grading,omitempty"`
	CorrectOption string           `json:"correct_option,omitempty"`
	Similarity    *float64         `json:"similarity,omitempty"`
	Testcases     []TestcaseResult `json:"testcases,omitempty"`
	Passed        int              `json:"passed"`
	Total         int              `json:"total"`
	Feedback      string           `json:"feedback,omitempty"`
	Suggestion    string           `json:"suggestion,omitempty"`
	GraderRaw     string           `json:"grader_raw,omitempty"`
	Note          string           `json:"note,omitempty"`
	ManualReview  bool             `json:"manual_review,omitempty"`
}

// Result is a finished evaluation.
type Result struct {
	EvaluationID string          `json:"evaluation_id"`
	QuestionID   string          `json:"qid"`
	Type         questions.Type  `json:"type"`
	Score        float64         `json:"score"`
	Quality      int             `json:"quality"`
	Details      Details         `json:"details"`
	Mastery      *mastery.Record `json:"mastery,omitempty"`
	NextDue      *time.Time      `json:"next_due,omitempty"`
	Outcome      Status          `json:"outcome"`
	Outcomes     []Outcome       `json:"outcomes,omitempty"`
}

func (r *Result) note(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// InputError rejects a structurally invalid submission.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
