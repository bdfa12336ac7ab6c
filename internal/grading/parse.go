package grading

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/abhisek/adaptutor/internal/llm"
)

// Kind tags how a grader reply was understood.
type Kind int

const (
	// Failed means no usable JSON object was found.
	Failed Kind = iota
	// Strict means the whole reply was a JSON object.
	Strict
	// Recovered means a JSON object was dug out of surrounding prose.
	Recovered
)

func (k Kind) String() string {
	switch k {
	case Strict:
		return "strict"
	case Recovered:
		return "recovered"
	default:
		return "failed"
	}
}

// ParsedGrading is the tagged result of parsing a grader reply. Callers
// must handle every Kind; only Failed should trigger the fallback.
type ParsedGrading struct {
	Kind       Kind
	Score      float64
	HasScore   bool
	Quality    int
	HasQuality bool
	Feedback   string
	Suggestion string
	// Reason explains a Failed parse.
	Reason string
}

// Usable reports whether the grading can stand in for the fallback.
func (p ParsedGrading) Usable() bool {
	return p.Kind != Failed
}

// gradingSchema accepts numbers or numeric strings, since models
// sometimes quote them. At least one of score or quality is required.
var gradingSchema = &llm.Schema{
	Name:        "rubric-grading",
	Description: "Rubric grader reply",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":      map[string]any{"type": []any{"number", "string"}},
			"quality":    map[string]any{"type": []any{"number", "string"}},
			"feedback":   map[string]any{"type": []any{"string", "null"}},
			"suggestion": map[string]any{"type": []any{"string", "null"}},
		},
		"anyOf": []any{
			map[string]any{"required": []any{"score"}},
			map[string]any{"required": []any{"quality"}},
		},
	},
}

var objectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// Parse interprets a raw grader reply. A reply that is a JSON object as a
// whole parses Strict. Otherwise the span from the first '{' to the last
// '}' is tried and parses Recovered. Anything else is Failed.
func Parse(raw string) ParsedGrading {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ParsedGrading{Kind: Failed, Reason: "empty response"}
	}

	if out, ok := fromObject(text, Strict); ok {
		return out
	}

	candidate := objectPattern.FindString(text)
	if candidate == "" {
		return ParsedGrading{Kind: Failed, Reason: "no JSON object in response"}
	}
	if out, ok := fromObject(candidate, Recovered); ok {
		return out
	}
	return ParsedGrading{Kind: Failed, Reason: "response JSON does not match grading shape"}
}

func fromObject(text string, kind Kind) (ParsedGrading, bool) {
	if !gjson.Valid(text) {
		return ParsedGrading{}, false
	}
	doc := gjson.Parse(text)
	if !doc.IsObject() {
		return ParsedGrading{}, false
	}
	if err := llm.ValidateJSON(gradingSchema, []byte(text)); err != nil {
		return ParsedGrading{}, false
	}

	out := ParsedGrading{
		Kind:       kind,
		Feedback:   doc.Get("feedback").String(),
		Suggestion: doc.Get("suggestion").String(),
	}
	if v := doc.Get("score"); v.Exists() {
		out.Score = clampScore(v.Float())
		out.HasScore = true
	}
	if v := doc.Get("quality"); v.Exists() {
		out.Quality = clampQuality(int(v.Int()))
		out.HasQuality = true
	}
	return out, true
}

func clampScore(s float64) float64 {
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}

func clampQuality(q int) int {
	switch {
	case q < 0:
		return 0
	case q > 5:
		return 5
	}
	return q
}
