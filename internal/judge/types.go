package judge

import (
	"fmt"
	"time"
)

const (
	DefaultPollInterval   = 500 * time.Millisecond
	DefaultTimeout        = 10 * time.Second
	DefaultRequestTimeout = 15 * time.Second
	DefaultLanguageID     = 71
)

// Status is the client-side view of a submission's lifecycle.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusFinished   Status = "finished"
	StatusTimeout    Status = "timeout"
)

// Terminal reports whether no further polling is needed.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusTimeout
}

// statusFromID maps a Judge0 status id. Ids 1 and 2 are in flight; 3 and
// above are final verdicts (accepted, wrong answer, errors).
func statusFromID(id int) Status {
	switch {
	case id >= 3:
		return StatusFinished
	case id == 2:
		return StatusProcessing
	default:
		return StatusQueued
	}
}

// Submission is one program run request.
type Submission struct {
	SourceCode string
	LanguageID int
	Stdin      string
}

// SubmissionState is the decoded result of polling a submission.
type SubmissionState struct {
	Token             string `json:"token"`
	Status            Status `json:"status"`
	StatusID          int    `json:"status_id"`
	StatusDescription string `json:"status_description,omitempty"`
	Stdout            string `json:"stdout"`
	Stderr            string `json:"stderr"`
	CompileOutput     string `json:"compile_output"`
	Message           string `json:"message,omitempty"`
	Time              string `json:"time,omitempty"`
	Memory            int    `json:"memory,omitempty"`
	Err               error  `json:"-"`
	Attempts          int    `json:"-"`
}

// SubmissionError reports a failed submit call. It is never retried.
type SubmissionError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("judge submit: %v", e.Err)
	}
	return fmt.Sprintf("judge submit: HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// wire types

type submitRequest struct {
	SourceCode string `json:"source_code"`
	LanguageID int    `json:"language_id"`
	Stdin      string `json:"stdin"`
}

type submitResponse struct {
	Token string `json:"token"`
}

type statusResponse struct {
	Token         string  `json:"token"`
	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`
	Message       *string `json:"message"`
	Time          *string `json:"time"`
	Memory        *int    `json:"memory"`
	Status        struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
}
