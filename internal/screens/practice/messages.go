package practice

import (
	"github.com/abhisek/adaptutor/internal/evaluator"
	"github.com/abhisek/adaptutor/internal/questions"
)

// selectionMsg carries the questions chosen for this round.
type selectionMsg struct {
	Selection questions.Selection
	Err       error
}

// evaluatedMsg carries the result of one submitted answer.
type evaluatedMsg struct {
	Result *evaluator.Result
	Err    error
}
