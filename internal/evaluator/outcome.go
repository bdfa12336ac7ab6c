package evaluator

// Status classifies how a best-effort step went.
type Status int

const (
	Succeeded Status = iota
	// Degraded means a fallback produced the result.
	Degraded
	// Failed means the step had no effect.
	Failed
)

func (s Status) String() string {
	switch s {
	case Degraded:
		return "degraded"
	case Failed:
		return "failed"
	default:
		return "succeeded"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Steps that report an Outcome.
const (
	StepGrader    = "grader"
	StepJudge     = "judge"
	StepScheduler = "scheduler"
	StepAudit     = "audit"
)

// Outcome records one best-effort step of an evaluation so degradation
// is visible to callers and metrics instead of silently dropped.
type Outcome struct {
	Step   string `json:"step"`
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Overall folds step outcomes into one status: the worst of them.
func Overall(outcomes []Outcome) Status {
	worst := Succeeded
	for _, o := range outcomes {
		if o.Status > worst {
			worst = o.Status
		}
	}
	return worst
}
