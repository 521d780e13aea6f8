package domain

// TriggerStatus represents the outcome of starting one pipeline.
type TriggerStatus int

const (
	TriggerStarted  TriggerStatus = iota // Execution started
	TriggerNotFound                      // No pipeline with that name
	TriggerFailed                        // Any other error
)

// String returns the string representation of the TriggerStatus.
func (s TriggerStatus) String() string {
	if s < 0 || int(s) >= len(triggerStatusNames) {
		return "Unknown"
	}
	return triggerStatusNames[s]
}

var triggerStatusNames = [...]string{
	TriggerStarted:  "Started",
	TriggerNotFound: "NotFound",
	TriggerFailed:   "Failed",
}

// TriggerOutcome is what the trigger collaborator reports for one pipeline.
type TriggerOutcome struct {
	Pipeline    string
	Status      TriggerStatus
	ExecutionID string
	Err         error
}

// SkippedEntry is the response form of a Skip.
type SkippedEntry struct {
	Project string `json:"project,omitempty"`
	Reason  string `json:"reason"`
	Detail  string `json:"detail,omitempty"`
}

// FailedEntry is the response form of a failed trigger.
type FailedEntry struct {
	Pipeline string `json:"pipeline"`
	Error    string `json:"error"`
}

// Summary is the webhook response body. Lists are never null so operators
// can always see what was triggered, skipped and not found.
type Summary struct {
	Triggered []string       `json:"triggered"`
	Skipped   []SkippedEntry `json:"skipped"`
	NotFound  []string       `json:"notFound"`
	Failed    []FailedEntry  `json:"failed"`
	Warnings  []string       `json:"warnings"`
	DryRun    bool           `json:"dryRun,omitempty"`
}

// NewSummary returns a Summary with every list initialised.
func NewSummary() Summary {
	return Summary{
		Triggered: []string{},
		Skipped:   []SkippedEntry{},
		NotFound:  []string{},
		Failed:    []FailedEntry{},
		Warnings:  []string{},
	}
}

// Summarize merges a routing result with the trigger outcomes for its
// ToTrigger list. Outcomes keep the order they are given in.
func Summarize(result RoutingResult, outcomes []TriggerOutcome) Summary {
	s := NewSummary()

	for _, skip := range result.Skipped {
		s.Skipped = append(s.Skipped, SkippedEntry{
			Project: skip.Project.String(),
			Reason:  string(skip.Reason),
			Detail:  skip.Detail,
		})
	}
	for _, w := range result.Warnings {
		s.Warnings = append(s.Warnings, w.Error())
	}

	for _, o := range outcomes {
		switch o.Status {
		case TriggerStarted:
			s.Triggered = append(s.Triggered, o.Pipeline)
		case TriggerNotFound:
			s.NotFound = append(s.NotFound, o.Pipeline)
		case TriggerFailed:
			msg := "unknown error"
			if o.Err != nil {
				msg = o.Err.Error()
			}
			s.Failed = append(s.Failed, FailedEntry{Pipeline: o.Pipeline, Error: msg})
		}
	}

	return s
}

// AllStarted reports whether at least one pipeline started and none were
// missing or failed.
func (s Summary) AllStarted() bool {
	return len(s.Triggered) > 0 && len(s.NotFound) == 0 && len(s.Failed) == 0
}
