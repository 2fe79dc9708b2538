package main

// OutcomeStatus represents how a unit was handled
type OutcomeStatus string

const (
	StatusGenerated OutcomeStatus = "generated"
	StatusSkipped   OutcomeStatus = "skipped"
	StatusFailed    OutcomeStatus = "failed"
)

// Outcome tracks the result of processing one unit
type Outcome struct {
	City        string        `json:"city"`
	State       string        `json:"state"`
	Success     bool          `json:"success"`
	Status      OutcomeStatus `json:"status"`
	Error       string        `json:"error,omitempty"`
	ContentPath string        `json:"content_path,omitempty"`
	PagePath    string        `json:"page_path,omitempty"`
}

// Key matches Unit.Key
func (o Outcome) Key() string {
	return o.City + ", " + o.State
}
