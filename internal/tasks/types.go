package tasks

// Priority tags a task for display. The entry form owns the default.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Task is a titled, dated, priority-tagged unit of work. The id is assigned
// by the remote document store on creation; every task held locally after
// the initial load has one. Date is the raw value the entry form produced
// (normally YYYY-MM-DD) and is never normalized.
type Task struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Date     string   `json:"date"`
	Priority Priority `json:"priority"`
}

// Draft is what the entry form emits on submission. It has no id yet.
type Draft struct {
	Title    string   `json:"title"`
	Date     string   `json:"date"`
	Priority Priority `json:"priority"`
}

// Patch carries the fields an update overwrites. Nil fields are retained.
type Patch struct {
	Title    *string   `json:"title,omitempty"`
	Date     *string   `json:"date,omitempty"`
	Priority *Priority `json:"priority,omitempty"`
}

// Outcome reports how an operation resolved. Remote failures never surface
// as errors to the caller; they resolve to OutcomeFailed after the error
// notification has been dispatched. OutcomeSkipped marks a local validation
// rejection that made no remote call and dispatched nothing.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// State is the per-session collection lifecycle. Failed operations cause no
// transition; there is no error state.
type State string

const (
	StateEmpty   State = "empty"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
)
