package model

import "time"

// Outcome is the overall result of a download run.
type Outcome string

// Run outcomes.
const (
	// OutcomeOK means every enabled step of every cycle succeeded.
	OutcomeOK Outcome = "ok"
	// OutcomeDegraded means at least one cycle had a failed step.
	OutcomeDegraded Outcome = "degraded"
	// OutcomeLoginFailed means no cycle ran because login failed.
	OutcomeLoginFailed Outcome = "login_failed"
	// OutcomeCancelled means the run was interrupted by its context.
	OutcomeCancelled Outcome = "cancelled"
	// OutcomeAborted means the run stopped on an unexpected panic.
	OutcomeAborted Outcome = "aborted"
)

// FetchState is a state of the recent-data retry state machine.
type FetchState string

// Fetch states.
const (
	FetchAttempt   FetchState = "attempt"
	FetchAuthRetry FetchState = "auth_retry"
	FetchRetry     FetchState = "retry"
	FetchSuccess   FetchState = "success"
	FetchDataError FetchState = "data_error"
	FetchGiveUp    FetchState = "give_up"
)

// Artifact references one exported record.
type Artifact struct {
	Kind Kind `json:"kind"`
	// Name is the file name, also the object key for storage uploads.
	Name string `json:"name"`
	// Location is the local path or the s3://bucket/key URI.
	Location string `json:"location"`
	Size     int    `json:"size"`
}

// FetchResult is the outcome of the recent-data fetch of one cycle.
type FetchResult struct {
	State    FetchState `json:"state"`
	Attempts int        `json:"attempts"`
	// Codes holds the response code of every attempt in order.
	Codes   []int  `json:"codes,omitempty"`
	Message string `json:"message,omitempty"`
}

// CycleResult collects what one cycle produced.
type CycleResult struct {
	Index     int          `json:"index"`
	StartedAt time.Time    `json:"startedAt"`
	Artifacts []Artifact   `json:"artifacts,omitempty"`
	Errors    []string     `json:"errors,omitempty"`
	Fetch     *FetchResult `json:"fetch,omitempty"`
}

// AddArtifact records an exported artifact.
func (c *CycleResult) AddArtifact(a Artifact) {
	c.Artifacts = append(c.Artifacts, a)
}

// AddError records a failed step of the cycle.
func (c *CycleResult) AddError(err error) {
	if err != nil {
		c.Errors = append(c.Errors, err.Error())
	}
}

// Failed reports whether any step of the cycle failed.
func (c *CycleResult) Failed() bool {
	if len(c.Errors) > 0 {
		return true
	}
	return c.Fetch != nil && c.Fetch.State != FetchSuccess
}

// RunSummary is the result of one download run.
type RunSummary struct {
	ID         string        `json:"id"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Outcome    Outcome       `json:"outcome"`
	LoginCode  int           `json:"loginCode,omitempty"`
	LoginError string        `json:"loginError,omitempty"`
	Cycles     []CycleResult `json:"cycles,omitempty"`
}

// Artifacts returns every artifact of every cycle in order.
func (r *RunSummary) Artifacts() []Artifact {
	var all []Artifact
	for _, c := range r.Cycles {
		all = append(all, c.Artifacts...)
	}
	return all
}

// FailureCount returns the number of failed cycles.
func (r *RunSummary) FailureCount() int {
	n := 0
	for i := range r.Cycles {
		if r.Cycles[i].Failed() {
			n++
		}
	}
	return n
}

// Duration returns how long the run took.
func (r *RunSummary) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Finish sets the finish time and derives the outcome from the cycles
// unless an outcome was already decided.
func (r *RunSummary) Finish(at time.Time) {
	r.FinishedAt = at
	if r.Outcome != "" {
		return
	}
	if r.FailureCount() > 0 {
		r.Outcome = OutcomeDegraded
		return
	}
	r.Outcome = OutcomeOK
}

// RunMetadata summarizes a stored run without its cycles.
type RunMetadata struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Outcome    Outcome   `json:"outcome"`
	Cycles     int       `json:"cycles"`
	Artifacts  int       `json:"artifacts"`
	Failures   int       `json:"failures"`
}

// Metadata returns the summary of r.
func (r *RunSummary) Metadata() RunMetadata {
	return RunMetadata{
		ID:         r.ID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Outcome:    r.Outcome,
		Cycles:     len(r.Cycles),
		Artifacts:  len(r.Artifacts()),
		Failures:   r.FailureCount(),
	}
}
