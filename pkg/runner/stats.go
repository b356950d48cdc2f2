package runner

import "time"

// Outcome is a run's terminal verdict.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeAborted   Outcome = "aborted"
)

// AreaStats is what one recorded area contributed to the run.
type AreaStats struct {
	Area       string
	Records    int
	Exchanges  int
	Space      int
	Assigned   int
	Unassigned int
	Requests   int64
	Elapsed    time.Duration
}

// RunStatistics accumulates across a run and is finalized exactly once,
// whether the run completes or aborts. Areas holds recorded areas in
// processing order; an aborted run retains the areas recorded before
// the failure.
type RunStatistics struct {
	Strategy     string
	StartedAt    time.Time
	Elapsed      time.Duration
	Outcome      Outcome
	FailedArea   string
	PlannedAreas int

	Areas []AreaStats

	TotalRecords    int
	TotalExchanges  int
	TotalSpace      int
	TotalAssigned   int
	TotalUnassigned int
	TotalRequests   int64
}

func newStatistics(strategy string) *RunStatistics {
	return &RunStatistics{
		Strategy:  strategy,
		StartedAt: time.Now(),
	}
}

func (s *RunStatistics) record(a AreaStats) {
	s.Areas = append(s.Areas, a)
	s.TotalRecords += a.Records
	s.TotalExchanges += a.Exchanges
	s.TotalSpace += a.Space
	s.TotalAssigned += a.Assigned
	s.TotalUnassigned += a.Unassigned
	s.TotalRequests += a.Requests
}

func (s *RunStatistics) finalize(outcome Outcome, failedArea string) {
	s.Outcome = outcome
	s.FailedArea = failedArea
	s.Elapsed = time.Since(s.StartedAt)
}

// Completed reports whether the run reached its terminal success state.
func (s *RunStatistics) Completed() bool {
	return s.Outcome == OutcomeCompleted
}
