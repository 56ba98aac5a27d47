package awful

import "time"

// JobEventKind is what happened to a job.
type JobEventKind string

const (
	EventSubmitted = JobEventKind("submitted")
	EventStarted   = JobEventKind("started")
	EventFinished  = JobEventKind("finished")
	EventDeleted   = JobEventKind("deleted")
)

// JobEvent is a record of a job's lifecycle change.
type JobEvent struct {
	Kind    JobEventKind
	JobID   JobID
	Name    string
	Command string
	Procs   int
	Dir     string
	Time    time.Time
}

// newJobEvent creates an event of a job happened now.
func newJobEvent(kind JobEventKind, j *Job) *JobEvent {
	return &JobEvent{
		Kind:    kind,
		JobID:   j.ID,
		Name:    j.Name,
		Command: j.Command,
		Procs:   j.Procs,
		Dir:     j.Dir,
		Time:    time.Now(),
	}
}

// EventFilter is a filter for searching job events.
// Empty fields match everything.
type EventFilter struct {
	JobID JobID
	Name  string
	Kind  JobEventKind

	// Since filters out events happened before it.
	Since time.Time
}

// JournalService is an interface which let us use sqlite.JournalService.
// It only keeps history of jobs, the scheduler never reads it back.
type JournalService interface {
	AddEvent(*JobEvent) error
	FindEvents(EventFilter) ([]*JobEvent, error)
}

// NopJournalService is a JournalService which does nothing.
// We need this for testing, or when the journal is disabled.
type NopJournalService struct{}

// AddEvent returns nil always.
func (s NopJournalService) AddEvent(e *JobEvent) error {
	return nil
}

// FindEvents returns (nil, nil).
func (s NopJournalService) FindEvents(f EventFilter) ([]*JobEvent, error) {
	return nil, nil
}
