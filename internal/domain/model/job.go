// Package model contains domain models passed between layers.
package model

import "time"

// JobStatus is the lifecycle state of a queued job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether a job in this status may never change again.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Job is one unit of queued work naming a registered sync function.
// Lower Priority values run first; ties break on CreatedAt.
type Job struct {
	ID        string
	Name      string
	Status    JobStatus
	Priority  int
	Week      *int    // optional target week
	UserID    *string // absent means run with the administrative credential
	CreatedAt time.Time
	UpdatedAt time.Time

	// Set on the terminal transition, including failures.
	RunTimeMS    *int64
	ErrorMessage *string
}
