package storage

import (
	"context"
	"errors"
	"time"

	"github.com/kasuboski/shokoz/pkg/host"
	"github.com/kasuboski/shokoz/pkg/machine"
)

var ErrNotFound = host.ErrNotFound
var ErrJobAlreadyPending = errors.New("job of this type already pending")

type Storage interface {
	RunMigrations(ctx context.Context) error
	Close() error
	host.Store
	JobStorage
}

type JobType string

const (
	UserDataSync JobType = "UserDataSync"
)

type JobState string

const (
	JobStateNew       JobState = ""
	JobStatePending   JobState = "pending"
	JobStateRunning   JobState = "running"
	JobStateError     JobState = "error"
	JobStateDone      JobState = "done"
	JobStateCancelled JobState = "cancelled"
)

type Job struct {
	ID       int64    `json:"id"`
	Type     JobType  `json:"type"`
	State    JobState `json:"state"`
	Progress float64  `json:"progress"`
	Error    *string  `json:"error,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (j Job) Machine() *machine.StateMachine[JobState] {
	return machine.New(j.State,
		machine.From(JobStateNew).To(JobStatePending),
		machine.From(JobStatePending).To(JobStateRunning, JobStateCancelled),
		machine.From(JobStateRunning).To(JobStateError, JobStateDone, JobStateCancelled),
	)
}

// Finished reports whether the job reached a terminal state
func (j Job) Finished() bool {
	switch j.State {
	case JobStateDone, JobStateError, JobStateCancelled:
		return true
	}
	return false
}

type JobStorage interface {
	CreateJob(ctx context.Context, jobType JobType, initialState JobState) (int64, error)
	GetJob(ctx context.Context, id int64) (*Job, error)
	ListJobs(ctx context.Context) ([]*Job, error)
	ListJobsByState(ctx context.Context, state JobState) ([]*Job, error)
	UpdateJobState(ctx context.Context, id int64, state JobState, errorMsg *string) error
	UpdateJobProgress(ctx context.Context, id int64, progress float64) error
	DeleteJob(ctx context.Context, id int64) error
}
