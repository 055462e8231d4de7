package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-jet/jet/v2/qrm"
	"github.com/go-jet/jet/v2/sqlite"
	"github.com/kasuboski/shokoz/pkg/storage"
	"github.com/kasuboski/shokoz/pkg/storage/sqlite/schema/gen/model"
	"github.com/kasuboski/shokoz/pkg/storage/sqlite/schema/gen/table"
)

// CreateJob stores a job in its initial state
func (s *SQLite) CreateJob(ctx context.Context, jobType storage.JobType, initialState storage.JobState) (int64, error) {
	job := storage.Job{Type: jobType, State: storage.JobStateNew}
	if err := job.Machine().ToState(initialState); err != nil {
		return 0, err
	}

	if initialState == storage.JobStatePending {
		existing, err := s.listJobs(ctx, table.Job.Type.EQ(sqlite.String(string(jobType))).
			AND(table.Job.State.EQ(sqlite.String(string(storage.JobStatePending)))))
		if err != nil {
			return 0, err
		}
		if len(existing) > 0 {
			return 0, storage.ErrJobAlreadyPending
		}
	}

	now := time.Now().UTC()
	m := model.Job{
		Type:      string(jobType),
		State:     string(initialState),
		CreatedAt: &now,
		UpdatedAt: &now,
	}

	stmt := table.Job.
		INSERT(table.Job.MutableColumns).
		MODEL(m).
		RETURNING(table.Job.ID)

	result, err := s.handleInsert(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("failed to create job: %w", err)
	}

	return result.LastInsertId()
}

// GetJob retrieves a job by ID
func (s *SQLite) GetJob(ctx context.Context, id int64) (*storage.Job, error) {
	stmt := table.Job.
		SELECT(table.Job.AllColumns).
		FROM(table.Job).
		WHERE(table.Job.ID.EQ(sqlite.Int64(id)))

	var m model.Job
	err := stmt.QueryContext(ctx, s.db, &m)
	if err != nil {
		if errors.Is(err, qrm.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return toJob(m), nil
}

// ListJobs lists every job, oldest first
func (s *SQLite) ListJobs(ctx context.Context) ([]*storage.Job, error) {
	return s.listJobs(ctx)
}

// ListJobsByState lists jobs currently in state
func (s *SQLite) ListJobsByState(ctx context.Context, state storage.JobState) ([]*storage.Job, error) {
	return s.listJobs(ctx, table.Job.State.EQ(sqlite.String(string(state))))
}

func (s *SQLite) listJobs(ctx context.Context, where ...sqlite.BoolExpression) ([]*storage.Job, error) {
	stmt := table.Job.
		SELECT(table.Job.AllColumns).
		FROM(table.Job)

	if len(where) > 0 {
		cond := where[0]
		for _, w := range where[1:] {
			cond = cond.AND(w)
		}
		stmt = stmt.WHERE(cond)
	}
	stmt = stmt.ORDER_BY(table.Job.ID.ASC())

	rows := make([]model.Job, 0)
	err := stmt.QueryContext(ctx, s.db, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	jobs := make([]*storage.Job, len(rows))
	for i, m := range rows {
		jobs[i] = toJob(m)
	}
	return jobs, nil
}

// UpdateJobState moves a job to state, optionally recording an error message
func (s *SQLite) UpdateJobState(ctx context.Context, id int64, state storage.JobState, errorMsg *string) error {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return err
	}

	if err := job.Machine().ToState(state); err != nil {
		return err
	}

	errValue := sqlite.StringExp(sqlite.NULL)
	if errorMsg != nil {
		errValue = sqlite.String(*errorMsg)
	}

	assignments := []any{
		table.Job.State.SET(sqlite.String(string(state))),
		table.Job.Error.SET(errValue),
		table.Job.UpdatedAt.SET(now()),
	}
	if state == storage.JobStateDone {
		assignments = append(assignments, table.Job.Progress.SET(sqlite.Float(1)))
	}

	stmt := table.Job.
		UPDATE().
		SET(assignments[0], assignments[1:]...).
		WHERE(
			table.Job.ID.EQ(sqlite.Int64(id)).
				AND(table.Job.State.EQ(sqlite.String(string(job.State)))),
		)

	result, err := s.handleUpdate(ctx, stmt)
	if err != nil {
		return fmt.Errorf("failed to update job state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("job %d changed state concurrently", id)
	}

	return nil
}

// UpdateJobProgress records a job's completed fraction
func (s *SQLite) UpdateJobProgress(ctx context.Context, id int64, progress float64) error {
	progress = min(max(progress, 0), 1)

	stmt := table.Job.
		UPDATE().
		SET(
			table.Job.Progress.SET(sqlite.Float(progress)),
			table.Job.UpdatedAt.SET(now()),
		).
		WHERE(table.Job.ID.EQ(sqlite.Int64(id)))

	result, err := s.handleUpdate(ctx, stmt)
	if err != nil {
		return fmt.Errorf("failed to update job progress: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteJob removes a job by ID
func (s *SQLite) DeleteJob(ctx context.Context, id int64) error {
	stmt := table.Job.
		DELETE().
		WHERE(table.Job.ID.EQ(sqlite.Int64(id)))

	_, err := s.handleDelete(ctx, stmt)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	return nil
}

func now() sqlite.TimestampExpression {
	return sqlite.TimestampExp(sqlite.String(time.Now().UTC().Format(timestampFormat)))
}

func toJob(m model.Job) *storage.Job {
	job := &storage.Job{
		ID:       int64(m.ID),
		Type:     storage.JobType(m.Type),
		State:    storage.JobState(m.State),
		Progress: m.Progress,
		Error:    m.Error,
	}
	if m.CreatedAt != nil {
		job.CreatedAt = *m.CreatedAt
	}
	if m.UpdatedAt != nil {
		job.UpdatedAt = *m.UpdatedAt
	}
	return job
}
