package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hirrd/hirrd/internal/gate"
)

// ErrInvalidStatus is returned for statuses outside the closed set.
var ErrInvalidStatus = errors.New("invalid application status")

// PutJob inserts or updates a job.
func (db *DB) PutJob(ctx context.Context, j *Job) error {
	now := time.Now().UnixMilli()
	_, err := db.ExecContext(ctx, `
		INSERT INTO jobs (id, recruiter_id, title, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			recruiter_id = excluded.recruiter_id,
			title = excluded.title,
			updated_at = excluded.updated_at`,
		j.ID, j.RecruiterID, j.Title, now)
	return err
}

// PutApplication inserts or updates an application. An empty status is
// stored as "applied".
func (db *DB) PutApplication(ctx context.Context, a *Application) error {
	status := gate.Applied
	if a.Status != "" {
		st, ok := gate.ParseStatus(a.Status)
		if !ok {
			return fmt.Errorf("%w %q", ErrInvalidStatus, a.Status)
		}
		status = st
	}
	now := time.Now().UnixMilli()
	_, err := db.ExecContext(ctx, `
		INSERT INTO applications (id, job_id, applicant_id, status, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			job_id = excluded.job_id,
			applicant_id = excluded.applicant_id,
			status = excluded.status,
			updated_at = excluded.updated_at`,
		a.ID, a.JobID, a.ApplicantID, string(status), now)
	if err != nil {
		return err
	}
	a.Status = string(status)
	a.UpdatedAt = now
	return nil
}

// GetApplication returns an application with its recruiter resolved through
// the job. Returns nil, nil if it does not exist.
func (db *DB) GetApplication(ctx context.Context, id string) (*Application, error) {
	var a Application
	err := db.QueryRowContext(ctx, `
		SELECT a.id, a.job_id, a.applicant_id, j.recruiter_id, a.status, a.updated_at
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		WHERE a.id = ?`, id).
		Scan(&a.ID, &a.JobID, &a.ApplicantID, &a.RecruiterID, &a.Status, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// SetApplicationStatus moves an application to a new status and returns the
// updated row. Returns nil, nil if the application does not exist.
func (db *DB) SetApplicationStatus(ctx context.Context, id, status string) (*Application, error) {
	st, ok := gate.ParseStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrInvalidStatus, status)
	}
	res, err := db.ExecContext(ctx,
		`UPDATE applications SET status = ?, updated_at = ? WHERE id = ?`,
		string(st), time.Now().UnixMilli(), id)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return db.GetApplication(ctx, id)
}

// ApplicationCount returns the total number of applications.
func (db *DB) ApplicationCount(ctx context.Context) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications`).Scan(&count)
	return count, err
}
