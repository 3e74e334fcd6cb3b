package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/showcase/internal/db"
	"github.com/alexanderramin/showcase/internal/domain"
)

// SQLiteBuildRunRepo implements BuildRunRepo using a SQLite database.
type SQLiteBuildRunRepo struct {
	db db.DBTX
}

func NewSQLiteBuildRunRepo(conn db.DBTX) *SQLiteBuildRunRepo {
	return &SQLiteBuildRunRepo{db: conn}
}

const buildRunColumns = `id, started_at, finished_at, status, case_count, error`

func (r *SQLiteBuildRunRepo) Create(ctx context.Context, run *domain.BuildRun) error {
	query := `INSERT INTO build_runs (` + buildRunColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		formatTime(run.StartedAt),
		nullableTimeToString(run.FinishedAt),
		string(run.Status),
		run.CaseCount,
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("inserting build run: %w", err)
	}
	return nil
}

func (r *SQLiteBuildRunRepo) Finish(ctx context.Context, run *domain.BuildRun) error {
	query := `UPDATE build_runs SET finished_at = ?, status = ?, case_count = ?, error = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableTimeToString(run.FinishedAt),
		string(run.Status),
		run.CaseCount,
		run.Error,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("finishing build run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finishing build run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("build run %s: %w", run.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteBuildRunRepo) AddArtifacts(ctx context.Context, runID string, artifacts []domain.Artifact) error {
	query := `INSERT INTO build_artifacts (run_id, path, sha256, size) VALUES (?, ?, ?, ?)`
	for _, a := range artifacts {
		if _, err := r.db.ExecContext(ctx, query, runID, a.Path, a.SHA256, a.Size); err != nil {
			return fmt.Errorf("inserting artifact %s: %w", a.Path, err)
		}
	}
	return nil
}

func (r *SQLiteBuildRunRepo) GetByID(ctx context.Context, id string) (*domain.BuildRun, error) {
	query := `SELECT ` + buildRunColumns + ` FROM build_runs WHERE id = ?`
	run, err := r.scanRun(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if run.Artifacts, err = r.ListArtifacts(ctx, run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

func (r *SQLiteBuildRunRepo) ListRecent(ctx context.Context, limit int) ([]*domain.BuildRun, error) {
	query := `SELECT ` + buildRunColumns + ` FROM build_runs ORDER BY started_at DESC, id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing build runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.BuildRun
	for rows.Next() {
		run, err := r.scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating build runs: %w", err)
	}
	return runs, nil
}

func (r *SQLiteBuildRunRepo) PreviousSucceeded(ctx context.Context, run *domain.BuildRun) (*domain.BuildRun, error) {
	query := `SELECT ` + buildRunColumns + ` FROM build_runs
		WHERE status = ? AND started_at < ? AND id != ?
		ORDER BY started_at DESC LIMIT 1`
	prev, err := r.scanRun(r.db.QueryRowContext(ctx, query, string(domain.BuildSucceeded), formatTime(run.StartedAt), run.ID))
	if err != nil {
		return nil, err
	}
	if prev.Artifacts, err = r.ListArtifacts(ctx, prev.ID); err != nil {
		return nil, err
	}
	return prev, nil
}

func (r *SQLiteBuildRunRepo) ListArtifacts(ctx context.Context, runID string) ([]domain.Artifact, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT path, sha256, size FROM build_artifacts WHERE run_id = ? ORDER BY path`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []domain.Artifact
	for rows.Next() {
		var a domain.Artifact
		if err := rows.Scan(&a.Path, &a.SHA256, &a.Size); err != nil {
			return nil, fmt.Errorf("scanning artifact row: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating artifacts: %w", err)
	}
	return artifacts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteBuildRunRepo) scanRun(row rowScanner) (*domain.BuildRun, error) {
	var run domain.BuildRun
	var startedAt, status string
	var finishedAt sql.NullString

	err := row.Scan(&run.ID, &startedAt, &finishedAt, &status, &run.CaseCount, &run.Error)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("build run: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning build run: %w", err)
	}

	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	run.FinishedAt = parseNullableTime(finishedAt)
	run.Status = domain.BuildStatus(status)
	return &run, nil
}
