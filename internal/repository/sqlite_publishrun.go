package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/showcase/internal/db"
	"github.com/alexanderramin/showcase/internal/domain"
)

// SQLitePublishRunRepo implements PublishRunRepo using a SQLite database.
type SQLitePublishRunRepo struct {
	db db.DBTX
}

func NewSQLitePublishRunRepo(conn db.DBTX) *SQLitePublishRunRepo {
	return &SQLitePublishRunRepo{db: conn}
}

func (r *SQLitePublishRunRepo) Create(ctx context.Context, p *domain.PublishRun) error {
	query := `INSERT INTO publish_runs (id, build_id, started_at, target, uploaded, deleted, unchanged, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		nullableString(p.BuildID),
		formatTime(p.StartedAt),
		p.Target,
		p.Uploaded,
		p.Deleted,
		p.Unchanged,
		p.Error,
	)
	if err != nil {
		return fmt.Errorf("inserting publish run: %w", err)
	}
	return nil
}

func (r *SQLitePublishRunRepo) ListRecent(ctx context.Context, limit int) ([]*domain.PublishRun, error) {
	query := `SELECT id, build_id, started_at, target, uploaded, deleted, unchanged, error
		FROM publish_runs ORDER BY started_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing publish runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.PublishRun
	for rows.Next() {
		var p domain.PublishRun
		var buildID sql.NullString
		var startedAt string
		if err := rows.Scan(&p.ID, &buildID, &startedAt, &p.Target, &p.Uploaded, &p.Deleted, &p.Unchanged, &p.Error); err != nil {
			return nil, fmt.Errorf("scanning publish run row: %w", err)
		}
		p.BuildID = buildID.String
		if p.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		runs = append(runs, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating publish runs: %w", err)
	}
	return runs, nil
}
