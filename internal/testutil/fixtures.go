package testutil

import (
	"fmt"
	"time"

	"github.com/alexanderramin/showcase/internal/domain"
	"github.com/google/uuid"
)

// BuildRunOption customizes a BuildRun built by NewTestBuildRun.
type BuildRunOption func(*domain.BuildRun)

func WithStatus(s domain.BuildStatus) BuildRunOption {
	return func(r *domain.BuildRun) { r.Status = s }
}

func WithStartedAt(t time.Time) BuildRunOption {
	return func(r *domain.BuildRun) {
		r.StartedAt = t
		finished := t.Add(2 * time.Second)
		r.FinishedAt = &finished
	}
}

func WithArtifacts(artifacts ...domain.Artifact) BuildRunOption {
	return func(r *domain.BuildRun) { r.Artifacts = artifacts }
}

func WithBuildError(msg string) BuildRunOption {
	return func(r *domain.BuildRun) {
		r.Status = domain.BuildFailed
		r.Error = msg
	}
}

// NewTestBuildRun returns a finished, succeeded run with a fresh id.
func NewTestBuildRun(opts ...BuildRunOption) *domain.BuildRun {
	started := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	finished := started.Add(2 * time.Second)
	r := &domain.BuildRun{
		ID:         uuid.New().String(),
		StartedAt:  started,
		FinishedAt: &finished,
		Status:     domain.BuildSucceeded,
		CaseCount:  3,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewTestArtifact returns an artifact whose digest is derived from content.
func NewTestArtifact(path, content string) domain.Artifact {
	return domain.Artifact{Path: path, SHA256: fmt.Sprintf("sha-%s", content), Size: int64(len(content))}
}
