package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/showcase/internal/domain"
)

var ErrNotFound = errors.New("not found")

type BuildRunRepo interface {
	Create(ctx context.Context, r *domain.BuildRun) error
	// Finish stores the terminal status, finish time, case count and error.
	Finish(ctx context.Context, r *domain.BuildRun) error
	AddArtifacts(ctx context.Context, runID string, artifacts []domain.Artifact) error
	// GetByID returns the run with its artifacts.
	GetByID(ctx context.Context, id string) (*domain.BuildRun, error)
	// ListRecent returns runs newest first, without artifacts.
	ListRecent(ctx context.Context, limit int) ([]*domain.BuildRun, error)
	// PreviousSucceeded returns the latest succeeded run started before run,
	// with its artifacts, or ErrNotFound.
	PreviousSucceeded(ctx context.Context, run *domain.BuildRun) (*domain.BuildRun, error)
	ListArtifacts(ctx context.Context, runID string) ([]domain.Artifact, error)
}

type PublishRunRepo interface {
	Create(ctx context.Context, p *domain.PublishRun) error
	ListRecent(ctx context.Context, limit int) ([]*domain.PublishRun, error)
}
