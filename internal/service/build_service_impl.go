package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/showcase/internal/build"
	"github.com/alexanderramin/showcase/internal/db"
	"github.com/alexanderramin/showcase/internal/domain"
	"github.com/alexanderramin/showcase/internal/logging"
	"github.com/alexanderramin/showcase/internal/repository"
	"github.com/google/uuid"
)

// Runner is the build pipeline as the service sees it.
type Runner interface {
	Run(ctx context.Context) (*build.Report, error)
}

type buildService struct {
	runner   Runner
	runs     repository.BuildRunRepo
	uow      db.UnitOfWork
	log      *logging.Logger
	observer UseCaseObserver
	mu       sync.Mutex
	now      func() time.Time
}

func NewBuildService(
	runner Runner,
	runs repository.BuildRunRepo,
	uow db.UnitOfWork,
	log *logging.Logger,
	observers ...UseCaseObserver,
) BuildService {
	return &buildService{
		runner:   runner,
		runs:     runs,
		uow:      uow,
		log:      logging.OrNop(log).With("component", "build-service"),
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *buildService) Build(ctx context.Context) (result *BuildResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := &domain.BuildRun{
		ID:        uuid.New().String(),
		StartedAt: s.now(),
		Status:    domain.BuildRunning,
	}
	fields := map[string]any{"run_id": run.ID}
	defer observe(ctx, s.observer, "build", fields)(&err)

	if err := s.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("recording build start: %w", err)
	}

	report, buildErr := s.runner.Run(ctx)
	finished := s.now()
	run.FinishedAt = &finished
	if buildErr != nil {
		run.Status = domain.BuildFailed
		run.Error = buildErr.Error()
	} else {
		run.Status = domain.BuildSucceeded
		run.CaseCount = report.CaseCount()
		run.Artifacts = report.Artifacts
	}

	// Record with a detached context so a cancelled build still finishes
	// its history row.
	recordCtx := context.WithoutCancel(ctx)
	recErr := s.uow.WithinTx(recordCtx, func(ctx context.Context, tx db.DBTX) error {
		txRuns := repository.NewSQLiteBuildRunRepo(tx)
		if err := txRuns.Finish(ctx, run); err != nil {
			return err
		}
		return txRuns.AddArtifacts(ctx, run.ID, run.Artifacts)
	})

	result = &BuildResult{Run: run, Report: report}
	if buildErr != nil {
		if recErr != nil {
			s.log.Warn("could not record failed build", "run_id", run.ID, "error", recErr)
		}
		return result, buildErr
	}
	if recErr != nil {
		return result, fmt.Errorf("recording build history: %w", recErr)
	}

	result.Change, err = s.compare(ctx, run)
	if err != nil {
		return result, err
	}
	fields["cases"] = run.CaseCount
	fields["artifacts"] = len(run.Artifacts)
	fields["change"] = string(result.Change)
	return result, nil
}

func (s *buildService) compare(ctx context.Context, run *domain.BuildRun) (Change, error) {
	if run.Status != domain.BuildSucceeded {
		return ChangeNone, nil
	}
	prev, err := s.runs.PreviousSucceeded(ctx, run)
	if errors.Is(err, repository.ErrNotFound) {
		return ChangeFirst, nil
	}
	if err != nil {
		return ChangeNone, err
	}
	if domain.FingerprintOf(prev.Artifacts).Equal(domain.FingerprintOf(run.Artifacts)) {
		return ChangeIdentical, nil
	}
	return ChangeChanged, nil
}

func (s *buildService) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	runs, err := s.runs.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]HistoryEntry, 0, len(runs))
	for _, run := range runs {
		if run.Status == domain.BuildSucceeded {
			if run.Artifacts, err = s.runs.ListArtifacts(ctx, run.ID); err != nil {
				return nil, err
			}
		}
		change, err := s.compare(ctx, run)
		if err != nil {
			return nil, err
		}
		entries = append(entries, HistoryEntry{Run: run, Change: change})
	}
	return entries, nil
}
