package service

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/showcase/internal/domain"
	"github.com/alexanderramin/showcase/internal/logging"
	"github.com/alexanderramin/showcase/internal/publish"
	"github.com/alexanderramin/showcase/internal/repository"
	"github.com/google/uuid"
)

type publishService struct {
	store    publish.ObjectStore
	opts     publish.Options
	builds   repository.BuildRunRepo
	runs     repository.PublishRunRepo
	log      *logging.Logger
	observer UseCaseObserver
}

func NewPublishService(
	store publish.ObjectStore,
	opts publish.Options,
	builds repository.BuildRunRepo,
	runs repository.PublishRunRepo,
	log *logging.Logger,
	observers ...UseCaseObserver,
) PublishService {
	return &publishService{
		store:    store,
		opts:     opts,
		builds:   builds,
		runs:     runs,
		log:      logging.OrNop(log),
		observer: useCaseObserverOrNoop(observers),
	}
}

// Publish mirrors the output directory. Real runs are recorded against the
// latest build; dry runs leave no trace.
func (s *publishService) Publish(ctx context.Context, dryRun bool) (result *publish.Result, err error) {
	fields := map[string]any{"dry_run": dryRun}
	defer observe(ctx, s.observer, "publish", fields)(&err)

	opts := s.opts
	opts.DryRun = dryRun
	startedAt := time.Now().UTC()
	result, err = publish.Mirror(ctx, s.store, opts, s.log)
	if dryRun || result == nil {
		return result, err
	}

	rec := &domain.PublishRun{
		ID:        uuid.New().String(),
		StartedAt: startedAt,
		Target:    result.Target,
		Uploaded:  len(result.Plan.Upload),
		Deleted:   len(result.Plan.Delete),
		Unchanged: len(result.Plan.Unchanged),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if latest, lerr := s.builds.ListRecent(ctx, 1); lerr == nil && len(latest) == 1 {
		rec.BuildID = latest[0].ID
	}
	if rerr := s.runs.Create(context.WithoutCancel(ctx), rec); rerr != nil {
		err = errors.Join(err, rerr)
	}
	fields["target"] = result.Target
	fields["uploaded"] = rec.Uploaded
	fields["deleted"] = rec.Deleted
	return result, err
}
