package postings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"kaamkhoj/jobboard/internal/events"
	"kaamkhoj/jobboard/internal/model"
)

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Service holds the posting business rules. It has no dependency on net/http.
type Service struct {
	store  Store
	events events.Publisher
	logger *slog.Logger
}

// NewService returns a configured Service.
func NewService(store Store, pub events.Publisher, logger *slog.Logger) *Service {
	return &Service{store: store, events: pub, logger: logger.With("component", "postings")}
}

// List returns active postings matching f, newest first.
func (s *Service) List(ctx context.Context, f model.PostingFilter) ([]model.Posting, error) {
	return s.store.List(ctx, f)
}

// Get returns a single posting or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*model.Posting, error) {
	return s.store.Get(ctx, id)
}

// Create validates req, stores a new posting and announces it.
func (s *Service) Create(ctx context.Context, req SaveRequest) (*model.Posting, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Msg: "Missing required fields"}
	}
	p, err := s.store.Create(ctx, req.ToPosting(uuid.NewString()))
	if err != nil {
		return nil, err
	}
	s.publish(ctx, p.ID, events.ActionCreated)
	return p, nil
}

// Update validates req and overwrites posting id. An omitted status keeps
// the current one; a new status must be reachable from it.
func (s *Service) Update(ctx context.Context, id string, req SaveRequest) (*model.Posting, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Msg: "Missing required fields"}
	}

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next := req.ToPosting(id)
	if req.Status == "" {
		next.Status = current.Status
	}
	if !model.CanTransition(current.Status, next.Status) {
		return nil, &ValidationError{
			Msg: fmt.Sprintf("cannot move job from %s to %s", current.Status, next.Status),
		}
	}

	p, err := s.store.Update(ctx, next)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, p.ID, events.ActionUpdated)
	return p, nil
}

// Delete removes posting id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, id, events.ActionDeleted)
	return nil
}

// publish is non-fatal: the mutation already succeeded.
func (s *Service) publish(ctx context.Context, id, action string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishPostingChanged(ctx, id, action); err != nil {
		s.logger.Warn("publish posting change failed", "jobId", id, "action", action, "err", err)
	}
}
