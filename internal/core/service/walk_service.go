package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
	"github.com/pawtrail/dogwalk-service/internal/core/ports"
	"github.com/pawtrail/dogwalk-service/internal/pkg/metrics"
)

// WalkDeps groups the collaborators of WalkService. Events and Idempotency
// are optional.
type WalkDeps struct {
	Users       ports.UserRepository
	Dogs        ports.DogRepository
	Walks       ports.WalkRequestRepository
	Summary     ports.SummaryRepository
	History     ports.EventRepository
	Events      ports.EventPublisher
	Idempotency ports.IdempotencyStore
}

// WalkService enforces the walk request state machine and ownership rules.
type WalkService struct {
	deps WalkDeps
	log  zerolog.Logger
	now  func() time.Time
}

func NewWalkService(deps WalkDeps, log zerolog.Logger) *WalkService {
	return &WalkService{
		deps: deps,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *WalkService) ListOpenRequests(ctx context.Context) ([]*domain.WalkRequestView, error) {
	return s.deps.Walks.ListOpen(ctx)
}

// CreateRequest posts a new open walk request for one of the actor's dogs.
// With an idempotency key, a replay returns the first request unchanged.
func (s *WalkService) CreateRequest(ctx context.Context, actor ports.Actor, in ports.CreateWalkInput) (*ports.CreateWalkResult, error) {
	if actor.Role != domain.RoleOwner {
		return nil, domain.Auth("only owners can create walk requests")
	}
	if in.DurationMinutes <= 0 {
		return nil, domain.Validation("duration_minutes must be greater than 0")
	}
	if strings.TrimSpace(in.Location) == "" {
		return nil, domain.Validation("location is required")
	}
	if in.RequestedTime.IsZero() {
		return nil, domain.Validation("requested_time is required")
	}

	dog, err := s.deps.Dogs.FindByID(ctx, in.DogID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Validation(domain.MsgUnknownDog)
		}
		return nil, err
	}
	if dog.OwnerID != actor.UserID {
		return nil, domain.Forbidden("dog belongs to another owner")
	}

	idemKey := ""
	if in.IdempotencyKey != "" && s.deps.Idempotency != nil {
		key := fmt.Sprintf("%d:%s", actor.UserID, in.IdempotencyKey)
		id, claimed, err := s.deps.Idempotency.Claim(ctx, key)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("idempotency claim failed, creating anyway")
		case claimed:
			idemKey = key
		case id == 0:
			return nil, domain.Conflict(domain.MsgIdempotencyInFlight)
		default:
			s.log.Info().Str("idempotency_key", in.IdempotencyKey).Int64("request_id", id).Msg("idempotent replay")
			return &ports.CreateWalkResult{RequestID: id, Status: domain.WalkOpen, AlreadyExisted: true}, nil
		}
	}

	req, err := s.deps.Walks.Create(ctx, ports.NewWalkRequest{
		DogID:           in.DogID,
		RequestedTime:   in.RequestedTime.UTC(),
		DurationMinutes: in.DurationMinutes,
		Location:        strings.TrimSpace(in.Location),
	})
	if err != nil {
		s.log.Error().Err(err).Int64("dog_id", in.DogID).Msg("failed to create walk request")
		if idemKey != "" {
			if rerr := s.deps.Idempotency.Release(context.WithoutCancel(ctx), idemKey); rerr != nil {
				s.log.Warn().Err(rerr).Str("idempotency_key", in.IdempotencyKey).Msg("failed to release idempotency key")
			}
		}
		return nil, err
	}

	if idemKey != "" {
		if err := s.deps.Idempotency.Complete(context.WithoutCancel(ctx), idemKey, req.ID); err != nil {
			s.log.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to store idempotency key")
		}
	}

	metrics.WalkRequestsCreatedTotal.Inc()
	s.log.Info().Int64("request_id", req.ID).Int64("dog_id", req.DogID).Int64("owner_id", actor.UserID).Msg("walk request created")

	return &ports.CreateWalkResult{RequestID: req.ID, Status: req.Status}, nil
}

func (s *WalkService) ListRequestsForOwner(ctx context.Context, actor ports.Actor) ([]*domain.WalkRequestView, error) {
	if actor.Role != domain.RoleOwner {
		return nil, domain.Auth("owner session required")
	}
	return s.deps.Walks.ListOpenByOwner(ctx, actor.UserID)
}

// ApplyToRequest lets a walker take an open request. The first successful
// application wins; every later one fails with domain.ErrConflict.
func (s *WalkService) ApplyToRequest(ctx context.Context, actor ports.Actor, requestID int64) (*domain.WalkApplication, error) {
	if actor.Role != domain.RoleWalker {
		return nil, domain.Auth("only walkers can apply to walk requests")
	}
	walker, err := s.deps.Users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Auth("walker account not found")
		}
		return nil, err
	}
	if walker.Role != domain.RoleWalker {
		return nil, domain.Auth("only walkers can apply to walk requests")
	}

	app, err := s.deps.Walks.Accept(ctx, requestID, walker.ID)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			metrics.ApplicationsTotal.WithLabelValues("conflict").Inc()
			s.log.Info().Int64("request_id", requestID).Int64("walker_id", walker.ID).Msg("application rejected, request no longer open")
		}
		return nil, err
	}

	metrics.ApplicationsTotal.WithLabelValues("accepted").Inc()
	s.publish(requestID, domain.WalkOpen, domain.WalkAccepted, actor)
	s.log.Info().Int64("request_id", requestID).Int64("walker_id", walker.ID).Int64("application_id", app.ID).Msg("application accepted")

	return app, nil
}

// CompleteRequest marks an accepted walk as done.
func (s *WalkService) CompleteRequest(ctx context.Context, actor ports.Actor, requestID int64) error {
	return s.transition(ctx, actor, requestID, domain.WalkCompleted)
}

// CancelRequest withdraws a request that has not been completed.
func (s *WalkService) CancelRequest(ctx context.Context, actor ports.Actor, requestID int64) error {
	return s.transition(ctx, actor, requestID, domain.WalkCancelled)
}

func (s *WalkService) transition(ctx context.Context, actor ports.Actor, requestID int64, to domain.WalkStatus) error {
	if actor.Role != domain.RoleOwner {
		return domain.Auth("owner session required")
	}

	req, err := s.deps.Walks.FindByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.OwnerID != actor.UserID {
		return domain.Forbidden("walk request belongs to another owner")
	}
	if !req.Status.CanTransitionTo(to) {
		return domain.Conflict(fmt.Sprintf("cannot move walk request from %s to %s", req.Status, to))
	}

	// The guarded update re-checks the status, so a concurrent transition
	// between FindByID and here still fails with a conflict.
	from, err := s.deps.Walks.Transition(ctx, requestID, domain.SourcesFor(to), to)
	if err != nil {
		return err
	}

	metrics.TransitionsTotal.WithLabelValues(string(to)).Inc()
	s.publish(requestID, from, to, actor)
	s.log.Info().Int64("request_id", requestID).Str("from", string(from)).Str("to", string(to)).Msg("walk request transitioned")
	return nil
}

func (s *WalkService) RequestHistory(ctx context.Context, requestID int64) ([]*domain.WalkEvent, error) {
	if _, err := s.deps.Walks.FindByID(ctx, requestID); err != nil {
		return nil, err
	}
	if s.deps.History == nil {
		return []*domain.WalkEvent{}, nil
	}
	return s.deps.History.FindByRequest(ctx, requestID)
}

func (s *WalkService) ListDogs(ctx context.Context) ([]*domain.Dog, error) {
	return s.deps.Dogs.List(ctx)
}

func (s *WalkService) ListOwnerDogs(ctx context.Context, actor ports.Actor) ([]*domain.Dog, error) {
	if actor.Role != domain.RoleOwner {
		return nil, domain.Auth("owner session required")
	}
	return s.deps.Dogs.ListByOwner(ctx, actor.UserID)
}

func (s *WalkService) WalkerSummary(ctx context.Context) ([]*domain.WalkerSummary, error) {
	return s.deps.Summary.WalkerSummary(ctx)
}

func (s *WalkService) publish(requestID int64, from, to domain.WalkStatus, actor ports.Actor) {
	if s.deps.Events == nil {
		return
	}
	s.deps.Events.Enqueue(domain.WalkEvent{
		RequestID:  requestID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		OccurredAt: s.now(),
	})
}
