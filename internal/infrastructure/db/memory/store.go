// Package memory provides in-process implementations of the store, session,
// idempotency and event ports. They back STORE=memory development runs and
// the service and API tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
	"github.com/pawtrail/dogwalk-service/internal/core/ports"
)

// Store holds every marketplace entity behind a single mutex, so each
// operation is atomic with respect to the others.
type Store struct {
	mu sync.RWMutex

	users        map[int64]domain.User
	dogs         map[int64]domain.Dog
	requests     map[int64]domain.WalkRequest
	applications map[int64]domain.WalkApplication
	ratings      []rating

	nextUser, nextDog, nextRequest, nextApplication int64

	now func() time.Time
}

type rating struct {
	requestID int64
	walkerID  int64
	ownerID   int64
	value     int
}

func NewStore() *Store {
	return &Store{
		users:        make(map[int64]domain.User),
		dogs:         make(map[int64]domain.Dog),
		requests:     make(map[int64]domain.WalkRequest),
		applications: make(map[int64]domain.WalkApplication),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Users() ports.UserRepository { return &userRepo{s: s} }

func (s *Store) Dogs() ports.DogRepository { return &dogRepo{s: s} }

func (s *Store) Walks() ports.WalkRequestRepository { return &walkRepo{s: s} }

func (s *Store) Summary() ports.SummaryRepository { return &walkRepo{s: s} }

// AddDog registers a dog for an existing owner. There is no API for creating
// dogs, so fixtures and tests go through here.
func (s *Store) AddDog(ownerID int64, name string, size domain.DogSize) (*domain.Dog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, ok := s.users[ownerID]
	if !ok || owner.Role != domain.RoleOwner {
		return nil, domain.Validation("owner_id must reference an owner")
	}
	s.nextDog++
	d := domain.Dog{ID: s.nextDog, Name: name, Size: size, OwnerID: ownerID}
	s.dogs[d.ID] = d
	return &d, nil
}

// SetStatus forces a request into status without any transition checks.
func (s *Store) SetStatus(requestID int64, status domain.WalkStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[requestID]
	if !ok {
		return domain.NotFound(domain.MsgRequestNotFound)
	}
	r.Status = status
	s.requests[requestID] = r
	return nil
}

// AddApplication records an application without touching the request status.
func (s *Store) AddApplication(requestID, walkerID int64, status domain.ApplicationStatus) (*domain.WalkApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[requestID]; !ok {
		return nil, domain.NotFound(domain.MsgRequestNotFound)
	}
	return s.insertApplication(requestID, walkerID, status)
}

// AddRating stores a rating for a walk. Only the aggregates are ever read.
func (s *Store) AddRating(requestID, walkerID, ownerID int64, value int) error {
	if value < 1 || value > 5 {
		return domain.Validation("rating must be between 1 and 5")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[requestID]; !ok {
		return domain.NotFound(domain.MsgRequestNotFound)
	}
	for _, r := range s.ratings {
		if r.requestID == requestID {
			return domain.Validation("walk already rated")
		}
	}
	s.ratings = append(s.ratings, rating{requestID: requestID, walkerID: walkerID, ownerID: ownerID, value: value})
	return nil
}

// Seed loads the demo fixture: five users, five dogs and five walk requests
// in mixed states.
func (s *Store) Seed(ctx context.Context) error {
	users := []domain.User{
		{Username: "alice123", Email: "alice@example.com", Password: "hashed123", Role: domain.RoleOwner},
		{Username: "bobwalker", Email: "bob@example.com", Password: "hashed456", Role: domain.RoleWalker},
		{Username: "carol123", Email: "carol@example.com", Password: "hashed789", Role: domain.RoleOwner},
		{Username: "davidowner", Email: "david@example.com", Password: "hashed101", Role: domain.RoleOwner},
		{Username: "emilywalker", Email: "emily@example.com", Password: "hashed112", Role: domain.RoleWalker},
	}
	ids := make(map[string]int64, len(users))
	for i := range users {
		u, err := s.Users().Create(ctx, &users[i])
		if err != nil {
			return fmt.Errorf("seed user %s: %w", users[i].Username, err)
		}
		ids[u.Username] = u.ID
	}

	walks := []struct {
		dog, owner string
		size       domain.DogSize
		at         string
		minutes    int
		location   string
		status     domain.WalkStatus
	}{
		{"Max", "alice123", domain.SizeMedium, "2025-06-10T08:00:00Z", 30, "Parklands", domain.WalkOpen},
		{"Bella", "carol123", domain.SizeSmall, "2025-06-10T09:30:00Z", 45, "Beachside Ave", domain.WalkAccepted},
		{"Lucy", "alice123", domain.SizeSmall, "2025-06-21T14:00:00Z", 60, "City Botanical Gardens", domain.WalkOpen},
		{"Charlie", "carol123", domain.SizeLarge, "2025-06-22T17:00:00Z", 30, "River Torrens Linear Park", domain.WalkCompleted},
		{"Rocky", "davidowner", domain.SizeMedium, "2025-06-23T10:00:00Z", 45, "North Adelaide Dog Park", domain.WalkCancelled},
	}
	for _, w := range walks {
		dog, err := s.AddDog(ids[w.owner], w.dog, w.size)
		if err != nil {
			return fmt.Errorf("seed dog %s: %w", w.dog, err)
		}
		at, err := time.Parse(time.RFC3339, w.at)
		if err != nil {
			return err
		}
		req, err := s.Walks().Create(ctx, ports.NewWalkRequest{
			DogID:           dog.ID,
			RequestedTime:   at,
			DurationMinutes: w.minutes,
			Location:        w.location,
		})
		if err != nil {
			return fmt.Errorf("seed walk for %s: %w", w.dog, err)
		}
		if w.status == domain.WalkOpen {
			continue
		}
		if err := s.SetStatus(req.ID, w.status); err != nil {
			return err
		}
		if w.status == domain.WalkAccepted || w.status == domain.WalkCompleted {
			if _, err := s.AddApplication(req.ID, ids["bobwalker"], domain.ApplicationAccepted); err != nil {
				return err
			}
		}
		if w.status == domain.WalkCompleted {
			if err := s.AddRating(req.ID, ids["bobwalker"], ids[w.owner], 5); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) insertApplication(requestID, walkerID int64, status domain.ApplicationStatus) (*domain.WalkApplication, error) {
	for _, a := range s.applications {
		if a.RequestID == requestID && a.WalkerID == walkerID {
			return nil, domain.Conflict(domain.MsgRequestUnavailable)
		}
	}
	s.nextApplication++
	app := domain.WalkApplication{
		ID:        s.nextApplication,
		RequestID: requestID,
		WalkerID:  walkerID,
		Status:    status,
		AppliedAt: s.now(),
	}
	s.applications[app.ID] = app
	return &app, nil
}

// view joins a request with its dog and owner. Callers hold s.mu.
func (s *Store) view(r domain.WalkRequest) *domain.WalkRequestView {
	d := s.dogs[r.DogID]
	return &domain.WalkRequestView{
		WalkRequest:   r,
		DogName:       d.Name,
		DogSize:       d.Size,
		OwnerID:       d.OwnerID,
		OwnerUsername: s.users[d.OwnerID].Username,
	}
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.Validation(domain.MsgUserExists)
		}
	}
	r.s.nextUser++
	created := *user
	created.ID = r.s.nextUser
	if created.CreatedAt.IsZero() {
		created.CreatedAt = r.s.now()
	}
	r.s.users[created.ID] = created
	out := created
	return &out, nil
}

func (r *userRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.NotFound("user not found")
	}
	return &u, nil
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, domain.NotFound("user not found")
}

func (r *userRepo) List(ctx context.Context) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type dogRepo struct{ s *Store }

func (r *dogRepo) FindByID(ctx context.Context, id int64) (*domain.Dog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.dogs[id]
	if !ok {
		return nil, domain.NotFound("dog not found")
	}
	d.OwnerUsername = r.s.users[d.OwnerID].Username
	return &d, nil
}

func (r *dogRepo) List(ctx context.Context) ([]*domain.Dog, error) {
	return r.list(func(domain.Dog) bool { return true }), nil
}

func (r *dogRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Dog, error) {
	return r.list(func(d domain.Dog) bool { return d.OwnerID == ownerID }), nil
}

func (r *dogRepo) list(keep func(domain.Dog) bool) []*domain.Dog {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Dog, 0)
	for _, d := range r.s.dogs {
		if !keep(d) {
			continue
		}
		d.OwnerUsername = r.s.users[d.OwnerID].Username
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type walkRepo struct{ s *Store }

func (r *walkRepo) Create(ctx context.Context, in ports.NewWalkRequest) (*domain.WalkRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.dogs[in.DogID]; !ok {
		return nil, domain.Validation(domain.MsgUnknownDog)
	}
	r.s.nextRequest++
	req := domain.WalkRequest{
		ID:              r.s.nextRequest,
		DogID:           in.DogID,
		RequestedTime:   in.RequestedTime,
		DurationMinutes: in.DurationMinutes,
		Location:        in.Location,
		Status:          domain.WalkOpen,
		CreatedAt:       r.s.now(),
	}
	r.s.requests[req.ID] = req
	return &req, nil
}

func (r *walkRepo) FindByID(ctx context.Context, id int64) (*domain.WalkRequestView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	req, ok := r.s.requests[id]
	if !ok {
		return nil, domain.NotFound(domain.MsgRequestNotFound)
	}
	return r.s.view(req), nil
}

func (r *walkRepo) ListOpen(ctx context.Context) ([]*domain.WalkRequestView, error) {
	out := r.openWhere(func(*domain.WalkRequestView) bool { return true })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RequestedTime.Equal(out[j].RequestedTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].RequestedTime.Before(out[j].RequestedTime)
	})
	return out, nil
}

func (r *walkRepo) ListOpenByOwner(ctx context.Context, ownerID int64) ([]*domain.WalkRequestView, error) {
	out := r.openWhere(func(v *domain.WalkRequestView) bool { return v.OwnerID == ownerID })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RequestedTime.Equal(out[j].RequestedTime) {
			return out[i].ID > out[j].ID
		}
		return out[i].RequestedTime.After(out[j].RequestedTime)
	})
	return out, nil
}

func (r *walkRepo) openWhere(keep func(*domain.WalkRequestView) bool) []*domain.WalkRequestView {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.WalkRequestView, 0)
	for _, req := range r.s.requests {
		if req.Status != domain.WalkOpen {
			continue
		}
		if v := r.s.view(req); keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Accept performs the open → accepted compare-and-set under the store lock.
func (r *walkRepo) Accept(ctx context.Context, requestID, walkerID int64) (*domain.WalkApplication, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Unavailable("datastore timed out", err)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.requests[requestID]
	if !ok {
		return nil, domain.NotFound(domain.MsgRequestNotFound)
	}
	if req.Status != domain.WalkOpen {
		return nil, domain.Conflict(domain.MsgRequestUnavailable)
	}

	app, err := r.s.insertApplication(requestID, walkerID, domain.ApplicationAccepted)
	if err != nil {
		return nil, err
	}
	req.Status = domain.WalkAccepted
	r.s.requests[requestID] = req
	return app, nil
}

func (r *walkRepo) Transition(ctx context.Context, requestID int64, from []domain.WalkStatus, to domain.WalkStatus) (domain.WalkStatus, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.Unavailable("datastore timed out", err)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.requests[requestID]
	if !ok {
		return "", domain.NotFound(domain.MsgRequestNotFound)
	}
	if !slices.Contains(from, req.Status) {
		return "", domain.Conflict(fmt.Sprintf("cannot move walk request from %s to %s", req.Status, to))
	}
	prev := req.Status
	req.Status = to
	r.s.requests[requestID] = req
	return prev, nil
}

func (r *walkRepo) WalkerSummary(ctx context.Context) ([]*domain.WalkerSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byWalker := make(map[int64]*domain.WalkerSummary)
	sums := make(map[int64]int)
	out := make([]*domain.WalkerSummary, 0)
	for _, u := range r.s.users {
		if u.Role != domain.RoleWalker {
			continue
		}
		ws := &domain.WalkerSummary{WalkerID: u.ID, WalkerUsername: u.Username}
		byWalker[u.ID] = ws
		out = append(out, ws)
	}

	for _, rt := range r.s.ratings {
		if ws, ok := byWalker[rt.walkerID]; ok {
			ws.TotalRatings++
			sums[rt.walkerID] += rt.value
		}
	}
	for _, a := range r.s.applications {
		ws, ok := byWalker[a.WalkerID]
		if !ok || a.Status != domain.ApplicationAccepted {
			continue
		}
		if r.s.requests[a.RequestID].Status == domain.WalkCompleted {
			ws.CompletedWalks++
		}
	}
	for id, ws := range byWalker {
		if ws.TotalRatings > 0 {
			avg := float64(sums[id]) / float64(ws.TotalRatings)
			ws.AverageRating = &avg
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].WalkerID < out[j].WalkerID })
	return out, nil
}
