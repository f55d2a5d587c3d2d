package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
	"github.com/pawtrail/dogwalk-service/internal/core/ports"
)

const (
	tableWalkRequests     = "walk_requests"
	tableWalkApplications = "walk_applications"
)

// walkerSummaryQuery aggregates ratings and completed walks per walker. Both
// aggregates are pre-grouped so the joins never fan out.
const walkerSummaryQuery = `
SELECT u.user_id,
       u.username,
       COALESCE(rt.total_ratings, 0),
       rt.average_rating,
       COALESCE(cw.completed_walks, 0)
FROM users u
LEFT JOIN (
    SELECT walker_id, COUNT(*) AS total_ratings, AVG(rating)::float8 AS average_rating
    FROM walk_ratings
    GROUP BY walker_id
) rt ON rt.walker_id = u.user_id
LEFT JOIN (
    SELECT a.walker_id, COUNT(*) AS completed_walks
    FROM walk_applications a
    JOIN walk_requests wr ON wr.request_id = a.request_id
    WHERE a.status = 'accepted' AND wr.status = 'completed'
    GROUP BY a.walker_id
) cw ON cw.walker_id = u.user_id
WHERE u.role = 'walker'
ORDER BY u.user_id`

// WalkRepository implements ports.WalkRequestRepository and
// ports.SummaryRepository on PostgreSQL.
type WalkRepository struct {
	client *Client
}

func NewWalkRepository(client *Client) *WalkRepository {
	return &WalkRepository{client: client}
}

var (
	_ ports.WalkRequestRepository = (*WalkRepository)(nil)
	_ ports.SummaryRepository     = (*WalkRepository)(nil)
)

func (r *WalkRepository) Create(ctx context.Context, in ports.NewWalkRequest) (*domain.WalkRequest, error) {
	ctx, cancel := r.client.withTimeout(ctx)
	defer cancel()

	query, args, err := r.client.qb.Insert(tableWalkRequests).
		Rows(goqu.Record{
			"dog_id":           in.DogID,
			"requested_time":   in.RequestedTime,
			"duration_minutes": in.DurationMinutes,
			"location":         in.Location,
			"status":           string(domain.WalkOpen),
		}).
		Returning("request_id", "status", "created_at").
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build walk request insert: %w", err)
	}

	req := &domain.WalkRequest{
		DogID:           in.DogID,
		RequestedTime:   in.RequestedTime,
		DurationMinutes: in.DurationMinutes,
		Location:        in.Location,
	}
	err = r.client.db.QueryRowContext(ctx, query, args...).Scan(&req.ID, &req.Status, &req.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.Validation(domain.MsgUnknownDog)
		}
		return nil, storeError("insert walk request", err)
	}
	return req, nil
}

func (r *WalkRepository) requestsView() *goqu.SelectDataset {
	return r.client.qb.From(goqu.T(tableWalkRequests).As("wr")).
		Join(goqu.T("dogs").As("d"), goqu.On(goqu.I("wr.dog_id").Eq(goqu.I("d.dog_id")))).
		Join(goqu.T(tableUsers).As("u"), goqu.On(goqu.I("d.owner_id").Eq(goqu.I("u.user_id")))).
		Select(
			goqu.I("wr.request_id"),
			goqu.I("wr.dog_id"),
			goqu.I("wr.requested_time"),
			goqu.I("wr.duration_minutes"),
			goqu.I("wr.location"),
			goqu.I("wr.status"),
			goqu.I("wr.created_at"),
			goqu.I("d.name"),
			goqu.I("d.size"),
			goqu.I("d.owner_id"),
			goqu.I("u.username"),
		)
}

func (r *WalkRepository) FindByID(ctx context.Context, id int64) (*domain.WalkRequestView, error) {
	ctx, cancel := r.client.withTimeout(ctx)
	defer cancel()

	query, args, err := r.requestsView().
		Where(goqu.I("wr.request_id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build walk request query: %w", err)
	}

	v, err := scanRequestView(r.client.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound(domain.MsgRequestNotFound)
	}
	if err != nil {
		return nil, storeError("find walk request", err)
	}
	return v, nil
}

// ListOpen returns open requests, earliest requested time first.
func (r *WalkRepository) ListOpen(ctx context.Context) ([]*domain.WalkRequestView, error) {
	ds := r.requestsView().
		Where(goqu.I("wr.status").Eq(string(domain.WalkOpen))).
		Order(goqu.I("wr.requested_time").Asc(), goqu.I("wr.request_id").Asc())
	return r.listViews(ctx, ds)
}

// ListOpenByOwner returns the owner's open requests, latest requested time first.
func (r *WalkRepository) ListOpenByOwner(ctx context.Context, ownerID int64) ([]*domain.WalkRequestView, error) {
	ds := r.requestsView().
		Where(
			goqu.I("wr.status").Eq(string(domain.WalkOpen)),
			goqu.I("d.owner_id").Eq(ownerID),
		).
		Order(goqu.I("wr.requested_time").Desc(), goqu.I("wr.request_id").Desc())
	return r.listViews(ctx, ds)
}

func (r *WalkRepository) listViews(ctx context.Context, ds *goqu.SelectDataset) ([]*domain.WalkRequestView, error) {
	ctx, cancel := r.client.withTimeout(ctx)
	defer cancel()

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build walk request list: %w", err)
	}

	rows, err := r.client.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError("list walk requests", err)
	}
	defer rows.Close()

	views := make([]*domain.WalkRequestView, 0)
	for rows.Next() {
		v, err := scanRequestView(rows)
		if err != nil {
			return nil, storeError("scan walk request", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list walk requests", err)
	}
	return views, nil
}

// Accept flips the request from open to accepted and records the winning
// application in one transaction. The conditional update is the
// compare-and-set: only one concurrent caller can see a row affected.
func (r *WalkRepository) Accept(ctx context.Context, requestID, walkerID int64) (*domain.WalkApplication, error) {
	ctx, cancel := r.client.withTimeout(ctx)
	defer cancel()

	tx, err := r.client.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeError("begin accept", err)
	}
	defer safeRollback(tx)

	query, args, err := r.client.qb.Update(tableWalkRequests).
		Set(goqu.Record{"status": string(domain.WalkAccepted)}).
		Where(goqu.Ex{"request_id": requestID, "status": string(domain.WalkOpen)}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build accept update: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, storeError("accept walk request", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, storeError("accept walk request", err)
	}
	if n == 0 {
		if _, err := r.lockedStatus(ctx, tx, requestID); err != nil {
			return nil, err
		}
		return nil, domain.Conflict(domain.MsgRequestUnavailable)
	}

	query, args, err = r.client.qb.Insert(tableWalkApplications).
		Rows(goqu.Record{
			"request_id": requestID,
			"walker_id":  walkerID,
			"status":     string(domain.ApplicationAccepted),
		}).
		Returning("application_id", "applied_at").
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build application insert: %w", err)
	}

	app := &domain.WalkApplication{
		RequestID: requestID,
		WalkerID:  walkerID,
		Status:    domain.ApplicationAccepted,
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&app.ID, &app.AppliedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Conflict(domain.MsgRequestUnavailable)
		}
		return nil, storeError("insert application", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeError("commit accept", err)
	}
	return app, nil
}

// Transition moves a request into `to` if it currently holds one of `from`.
// The row is locked first so the previous status can be returned.
func (r *WalkRepository) Transition(ctx context.Context, requestID int64, from []domain.WalkStatus, to domain.WalkStatus) (domain.WalkStatus, error) {
	ctx, cancel := r.client.withTimeout(ctx)
	defer cancel()

	tx, err := r.client.db.BeginTx(ctx, nil)
	if err != nil {
		return "", storeError("begin transition", err)
	}
	defer safeRollback(tx)

	current, err := r.lockedStatus(ctx, tx, requestID)
	if err != nil {
		return "", err
	}
	if !slices.Contains(from, current) {
		return "", domain.Conflict(fmt.Sprintf("cannot move walk request from %s to %s", current, to))
	}

	sources := make([]string, len(from))
	for i, s := range from {
		sources[i] = string(s)
	}

	query, args, err := r.client.qb.Update(tableWalkRequests).
		Set(goqu.Record{"status": string(to)}).
		Where(goqu.Ex{"request_id": requestID, "status": sources}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", fmt.Errorf("build transition update: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return "", storeError("transition walk request", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return "", storeError("transition walk request", err)
	} else if n == 0 {
		return "", domain.Conflict(domain.MsgRequestUnavailable)
	}

	if err := tx.Commit(); err != nil {
		return "", storeError("commit transition", err)
	}
	return current, nil
}

func (r *WalkRepository) lockedStatus(ctx context.Context, tx *sql.Tx, requestID int64) (domain.WalkStatus, error) {
	query, args, err := r.client.qb.From(tableWalkRequests).
		Select("status").
		Where(goqu.Ex{"request_id": requestID}).
		ForUpdate(exp.Wait).
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", fmt.Errorf("build status query: %w", err)
	}

	var status domain.WalkStatus
	err = tx.QueryRowContext(ctx, query, args...).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.NotFound(domain.MsgRequestNotFound)
	}
	if err != nil {
		return "", storeError("load walk request status", err)
	}
	return status, nil
}

func (r *WalkRepository) WalkerSummary(ctx context.Context) ([]*domain.WalkerSummary, error) {
	ctx, cancel := r.client.withTimeout(ctx)
	defer cancel()

	rows, err := r.client.db.QueryContext(ctx, walkerSummaryQuery)
	if err != nil {
		return nil, storeError("walker summary", err)
	}
	defer rows.Close()

	out := make([]*domain.WalkerSummary, 0)
	for rows.Next() {
		var (
			s   domain.WalkerSummary
			avg sql.NullFloat64
		)
		if err := rows.Scan(&s.WalkerID, &s.WalkerUsername, &s.TotalRatings, &avg, &s.CompletedWalks); err != nil {
			return nil, storeError("scan walker summary", err)
		}
		if avg.Valid {
			v := avg.Float64
			s.AverageRating = &v
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("walker summary", err)
	}
	return out, nil
}

func scanRequestView(row rowScanner) (*domain.WalkRequestView, error) {
	var v domain.WalkRequestView
	err := row.Scan(
		&v.ID,
		&v.DogID,
		&v.RequestedTime,
		&v.DurationMinutes,
		&v.Location,
		&v.Status,
		&v.CreatedAt,
		&v.DogName,
		&v.DogSize,
		&v.OwnerID,
		&v.OwnerUsername,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
