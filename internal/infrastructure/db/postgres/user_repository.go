package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
	"github.com/pawtrail/dogwalk-service/internal/core/ports"
)

const tableUsers = "users"

var userColumns = []interface{}{"user_id", "username", "email", "password_hash", "role", "created_at"}

// UserRepository implements ports.UserRepository on PostgreSQL.
type UserRepository struct {
	client *Client
}

func NewUserRepository(client *Client) ports.UserRepository {
	return &UserRepository{client: client}
}

// Create inserts the user. Duplicate usernames or emails are reported as
// validation errors, never as the raw driver error.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := r.client.withTimeout(ctx)
	defer cancel()

	query, args, err := r.client.qb.Insert(tableUsers).
		Rows(goqu.Record{
			"username":      user.Username,
			"email":         user.Email,
			"password_hash": user.Password,
			"role":          user.Role,
		}).
		Returning("user_id", "created_at").
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build user insert: %w", err)
	}

	created := *user
	if err := r.client.db.QueryRowContext(ctx, query, args...).Scan(&created.ID, &created.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Validation(domain.MsgUserExists)
		}
		return nil, storeError("insert user", err)
	}
	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, goqu.Ex{"user_id": id})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, goqu.Ex{"username": username})
}

func (r *UserRepository) findOne(ctx context.Context, where goqu.Ex) (*domain.User, error) {
	ctx, cancel := r.client.withTimeout(ctx)
	defer cancel()

	query, args, err := r.client.qb.From(tableUsers).
		Select(userColumns...).
		Where(where).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build user query: %w", err)
	}

	u, err := scanUser(r.client.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("user not found")
	}
	if err != nil {
		return nil, storeError("find user", err)
	}
	return u, nil
}

// List returns every user ordered by id. The credential is loaded but never
// serialized.
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := r.client.withTimeout(ctx)
	defer cancel()

	query, args, err := r.client.qb.From(tableUsers).
		Select(userColumns...).
		Order(goqu.I("user_id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build user list: %w", err)
	}

	rows, err := r.client.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError("list users", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, storeError("scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list users", err)
	}
	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// DogRepository implements ports.DogRepository on PostgreSQL.
type DogRepository struct {
	client *Client
}

func NewDogRepository(client *Client) ports.DogRepository {
	return &DogRepository{client: client}
}

func (r *DogRepository) dogsWithOwner() *goqu.SelectDataset {
	return r.client.qb.From(goqu.T("dogs").As("d")).
		Join(goqu.T(tableUsers).As("u"), goqu.On(goqu.I("d.owner_id").Eq(goqu.I("u.user_id")))).
		Select(
			goqu.I("d.dog_id"),
			goqu.I("d.name"),
			goqu.I("d.size"),
			goqu.I("d.owner_id"),
			goqu.I("u.username"),
		)
}

func (r *DogRepository) FindByID(ctx context.Context, id int64) (*domain.Dog, error) {
	ctx, cancel := r.client.withTimeout(ctx)
	defer cancel()

	query, args, err := r.dogsWithOwner().
		Where(goqu.I("d.dog_id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build dog query: %w", err)
	}

	d, err := scanDog(r.client.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("dog not found")
	}
	if err != nil {
		return nil, storeError("find dog", err)
	}
	return d, nil
}

// List returns all dogs with their owner's username, ordered by id.
func (r *DogRepository) List(ctx context.Context) ([]*domain.Dog, error) {
	return r.list(ctx, r.dogsWithOwner())
}

func (r *DogRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Dog, error) {
	return r.list(ctx, r.dogsWithOwner().Where(goqu.I("d.owner_id").Eq(ownerID)))
}

func (r *DogRepository) list(ctx context.Context, ds *goqu.SelectDataset) ([]*domain.Dog, error) {
	ctx, cancel := r.client.withTimeout(ctx)
	defer cancel()

	query, args, err := ds.Order(goqu.I("d.dog_id").Asc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build dog list: %w", err)
	}

	rows, err := r.client.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError("list dogs", err)
	}
	defer rows.Close()

	dogs := make([]*domain.Dog, 0)
	for rows.Next() {
		d, err := scanDog(rows)
		if err != nil {
			return nil, storeError("scan dog", err)
		}
		dogs = append(dogs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list dogs", err)
	}
	return dogs, nil
}

func scanDog(row rowScanner) (*domain.Dog, error) {
	var d domain.Dog
	if err := row.Scan(&d.ID, &d.Name, &d.Size, &d.OwnerID, &d.OwnerUsername); err != nil {
		return nil, err
	}
	return &d, nil
}
