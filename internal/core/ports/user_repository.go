package ports

import (
	"context"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
)

// UserRepository defines persistence operations for marketplace users.
type UserRepository interface {
	// Create inserts the user and returns it with its assigned ID. A unique
	// violation on username or email is reported as domain.ErrValidation.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

// DogRepository defines read operations over dogs.
type DogRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Dog, error)
	// List returns every dog with its owner's username, ordered by id.
	List(ctx context.Context) ([]*domain.Dog, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Dog, error)
}
