package domain

// DogSize is the coarse size class of a dog.
type DogSize string

const (
	SizeSmall  DogSize = "small"
	SizeMedium DogSize = "medium"
	SizeLarge  DogSize = "large"
)

// Dog is owned by exactly one user with the owner role.
type Dog struct {
	ID            int64   `json:"dog_id"`
	Name          string  `json:"name"`
	Size          DogSize `json:"size"`
	OwnerID       int64   `json:"owner_id"`
	OwnerUsername string  `json:"owner_username,omitempty"`
}
