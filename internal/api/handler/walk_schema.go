package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Walks ---

type createWalkRequest struct {
	DogID int64 `json:"dog_id" validate:"required,gt=0"`
	// RequestedTime accepts RFC 3339 or "YYYY-MM-DD HH:MM:SS" (read as UTC).
	RequestedTime   string `json:"requested_time"   validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0,max=1440"`
	Location        string `json:"location"         validate:"required,max=255"`
}

type createWalkResponse struct {
	Message   string `json:"message"`
	RequestID int64  `json:"request_id"`
}

type applyResponse struct {
	Message       string `json:"message"`
	ApplicationID int64  `json:"application_id"`
}

type walkRequestResponse struct {
	RequestID       int64     `json:"request_id"`
	DogID           int64     `json:"dog_id"`
	DogName         string    `json:"dog_name"`
	Size            string    `json:"size"`
	OwnerName       string    `json:"owner_name"`
	RequestedTime   time.Time `json:"requested_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Location        string    `json:"location"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

type dogResponse struct {
	DogID         int64  `json:"dog_id"`
	Name          string `json:"name"`
	Size          string `json:"size"`
	OwnerUsername string `json:"owner_username"`
}

// dogDirectoryResponse is the flat row served by GET /api/dogs.
type dogDirectoryResponse struct {
	DogName       string `json:"dog_name"`
	Size          string `json:"size"`
	OwnerUsername string `json:"owner_username"`
}

type walkerSummaryResponse struct {
	WalkerUsername string   `json:"walker_username"`
	TotalRatings   int      `json:"total_ratings"`
	AverageRating  *float64 `json:"average_rating"`
	CompletedWalks int      `json:"completed_walks"`
}

// --- Users ---

type registerRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email"    validate:"required,email,max=100"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"     validate:"required,oneof=owner walker"`
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// sessionUserResponse is the login payload and the body of GET /users/me.
type sessionUserResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type userResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
