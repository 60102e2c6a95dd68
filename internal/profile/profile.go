package profile

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a user has no profile row yet.
var ErrNotFound = errors.New("profile not found")

// Profile holds the user-editable account data. The id comes from the
// identity provider; accounts themselves live there, not here.
type Profile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpdateCommand carries the editable fields of a profile update.
type UpdateCommand struct {
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}
