// Package models defines the request and response shapes exchanged with the
// URL-shortening service API, and the client-side representation of short-URL
// records.
package models

import (
	"encoding/json"
	"time"
)

// Roles returned by the auth endpoints. Role comparison is case-sensitive.
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by both the register and the login endpoints.
// Token is an opaque bearer credential; the client never inspects it.
type AuthResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Identity is the resolved user profile behind a credential,
// returned by the "who am I" endpoint.
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Projection tags the shape a ShortURL record arrived in. The server decides
// per record whether the viewer may see owner-identifying fields; the client
// discriminates at deserialization time and downstream code switches on the
// tag instead of probing fields.
type Projection int

const (
	// ProjectionSafe is the public shape: no record id, no owner id.
	ProjectionSafe Projection = iota

	// ProjectionFull carries the record id and the owner's user id.
	ProjectionFull
)

// ShortURL is one element of the short-URL listing. ID and CreatedByUserID
// are meaningful only when Projection is ProjectionFull.
type ShortURL struct {
	Projection Projection `json:"-"`

	OriginalURL       string    `json:"originalUrl"`
	ShortCode         string    `json:"shortCode"`
	CreatedByUsername string    `json:"createdByUsername"`
	CreatedAt         time.Time `json:"createdAt"`

	ID              string `json:"id,omitempty"`
	CreatedByUserID string `json:"createdByUserId,omitempty"`
}

// UnmarshalJSON decodes a record and tags it ProjectionFull when the server
// included an id, ProjectionSafe otherwise.
func (u *ShortURL) UnmarshalJSON(data []byte) error {
	type alias ShortURL

	decoded := alias{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	decoded.Projection = ProjectionSafe
	if decoded.ID != "" {
		decoded.Projection = ProjectionFull
	}

	*u = ShortURL(decoded)

	return nil
}

// MarshalJSON emits the shape matching the record's projection so that a
// re-serialized safe record never leaks owner-identifying fields.
func (u ShortURL) MarshalJSON() ([]byte, error) {
	type safeProjection struct {
		OriginalURL       string    `json:"originalUrl"`
		ShortCode         string    `json:"shortCode"`
		CreatedByUsername string    `json:"createdByUsername"`
		CreatedAt         time.Time `json:"createdAt"`
	}

	type fullProjection struct {
		safeProjection
		ID              string `json:"id"`
		CreatedByUserID string `json:"createdByUserId"`
	}

	safe := safeProjection{
		OriginalURL:       u.OriginalURL,
		ShortCode:         u.ShortCode,
		CreatedByUsername: u.CreatedByUsername,
		CreatedAt:         u.CreatedAt,
	}

	if u.Projection == ProjectionFull {
		return json.Marshal(fullProjection{
			safeProjection:  safe,
			ID:              u.ID,
			CreatedByUserID: u.CreatedByUserID,
		})
	}

	return json.Marshal(safe)
}

// URLList is the collection snapshot broadcast by the URL store,
// in server response order.
type URLList []ShortURL

type CreateURLRequest struct {
	OriginalURL string `json:"originalUrl" validate:"required,url"`
}

type CreateURLResponse struct {
	ID string `json:"id"`
}

// AboutInfo is the shared "about" page content. Only administrators may
// update it.
type AboutInfo struct {
	Description       string    `json:"description"`
	LastUpdated       time.Time `json:"lastUpdated"`
	UpdatedByUserName string    `json:"updatedByUserName"`
}

type UpdateAboutRequest struct {
	Description string `json:"description" validate:"required"`
}

// APIErrorBody is the error payload the service attaches to failed requests.
// Error and Message are free-text alternatives; Errors carries field-level
// validation messages keyed by field name.
type APIErrorBody struct {
	Error   string              `json:"error,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}
