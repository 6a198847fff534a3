// Package session owns the client's credential and derived identity. It is
// the only writer of persisted session state and exposes two broadcast
// channels: "is authenticated" and "current identity".
package session

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/shrtclient/internal/logger"
	"github.com/patric-chuzhbe/shrtclient/internal/models"
	"github.com/patric-chuzhbe/shrtclient/internal/pubsub"
	"github.com/patric-chuzhbe/shrtclient/internal/sessionstorage"
)

// Storage keys for the persisted credential and identity. Both entries are
// written together on successful authentication and cleared together on
// logout.
const (
	tokenKey    = "auth_token"
	identityKey = "user_info"
)

type authAPI interface {
	Register(ctx context.Context, request models.RegisterRequest) (models.AuthResponse, error)
	Login(ctx context.Context, request models.LoginRequest) (models.AuthResponse, error)
	Me(ctx context.Context) (models.Identity, error)
}

// Store holds the session state. Construct one per running client with New.
type Store struct {
	api     authAPI
	storage sessionstorage.Storage

	authState *pubsub.Subject[bool]
	identity  *pubsub.Subject[*models.Identity]
}

// New creates a Store backed by the given API transport and persistence
// surface. Both broadcast channels are seeded from whatever the storage
// already holds, so late subscribers always observe the current state.
func New(api authAPI, storage sessionstorage.Storage) *Store {
	store := &Store{
		api:     api,
		storage: storage,
	}

	store.authState = pubsub.NewWithInitial(store.IsAuthenticated())
	store.identity = pubsub.NewWithInitial(store.CurrentIdentity())

	return store
}

// AuthState is the broadcast channel of the authenticated flag.
func (s *Store) AuthState() *pubsub.Subject[bool] {
	return s.authState
}

// Identity is the broadcast channel of the cached identity;
// nil is published when no identity is known.
func (s *Store) Identity() *pubsub.Subject[*models.Identity] {
	return s.identity
}

// Register creates an account and, on success, establishes a session exactly
// like Login. On failure the session state is unchanged and the error is
// returned to the caller.
func (s *Store) Register(ctx context.Context, email, username, password string) (models.AuthResponse, error) {
	response, err := s.api.Register(ctx, models.RegisterRequest{
		Email:    email,
		Username: username,
		Password: password,
	})
	if err != nil {
		return models.AuthResponse{}, err
	}

	s.acceptCredential(ctx, response)

	return response, nil
}

// Login exchanges credentials for a session. On failure the session state is
// unchanged and the error is returned to the caller; there are no automatic
// retries.
func (s *Store) Login(ctx context.Context, email, password string) (models.AuthResponse, error) {
	response, err := s.api.Login(ctx, models.LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return models.AuthResponse{}, err
	}

	s.acceptCredential(ctx, response)

	return response, nil
}

// acceptCredential persists the token, flips the authenticated broadcast to
// true, and only then resolves the identity. The broadcast is deliberately
// eager: consumers must tolerate a window where the flag is up while the
// identity is still nil.
func (s *Store) acceptCredential(ctx context.Context, response models.AuthResponse) {
	s.storage.Set(tokenKey, response.Token)
	s.authState.Publish(true)
	s.refreshIdentity(ctx)
}

// refreshIdentity resolves and caches the identity behind the current token.
// A failure is logged and swallowed: the authenticated flag stays up and the
// identity stays nil until the next successful login.
func (s *Store) refreshIdentity(ctx context.Context) {
	identity, err := s.api.Me(ctx)
	if err != nil {
		logger.Log.Debugln("Error calling the `s.api.Me()`: ", zap.Error(err))
		return
	}

	serialized, err := json.Marshal(identity)
	if err != nil {
		logger.Log.Debugln("Error serializing the identity: ", zap.Error(err))
		return
	}

	s.storage.Set(identityKey, string(serialized))
	s.identity.Publish(&identity)
}

// Logout clears the persisted credential and cached identity and broadcasts
// authenticated = false, then a nil identity, in that order. No remote call
// is made; calling it while already logged out re-broadcasts the falsy
// values.
func (s *Store) Logout() {
	s.storage.Delete(tokenKey)
	s.storage.Delete(identityKey)
	s.authState.Publish(false)
	s.identity.Publish(nil)
}

// Token returns the persisted bearer credential, or an empty string.
// The API transport uses it as its token source.
func (s *Store) Token() string {
	token, _ := s.storage.Get(tokenKey)

	return token
}

// IsAuthenticated reports whether a credential is currently persisted. It is
// a point-in-time read; callers needing live updates subscribe to AuthState.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// CurrentIdentity returns the cached identity, or nil when the identity
// follow-up call has not completed (or failed).
func (s *Store) CurrentIdentity() *models.Identity {
	serialized, ok := s.storage.Get(identityKey)
	if !ok {
		return nil
	}

	identity := &models.Identity{}
	if err := json.Unmarshal([]byte(serialized), identity); err != nil {
		return nil
	}

	return identity
}

// IsAdmin reports whether the cached identity holds the Admin role.
// It is false whenever the identity is absent.
func (s *Store) IsAdmin() bool {
	identity := s.CurrentIdentity()

	return identity != nil && identity.Role == models.RoleAdmin
}
