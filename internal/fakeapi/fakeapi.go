// Package fakeapi implements an in-memory double of the URL-shortening
// service API for tests. It honors the same endpoint contract, error bodies
// and per-viewer record projections as the real service.
//
// Use it in store and transport tests to simulate server behavior.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/patric-chuzhbe/shrtclient/internal/models"
)

// User is a seeded or registered account.
type User struct {
	ID       string
	Email    string
	Username string
	Password string
	Role     string
}

// URLRecord is the server-side shape of a stored short URL.
type URLRecord struct {
	ID                string
	OriginalURL       string
	ShortCode         string
	CreatedByUserID   string
	CreatedByUsername string
	CreatedAt         time.Time
}

// Claims are the JWT claims carried by issued bearer tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// Server holds the fake service state. The zero value is not usable; create
// instances with New.
//
// OnCreate and OnList are optional function fields that tests can assign to
// observe or gate handler execution: OnCreate runs after a record has been
// inserted, OnList runs before the listing is produced.
type Server struct {
	mu    sync.Mutex
	users []*User
	urls  []URLRecord
	about models.AboutInfo

	signingSecret []byte

	listCalls int
	meStatus  int

	OnCreate func()
	OnList   func()
}

// New creates an empty fake service.
func New() *Server {
	return &Server{
		signingSecret: []byte("fakeapi-signing-secret"),
		about: models.AboutInfo{
			Description:       "Shortens URLs with a random fixed-length code.",
			LastUpdated:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			UpdatedByUserName: "admin",
		},
	}
}

// AddUser seeds an account and returns it.
func (s *Server) AddUser(email, username, password, role string) *User {
	s.mu.Lock()
	defer s.mu.Unlock()

	usr := &User{
		ID:       uuid.NewString(),
		Email:    email,
		Username: username,
		Password: password,
		Role:     role,
	}
	s.users = append(s.users, usr)

	return usr
}

// AddURL seeds a record owned by owner and returns it.
func (s *Server) AddURL(owner *User, originalURL string) URLRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.insertURL(owner, originalURL)

	return record
}

// insertURL must be called with the mutex held.
func (s *Server) insertURL(owner *User, originalURL string) URLRecord {
	id := uuid.NewString()
	record := URLRecord{
		ID:                id,
		OriginalURL:       originalURL,
		ShortCode:         strings.ReplaceAll(id, "-", "")[:8],
		CreatedByUserID:   owner.ID,
		CreatedByUsername: owner.Username,
		CreatedAt:         time.Now().UTC(),
	}
	s.urls = append(s.urls, record)

	return record
}

// SetMeStatus forces GET /auth/me to respond with status instead of the
// resolved identity. Zero restores normal behavior.
func (s *Server) SetMeStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.meStatus = status
}

// ListURLCalls reports how many times GET /urls has been served.
func (s *Server) ListURLCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.listCalls
}

// IssueToken mints a bearer token for the given user id,
// signed the same way the login and register handlers sign theirs.
func (s *Server) IssueToken(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: userID})

	return token.SignedString(s.signingSecret)
}

// Handler returns the routed HTTP surface of the fake service.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Route(`/auth`, func(router chi.Router) {
		router.Post(`/register`, s.handleRegister)
		router.Post(`/login`, s.handleLogin)
		router.Get(`/me`, s.handleMe)
	})

	router.Route(`/urls`, func(router chi.Router) {
		router.Get(`/`, s.handleListURLs)
		router.Post(`/`, s.handleCreateURL)
		router.Get(`/{id}`, s.handleGetURL)
		router.Delete(`/{id}`, s.handleDeleteURL)
	})

	router.Get(`/about`, s.handleGetAbout)
	router.Put(`/about`, s.handleUpdateAbout)

	return router
}

func writeJSON(response http.ResponseWriter, status int, payload any) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	_ = json.NewEncoder(response).Encode(payload)
}

func writeError(response http.ResponseWriter, status int, message string) {
	writeJSON(response, status, models.APIErrorBody{Error: message})
}

func (s *Server) findUserByEmail(email string) *User {
	for _, usr := range s.users {
		if usr.Email == email {
			return usr
		}
	}

	return nil
}

func (s *Server) findUserByID(id string) *User {
	for _, usr := range s.users {
		if usr.ID == id {
			return usr
		}
	}

	return nil
}

// viewer resolves the account behind the request's bearer token,
// or nil for anonymous or unverifiable requests.
func (s *Server) viewer(request *http.Request) *User {
	header := request.Header.Get("Authorization")
	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == "" {
		return nil
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.signingSecret, nil
		},
	)
	if err != nil || !token.Valid {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.findUserByID(claims.UserID)
}

func (s *Server) authResponse(response http.ResponseWriter, usr *User) {
	tokenString, err := s.IssueToken(usr.ID)
	if err != nil {
		writeError(response, http.StatusInternalServerError, "token signing failed")
		return
	}

	writeJSON(response, http.StatusOK, models.AuthResponse{
		Token:    tokenString,
		Username: usr.Username,
		Role:     usr.Role,
	})
}

func (s *Server) handleRegister(response http.ResponseWriter, request *http.Request) {
	payload := models.RegisterRequest{}
	if err := json.NewDecoder(request.Body).Decode(&payload); err != nil {
		writeError(response, http.StatusBadRequest, "malformed request body")
		return
	}

	s.mu.Lock()
	if s.findUserByEmail(payload.Email) != nil {
		s.mu.Unlock()
		writeError(response, http.StatusBadRequest, "User creation failed: email already registered")
		return
	}
	usr := &User{
		ID:       uuid.NewString(),
		Email:    payload.Email,
		Username: payload.Username,
		Password: payload.Password,
		Role:     models.RoleUser,
	}
	s.users = append(s.users, usr)
	s.mu.Unlock()

	s.authResponse(response, usr)
}

func (s *Server) handleLogin(response http.ResponseWriter, request *http.Request) {
	payload := models.LoginRequest{}
	if err := json.NewDecoder(request.Body).Decode(&payload); err != nil {
		writeError(response, http.StatusBadRequest, "malformed request body")
		return
	}

	s.mu.Lock()
	usr := s.findUserByEmail(payload.Email)
	s.mu.Unlock()

	if usr == nil || usr.Password != payload.Password {
		writeError(response, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	s.authResponse(response, usr)
}

func (s *Server) handleMe(response http.ResponseWriter, request *http.Request) {
	s.mu.Lock()
	forcedStatus := s.meStatus
	s.mu.Unlock()

	if forcedStatus != 0 {
		writeError(response, forcedStatus, "forced failure")
		return
	}

	usr := s.viewer(request)
	if usr == nil {
		writeError(response, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(response, http.StatusOK, models.Identity{
		ID:       usr.ID,
		Email:    usr.Email,
		Username: usr.Username,
		Role:     usr.Role,
	})
}

// projectFor shapes a record according to what viewer may see:
// owners and administrators get the full projection, everyone else the safe one.
func projectFor(viewer *User, record URLRecord) models.ShortURL {
	projected := models.ShortURL{
		Projection:        models.ProjectionSafe,
		OriginalURL:       record.OriginalURL,
		ShortCode:         record.ShortCode,
		CreatedByUsername: record.CreatedByUsername,
		CreatedAt:         record.CreatedAt,
	}

	if viewer != nil && (viewer.Role == models.RoleAdmin || viewer.ID == record.CreatedByUserID) {
		projected.Projection = models.ProjectionFull
		projected.ID = record.ID
		projected.CreatedByUserID = record.CreatedByUserID
	}

	return projected
}

func (s *Server) handleListURLs(response http.ResponseWriter, request *http.Request) {
	if s.OnList != nil {
		s.OnList()
	}

	usr := s.viewer(request)

	s.mu.Lock()
	s.listCalls++
	records := make([]URLRecord, len(s.urls))
	copy(records, s.urls)
	s.mu.Unlock()

	listing := make(models.URLList, 0, len(records))
	for _, record := range records {
		listing = append(listing, projectFor(usr, record))
	}

	writeJSON(response, http.StatusOK, listing)
}

func (s *Server) handleGetURL(response http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.urls {
		if record.ID == id {
			writeJSON(response, http.StatusOK, models.ShortURL{
				Projection:        models.ProjectionFull,
				OriginalURL:       record.OriginalURL,
				ShortCode:         record.ShortCode,
				CreatedByUsername: record.CreatedByUsername,
				CreatedAt:         record.CreatedAt,
				ID:                record.ID,
				CreatedByUserID:   record.CreatedByUserID,
			})
			return
		}
	}

	writeJSON(response, http.StatusNotFound, models.APIErrorBody{Message: "Short URL not found"})
}

func (s *Server) handleCreateURL(response http.ResponseWriter, request *http.Request) {
	usr := s.viewer(request)
	if usr == nil {
		writeError(response, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	payload := models.CreateURLRequest{}
	if err := json.NewDecoder(request.Body).Decode(&payload); err != nil {
		writeError(response, http.StatusBadRequest, "malformed request body")
		return
	}

	s.mu.Lock()
	for _, record := range s.urls {
		if record.OriginalURL == payload.OriginalURL {
			s.mu.Unlock()
			writeError(response, http.StatusConflict, "short URL already exists")
			return
		}
	}
	record := s.insertURL(usr, payload.OriginalURL)
	s.mu.Unlock()

	if s.OnCreate != nil {
		s.OnCreate()
	}

	writeJSON(response, http.StatusCreated, models.CreateURLResponse{ID: record.ID})
}

func (s *Server) handleDeleteURL(response http.ResponseWriter, request *http.Request) {
	usr := s.viewer(request)
	if usr == nil {
		writeError(response, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	id := chi.URLParam(request, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, record := range s.urls {
		if record.ID != id {
			continue
		}
		if usr.Role != models.RoleAdmin && usr.ID != record.CreatedByUserID {
			writeError(response, http.StatusForbidden, "you can only delete your own urls")
			return
		}
		s.urls = append(s.urls[:i], s.urls[i+1:]...)
		response.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(response, http.StatusNotFound, models.APIErrorBody{Message: "Short URL not found"})
}

func (s *Server) handleGetAbout(response http.ResponseWriter, request *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(response, http.StatusOK, s.about)
}

func (s *Server) handleUpdateAbout(response http.ResponseWriter, request *http.Request) {
	usr := s.viewer(request)
	if usr == nil {
		writeError(response, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if usr.Role != models.RoleAdmin {
		writeError(response, http.StatusForbidden, "Access denied")
		return
	}

	payload := models.UpdateAboutRequest{}
	if err := json.NewDecoder(request.Body).Decode(&payload); err != nil {
		writeError(response, http.StatusBadRequest, "malformed request body")
		return
	}

	s.mu.Lock()
	s.about = models.AboutInfo{
		Description:       payload.Description,
		LastUpdated:       time.Now().UTC(),
		UpdatedByUserName: usr.Username,
	}
	s.mu.Unlock()

	response.WriteHeader(http.StatusNoContent)
}
