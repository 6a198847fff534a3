// Package urlstore owns the authoritative in-memory short-URL collection.
// The collection is always the result of the most recently completed full
// fetch: mutations never patch it directly, they trigger a replacement fetch.
package urlstore

import (
	"context"
	"sync"

	"github.com/thoas/go-funk"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/shrtclient/internal/logger"
	"github.com/patric-chuzhbe/shrtclient/internal/models"
	"github.com/patric-chuzhbe/shrtclient/internal/pubsub"
)

type urlsAPI interface {
	ListURLs(ctx context.Context) (models.URLList, error)
	GetURL(ctx context.Context, id string) (models.ShortURL, error)
	CreateURL(ctx context.Context, request models.CreateURLRequest) (models.CreateURLResponse, error)
	DeleteURL(ctx context.Context, id string) error
}

// Store caches the collection and broadcasts every replacement snapshot.
type Store struct {
	api urlsAPI

	mu         sync.RWMutex
	collection models.URLList

	urls *pubsub.Subject[models.URLList]
}

// New creates a Store with an empty, not-yet-fetched collection. The
// broadcast channel delivers nothing until the first fetch completes.
func New(api urlsAPI) *Store {
	return &Store{
		api:  api,
		urls: pubsub.New[models.URLList](),
	}
}

// URLs is the broadcast channel of collection snapshots.
func (s *Store) URLs() *pubsub.Subject[models.URLList] {
	return s.urls
}

// FetchAll replaces the cached collection with the server's current listing,
// keeping server order, and broadcasts the new snapshot. It is always a full
// replace, never a merge. On failure the cached collection is untouched.
func (s *Store) FetchAll(ctx context.Context) (models.URLList, error) {
	listing, err := s.api.ListURLs(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.collection = listing
	s.mu.Unlock()

	s.urls.Publish(listing)

	return listing, nil
}

// FetchOne looks up a single record by id without touching the cached
// collection.
func (s *Store) FetchOne(ctx context.Context, id string) (models.ShortURL, error) {
	return s.api.GetURL(ctx, id)
}

// Create submits a new URL. On success it triggers a full re-fetch so the
// next broadcast reflects the new record; the returned id is valid even when
// that re-fetch fails. On create failure the collection is untouched.
func (s *Store) Create(ctx context.Context, originalURL string) (string, error) {
	response, err := s.api.CreateURL(ctx, models.CreateURLRequest{OriginalURL: originalURL})
	if err != nil {
		return "", err
	}

	s.refresh(ctx)

	return response.ID, nil
}

// Delete removes a record by id. On success it triggers a full re-fetch;
// on failure the collection is untouched.
func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.api.DeleteURL(ctx, id)
	if err != nil {
		return err
	}

	s.refresh(ctx)

	return nil
}

// refresh is the post-mutation re-fetch. Concurrent refreshes are not
// coalesced: every successful mutation costs one full round trip, and
// snapshots are applied in completion order. A refresh failure is logged and
// swallowed; the mutation itself already succeeded.
func (s *Store) refresh(ctx context.Context) {
	_, err := s.FetchAll(ctx)
	if err != nil {
		logger.Log.Debugln("Error refreshing the collection: ", zap.Error(err))
	}
}

// Snapshot returns a copy of the cached collection.
func (s *Store) Snapshot() models.URLList {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(models.URLList, len(s.collection))
	copy(snapshot, s.collection)

	return snapshot
}

// Find returns the cached full-projection record with the given id. Safe
// records carry no id and can never match.
func (s *Store) Find(id string) (models.ShortURL, bool) {
	found := funk.Find(s.Snapshot(), func(record models.ShortURL) bool {
		return record.Projection == models.ProjectionFull && record.ID == id
	})
	if found == nil {
		return models.ShortURL{}, false
	}

	return found.(models.ShortURL), true
}
