// Package aboutstore is the client for the shared "about" page. Reads are
// open to everyone; updates are rejected by the server for non-admin callers.
// There is no caching and no broadcast channel: every read hits the server.
package aboutstore

import (
	"context"

	"github.com/patric-chuzhbe/shrtclient/internal/models"
)

type aboutAPI interface {
	GetAbout(ctx context.Context) (models.AboutInfo, error)
	UpdateAbout(ctx context.Context, request models.UpdateAboutRequest) error
}

type Store struct {
	api aboutAPI
}

func New(api aboutAPI) *Store {
	return &Store{
		api: api,
	}
}

// Get fetches the current about-page content.
func (s *Store) Get(ctx context.Context) (models.AboutInfo, error) {
	return s.api.GetAbout(ctx)
}

// Update replaces the about-page description. The caller is expected to gate
// this on the session's admin flag; the server enforces it regardless.
func (s *Store) Update(ctx context.Context, description string) error {
	return s.api.UpdateAbout(ctx, models.UpdateAboutRequest{Description: description})
}
