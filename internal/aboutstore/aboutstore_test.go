package aboutstore

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/shrtclient/internal/apiclient"
	"github.com/patric-chuzhbe/shrtclient/internal/errclass"
	"github.com/patric-chuzhbe/shrtclient/internal/fakeapi"
	"github.com/patric-chuzhbe/shrtclient/internal/logger"
	"github.com/patric-chuzhbe/shrtclient/internal/models"
)

func setupStore(t *testing.T, fake *fakeapi.Server, viewer *fakeapi.User) *Store {
	require.NoError(t, logger.Init("error"))

	server := httptest.NewServer(fake.Handler())
	t.Cleanup(server.Close)

	client := apiclient.New(server.URL, 5*time.Second)
	if viewer != nil {
		token, err := fake.IssueToken(viewer.ID)
		require.NoError(t, err)
		client.SetTokenSource(func() string { return token })
	}

	return New(client)
}

func TestGetIsOpenToAnonymousViewers(t *testing.T) {
	fake := fakeapi.New()

	store := setupStore(t, fake, nil)

	about, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, about.Description)
}

func TestAdminUpdate(t *testing.T) {
	fake := fakeapi.New()
	admin := fake.AddUser("root@example.com", "root", "s3cret", models.RoleAdmin)

	store := setupStore(t, fake, admin)

	err := store.Update(context.Background(), "Rewritten description.")
	require.NoError(t, err)

	about, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Rewritten description.", about.Description)
	assert.Equal(t, "root", about.UpdatedByUserName)
	assert.False(t, about.LastUpdated.IsZero())
}

func TestNonAdminUpdateIsForbidden(t *testing.T) {
	fake := fakeapi.New()
	usr := fake.AddUser("alice@example.com", "alice", "s3cret", models.RoleUser)

	store := setupStore(t, fake, usr)

	err := store.Update(context.Background(), "Sneaky edit.")
	require.Error(t, err)

	classified := &errclass.Error{}
	require.True(t, errors.As(err, &classified))
	assert.Equal(t, errclass.KindForbidden, classified.Classification.Kind)
	assert.Equal(t, "Access denied", classified.Classification.Message)
}
