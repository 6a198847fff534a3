package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortURLUnmarshalProjection(t *testing.T) {
	type tTestCase struct {
		name               string
		payload            string
		expectedProjection Projection
		expectedID         string
	}

	testCases := []tTestCase{
		{
			name: "full projection when id is present",
			payload: `{
				"id": "0b4ee800-24de-4c92-a30b-93a7fd4f9fb1",
				"originalUrl": "https://example.com/page",
				"shortCode": "a1b2c3",
				"createdByUsername": "alice",
				"createdByUserId": "6ce013ac-5c33-4b16-a6ce-6e1a93f3a38a",
				"createdAt": "2024-05-01T10:00:00Z"
			}`,
			expectedProjection: ProjectionFull,
			expectedID:         "0b4ee800-24de-4c92-a30b-93a7fd4f9fb1",
		},
		{
			name: "safe projection when id is absent",
			payload: `{
				"originalUrl": "https://example.com/page",
				"shortCode": "a1b2c3",
				"createdByUsername": "alice",
				"createdAt": "2024-05-01T10:00:00Z"
			}`,
			expectedProjection: ProjectionSafe,
			expectedID:         "",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			record := ShortURL{}
			err := json.Unmarshal([]byte(testCase.payload), &record)
			require.NoError(t, err)

			assert.Equal(t, testCase.expectedProjection, record.Projection)
			assert.Equal(t, testCase.expectedID, record.ID)
			assert.Equal(t, "https://example.com/page", record.OriginalURL)
		})
	}
}

func TestShortURLMarshalSafeOmitsOwnerFields(t *testing.T) {
	record := ShortURL{
		Projection:        ProjectionSafe,
		OriginalURL:       "https://example.com",
		ShortCode:         "xyz",
		CreatedByUsername: "bob",
		CreatedAt:         time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),

		// Stale values must not leak into the serialized form.
		ID:              "leaked-id",
		CreatedByUserID: "leaked-owner",
	}

	raw, err := json.Marshal(record)
	require.NoError(t, err)

	decoded := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.NotContains(t, decoded, "id")
	assert.NotContains(t, decoded, "createdByUserId")
	assert.Equal(t, "https://example.com", decoded["originalUrl"])
}

func TestShortURLMarshalFullRoundTrip(t *testing.T) {
	record := ShortURL{
		Projection:        ProjectionFull,
		OriginalURL:       "https://example.com",
		ShortCode:         "xyz",
		CreatedByUsername: "bob",
		CreatedAt:         time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		ID:                "some-id",
		CreatedByUserID:   "owner-id",
	}

	raw, err := json.Marshal(record)
	require.NoError(t, err)

	restored := ShortURL{}
	require.NoError(t, json.Unmarshal(raw, &restored))

	assert.Equal(t, record, restored)
}
