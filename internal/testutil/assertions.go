package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/dom/musikkhylla/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorResponse verifies the status and the {"success": false, "error": ...} body
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	var body ErrorResponse
	AssertJSONResponse(t, resp, &body)
	assert.False(t, body.Success)
	assert.Equal(t, expectedMessage, body.Error, "error message mismatch")
}

// AssertAlbumOrder verifies albums come back in the given title order
func AssertAlbumOrder(t *testing.T, albums []*domain.Album, wantTitles ...string) {
	t.Helper()

	titles := make([]string, len(albums))
	for i, album := range albums {
		titles[i] = album.Title
	}
	assert.Equal(t, wantTitles, titles, "unexpected album order")
}

// AlbumPositions lists the positions of albums in order
func AlbumPositions(albums []*domain.Album) []int {
	positions := make([]int, len(albums))
	for i, album := range albums {
		positions[i] = album.Position
	}
	return positions
}
