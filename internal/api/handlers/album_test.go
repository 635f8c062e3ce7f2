package handlers_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dom/musikkhylla/internal/domain"
	"github.com/dom/musikkhylla/internal/testutil"
	"github.com/dom/musikkhylla/internal/websocket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultTimeout = 5 * time.Second

type albumList struct {
	Albums []*domain.Album `json:"albums"`
}

func listAlbums(t *testing.T, ts *testutil.TestServer, token string) []*domain.Album {
	t.Helper()

	resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/albums"), token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list albumList
	testutil.AssertJSONResponse(t, resp, &list)
	return list.Albums
}

func createAlbum(t *testing.T, ts *testutil.TestServer, token string, body map[string]interface{}) *domain.Album {
	t.Helper()

	resp := testutil.PostJSON(t, ts.APIURL("/albums"), token, body)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var album domain.Album
	testutil.AssertJSONResponse(t, resp, &album)
	return &album
}

func TestAlbumHandler_RequiresAuth(t *testing.T) {
	ts := testutil.NewTestServer(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/albums"},
		{http.MethodPost, "/albums"},
		{http.MethodPost, "/albums/reorder"},
		{http.MethodPut, "/albums/" + uuid.NewString()},
		{http.MethodDelete, "/albums/" + uuid.NewString()},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			resp := testutil.DoJSON(t, route.method, ts.APIURL(route.path), "", nil)
			defer resp.Body.Close()
			testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "No token provided")
		})
	}
}

func TestAlbumHandler_ListSeedsDefaults(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	albums := listAlbums(t, ts, token)
	testutil.AssertAlbumOrder(t, albums,
		"Abbey Road", "Dark Side of the Moon", "Nevermind", "Back in Black", "Thriller")

	assert.Len(t, listAlbums(t, ts, token), 5)
}

func TestAlbumHandler_ListUsesSnakeCaseFields(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/albums"), token, nil)
	defer resp.Body.Close()

	var raw struct {
		Albums []map[string]interface{} `json:"albums"`
	}
	testutil.AssertJSONResponse(t, resp, &raw)
	require.NotEmpty(t, raw.Albums)

	first := raw.Albums[0]
	for _, key := range []string{"id", "title", "artist", "year", "cover_url", "spotify_url", "apple_music_url", "tidal_url", "position", "created_at"} {
		assert.Contains(t, first, key)
	}
	assert.NotContains(t, first, "user_id")
}

func TestAlbumHandler_Create(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	tests := []struct {
		name           string
		request        map[string]interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name: "successful creation",
			request: map[string]interface{}{
				"title":       "In Rainbows",
				"artist":      "Radiohead",
				"year":        2007,
				"spotify_url": "https://open.spotify.com/album/abc",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing title",
			request:        map[string]interface{}{"artist": "Radiohead"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "title is required",
		},
		{
			name:           "missing artist",
			request:        map[string]interface{}{"title": "In Rainbows"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "artist is required",
		},
		{
			name:           "title longer than the column",
			request:        map[string]interface{}{"title": strings.Repeat("t", 250), "artist": "Radiohead"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "title must be at most 200 characters",
		},
		{
			name:           "year out of range",
			request:        map[string]interface{}{"title": "In Rainbows", "artist": "Radiohead", "year": 3000000000},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "year must be between 0 and 9999",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.PostJSON(t, ts.APIURL("/albums"), token, tt.request)
			defer resp.Body.Close()

			if tt.expectedError != "" {
				testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedError)
				return
			}

			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			var album domain.Album
			testutil.AssertJSONResponse(t, resp, &album)
			assert.Equal(t, "In Rainbows", album.Title)
			require.NotNil(t, album.Year)
			assert.Equal(t, 2007, *album.Year)
			assert.Nil(t, album.TidalURL)
		})
	}
}

func TestAlbumHandler_Update(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, otherToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	album := createAlbum(t, ts, token, map[string]interface{}{
		"title":     "Blue",
		"artist":    "Joni Mitchell",
		"year":      1971,
		"cover_url": "https://example.com/blue.jpg",
	})

	t.Run("partial update", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPut, ts.APIURL("/albums/"+album.ID.String()), token,
			map[string]interface{}{"year": 1972, "cover_url": nil})
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)
		var updated domain.Album
		testutil.AssertJSONResponse(t, resp, &updated)
		assert.Equal(t, "Blue", updated.Title)
		require.NotNil(t, updated.Year)
		assert.Equal(t, 1972, *updated.Year)
		assert.Nil(t, updated.CoverURL)
	})

	t.Run("other user's album", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPut, ts.APIURL("/albums/"+album.ID.String()), otherToken,
			map[string]interface{}{"title": "Mine"})
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "album not found")
	})

	t.Run("malformed id", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPut, ts.APIURL("/albums/42"), token,
			map[string]interface{}{"title": "x"})
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "invalid album id")
	})

	t.Run("artist longer than the column", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPut, ts.APIURL("/albums/"+album.ID.String()), token,
			map[string]interface{}{"artist": strings.Repeat("a", 201)})
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "artist must be at most 200 characters")
	})

	t.Run("null title", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPut, ts.APIURL("/albums/"+album.ID.String()), token,
			map[string]interface{}{"title": nil})
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "title is required")
	})
}

func TestAlbumHandler_Delete(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, otherToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	album := createAlbum(t, ts, token, map[string]interface{}{"title": "Blue", "artist": "Joni Mitchell"})
	path := ts.APIURL("/albums/" + album.ID.String())

	resp := testutil.DoJSON(t, http.MethodDelete, path, otherToken, nil)
	testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "album not found")
	resp.Body.Close()

	resp = testutil.DoJSON(t, http.MethodDelete, path, token, nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var body map[string]string
	testutil.AssertJSONResponse(t, resp, &body)
	assert.Equal(t, "Album deleted successfully", body["message"])
	resp.Body.Close()

	resp = testutil.DoJSON(t, http.MethodDelete, path, token, nil)
	defer resp.Body.Close()
	testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "album not found")
}

func TestAlbumHandler_Reorder(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, otherToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	seeded := listAlbums(t, ts, token)
	require.Len(t, seeded, 5)
	foreign := listAlbums(t, ts, otherToken)[0]

	t.Run("albums objects form", func(t *testing.T) {
		entries := make([]map[string]string, 0, len(seeded))
		for i := len(seeded) - 1; i >= 0; i-- {
			entries = append(entries, map[string]string{"id": seeded[i].ID.String()})
		}

		resp := testutil.PostJSON(t, ts.APIURL("/albums/reorder"), token, map[string]interface{}{"albums": entries})
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		albums := listAlbums(t, ts, token)
		testutil.AssertAlbumOrder(t, albums,
			"Thriller", "Back in Black", "Nevermind", "Dark Side of the Moon", "Abbey Road")
	})

	t.Run("id list form ignores foreign and malformed ids", func(t *testing.T) {
		ids := []string{foreign.ID.String(), "bogus"}
		for _, album := range seeded {
			ids = append(ids, album.ID.String())
		}

		resp := testutil.PostJSON(t, ts.APIURL("/albums/reorder"), token, map[string]interface{}{"albumIds": ids})
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		albums := listAlbums(t, ts, token)
		testutil.AssertAlbumOrder(t, albums,
			"Abbey Road", "Dark Side of the Moon", "Nevermind", "Back in Black", "Thriller")
		assert.Equal(t, []int{2, 3, 4, 5, 6}, testutil.AlbumPositions(albums))

		otherAlbums := listAlbums(t, ts, otherToken)
		assert.Equal(t, foreign.ID, otherAlbums[0].ID)
		assert.Equal(t, 0, otherAlbums[0].Position)
	})

	t.Run("missing list", func(t *testing.T) {
		resp := testutil.PostJSON(t, ts.APIURL("/albums/reorder"), token, map[string]interface{}{})
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "albums or albumIds is required")
	})
}

func TestAlbumHandler_MutationsNotifyWebSocket(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, otherToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	wsClient := testutil.NewWSClient(t, ts.WebSocketURL(token))
	wsClient.WaitForConnection(defaultTimeout)
	otherClient := testutil.NewWSClient(t, ts.WebSocketURL(otherToken))
	otherClient.WaitForConnection(defaultTimeout)

	album := createAlbum(t, ts, token, map[string]interface{}{"title": "Blue", "artist": "Joni Mitchell"})

	change := wsClient.ExpectAlbumsChanged(defaultTimeout)
	assert.Equal(t, domain.ChangeCreated, change.Kind)
	require.NotNil(t, change.AlbumID)
	assert.Equal(t, album.ID, *change.AlbumID)

	resp := testutil.DoJSON(t, http.MethodDelete, ts.APIURL("/albums/"+album.ID.String()), token, nil)
	resp.Body.Close()

	change = wsClient.ExpectAlbumsChanged(defaultTimeout)
	assert.Equal(t, domain.ChangeDeleted, change.Kind)

	otherClient.ExpectNoMessage(200 * time.Millisecond)
}

func TestWebSocketHandler_RejectsBadToken(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Get(ts.APIURL("/ws"))
	require.NoError(t, err)
	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "No token provided")
	resp.Body.Close()

	resp, err = http.Get(ts.APIURL("/ws?token=garbage"))
	require.NoError(t, err)
	defer resp.Body.Close()
	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "invalid token")
}

func TestWebSocketHandler_PingPong(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	wsClient := testutil.NewWSClient(t, ts.WebSocketURL(token))
	wsClient.WaitForConnection(defaultTimeout)

	wsClient.Ping()
	wsClient.ExpectMessage(websocket.MessageTypePong, defaultTimeout)
}
