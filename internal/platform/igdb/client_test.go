package igdb

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestClient(t *testing.T, tokenHandler, apiHandler http.HandlerFunc) (*Client, func()) {
	t.Helper()

	tokenSrv := httptest.NewServer(tokenHandler)
	apiSrv := httptest.NewServer(apiHandler)

	c := NewClient("client-id", "client-secret")
	c.tokenURL = tokenSrv.URL
	c.baseURL = apiSrv.URL
	c.limiter = rate.NewLimiter(rate.Inf, 1)

	return c, func() {
		tokenSrv.Close()
		apiSrv.Close()
	}
}

func okTokenHandler(counter *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if counter != nil {
			counter.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","expires_in":5184000}`))
	}
}

func TestQueryGames_ReusesCachedToken(t *testing.T) {
	var tokenCalls atomic.Int32

	c, cleanup := newTestClient(t, okTokenHandler(&tokenCalls), func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "client-id", r.Header.Get("Client-ID"))
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "text/plain", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`[{"id":1,"name":"Outer Wilds"}]`))
	})
	defer cleanup()

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		games, err := c.QueryGames(ctx, "fields name; limit 1;")
		require.NoError(t, err)
		require.Len(t, games, 1)
		assert.Equal(t, int64(1), games[0].ID)
		assert.Equal(t, "Outer Wilds", games[0].Name)
	}

	assert.Equal(t, int32(1), tokenCalls.Load(), "token should be exchanged once and cached")
}

func TestQueryGames_RefreshesTokenNearExpiry(t *testing.T) {
	var tokenCalls atomic.Int32

	c, cleanup := newTestClient(t, okTokenHandler(&tokenCalls), func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	defer cleanup()

	ctx := context.Background()

	_, err := c.QueryGames(ctx, "fields name;")
	require.NoError(t, err)

	// Force the cached token inside the refresh margin.
	c.mu.Lock()
	c.tokenExpiresAt = time.Now().Add(time.Minute)
	c.mu.Unlock()

	_, err = c.QueryGames(ctx, "fields name;")
	require.NoError(t, err)

	assert.Equal(t, int32(2), tokenCalls.Load())
}

func TestGetAccessToken_RejectedExchange(t *testing.T) {
	c, cleanup := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid client secret"}`))
	}, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("games endpoint must not be reached when the token exchange fails")
	})
	defer cleanup()

	_, err := c.QueryGames(context.Background(), "fields name;")

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
	assert.Contains(t, authErr.Body, "invalid client secret")
}

func TestQueryGames_UpstreamError(t *testing.T) {
	c, cleanup := newTestClient(t, okTokenHandler(nil), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`[{"title":"Syntax Error"}]`))
	})
	defer cleanup()

	_, err := c.QueryGames(context.Background(), "fields nope;")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Body, "Syntax Error")
}

func TestQueryGames_EmptyPageIsNotAnError(t *testing.T) {
	c, cleanup := newTestClient(t, okTokenHandler(nil), func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	defer cleanup()

	games, err := c.QueryGames(context.Background(), "fields name; offset 999999;")
	require.NoError(t, err)
	assert.NotNil(t, games)
	assert.Empty(t, games)
}

func TestSearchGames_EscapesQuotesAndClampsLimit(t *testing.T) {
	var gotQuery string

	c, cleanup := newTestClient(t, okTokenHandler(nil), func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotQuery = string(body)
		_, _ = w.Write([]byte(`[]`))
	})
	defer cleanup()

	_, err := c.SearchGames(context.Background(), `the "witcher"`, 500)
	require.NoError(t, err)

	assert.Contains(t, gotQuery, `search "the \"witcher\"";`)
	assert.Contains(t, gotQuery, "limit 50;")
}

func TestGetGameByID_NotFound(t *testing.T) {
	c, cleanup := newTestClient(t, okTokenHandler(nil), func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	defer cleanup()

	res, err := c.GetGameByID(context.Background(), 424242)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestGetGameByID_MapsResult(t *testing.T) {
	c, cleanup := newTestClient(t, okTokenHandler(nil), func(w http.ResponseWriter, r *http.Request) {
		body := `[{
			"id": 1009,
			"name": "The Last of Us",
			"summary": "A survival game.",
			"first_release_date": 1371168000,
			"url": "https://www.igdb.com/games/the-last-of-us",
			"cover": {"id": 1, "image_id": "co1r7f"},
			"platforms": [{"id": 9, "name": "PlayStation 3", "abbreviation": "PS3"}, {"id": 46, "name": "PlayStation Vita"}],
			"genres": [{"id": 5, "name": "Shooter"}]
		}]`
		_, _ = w.Write([]byte(body))
	})
	defer cleanup()

	res, err := c.GetGameByID(context.Background(), 1009)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, int64(1009), res.IGDBID)
	assert.Equal(t, "The Last of Us", res.Title)
	assert.Equal(t, "co1r7f", res.CoverImageID)
	assert.Equal(t, []string{"PS3", "PlayStation Vita"}, res.Platforms)
	assert.Equal(t, []string{"Shooter"}, res.Genres)
	require.NotNil(t, res.FirstReleaseDate)
	assert.Equal(t, int64(1371168000), res.FirstReleaseDate.Unix())
	assert.Equal(t, "https://www.igdb.com/games/the-last-of-us", res.IGDBURL)
}

func TestSearchGames_DefaultLimit(t *testing.T) {
	var gotQuery string

	c, cleanup := newTestClient(t, okTokenHandler(nil), func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotQuery = string(body)
		_, _ = w.Write([]byte(`[]`))
	})
	defer cleanup()

	_, err := c.SearchGames(context.Background(), "zelda", 0)
	require.NoError(t, err)
	assert.True(t, strings.Contains(gotQuery, "limit 10;"), "query was: %s", gotQuery)
}
