package igdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://api.igdb.com/v4"
	defaultTokenURL = "https://id.twitch.tv/oauth2/token"

	// Tokens are refreshed once they are within this margin of expiry.
	tokenExpiryMargin = 5 * time.Minute

	maxSearchLimit = 50
)

// AuthError means the client-credentials exchange was rejected.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("twitch oauth failed (%d): %s", e.Status, e.Body)
}

// APIError means IGDB returned a non-2xx status for a query.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("igdb api error (%d): %s", e.Status, e.Body)
}

// Client talks to the IGDB API using Twitch client-credentials auth.
// The access token is cached in memory for the lifetime of the process.
type Client struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	baseURL      string
	tokenURL     string
	limiter      *rate.Limiter

	mu             sync.Mutex
	token          string
	tokenExpiresAt time.Time
}

func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      defaultBaseURL,
		tokenURL:     defaultTokenURL,
		// IGDB allows 4 requests per second.
		limiter: rate.NewLimiter(rate.Every(time.Second/4), 1),
	}
}

func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiresAt.Add(-tokenExpiryMargin)) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL+"?"+form.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &AuthError{Status: resp.StatusCode, Body: string(body)}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("token exchange: decode response: %w", err)
	}

	c.token = payload.AccessToken
	c.tokenExpiresAt = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	log.Printf("[igdb] obtained access token (expires in %dd)", payload.ExpiresIn/86400)

	return c.token, nil
}

// QueryGames executes a raw Apicalypse query against the games endpoint and
// returns the decoded records. An empty slice is a valid result; in paginated
// use it signals that there are no more pages.
func (c *Client) QueryGames(ctx context.Context, query string) ([]Game, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/games", strings.NewReader(query))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("igdb query: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("igdb query: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	games := []Game{}
	if err := json.Unmarshal(body, &games); err != nil {
		return nil, fmt.Errorf("igdb query: decode response: %w", err)
	}
	return games, nil
}

var searchFields = strings.Join([]string{
	"fields name, summary, first_release_date, url,",
	"  cover.image_id,",
	"  platforms.name, platforms.abbreviation,",
	"  genres.name;",
}, "\n")

// SearchGames searches IGDB by title. limit is clamped to 50.
func (c *Client) SearchGames(ctx context.Context, term string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	// Escape double quotes to keep the term inside the Apicalypse string literal.
	safe := strings.ReplaceAll(term, `"`, `\"`)

	query := strings.Join([]string{
		`search "` + safe + `";`,
		searchFields,
		fmt.Sprintf("limit %d;", limit),
	}, "\n")

	raw, err := c.QueryGames(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, len(raw))
	for i, g := range raw {
		results[i] = mapSearchResult(g)
	}
	return results, nil
}

// GetGameByID fetches a single game. Returns nil when IGDB has no such game.
func (c *Client) GetGameByID(ctx context.Context, igdbID int64) (*SearchResult, error) {
	query := strings.Join([]string{
		searchFields,
		fmt.Sprintf("where id = %d;", igdbID),
	}, "\n")

	raw, err := c.QueryGames(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	res := mapSearchResult(raw[0])
	return &res, nil
}

func mapSearchResult(g Game) SearchResult {
	res := SearchResult{
		IGDBID:    g.ID,
		Title:     g.Name,
		Summary:   g.Summary,
		IGDBURL:   g.URL,
		Platforms: []string{},
		Genres:    []string{},
	}
	if g.Cover != nil {
		res.CoverImageID = g.Cover.ImageID
	}
	for _, p := range g.Platforms {
		name := p.Abbreviation
		if name == "" {
			name = p.Name
		}
		res.Platforms = append(res.Platforms, name)
	}
	for _, genre := range g.Genres {
		res.Genres = append(res.Genres, genre.Name)
	}
	if g.FirstReleaseDate != 0 {
		t := time.Unix(g.FirstReleaseDate, 0).UTC()
		res.FirstReleaseDate = &t
	}
	return res
}
