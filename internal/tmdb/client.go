package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sambard/marquee/internal/domain"
)

const (
	// DefaultBaseURL is the TMDB v3 API root.
	DefaultBaseURL = "https://api.themoviedb.org/3"

	// DefaultLanguage is the locale tag sent with every request.
	DefaultLanguage = "en-US"

	defaultTimeout = 30 * time.Second
	userAgent      = "Marquee/1.0"
)

// Client is the remote catalog client for the TMDB API.
// The API key is attached to every outgoing request.
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new TMDB API client. Empty baseURL and language
// fall back to the TMDB defaults.
func NewClient(baseURL, apiKey, language string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if language == "" {
		language = DefaultLanguage
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		language: language,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// doRequest performs an authenticated GET and returns the raw body.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	query.Set("language", c.language)

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("tmdb request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("tmdb request failed", "path", path, "error", err)
		return nil, domain.ErrCatalogUnreachable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusUnauthorized:
		return nil, domain.ErrAuthFailed
	case http.StatusNotFound:
		return nil, domain.ErrMovieNotFound
	default:
		c.logger.Error("tmdb request error", "path", path, "status", resp.StatusCode)
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}

// MovieList fetches one page of a fixed home-screen category.
func (c *Client) MovieList(ctx context.Context, category domain.Category, page int) (*MovieListResponse, error) {
	if page < 1 {
		page = 1
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))

	body, err := c.doRequest(ctx, "movie/"+string(category), query)
	if err != nil {
		return nil, err
	}

	var resp MovieListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("tmdb parse error", "category", category, "error", err)
		return nil, fmt.Errorf("failed to parse list response: %w", err)
	}
	return &resp, nil
}

// SearchMovies fetches one page of title search results.
func (c *Client) SearchMovies(ctx context.Context, q string, page int) (*MovieListResponse, error) {
	if page < 1 {
		page = 1
	}
	query := url.Values{}
	query.Set("query", q)
	query.Set("page", strconv.Itoa(page))

	body, err := c.doRequest(ctx, "search/movie", query)
	if err != nil {
		return nil, err
	}

	var resp MovieListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	return &resp, nil
}

// MovieDetails fetches the full record for one movie. Credits, videos and
// similar titles come back in the same response.
func (c *Client) MovieDetails(ctx context.Context, id int) (*MovieDetailsResponse, error) {
	query := url.Values{}
	query.Set("append_to_response", "credits,videos,similar")

	body, err := c.doRequest(ctx, fmt.Sprintf("movie/%d", id), query)
	if err != nil {
		return nil, err
	}

	var resp MovieDetailsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse details response: %w", err)
	}
	return &resp, nil
}

// GenreList fetches the genre catalog.
func (c *Client) GenreList(ctx context.Context) ([]GenreItem, error) {
	body, err := c.doRequest(ctx, "genre/movie/list", nil)
	if err != nil {
		return nil, err
	}

	var resp GenreListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse genre response: %w", err)
	}
	return resp.Genres, nil
}
