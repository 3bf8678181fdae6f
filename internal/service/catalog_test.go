package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sambard/marquee/internal/domain"
	"github.com/sambard/marquee/internal/log"
	"github.com/sambard/marquee/internal/tmdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient counts calls and serves canned responses
type fakeClient struct {
	mu          sync.Mutex
	listCalls   int
	searchCalls int
	detailCalls int
	genreCalls  int

	listResp  *tmdb.MovieListResponse
	listErr   error
	failCat   domain.Category // When set, only this category's list calls fail
	genres    []tmdb.GenreItem
	genreErr  error
	details   *tmdb.MovieDetailsResponse
	detailErr error
}

func (f *fakeClient) MovieList(ctx context.Context, category domain.Category, page int) (*tmdb.MovieListResponse, error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()
	if f.failCat != "" && category == f.failCat {
		return nil, domain.ErrCatalogUnreachable
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listResp, nil
}

func (f *fakeClient) SearchMovies(ctx context.Context, query string, page int) (*tmdb.MovieListResponse, error) {
	f.mu.Lock()
	f.searchCalls++
	f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listResp, nil
}

func (f *fakeClient) MovieDetails(ctx context.Context, id int) (*tmdb.MovieDetailsResponse, error) {
	f.mu.Lock()
	f.detailCalls++
	f.mu.Unlock()
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	return f.details, nil
}

func (f *fakeClient) GenreList(ctx context.Context) ([]tmdb.GenreItem, error) {
	f.mu.Lock()
	f.genreCalls++
	f.mu.Unlock()
	if f.genreErr != nil {
		return nil, f.genreErr
	}
	return f.genres, nil
}

func (f *fakeClient) genreCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.genreCalls
}

type cacheKey struct {
	category domain.Category
	page     int
}

type cacheEntry struct {
	movies    []domain.Movie
	fetchedAt time.Time
}

// fakeCache is an in-memory PageCache
type fakeCache struct {
	mu      sync.Mutex
	pages   map[cacheKey]cacheEntry
	saveErr error
	saves   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{pages: make(map[cacheKey]cacheEntry)}
}

func (c *fakeCache) SaveMoviePage(category domain.Category, page int, movies []domain.Movie) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saves++
	if c.saveErr != nil {
		return c.saveErr
	}
	c.pages[cacheKey{category, page}] = cacheEntry{movies: movies, fetchedAt: time.Now()}
	return nil
}

func (c *fakeCache) CachedMoviePage(category domain.Category, page int) ([]domain.Movie, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.pages[cacheKey{category, page}]
	if !ok {
		return nil, time.Time{}, false
	}
	return e.movies, e.fetchedAt, true
}

func (c *fakeCache) InvalidateCategory(category domain.Category) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.pages {
		if k.category == category {
			delete(c.pages, k)
		}
	}
	return nil
}

func (c *fakeCache) SweepExpired(cutoff time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.pages {
		if e.fetchedAt.Before(cutoff) {
			delete(c.pages, k)
			removed++
		}
	}
	return removed, nil
}

// fakeFavs is an in-memory FavoritesStore
type fakeFavs struct {
	mu     sync.Mutex
	movies map[int]domain.Movie
}

func newFakeFavs() *fakeFavs {
	return &fakeFavs{movies: make(map[int]domain.Movie)}
}

func (f *fakeFavs) AddFavorite(m domain.Movie) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.movies[m.ID] = m
	return nil
}

func (f *fakeFavs) RemoveFavorite(id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.movies, id)
	return nil
}

func (f *fakeFavs) IsFavorite(id int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.movies[id]
	return ok, nil
}

func (f *fakeFavs) Favorites() ([]domain.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Movie, 0, len(f.movies))
	for _, m := range f.movies {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeFavs) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	return ch, func() {}
}

func newTestService(client *fakeClient, cache *fakeCache) *CatalogService {
	return NewCatalogService(client, newFakeFavs(), cache, time.Hour, log.NullLogger())
}

func listOf(ids ...int) *tmdb.MovieListResponse {
	resp := &tmdb.MovieListResponse{Page: 1}
	for _, id := range ids {
		resp.Results = append(resp.Results, tmdb.MovieResult{ID: id, GenreIDs: []int{18}})
	}
	return resp
}

func TestGenreCatalogFetchedOnceAcrossConcurrentQueries(t *testing.T) {
	client := &fakeClient{
		listResp: listOf(1, 2),
		genres:   []tmdb.GenreItem{{ID: 18, Name: "Drama"}},
	}
	svc := newTestService(client, newFakeCache())

	const n = 20
	var wg sync.WaitGroup
	results := make([][]domain.Movie, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			movies, err := svc.Popular(context.Background(), 1)
			assert.NoError(t, err)
			results[i] = movies
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, client.genreCallCount())
	for _, movies := range results {
		require.Len(t, movies, 2)
		require.Len(t, movies[0].Genres, 1)
		assert.Equal(t, "Drama", movies[0].Genres[0].Name)
	}
}

func TestGenresMemoized(t *testing.T) {
	client := &fakeClient{genres: []tmdb.GenreItem{{ID: 18, Name: "Drama"}}}
	svc := newTestService(client, newFakeCache())

	first, err := svc.Genres(context.Background())
	require.NoError(t, err)
	second, err := svc.Genres(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.genreCallCount())
}

func TestGenreFailureDoesNotFailCategoryQuery(t *testing.T) {
	client := &fakeClient{
		listResp: listOf(1),
		genreErr: errors.New("genre endpoint down"),
	}
	svc := newTestService(client, newFakeCache())

	movies, err := svc.Popular(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Empty(t, movies[0].Genres)
}

func TestGenresErrorSurfacesAndRetries(t *testing.T) {
	client := &fakeClient{genreErr: errors.New("genre endpoint down")}
	svc := newTestService(client, newFakeCache())

	_, err := svc.Genres(context.Background())
	require.Error(t, err)

	// A failed fetch is not memoized; clearing the fault lets the next
	// call succeed
	client.genreErr = nil
	client.genres = []tmdb.GenreItem{{ID: 18, Name: "Drama"}}

	genres, err := svc.Genres(context.Background())
	require.NoError(t, err)
	require.Len(t, genres, 1)
}

func TestCategoryWritesThroughToCache(t *testing.T) {
	client := &fakeClient{listResp: listOf(1, 2)}
	cache := newFakeCache()
	svc := newTestService(client, cache)

	_, err := svc.TopRated(context.Background(), 3)
	require.NoError(t, err)

	movies, _, ok := cache.CachedMoviePage(domain.CategoryTopRated, 3)
	require.True(t, ok)
	assert.Len(t, movies, 2)
}

func TestCategoryServesFreshCacheOnRemoteFailure(t *testing.T) {
	client := &fakeClient{listResp: listOf(1, 2)}
	cache := newFakeCache()
	svc := newTestService(client, cache)

	// Prime the cache, then break the remote
	_, err := svc.Popular(context.Background(), 1)
	require.NoError(t, err)
	client.listErr = domain.ErrCatalogUnreachable

	movies, err := svc.Popular(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, movies, 2)
}

func TestOneFailingCategoryLeavesOthersIntact(t *testing.T) {
	client := &fakeClient{
		listResp: listOf(1, 2),
		failCat:  domain.CategoryUpcoming,
	}
	svc := newTestService(client, newFakeCache())
	ctx := context.Background()

	popular, err := svc.Popular(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, popular, 2)

	topRated, err := svc.TopRated(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, topRated, 2)

	nowPlaying, err := svc.NowPlaying(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, nowPlaying, 2)

	_, err = svc.Upcoming(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrCatalogUnreachable)
}

func TestCategoryColdCacheFails(t *testing.T) {
	client := &fakeClient{listErr: domain.ErrCatalogUnreachable}
	svc := newTestService(client, newFakeCache())

	_, err := svc.Popular(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrCatalogUnreachable)
}

func TestCategoryExpiredCacheFails(t *testing.T) {
	client := &fakeClient{listErr: domain.ErrCatalogUnreachable}
	cache := newFakeCache()
	cache.pages[cacheKey{domain.CategoryPopular, 1}] = cacheEntry{
		movies:    []domain.Movie{{ID: 1}},
		fetchedAt: time.Now().Add(-2 * time.Hour), // Beyond the 1h test TTL
	}
	svc := newTestService(client, cache)

	_, err := svc.Popular(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrCatalogUnreachable)
}

func TestCacheSaveFailureIsNonFatal(t *testing.T) {
	client := &fakeClient{listResp: listOf(1)}
	cache := newFakeCache()
	cache.saveErr = errors.New("disk full")
	svc := newTestService(client, cache)

	movies, err := svc.Popular(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, movies, 1)
}

func TestSearchIsNotCached(t *testing.T) {
	client := &fakeClient{listResp: listOf(1, 2, 3)}
	cache := newFakeCache()
	svc := newTestService(client, cache)

	movies, err := svc.Search(context.Background(), "matrix", 1)
	require.NoError(t, err)
	assert.Len(t, movies, 3)
	assert.Zero(t, cache.saves)
}

func TestMovieDetailsErrorPropagates(t *testing.T) {
	client := &fakeClient{detailErr: domain.ErrMovieNotFound}
	svc := newTestService(client, newFakeCache())

	_, err := svc.MovieDetails(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrMovieNotFound)
}

func TestMovieDetailsMapped(t *testing.T) {
	client := &fakeClient{details: &tmdb.MovieDetailsResponse{
		ID:      550,
		Title:   "Fight Club",
		Runtime: 139,
		Genres:  []tmdb.GenreItem{{ID: 18, Name: "Drama"}},
	}}
	svc := newTestService(client, newFakeCache())

	details, err := svc.MovieDetails(context.Background(), 550)
	require.NoError(t, err)
	assert.Equal(t, "Fight Club", details.Title)
	assert.Equal(t, 139, details.Runtime)
	require.Len(t, details.Genres, 1)
}

func TestFavoritesDelegation(t *testing.T) {
	svc := newTestService(&fakeClient{}, newFakeCache())

	fav, err := svc.IsFavorite(1)
	require.NoError(t, err)
	assert.False(t, fav)

	require.NoError(t, svc.AddFavorite(domain.Movie{ID: 1, Title: "A"}))
	fav, err = svc.IsFavorite(1)
	require.NoError(t, err)
	assert.True(t, fav)

	movies, err := svc.Favorites()
	require.NoError(t, err)
	assert.Len(t, movies, 1)

	require.NoError(t, svc.RemoveFavorite(1))
	fav, err = svc.IsFavorite(1)
	require.NoError(t, err)
	assert.False(t, fav)
}

func TestRefreshCategoryInvalidates(t *testing.T) {
	client := &fakeClient{listResp: listOf(1)}
	cache := newFakeCache()
	svc := newTestService(client, cache)

	_, err := svc.Popular(context.Background(), 1)
	require.NoError(t, err)
	_, _, ok := cache.CachedMoviePage(domain.CategoryPopular, 1)
	require.True(t, ok)

	require.NoError(t, svc.RefreshCategory(domain.CategoryPopular))
	_, _, ok = cache.CachedMoviePage(domain.CategoryPopular, 1)
	assert.False(t, ok)
}
