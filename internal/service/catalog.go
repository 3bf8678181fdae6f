package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sambard/marquee/internal/domain"
	"github.com/sambard/marquee/internal/tmdb"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL bounds how long a cached page may substitute for a
// failed remote fetch.
const DefaultCacheTTL = 24 * time.Hour

// CatalogClient is the remote catalog surface the service consumes.
// *tmdb.Client satisfies it; tests substitute a counting fake.
type CatalogClient interface {
	MovieList(ctx context.Context, category domain.Category, page int) (*tmdb.MovieListResponse, error)
	SearchMovies(ctx context.Context, query string, page int) (*tmdb.MovieListResponse, error)
	MovieDetails(ctx context.Context, id int) (*tmdb.MovieDetailsResponse, error)
	GenreList(ctx context.Context) ([]tmdb.GenreItem, error)
}

// FavoritesStore is the persisted favorites table.
type FavoritesStore interface {
	AddFavorite(m domain.Movie) error
	RemoveFavorite(id int) error
	IsFavorite(id int) (bool, error)
	Favorites() ([]domain.Movie, error)
	Subscribe() (<-chan struct{}, func())
}

// PageCache is the persisted page cache table.
type PageCache interface {
	SaveMoviePage(category domain.Category, page int, movies []domain.Movie) error
	CachedMoviePage(category domain.Category, page int) ([]domain.Movie, time.Time, bool)
	InvalidateCategory(category domain.Category) error
	SweepExpired(cutoff time.Time) (int, error)
}

// CatalogService reconciles the remote catalog, the page cache and the
// favorites store behind one contract. Category queries are remote-first:
// the cache is written through on success and consulted only when the
// remote call fails.
type CatalogService struct {
	client CatalogClient
	favs   FavoritesStore
	cache  PageCache
	logger *slog.Logger

	cacheTTL time.Duration

	// Genre catalog memo. Populated at most once per process; concurrent
	// first calls collapse into a single fetch.
	genreMu   sync.RWMutex
	genreList []domain.Genre
	genreSF   singleflight.Group
}

// NewCatalogService creates the catalog service. A zero cacheTTL falls
// back to DefaultCacheTTL.
func NewCatalogService(client CatalogClient, favs FavoritesStore, cache PageCache, cacheTTL time.Duration, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &CatalogService{
		client:   client,
		favs:     favs,
		cache:    cache,
		logger:   logger,
		cacheTTL: cacheTTL,
	}
}

// === Category queries ===

func (s *CatalogService) Popular(ctx context.Context, page int) ([]domain.Movie, error) {
	return s.moviePage(ctx, domain.CategoryPopular, page)
}

func (s *CatalogService) TopRated(ctx context.Context, page int) ([]domain.Movie, error) {
	return s.moviePage(ctx, domain.CategoryTopRated, page)
}

func (s *CatalogService) Upcoming(ctx context.Context, page int) ([]domain.Movie, error) {
	return s.moviePage(ctx, domain.CategoryUpcoming, page)
}

func (s *CatalogService) NowPlaying(ctx context.Context, page int) ([]domain.Movie, error) {
	return s.moviePage(ctx, domain.CategoryNowPlaying, page)
}

// moviePage fetches one page of a category. On remote failure a fresh
// cached copy of the same page is served instead; only a cold or expired
// cache lets the error through.
func (s *CatalogService) moviePage(ctx context.Context, category domain.Category, page int) ([]domain.Movie, error) {
	resp, err := s.client.MovieList(ctx, category, page)
	if err != nil {
		if movies, fetchedAt, ok := s.cache.CachedMoviePage(category, page); ok && time.Since(fetchedAt) <= s.cacheTTL {
			s.logger.Warn("serving cached page after remote failure",
				"category", category, "page", page, "error", err)
			return movies, nil
		}
		s.logger.Error("category query failed", "category", category, "page", page, "error", err)
		return nil, err
	}

	movies := tmdb.MapMovies(resp.Results, s.genreCatalog(ctx))

	if err := s.cache.SaveMoviePage(category, page, movies); err != nil {
		s.logger.Warn("failed to cache page", "category", category, "page", page, "error", err)
	}

	return movies, nil
}

// Search fetches one page of remote title search results. Results are
// not cached; search pages have no category slot.
func (s *CatalogService) Search(ctx context.Context, query string, page int) ([]domain.Movie, error) {
	resp, err := s.client.SearchMovies(ctx, query, page)
	if err != nil {
		s.logger.Error("search failed", "query", query, "error", err)
		return nil, err
	}
	return tmdb.MapMovies(resp.Results, s.genreCatalog(ctx)), nil
}

// MovieDetails fetches the full record for one movie. There is no
// degraded result: if the request fails, the whole call fails.
func (s *CatalogService) MovieDetails(ctx context.Context, id int) (domain.MovieDetails, error) {
	resp, err := s.client.MovieDetails(ctx, id)
	if err != nil {
		s.logger.Error("details fetch failed", "id", id, "error", err)
		return domain.MovieDetails{}, err
	}
	return tmdb.MapMovieDetails(resp), nil
}

// === Genre catalog ===

// Genres returns the memoized genre catalog, fetching it on first call.
// Unlike the internal resolution path, a fetch failure here surfaces.
func (s *CatalogService) Genres(ctx context.Context) ([]domain.Genre, error) {
	if cached := s.memoizedGenres(); cached != nil {
		return cached, nil
	}
	return s.fetchGenres(ctx)
}

// genreCatalog resolves the catalog for movie mapping. Failure is
// non-fatal: an unreachable genre endpoint degrades to movies without
// genres rather than failing the category query.
func (s *CatalogService) genreCatalog(ctx context.Context) []domain.Genre {
	if cached := s.memoizedGenres(); cached != nil {
		return cached
	}
	genres, err := s.fetchGenres(ctx)
	if err != nil {
		s.logger.Warn("genre catalog unavailable, mapping without genres", "error", err)
		return nil
	}
	return genres
}

func (s *CatalogService) memoizedGenres() []domain.Genre {
	s.genreMu.RLock()
	defer s.genreMu.RUnlock()
	return s.genreList
}

// fetchGenres populates the memo. Concurrent first calls share one
// in-flight fetch; a failed fetch leaves the memo empty so a later call
// retries.
func (s *CatalogService) fetchGenres(ctx context.Context) ([]domain.Genre, error) {
	v, err, _ := s.genreSF.Do("genres", func() (interface{}, error) {
		items, err := s.client.GenreList(ctx)
		if err != nil {
			return nil, err
		}
		genres := tmdb.MapGenres(items)

		s.genreMu.Lock()
		s.genreList = genres
		s.genreMu.Unlock()

		s.logger.Info("genre catalog loaded", "count", len(genres))
		return genres, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Genre), nil
}

// === Favorites ===

func (s *CatalogService) Favorites() ([]domain.Movie, error) {
	return s.favs.Favorites()
}

func (s *CatalogService) AddFavorite(movie domain.Movie) error {
	if err := s.favs.AddFavorite(movie); err != nil {
		s.logger.Error("failed to add favorite", "id", movie.ID, "error", err)
		return err
	}
	s.logger.Debug("added favorite", "id", movie.ID, "title", movie.Title)
	return nil
}

func (s *CatalogService) RemoveFavorite(id int) error {
	if err := s.favs.RemoveFavorite(id); err != nil {
		s.logger.Error("failed to remove favorite", "id", id, "error", err)
		return err
	}
	s.logger.Debug("removed favorite", "id", id)
	return nil
}

func (s *CatalogService) IsFavorite(id int) (bool, error) {
	return s.favs.IsFavorite(id)
}

func (s *CatalogService) SubscribeFavorites() (<-chan struct{}, func()) {
	return s.favs.Subscribe()
}

// === Cache maintenance ===

// RefreshCategory drops the cached pages for a category ahead of a
// forced reload.
func (s *CatalogService) RefreshCategory(category domain.Category) error {
	return s.cache.InvalidateCategory(category)
}

// SweepCache removes pages older than the configured TTL.
func (s *CatalogService) SweepCache() {
	removed, err := s.cache.SweepExpired(time.Now().Add(-s.cacheTTL))
	if err != nil {
		s.logger.Warn("cache sweep failed", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Info("swept expired cache pages", "removed", removed)
	}
}
