package domain

import "context"

// MovieRepository is the full catalog contract: remote category queries,
// detail lookups, and the locally persisted favorites set.
type MovieRepository interface {
	HomeCatalog
	SearchCatalog
	DetailsCatalog
	FavoritesAccess

	// Genres returns the memoized genre catalog, fetching it on first use.
	Genres(ctx context.Context) ([]Genre, error)
}

// HomeCatalog covers the four fixed home-screen lists. Each call fetches
// one page from the remote catalog in server-provided order.
type HomeCatalog interface {
	Popular(ctx context.Context, page int) ([]Movie, error)
	TopRated(ctx context.Context, page int) ([]Movie, error)
	Upcoming(ctx context.Context, page int) ([]Movie, error)
	NowPlaying(ctx context.Context, page int) ([]Movie, error)
}

// SearchCatalog covers remote title search.
type SearchCatalog interface {
	Search(ctx context.Context, query string, page int) ([]Movie, error)
}

// DetailsCatalog covers the single-movie detail lookup plus the favorite
// toggling a details screen needs.
type DetailsCatalog interface {
	MovieDetails(ctx context.Context, id int) (MovieDetails, error)
	IsFavorite(id int) (bool, error)
	AddFavorite(movie Movie) error
	RemoveFavorite(id int) error
}

// FavoritesAccess covers the continuously observable favorites view.
// Subscribers receive a signal after every favorites mutation and re-read
// through Favorites; the returned func unsubscribes.
type FavoritesAccess interface {
	Favorites() ([]Movie, error)
	AddFavorite(movie Movie) error
	RemoveFavorite(id int) error
	IsFavorite(id int) (bool, error)
	SubscribeFavorites() (<-chan struct{}, func())
}
