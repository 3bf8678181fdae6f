package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sambard/marquee/internal/domain"
)

const requestTimeout = 15 * time.Second

// LoadHomeCmd loads all four home-screen categories concurrently.
// Each category reports independently; a failed one degrades to an
// empty row without affecting the others.
func LoadHomeCmd(catalog domain.HomeCatalog, page int) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(domain.Categories))
	for _, category := range domain.Categories {
		cmds = append(cmds, LoadCategoryCmd(catalog, category, page))
	}
	return tea.Batch(cmds...)
}

// LoadCategoryCmd loads one page of one category
func LoadCategoryCmd(catalog domain.HomeCatalog, category domain.Category, page int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var movies []domain.Movie
		var err error
		switch category {
		case domain.CategoryPopular:
			movies, err = catalog.Popular(ctx, page)
		case domain.CategoryTopRated:
			movies, err = catalog.TopRated(ctx, page)
		case domain.CategoryUpcoming:
			movies, err = catalog.Upcoming(ctx, page)
		case domain.CategoryNowPlaying:
			movies, err = catalog.NowPlaying(ctx, page)
		}

		return CategoryLoadedMsg{Category: category, Page: page, Movies: movies, Err: err}
	}
}

// SearchCmd issues a settled search query
func SearchCmd(catalog domain.SearchCatalog, query string, page int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		movies, err := catalog.Search(ctx, query, page)
		return SearchResultsMsg{Query: query, Page: page, Movies: movies, Err: err}
	}
}

// DebounceCmd schedules the settle check for a keystroke generation
func DebounceCmd(seq int) tea.Cmd {
	return tea.Tick(SearchDebounce, func(time.Time) tea.Msg {
		return SearchDebouncedMsg{Seq: seq}
	})
}

// LoadDetailsCmd loads the full record for one movie plus its favorite
// state. Details have no degraded form: any failure fails the load.
func LoadDetailsCmd(catalog domain.DetailsCatalog, id int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		details, err := catalog.MovieDetails(ctx, id)
		if err != nil {
			return DetailsLoadedMsg{ID: id, Err: err}
		}

		fav, err := catalog.IsFavorite(id)
		if err != nil {
			return DetailsLoadedMsg{ID: id, Err: err}
		}

		return DetailsLoadedMsg{ID: id, Details: details, Favorite: fav}
	}
}

// ToggleFavoriteCmd adds or removes a favorite
func ToggleFavoriteCmd(catalog domain.DetailsCatalog, movie domain.Movie, favorite bool) tea.Cmd {
	return func() tea.Msg {
		if favorite {
			if err := catalog.RemoveFavorite(movie.ID); err != nil {
				return ErrMsg{Err: err, Context: "removing favorite"}
			}
			return FavoriteToggledMsg{ID: movie.ID, Title: movie.Title, Favorite: false}
		}

		if err := catalog.AddFavorite(movie); err != nil {
			return ErrMsg{Err: err, Context: "adding favorite"}
		}
		return FavoriteToggledMsg{ID: movie.ID, Title: movie.Title, Favorite: true}
	}
}

// LoadFavoritesCmd re-reads the favorites list
func LoadFavoritesCmd(catalog domain.FavoritesAccess) tea.Cmd {
	return func() tea.Msg {
		movies, err := catalog.Favorites()
		return FavoritesLoadedMsg{Movies: movies, Err: err}
	}
}

// WatchFavoritesCmd blocks on the favorites change channel and converts
// each signal into a message. The handler re-issues it to keep watching.
func WatchFavoritesCmd(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return FavoritesChangedMsg{}
	}
}

// ClearStatusCmd clears the status bar after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
