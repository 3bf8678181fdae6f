package tui

import "github.com/sambard/marquee/internal/domain"

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// CategoryLoadedMsg signals that one home-screen category finished
// loading. A failed category carries its error and degrades to an empty
// row; it never blocks the other categories.
type CategoryLoadedMsg struct {
	Category domain.Category
	Page     int
	Movies   []domain.Movie
	Err      error
}

// SearchResultsMsg signals that remote search results are ready
type SearchResultsMsg struct {
	Query  string
	Page   int
	Movies []domain.Movie
	Err    error
}

// SearchDebouncedMsg fires when the search quiet period elapses. Seq
// identifies the keystroke generation that scheduled it; stale ticks
// are dropped.
type SearchDebouncedMsg struct {
	Seq int
}

// DetailsLoadedMsg signals that movie details have been loaded
type DetailsLoadedMsg struct {
	ID       int
	Details  domain.MovieDetails
	Favorite bool
	Err      error
}

// FavoritesLoadedMsg signals that the favorites list has been re-read
type FavoritesLoadedMsg struct {
	Movies []domain.Movie
	Err    error
}

// FavoritesChangedMsg signals a favorites store mutation; views re-read
type FavoritesChangedMsg struct{}

// FavoriteToggledMsg signals that a favorite add/remove completed
type FavoriteToggledMsg struct {
	ID       int
	Title    string
	Favorite bool
}

// StatusMsg sets a temporary status bar message
type StatusMsg struct {
	Message string
	IsError bool
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}
