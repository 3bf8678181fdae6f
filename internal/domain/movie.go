package domain

import (
	"fmt"
	"strings"
)

// Category identifies one of the fixed home-screen movie lists.
type Category string

const (
	CategoryPopular    Category = "popular"
	CategoryTopRated   Category = "top_rated"
	CategoryUpcoming   Category = "upcoming"
	CategoryNowPlaying Category = "now_playing"
)

// Categories lists all home-screen categories in display order.
var Categories = []Category{
	CategoryPopular,
	CategoryTopRated,
	CategoryUpcoming,
	CategoryNowPlaying,
}

// String returns a human-readable name for the category.
func (c Category) String() string {
	switch c {
	case CategoryPopular:
		return "Popular"
	case CategoryTopRated:
		return "Top Rated"
	case CategoryUpcoming:
		return "Upcoming"
	case CategoryNowPlaying:
		return "Now Playing"
	default:
		return string(c)
	}
}

// Genre is a single entry of the TMDB genre catalog.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Movie is the catalog summary of a single film.
type Movie struct {
	ID       int    // Stable TMDB identifier
	Title    string // Display title
	Overview string // Plot synopsis

	// Relative image paths as delivered by the API ("" when absent).
	// Kept alongside the derived URLs so persistence never has to
	// reverse-engineer a path out of an assembled URL.
	PosterPath   string
	BackdropPath string

	// Absolute image URLs ("" when the source path is absent)
	PosterURL   string
	BackdropURL string

	ReleaseDate string  // ISO date (YYYY-MM-DD), may be empty
	Rating      float64 // Vote average, 0.0-10.0
	VoteCount   int
	Genres      []Genre // Resolved against the genre catalog, may be empty
	Popularity  float64 // 0.0 after a favorites round-trip
}

// Year returns the release year, or 0 when the release date is unknown.
func (m Movie) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	var y int
	if _, err := fmt.Sscanf(m.ReleaseDate[:4], "%d", &y); err != nil {
		return 0
	}
	return y
}

// GenreNames returns the genre names joined for display.
func (m Movie) GenreNames() string {
	if len(m.Genres) == 0 {
		return ""
	}
	names := make([]string, len(m.Genres))
	for i, g := range m.Genres {
		names[i] = g.Name
	}
	return strings.Join(names, ", ")
}

// GetDescription returns secondary info for list rendering.
func (m Movie) GetDescription() string {
	if y := m.Year(); y > 0 {
		return fmt.Sprintf("%d", y)
	}
	return ""
}

// CastMember is one billed cast entry of a movie.
type CastMember struct {
	ID         int
	Name       string
	Character  string
	ProfileURL string // "" when the profile path is absent
}

// Video is a promotional clip attached to a movie.
// Video ids are strings on the wire, unlike movie ids.
type Video struct {
	ID   string
	Key  string
	Name string
	Site string
	Type string
}

// WatchURL returns the playback URL for a YouTube-hosted video.
func (v Video) WatchURL() string {
	if v.Site != "YouTube" || v.Key == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + v.Key
}

// MovieDetails is the full record for a single movie, fetched in one
// request together with credits, videos and similar titles.
type MovieDetails struct {
	Movie

	Runtime       int // Minutes, 0 when unknown
	Status        string
	Tagline       string
	Cast          []CastMember // First 10 by source billing order
	Videos        []Video      // Official YouTube trailers only
	SimilarMovies []Movie      // First 10 by source ordering
}

// FormattedRuntime returns the runtime in a human-readable format.
func (d MovieDetails) FormattedRuntime() string {
	if d.Runtime <= 0 {
		return ""
	}
	h := d.Runtime / 60
	m := d.Runtime % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
