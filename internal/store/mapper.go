package store

import (
	"encoding/json"

	"github.com/sambard/marquee/internal/domain"
	"github.com/sambard/marquee/internal/tmdb"
)

// toFavoriteRecord builds the persisted snapshot for a movie. The
// relative image paths are stored as-is; genres are flattened to a
// serialized list of names.
func toFavoriteRecord(m domain.Movie, savedAt int64) favoriteRecord {
	names := make([]string, len(m.Genres))
	for i, g := range m.Genres {
		names[i] = g.Name
	}
	encoded, err := json.Marshal(names)
	if err != nil {
		encoded = []byte("[]")
	}

	return favoriteRecord{
		ID:           m.ID,
		Title:        m.Title,
		Overview:     m.Overview,
		PosterPath:   m.PosterPath,
		BackdropPath: m.BackdropPath,
		ReleaseDate:  m.ReleaseDate,
		VoteAverage:  m.Rating,
		VoteCount:    m.VoteCount,
		Genres:       string(encoded),
		SavedAt:      savedAt,
	}
}

// toMovie rehydrates a snapshot into a domain movie. Genre ids were not
// persisted, so genres come back with synthetic sequential ids; a genre
// list that fails to decode yields an empty list. Popularity is not
// persisted either and resets to zero.
func (r favoriteRecord) toMovie() domain.Movie {
	var names []string
	if err := json.Unmarshal([]byte(r.Genres), &names); err != nil {
		names = nil
	}

	genres := make([]domain.Genre, 0, len(names))
	for i, name := range names {
		genres = append(genres, domain.Genre{ID: i, Name: name})
	}

	return domain.Movie{
		ID:           r.ID,
		Title:        r.Title,
		Overview:     r.Overview,
		PosterPath:   r.PosterPath,
		BackdropPath: r.BackdropPath,
		PosterURL:    tmdb.PosterURL(r.PosterPath),
		BackdropURL:  tmdb.BackdropURL(r.BackdropPath),
		ReleaseDate:  r.ReleaseDate,
		Rating:       r.VoteAverage,
		VoteCount:    r.VoteCount,
		Genres:       genres,
		Popularity:   0,
	}
}
