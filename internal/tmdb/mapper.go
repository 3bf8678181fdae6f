package tmdb

import "github.com/sambard/marquee/internal/domain"

// Fixed image host and size segments
const (
	imageBaseURL = "https://image.tmdb.org/t/p/"
	posterSize   = "w500"
	backdropSize = "w1280"
	profileSize  = "w185"
)

// PosterURL builds the absolute poster URL for a relative path.
// An empty path yields an empty URL, never a malformed one.
func PosterURL(path string) string {
	return imageURL(posterSize, path)
}

// BackdropURL builds the absolute backdrop URL for a relative path.
func BackdropURL(path string) string {
	return imageURL(backdropSize, path)
}

// ProfileURL builds the absolute cast profile URL for a relative path.
func ProfileURL(path string) string {
	return imageURL(profileSize, path)
}

func imageURL(size, path string) string {
	if path == "" {
		return ""
	}
	return imageBaseURL + size + path
}

// MapMovie converts a list row to a domain movie, resolving genre ids
// against the given catalog. Matching genres keep catalog order; ids
// without a catalog entry are dropped.
func MapMovie(m MovieResult, catalog []domain.Genre) domain.Movie {
	var genres []domain.Genre
	for _, g := range catalog {
		for _, id := range m.GenreIDs {
			if g.ID == id {
				genres = append(genres, g)
				break
			}
		}
	}

	return domain.Movie{
		ID:           m.ID,
		Title:        m.Title,
		Overview:     m.Overview,
		PosterPath:   m.PosterPath,
		BackdropPath: m.BackdropPath,
		PosterURL:    PosterURL(m.PosterPath),
		BackdropURL:  BackdropURL(m.BackdropPath),
		ReleaseDate:  m.ReleaseDate,
		Rating:       m.VoteAverage,
		VoteCount:    m.VoteCount,
		Genres:       genres,
		Popularity:   m.Popularity,
	}
}

// MapMovies converts a page of list rows in server-provided order.
func MapMovies(results []MovieResult, catalog []domain.Genre) []domain.Movie {
	movies := make([]domain.Movie, 0, len(results))
	for _, m := range results {
		movies = append(movies, MapMovie(m, catalog))
	}
	return movies
}

// MapGenres converts the genre catalog.
func MapGenres(items []GenreItem) []domain.Genre {
	genres := make([]domain.Genre, 0, len(items))
	for _, g := range items {
		genres = append(genres, domain.Genre{ID: g.ID, Name: g.Name})
	}
	return genres
}

const (
	maxCast    = 10
	maxSimilar = 10
)

// MapMovieDetails converts a details response. Genres are inline here,
// no catalog lookup needed. Cast and similar titles are truncated to the
// first 10 by source ordering; videos are filtered to YouTube trailers.
func MapMovieDetails(r *MovieDetailsResponse) domain.MovieDetails {
	d := domain.MovieDetails{
		Movie: domain.Movie{
			ID:           r.ID,
			Title:        r.Title,
			Overview:     r.Overview,
			PosterPath:   r.PosterPath,
			BackdropPath: r.BackdropPath,
			PosterURL:    PosterURL(r.PosterPath),
			BackdropURL:  BackdropURL(r.BackdropPath),
			ReleaseDate:  r.ReleaseDate,
			Rating:       r.VoteAverage,
			VoteCount:    r.VoteCount,
		},
		Runtime: r.Runtime,
		Status:  r.Status,
		Tagline: r.Tagline,
	}

	for _, g := range r.Genres {
		d.Genres = append(d.Genres, domain.Genre{ID: g.ID, Name: g.Name})
	}

	if r.Credits != nil {
		cast := r.Credits.Cast
		if len(cast) > maxCast {
			cast = cast[:maxCast]
		}
		for _, c := range cast {
			d.Cast = append(d.Cast, domain.CastMember{
				ID:         c.ID,
				Name:       c.Name,
				Character:  c.Character,
				ProfileURL: ProfileURL(c.ProfilePath),
			})
		}
	}

	if r.Videos != nil {
		for _, v := range r.Videos.Results {
			if v.Site != "YouTube" || v.Type != "Trailer" {
				continue
			}
			d.Videos = append(d.Videos, domain.Video{
				ID:   v.ID,
				Key:  v.Key,
				Name: v.Name,
				Site: v.Site,
				Type: v.Type,
			})
		}
	}

	if r.Similar != nil {
		similar := r.Similar.Results
		if len(similar) > maxSimilar {
			similar = similar[:maxSimilar]
		}
		for _, m := range similar {
			d.SimilarMovies = append(d.SimilarMovies, MapMovie(m, nil))
		}
	}

	return d
}
