package tmdb

// Wire-format records for the TMDB v3 API. Nothing outside this package
// and the catalog service ever sees these types.

// MovieListResponse is the paged envelope shared by the category list
// and search endpoints.
type MovieListResponse struct {
	Page         int           `json:"page"`
	Results      []MovieResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// MovieResult is one row of a paged list response.
type MovieResult struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	GenreIDs         []int   `json:"genre_ids"`
	Popularity       float64 `json:"popularity"`
	Adult            bool    `json:"adult"`
	OriginalLanguage string  `json:"original_language"`
	OriginalTitle    string  `json:"original_title"`
}

// MovieDetailsResponse is the single-movie endpoint payload with
// credits, videos and similar titles appended.
type MovieDetailsResponse struct {
	ID           int         `json:"id"`
	Title        string      `json:"title"`
	Overview     string      `json:"overview"`
	PosterPath   string      `json:"poster_path"`
	BackdropPath string      `json:"backdrop_path"`
	ReleaseDate  string      `json:"release_date"`
	VoteAverage  float64     `json:"vote_average"`
	VoteCount    int         `json:"vote_count"`
	Genres       []GenreItem `json:"genres"`
	Runtime      int         `json:"runtime"`
	Status       string      `json:"status"`
	Tagline      string      `json:"tagline"`

	Credits *CreditsResponse   `json:"credits"`
	Videos  *VideosResponse    `json:"videos"`
	Similar *MovieListResponse `json:"similar"`
}

// GenreItem is one entry of the genre catalog (also nested inline in
// detail responses).
type GenreItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreListResponse is the genre catalog envelope.
type GenreListResponse struct {
	Genres []GenreItem `json:"genres"`
}

// CreditsResponse carries cast and crew for a movie.
type CreditsResponse struct {
	Cast []CastItem `json:"cast"`
	Crew []CrewItem `json:"crew"`
}

// CastItem is one billed cast entry, ordered by billing.
type CastItem struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

// CrewItem is one crew entry.
type CrewItem struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	Department  string `json:"department"`
	ProfilePath string `json:"profile_path"`
}

// VideosResponse carries the clips attached to a movie.
type VideosResponse struct {
	Results []VideoItem `json:"results"`
}

// VideoItem is one clip entry. Note the string id.
type VideoItem struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}
