package store

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sambard/marquee/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func openTestStore(t *testing.T) *MovieStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// testClock returns a clock that advances one second per call
func testClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func TestAddAndIsFavorite(t *testing.T) {
	s := openTestStore(t)

	fav, err := s.IsFavorite(550)
	require.NoError(t, err)
	assert.False(t, fav)

	require.NoError(t, s.AddFavorite(domain.Movie{ID: 550, Title: "Fight Club"}))

	fav, err = s.IsFavorite(550)
	require.NoError(t, err)
	assert.True(t, fav)
}

func TestFavoriteRoundTripDropsGenreIDsAndPopularity(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.AddFavorite(domain.Movie{
		ID:         550,
		Title:      "Fight Club",
		PosterPath: "/poster.jpg",
		Genres: []domain.Genre{
			{ID: 18, Name: "Drama"},
			{ID: 53, Name: "Thriller"},
		},
		Popularity: 61.4,
	}))

	got, found, err := s.Favorite(550)
	require.NoError(t, err)
	require.True(t, found)

	// Genre names survive; ids are rebuilt sequentially
	require.Len(t, got.Genres, 2)
	assert.Equal(t, domain.Genre{ID: 0, Name: "Drama"}, got.Genres[0])
	assert.Equal(t, domain.Genre{ID: 1, Name: "Thriller"}, got.Genres[1])

	// Popularity is not persisted
	assert.Zero(t, got.Popularity)

	// Image URLs are rebuilt from the stored relative path
	assert.Equal(t, "/poster.jpg", got.PosterPath)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/poster.jpg", got.PosterURL)
}

func TestFavoritesMostRecentFirst(t *testing.T) {
	s := openTestStore(t)
	s.now = testClock(time.Unix(1000, 0))

	require.NoError(t, s.AddFavorite(domain.Movie{ID: 1, Title: "First"}))
	require.NoError(t, s.AddFavorite(domain.Movie{ID: 2, Title: "Second"}))
	require.NoError(t, s.AddFavorite(domain.Movie{ID: 3, Title: "Third"}))

	movies, err := s.Favorites()
	require.NoError(t, err)

	require.Len(t, movies, 3)
	assert.Equal(t, "Third", movies[0].Title)
	assert.Equal(t, "Second", movies[1].Title)
	assert.Equal(t, "First", movies[2].Title)
}

func TestAddFavoriteUpsertBumpsOrdering(t *testing.T) {
	s := openTestStore(t)
	s.now = testClock(time.Unix(1000, 0))

	require.NoError(t, s.AddFavorite(domain.Movie{ID: 1, Title: "Old Title", Rating: 7.0}))
	require.NoError(t, s.AddFavorite(domain.Movie{ID: 2, Title: "Other"}))
	require.NoError(t, s.AddFavorite(domain.Movie{ID: 1, Title: "New Title", Rating: 8.0}))

	movies, err := s.Favorites()
	require.NoError(t, err)

	// Still one row per id; the re-add replaced the snapshot and moved
	// the movie to the top
	require.Len(t, movies, 2)
	assert.Equal(t, "New Title", movies[0].Title)
	assert.Equal(t, 8.0, movies[0].Rating)
	assert.Equal(t, "Other", movies[1].Title)
}

func TestRemoveFavoriteIdempotent(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.AddFavorite(domain.Movie{ID: 1, Title: "A"}))
	require.NoError(t, s.RemoveFavorite(1))
	require.NoError(t, s.RemoveFavorite(1))
	require.NoError(t, s.RemoveFavorite(999))

	fav, err := s.IsFavorite(1)
	require.NoError(t, err)
	assert.False(t, fav)
}

func TestSubscribeSignalsMutations(t *testing.T) {
	s := openTestStore(t)

	ch, unsubscribe := s.Subscribe()

	require.NoError(t, s.AddFavorite(domain.Movie{ID: 1, Title: "A"}))
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a signal after AddFavorite")
	}

	require.NoError(t, s.RemoveFavorite(1))
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a signal after RemoveFavorite")
	}

	unsubscribe()
	require.NoError(t, s.AddFavorite(domain.Movie{ID: 2, Title: "B"}))
	select {
	case <-ch:
		t.Fatal("unexpected signal after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFavoritesSkipsCorruptRows(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.AddFavorite(domain.Movie{ID: 1, Title: "Good"}))

	// Inject a row that is not valid JSON
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFavorites).Put(favoriteKey(2), []byte("{not json"))
	})
	require.NoError(t, err)

	movies, err := s.Favorites()
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "Good", movies[0].Title)
}

func TestCorruptGenreListDecodesEmpty(t *testing.T) {
	s := openTestStore(t)

	rec := favoriteRecord{ID: 1, Title: "A", Genres: "not-a-json-list"}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFavorites).Put(favoriteKey(1), data)
	})
	require.NoError(t, err)

	got, found, err := s.Favorite(1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Empty(t, got.Genres)
}

func TestPageCacheRoundTrip(t *testing.T) {
	s := openTestStore(t)

	movies := []domain.Movie{
		{ID: 1, Title: "A"},
		{ID: 2, Title: "B"},
	}
	require.NoError(t, s.SaveMoviePage(domain.CategoryPopular, 1, movies))

	got, fetchedAt, ok := s.CachedMoviePage(domain.CategoryPopular, 1)
	require.True(t, ok)
	assert.Equal(t, movies, got)
	assert.WithinDuration(t, time.Now(), fetchedAt, time.Minute)

	_, _, ok = s.CachedMoviePage(domain.CategoryPopular, 2)
	assert.False(t, ok)
	_, _, ok = s.CachedMoviePage(domain.CategoryTopRated, 1)
	assert.False(t, ok)
}

func TestCachedCategoryOrderedByPage(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveMoviePage(domain.CategoryPopular, 2, []domain.Movie{{ID: 3, Title: "C"}}))
	require.NoError(t, s.SaveMoviePage(domain.CategoryPopular, 1, []domain.Movie{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}))
	require.NoError(t, s.SaveMoviePage(domain.CategoryTopRated, 1, []domain.Movie{{ID: 9, Title: "Z"}}))

	movies, err := s.CachedCategory(domain.CategoryPopular)
	require.NoError(t, err)

	require.Len(t, movies, 3)
	assert.Equal(t, "A", movies[0].Title)
	assert.Equal(t, "B", movies[1].Title)
	assert.Equal(t, "C", movies[2].Title)
}

func TestInvalidateCategory(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveMoviePage(domain.CategoryPopular, 1, []domain.Movie{{ID: 1}}))
	require.NoError(t, s.SaveMoviePage(domain.CategoryPopular, 2, []domain.Movie{{ID: 2}}))
	require.NoError(t, s.SaveMoviePage(domain.CategoryTopRated, 1, []domain.Movie{{ID: 3}}))

	require.NoError(t, s.InvalidateCategory(domain.CategoryPopular))

	_, _, ok := s.CachedMoviePage(domain.CategoryPopular, 1)
	assert.False(t, ok)
	_, _, ok = s.CachedMoviePage(domain.CategoryPopular, 2)
	assert.False(t, ok)
	_, _, ok = s.CachedMoviePage(domain.CategoryTopRated, 1)
	assert.True(t, ok)
}

func TestClosedStoreRejectsOperations(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.AddFavorite(domain.Movie{ID: 1, Title: "A"}))
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.AddFavorite(domain.Movie{ID: 2, Title: "B"}), domain.ErrStoreClosed)
	assert.ErrorIs(t, s.RemoveFavorite(1), domain.ErrStoreClosed)

	_, err := s.Favorites()
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
	_, err = s.IsFavorite(1)
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
	_, _, err = s.Favorite(1)
	assert.ErrorIs(t, err, domain.ErrStoreClosed)

	assert.ErrorIs(t, s.SaveMoviePage(domain.CategoryPopular, 1, nil), domain.ErrStoreClosed)
	assert.ErrorIs(t, s.InvalidateCategory(domain.CategoryPopular), domain.ErrStoreClosed)
	_, err = s.CachedCategory(domain.CategoryPopular)
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
	_, err = s.SweepExpired(time.Now())
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
	_, _, ok := s.CachedMoviePage(domain.CategoryPopular, 1)
	assert.False(t, ok)

	// Close is idempotent
	require.NoError(t, s.Close())
}

func TestPageKeysMatchCategoryScanPrefix(t *testing.T) {
	s := openTestStore(t)

	for page := 1; page <= 10; page++ {
		require.NoError(t, s.SaveMoviePage(domain.CategoryPopular, page, []domain.Movie{{ID: page}}))
	}
	require.NoError(t, s.SaveMoviePage(domain.CategoryTopRated, 1, []domain.Movie{{ID: 99}}))

	// Stored keys must carry the raw category value the scans prefix on,
	// not the display name
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCache).ForEach(func(k, _ []byte) error {
			key := string(k)
			ok := strings.HasPrefix(key, string(domain.CategoryPopular)+":") ||
				strings.HasPrefix(key, string(domain.CategoryTopRated)+":")
			assert.True(t, ok, "unexpected cache key %q", key)
			return nil
		})
	})
	require.NoError(t, err)

	require.NoError(t, s.InvalidateCategory(domain.CategoryPopular))
	for page := 1; page <= 10; page++ {
		_, _, ok := s.CachedMoviePage(domain.CategoryPopular, page)
		assert.False(t, ok, "page %d survived invalidation", page)
	}
	_, _, ok := s.CachedMoviePage(domain.CategoryTopRated, 1)
	assert.True(t, ok)
}

func TestSweepExpired(t *testing.T) {
	s := openTestStore(t)
	s.now = testClock(time.Unix(1000, 0))

	require.NoError(t, s.SaveMoviePage(domain.CategoryPopular, 1, []domain.Movie{{ID: 1}}))
	cutoff := s.now() // After the first save, before the second
	require.NoError(t, s.SaveMoviePage(domain.CategoryPopular, 2, []domain.Movie{{ID: 2}}))

	removed, err := s.SweepExpired(cutoff)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, _, ok := s.CachedMoviePage(domain.CategoryPopular, 1)
	assert.False(t, ok)
	_, _, ok = s.CachedMoviePage(domain.CategoryPopular, 2)
	assert.True(t, ok)
}
