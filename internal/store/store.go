package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sambard/marquee/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketFavorites = []byte("favorites")
	bucketCache     = []byte("cache")
)

// favoriteRecord is the persisted snapshot of a favorited movie.
// Only genre names survive the round-trip; ids and popularity do not.
type favoriteRecord struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Genres       string  `json:"genres"` // JSON-encoded list of genre names
	SavedAt      int64   `json:"saved_at"`
}

// pageRecord is one cached (category, page) unit. The whole page is
// written and replaced as a single value so readers never observe a
// partially refreshed page.
type pageRecord struct {
	Category  domain.Category `json:"category"`
	Page      int             `json:"page"`
	Movies    []domain.Movie  `json:"movies"`
	FetchedAt int64           `json:"fetched_at"`
}

// MovieStore persists the favorites set and the page cache in BoltDB.
type MovieStore struct {
	db *bolt.DB

	mu     sync.Mutex // Protects subs and closed
	subs   map[int]chan struct{}
	next   int
	closed bool

	now func() time.Time // Clock, replaceable in tests
}

// Open opens (or creates) the store database at path.
func Open(path string) (*MovieStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketFavorites, bucketCache} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &MovieStore{
		db:   db,
		subs: make(map[int]chan struct{}),
		now:  time.Now,
	}, nil
}

// Close closes the database. Operations on a closed store return
// domain.ErrStoreClosed.
func (s *MovieStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.db.Close()
}

func (s *MovieStore) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// === Favorites ===

// AddFavorite upserts the favorite snapshot for a movie. Re-adding an
// already-favorited movie overwrites its snapshot and bumps its
// timestamp, moving it to the top of the ordering.
func (s *MovieStore) AddFavorite(m domain.Movie) error {
	if s.isClosed() {
		return domain.ErrStoreClosed
	}
	rec := toFavoriteRecord(m, s.now().UnixNano())
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFavorites).Put(favoriteKey(m.ID), data)
	})
	if err != nil {
		return err
	}

	s.notify()
	return nil
}

// RemoveFavorite deletes the favorite row for a movie id. Removing an
// absent id is a no-op.
func (s *MovieStore) RemoveFavorite(id int) error {
	if s.isClosed() {
		return domain.ErrStoreClosed
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFavorites).Delete(favoriteKey(id))
	})
	if err != nil {
		return err
	}

	s.notify()
	return nil
}

// IsFavorite reports whether a favorite row exists for the movie id.
func (s *MovieStore) IsFavorite(id int) (bool, error) {
	if s.isClosed() {
		return false, domain.ErrStoreClosed
	}
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bucketFavorites).Get(favoriteKey(id)) != nil
		return nil
	})
	return found, err
}

// Favorite returns the stored snapshot for one movie id.
func (s *MovieStore) Favorite(id int) (domain.Movie, bool, error) {
	if s.isClosed() {
		return domain.Movie{}, false, domain.ErrStoreClosed
	}
	var rec favoriteRecord
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketFavorites).Get(favoriteKey(id))
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(v, &rec); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil || !found {
		return domain.Movie{}, false, err
	}
	return rec.toMovie(), true, nil
}

// Favorites returns all favorited movies, most recently added first.
func (s *MovieStore) Favorites() ([]domain.Movie, error) {
	if s.isClosed() {
		return nil, domain.ErrStoreClosed
	}
	var records []favoriteRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFavorites).ForEach(func(_, v []byte) error {
			var rec favoriteRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				// Skip corrupt rows rather than failing the listing
				return nil
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].SavedAt > records[j].SavedAt
	})

	movies := make([]domain.Movie, len(records))
	for i, rec := range records {
		movies[i] = rec.toMovie()
	}
	return movies, nil
}

// Subscribe registers for favorites change notifications. The channel
// receives a signal after every successful mutation; the returned func
// unsubscribes.
func (s *MovieStore) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// notify signals all subscribers without blocking. A subscriber that
// already has a pending signal coalesces.
func (s *MovieStore) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// === Page cache ===

// SaveMoviePage replaces the cached page for (category, page).
func (s *MovieStore) SaveMoviePage(category domain.Category, page int, movies []domain.Movie) error {
	if s.isClosed() {
		return domain.ErrStoreClosed
	}
	rec := pageRecord{
		Category:  category,
		Page:      page,
		Movies:    movies,
		FetchedAt: s.now().UnixNano(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCache).Put(pageKey(category, page), data)
	})
}

// CachedMoviePage returns the cached page for (category, page) together
// with its fetch time. Expiry policy belongs to the caller.
func (s *MovieStore) CachedMoviePage(category domain.Category, page int) ([]domain.Movie, time.Time, bool) {
	if s.isClosed() {
		return nil, time.Time{}, false
	}
	var rec pageRecord
	var found bool
	s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketCache).Get(pageKey(category, page))
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(v, &rec); err != nil {
			return nil
		}
		found = true
		return nil
	})
	if !found {
		return nil, time.Time{}, false
	}
	return rec.Movies, time.Unix(0, rec.FetchedAt), true
}

// CachedCategory returns all cached movies for a category ordered by page.
func (s *MovieStore) CachedCategory(category domain.Category) ([]domain.Movie, error) {
	if s.isClosed() {
		return nil, domain.ErrStoreClosed
	}
	var movies []domain.Movie
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketCache).Cursor()
		prefix := []byte(string(category) + ":")
		for k, v := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, v = c.Next() {
			var rec pageRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			movies = append(movies, rec.Movies...)
		}
		return nil
	})
	return movies, err
}

// InvalidateCategory drops all cached pages for a category.
func (s *MovieStore) InvalidateCategory(category domain.Category) error {
	if s.isClosed() {
		return domain.ErrStoreClosed
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCache)
		c := b.Cursor()
		prefix := []byte(string(category) + ":")
		for k, _ := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, _ = c.Next() {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// SweepExpired drops all cached pages fetched before the cutoff and
// returns the number of pages removed.
func (s *MovieStore) SweepExpired(cutoff time.Time) (int, error) {
	if s.isClosed() {
		return 0, domain.ErrStoreClosed
	}
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCache)
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var rec pageRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			if time.Unix(0, rec.FetchedAt).Before(cutoff) {
				if err := b.Delete(k); err != nil {
					return err
				}
				removed++
			}
		}
		return nil
	})
	return removed, err
}

// === Keys ===

func favoriteKey(id int) []byte {
	return []byte(strconv.Itoa(id))
}

func pageKey(category domain.Category, page int) []byte {
	// Raw category value, not the display name, so the key shares the
	// prefix the category scans use
	return []byte(fmt.Sprintf("%s:%04d", string(category), page))
}
