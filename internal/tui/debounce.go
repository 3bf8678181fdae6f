package tui

import (
	"strings"
	"time"
)

// SearchDebounce is the quiet period between the last keystroke and the
// remote search call.
const SearchDebounce = 500 * time.Millisecond

// searchDebouncer coalesces keystrokes into settled queries. Every
// keystroke bumps the sequence, invalidating any pending tick; only the
// tick carrying the current sequence may settle, and only when the query
// is non-blank and differs from the previously settled one.
type searchDebouncer struct {
	seq  int
	last string
}

// Type records a keystroke and returns the sequence a debounce tick
// must carry to still be current.
func (d *searchDebouncer) Type() int {
	d.seq++
	return d.seq
}

// Settle decides whether the query may fire. Stale ticks, blank input
// and repeats of the previously settled query are all suppressed.
func (d *searchDebouncer) Settle(seq int, query string) (string, bool) {
	if seq != d.seq {
		return "", false
	}
	query = strings.TrimSpace(query)
	if query == "" || query == d.last {
		return "", false
	}
	d.last = query
	return query, true
}

// Last returns the previously settled query for retry.
func (d *searchDebouncer) Last() (string, bool) {
	if d.last == "" {
		return "", false
	}
	return d.last, true
}

// Reset forgets the settled query so the same text can fire again.
func (d *searchDebouncer) Reset() {
	d.last = ""
}
