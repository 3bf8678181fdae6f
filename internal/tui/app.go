package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sambard/marquee/internal/domain"
	"github.com/sambard/marquee/internal/service"
	"github.com/sambard/marquee/internal/tui/styles"
)

// ViewState identifies the active screen
type ViewState int

const (
	ViewHome ViewState = iota
	ViewSearch
	ViewFavorites
	ViewDetails
	ViewHelp
)

const statusDuration = 3 * time.Second

// homeState holds the four concurrently loaded category rows
type homeState struct {
	Rows    map[domain.Category][]domain.Movie
	Errs    map[domain.Category]error
	Pending int // Categories still loading
	Page    int
	Row     int // Selected category row
	Col     int // Selected movie within the row
}

// searchState holds the debounced remote search screen
type searchState struct {
	Input    textinput.Model
	Debounce searchDebouncer
	Query    string // Last settled query shown in results header
	Movies   []domain.Movie
	Page     int
	Loading  bool
	Err      error
	Cursor   int
}

// favoritesState holds the live favorites screen with local filtering
type favoritesState struct {
	Filter  textinput.Model
	Movies  []domain.Movie // Full list, most recent first
	Visible []service.FilterResult
	Cursor  int
}

// detailsState holds the detail screen for one movie
type detailsState struct {
	ID       int
	Details  domain.MovieDetails
	Favorite bool
	Loading  bool
	Err      error
}

// CacheRefresher invalidates cached category pages ahead of a forced
// reload. Satisfied by *service.CatalogService.
type CacheRefresher interface {
	RefreshCategory(category domain.Category) error
}

// Model is the main Bubble Tea model for the application
type Model struct {
	State     ViewState
	prevState ViewState // Where details/help return to
	Keys      KeyMap

	Catalog   domain.MovieRepository
	Refresher CacheRefresher

	Home      homeState
	Search    searchState
	Favorites favoritesState
	Details   detailsState

	// Set of favorited ids, kept current by the store subscription
	favIDs map[int]bool
	favCh  <-chan struct{}

	Width  int
	Height int
	Ready  bool

	StatusText  string
	StatusIsErr bool
	Spinner     spinner.Model
}

// NewModel creates the application model
func NewModel(catalog domain.MovieRepository, refresher CacheRefresher) Model {
	searchInput := textinput.New()
	searchInput.Placeholder = "Search movies..."
	searchInput.CharLimit = 100
	searchInput.Prompt = "/ "
	searchInput.PromptStyle = styles.AccentStyle

	filterInput := textinput.New()
	filterInput.Placeholder = "Filter favorites..."
	filterInput.CharLimit = 100
	filterInput.Prompt = "> "
	filterInput.PromptStyle = styles.AccentStyle

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{Frames: styles.SpinnerFrames, FPS: time.Second / 10}
	sp.Style = styles.AccentStyle

	favCh, _ := catalog.SubscribeFavorites()

	return Model{
		State:     ViewHome,
		Keys:      DefaultKeyMap(),
		Catalog:   catalog,
		Refresher: refresher,
		Home: homeState{
			Rows:    make(map[domain.Category][]domain.Movie),
			Errs:    make(map[domain.Category]error),
			Pending: len(domain.Categories),
			Page:    1,
		},
		Search:    searchState{Input: searchInput, Page: 1},
		Favorites: favoritesState{Filter: filterInput},
		Spinner:   sp,
		favIDs:    make(map[int]bool),
		favCh:     favCh,
	}
}

// Init starts the initial loads and the favorites watch
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		LoadHomeCmd(m.Catalog, m.Home.Page),
		LoadFavoritesCmd(m.Catalog),
		WatchFavoritesCmd(m.favCh),
		m.Spinner.Tick,
		textinput.Blink,
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Search.Input.Width = msg.Width - 8
		m.Favorites.Filter.Width = msg.Width - 8
		m.Ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case CategoryLoadedMsg:
		if msg.Page != m.Home.Page {
			return m, nil
		}
		if m.Home.Pending > 0 {
			m.Home.Pending--
		}
		if msg.Err != nil {
			// A failed category degrades to an empty row; others still show
			m.Home.Rows[msg.Category] = nil
			m.Home.Errs[msg.Category] = msg.Err
		} else {
			m.Home.Rows[msg.Category] = msg.Movies
			delete(m.Home.Errs, msg.Category)
		}
		m.clampHomeCursor()
		return m, nil

	case SearchDebouncedMsg:
		query, ok := m.Search.Debounce.Settle(msg.Seq, m.Search.Input.Value())
		if !ok {
			return m, nil
		}
		m.Search.Loading = true
		m.Search.Err = nil
		m.Search.Page = 1
		return m, SearchCmd(m.Catalog, query, m.Search.Page)

	case SearchResultsMsg:
		if last, ok := m.Search.Debounce.Last(); !ok || last != msg.Query {
			return m, nil // Stale response for a superseded query
		}
		m.Search.Loading = false
		m.Search.Query = msg.Query
		if msg.Err != nil {
			m.Search.Err = msg.Err
			m.Search.Movies = nil
		} else {
			m.Search.Err = nil
			m.Search.Movies = msg.Movies
		}
		m.Search.Cursor = 0
		return m, nil

	case DetailsLoadedMsg:
		if msg.ID != m.Details.ID {
			return m, nil
		}
		m.Details.Loading = false
		m.Details.Err = msg.Err
		if msg.Err == nil {
			m.Details.Details = msg.Details
			m.Details.Favorite = msg.Favorite
		}
		return m, nil

	case FavoritesLoadedMsg:
		if msg.Err != nil {
			return m, m.setStatus("favorites: "+msg.Err.Error(), true)
		}
		m.Favorites.Movies = msg.Movies
		m.favIDs = make(map[int]bool, len(msg.Movies))
		for _, mv := range msg.Movies {
			m.favIDs[mv.ID] = true
		}
		m.applyFavoritesFilter()
		return m, nil

	case FavoritesChangedMsg:
		// Re-read and keep watching
		return m, tea.Batch(LoadFavoritesCmd(m.Catalog), WatchFavoritesCmd(m.favCh))

	case FavoriteToggledMsg:
		if m.State == ViewDetails && m.Details.ID == msg.ID {
			m.Details.Favorite = msg.Favorite
		}
		text := "Removed from favorites: " + msg.Title
		if msg.Favorite {
			text = "Added to favorites: " + msg.Title
		}
		return m, m.setStatus(text, false)

	case ErrMsg:
		return m, m.setStatus(msg.Error(), true)

	case StatusMsg:
		return m, m.setStatus(msg.Message, msg.IsError)

	case ClearStatusMsg:
		m.StatusText = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

// setStatus shows a transient status bar message
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.StatusText = text
	m.StatusIsErr = isErr
	return ClearStatusCmd(statusDuration)
}

// handleKey routes key presses by active view
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global bindings first
	switch {
	case key.Matches(msg, m.Keys.Quit):
		if !m.typing() {
			return m, tea.Quit
		}
	case key.Matches(msg, m.Keys.Help):
		if !m.typing() {
			if m.State == ViewHelp {
				m.State = m.prevState
			} else {
				m.prevState = m.State
				m.State = ViewHelp
			}
			return m, nil
		}
	}

	switch m.State {
	case ViewHome:
		return m.handleHomeKey(msg)
	case ViewSearch:
		return m.handleSearchKey(msg)
	case ViewFavorites:
		return m.handleFavoritesKey(msg)
	case ViewDetails:
		return m.handleDetailsKey(msg)
	case ViewHelp:
		if key.Matches(msg, m.Keys.Back) {
			m.State = m.prevState
		}
		return m, nil
	}
	return m, nil
}

// typing reports whether a text input currently owns the keyboard
func (m Model) typing() bool {
	switch m.State {
	case ViewSearch:
		return m.Search.Input.Focused()
	case ViewFavorites:
		return m.Favorites.Filter.Focused()
	}
	return false
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Search):
		return m.enterSearch()
	case key.Matches(msg, m.Keys.Favorites):
		return m.enterFavorites()
	case key.Matches(msg, m.Keys.Up):
		if m.Home.Row > 0 {
			m.Home.Row--
			m.clampHomeCursor()
		}
	case key.Matches(msg, m.Keys.Down):
		if m.Home.Row < len(domain.Categories)-1 {
			m.Home.Row++
			m.clampHomeCursor()
		}
	case key.Matches(msg, m.Keys.Left):
		if m.Home.Col > 0 {
			m.Home.Col--
		}
	case key.Matches(msg, m.Keys.Right):
		row := m.Home.Rows[domain.Categories[m.Home.Row]]
		if m.Home.Col < len(row)-1 {
			m.Home.Col++
		}
	case key.Matches(msg, m.Keys.Enter):
		if movie, ok := m.selectedHomeMovie(); ok {
			return m.openDetails(movie.ID)
		}
	case key.Matches(msg, m.Keys.ToggleFavorite):
		if movie, ok := m.selectedHomeMovie(); ok {
			return m, ToggleFavoriteCmd(m.Catalog, movie, m.favIDs[movie.ID])
		}
	case key.Matches(msg, m.Keys.Refresh):
		// Forced reload drops the cached pages first
		if m.Refresher != nil {
			for _, category := range domain.Categories {
				if err := m.Refresher.RefreshCategory(category); err != nil {
					break
				}
			}
		}
		m.Home.Pending = len(domain.Categories)
		m.Home.Errs = make(map[domain.Category]error)
		return m, LoadHomeCmd(m.Catalog, m.Home.Page)
	case key.Matches(msg, m.Keys.NextPage):
		m.Home.Page++
		m.Home.Pending = len(domain.Categories)
		return m, LoadHomeCmd(m.Catalog, m.Home.Page)
	case key.Matches(msg, m.Keys.PrevPage):
		if m.Home.Page > 1 {
			m.Home.Page--
			m.Home.Pending = len(domain.Categories)
			return m, LoadHomeCmd(m.Catalog, m.Home.Page)
		}
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Back):
		if m.Search.Input.Focused() {
			m.Search.Input.Blur()
		} else {
			m.State = ViewHome
		}
		return m, nil
	case key.Matches(msg, m.Keys.Enter):
		if m.Search.Input.Focused() {
			// Hand the keyboard to the results list
			m.Search.Input.Blur()
			return m, nil
		}
		if len(m.Search.Movies) > 0 && m.Search.Cursor < len(m.Search.Movies) {
			return m.openDetails(m.Search.Movies[m.Search.Cursor].ID)
		}
		return m, nil
	}

	if m.Search.Input.Focused() {
		before := m.Search.Input.Value()
		var cmd tea.Cmd
		m.Search.Input, cmd = m.Search.Input.Update(msg)
		after := m.Search.Input.Value()
		if after != before {
			// Every keystroke restarts the quiet period; blank input
			// clears results without ever reaching the repository
			if after == "" {
				m.Search.Movies = nil
				m.Search.Query = ""
				m.Search.Err = nil
				m.Search.Debounce.Reset()
			}
			seq := m.Search.Debounce.Type()
			return m, tea.Batch(cmd, DebounceCmd(seq))
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.Keys.Home):
		m.State = ViewHome
	case key.Matches(msg, m.Keys.Favorites):
		return m.enterFavorites()
	case key.Matches(msg, m.Keys.Search):
		m.Search.Input.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.Keys.Up):
		if m.Search.Cursor > 0 {
			m.Search.Cursor--
		}
	case key.Matches(msg, m.Keys.Down):
		if m.Search.Cursor < len(m.Search.Movies)-1 {
			m.Search.Cursor++
		}
	case key.Matches(msg, m.Keys.ToggleFavorite):
		if len(m.Search.Movies) > 0 && m.Search.Cursor < len(m.Search.Movies) {
			movie := m.Search.Movies[m.Search.Cursor]
			return m, ToggleFavoriteCmd(m.Catalog, movie, m.favIDs[movie.ID])
		}
	case key.Matches(msg, m.Keys.Refresh):
		// Retry re-issues the same settled query
		if query, ok := m.Search.Debounce.Last(); ok {
			m.Search.Loading = true
			m.Search.Err = nil
			return m, SearchCmd(m.Catalog, query, m.Search.Page)
		}
	}
	return m, nil
}

func (m Model) handleFavoritesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Back):
		if m.Favorites.Filter.Focused() {
			m.Favorites.Filter.Blur()
		} else {
			m.State = ViewHome
		}
		return m, nil
	}

	if m.Favorites.Filter.Focused() {
		before := m.Favorites.Filter.Value()
		var cmd tea.Cmd
		m.Favorites.Filter, cmd = m.Favorites.Filter.Update(msg)
		if m.Favorites.Filter.Value() != before {
			m.applyFavoritesFilter()
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.Keys.Home):
		m.State = ViewHome
	case key.Matches(msg, m.Keys.Search):
		return m.enterSearch()
	case key.Matches(msg, m.Keys.Filter):
		m.Favorites.Filter.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.Keys.Up):
		if m.Favorites.Cursor > 0 {
			m.Favorites.Cursor--
		}
	case key.Matches(msg, m.Keys.Down):
		if m.Favorites.Cursor < len(m.Favorites.Visible)-1 {
			m.Favorites.Cursor++
		}
	case key.Matches(msg, m.Keys.Enter):
		if movie, ok := m.selectedFavorite(); ok {
			return m.openDetails(movie.ID)
		}
	case key.Matches(msg, m.Keys.ToggleFavorite):
		if movie, ok := m.selectedFavorite(); ok {
			return m, ToggleFavoriteCmd(m.Catalog, movie, true)
		}
	}
	return m, nil
}

func (m Model) handleDetailsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Back):
		m.State = m.prevState
		return m, nil
	case key.Matches(msg, m.Keys.ToggleFavorite):
		if m.Details.Err == nil && !m.Details.Loading {
			return m, ToggleFavoriteCmd(m.Catalog, m.Details.Details.Movie, m.Details.Favorite)
		}
	case key.Matches(msg, m.Keys.Refresh):
		if m.Details.Err != nil {
			m.Details.Loading = true
			m.Details.Err = nil
			return m, LoadDetailsCmd(m.Catalog, m.Details.ID)
		}
	}
	return m, nil
}

// === Transitions ===

func (m Model) enterSearch() (tea.Model, tea.Cmd) {
	m.State = ViewSearch
	m.Search.Input.Focus()
	return m, textinput.Blink
}

func (m Model) enterFavorites() (tea.Model, tea.Cmd) {
	m.State = ViewFavorites
	m.applyFavoritesFilter()
	return m, nil
}

func (m Model) openDetails(id int) (tea.Model, tea.Cmd) {
	m.prevState = m.State
	m.State = ViewDetails
	m.Details = detailsState{ID: id, Loading: true}
	return m, LoadDetailsCmd(m.Catalog, id)
}

// === Selection helpers ===

func (m Model) selectedHomeMovie() (domain.Movie, bool) {
	row := m.Home.Rows[domain.Categories[m.Home.Row]]
	if len(row) == 0 || m.Home.Col >= len(row) {
		return domain.Movie{}, false
	}
	return row[m.Home.Col], true
}

func (m Model) selectedFavorite() (domain.Movie, bool) {
	if len(m.Favorites.Visible) == 0 || m.Favorites.Cursor >= len(m.Favorites.Visible) {
		return domain.Movie{}, false
	}
	return m.Favorites.Visible[m.Favorites.Cursor].Movie, true
}

func (m *Model) clampHomeCursor() {
	row := m.Home.Rows[domain.Categories[m.Home.Row]]
	if m.Home.Col >= len(row) {
		m.Home.Col = len(row) - 1
	}
	if m.Home.Col < 0 {
		m.Home.Col = 0
	}
}

func (m *Model) applyFavoritesFilter() {
	m.Favorites.Visible = service.FilterMovies(m.Favorites.Filter.Value(), m.Favorites.Movies)
	if m.Favorites.Cursor >= len(m.Favorites.Visible) {
		m.Favorites.Cursor = len(m.Favorites.Visible) - 1
	}
	if m.Favorites.Cursor < 0 {
		m.Favorites.Cursor = 0
	}
}
