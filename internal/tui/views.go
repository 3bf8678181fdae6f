package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sambard/marquee/internal/domain"
	"github.com/sambard/marquee/internal/tui/styles"
)

// View renders the active screen
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	var body string
	switch m.State {
	case ViewHome:
		body = m.viewHome()
	case ViewSearch:
		body = m.viewSearch()
	case ViewFavorites:
		body = m.viewFavorites()
	case ViewDetails:
		body = m.viewDetails()
	case ViewHelp:
		body = m.viewHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.viewStatusBar())
}

func (m Model) viewStatusBar() string {
	text := m.StatusText
	if text == "" {
		text = "1 home · / search · 3 favorites · f favorite · ? help · q quit"
	}
	style := styles.StatusBarStyle
	if m.StatusIsErr {
		style = style.Foreground(styles.Red)
	}
	return style.Width(max(m.Width, 0)).Render(truncate(text, m.Width-2))
}

// viewHome renders the four category rows. Failed categories show as
// empty rows; only a complete wipe-out gets the full error screen.
func (m Model) viewHome() string {
	if m.Home.Pending == 0 && len(m.Home.Errs) == len(domain.Categories) {
		return m.viewFullError("Could not load any movie lists", "r to retry")
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Marquee"))
	if m.Home.Page > 1 {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  page %d", m.Home.Page)))
	}
	if m.Home.Pending > 0 {
		b.WriteString("  " + m.Spinner.View())
	}
	b.WriteString("\n\n")

	for i, category := range domain.Categories {
		header := category.String()
		if i == m.Home.Row {
			b.WriteString(styles.SelectedStyle.Render("▸ " + header))
		} else {
			b.WriteString(styles.SubtitleStyle.Render("  " + header))
		}
		b.WriteString("\n")
		b.WriteString(m.viewCategoryRow(category, i == m.Home.Row))
		b.WriteString("\n\n")
	}

	return b.String()
}

func (m Model) viewCategoryRow(category domain.Category, active bool) string {
	movies := m.Home.Rows[category]
	if len(movies) == 0 {
		return styles.DimStyle.Render("    (empty)")
	}

	var cells []string
	used := 4
	for i, movie := range movies {
		label := truncate(movie.Title, 24)
		if m.favIDs[movie.ID] {
			label = styles.FavoriteChar + " " + label
		}
		var cell string
		if active && i == m.Home.Col {
			cell = styles.HighlightStyle.Render(label)
		} else {
			cell = styles.SubtitleStyle.Render("  " + label + "  ")
		}
		w := lipgloss.Width(cell)
		if m.Width > 0 && used+w > m.Width {
			break
		}
		used += w
		cells = append(cells, cell)
	}
	return "    " + lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m Model) viewSearch() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Search"))
	b.WriteString("\n\n")
	b.WriteString(m.Search.Input.View())
	b.WriteString("\n\n")

	switch {
	case m.Search.Loading:
		b.WriteString(m.Spinner.View() + styles.DimStyle.Render(" Searching..."))
	case m.Search.Err != nil:
		b.WriteString(styles.ErrorStyle.Render(errorText(m.Search.Err)))
		b.WriteString("\n")
		b.WriteString(styles.DimStyle.Render("r to retry"))
	case m.Search.Query != "" && len(m.Search.Movies) == 0:
		b.WriteString(styles.DimStyle.Render("No results for " + m.Search.Query))
	default:
		b.WriteString(m.viewMovieList(m.Search.Movies, m.Search.Cursor, !m.Search.Input.Focused()))
	}

	return b.String()
}

func (m Model) viewFavorites() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Favorites"))
	b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  %d", len(m.Favorites.Movies))))
	b.WriteString("\n\n")
	b.WriteString(m.Favorites.Filter.View())
	b.WriteString("\n\n")

	if len(m.Favorites.Movies) == 0 {
		b.WriteString(styles.DimStyle.Render("Nothing here yet. Press f on any movie to favorite it."))
		return b.String()
	}

	movies := make([]domain.Movie, len(m.Favorites.Visible))
	for i, r := range m.Favorites.Visible {
		movies[i] = r.Movie
	}
	b.WriteString(m.viewMovieList(movies, m.Favorites.Cursor, !m.Favorites.Filter.Focused()))

	return b.String()
}

// viewMovieList renders a vertical movie list with a cursor
func (m Model) viewMovieList(movies []domain.Movie, cursor int, showCursor bool) string {
	if len(movies) == 0 {
		return ""
	}

	maxRows := m.Height - 10
	if maxRows < 3 {
		maxRows = 3
	}
	start := 0
	if cursor >= maxRows {
		start = cursor - maxRows + 1
	}

	var b strings.Builder
	for i := start; i < len(movies) && i < start+maxRows; i++ {
		movie := movies[i]

		mark := styles.NotFavoriteMark
		if m.favIDs[movie.ID] {
			mark = styles.FavoriteMark
		}

		line := fmt.Sprintf("%s %s", mark, movie.Title)
		if y := movie.Year(); y > 0 {
			line += styles.DimStyle.Render(fmt.Sprintf("  (%d)", y))
		}
		if movie.Rating > 0 {
			line += styles.RatingStyle.Render(fmt.Sprintf("  ★ %.1f", movie.Rating))
		}
		if genres := movie.GenreNames(); genres != "" {
			line += styles.DimStyle.Render("  " + truncate(genres, 40))
		}

		if showCursor && i == cursor {
			b.WriteString(styles.SelectedStyle.Render("▸ ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewDetails() string {
	if m.Details.Loading {
		return m.Spinner.View() + styles.DimStyle.Render(" Loading details...")
	}
	if m.Details.Err != nil {
		return m.viewFullError(errorText(m.Details.Err), "r to retry · esc to go back")
	}

	d := m.Details.Details
	var b strings.Builder

	mark := styles.NotFavoriteMark
	if m.Details.Favorite {
		mark = styles.FavoriteMark
	}
	b.WriteString(styles.TitleStyle.Render(d.Title) + " " + mark)
	if y := d.Year(); y > 0 {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf(" (%d)", y)))
	}
	b.WriteString("\n")

	if d.Tagline != "" {
		b.WriteString(styles.AccentStyle.Italic(true).Render(d.Tagline))
		b.WriteString("\n")
	}

	var facts []string
	if d.Rating > 0 {
		facts = append(facts, fmt.Sprintf("★ %.1f (%d votes)", d.Rating, d.VoteCount))
	}
	if rt := d.FormattedRuntime(); rt != "" {
		facts = append(facts, rt)
	}
	if d.Status != "" {
		facts = append(facts, d.Status)
	}
	if genres := d.GenreNames(); genres != "" {
		facts = append(facts, genres)
	}
	if len(facts) > 0 {
		b.WriteString(styles.SubtitleStyle.Render(strings.Join(facts, " · ")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if d.Overview != "" {
		b.WriteString(wrap(d.Overview, max(m.Width-4, 40)))
		b.WriteString("\n\n")
	}

	if len(d.Cast) > 0 {
		b.WriteString(styles.TitleStyle.Render("Cast"))
		b.WriteString("\n")
		for _, c := range d.Cast {
			b.WriteString("  " + c.Name)
			if c.Character != "" {
				b.WriteString(styles.DimStyle.Render(" as " + c.Character))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(d.Videos) > 0 {
		b.WriteString(styles.TitleStyle.Render("Trailers"))
		b.WriteString("\n")
		for _, v := range d.Videos {
			b.WriteString("  " + v.Name + "  " + styles.DimStyle.Render(v.WatchURL()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(d.SimilarMovies) > 0 {
		b.WriteString(styles.TitleStyle.Render("Similar"))
		b.WriteString("\n")
		var titles []string
		for _, s := range d.SimilarMovies {
			titles = append(titles, s.Title)
		}
		b.WriteString("  " + styles.SubtitleStyle.Render(truncate(strings.Join(titles, " · "), max(m.Width-4, 40))))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewHelp() string {
	rows := [][2]string{
		{"1", "home screen"},
		{"2 or /", "remote search"},
		{"3", "favorites"},
		{"ctrl+f", "filter favorites"},
		{"j/k or arrows", "move"},
		{"enter", "open details"},
		{"f", "toggle favorite"},
		{"r", "refresh / retry"},
		{"n / p", "next / previous page"},
		{"esc", "back"},
		{"q", "quit"},
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Keys"))
	b.WriteString("\n\n")
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			styles.AccentStyle.Render(fmt.Sprintf("%-14s", row[0])),
			styles.SubtitleStyle.Render(row[1])))
	}
	return b.String()
}

func (m Model) viewFullError(message, hint string) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		styles.ErrorStyle.Render("  "+message),
		styles.DimStyle.Render("  "+hint),
	)
}

// errorText translates a failure into the user-visible message, falling
// back to a generic string when the error carries nothing useful.
func errorText(err error) string {
	if err == nil || err.Error() == "" {
		return "Unknown error occurred"
	}
	return err.Error()
}

func truncate(s string, w int) string {
	if w <= 0 || len(s) <= w {
		return s
	}
	if w <= 1 {
		return "…"
	}
	return s[:w-1] + "…"
}

func wrap(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	line := 0
	for _, word := range words {
		if line > 0 && line+len(word)+1 > width {
			b.WriteString("\n")
			line = 0
		} else if line > 0 {
			b.WriteString(" ")
			line++
		}
		b.WriteString(word)
		line += len(word)
	}
	return b.String()
}
