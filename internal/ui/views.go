package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/worldwise/internal/cities"
)

// renderMain stacks header, active view and command bar.
func (m Model) renderMain() string {
	header := m.renderHeader()
	footer := m.renderCommandBar()

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	var body string
	switch m.currentView {
	case ViewDetail:
		body = m.renderDetail()
	case ViewCountries:
		body = m.renderCountries()
	default:
		body = m.renderList(bodyHeight)
	}
	body = lipgloss.NewStyle().
		Width(m.width).
		Height(bodyHeight).
		MaxHeight(bodyHeight).
		Padding(0, 1).
		Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	compact := m.width < 80
	snap := m.snapshot

	parts := []string{styles.Logo.Render("worldwise")}

	parts = append(parts,
		styles.MutedText.Render("Cities:")+" "+styles.Text.Render(fmt.Sprintf("%d", len(snap.Cities))),
		styles.MutedText.Render("Countries:")+" "+styles.Text.Render(fmt.Sprintf("%d", len(snap.Countries()))),
	)

	if snap.IsLoading {
		parts = append(parts, m.spinner.View()+styles.WarningText.Render("Loading"))
	}
	if snap.IsOffline() {
		parts = append(parts, styles.Badge.Render("OFFLINE"))
	}
	if ts := formatTimestamp(snap.LastUpdated, m.now()); ts != "" {
		parts = append(parts, styles.MutedText.Render(ts))
	}

	if snap.Error != "" {
		maxErr := 80
		if compact {
			maxErr = 40
		}
		parts = append(parts, styles.DangerText.Render(truncate(snap.Error, maxErr)))
	} else if m.notice != "" {
		parts = append(parts, styles.SuccessText.Render(truncate(m.notice, 40)))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

// renderCommandBar renders the key hints for the active view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()

	type cmd struct{ key, desc string }
	var commands []cmd
	switch m.currentView {
	case ViewDetail:
		commands = []cmd{{"esc", "List"}, {"d", "Delete"}, {"c", "Countries"}, {"n", "Add"}}
	case ViewCountries:
		commands = []cmd{{"esc", "List"}, {"n", "Add"}}
	default:
		commands = []cmd{{"j/k", "Navigate"}, {"enter", "Open"}, {"n", "Add"}, {"d", "Delete"}, {"c", "Countries"}}
	}
	commands = append(commands, cmd{"r", "Reload"}, cmd{"?", "More"})

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments, styles.AccentText.Render(c.key)+":"+styles.MutedText.Render(c.desc))
	}
	segments = append(segments, styles.AccentText.Render("T")+":"+styles.FaintText.Render(m.theme.Name))

	return styles.Footer.Width(m.width).Render(strings.Join(segments, "  "))
}

// renderList renders the collection with the cursor kept in view.
func (m Model) renderList(height int) string {
	styles := m.theme.Styles()
	items := m.snapshot.Cities
	if len(items) == 0 {
		if m.snapshot.IsLoading {
			return styles.MutedText.Render("Loading cities...")
		}
		return styles.MutedText.Render("No cities yet. Press n to add your first city.")
	}

	start := 0
	if m.selectedRow >= height {
		start = m.selectedRow - height + 1
	}
	end := min(start+height, len(items))

	nameWidth := 0
	for _, c := range items {
		nameWidth = max(nameWidth, lipgloss.Width(c.Name))
	}
	nameWidth = min(nameWidth, 32)

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		c := items[i]
		emoji := c.Emoji
		if emoji == "" {
			emoji = "  "
		}
		date := ""
		if !c.Date.IsZero() {
			date = c.Date.Local().Format("Jan 2, 2006")
		}
		row := fmt.Sprintf("%s %s  %s", emoji, padRight(truncate(c.Name, nameWidth), nameWidth), date)

		switch {
		case i == m.selectedRow:
			row = styles.Selected.Width(m.width - 2).Render(row)
		case m.snapshot.HasCurrent && c.ID == m.snapshot.Current.ID:
			row = styles.AccentText.Render(row)
		default:
			row = styles.Text.Render(row)
		}
		lines = append(lines, row)
	}
	return strings.Join(lines, "\n")
}

// renderDetail renders the focused city.
func (m Model) renderDetail() string {
	styles := m.theme.Styles()
	if !m.snapshot.HasCurrent {
		if m.snapshot.IsLoading {
			return styles.MutedText.Render("Loading city...")
		}
		return styles.MutedText.Render("No city selected.")
	}
	c := m.snapshot.Current

	title := c.Name
	if c.Emoji != "" {
		title = c.Emoji + " " + title
	}

	row := func(label, value string) string {
		return styles.MutedText.Render(padRight(label, 12)) + styles.Text.Render(value)
	}
	lines := []string{
		styles.Title.Render(title),
		"",
		row("City name", c.Name),
	}
	if c.Country != "" {
		lines = append(lines, row("Country", c.Country))
	}
	if date := cities.FormatDate(c.Date); date != "" {
		lines = append(lines, row("Visited on", date))
	}
	lines = append(lines, row("Position", fmt.Sprintf("%.4f, %.4f", c.Position.Lat, c.Position.Lng)))
	if c.Notes != "" {
		lines = append(lines, row("Your notes", c.Notes))
	}
	lines = append(lines,
		"",
		styles.MutedText.Render("Learn more"),
		styles.InfoText.Render(c.WikipediaURL()),
	)

	return styles.Panel.Render(strings.Join(lines, "\n"))
}

// renderCountries renders the derived country list.
func (m Model) renderCountries() string {
	styles := m.theme.Styles()
	countries := m.snapshot.Countries()
	if len(countries) == 0 {
		return styles.MutedText.Render("No countries yet. Add a city to start your collection.")
	}

	lines := make([]string, 0, len(countries))
	for _, c := range countries {
		emoji := c.Emoji
		if emoji == "" {
			emoji = "  "
		}
		lines = append(lines, emoji+" "+styles.Text.Render(c.Name))
	}
	return strings.Join(lines, "\n")
}

// renderHelp renders the full key reference.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	h := m.help
	h.ShowAll = true
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render("Keys"),
		"",
		h.View(m.keys),
		"",
		styles.FaintText.Render("Press any key to close"),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, styles.Modal.Render(body))
}

// formatTimestamp formats the last update time with a relative suffix.
func formatTimestamp(ts, now time.Time) string {
	if ts.IsZero() {
		return ""
	}
	since := now.Sub(ts)
	out := ts.In(now.Location()).Format("15:04:05")
	switch {
	case since < time.Minute:
		out += " (now)"
	case since < time.Hour:
		out += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		out += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}
	return out
}
