package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/worldwise/internal/cities"
)

// draftSubmittedMsg carries a locally valid draft to the model.
type draftSubmittedMsg struct{ draft cities.Draft }

const (
	fieldName = iota
	fieldCountry
	fieldEmoji
	fieldDate
	fieldNotes
	fieldLat
	fieldLng
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldName:    "City",
	fieldCountry: "Country",
	fieldEmoji:   "Emoji",
	fieldDate:    "Visited",
	fieldNotes:   "Notes",
	fieldLat:     "Latitude",
	fieldLng:     "Longitude",
}

// cityForm collects a new city. Enter on the last field or ctrl+s submits.
type cityForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

func newCityForm(today time.Time) *cityForm {
	f := &cityForm{}
	placeholders := [fieldCount]string{
		fieldName:    "Lisbon",
		fieldCountry: "Portugal",
		fieldEmoji:   "🇵🇹",
		fieldDate:    "YYYY-MM-DD",
		fieldNotes:   "Notes about your trip",
		fieldLat:     "38.7223",
		fieldLng:     "-9.1393",
	}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholders[i]
		in.CharLimit = 120
		in.Width = 40
		f.inputs[i] = in
	}
	f.inputs[fieldEmoji].CharLimit = 8
	f.inputs[fieldDate].SetValue(today.Format("2006-01-02"))
	f.inputs[fieldName].Focus()
	return f
}

func (f *cityForm) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
		return f, cmd, false
	}

	switch {
	case keyMsg.Type == tea.KeyEsc:
		return f, nil, true
	case key.Matches(keyMsg, keys.Submit),
		keyMsg.Type == tea.KeyEnter && f.focus == fieldCount-1:
		return f.submit()
	case keyMsg.Type == tea.KeyEnter, key.Matches(keyMsg, keys.NextField):
		return f, f.setFocus(f.focus + 1), false
	case key.Matches(keyMsg, keys.PrevField):
		return f, f.setFocus(f.focus - 1), false
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd, false
}

func (f *cityForm) submit() (Modal, tea.Cmd, bool) {
	draft, err := f.draft()
	if err != nil {
		f.err = err.Error()
		return f, nil, false
	}
	f.err = ""
	return f, func() tea.Msg { return draftSubmittedMsg{draft: draft} }, true
}

func (f *cityForm) setFocus(i int) tea.Cmd {
	i = (i + fieldCount) % fieldCount
	f.inputs[f.focus].Blur()
	f.focus = i
	return f.inputs[i].Focus()
}

// draft parses and validates the form fields.
func (f *cityForm) draft() (cities.Draft, error) {
	value := func(i int) string { return strings.TrimSpace(f.inputs[i].Value()) }

	d := cities.Draft{
		Name:    value(fieldName),
		Country: value(fieldCountry),
		Emoji:   value(fieldEmoji),
		Notes:   value(fieldNotes),
	}
	date, err := cities.ParseDate(value(fieldDate))
	if err != nil {
		return cities.Draft{}, fmt.Errorf("visited: %w", err)
	}
	d.Date = date
	if d.Position.Lat, err = parseCoordinate("latitude", value(fieldLat)); err != nil {
		return cities.Draft{}, err
	}
	if d.Position.Lng, err = parseCoordinate("longitude", value(fieldLng)); err != nil {
		return cities.Draft{}, err
	}
	if err := d.Validate(); err != nil {
		return cities.Draft{}, err
	}
	return d, nil
}

func parseCoordinate(label, raw string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%s is required", label)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", label)
	}
	return v, nil
}

func (f *cityForm) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	lines := []string{styles.Title.Render("Add a city"), ""}
	for i, in := range f.inputs {
		label := fmt.Sprintf("%-10s", fieldLabels[i])
		if i == f.focus {
			label = styles.AccentText.Render(label)
		} else {
			label = styles.MutedText.Render(label)
		}
		lines = append(lines, label+" "+in.View())
	}
	lines = append(lines, "")
	if f.err != "" {
		lines = append(lines, styles.DangerText.Render(truncate(f.err, 60)), "")
	}
	lines = append(lines, styles.FaintText.Render("tab next  ·  enter on last field or ctrl+s save  ·  esc cancel"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		styles.Modal.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}
