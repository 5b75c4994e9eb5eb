package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/worldwise/internal/cities"
)

// Modal is the interface for modal dialogs.
// Update returns the updated modal, a command, and whether the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// removeRequestedMsg asks the model to delete a city.
type removeRequestedMsg struct{ id cities.ID }

// confirmDelete asks before removing a city.
type confirmDelete struct {
	city cities.City
}

func (c confirmDelete) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(keyMsg, keys.Confirm):
		id := c.city.ID
		return c, func() tea.Msg { return removeRequestedMsg{id: id} }, true
	case key.Matches(keyMsg, keys.Cancel):
		return c, nil, true
	}
	return c, nil, false
}

func (c confirmDelete) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	name := c.city.Name
	if c.city.Emoji != "" {
		name = c.city.Emoji + " " + name
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.DangerText.Render("Delete city?"),
		"",
		styles.Text.Render(fmt.Sprintf("%s (id %s)", name, c.city.ID)),
		"",
		styles.MutedText.Render("y confirm  ·  n/esc cancel"),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, styles.Modal.Render(body))
}
