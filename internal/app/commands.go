package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/five82/worldwise/internal/cities"
	"github.com/five82/worldwise/internal/config"
	"github.com/five82/worldwise/internal/devserver"
	"github.com/five82/worldwise/internal/logtail"
	"github.com/five82/worldwise/internal/state"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// List loads the collection and prints it as a table.
func List(ctx context.Context, store *state.Store, w io.Writer) error {
	if err := store.LoadAll(ctx); err != nil {
		return err
	}
	snap := store.Snapshot()
	if err := snapshotError(snap); err != nil {
		return err
	}
	if len(snap.Cities) == 0 {
		_, err := fmt.Fprintln(w, "No cities yet. Add one with `worldwise add`.")
		return err
	}

	rows := make([][]string, 0, len(snap.Cities))
	for _, c := range snap.Cities {
		rows = append(rows, []string{
			c.ID.String(),
			c.Emoji,
			c.Name,
			c.Country,
			c.Date.Local().Format("2006-01-02"),
		})
	}
	_, err := fmt.Fprintln(w, renderTable([]string{"ID", "", "CITY", "COUNTRY", "VISITED"}, rows))
	return err
}

// Show focuses one city and prints its details.
func Show(ctx context.Context, store *state.Store, id cities.ID, w io.Writer) error {
	if err := store.LoadOne(ctx, id); err != nil {
		return err
	}
	snap := store.Snapshot()
	if err := snapshotError(snap); err != nil {
		return err
	}
	if !snap.HasCurrent {
		return fmt.Errorf("city %s not loaded", id)
	}
	_, err := io.WriteString(w, describeCity(snap.Current))
	return err
}

// Add creates a city and prints the stored record.
func Add(ctx context.Context, store *state.Store, draft cities.Draft, w io.Writer) error {
	if err := store.Create(ctx, draft); err != nil {
		return err
	}
	snap := store.Snapshot()
	if err := snapshotError(snap); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Added city %s\n\n%s", snap.Current.ID, describeCity(snap.Current))
	return err
}

// Remove deletes a city.
func Remove(ctx context.Context, store *state.Store, id cities.ID, w io.Writer) error {
	if err := store.Remove(ctx, id); err != nil {
		return err
	}
	if err := snapshotError(store.Snapshot()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Removed city %s\n", id)
	return err
}

// Countries loads the collection and prints the distinct countries visited.
func Countries(ctx context.Context, store *state.Store, w io.Writer) error {
	if err := store.LoadAll(ctx); err != nil {
		return err
	}
	snap := store.Snapshot()
	if err := snapshotError(snap); err != nil {
		return err
	}
	countries := snap.Countries()
	if len(countries) == 0 {
		_, err := fmt.Fprintln(w, "No countries yet.")
		return err
	}
	rows := make([][]string, 0, len(countries))
	for _, c := range countries {
		rows = append(rows, []string{c.Emoji, c.Name})
	}
	_, err := fmt.Fprintln(w, renderTable([]string{"", "COUNTRY"}, rows))
	return err
}

// Logs prints the last n entries of the application log.
func Logs(path string, n int, w io.Writer) error {
	lines, err := logtail.Read(path, n)
	if err != nil {
		return err
	}
	for _, entry := range logtail.ParseLines(lines) {
		if _, err := fmt.Fprintln(w, logtail.Format(entry)); err != nil {
			return err
		}
	}
	return nil
}

// Serve runs the development backend until ctx is cancelled, logging JSON
// records to logs.
func Serve(ctx context.Context, cfg config.Config, logs io.Writer) error {
	logger := slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: cfg.LogLevel}))
	return devserver.Serve(ctx, devserver.Options{
		Addr:     cfg.Server.Addr,
		DBPath:   cfg.Server.DBPath,
		SeedPath: cfg.Server.SeedPath,
		Logger:   logger,
	})
}

// snapshotError turns a failed operation left in the snapshot into an error
// for the command's exit status.
func snapshotError(snap state.Snapshot) error {
	if snap.Error == "" {
		return nil
	}
	if snap.Err != nil {
		return fmt.Errorf("%s (%w)", strings.TrimRight(snap.Error, ". "), snap.Err)
	}
	return errors.New(snap.Error)
}

func describeCity(c cities.City) string {
	var b strings.Builder
	title := c.Name
	if c.Emoji != "" {
		title = c.Emoji + " " + title
	}
	if c.Country != "" {
		title += " (" + c.Country + ")"
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	b.WriteString("\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "  %-9s %s\n", label, value)
	}
	field("ID", c.ID.String())
	field("Visited", cities.FormatDate(c.Date))
	field("Position", formatPosition(c.Position))
	field("Notes", c.Notes)
	field("Wikipedia", c.WikipediaURL())
	return b.String()
}

func formatPosition(p cities.Position) string {
	return strconv.FormatFloat(p.Lat, 'f', 4, 64) + ", " + strconv.FormatFloat(p.Lng, 'f', 4, 64)
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Render()
}
