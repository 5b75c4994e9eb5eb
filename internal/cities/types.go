package cities

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ID identifies a city. Ids are assigned by the backend and are always positive.
type ID int64

// ParseID converts a textual id (from a URL, flag or argument) into an ID.
func ParseID(raw string) (ID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("parse city id: empty value")
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse city id %q: %w", raw, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("parse city id %q: must be positive", raw)
	}
	return ID(n), nil
}

// String returns the decimal form used in request paths.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// UnmarshalJSON accepts both numeric and quoted numeric ids; json-server has
// emitted either form depending on version.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("city id: %w", err)
	}
	*id = ID(n)
	return nil
}

// Position is a geographic coordinate pair.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks that the coordinates are in range.
func (p Position) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Lat, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&p.Lng, validation.Min(-180.0), validation.Max(180.0)),
	)
}

// City mirrors a record returned by the /cities resource.
type City struct {
	ID       ID        `json:"id"`
	Name     string    `json:"cityName"`
	Country  string    `json:"country,omitempty"`
	Emoji    string    `json:"emoji,omitempty"`
	Date     time.Time `json:"date"`
	Notes    string    `json:"notes,omitempty"`
	Position Position  `json:"position"`
}

// Draft returns the city's fields without its id.
func (c City) Draft() Draft {
	return Draft{
		Name:     c.Name,
		Country:  c.Country,
		Emoji:    c.Emoji,
		Date:     c.Date,
		Notes:    c.Notes,
		Position: c.Position,
	}
}

// Draft is the body of a create request: a City that has no id yet.
type Draft struct {
	Name     string    `json:"cityName"`
	Country  string    `json:"country,omitempty"`
	Emoji    string    `json:"emoji,omitempty"`
	Date     time.Time `json:"date"`
	Notes    string    `json:"notes,omitempty"`
	Position Position  `json:"position"`
}

// WithID attaches a server-assigned id to the draft.
func (d Draft) WithID(id ID) City {
	return City{
		ID:       id,
		Name:     d.Name,
		Country:  d.Country,
		Emoji:    d.Emoji,
		Date:     d.Date,
		Notes:    d.Notes,
		Position: d.Position,
	}
}

// Validate reports whether the draft can be sent to the backend.
func (d Draft) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required, validation.By(notBlank)),
		validation.Field(&d.Emoji, validation.RuneLength(0, 8)),
		validation.Field(&d.Date, validation.Required),
		validation.Field(&d.Position),
	)
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0 {
		return errors.New("must not be blank")
	}
	return nil
}
