package cities

import (
	"testing"
	"time"
)

// setLocal swaps time.Local for the duration of the test.
func setLocal(t *testing.T, loc *time.Location) {
	t.Helper()
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })
}

func TestFormatDate(t *testing.T) {
	setLocal(t, time.UTC)

	got := FormatDate(time.Date(2027, 10, 31, 15, 59, 59, 0, time.UTC))
	if got != "Sunday, October 31, 2027" {
		t.Fatalf("FormatDate = %q", got)
	}
	if FormatDate(time.Time{}) != "" {
		t.Fatalf("FormatDate(zero) should be empty")
	}
}

func TestFormatDate_UsesLocalZone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	setLocal(t, tokyo)

	// Local midnight on March 1 comes back from the backend as the previous
	// day in UTC.
	entered, err := ParseDate("2026-03-01")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	wire := entered.UTC()
	if wire.Day() != 28 {
		t.Fatalf("wire time = %v, want February 28 in UTC", wire)
	}
	if got := FormatDate(wire); got != "Sunday, March 1, 2026" {
		t.Fatalf("FormatDate(%v) = %q, want %q", wire, got, "Sunday, March 1, 2026")
	}
}

func TestWikipediaURL(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Lisbon", "https://en.wikipedia.org/wiki/Lisbon"},
		{" Rio de Janeiro ", "https://en.wikipedia.org/wiki/Rio_de_Janeiro"},
		{"São Paulo", "https://en.wikipedia.org/wiki/S%C3%A3o_Paulo"},
	}
	for _, tt := range tests {
		if got := (City{Name: tt.name}).WikipediaURL(); got != tt.want {
			t.Errorf("WikipediaURL(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2027-10-31T15:59:59.138Z", time.Date(2027, 10, 31, 15, 59, 59, 138_000_000, time.UTC), false},
		{" 2027-10-31 ", time.Date(2027, 10, 31, 0, 0, 0, 0, time.Local), false},
		{"2027-10-31 08:30", time.Date(2027, 10, 31, 8, 30, 0, 0, time.Local), false},
		{"10/31/2027", time.Date(2027, 10, 31, 0, 0, 0, 0, time.Local), false},
		{"", time.Time{}, true},
		{"yesterday", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !got.Equal(tt.want) {
			t.Fatalf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
