package cities

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    ID
		wantErr bool
	}{
		{"2", 2, false},
		{" 73930385 ", 73930385, false},
		{"", 0, true},
		{"abc", 0, true},
		{"0", 0, true},
		{"-4", 0, true},
		{"1.5", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestID_UnmarshalAcceptsNumberAndString(t *testing.T) {
	var c struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":7,"b":"8","c":null}`), &c); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if c.A != 7 || c.B != 8 || c.C != 0 {
		t.Fatalf("ids = %d %d %d, want 7 8 0", c.A, c.B, c.C)
	}
	if err := json.Unmarshal([]byte(`{"a":"x1"}`), &c); err == nil {
		t.Fatalf("Unmarshal of non-numeric id returned nil error")
	}
}

func TestCity_MarshalUsesWireNames(t *testing.T) {
	city := City{ID: 3, Name: "Rome", Date: time.Date(2027, 5, 1, 12, 0, 0, 0, time.UTC), Position: Position{Lat: 41.9, Lng: 12.5}}
	raw, err := json.Marshal(city)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	want := `{"id":3,"cityName":"Rome","date":"2027-05-01T12:00:00Z","position":{"lat":41.9,"lng":12.5}}`
	if string(raw) != want {
		t.Fatalf("Marshal = %s, want %s", raw, want)
	}
}

func TestDraft_Validate(t *testing.T) {
	base := Draft{Name: "Lisbon", Date: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), Position: Position{Lat: 38.7, Lng: -9.1}}
	if err := base.Validate(); err != nil {
		t.Fatalf("Validate(valid) = %v, want nil", err)
	}

	tests := []struct {
		name   string
		mutate func(*Draft)
	}{
		{"empty name", func(d *Draft) { d.Name = "" }},
		{"blank name", func(d *Draft) { d.Name = " \t " }},
		{"missing date", func(d *Draft) { d.Date = time.Time{} }},
		{"latitude too high", func(d *Draft) { d.Position.Lat = 90.5 }},
		{"longitude too low", func(d *Draft) { d.Position.Lng = -181 }},
		{"emoji too long", func(d *Draft) { d.Emoji = "abcdefghi" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base
			tt.mutate(&d)
			if err := d.Validate(); err == nil {
				t.Fatalf("Validate() = nil, want error")
			}
		})
	}
}

func TestDraftWithIDRoundTrip(t *testing.T) {
	d := Draft{Name: "Oslo", Country: "Norway", Emoji: "🇳🇴", Notes: "cold", Date: time.Now().UTC()}
	c := d.WithID(9)
	if c.ID != 9 || c.Draft() != d {
		t.Fatalf("WithID/Draft mismatch: %#v", c)
	}
}
