package ui

import "testing"

func TestGetThemeFallsBack(t *testing.T) {
	if got := GetTheme("Kanagawa").Name; got != "Kanagawa" {
		t.Fatalf("GetTheme(Kanagawa) = %q", got)
	}
	if got := GetTheme("Dracula").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(unknown) = %q, want Nightfox", got)
	}
}

func TestNextThemeCycles(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() = %v, want 3 themes", names)
	}
	name := names[0]
	for range names {
		name = NextTheme(name)
	}
	if name != names[0] {
		t.Fatalf("cycling through every theme ended on %q, want %q", name, names[0])
	}
	if got := NextTheme("missing"); got != names[0] {
		t.Fatalf("NextTheme(missing) = %q, want %q", got, names[0])
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"  short  ", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"There was an error loading cities...", 12, "There was..."},
		{"abcdef", 3, "abc"},
		{"Zürich Hauptbahnhof", 8, "Züric..."},
		{"unlimited", 0, "unlimited"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("Oslo", 6); got != "Oslo  " {
		t.Fatalf("padRight = %q", got)
	}
	if got := padRight("Reykjavik", 4); got != "Reykjavik" {
		t.Fatalf("padRight should not cut, got %q", got)
	}
}
