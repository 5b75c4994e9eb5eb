package state

import (
	"time"

	"github.com/five82/worldwise/internal/cities"
)

// transition is a closed set: the unexported method keeps other packages from
// adding variants, so apply never meets an unknown one.
type transition interface {
	name() string
	apply(Snapshot, time.Time) Snapshot
}

type loadingStarted struct{}

func (loadingStarted) name() string { return "loading" }

func (loadingStarted) apply(s Snapshot, _ time.Time) Snapshot {
	s.IsLoading = true
	return s
}

type citiesLoaded struct{ cities []cities.City }

func (citiesLoaded) name() string { return "cities/loaded" }

func (t citiesLoaded) apply(s Snapshot, now time.Time) Snapshot {
	s.Cities = dedupe(t.cities)
	return succeeded(s, now)
}

type cityLoaded struct{ city cities.City }

func (cityLoaded) name() string { return "city/loaded" }

func (t cityLoaded) apply(s Snapshot, now time.Time) Snapshot {
	s.Current = t.city
	s.HasCurrent = true
	return succeeded(s, now)
}

type cityCreated struct{ city cities.City }

func (cityCreated) name() string { return "city/created" }

func (t cityCreated) apply(s Snapshot, now time.Time) Snapshot {
	next := make([]cities.City, 0, len(s.Cities)+1)
	for _, c := range s.Cities {
		if c.ID != t.city.ID {
			next = append(next, c)
		}
	}
	s.Cities = append(next, t.city)
	s.Current = t.city
	s.HasCurrent = true
	return succeeded(s, now)
}

type cityDeleted struct{ id cities.ID }

func (cityDeleted) name() string { return "city/deleted" }

func (t cityDeleted) apply(s Snapshot, now time.Time) Snapshot {
	next := make([]cities.City, 0, len(s.Cities))
	for _, c := range s.Cities {
		if c.ID != t.id {
			next = append(next, c)
		}
	}
	s.Cities = next
	if s.HasCurrent && s.Current.ID == t.id {
		s.Current = cities.City{}
		s.HasCurrent = false
	}
	return succeeded(s, now)
}

type rejected struct {
	message string
	err     error
}

func (rejected) name() string { return "rejected" }

func (t rejected) apply(s Snapshot, now time.Time) Snapshot {
	s.IsLoading = false
	s.Error = t.message
	s.Err = t.err
	s.LastUpdated = now
	s.ConsecutiveFailures++
	return s
}

func succeeded(s Snapshot, now time.Time) Snapshot {
	s.IsLoading = false
	s.Error = ""
	s.Err = nil
	s.LastUpdated = now
	s.ConsecutiveFailures = 0
	return s
}

// dedupe keeps the first occurrence of every id.
func dedupe(in []cities.City) []cities.City {
	out := make([]cities.City, 0, len(in))
	seen := make(map[cities.ID]struct{}, len(in))
	for _, c := range in {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
