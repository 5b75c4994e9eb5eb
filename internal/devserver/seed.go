package devserver

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/five82/worldwise/internal/cities"
)

// LoadSeed reads a json-server style data file: {"cities": [...]}. Every
// record must pass draft validation.
func LoadSeed(path string) ([]cities.City, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var file struct {
		Cities []cities.City `json:"cities"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	for i, c := range file.Cities {
		if err := c.Draft().Validate(); err != nil {
			return nil, fmt.Errorf("parse seed: cities[%d] %q: %w", i, c.Name, err)
		}
	}
	return file.Cities, nil
}
