package catalog

import (
	"bus-schedule-bot/internal/domain"
	"bus-schedule-bot/internal/ports"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk catalog format. JSON files parse as well.
type File struct {
	Routes []domain.Route `yaml:"routes" json:"routes"`
}

// Load and validate a catalog file (YAML or JSON).
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: read %q: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("load catalog: parse %q: %w", path, err)
	}
	if len(f.Routes) == 0 {
		return nil, fmt.Errorf("load catalog: %q has no routes", path)
	}

	return New(f.Routes)
}

// Load the catalog from its persisted copy.
func LoadFromRepository(ctx context.Context, repo ports.RouteRepository) (*Catalog, error) {
	routes, err := repo.ListRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("load catalog: no routes stored")
	}

	return New(routes)
}
