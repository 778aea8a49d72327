package analytics

import (
	"fmt"
	"strings"

	"vgpulse/pkg/contracts/domain"
)

// ManufacturerMap is an immutable lookup from platform code to manufacturer.
// Build it once from configuration and pass it to the stages that need it.
type ManufacturerMap struct {
	groups     []domain.ManufacturerGroup
	byPlatform map[string]string
}

// NewManufacturerMap validates groups and copies them. A platform may belong
// to at most one manufacturer.
func NewManufacturerMap(groups []domain.ManufacturerGroup) (*ManufacturerMap, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("at least one manufacturer group is required")
	}

	m := &ManufacturerMap{
		groups:     make([]domain.ManufacturerGroup, 0, len(groups)),
		byPlatform: make(map[string]string),
	}
	seen := make(map[string]bool, len(groups))

	for _, g := range groups {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			return nil, fmt.Errorf("manufacturer name is required")
		}
		if seen[name] {
			return nil, fmt.Errorf("manufacturer %q listed twice", name)
		}
		seen[name] = true

		platforms := make([]string, 0, len(g.Platforms))
		for _, p := range g.Platforms {
			p = strings.TrimSpace(p)
			if p == "" {
				return nil, fmt.Errorf("manufacturer %q has an empty platform code", name)
			}
			if owner, ok := m.byPlatform[p]; ok {
				return nil, fmt.Errorf("platform %q assigned to both %s and %s", p, owner, name)
			}
			m.byPlatform[p] = name
			platforms = append(platforms, p)
		}

		m.groups = append(m.groups, domain.ManufacturerGroup{Name: name, Platforms: platforms})
	}

	return m, nil
}

// MustManufacturerMap is like NewManufacturerMap but panics on error
func MustManufacturerMap(groups []domain.ManufacturerGroup) *ManufacturerMap {
	m, err := NewManufacturerMap(groups)
	if err != nil {
		panic(err)
	}
	return m
}

// Manufacturer returns the owner of a platform code
func (m *ManufacturerMap) Manufacturer(platform string) (string, bool) {
	name, ok := m.byPlatform[platform]
	return name, ok
}

// Names returns manufacturer names in configuration order
func (m *ManufacturerMap) Names() []string {
	names := make([]string, len(m.groups))
	for i, g := range m.groups {
		names[i] = g.Name
	}
	return names
}

// Groups returns a copy of the mapping
func (m *ManufacturerMap) Groups() []domain.ManufacturerGroup {
	out := make([]domain.ManufacturerGroup, len(m.groups))
	for i, g := range m.groups {
		out[i] = domain.ManufacturerGroup{
			Name:      g.Name,
			Platforms: append([]string(nil), g.Platforms...),
		}
	}
	return out
}
