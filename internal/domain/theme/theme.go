// Package theme keeps the editor colour themes a host can switch between.
package theme

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/goccy/go-yaml"
)

var ErrUnknownTheme = errors.New("unknown theme")

// Base themes every custom theme derives from
const (
	BaseLight        = "vs"
	BaseDark         = "vs-dark"
	BaseHighContrast = "hc-black"
)

// Rule is a token colour rule
type Rule struct {
	Token      string `json:"token" yaml:"token"`
	Foreground string `json:"foreground,omitempty" yaml:"foreground,omitempty"`
	Background string `json:"background,omitempty" yaml:"background,omitempty"`
	FontStyle  string `json:"fontStyle,omitempty" yaml:"fontStyle,omitempty"`
}

// Theme is an editor theme definition
type Theme struct {
	ID      string            `json:"id" yaml:"id"`
	Base    string            `json:"base" yaml:"base"`
	Inherit bool              `json:"inherit" yaml:"inherit"`
	Colors  map[string]string `json:"colors,omitempty" yaml:"colors,omitempty"`
	Rules   []Rule            `json:"rules,omitempty" yaml:"rules,omitempty"`
}

func validBase(base string) bool {
	return base == BaseLight || base == BaseDark || base == BaseHighContrast
}

// Registry holds registered themes and the current selection
type Registry struct {
	mu      sync.RWMutex
	themes  map[string]Theme
	current string
}

// NewRegistry creates a registry with the base themes, starting on vs-dark
func NewRegistry() *Registry {
	r := &Registry{themes: make(map[string]Theme), current: BaseDark}
	for _, base := range []string{BaseLight, BaseDark, BaseHighContrast} {
		r.themes[base] = Theme{ID: base, Base: base}
	}
	return r
}

// Register adds or replaces a theme
func (r *Registry) Register(t Theme) error {
	if t.ID == "" {
		return fmt.Errorf("theme id is required")
	}
	if t.Base == "" {
		t.Base = BaseDark
	}
	if !validBase(t.Base) {
		return fmt.Errorf("theme %s: invalid base %q", t.ID, t.Base)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.themes[t.ID] = t
	return nil
}

// LoadYAML registers every theme in a YAML list and returns how many were added.
// Nothing is registered if any entry is invalid.
func (r *Registry) LoadYAML(data []byte) (int, error) {
	var themes []Theme
	if err := yaml.Unmarshal(data, &themes); err != nil {
		return 0, fmt.Errorf("failed to parse themes: %w", err)
	}

	for i := range themes {
		if themes[i].ID == "" {
			return 0, fmt.Errorf("theme %d: id is required", i)
		}
		if themes[i].Base != "" && !validBase(themes[i].Base) {
			return 0, fmt.Errorf("theme %s: invalid base %q", themes[i].ID, themes[i].Base)
		}
	}
	for _, t := range themes {
		if err := r.Register(t); err != nil {
			return 0, err
		}
	}
	return len(themes), nil
}

// Set selects a registered theme
func (r *Registry) Set(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.themes[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTheme, id)
	}
	r.current = id
	return nil
}

// Current returns the selected theme
func (r *Registry) Current() Theme {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.themes[r.current]
}

func (r *Registry) Get(id string) (Theme, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.themes[id]
	return t, ok
}

// List returns all themes sorted by ID
func (r *Registry) List() []Theme {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Theme, 0, len(r.themes))
	for _, t := range r.themes {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}
