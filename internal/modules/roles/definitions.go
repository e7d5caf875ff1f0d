package roles

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

type Role struct {
	Title string `yaml:"title"`
	ID    string `yaml:"id"`
	Emoji string `yaml:"emoji"`
}

// UnmarshalJSON accepts the role id as a number or a string.
func (r *Role) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title string      `json:"title"`
		ID    json.Number `json:"id"`
		Emoji string      `json:"emoji"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Role{Title: raw.Title, ID: raw.ID.String(), Emoji: raw.Emoji}
	return nil
}

type Category struct {
	Topic string `yaml:"topic" json:"topic"`
	Body  string `yaml:"body" json:"body"`
	Roles []Role `yaml:"roles" json:"roles"`
}

// Content is the text posted above the buttons.
func (c Category) Content() string {
	return c.Topic + c.Body
}

// LoadFile reads the role categories keyed by reference. The file is JSON;
// anything not starting with '{' is read as YAML.
func LoadFile(path string) (map[string]Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (map[string]Category, error) {
	var categories map[string]Category
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		if err := json.Unmarshal(data, &categories); err != nil {
			return nil, fmt.Errorf("parse role categories: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("parse role categories: %w", err)
	}
	for ref, category := range categories {
		for i, role := range category.Roles {
			if role.ID == "" {
				return nil, fmt.Errorf("category %q role %d has no id", ref, i)
			}
			if role.Title == "" {
				return nil, fmt.Errorf("category %q role %s has no title", ref, role.ID)
			}
		}
	}
	if categories == nil {
		categories = make(map[string]Category)
	}
	return categories, nil
}

// Registry holds the current role categories. Reload swaps the whole set, so
// readers never see a half-loaded file.
type Registry struct {
	path       string
	mu         sync.RWMutex
	categories map[string]Category
}

func NewRegistry(path string) (*Registry, error) {
	r := &Registry{path: path}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// EmptyRegistry starts with no categories; Reload fills it from path.
func EmptyRegistry(path string) *Registry {
	return &Registry{path: path, categories: make(map[string]Category)}
}

// Reload keeps the previous categories when the file cannot be read.
func (r *Registry) Reload() error {
	categories, err := LoadFile(r.path)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.categories = categories
	r.mu.Unlock()
	return nil
}

func (r *Registry) Lookup(reference string) (Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	category, ok := r.categories[reference]
	return category, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.categories)
}
