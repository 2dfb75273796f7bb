// Package fields holds custom field definitions and the load-time filters that
// may rewrite them before they are shown or validated.
package fields

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	// ErrUnknownField signals a field name with no definition.
	ErrUnknownField = errors.New("fields: unknown field")
	// ErrInvalidChoice signals a value that is not among the field's choices.
	ErrInvalidChoice = errors.New("fields: value is not an allowed choice")
)

// Choice is one selectable option of a field.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field is a custom field definition.
type Field struct {
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	AllowEmpty bool     `json:"allow_empty"`
	Choices    []Choice `json:"choices"`
}

// LoadFilter rewrites a field definition at load time.
type LoadFilter func(ctx context.Context, field Field) (Field, error)

// Registry stores definitions and their load filters.
type Registry struct {
	mu      sync.RWMutex
	fields  map[string]Field
	filters map[string][]LoadFilter
}

func NewRegistry() *Registry {
	return &Registry{
		fields:  make(map[string]Field),
		filters: make(map[string][]LoadFilter),
	}
}

// Define adds or replaces a field definition.
func (r *Registry) Define(field Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fields[field.Name] = field
}

// OnLoad registers filter for the field called name. Filters run in
// registration order.
func (r *Registry) OnLoad(name string, filter LoadFilter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters[name] = append(r.filters[name], filter)
}

// Load returns the definition of name after every load filter ran.
func (r *Registry) Load(ctx context.Context, name string) (Field, error) {
	r.mu.RLock()
	field, ok := r.fields[name]
	filters := slices.Clone(r.filters[name])
	r.mu.RUnlock()
	if !ok {
		return Field{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	field.Choices = slices.Clone(field.Choices)
	for _, filter := range filters {
		var err error
		field, err = filter(ctx, field)
		if err != nil {
			return Field{}, fmt.Errorf("fields: load %q: %w", name, err)
		}
	}
	return field, nil
}

// Validate checks value against the field's choices. An empty value passes
// when the field allows it.
func Validate(field Field, value string) error {
	if value == "" && field.AllowEmpty {
		return nil
	}
	for _, c := range field.Choices {
		if c.Value == value {
			return nil
		}
	}
	return fmt.Errorf("%w: %q for %s", ErrInvalidChoice, value, field.Name)
}
