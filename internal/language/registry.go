package language

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
)

// ErrUnsupported is matched by every UnsupportedError
var ErrUnsupported = errors.New("unsupported language")

// UnsupportedError reports a language key missing from the registry.
// Key is the caller's original key.
type UnsupportedError struct {
	Key string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("Unsupported language: %s", e.Key)
}

// Is makes errors.Is(err, ErrUnsupported) hold
func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

// Language maps an editor language key to the judge's language id
type Language struct {
	Key     string
	ID      int
	Name    string
	Version *semver.Version
}

// Registry is an immutable language table. It is safe for concurrent use.
type Registry struct {
	byKey map[string]Language
	keys  []string
}

// NewRegistry builds a registry, rejecting duplicate keys and non-positive ids
func NewRegistry(languages []Language) (*Registry, error) {
	r := &Registry{
		byKey: make(map[string]Language, len(languages)),
		keys:  make([]string, 0, len(languages)),
	}

	for _, lang := range languages {
		if lang.Key == "" {
			return nil, fmt.Errorf("language key is required")
		}
		if lang.ID <= 0 {
			return nil, fmt.Errorf("language %s: id must be positive, got %d", lang.Key, lang.ID)
		}
		if _, exists := r.byKey[lang.Key]; exists {
			return nil, fmt.Errorf("language %s registered twice", lang.Key)
		}
		r.byKey[lang.Key] = lang
		r.keys = append(r.keys, lang.Key)
	}

	sort.Strings(r.keys)
	return r, nil
}

// Resolve returns the judge language id for key
func (r *Registry) Resolve(key string) (int, error) {
	lang, ok := r.byKey[key]
	if !ok {
		return 0, &UnsupportedError{Key: key}
	}
	return lang.ID, nil
}

// Lookup returns the full registry entry for key
func (r *Registry) Lookup(key string) (Language, bool) {
	lang, ok := r.byKey[key]
	return lang, ok
}

// List returns all languages sorted by key
func (r *Registry) List() []Language {
	result := make([]Language, 0, len(r.keys))
	for _, key := range r.keys {
		result = append(result, r.byKey[key])
	}
	return result
}

// Len returns the number of registered languages
func (r *Registry) Len() int {
	return len(r.keys)
}
