package environment

import "strings"

// Builder is a private, mutable copy of an environment.
//
// Changes never reach the environment of the running process. When
// CaseInsensitive is set, lookups and removals ignore the case of names,
// while the name used by the most recent Set is the one that is kept.
type Builder struct {
	caseInsensitive bool

	// entries is keyed by the folded name
	entries map[string]entry
}

type entry struct {
	key   string
	value string
}

// NewBuilder returns a builder seeded with the current process environment
func NewBuilder() *Builder {
	b := NewEmptyBuilder()

	for key, value := range Current() {
		b.entries[b.fold(key)] = entry{key: key, value: value}
	}

	return b
}

func NewEmptyBuilder() *Builder {
	return &Builder{
		caseInsensitive: CaseInsensitive,
		entries:         map[string]entry{},
	}
}

// BuilderFromMap returns a builder holding exactly the given variables
func BuilderFromMap(vars map[string]string) (*Builder, error) {
	b := NewEmptyBuilder()

	for key, value := range vars {
		if err := b.Set(key, value); err != nil {
			return nil, err
		}
	}

	return b, nil
}

func (b *Builder) fold(key string) string {
	if b.caseInsensitive {
		return strings.ToUpper(key)
	}

	return key
}

func (b *Builder) Set(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	if err := ValidateValue(value); err != nil {
		return err
	}

	b.entries[b.fold(key)] = entry{key: key, value: value}

	return nil
}

func (b *Builder) Get(key string) (string, bool) {
	e, ok := b.entries[b.fold(key)]
	return e.value, ok
}

func (b *Builder) Has(key string) bool {
	_, ok := b.entries[b.fold(key)]
	return ok
}

func (b *Builder) Remove(key string) {
	delete(b.entries, b.fold(key))
}

func (b *Builder) Clear() {
	b.entries = map[string]entry{}
}

func (b *Builder) Len() int {
	return len(b.entries)
}

// Map returns a copy of the variables, keyed by their original names
func (b *Builder) Map() map[string]string {
	result := make(map[string]string, len(b.entries))
	for _, e := range b.entries {
		result[e.key] = e.value
	}

	return result
}

// Environ returns the variables as sorted "KEY=VALUE" entries
func (b *Builder) Environ() []string {
	return FormatEnviron(b.Map())
}
