package environment

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

var (
	ErrInvalidKey   = errors.New("invalid environment variable name")
	ErrInvalidValue = errors.New("invalid environment variable value")
)

// ValidateKey rejects names the OS can't represent in an environment block
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidKey)
	}

	if strings.ContainsRune(key, '=') {
		return fmt.Errorf("%w: %q contains '='", ErrInvalidKey, key)
	}

	if strings.ContainsRune(key, 0) {
		return fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidKey, key)
	}

	return nil
}

func ValidateValue(value string) error {
	if strings.ContainsRune(value, 0) {
		return fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidValue, value)
	}

	return nil
}

// Current returns a snapshot of the environment of the running process.
//
// Entries without a name, or whose name starts with '=' (the per-drive working
// directories Windows keeps in the environment block), are skipped.
func Current() map[string]string {
	return parseEnviron(os.Environ())
}

func parseEnviron(entries []string) map[string]string {
	result := make(map[string]string, len(entries))

	for _, entry := range entries {
		key, value, found := strings.Cut(entry, "=")
		if !found || key == "" || strings.HasPrefix(key, "=") {
			continue
		}

		result[key] = value
	}

	return result
}

// FormatEnviron turns a map into sorted "KEY=VALUE" entries
func FormatEnviron(vars map[string]string) []string {
	entries := make([]string, 0, len(vars))
	for key, value := range vars {
		entries = append(entries, key+"="+value)
	}

	sort.Strings(entries)

	return entries
}
