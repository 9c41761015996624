//go:build !windows

package environment

// CaseInsensitive reports whether variable names compare case-insensitively on this platform
const CaseInsensitive = false
