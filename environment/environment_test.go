package environment

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("PATH"))
	assert.NoError(t, ValidateKey("lower_case"))

	assert.ErrorIs(t, ValidateKey(""), ErrInvalidKey)
	assert.ErrorIs(t, ValidateKey("A=B"), ErrInvalidKey)
	assert.ErrorIs(t, ValidateKey("A\x00B"), ErrInvalidKey)
}

func TestValidateValue(t *testing.T) {
	assert.NoError(t, ValidateValue(""))
	assert.NoError(t, ValidateValue("a=b=c"))

	assert.ErrorIs(t, ValidateValue("a\x00b"), ErrInvalidValue)
}

func TestParseEnvironSkipsHiddenEntries(t *testing.T) {
	vars := parseEnviron([]string{
		"=C:=C:\\Users",
		"=::=::\\",
		"HOME=/root",
		"EMPTY=",
		"WITH_EQUALS=a=b",
		"NO_SEPARATOR",
	})

	assert.Equal(t, map[string]string{
		"HOME":        "/root",
		"EMPTY":       "",
		"WITH_EQUALS": "a=b",
	}, vars)
}

func TestCurrentReflectsProcessEnvironment(t *testing.T) {
	t.Setenv("SUBPROCESS_ENVIRONMENT_TEST", "present")

	assert.Equal(t, "present", Current()["SUBPROCESS_ENVIRONMENT_TEST"])
}

func TestBuilderDoesNotTouchProcessEnvironment(t *testing.T) {
	t.Setenv("SUBPROCESS_BUILDER_TEST", "original")

	b := NewBuilder()
	value, ok := b.Get("SUBPROCESS_BUILDER_TEST")
	require.True(t, ok)
	assert.Equal(t, "original", value)

	require.NoError(t, b.Set("SUBPROCESS_BUILDER_TEST", "changed"))
	b.Remove("HOME")

	assert.Equal(t, "original", os.Getenv("SUBPROCESS_BUILDER_TEST"))
	assert.False(t, b.Has("HOME"))
}

func TestBuilderRejectsInvalidEntries(t *testing.T) {
	b := NewEmptyBuilder()

	assert.ErrorIs(t, b.Set("A=B", "x"), ErrInvalidKey)
	assert.ErrorIs(t, b.Set("A", "x\x00"), ErrInvalidValue)
	assert.Equal(t, 0, b.Len())

	_, err := BuilderFromMap(map[string]string{"BAD=KEY": "1"})
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestBuilderEnviron(t *testing.T) {
	b, err := BuilderFromMap(map[string]string{"B": "2", "A": "1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"A=1", "B=2"}, b.Environ())

	b.Clear()
	assert.Empty(t, b.Environ())
}

func TestBuilderCaseInsensitiveKeys(t *testing.T) {
	b := NewEmptyBuilder()
	b.caseInsensitive = true

	require.NoError(t, b.Set("Path", "/a"))
	require.NoError(t, b.Set("PATH", "/b"))

	assert.Equal(t, 1, b.Len())
	value, ok := b.Get("path")
	assert.True(t, ok)
	assert.Equal(t, "/b", value)
	assert.Equal(t, map[string]string{"PATH": "/b"}, b.Map())

	b.Remove("pAtH")
	assert.False(t, b.Has("PATH"))
}

func TestBuilderCaseSensitiveKeys(t *testing.T) {
	b := NewEmptyBuilder()
	b.caseInsensitive = false

	require.NoError(t, b.Set("Path", "/a"))
	require.NoError(t, b.Set("PATH", "/b"))

	assert.Equal(t, 2, b.Len())
	assert.False(t, b.Has("path"))
}
