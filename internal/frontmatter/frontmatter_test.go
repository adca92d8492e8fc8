package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\nkey: value\n---\n# Title\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("key: value\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	_, _, had, err := Split([]byte("---\nkey: value\n# Title\n"))
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
	require.True(t, errors.Is(err, ErrParse))
}

func TestSplit_CRLF_SplitsFrontmatterAndBody(t *testing.T) {
	fm, body, had, err := Split([]byte("---\r\nkey: value\r\n---\r\n# Title\r\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("key: value\r\n"), fm)
	require.Equal(t, []byte("# Title\r\n"), body)
}

func TestSplit_EmptyFrontmatterBlock_SplitsAsHadWithEmptyFrontmatter(t *testing.T) {
	fm, body, had, err := Split([]byte("---\n---\nbody\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, []byte("body\n"), body)
}

func TestSplit_ClosingDelimiterAtEOF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\ntitle: x\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: x\n"), fm)
	require.Empty(t, body)
}

func TestParseYAML_ValidYAML_ReturnsFields(t *testing.T) {
	fields, err := ParseYAML([]byte("title: Hello\nnavigation:\n  priority: 20\n  hidden: true\n"))
	require.NoError(t, err)

	title, ok := fields.String("title")
	require.True(t, ok)
	require.Equal(t, "Hello", title)

	prio, ok := fields.Int("navigation.priority")
	require.True(t, ok)
	require.Equal(t, 20, prio)

	hidden, ok := fields.Bool("navigation.hidden")
	require.True(t, ok)
	require.True(t, hidden)
}

func TestParseYAML_Empty_ReturnsEmptyFields(t *testing.T) {
	fields, err := ParseYAML(nil)
	require.NoError(t, err)
	require.Empty(t, fields)
}

func TestParseYAML_InvalidYAML_ReturnsParseError(t *testing.T) {
	_, err := ParseYAML([]byte("title: [unterminated\n"))
	require.ErrorIs(t, err, ErrParse)
}

func TestFields_SetCreatesNestedMaps(t *testing.T) {
	f := Fields{"navigation": "flat"}
	f.Set("navigation.label", "Start")

	label, ok := f.String("navigation.label")
	require.True(t, ok)
	require.Equal(t, "Start", label)
	require.False(t, f.Has("navigation.group"))
}
