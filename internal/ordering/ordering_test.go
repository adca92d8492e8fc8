package ordering

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestSplitNumericPrefix(t *testing.T) {
	tests := []struct {
		in       string
		wantN    int
		wantRest string
	}{
		{"02-installation", 2, "installation"},
		{"guides/01-setup", 1, "guides/setup"},
		{"01-guides/03-setup", 3, "guides/setup"},
		{"01-guides/setup", 0, "guides/setup"},
		{"10_reference", 10, "reference"},
		{"setup", 0, "setup"},
		{"2024", 0, "2024"},
		{"01-", 1, "01-"},
		{"7_", 7, "7_"},
		{"guides/02-", 2, "guides/02-"},
		{"01-/setup", 0, "01-/setup"},
		{"v2-api", 0, "v2-api"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, rest := SplitNumericPrefix(tt.in)
			require.Equal(t, tt.wantN, n)
			require.Equal(t, tt.wantRest, rest)
		})
	}
}

func TestHasNumericPrefix(t *testing.T) {
	require.True(t, HasNumericPrefix("02-installation"))
	require.True(t, HasNumericPrefix("guides/01-setup"))
	require.True(t, HasNumericPrefix("3_faq"))
	require.False(t, HasNumericPrefix("setup"))
	require.False(t, HasNumericPrefix("01-guides/setup"))
	require.False(t, HasNumericPrefix("404"))
	require.True(t, HasNumericPrefix("01-"))
	require.True(t, HasNumericPrefix("guides/7_"))
	require.False(t, HasNumericPrefix("-01"))
}

func TestSplitNumericPrefixProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	word := gen.RegexMatch(`[a-z][a-z0-9]{0,8}`)

	properties.Property("prefixed leaf round-trips", prop.ForAll(
		func(n int, dir, name string) bool {
			id := fmt.Sprintf("%s/%02d-%s", dir, n, name)
			got, rest := SplitNumericPrefix(id)
			return got == n && rest == dir+"/"+name && HasNumericPrefix(id)
		},
		gen.IntRange(0, 9999), word, word,
	))

	properties.Property("stripped identifiers have no prefixed segment", prop.ForAll(
		func(a, b int, x, y string) bool {
			rest := StripNumericPrefix(fmt.Sprintf("%d-%s/%d_%s", a, x, b, y))
			for _, seg := range strings.Split(rest, "/") {
				if HasNumericPrefix(seg) {
					return false
				}
			}
			return rest == x+"/"+y
		},
		gen.IntRange(0, 99), gen.IntRange(0, 99), word, word,
	))

	properties.TestingRun(t)
}
