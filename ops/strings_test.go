package ops

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexSkipAgreesWithNaiveSearch(t *testing.T) {
	cases := []struct {
		name          string
		text, pattern string
	}{
		{"empty pattern", "anything", ""},
		{"empty text", "", "abc"},
		{"pattern longer than text", "ab", "abc"},
		{"suffix only", "xxxxxxabc", "abc"},
		{"prefix", "abcxxxx", "abc"},
		{"repeated characters", "aaaaaaab", "aaab"},
		{"repeated miss", "aaaaaaaa", "aab"},
		{"overlapping", "abababac", "ababac"},
		{"multibyte", "grüße aus köln", "köln"},
		{"long pattern", strings.Repeat("x", 400) + "y" + strings.Repeat("x", 300), strings.Repeat("x", 300) + "y"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			table := NewSkipTable(tc.pattern)
			assert.Equal(t, strings.Index(tc.text, tc.pattern), IndexSkip(tc.text, tc.pattern, &table))
		})
	}
}

func TestIndexSkipInsMixedCase(t *testing.T) {
	cases := []struct {
		text, pattern string
	}{
		{"Hello World", "wORLD"},
		{"HELLO", "hello"},
		{"xxhElLoxx", "HeLlO"},
		{"abcABCabc", "cab"},
		{"no match here", "MATCHES"},
		{"aaaaAAAAb", "AAAB"},
	}

	for _, tc := range cases {
		ucase, ok := CaseMap(tc.pattern, true)
		require.True(t, ok)
		lcase, ok := CaseMap(tc.pattern, false)
		require.True(t, ok)

		table := NewSkipTableIns(ucase, lcase)
		want := strings.Index(strings.ToLower(tc.text), strings.ToLower(tc.pattern))
		assert.Equal(t, want, IndexSkipIns(tc.text, ucase, lcase, &table), "%q in %q", tc.pattern, tc.text)
	}
}

func TestSkipTableCapsJumps(t *testing.T) {
	pattern := "a" + strings.Repeat("b", 300) + "c"
	table := NewSkipTable(pattern)

	assert.Equal(t, uint8(255), table['a'])
	assert.Equal(t, uint8(1), table['b'])
	assert.Equal(t, uint8(0), table['c'])
	assert.Equal(t, uint8(0), table['z'])
}

func TestCaseMapRejectsInvalidUTF8(t *testing.T) {
	_, ok := CaseMap("ab\xffcd", true)
	assert.False(t, ok)

	up, ok := CaseMap("Straße", true)
	require.True(t, ok)
	assert.Equal(t, len("Straße"), len(up))
	assert.Equal(t, "STRAßE", up)
}

func TestSubstringNullHandling(t *testing.T) {
	table := NewSkipTable("ab")

	assert.False(t, ContainsString("ab", false, &table, "", true))
	assert.True(t, ContainsString("", true, &table, "", true))
	assert.True(t, ContainsString("", true, &table, "xyz", false))
	assert.True(t, ContainsString("", false, &table, "", false))
	assert.False(t, BeginsWithString("a", false, "", true))
	assert.True(t, EndsWithString("", false, "abc", false))

	assert.True(t, LikeString("", true, "", true))
	assert.False(t, LikeString("*", false, "", true))
	assert.True(t, EqualStringIns("", "", true, "", true))
	assert.False(t, EqualStringIns("A", "a", false, "", true))
}

func TestMatchLike(t *testing.T) {
	cases := []struct {
		text, pattern string
		want          bool
	}{
		{"hello", "hello", true},
		{"hello", "h*o", true},
		{"hello", "h?llo", true},
		{"hello", "h?lo", false},
		{"hello", "*", true},
		{"", "*", true},
		{"", "?", false},
		{"abcbc", "*bc", true},
		{"a*c", `a\*c`, true},
		{"abc", `a\*c`, false},
		{"köln", "k?ln", true},
		{"mississippi", "m*iss*ppi", true},
		{"mississippi", "m*iss*ppx", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, MatchLike(tc.text, tc.pattern), "%q LIKE %q", tc.text, tc.pattern)
	}

	assert.True(t, LikeStringIns("h*o", false, "HELLO", false))
}

func caseForms(t *testing.T, pattern string) (string, string) {
	t.Helper()

	ucase, ok := CaseMap(pattern, true)
	require.True(t, ok)
	lcase, ok := CaseMap(pattern, false)
	require.True(t, ok)
	return ucase, lcase
}

// Bytes of the upper and the lower form of a rune must not combine into a
// third character: Б is D0 91, Ё is D0 81 and ё is D1 91.
func TestCaseFoldComparesWholeRunes(t *testing.T) {
	ucase, lcase := caseForms(t, "ё")

	assert.True(t, EqualCaseFold("ё", ucase, lcase))
	assert.True(t, EqualCaseFold("Ё", ucase, lcase))
	assert.False(t, EqualCaseFold("Б", ucase, lcase))
	assert.False(t, EqualStringIns(ucase, lcase, false, "Б", false))

	table := NewSkipTableIns(ucase, lcase)
	assert.False(t, ContainsStringIns(ucase, lcase, false, &table, "абвБг", false))
	assert.True(t, ContainsStringIns(ucase, lcase, false, &table, "абвЁг", false))
	assert.False(t, BeginsWithStringIns(ucase, lcase, false, "Бx", false))
	assert.False(t, EndsWithStringIns(ucase, lcase, false, "xБ", false))

	assert.False(t, EqualCaseFold("\xd0", "a", "a"), "invalid text")
	assert.False(t, EqualCaseFold("\xff\xfe", "ab", "ab"))
}

func TestIndexSkipInsMultibyte(t *testing.T) {
	cases := []struct {
		text, pattern string
		want          int
	}{
		{"straße KÖLN", "köln", len("straße ")},
		{"ΣΊΣΥΦΟΣ", "σίσυφος", 0},
		{"ΣΊΣΥΦΟ", "σίσυφος", -1},
		{"xxБxxёxx", "Ё", len("xxБxx")},
		{"ǅx", "ǆ", -1},
	}

	for _, tc := range cases {
		ucase, lcase := caseForms(t, tc.pattern)
		table := NewSkipTableIns(ucase, lcase)
		assert.Equal(t, tc.want, IndexSkipIns(tc.text, ucase, lcase, &table), "%q in %q", tc.pattern, tc.text)
	}
}

func TestFoldCaseKeysMatchEqualCaseFold(t *testing.T) {
	words := []string{"ё", "Ё", "Б", "б", "Σ", "σ", "ς", "ǅ", "Ǆ", "ǆ", "Straße", "STRAßE", "k", "K", "ab", "AB", "aB"}

	for _, pattern := range words {
		ucase, lcase := caseForms(t, pattern)
		for _, text := range words {
			if EqualCaseFold(text, ucase, lcase) {
				assert.Equal(t, FoldCase(pattern), FoldCase(text), "%q ==[c] %q", text, pattern)
			}
		}
	}

	assert.Equal(t, "ab\xffcd", FoldCase("ab\xffcd"))
}
