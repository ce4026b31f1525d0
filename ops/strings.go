package ops

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CaseMap converts s to upper or lower case rune by rune. A rune whose
// mapped form has a different UTF-8 length is kept as is, so the result
// always has the byte length of s. ok is false if s is not valid UTF-8.
func CaseMap(s string, upper bool) (out string, ok bool) {
	if !utf8.ValidString(s) {
		return "", false
	}

	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		m := unicode.ToLower(r)
		if upper {
			m = unicode.ToUpper(r)
		}
		if utf8.RuneLen(m) != utf8.RuneLen(r) {
			m = r
		}
		b.WriteRune(m)
	}
	return b.String(), true
}

// EqualCaseFold compares text against a pattern given in both case forms.
// Every rune of text has to equal the upper or the lower form of the
// pattern rune at the same position. Bytes of the two forms never mix.
func EqualCaseFold(text, ucase, lcase string) bool {
	if len(text) != len(ucase) {
		return false
	}
	for i := 0; i < len(text); {
		c := text[i]
		if c < utf8.RuneSelf {
			if c != ucase[i] && c != lcase[i] {
				return false
			}
			i++
			continue
		}

		tr, w := utf8.DecodeRuneInString(text[i:])
		if tr == utf8.RuneError && w == 1 {
			return false
		}
		ur, uw := utf8.DecodeRuneInString(ucase[i:])
		lr, _ := utf8.DecodeRuneInString(lcase[i:])
		if w != uw || (tr != ur && tr != lr) {
			return false
		}
		i += w
	}
	return true
}

// FoldCase replaces every rune by the smallest rune of its case folding
// orbit. Strings equal under EqualCaseFold fold to the same key. Invalid
// UTF-8 is returned as is.
func FoldCase(s string) string {
	if !utf8.ValidString(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		b.WriteRune(foldRune(r))
	}
	return b.String()
}

func foldRune(r rune) rune {
	least := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if f < least {
			least = f
		}
	}
	return least
}

// SkipTable holds, per byte value, the distance from its last occurrence in
// a pattern to the pattern end. 0 means the byte does not occur and the
// search may skip a whole pattern length.
type SkipTable [256]uint8

func NewSkipTable(pattern string) SkipTable {
	var t SkipTable
	if len(pattern) == 0 {
		return t
	}

	last := len(pattern) - 1
	for i := 0; i < last; i++ {
		t[pattern[i]] = skipDistance(last - i)
	}
	return t
}

// NewSkipTableIns installs both case forms of every pattern byte.
func NewSkipTableIns(ucase, lcase string) SkipTable {
	var t SkipTable
	if len(ucase) == 0 {
		return t
	}

	last := len(ucase) - 1
	for i := 0; i < last; i++ {
		jump := skipDistance(last - i)
		t[ucase[i]] = jump
		t[lcase[i]] = jump
	}
	return t
}

// jumps never exceed 255 even for longer patterns
func skipDistance(d int) uint8 {
	if d < 255 {
		return uint8(d)
	}
	return 255
}

// IndexSkip returns the first offset of pattern in text using the skip
// table of pattern, -1 if absent.
func IndexSkip(text, pattern string, t *SkipTable) int {
	if len(pattern) == 0 {
		return 0
	}

	last := len(pattern) - 1
	lastChar := pattern[last]

	for p := last; p < len(text); {
		c := text[p]
		if c == lastChar && text[p-last:p] == pattern[:last] {
			return p - last
		}

		if skip := t[c]; skip == 0 {
			p += len(pattern)
		} else {
			p += int(skip)
		}
	}
	return -1
}

// IndexSkipIns is IndexSkip matching either case form of the pattern.
func IndexSkipIns(text, ucase, lcase string, t *SkipTable) int {
	if len(ucase) == 0 {
		return 0
	}

	last := len(ucase) - 1
	for p := last; p < len(text); {
		c := text[p]
		if (c == ucase[last] || c == lcase[last]) && EqualCaseFold(text[p-last:p+1], ucase, lcase) {
			return p - last
		}

		if skip := t[c]; skip == 0 {
			p += len(ucase)
		} else {
			p += int(skip)
		}
	}
	return -1
}

// substringNull settles substring conditions on null operands: a null text
// never contains a present pattern, an empty or null pattern is contained
// in everything else.
func substringNull(pattern string, patNull, textNull bool) (res bool, decided bool) {
	if textNull && !patNull {
		return false, true
	}
	if len(pattern) == 0 {
		return true, true
	}
	return false, false
}

func ContainsString(pattern string, patNull bool, t *SkipTable, text string, textNull bool) bool {
	if res, decided := substringNull(pattern, patNull, textNull); decided {
		return res
	}
	return IndexSkip(text, pattern, t) >= 0
}

func ContainsStringIns(ucase, lcase string, patNull bool, t *SkipTable, text string, textNull bool) bool {
	if res, decided := substringNull(ucase, patNull, textNull); decided {
		return res
	}
	return IndexSkipIns(text, ucase, lcase, t) >= 0
}

func BeginsWithString(pattern string, patNull bool, text string, textNull bool) bool {
	if res, decided := substringNull(pattern, patNull, textNull); decided {
		return res
	}
	return strings.HasPrefix(text, pattern)
}

func EndsWithString(pattern string, patNull bool, text string, textNull bool) bool {
	if res, decided := substringNull(pattern, patNull, textNull); decided {
		return res
	}
	return strings.HasSuffix(text, pattern)
}

func BeginsWithStringIns(ucase, lcase string, patNull bool, text string, textNull bool) bool {
	if res, decided := substringNull(ucase, patNull, textNull); decided {
		return res
	}
	return len(text) >= len(ucase) && EqualCaseFold(text[:len(ucase)], ucase, lcase)
}

func EndsWithStringIns(ucase, lcase string, patNull bool, text string, textNull bool) bool {
	if res, decided := substringNull(ucase, patNull, textNull); decided {
		return res
	}
	return len(text) >= len(ucase) && EqualCaseFold(text[len(text)-len(ucase):], ucase, lcase)
}

func EqualStringIns(ucase, lcase string, patNull bool, text string, textNull bool) bool {
	if patNull || textNull {
		return patNull && textNull
	}
	return EqualCaseFold(text, ucase, lcase)
}

func LikeString(pattern string, patNull bool, text string, textNull bool) bool {
	if patNull || textNull {
		return patNull && textNull
	}
	return MatchLike(text, pattern)
}

// LikeStringIns takes the lower case form of the pattern.
func LikeStringIns(lcase string, patNull bool, text string, textNull bool) bool {
	if patNull || textNull {
		return patNull && textNull
	}
	if folded, ok := CaseMap(text, false); ok {
		text = folded
	}
	return MatchLike(text, lcase)
}

// MatchLike matches text against a wildcard pattern where `*` stands for
// any run of characters, `?` for exactly one and `\` escapes the next one.
func MatchLike(text, pattern string) bool {
	t, p := 0, 0
	starP, starT := -1, -1

	for t < len(text) {
		if p < len(pattern) {
			pc, pw := utf8.DecodeRuneInString(pattern[p:])
			switch pc {
			case '*':
				starP, starT = p, t
				p += pw
				continue
			case '?':
				_, tw := utf8.DecodeRuneInString(text[t:])
				t += tw
				p += pw
				continue
			case '\\':
				if p+pw < len(pattern) {
					ec, ew := utf8.DecodeRuneInString(pattern[p+pw:])
					tc, tw := utf8.DecodeRuneInString(text[t:])
					if ec == tc {
						t += tw
						p += pw + ew
						continue
					}
				}
			default:
				tc, tw := utf8.DecodeRuneInString(text[t:])
				if pc == tc {
					t += tw
					p += pw
					continue
				}
			}
		}

		if starP < 0 {
			return false
		}
		// backtrack: let the last star swallow one more character
		_, tw := utf8.DecodeRuneInString(text[starT:])
		starT += tw
		t = starT
		p = starP + 1
	}

	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}
