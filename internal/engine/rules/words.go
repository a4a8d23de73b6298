package rules

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Bound says which edges of a match must fall on a word boundary.
type Bound int

const (
	Anywhere  Bound = iota // no boundary required
	WordStart              // boundary before the match
	Word                   // boundary on both sides
)

// nonWord matches one character that is not a word character. Used to guard
// single-match patterns where \b would only see ASCII.
const nonWord = `[^\p{L}\p{N}_]`

// IsWordRune reports whether r is a word character: a letter, a number or an
// underscore, in any script.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// atBoundary reports whether byte offset i of s sits between a word character
// and a non-word character (or the start or end of s).
func atBoundary(s string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		before = IsWordRune(r)
	}
	if i < len(s) {
		r, _ := utf8.DecodeRuneInString(s[i:])
		after = IsWordRune(r)
	}
	return before != after
}

func (b Bound) accepts(s string, start, end int) bool {
	switch b {
	case WordStart:
		return atBoundary(s, start)
	case Word:
		return atBoundary(s, start) && atBoundary(s, end)
	default:
		return true
	}
}

// FindBounded returns the submatch indices of successive non-overlapping
// matches of re in s whose edges satisfy b. A rejected candidate restarts the
// search one rune past its start, so a valid match overlapping it is still
// found. n < 0 returns all matches.
func FindBounded(re *regexp.Regexp, s string, b Bound, n int) [][]int {
	var out [][]int
	for pos := 0; pos < len(s) && (n < 0 || len(out) < n); {
		loc := re.FindStringSubmatchIndex(s[pos:])
		if loc == nil {
			break
		}
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += pos
			}
		}
		start, end := loc[0], loc[1]
		if end > start && b.accepts(s, start, end) {
			out = append(out, loc)
			pos = end
			continue
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		pos = start + max(size, 1)
	}
	return out
}

// FindAllBounded returns the text of every match FindBounded accepts.
func FindAllBounded(re *regexp.Regexp, s string, b Bound) []string {
	locs := FindBounded(re, s, b, -1)
	if locs == nil {
		return nil
	}
	out := make([]string, len(locs))
	for i, loc := range locs {
		out[i] = s[loc[0]:loc[1]]
	}
	return out
}

// ReplaceBounded replaces every match FindBounded accepts with repl, taken
// literally.
func ReplaceBounded(re *regexp.Regexp, s, repl string, b Bound) string {
	if b == Anywhere {
		return re.ReplaceAllLiteralString(s, repl)
	}
	locs := FindBounded(re, s, b, -1)
	if len(locs) == 0 {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	last := 0
	for _, loc := range locs {
		sb.WriteString(s[last:loc[0]])
		sb.WriteString(repl)
		last = loc[1]
	}
	sb.WriteString(s[last:])
	return sb.String()
}

// guardWords compiles expr so it only matches between non-word characters.
// flags (such as "(?i)") apply to the whole pattern. Capture group numbering
// of expr is unchanged; match offsets include the guard characters.
func guardWords(flags, expr string) *regexp.Regexp {
	return regexp.MustCompile(flags + `(?:^|` + nonWord + `)(?:` + expr + `)(?:` + nonWord + `|$)`)
}
