package textdiff

import (
	"regexp"
	"strings"
)

var lineJunkPattern = regexp.MustCompile(`^\s*#?\s*$`)

// IsLineJunk reports whether line is visually unimportant: blank, or
// whitespace around at most a single "#".
func IsLineJunk(line string) bool {
	return lineJunkPattern.MatchString(line)
}

// LineJunkPattern builds a line-junk predicate from an arbitrary pattern,
// for callers whose notion of an ignorable line differs from IsLineJunk.
func LineJunkPattern(pat *regexp.Regexp) func(string) bool {
	return pat.MatchString
}

// IsCharacterJunk reports whether ch is a space or a tab. Treating runs of
// blanks as junk stops intraline syncs from anchoring on indentation.
func IsCharacterJunk(ch rune) bool {
	return ch == ' ' || ch == '\t'
}

// CharacterJunkSet builds a character-junk predicate over an explicit set of
// runes.
func CharacterJunkSet(set string) func(rune) bool {
	return func(ch rune) bool {
		return strings.ContainsRune(set, ch)
	}
}
