package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// MatchResult identifies which phrase matched a line and the text it matched
type MatchResult struct {
	Index int    // Position of the phrase in the lexicon
	Text  string // Full text matched by the phrase
}

// Matcher tests a line against every lexicon phrase with a single regexp.
// Each phrase sits in its own capturing group of an ordered alternation, so
// the participating group tells which phrase won. RE2 alternation is
// leftmost-first, which makes lexicon order the tie-break priority.
type Matcher struct {
	phrases []Phrase
	re      *regexp.Regexp
	groups  []int // capture group number of each phrase
}

// Compile builds the compound matcher for the given lexicon
func Compile(phrases []Phrase) (*Matcher, error) {
	if len(phrases) == 0 {
		return nil, ErrEmptyLexicon
	}

	var b strings.Builder
	b.WriteString(`^(?:`)

	groups := make([]int, len(phrases))
	next := 1
	for i, p := range phrases {
		// Compile alone first so a bad phrase is reported by name, and to
		// learn how many groups it brings along.
		sub, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPattern, p.Name, err)
		}
		if i > 0 {
			b.WriteString(`|`)
		}
		b.WriteString(`(`)
		b.WriteString(p.Pattern)
		b.WriteString(`)`)

		groups[i] = next
		next += 1 + sub.NumSubexp()
	}
	b.WriteString(`)`)

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}

	return &Matcher{
		phrases: append([]Phrase(nil), phrases...),
		re:      re,
		groups:  groups,
	}, nil
}

// Match runs the compound pattern against the line's content after its
// indentation. Returns false if no phrase matches.
func (m *Matcher) Match(line string) (MatchResult, bool) {
	content := strings.TrimLeft(line, " \t")
	loc := m.re.FindStringSubmatchIndex(content)
	if loc == nil {
		return MatchResult{}, false
	}

	for i, g := range m.groups {
		start, end := loc[2*g], loc[2*g+1]
		if start < 0 {
			continue
		}
		return MatchResult{Index: i, Text: content[start:end]}, true
	}
	return MatchResult{}, false
}

// Phrase returns the lexicon entry at index i
func (m *Matcher) Phrase(i int) Phrase {
	return m.phrases[i]
}

// Len returns the number of phrases in the lexicon
func (m *Matcher) Len() int {
	return len(m.phrases)
}

// String returns the compound pattern source
func (m *Matcher) String() string {
	return m.re.String()
}
