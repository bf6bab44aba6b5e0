// Package suggest cleans raw model completions into continuations that can be
// shown inline after the user's text and appended to it on acceptance.
package suggest

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// preamblePattern matches conversational filler a chat model puts in front
// of the actual continuation, up through the first colon.
var preamblePattern = regexp.MustCompile(`(?i)^(Here is|Here's|Here’s|This is|Certainly!|Sure!|Okay,).*?[:：]`)

// sentencePattern matches a maximal run of text ending in terminal punctuation.
var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)

// joinPunctuation are the input endings that always get a space before the continuation.
const joinPunctuation = ".!?:,;"

// Process returns the cleaned continuation of input given the model's raw
// output. The result either starts with the separator needed to append it
// directly to input, or is empty when nothing usable remains.
func Process(input, raw string) string {
	s := strings.TrimSpace(raw)
	s = stripPreamble(s)
	s = removeOverlap(input, s)
	s = joinSpacing(input, s)
	s = keepSentences(s)
	s = collapseSpaces(s)
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

func stripPreamble(s string) string {
	if loc := preamblePattern.FindStringIndex(s); loc != nil {
		s = strings.TrimSpace(s[loc[1]:])
	}
	return s
}

// removeOverlap drops the longest run of leading suggestion words that
// repeats the trailing words of input.
func removeOverlap(input, suggestion string) string {
	inputWords := strings.Fields(input)
	words := strings.Fields(suggestion)
	maxK := min(len(inputWords), len(words))
	for k := maxK; k > 0; k-- {
		if equalWords(words[:k], inputWords[len(inputWords)-k:]) {
			return strings.Join(words[k:], " ")
		}
	}
	return suggestion
}

func equalWords(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// joinSpacing makes sure exactly one space separates input from the
// continuation when they would otherwise run together or double up.
func joinSpacing(input, suggestion string) string {
	if input == "" || suggestion == "" {
		return suggestion
	}
	last, _ := utf8.DecodeLastRuneInString(input)
	first, _ := utf8.DecodeRuneInString(suggestion)
	inputSpace := unicode.IsSpace(last)
	suggestionSpace := first == ' '

	switch {
	case strings.ContainsRune(joinPunctuation, last) && !suggestionSpace:
		return " " + suggestion
	case !inputSpace && !suggestionSpace:
		return " " + suggestion
	case inputSpace && suggestionSpace:
		return suggestion[1:]
	}
	return suggestion
}

// keepSentences rebuilds s from its complete sentences followed by whatever
// dangling clause trails the last one.
func keepSentences(s string) string {
	locs := sentencePattern.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return s
	}

	var b strings.Builder
	// Anything before the first match can only be punctuation.
	b.WriteString(s[:locs[0][0]])
	for i, loc := range locs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s[loc[0]:loc[1]])
	}
	if rest := strings.TrimSpace(s[locs[len(locs)-1][1]:]); rest != "" {
		b.WriteByte(' ')
		b.WriteString(rest)
	}
	return b.String()
}

// collapseSpaces replaces each run of whitespace with a single space.
func collapseSpaces(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !prevSpace {
				buf.WriteByte(' ')
			}
			prevSpace = true
		} else {
			buf.WriteRune(r)
			prevSpace = false
		}
	}
	return buf.String()
}
