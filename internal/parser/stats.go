package parser

import (
	"strings"
	"unicode/utf8"
)

// WordsPerMinute is the reading speed used for ReadMinutes.
const WordsPerMinute = 200

// Stats are the document statistics shown next to the editor.
type Stats struct {
	Words       int `json:"words"`
	Chars       int `json:"chars"`
	Bytes       int `json:"bytes"`
	Lines       int `json:"lines"`
	ReadMinutes int `json:"read_minutes"`
}

// ComputeStats counts words, characters (runes), bytes and lines of text.
// Any non-empty text takes at least one minute to read.
func ComputeStats(text string) Stats {
	words := len(strings.Fields(text))
	st := Stats{
		Words: words,
		Chars: utf8.RuneCountInString(text),
		Bytes: len(text),
	}
	if text != "" {
		st.Lines = strings.Count(strings.TrimSuffix(text, "\n"), "\n") + 1
	}
	if words > 0 {
		st.ReadMinutes = (words + WordsPerMinute - 1) / WordsPerMinute
	}
	return st
}
