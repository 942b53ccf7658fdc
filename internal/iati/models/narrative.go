package models

import (
	"strings"
	"time"
)

// Narrative is one language-tagged block of free text.
type Narrative struct {
	Lang string `json:"lang,omitempty"`
	Text string `json:"text"`
}

// Narratives is an ordered collection of language-tagged texts.
type Narratives []Narrative

// Preferred returns the text for the given language, falling back to the
// first narrative when the language is absent.
func (n Narratives) Preferred(lang string) string {
	for _, nar := range n {
		if strings.EqualFold(nar.Lang, lang) {
			return nar.Text
		}
	}
	if len(n) > 0 {
		return n[0].Text
	}
	return ""
}

// Empty reports whether no narrative carries any text.
func (n Narratives) Empty() bool {
	for _, nar := range n {
		if strings.TrimSpace(nar.Text) != "" {
			return false
		}
	}
	return true
}

// CodeRef is a controlled-vocabulary code together with the vocabulary it is
// valid under. The same code can be valid in one vocabulary and invalid in
// another, so the pair travels together through the whole pipeline.
type CodeRef struct {
	Code       string `json:"code"`
	Vocabulary string `json:"vocabulary,omitempty"`
}

// ISODateFormat is the date layout IATI attributes use.
const ISODateFormat = "2006-01-02"

// ParseISODate parses an IATI iso-date attribute value.
func ParseISODate(s string) (time.Time, error) {
	return time.Parse(ISODateFormat, strings.TrimSpace(s))
}
