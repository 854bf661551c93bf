// Package normal contains the string cleanup applied to every value that
// ends up in a record.
package normal

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	wsPattern          = regexp.MustCompile(`\s+`)
	newlinePattern     = regexp.MustCompile(` *\n *`)
	inspirePattern     = regexp.MustCompile(`\s*\[INSPIRE\]`)
	affArtifactPattern = regexp.MustCompile(`, *\n *`)
	nonDigitPattern    = regexp.MustCompile(`\D`)
)

// Pipeline applies normalizers in order.
type Pipeline struct {
	Normalizer []Normalizer
}

func (p *Pipeline) Normalize(s string) string {
	for _, n := range p.Normalizer {
		s = n.Normalize(s)
	}
	return s
}

type Normalizer interface {
	Normalize(string) string
}

// NormalizerFunc adapts a plain function.
type NormalizerFunc func(string) string

func (f NormalizerFunc) Normalize(s string) string { return f(s) }

var (
	// Reference cleans a flattened citation string.
	Reference = &Pipeline{Normalizer: []Normalizer{
		NormalizerFunc(JoinLines),
		NormalizerFunc(StripInspire),
		NormalizerFunc(Clean),
	}}
	// Affiliation cleans a joined affiliation string.
	Affiliation = &Pipeline{Normalizer: []Normalizer{
		NormalizerFunc(StripAffiliationArtifacts),
		NormalizerFunc(StripInspire),
		NormalizerFunc(Clean),
	}}
)

// Clean collapses all whitespace runs into a single space and trims.
func Clean(s string) string {
	return strings.TrimSpace(wsPattern.ReplaceAllString(s, " "))
}

// JoinLines replaces line breaks and the spaces around them with a single
// space.
func JoinLines(s string) string {
	return newlinePattern.ReplaceAllString(s, " ")
}

// StripInspire removes "[INSPIRE]" annotation tokens.
func StripInspire(s string) string {
	return inspirePattern.ReplaceAllString(s, "")
}

// StripAffiliationArtifacts removes the comma-newline leftovers that appear
// when whitespace-only text nodes get joined.
func StripAffiliationArtifacts(s string) string {
	return affArtifactPattern.ReplaceAllString(s, "")
}

// StripHyphens removes all hyphens, e.g. from an ISBN.
func StripHyphens(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "-", "")
}

// Digits keeps only ASCII digits.
func Digits(s string) string {
	return nonDigitPattern.ReplaceAllString(s, "")
}

// ORCID reduces an ORCID URI to the bare identifier, by cutting everything
// up to and including the last slash.
func ORCID(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// StripMarkup returns the text content of an XML or HTML fragment. MathML
// equation sources are dropped, since the TeX variant carries the same
// content in readable form.
func StripMarkup(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return Clean(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return Clean(fragment)
	}
	doc.Find(`equationsource[format="MATHML"]`).Remove()
	return Clean(StripInspire(doc.Text()))
}
