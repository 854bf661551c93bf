// Package config holds run configuration and the classification tables
// used during conversion.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"github.com/adrg/xdg"
	"github.com/miku/hepkit"
	"gopkg.in/yaml.v3"
)

// Config for a conversion run, populated from flags.
type Config struct {
	// CacheDir is where fetched and unpacked packages are kept.
	CacheDir string
	// RulesFile is an optional YAML file overriding the default Rules.
	RulesFile string
	// Workers is the number of parallel conversions.
	Workers int
	// MaxRetries for fetching remote packages.
	MaxRetries int
	// Timeout for fetching remote packages.
	Timeout time.Duration
	// Verbose enables informational logging, Debug adds diagnostics.
	Verbose bool
	Debug   bool
	// LogJSON switches log output to JSON.
	LogJSON bool
}

// DefaultRulesFile is looked up when no rules file is given explicitly.
var DefaultRulesFile = filepath.Join(xdg.ConfigHome, hepkit.AppName, "rules.yaml")

// Rules are the lookup tables that decide document types, keyword routing
// and secondary publication notes.
type Rules struct {
	// ReviewCategories mark a review article.
	ReviewCategories []string `yaml:"review_categories"`
	// IgnoredCategories have no effect on the document type.
	IgnoredCategories []string `yaml:"ignored_categories"`
	// ProceedingsPattern marks a conference paper.
	ProceedingsPattern string `yaml:"proceedings_pattern"`
	// KeywordHeadings route values into free keywords.
	KeywordHeadings []string `yaml:"keyword_headings"`
	// ClassificationHeadings route values into classification numbers.
	ClassificationHeadings []string `yaml:"classification_headings"`
	// SecondaryNotePatterns mark an article note describing another
	// publication of the same work.
	SecondaryNotePatterns []string `yaml:"secondary_note_patterns"`

	proceedings *regexp.Regexp
	secondary   []*regexp.Regexp
}

// DefaultRules returns the built-in tables.
func DefaultRules() *Rules {
	r := &Rules{
		ReviewCategories:       []string{"Review", "Review Article", "Invited Review"},
		IgnoredCategories:      []string{"Erratum", "Addendum"},
		ProceedingsPattern:     `^Proceedings of`,
		KeywordHeadings:        []string{"Keywords"},
		ClassificationHeadings: []string{"PACS Nos", "PACS No.", "PACS NOs", "PACS No"},
		SecondaryNotePatterns:  []string{`Original.*published in`, `Translated from`},
	}
	if err := r.compile(); err != nil {
		panic(err)
	}
	return r
}

// LoadRules reads a YAML file; fields not set in the file keep their
// default value.
func LoadRules(filename string) (*Rules, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseRules(b)
}

// ParseRules parses YAML rules on top of the defaults.
func ParseRules(b []byte) (*Rules, error) {
	r := DefaultRules()
	if err := yaml.Unmarshal(b, r); err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	if err := r.compile(); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadRulesOrDefault loads the given file, or the default rules file if it
// exists, or falls back to the built-in rules.
func LoadRulesOrDefault(filename string) (*Rules, error) {
	if filename != "" {
		return LoadRules(filename)
	}
	r, err := LoadRules(DefaultRulesFile)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultRules(), nil
	}
	return r, err
}

func (r *Rules) compile() error {
	re, err := regexp.Compile(r.ProceedingsPattern)
	if err != nil {
		return fmt.Errorf("rules: proceedings pattern: %w", err)
	}
	r.proceedings = re
	r.secondary = r.secondary[:0]
	for _, p := range r.SecondaryNotePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return fmt.Errorf("rules: secondary note pattern: %w", err)
		}
		r.secondary = append(r.secondary, re)
	}
	return nil
}

func (r *Rules) IsReview(category string) bool {
	return slices.Contains(r.ReviewCategories, category)
}

func (r *Rules) IsIgnored(category string) bool {
	return slices.Contains(r.IgnoredCategories, category)
}

func (r *Rules) IsProceedings(category string) bool {
	return r.proceedings.MatchString(category)
}

func (r *Rules) IsKeywordHeading(heading string) bool {
	return slices.Contains(r.KeywordHeadings, heading)
}

func (r *Rules) IsClassificationHeading(heading string) bool {
	return slices.Contains(r.ClassificationHeadings, heading)
}

// IsSecondaryNote reports whether a paragraph describes another
// publication, e.g. the original of a translated article.
func (r *Rules) IsSecondaryNote(para string) bool {
	for _, re := range r.secondary {
		if re.MatchString(para) {
			return true
		}
	}
	return false
}
