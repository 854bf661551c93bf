// Package hep contains the literature record shape produced by the
// converters, loosely following the INSPIRE HEP record layout.
package hep

// Doctype classifies the structural kind of a work.
type Doctype string

const (
	Published       Doctype = "Published"
	Review          Doctype = "Review"
	ConferencePaper Doctype = "ConferencePaper"
	Book            Doctype = "Book"
	BookChapter     Doctype = "BookChapter"
)

// Medium of an ISBN.
const (
	MediumPrint  = "Print"
	MediumEbook  = "ebook"
	RoleEditor   = "Editor"
	SourceName   = "Springer"
	MethodHepkit = "hepkit"
)

type ISBN struct {
	Medium string `json:"medium"`
	Value  string `json:"value"`
}

// PublicationInfo describes where a work appeared. Artid and the page range
// are mutually exclusive.
type PublicationInfo struct {
	JournalTitle  string `json:"journal_title,omitempty"`
	JournalVolume string `json:"journal_volume,omitempty"`
	JournalIssue  string `json:"journal_issue,omitempty"`
	Year          string `json:"year,omitempty"`
	Artid         string `json:"artid,omitempty"`
	PageStart     string `json:"page_start,omitempty"`
	PageEnd       string `json:"page_end,omitempty"`
}

type Affiliation struct {
	Value string `json:"value"`
}

type Author struct {
	GivenNames   []string      `json:"given_names,omitempty"`
	Surname      string        `json:"surname,omitempty"`
	Email        string        `json:"email,omitempty"`
	ORCID        string        `json:"orcid,omitempty"`
	Affiliations []Affiliation `json:"affiliations"`
	Role         string        `json:"role,omitempty"`
}

// Reference is a single bibliography entry, kept as a cleaned raw string.
// Number is the citation label of the publisher, digits only.
type Reference struct {
	Number       string `json:"number,omitempty"`
	RawReference string `json:"raw_reference"`
}

// Record is a literature record.
type Record struct {
	Title                 string            `json:"title,omitempty"`
	Doctype               Doctype           `json:"doctype"`
	DOIs                  []string          `json:"dois,omitempty"`
	ISBNs                 []ISBN            `json:"isbns,omitempty"`
	CopyrightHolder       []string          `json:"copyright_holder,omitempty"`
	CopyrightYear         []string          `json:"copyright_year,omitempty"`
	CopyrightStatement    []string          `json:"copyright_statement,omitempty"`
	Abstract              string            `json:"abstract,omitempty"`
	LicenseURL            string            `json:"license_url,omitempty"`
	PublicationInfo       []PublicationInfo `json:"publication_info"`
	ArxivEprints          []string          `json:"arxiv_eprints,omitempty"`
	FreeKeywords          []string          `json:"free_keywords,omitempty"`
	ClassificationNumbers []string          `json:"classification_numbers,omitempty"`
	DatePublished         string            `json:"date_published,omitempty"`
	Authors               []Author          `json:"authors,omitempty"`
	References            []Reference       `json:"references,omitempty"`
}
