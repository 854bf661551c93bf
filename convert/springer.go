package convert

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"github.com/miku/hepkit/config"
	"github.com/miku/hepkit/normal"
	"github.com/miku/hepkit/schema/hep"
	"github.com/miku/hepkit/schema/springer"
	"github.com/sirupsen/logrus"
)

var (
	pathArticleCategory  = etree.MustCompilePath("//ArticleInfo/ArticleCategory")
	pathArticleDOI       = etree.MustCompilePath("//ArticleInfo/ArticleDOI")
	pathArticleTitle     = etree.MustCompilePath("//ArticleInfo/ArticleTitle")
	pathArticleCopyright = etree.MustCompilePath("//ArticleCopyright")
	pathChapterDOI       = etree.MustCompilePath("//ChapterInfo/ChapterDOI")
	pathChapterTitle     = etree.MustCompilePath("//ChapterInfo/ChapterTitle")
	pathChapterCopyright = etree.MustCompilePath("//ChapterCopyright")
	pathBookDOI          = etree.MustCompilePath("//BookInfo/BookDOI")
	pathBookTitle        = etree.MustCompilePath("//BookInfo/BookTitle")
	pathBookCopyright    = etree.MustCompilePath("//BookCopyright")
	pathBookPrintISBN    = etree.MustCompilePath("//BookInfo/BookPrintISBN")
	pathBookEISBN        = etree.MustCompilePath("//BookInfo/BookElectronicISBN")
	pathAbstractPara     = etree.MustCompilePath("//Abstract/Para")
	pathLicenseURL       = etree.MustCompilePath("//License//RefSource")
	pathArxiv            = etree.MustCompilePath("//ArticleInfo/ArticleExternalID[@Type='arXiv']")

	pathCopyrightHolder    = etree.MustCompilePath("./CopyrightHolderName")
	pathCopyrightYear      = etree.MustCompilePath("./CopyrightYear")
	pathCopyrightStatement = etree.MustCompilePath("./CopyrightStandardText")
)

// fieldTable lists where identifiers, titles and rights live for a given
// document type.
type fieldTable struct {
	dois      []etree.Path
	titles    []etree.Path
	copyright []etree.Path
	isbns     bool
}

var (
	bookFields = &fieldTable{
		dois:      []etree.Path{pathBookDOI},
		titles:    []etree.Path{pathBookTitle},
		copyright: []etree.Path{pathBookCopyright},
		isbns:     true,
	}
	articleFields = &fieldTable{
		dois:      []etree.Path{pathArticleDOI, pathChapterDOI},
		titles:    []etree.Path{pathArticleTitle, pathChapterTitle},
		copyright: []etree.Path{pathArticleCopyright, pathChapterCopyright},
	}
	fieldTables = map[hep.Doctype]*fieldTable{
		hep.Published:       articleFields,
		hep.Review:          articleFields,
		hep.ConferencePaper: articleFields,
		hep.BookChapter:     articleFields,
		hep.Book:            bookFields,
	}
)

func fieldsFor(doctype hep.Doctype) *fieldTable {
	if t, ok := fieldTables[doctype]; ok {
		return t
	}
	return articleFields
}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

// SpringerConverter turns Springer publisher documents into HEP records.
// It keeps no state between calls and can be used from multiple
// goroutines.
type SpringerConverter struct {
	Rules  *config.Rules
	Logger logrus.FieldLogger
}

// NewSpringerConverter sets up a converter; nil arguments select the
// default rules and a silent logger.
func NewSpringerConverter(rules *config.Rules, logger logrus.FieldLogger) *SpringerConverter {
	if rules == nil {
		rules = config.DefaultRules()
	}
	if logger == nil {
		logger = discard
	}
	return &SpringerConverter{Rules: rules, Logger: logger}
}

var defaultConverter = NewSpringerConverter(nil, nil)

// SpringerDocumentToRecord converts a document with the default rules.
func SpringerDocumentToRecord(doc *springer.Document) (*hep.Record, error) {
	return defaultConverter.Convert(doc)
}

// ConvertBytes parses and converts a single document. Documents that cannot
// be parsed are reported as Skip errors.
func (c *SpringerConverter) ConvertBytes(p []byte) (*hep.Record, error) {
	doc, err := springer.ParseBytes(p)
	if err != nil {
		return nil, Skip{err: err}
	}
	return c.Convert(doc)
}

// Convert assembles a record. Missing data leads to empty fields, never to
// an error.
func (c *SpringerConverter) Convert(doc *springer.Document) (*hep.Record, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	if doc.Root() == nil {
		return nil, ErrSkipNoRoot
	}
	var rec hep.Record
	rec.Doctype = c.doctype(doc)
	fields := fieldsFor(rec.Doctype)
	rec.DOIs = texts(doc, fields.dois...)
	if fields.isbns {
		rec.ISBNs = isbns(doc)
	}
	if e := doc.First(fields.titles...); e != nil {
		rec.Title = normal.StripMarkup(springer.Markup(e))
	}
	for _, e := range doc.Select(fields.copyright...) {
		rec.CopyrightHolder = append(rec.CopyrightHolder, childTexts(e, pathCopyrightHolder)...)
		rec.CopyrightYear = append(rec.CopyrightYear, childTexts(e, pathCopyrightYear)...)
		rec.CopyrightStatement = append(rec.CopyrightStatement, childTexts(e, pathCopyrightStatement)...)
	}
	rec.Abstract = abstract(doc)
	rec.LicenseURL = text(doc, pathLicenseURL)
	rec.PublicationInfo = c.publicationInfo(doc)
	rec.Authors = c.authors(doc)
	rec.ArxivEprints = texts(doc, pathArxiv)
	rec.FreeKeywords, rec.ClassificationNumbers = c.keywords(doc)
	rec.DatePublished = publicationDate(doc)
	rec.References = references(doc)
	return &rec, nil
}

// RecordID derives a stable identifier from the first DOI, or from the
// given fallback, e.g. a file name.
func RecordID(rec *hep.Record, fallback string) string {
	key := fallback
	if len(rec.DOIs) > 0 {
		key = rec.DOIs[0]
	}
	return fmt.Sprintf("springer-%s", hashString(key))
}

func isbns(doc *springer.Document) (result []hep.ISBN) {
	for _, v := range doc.Texts(pathBookPrintISBN) {
		result = append(result, hep.ISBN{Medium: hep.MediumPrint, Value: normal.StripHyphens(v)})
	}
	for _, v := range doc.Texts(pathBookEISBN) {
		result = append(result, hep.ISBN{Medium: hep.MediumEbook, Value: normal.StripHyphens(v)})
	}
	return result
}

// abstract joins the paragraphs of the first abstract; further abstracts
// are usually translations.
func abstract(doc *springer.Document) string {
	var (
		parent *etree.Element
		paras  []string
	)
	for _, e := range doc.Select(pathAbstractPara) {
		if parent == nil {
			parent = e.Parent()
		}
		if e.Parent() != parent {
			continue
		}
		if s := normal.StripMarkup(springer.Markup(e)); s != "" {
			paras = append(paras, s)
		}
	}
	return strings.Join(paras, " ")
}

// texts returns the cleaned, non-empty direct texts of all matches.
func texts(doc *springer.Document, paths ...etree.Path) []string {
	var result []string
	for _, v := range doc.Texts(paths...) {
		if s := normal.Clean(v); s != "" {
			result = append(result, s)
		}
	}
	return result
}

// text returns the first cleaned direct text of all matches.
func text(doc *springer.Document, paths ...etree.Path) string {
	if vs := texts(doc, paths...); len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// childTexts works like texts, relative to an element.
func childTexts(e *etree.Element, p etree.Path) []string {
	var result []string
	for _, c := range e.FindElementsPath(p) {
		if s := normal.Clean(springer.DirectText(c)); s != "" {
			result = append(result, s)
		}
	}
	return result
}

func childText(e *etree.Element, p etree.Path) string {
	if vs := childTexts(e, p); len(vs) > 0 {
		return vs[0]
	}
	return ""
}
