package convert

import (
	"github.com/miku/hepkit/schema/hep"
	"github.com/miku/hepkit/schema/springer"
)

// doctype looks at article categories first; book and chapter markers are
// checked afterwards and override any category, the last matching check
// wins.
func (c *SpringerConverter) doctype(doc *springer.Document) hep.Doctype {
	doctype := hep.Published
	for _, category := range texts(doc, pathArticleCategory) {
		switch {
		case c.Rules.IsReview(category):
			doctype = hep.Review
		case c.Rules.IsIgnored(category):
		case c.Rules.IsProceedings(category):
			doctype = hep.ConferencePaper
		}
	}
	if doc.Exists(pathBookDOI) {
		doctype = hep.Book
	}
	if doc.Exists(pathChapterDOI) {
		doctype = hep.BookChapter
	}
	return doctype
}
