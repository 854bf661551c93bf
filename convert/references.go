package convert

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/miku/hepkit/normal"
	"github.com/miku/hepkit/schema/hep"
	"github.com/miku/hepkit/schema/springer"
)

var (
	pathCitation        = etree.MustCompilePath("//Bibliography/Citation")
	pathCitationNumber  = etree.MustCompilePath("./CitationNumber")
	pathBibUnstructured = etree.MustCompilePath("./BibUnstructured")
	pathBibArticle      = etree.MustCompilePath("./BibArticle")
	pathBibBook         = etree.MustCompilePath("./BibBook")
	pathBibChapter      = etree.MustCompilePath("./BibChapter")
	pathCitationDOI     = etree.MustCompilePath("./BibArticle/Occurrence[@Type='DOI']/Handle")
)

// references keeps the unstructured citation string of each bibliography
// entry, with a DOI appended, if the publisher supplied one for a journal
// article. Every citation yields a reference, even if its text is empty.
func references(doc *springer.Document) []hep.Reference {
	var refs []hep.Reference
	for _, e := range doc.Select(pathCitation) {
		ref := hep.Reference{
			Number: normal.Digits(childText(e, pathCitationNumber)),
		}
		raw := normal.Reference.Normalize(springer.FlatText(e.FindElementPath(pathBibUnstructured)))
		if raw == "" {
			raw = normal.Reference.Normalize(strings.Join(structuredText(e), " "))
		}
		if doi := childText(e, pathCitationDOI); doi != "" {
			if raw == "" {
				raw = fmt.Sprintf("DOI: %s", doi)
			} else {
				raw = fmt.Sprintf("%s; DOI: %s", raw, doi)
			}
		}
		ref.RawReference = raw
		refs = append(refs, ref)
	}
	return refs
}

// structuredText returns the text nodes of the first structured citation
// below e, without the occurrence handles, which are added separately.
func structuredText(e *etree.Element) []string {
	for _, p := range []etree.Path{pathBibArticle, pathBibBook, pathBibChapter} {
		bib := e.FindElementPath(p)
		if bib == nil {
			continue
		}
		var result []string
		for _, child := range bib.ChildElements() {
			if child.Tag == "Occurrence" {
				continue
			}
			result = append(result, springer.TextNodes(child)...)
		}
		return result
	}
	return nil
}
