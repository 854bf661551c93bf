package convert

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/miku/hepkit/normal"
	"github.com/miku/hepkit/schema/hep"
	"github.com/miku/hepkit/schema/springer"
)

var (
	pathEditorGroup = etree.MustCompilePath("//EditorGroup")
	pathEditor      = etree.MustCompilePath("//EditorGroup/Editor")
	pathAuthor      = etree.MustCompilePath("//AuthorGroup/Author")
	pathGivenName   = etree.MustCompilePath("./*/GivenName")
	pathFamilyName  = etree.MustCompilePath("./*/FamilyName")
	pathEmail       = etree.MustCompilePath("./Contact/Email")
)

// authors returns the editors, if the document has any, and the authors
// otherwise.
func (c *SpringerConverter) authors(doc *springer.Document) []hep.Author {
	var (
		persons []*etree.Element
		role    string
	)
	if doc.Exists(pathEditorGroup) {
		persons, role = doc.Select(pathEditor), hep.RoleEditor
	} else {
		persons = doc.Select(pathAuthor)
	}
	var authors []hep.Author
	for _, e := range persons {
		authors = append(authors, c.author(doc, e, role))
	}
	return authors
}

func (c *SpringerConverter) author(doc *springer.Document, e *etree.Element, role string) hep.Author {
	author := hep.Author{
		Surname:      strings.Join(childTexts(e, pathFamilyName), " "),
		Email:        childText(e, pathEmail),
		Affiliations: []hep.Affiliation{},
		Role:         role,
	}
	if given := strings.Join(childTexts(e, pathGivenName), " "); given != "" {
		author.GivenNames = []string{given}
	}
	if orcid := e.SelectAttrValue("ORCID", ""); orcid != "" {
		author.ORCID = normal.ORCID(orcid)
	}
	for _, id := range strings.Fields(e.SelectAttrValue("AffiliationIDS", "")) {
		if value, ok := c.resolveAffiliation(doc, id); ok {
			author.Affiliations = append(author.Affiliations, hep.Affiliation{Value: value})
		}
	}
	return author
}

// resolveAffiliation renders the affiliation with the given ID as "division,
// organization; address parts". Lookups are document-wide: if several
// author groups reuse an ID, the texts of all matching affiliations are
// combined. The result may be empty.
func (c *SpringerConverter) resolveAffiliation(doc *springer.Document, id string) (string, bool) {
	elems := doc.Affiliations(id)
	switch {
	case len(elems) == 0:
		c.Logger.WithField("affiliation_id", id).Debug("unresolved affiliation")
		return "", false
	case len(elems) > 1:
		c.Logger.WithField("affiliation_id", id).Debugf("affiliation id used %d times", len(elems))
	}
	var first, second []string
	for _, aff := range elems {
		for _, child := range aff.ChildElements() {
			first = appendClean(first, springer.DirectTexts(child))
			for _, grandchild := range child.ChildElements() {
				second = appendClean(second, springer.DirectTexts(grandchild))
			}
		}
	}
	value := strings.Join(first, ", ")
	if len(second) > 0 {
		if len(first) > 0 {
			value = value + "; " + strings.Join(second, ", ")
		} else {
			value = strings.Join(second, ", ")
		}
	}
	value = normal.Affiliation.Normalize(value)
	if value == "" {
		c.Logger.WithField("affiliation_id", id).Debug("empty affiliation")
		return "", false
	}
	return value, true
}

func appendClean(dst []string, vs []string) []string {
	for _, v := range vs {
		if s := normal.Clean(v); s != "" {
			dst = append(dst, s)
		}
	}
	return dst
}
