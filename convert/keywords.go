package convert

import (
	"github.com/beevik/etree"
	"github.com/miku/hepkit/schema/springer"
)

var (
	pathKeywordGroup = etree.MustCompilePath("//KeywordGroup")
	pathHeading      = etree.MustCompilePath("./Heading")
	pathKeyword      = etree.MustCompilePath("./Keyword")
)

type keywordGroup struct {
	heading string
	values  []string
}

// keywordGroups collects keywords by heading, in document order. A repeated
// heading replaces the values seen before.
func keywordGroups(doc *springer.Document) []keywordGroup {
	var (
		groups []keywordGroup
		index  = make(map[string]int)
	)
	for _, e := range doc.Select(pathKeywordGroup) {
		g := keywordGroup{
			heading: childText(e, pathHeading),
			values:  childTexts(e, pathKeyword),
		}
		if i, ok := index[g.heading]; ok {
			groups[i] = g
			continue
		}
		index[g.heading] = len(groups)
		groups = append(groups, g)
	}
	return groups
}

// keywords splits keyword groups into free keywords and classification
// numbers, e.g. PACS codes. Groups with other headings are dropped.
func (c *SpringerConverter) keywords(doc *springer.Document) (free, classification []string) {
	for _, g := range keywordGroups(doc) {
		switch {
		case c.Rules.IsKeywordHeading(g.heading):
			free = append(free, g.values...)
		case c.Rules.IsClassificationHeading(g.heading):
			classification = append(classification, g.values...)
		}
	}
	return free, classification
}
