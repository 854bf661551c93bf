package convert

import (
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"github.com/miku/hepkit/normal"
	"github.com/miku/hepkit/schema/hep"
	"github.com/miku/hepkit/schema/springer"
)

var (
	pathJournalTitle      = etree.MustCompilePath("//JournalInfo/JournalTitle")
	pathVolumeStart       = etree.MustCompilePath("//VolumeIDStart")
	pathVolumeEnd         = etree.MustCompilePath("//VolumeIDEnd")
	pathIssueStart        = etree.MustCompilePath("//IssueIDStart")
	pathIssueEnd          = etree.MustCompilePath("//IssueIDEnd")
	pathPrintYear         = etree.MustCompilePath("//PrintDate/Year")
	pathIssueCoverYear    = etree.MustCompilePath("//IssueHistory/CoverDate/Year")
	pathArticleFirstPage  = etree.MustCompilePath("//ArticleInfo/ArticleFirstPage")
	pathArticleLastPage   = etree.MustCompilePath("//ArticleInfo/ArticleLastPage")
	pathChapterFirstPage  = etree.MustCompilePath("//ChapterInfo/ChapterFirstPage")
	pathChapterLastPage   = etree.MustCompilePath("//ChapterInfo/ChapterLastPage")
	pathArticleCitationID = etree.MustCompilePath("//ArticleInfo/ArticleCitationID")
	pathArticleNotePara   = etree.MustCompilePath("//ArticleNote/SimplePara")

	publishedInPrefix    = regexp.MustCompile(`.*published in *`)
	translatedFromPrefix = regexp.MustCompile(`.*Translated from *`)
	noteSeparator        = regexp.MustCompile(` *, *`)
	pagesPattern         = regexp.MustCompile(`\bpp\.? *`)
	nonDigits            = regexp.MustCompile(`\D+`)
	yearPattern          = regexp.MustCompile(`\d{4}`)
)

// publicationInfo returns the primary note, which is always present, even
// if empty, and an optional second note found in the article notes.
func (c *SpringerConverter) publicationInfo(doc *springer.Document) []hep.PublicationInfo {
	notes := []hep.PublicationInfo{primaryNote(doc)}
	if note, ok := c.secondaryNote(doc); ok {
		notes = append(notes, note)
	}
	return notes
}

// primaryNote is built the same way for all document types; books and
// chapters usually lack journal and volume data.
func primaryNote(doc *springer.Document) hep.PublicationInfo {
	var note hep.PublicationInfo
	note.JournalTitle = text(doc, pathJournalTitle)
	note.JournalVolume = idRange(text(doc, pathVolumeStart), text(doc, pathVolumeEnd))
	note.JournalIssue = idRange(text(doc, pathIssueStart), text(doc, pathIssueEnd))
	if note.Year = text(doc, pathPrintYear); note.Year == "" {
		note.Year = text(doc, pathIssueCoverYear)
	}
	if artid := text(doc, pathArticleCitationID); artid != "" {
		note.Artid = artid
		return note
	}
	note.PageStart = text(doc, pathArticleFirstPage, pathChapterFirstPage)
	note.PageEnd = text(doc, pathArticleLastPage, pathChapterLastPage)
	return note
}

// idRange renders a volume or issue range. An end value without a start
// value is ignored.
func idRange(start, end string) string {
	switch {
	case start == end:
		return start
	case start != "" && end != "":
		return start + "-" + end
	default:
		return start
	}
}

// secondaryNote looks for notes like "Original Russian Text published in
// Yadernaya Fizika, 2010, Vol. 73, No. 2, pp. 123-130". If several
// paragraphs match, the last one wins.
func (c *SpringerConverter) secondaryNote(doc *springer.Document) (hep.PublicationInfo, bool) {
	var (
		note  hep.PublicationInfo
		found bool
	)
	for _, e := range doc.Select(pathArticleNotePara) {
		para := normal.Clean(springer.FlatText(e))
		if !c.Rules.IsSecondaryNote(para) {
			continue
		}
		note, found = parseSecondaryNote(para), true
	}
	return note, found
}

func parseSecondaryNote(para string) hep.PublicationInfo {
	var note hep.PublicationInfo
	s := publishedInPrefix.ReplaceAllString(para, "")
	s = translatedFromPrefix.ReplaceAllString(s, "")
	parts := noteSeparator.Split(s, -1)
	note.JournalTitle = strings.TrimSpace(parts[0])
	for _, part := range parts[1:] {
		switch {
		case strings.Contains(part, "Vol. "):
			note.JournalVolume = strings.TrimSpace(strings.ReplaceAll(part, "Vol. ", ""))
		case strings.Contains(part, "No. "):
			note.JournalIssue = strings.TrimSpace(strings.ReplaceAll(part, "No. ", ""))
		case pagesPattern.MatchString(part):
			pages := pagesPattern.ReplaceAllString(strings.ReplaceAll(part, ".", ""), "")
			var chunks []string
			for _, v := range nonDigits.Split(pages, -1) {
				if v != "" {
					chunks = append(chunks, v)
				}
			}
			if len(chunks) > 0 {
				note.PageStart = chunks[0]
			}
			if len(chunks) > 1 {
				note.PageEnd = chunks[1]
			}
		case yearPattern.MatchString(part):
			note.Year = yearPattern.FindString(part)
		}
	}
	return note
}
