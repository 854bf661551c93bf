package convert

import (
	"github.com/beevik/etree"
	"github.com/miku/hepkit/dateutil"
	"github.com/miku/hepkit/schema/springer"
)

var (
	pathOnlineYear  = etree.MustCompilePath("//ArticleHistory/OnlineDate/Year")
	pathOnlineMonth = etree.MustCompilePath("//ArticleHistory/OnlineDate/Month")
	pathOnlineDay   = etree.MustCompilePath("//ArticleHistory/OnlineDate/Day")
	pathCoverYear   = etree.MustCompilePath("//CoverDate/Year")
	pathCoverMonth  = etree.MustCompilePath("//CoverDate/Month")
)

// publicationDate returns "YYYY", "YYYY-MM" or "YYYY-MM-DD", or the empty
// string. The online date is used whenever it has a year, the cover date
// only otherwise and never with a day.
func publicationDate(doc *springer.Document) string {
	if year := text(doc, pathOnlineYear); year != "" {
		return dateutil.Partial(year, text(doc, pathOnlineMonth), text(doc, pathOnlineDay))
	}
	if year := text(doc, pathCoverYear); year != "" {
		return dateutil.Partial(year, text(doc, pathCoverMonth), "")
	}
	return ""
}
