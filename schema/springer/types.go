// Package springer wraps a Springer A++ publisher XML document, with
// element, article, chapter and book level metadata below a single
// Publisher root.
package springer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// RootTag is the name of the document element.
const RootTag = "Publisher"

var ErrNoPublisher = errors.New("missing Publisher root element")

// Document is a read-only view on a parsed publisher XML document. All
// lookup structures are built once in NewDocument, so a Document can be
// shared between goroutines as long as nobody mutates the underlying tree.
type Document struct {
	tree *etree.Document
	// pos maps each element to its position in document order.
	pos map[*etree.Element]int
	// affiliations holds all Affiliation elements by ID, in document order.
	// IDs are not scoped to an author group.
	affiliations map[string][]*etree.Element
}

// Parse reads a single publisher document.
func Parse(r io.Reader) (*Document, error) {
	tree := etree.NewDocument()
	tree.ReadSettings.Permissive = true
	if _, err := tree.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("springer: %w", err)
	}
	return NewDocument(tree)
}

// ParseBytes is a convenience wrapper around Parse.
func ParseBytes(b []byte) (*Document, error) {
	return Parse(bytes.NewReader(b))
}

// NewDocument indexes an already parsed tree.
func NewDocument(tree *etree.Document) (*Document, error) {
	root := tree.Root()
	if root == nil || root.Tag != RootTag {
		return nil, ErrNoPublisher
	}
	doc := &Document{
		tree:         tree,
		pos:          make(map[*etree.Element]int),
		affiliations: make(map[string][]*etree.Element),
	}
	var i int
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		doc.pos[e] = i
		i++
		if e.Tag == "Affiliation" {
			if id := e.SelectAttrValue("ID", ""); id != "" {
				doc.affiliations[id] = append(doc.affiliations[id], e)
			}
		}
		for _, c := range e.ChildElements() {
			walk(c)
		}
	}
	walk(root)
	return doc, nil
}

// Root returns the Publisher element.
func (d *Document) Root() *etree.Element {
	if d.tree == nil {
		return nil
	}
	return d.tree.Root()
}

// Exists reports whether any element matches the path.
func (d *Document) Exists(p etree.Path) bool {
	return d.tree.FindElementPath(p) != nil
}

// Select returns the elements matching any of the paths, in document order
// and without duplicates, like an XPath union.
func (d *Document) Select(paths ...etree.Path) []*etree.Element {
	if len(paths) == 1 {
		return d.tree.FindElementsPath(paths[0])
	}
	var (
		seen   = make(map[*etree.Element]bool)
		result []*etree.Element
	)
	for _, p := range paths {
		for _, e := range d.tree.FindElementsPath(p) {
			if seen[e] {
				continue
			}
			seen[e] = true
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return d.pos[result[i]] < d.pos[result[j]]
	})
	return result
}

// First returns the first element matching any of the paths or nil.
func (d *Document) First(paths ...etree.Path) *etree.Element {
	if es := d.Select(paths...); len(es) > 0 {
		return es[0]
	}
	return nil
}

// Texts returns the direct text of every matching element, like
// path/text() would, skipping elements without text.
func (d *Document) Texts(paths ...etree.Path) []string {
	var result []string
	for _, e := range d.Select(paths...) {
		if s := strings.TrimSpace(DirectText(e)); s != "" {
			result = append(result, s)
		}
	}
	return result
}

// Affiliations returns all affiliation elements carrying the given ID, in
// document order. Multiple elements share an ID only in documents with
// several author groups numbering their affiliations independently.
func (d *Document) Affiliations(id string) []*etree.Element {
	return d.affiliations[id]
}

// DirectText concatenates the character data that are direct children of e.
func DirectText(e *etree.Element) string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	for _, tok := range e.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			sb.WriteString(cd.Data)
		}
	}
	return sb.String()
}

// DirectTexts returns the non-blank direct text nodes of e, one entry per
// node.
func DirectTexts(e *etree.Element) []string {
	var result []string
	if e == nil {
		return result
	}
	for _, tok := range e.Child {
		if cd, ok := tok.(*etree.CharData); ok && strings.TrimSpace(cd.Data) != "" {
			result = append(result, cd.Data)
		}
	}
	return result
}

// TextNodes returns all non-blank text nodes below e, trimmed, in document
// order.
func TextNodes(e *etree.Element) []string {
	var result []string
	if e == nil {
		return result
	}
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		for _, tok := range e.Child {
			switch v := tok.(type) {
			case *etree.CharData:
				if s := strings.TrimSpace(v.Data); s != "" {
					result = append(result, s)
				}
			case *etree.Element:
				walk(v)
			}
		}
	}
	walk(e)
	return result
}

// FlatText returns all text below e, in document order, like the XPath
// string() function.
func FlatText(e *etree.Element) string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		for _, tok := range e.Child {
			switch v := tok.(type) {
			case *etree.CharData:
				sb.WriteString(v.Data)
			case *etree.Element:
				walk(v)
			}
		}
	}
	walk(e)
	return sb.String()
}

// Markup serializes e including its tags.
func Markup(e *etree.Element) string {
	if e == nil {
		return ""
	}
	doc := etree.NewDocument()
	doc.SetRoot(e.Copy())
	s, err := doc.WriteToString()
	if err != nil {
		return FlatText(e)
	}
	return s
}
