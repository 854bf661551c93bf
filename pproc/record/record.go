package record

import (
	"bufio"
	"bytes"
	"errors"
)

var (
	ErrInvalidSplitter   = errors.New("invalid splitter")
	ErrIncompleteElement = errors.New("incomplete element at end of input")
)

// TagSplitter returns a bufio.SplitFunc that yields complete elements of the
// given name, e.g. single Publisher documents from a concatenated stream of
// XML files. Anything between elements, like XML declarations, is dropped.
// The maximum element size is governed by the buffer of the scanner.
func TagSplitter(tagName string) bufio.SplitFunc {
	if tagName == "" {
		return func(data []byte, atEOF bool) (int, []byte, error) {
			return 0, nil, ErrInvalidSplitter
		}
	}
	var (
		openTag  = []byte("<" + tagName)
		closeTag = []byte("</" + tagName + ">")
	)
	return func(data []byte, atEOF bool) (advance int, token []byte, err error) {
		start, end := findElement(data, openTag, closeTag)
		switch {
		case start == -1:
			if atEOF {
				return len(data), nil, nil
			}
			// Keep a tail, it may hold the beginning of a start tag.
			if n := len(data) - len(openTag); n > 0 {
				return n, nil, nil
			}
			return 0, nil, nil
		case end == -1:
			if atEOF {
				return len(data), nil, ErrIncompleteElement
			}
			return start, nil, nil
		default:
			return end, data[start:end], nil
		}
	}
}

func isTagTerminator(ch byte) bool {
	switch ch {
	case '>', ' ', '/', '\n', '\t', '\r':
		return true
	}
	return false
}

// indexTag returns the offset of the first start tag at or after from, or
// -1. A tag name cut off at the end of data counts as a match.
func indexTag(data, openTag []byte, from int) int {
	for from < len(data) {
		i := bytes.Index(data[from:], openTag)
		if i == -1 {
			return -1
		}
		i += from
		next := i + len(openTag)
		if next == len(data) || isTagTerminator(data[next]) {
			return i
		}
		from = i + 1
	}
	return -1
}

// findElement returns the byte range of the first complete element. If a
// start tag is found, but the element is not complete, end is -1.
func findElement(data, openTag, closeTag []byte) (start, end int) {
	start = indexTag(data, openTag, 0)
	if start == -1 {
		return -1, -1
	}
	gt := bytes.IndexByte(data[start:], '>')
	if gt == -1 {
		return start, -1
	}
	gt += start
	if data[gt-1] == '/' {
		return start, gt + 1
	}
	depth, i := 1, gt+1
	for {
		c := bytes.Index(data[i:], closeTag)
		if c == -1 {
			return start, -1
		}
		c += i
		if o := indexTag(data[:c], openTag, i); o != -1 {
			depth++
			i = o + len(openTag)
			continue
		}
		depth--
		if depth == 0 {
			return start, c + len(closeTag)
		}
		i = c + len(closeTag)
	}
}
