package convert

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"io"
)

// Skip marks documents that cannot be converted and should be skipped by
// the caller, as opposed to errors that should stop processing.
type Skip struct {
	err error
}

func (s Skip) Error() string {
	return s.err.Error()
}

func (s Skip) Unwrap() error {
	return s.err
}

var (
	ErrNilDocument = errors.New("nil document")
	ErrSkipNoRoot  = Skip{err: errors.New("no publisher root")}
)

// hashString returns a hex-encoded hash of a string.
func hashString(s string) string {
	h := sha1.New()
	_, _ = io.WriteString(h, s)
	return fmt.Sprintf("%x", h.Sum(nil))
}
