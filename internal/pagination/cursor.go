// Package pagination encodes list positions into the value of interactive
// message buttons so the next page can be rendered without server-side
// session state.
//
// A cursor travels through the client verbatim and is not signed: anything
// decoded here is untrusted input and is bounds-checked before use.
package pagination

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PageSize is the number of channels rendered per page.
const PageSize = 5

// MaxOffset is the largest offset Decode accepts.
const MaxOffset = 10000

// ErrMalformedCursor is returned when a button value cannot be turned back
// into a Cursor.
var ErrMalformedCursor = errors.New("malformed cursor")

// Cursor is a position in a filtered channel listing.
type Cursor struct {
	Offset      int    `json:"offset"`
	SearchTerms string `json:"searchTerms"`
}

// First returns the cursor for the first page of the given search.
func First(searchTerms string) Cursor {
	return Cursor{Offset: 0, SearchTerms: searchTerms}
}

// Prev returns the cursor one page back.
func (c Cursor) Prev() Cursor {
	return Cursor{Offset: c.Offset - PageSize, SearchTerms: c.SearchTerms}
}

// Next returns the cursor one page forward.
func (c Cursor) Next() Cursor {
	return Cursor{Offset: c.Offset + PageSize, SearchTerms: c.SearchTerms}
}

// HasPrev reports whether a page exists before this one.
func (c Cursor) HasPrev() bool {
	return c.Offset >= PageSize
}

// HasNext reports whether a page exists after this one given the total
// number of matching records.
func (c Cursor) HasNext(total int) bool {
	return c.Offset+PageSize < total
}

// Encode serializes c into the button value wire format
// {"offset":N,"searchTerms":"..."}.
func Encode(c Cursor) string {
	// Search terms are echoed back as typed, so &, < and > stay literal.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a struct of an int and a string cannot fail.
	_ = enc.Encode(c)
	return strings.TrimSuffix(buf.String(), "\n")
}

// wireCursor distinguishes absent fields from zero values.
type wireCursor struct {
	Offset      *int    `json:"offset"`
	SearchTerms *string `json:"searchTerms"`
}

// Decode parses a button value produced by Encode.
func Decode(token string) (Cursor, error) {
	var w wireCursor
	if err := json.Unmarshal([]byte(token), &w); err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrMalformedCursor, err)
	}
	if w.Offset == nil {
		return Cursor{}, fmt.Errorf("%w: missing offset", ErrMalformedCursor)
	}
	if w.SearchTerms == nil {
		return Cursor{}, fmt.Errorf("%w: missing searchTerms", ErrMalformedCursor)
	}
	if *w.Offset < 0 || *w.Offset > MaxOffset {
		return Cursor{}, fmt.Errorf("%w: offset %d out of range", ErrMalformedCursor, *w.Offset)
	}
	return Cursor{Offset: *w.Offset, SearchTerms: *w.SearchTerms}, nil
}

// DecodeOrReset decodes token, falling back to the first unfiltered page.
// The returned error is non-nil when a reset happened so callers can log it.
func DecodeOrReset(token string) (Cursor, error) {
	c, err := Decode(token)
	if err != nil {
		return First(""), err
	}
	return c, nil
}
