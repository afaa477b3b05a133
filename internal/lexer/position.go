// Package lexer turns Orka source text into a stream of tokens for the parser.
//
// The lexer knows token shapes only: keywords, identifiers, integer and string
// literals, and single-character punctuation. It has no notion of the grammar
// beyond that.
package lexer

import "strconv"

// Position is a location in the source.
//
// Line and Column are 1-based; Column counts runes. Offset is the 0-based byte
// offset into the source.
type Position struct {
	Filename string
	Line     int
	Column   int
	Offset   int
}

// String formats the position as "filename:line:column", the format editors
// and CI tools turn into links.
func (p Position) String() string {
	return p.Filename + ":" + strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// IsValid reports whether the position carries a line number.
// The zero Position is invalid.
func (p Position) IsValid() bool {
	return p.Line > 0
}
