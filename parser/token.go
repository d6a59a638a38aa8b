package parser

import "fmt"

// TokenType represents different types of lexical tokens
type TokenType int

const (
	// Special tokens
	TOKEN_EOF TokenType = iota
	TOKEN_ILLEGAL

	// Literals
	TOKEN_NUMBER      // 42, 1.5 (as part of a complex literal)
	TOKEN_COMPLEX     // 3°4
	TOKEN_STRING      // `text`
	TOKEN_CHAR_STRING // \c
	TOKEN_PAIR_STRING // ‛cc

	// Structure
	TOKEN_LIST_OPEN  // ⟨
	TOKEN_LIST_CLOSE // ⟩
	TOKEN_BRANCH     // |
	TOKEN_LOOP_OPEN  // {
	TOKEN_LOOP_CLOSE // }

	// Variables (Value holds the name)
	TOKEN_VAR_SET // →name
	TOKEN_VAR_GET // ←name

	// Elements
	TOKEN_MODIFIER // v ¨ & ~ ß
	TOKEN_ELEMENT  // any other glyph, or a digraph
)

// Assignment-direction glyphs
const (
	SignSet = "→"
	SignGet = "←"
)

// ComplexSeparator splits the real and imaginary parts of a complex literal
const ComplexSeparator = "°"

// modifiers are prefixes that alter the element that follows
var modifiers = map[rune]bool{
	'v': true,
	'¨': true,
	'&': true,
	'~': true,
	'ß': true,
}

// digraphPrefixes start two-glyph element tokens
var digraphPrefixes = map[rune]bool{
	'∆': true,
	'ø': true,
	'Þ': true,
	'k': true,
}

func (t TokenType) String() string {
	switch t {
	case TOKEN_EOF:
		return "EOF"
	case TOKEN_ILLEGAL:
		return "ILLEGAL"
	case TOKEN_NUMBER:
		return "NUMBER"
	case TOKEN_COMPLEX:
		return "COMPLEX"
	case TOKEN_STRING:
		return "STRING"
	case TOKEN_CHAR_STRING:
		return "CHAR_STRING"
	case TOKEN_PAIR_STRING:
		return "PAIR_STRING"
	case TOKEN_LIST_OPEN:
		return "LIST_OPEN"
	case TOKEN_LIST_CLOSE:
		return "LIST_CLOSE"
	case TOKEN_BRANCH:
		return "BRANCH"
	case TOKEN_LOOP_OPEN:
		return "LOOP_OPEN"
	case TOKEN_LOOP_CLOSE:
		return "LOOP_CLOSE"
	case TOKEN_VAR_SET:
		return "VAR_SET"
	case TOKEN_VAR_GET:
		return "VAR_GET"
	case TOKEN_MODIFIER:
		return "MODIFIER"
	case TOKEN_ELEMENT:
		return "ELEMENT"
	default:
		return "UNKNOWN"
	}
}

// Position represents a location in source code
type Position struct {
	Line   int
	Column int
	Offset int // in runes
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexical token
type Token struct {
	Type     TokenType
	Value    string
	Position Position
}
