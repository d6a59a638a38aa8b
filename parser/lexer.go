package parser

import (
	"strings"
	"unicode"
)

// Lexer tokenizes source code
type Lexer struct {
	input        []rune
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination, 0 at end of input
	line         int
	column       int
}

// NewLexer creates a new Lexer instance
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input:  []rune(input),
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// readChar reads the next character and advances position
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar returns the next character without advancing
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

// skipWhitespace skips whitespace and # comments
func (l *Lexer) skipWhitespace() {
	for !l.atEOF() {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '#':
			for !l.atEOF() && l.ch != '\n' {
				l.readChar()
			}
		default:
			return
		}
	}
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	tok := Token{
		Position: Position{
			Line:   l.line,
			Column: l.column,
			Offset: l.position,
		},
	}

	if l.atEOF() {
		tok.Type = TOKEN_EOF
		return tok
	}

	switch {
	case isDigit(l.ch):
		return l.readNumber(tok)
	case l.ch == '`':
		return l.readString(tok)
	case l.ch == '\\':
		l.readChar()
		if l.atEOF() {
			return illegal(tok, "unterminated one-character string")
		}
		tok.Type = TOKEN_CHAR_STRING
		tok.Value = string(l.ch)
		l.readChar()
	case l.ch == '‛':
		l.readChar()
		var b strings.Builder
		for i := 0; i < 2; i++ {
			if l.atEOF() {
				return illegal(tok, "unterminated two-character string")
			}
			b.WriteRune(l.ch)
			l.readChar()
		}
		tok.Type = TOKEN_PAIR_STRING
		tok.Value = b.String()
	case l.ch == '→' || l.ch == '←':
		tok.Type = TOKEN_VAR_GET
		if l.ch == '→' {
			tok.Type = TOKEN_VAR_SET
		}
		l.readChar()
		tok.Value = l.readIdentifier()
		if tok.Value == "" {
			return illegal(tok, "expected variable name")
		}
	case l.ch == '⟨':
		tok = l.single(tok, TOKEN_LIST_OPEN)
	case l.ch == '⟩':
		tok = l.single(tok, TOKEN_LIST_CLOSE)
	case l.ch == '|':
		tok = l.single(tok, TOKEN_BRANCH)
	case l.ch == '{':
		tok = l.single(tok, TOKEN_LOOP_OPEN)
	case l.ch == '}':
		tok = l.single(tok, TOKEN_LOOP_CLOSE)
	case modifiers[l.ch]:
		tok = l.single(tok, TOKEN_MODIFIER)
	case digraphPrefixes[l.ch]:
		prefix := l.ch
		l.readChar()
		if l.atEOF() {
			return illegal(tok, "incomplete digraph "+string(prefix))
		}
		tok.Type = TOKEN_ELEMENT
		tok.Value = string(prefix) + string(l.ch)
		l.readChar()
	default:
		tok = l.single(tok, TOKEN_ELEMENT)
	}

	return tok
}

func (l *Lexer) single(tok Token, typ TokenType) Token {
	tok.Type = typ
	tok.Value = string(l.ch)
	l.readChar()
	return tok
}

func illegal(tok Token, msg string) Token {
	tok.Type = TOKEN_ILLEGAL
	tok.Value = msg
	return tok
}

// readNumber reads digits with an optional fraction, and a second such
// part after the complex separator
func (l *Lexer) readNumber(tok Token) Token {
	tok.Type = TOKEN_NUMBER
	tok.Value = l.readDecimal()
	if string(l.ch) == ComplexSeparator && isDigit(l.peekChar()) {
		l.readChar() // skip separator
		tok.Type = TOKEN_COMPLEX
		tok.Value += ComplexSeparator + l.readDecimal()
	}
	return tok
}

func (l *Lexer) readDecimal() string {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return string(l.input[start:l.position])
}

// readString reads a backtick string; a backslash escapes the next character
func (l *Lexer) readString(tok Token) Token {
	l.readChar() // skip opening backtick
	var b strings.Builder
	for {
		if l.atEOF() {
			return illegal(tok, "unterminated string")
		}
		if l.ch == '`' {
			l.readChar()
			break
		}
		if l.ch == '\\' && l.readPosition < len(l.input) {
			l.readChar()
		}
		b.WriteRune(l.ch)
		l.readChar()
	}
	tok.Type = TOKEN_STRING
	tok.Value = b.String()
	return tok
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || (isDigit(l.ch) && l.position > start) {
		l.readChar()
	}
	return string(l.input[start:l.position])
}

// isLetter returns true if the character is an ASCII letter or underscore
func isLetter(ch rune) bool {
	return ch < unicode.MaxASCII && unicode.IsLetter(ch) || ch == '_'
}

// isDigit returns true if the character is a digit
func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
