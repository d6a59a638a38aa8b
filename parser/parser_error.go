package parser

import "fmt"

// ParseError is a syntax error with its source position
type ParseError struct {
	Position Position
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Position, e.Message)
}

// errorf builds a ParseError at the current token
func (p *Parser) errorf(format string, args ...interface{}) error {
	return &ParseError{
		Position: p.current.Position,
		Message:  fmt.Sprintf(format, args...),
	}
}
