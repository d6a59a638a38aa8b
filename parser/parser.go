package parser

import (
	"strings"
)

// Parser parses source code into a File
type Parser struct {
	lexer   *Lexer
	current Token
	peek    Token
}

// NewParser creates a new Parser instance
func NewParser(input string) *Parser {
	p := &Parser{
		lexer: NewLexer(input),
	}
	// Read two tokens to initialize current and peek
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses a whole source file
func Parse(input string) (*File, error) {
	return NewParser(input).ParseFile()
}

// nextToken advances to the next token
func (p *Parser) nextToken() {
	p.current = p.peek
	p.peek = p.lexer.NextToken()
}

// ParseFile parses the input up to EOF
func (p *Parser) ParseFile() (*File, error) {
	pos := p.current.Position
	body, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	if p.current.Type != TOKEN_EOF {
		return nil, p.errorf("unexpected %q", p.current.Value)
	}
	return &File{Pos: pos, Body: body}, nil
}

// parseProgram parses items until EOF or a structural token that closes
// or separates an enclosing construct
func (p *Parser) parseProgram() (*Program, error) {
	prog := &Program{Pos: p.current.Position}
	for {
		switch p.current.Type {
		case TOKEN_EOF, TOKEN_BRANCH, TOKEN_LIST_CLOSE, TOKEN_LOOP_CLOSE:
			return prog, nil
		}
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		prog.Items = append(prog.Items, item)
	}
}

func (p *Parser) parseItem() (Item, error) {
	tok := p.current
	switch tok.Type {
	case TOKEN_ILLEGAL:
		return nil, p.errorf("%s", tok.Value)
	case TOKEN_NUMBER:
		if strings.Contains(tok.Value, ".") {
			return nil, p.errorf("decimal literal %s is only allowed as part of a complex literal", tok.Value)
		}
		p.nextToken()
		return &IntegerLit{Pos: tok.Position, Text: tok.Value}, nil
	case TOKEN_COMPLEX:
		p.nextToken()
		parts := strings.SplitN(tok.Value, ComplexSeparator, 2)
		return &ComplexLit{Pos: tok.Position, Text: tok.Value, Real: parts[0], Imag: parts[1]}, nil
	case TOKEN_STRING:
		p.nextToken()
		return &StringLit{Pos: tok.Position, Kind: StringNormal, Value: tok.Value}, nil
	case TOKEN_CHAR_STRING:
		p.nextToken()
		return &StringLit{Pos: tok.Position, Kind: StringSingleChar, Value: tok.Value}, nil
	case TOKEN_PAIR_STRING:
		p.nextToken()
		return &StringLit{Pos: tok.Position, Kind: StringDoubleChar, Value: tok.Value}, nil
	case TOKEN_VAR_SET, TOKEN_VAR_GET:
		p.nextToken()
		sign := SignGet
		if tok.Type == TOKEN_VAR_SET {
			sign = SignSet
		}
		return &VariableAssn{Pos: tok.Position, Sign: sign, Name: tok.Value}, nil
	case TOKEN_LIST_OPEN:
		return p.parseList()
	case TOKEN_LOOP_OPEN:
		return p.parseLoop()
	case TOKEN_MODIFIER:
		p.nextToken()
		if p.current.Type != TOKEN_ELEMENT {
			return nil, p.errorf("modifier %s must be followed by an element", tok.Value)
		}
		elem := p.current
		p.nextToken()
		return &Element{Pos: tok.Position, Modifier: tok.Value, Text: elem.Value}, nil
	case TOKEN_ELEMENT:
		p.nextToken()
		return &Element{Pos: tok.Position, Text: tok.Value}, nil
	default:
		return nil, p.errorf("unexpected %s", tok.Type)
	}
}

// parseList parses ⟨a|b|c⟩; ⟨⟩ has no elements
func (p *Parser) parseList() (Item, error) {
	list := &ListLit{Pos: p.current.Position}
	p.nextToken() // skip '⟨'

	if p.current.Type == TOKEN_LIST_CLOSE {
		p.nextToken()
		return list, nil
	}

	blocks, err := p.parseBlocks(TOKEN_LIST_CLOSE, "list")
	if err != nil {
		return nil, err
	}
	list.Items = blocks
	return list, nil
}

// parseLoop parses {body} or {cond|body}
func (p *Parser) parseLoop() (Item, error) {
	loop := &WhileLoop{Pos: p.current.Position}
	p.nextToken() // skip '{'

	blocks, err := p.parseBlocks(TOKEN_LOOP_CLOSE, "loop")
	if err != nil {
		return nil, err
	}
	loop.Blocks = blocks
	return loop, nil
}

// parseBlocks parses |-separated programs up to and including the closing token
func (p *Parser) parseBlocks(closing TokenType, what string) ([]*Program, error) {
	var blocks []*Program
	for {
		block, err := p.parseProgram()
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)

		switch p.current.Type {
		case TOKEN_BRANCH:
			p.nextToken()
		case closing:
			p.nextToken()
			return blocks, nil
		case TOKEN_EOF:
			return nil, p.errorf("unterminated %s", what)
		default:
			return nil, p.errorf("unexpected %q in %s", p.current.Value, what)
		}
	}
}
