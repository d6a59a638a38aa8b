package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexerTokens(t *testing.T) {
	tests := []struct {
		input string
		want  []Token
	}{
		{
			"42 7",
			[]Token{
				{Type: TOKEN_NUMBER, Value: "42"},
				{Type: TOKEN_NUMBER, Value: "7"},
				{Type: TOKEN_EOF},
			},
		},
		{
			"3°4 1.5°2",
			[]Token{
				{Type: TOKEN_COMPLEX, Value: "3°4"},
				{Type: TOKEN_COMPLEX, Value: "1.5°2"},
				{Type: TOKEN_EOF},
			},
		},
		{
			"`hi` \\x ‛ab",
			[]Token{
				{Type: TOKEN_STRING, Value: "hi"},
				{Type: TOKEN_CHAR_STRING, Value: "x"},
				{Type: TOKEN_PAIR_STRING, Value: "ab"},
				{Type: TOKEN_EOF},
			},
		},
		{
			"⟨1|2⟩{0|_}",
			[]Token{
				{Type: TOKEN_LIST_OPEN, Value: "⟨"},
				{Type: TOKEN_NUMBER, Value: "1"},
				{Type: TOKEN_BRANCH, Value: "|"},
				{Type: TOKEN_NUMBER, Value: "2"},
				{Type: TOKEN_LIST_CLOSE, Value: "⟩"},
				{Type: TOKEN_LOOP_OPEN, Value: "{"},
				{Type: TOKEN_NUMBER, Value: "0"},
				{Type: TOKEN_BRANCH, Value: "|"},
				{Type: TOKEN_ELEMENT, Value: "_"},
				{Type: TOKEN_LOOP_CLOSE, Value: "}"},
				{Type: TOKEN_EOF},
			},
		},
		{
			"→x1 ←x1+",
			[]Token{
				{Type: TOKEN_VAR_SET, Value: "x1"},
				{Type: TOKEN_VAR_GET, Value: "x1"},
				{Type: TOKEN_ELEMENT, Value: "+"},
				{Type: TOKEN_EOF},
			},
		},
		{
			"v+ ∆s kA",
			[]Token{
				{Type: TOKEN_MODIFIER, Value: "v"},
				{Type: TOKEN_ELEMENT, Value: "+"},
				{Type: TOKEN_ELEMENT, Value: "∆s"},
				{Type: TOKEN_ELEMENT, Value: "kA"},
				{Type: TOKEN_EOF},
			},
		},
		{
			"1 # comment ⟨\n2",
			[]Token{
				{Type: TOKEN_NUMBER, Value: "1"},
				{Type: TOKEN_NUMBER, Value: "2"},
				{Type: TOKEN_EOF},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := NewLexer(tt.input)
			for i, want := range tt.want {
				tok := l.NextToken()
				assert.Equal(t, want.Type, tok.Type, "token[%d] type", i)
				assert.Equal(t, want.Value, tok.Value, "token[%d] value", i)
			}
		})
	}
}

func TestLexerStringEscapes(t *testing.T) {
	tok := NewLexer("`a\\`b\\\\c`").NextToken()
	assert.Equal(t, TOKEN_STRING, tok.Type)
	assert.Equal(t, "a`b\\c", tok.Value)
}

func TestLexerComplexNeedsDigitAfterSeparator(t *testing.T) {
	l := NewLexer("3°")
	tok := l.NextToken()
	assert.Equal(t, TOKEN_NUMBER, tok.Type)
	assert.Equal(t, "3", tok.Value)
	tok = l.NextToken()
	assert.Equal(t, TOKEN_ELEMENT, tok.Type)
	assert.Equal(t, "°", tok.Value)
}

func TestLexerIllegal(t *testing.T) {
	tests := []string{
		"`open",
		"\\",
		"‛a",
		"→",
		"←1",
		"∆",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			tok := NewLexer(input).NextToken()
			assert.Equal(t, TOKEN_ILLEGAL, tok.Type)
		})
	}
}

func TestLexerPositions(t *testing.T) {
	l := NewLexer("1\n  ⟨2")
	tok := l.NextToken()
	assert.Equal(t, Position{Line: 1, Column: 1, Offset: 0}, tok.Position)
	tok = l.NextToken()
	assert.Equal(t, Position{Line: 2, Column: 3, Offset: 4}, tok.Position)
	tok = l.NextToken()
	assert.Equal(t, Position{Line: 2, Column: 4, Offset: 5}, tok.Position)
}
