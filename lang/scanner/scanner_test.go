package scanner_test

import (
	"testing"

	"github.com/mna/ember/lang/scanner"
	"github.com/mna/ember/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []scanner.Token {
	t.Helper()
	s := scanner.New(src)
	var toks []scanner.Token
	for {
		tok := s.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks := scanAll(t, "(){};,+-*!===<=>=!=<>/ ")
	kinds := make([]token.Token, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	require.Equal(t, []token.Token{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE, token.SEMI,
		token.COMMA, token.PLUS, token.MINUS, token.STAR, token.BANGEQ,
		token.EQEQ, token.LE, token.GE, token.BANGEQ, token.LT, token.GT,
		token.SLASH, token.EOF,
	}, kinds)
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	toks := scanAll(t, "var foo = nil; class Bar {}")
	require.Len(t, toks, 10)
	assert.Equal(t, token.VAR, toks[0].Kind)
	assert.Equal(t, token.IDENT, toks[1].Kind)
	assert.Equal(t, "foo", toks[1].Lexeme)
	assert.Equal(t, token.NIL, toks[3].Kind)
	assert.Equal(t, token.CLASS, toks[5].Kind)
}

func TestScanNumbers(t *testing.T) {
	toks := scanAll(t, "123 1.5 1.")
	assert.Equal(t, "123", toks[0].Lexeme)
	assert.Equal(t, "1.5", toks[1].Lexeme)
	// a trailing dot with no following digit is NOT part of the number
	assert.Equal(t, "1", toks[2].Lexeme)
	assert.Equal(t, token.DOT, toks[3].Kind)
}

func TestScanStrings(t *testing.T) {
	toks := scanAll(t, `"hello world"`)
	require.Equal(t, token.STRING, toks[0].Kind)
	assert.Equal(t, `"hello world"`, toks[0].Lexeme)
}

func TestScanUnterminatedString(t *testing.T) {
	toks := scanAll(t, `"hello`)
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
	assert.Equal(t, "Unterminated string.", toks[0].Lexeme)
}

func TestScanLineComments(t *testing.T) {
	toks := scanAll(t, "var x = 1; // a comment\nvar y = 2;")
	var varCount int
	for _, tok := range toks {
		if tok.Kind == token.VAR {
			varCount++
		}
	}
	assert.Equal(t, 2, varCount)
	// the second var is on line 2
	for _, tok := range toks {
		if tok.Kind == token.VAR && tok.Line == 2 {
			return
		}
	}
	t.Fatal("expected a var token on line 2")
}

func TestScanIllegalCharacter(t *testing.T) {
	toks := scanAll(t, "@")
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
	assert.Equal(t, "Unexpected character.", toks[0].Lexeme)
}
