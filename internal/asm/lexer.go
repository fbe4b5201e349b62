// Package asm reads and writes the textual assembly form of a module.
package asm

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// ilLexer tokenizes the assembly. Rule order matters: labels before ids,
// vector types before comparisons-looking punctuation.
var ilLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Comment", Pattern: `;[^\n]*`},
		{Name: "Label", Pattern: `%([1-9][0-9]*|[a-zA-Z_][a-zA-Z0-9_]*):`},
		{Name: "Id", Pattern: `%([1-9][0-9]*|[a-zA-Z_][a-zA-Z0-9_]*)`},
		{Name: "VecType", Pattern: `<[1-9][0-9]* x [a-zA-Z0-9]+>`},
		{Name: "Name", Pattern: `[a-zA-Z][a-zA-Z0-9._]*`},
		{Name: "Int", Pattern: `-?(0x[0-9a-fA-F]+|0b[01]+|[1-9][0-9]*|0)`},
		{Name: "String", Pattern: `"[^"]*"`},
		{Name: "Punct", Pattern: `[,={}()|]`},
		{Name: "EOL", Pattern: `\n`},
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
	},
})

var symbols = ilLexer.Symbols()

// token tags used by the parser.
var (
	tokLabel   = symbols["Label"]
	tokId      = symbols["Id"]
	tokVecType = symbols["VecType"]
	tokName    = symbols["Name"]
	tokInt     = symbols["Int"]
	tokString  = symbols["String"]
	tokEOL     = symbols["EOL"]
)

// tokens lexes the whole source, dropping whitespace and comments. The
// returned stream always ends with lexer.EOF.
func tokens(filename, source string) ([]lexer.Token, error) {
	lex, err := ilLexer.LexString(filename, source)
	if err != nil {
		return nil, err
	}
	var toks []lexer.Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case symbols["Whitespace"], symbols["Comment"]:
			continue
		}
		toks = append(toks, tok)
		if tok.EOF() {
			return toks, nil
		}
	}
}

// cursor walks the token stream one line at a time, mirroring the
// line-oriented assembly syntax.
type cursor struct {
	toks []lexer.Token
	pos  int
}

// errEOL is returned by next when the end of the line is reached and the
// caller did not accept it.
var errEOL = fmt.Errorf("expected more tokens")

// line returns the source line of the token at the cursor.
func (c *cursor) line() int {
	return c.toks[c.pos].Pos.Line
}

// atEOF reports whether all input is consumed.
func (c *cursor) atEOF() bool {
	return c.toks[c.pos].EOF()
}

// atEOL reports whether the cursor sits at the end of a line (or file).
func (c *cursor) atEOL() bool {
	return c.toks[c.pos].Type == tokEOL || c.atEOF()
}

// next returns the next token of the current line. With acceptEOL a
// token of type EOL is returned at end of line; otherwise reaching the
// end of the line is an error.
func (c *cursor) next(acceptEOL bool) (lexer.Token, error) {
	if c.atEOL() {
		if acceptEOL {
			return lexer.Token{Type: tokEOL}, nil
		}
		return lexer.Token{}, errEOL
	}
	tok := c.toks[c.pos]
	c.pos++
	return tok, nil
}

// peek returns the next token of the current line without consuming it.
func (c *cursor) peek() lexer.Token {
	if c.atEOL() {
		return lexer.Token{Type: tokEOL}
	}
	return c.toks[c.pos]
}

// expect consumes the next token and checks its value.
func (c *cursor) expect(value string) error {
	tok, err := c.next(false)
	if err != nil {
		return fmt.Errorf("expected %q", value)
	}
	if tok.Value != value {
		return fmt.Errorf("expected %q", value)
	}
	return nil
}

// doneWithLine checks that no tokens remain on the line and advances to
// the next one.
func (c *cursor) doneWithLine() error {
	if !c.atEOL() {
		return fmt.Errorf("spurious tokens after expected end of line")
	}
	if !c.atEOF() {
		c.pos++
	}
	return nil
}

// skipBlankLines advances over empty lines.
func (c *cursor) skipBlankLines() {
	for !c.atEOF() && c.toks[c.pos].Type == tokEOL {
		c.pos++
	}
}
