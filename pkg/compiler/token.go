package compiler

import (
	"fmt"

	"github.com/Zorby-dev/ender-script/pkg/message"
)

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EoF TokenType = iota // sentinel: end of input

	// Literals
	Identifier // variable / function / type name
	Integer    // -?\d+(_\d+)*
	String     // "..."

	// Keywords
	Let      // "let"
	Function // "function"
	Raw      // "raw"

	// Punctuation
	Assign // =
	Colon  // :
	Comma  // ,
	LParen // (
	RParen // )
	LBrace // {
	RBrace // }

	// Arithmetic operators
	Plus  // +
	Minus // -
	Star  // *
	Slash // /

	NewLine // \n
	Error   // any character the language does not allow
)

var tokenNames = [...]string{
	EoF:        "end of file",
	Identifier: "identifier",
	Integer:    "integer",
	String:     "string",
	Let:        "let",
	Function:   "function",
	Raw:        "raw",
	Assign:     "=",
	Colon:      ":",
	Comma:      ",",
	LParen:     "(",
	RParen:     ")",
	LBrace:     "{",
	RBrace:     "}",
	Plus:       "+",
	Minus:      "-",
	Star:       "*",
	Slash:      "/",
	NewLine:    "new line",
	Error:      "illegal character",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is one lexeme together with the span it was read from.
type Token struct {
	Type   TokenType
	Text   string
	Cursor message.Cursor
}

func (t Token) String() string {
	if t.Text == "" {
		return t.Type.String()
	}
	return fmt.Sprintf("%s %q", t.Type, t.Text)
}
