package compiler

import (
	"unicode/utf8"

	"github.com/Zorby-dev/ender-script/pkg/message"
)

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"let":      Let,
	"function": Function,
	"raw":      Raw,
}

// punctuation maps single characters to their TokenType.
var punctuation = map[byte]TokenType{
	'=': Assign,
	':': Colon,
	',': Comma,
	'(': LParen,
	')': RParen,
	'{': LBrace,
	'}': RBrace,
	'+': Plus,
	'-': Minus,
	'*': Star,
	'/': Slash,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src    string
	pos    int // byte index of the next character to consume
	cursor message.Cursor
	last   TokenType // type of the last token emitted
}

func newLexer(fileName, src string) *Lexer {
	return &Lexer{src: src, cursor: message.NewCursor(fileName, src), last: NewLine}
}

// peek returns the byte at the current position without advancing.
func (l *Lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the byte one position ahead of the current position.
func (l *Lexer) peek2() byte {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) {
		switch l.peek() {
		case ' ', '\t', '\f', '\r':
			l.pos++
		case '/':
			if l.peek2() != '/' {
				return
			}
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *Lexer) token(tt TokenType, start int) Token {
	return Token{Type: tt, Text: l.src[start:l.pos], Cursor: l.cursor.Span(start, l.pos)}
}

// scanIdent collects a full identifier or keyword.
func (l *Lexer) scanIdent() Token {
	start := l.pos
	for l.pos < len(l.src) && (isLetter(l.peek()) || isDigit(l.peek())) {
		l.pos++
	}
	tok := l.token(Identifier, start)
	if kw, ok := keywords[tok.Text]; ok {
		tok.Type = kw
	}
	return tok
}

// scanInteger collects digits with single underscores between digit groups.
// start is the first byte of the literal, a leading '-' included.
func (l *Lexer) scanInteger(start int) Token {
	for l.pos < len(l.src) {
		c := l.peek()
		if isDigit(c) || c == '_' && isDigit(l.peek2()) {
			l.pos++
			continue
		}
		break
	}
	return l.token(Integer, start)
}

// scanString collects a double quoted string; \" does not terminate it.
// An unterminated string is a single illegal '"'.
func (l *Lexer) scanString() Token {
	start := l.pos
	l.pos++ // opening quote
	for l.pos < len(l.src) {
		switch l.peek() {
		case '\\':
			if l.peek2() == '"' {
				l.pos += 2
				continue
			}
		case '"':
			l.pos++
			return l.token(String, start)
		}
		l.pos++
	}
	l.pos = start + 1
	return l.token(Error, start)
}

// endsOperand reports whether a token of this type can be the last token of
// an operand, in which case a following '-' is a binary minus.
func endsOperand(tt TokenType) bool {
	switch tt {
	case Identifier, Integer, String, RParen:
		return true
	}
	return false
}

func (l *Lexer) nextToken() Token {
	l.skipWhitespace()
	start := l.pos
	if l.pos >= len(l.src) {
		return l.token(EoF, start)
	}

	c := l.peek()
	switch {
	case c == '\n':
		l.pos++
		return l.token(NewLine, start)
	case isLetter(c):
		return l.scanIdent()
	case isDigit(c):
		return l.scanInteger(start)
	case c == '-' && isDigit(l.peek2()) && !endsOperand(l.last):
		l.pos++
		return l.scanInteger(start)
	case c == '"':
		return l.scanString()
	}

	if tt, ok := punctuation[c]; ok {
		l.pos++
		return l.token(tt, start)
	}

	_, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size
	return l.token(Error, start)
}

// Lex converts source text into a token slice terminated by EoF. Characters
// the language does not allow become Error tokens; the parser reports them.
func Lex(fileName, src string) []Token {
	l := newLexer(fileName, src)
	var tokens []Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Type == EoF {
			return tokens
		}
		l.last = tok.Type
	}
}
