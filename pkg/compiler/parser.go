package compiler

import (
	"strconv"
	"strings"

	"github.com/Zorby-dev/ender-script/pkg/message"
)

// Parser consumes the flat token slice produced by the Lexer and builds an AST.
//
// Grammar:
//
//	program    = sequence EOF
//	sequence   = NL* (statement (NL+ statement)*)? NL*
//	statement  = letDecl | funcDecl | rawCode | math
//	letDecl    = "let" IDENTIFIER (":" IDENTIFIER)? ("=" statement)?
//	funcDecl   = "function" IDENTIFIER "(" (param ("," param)*)? ")" (":" IDENTIFIER)? "{" sequence "}"
//	param      = IDENTIFIER ":" IDENTIFIER
//	rawCode    = "raw" statement                  (must be a STRING)
//	math       = term (("+" | "-") term)*
//	term       = atom (("*" | "/") atom)*
//	atom       = INTEGER | STRING
//	           | IDENTIFIER "=" statement
//	           | IDENTIFIER "(" (math ("," math)*)? ")"
//	           | IDENTIFIER
//	           | "(" math ")"
//
// A `let` needs at least one of its type and its value. Every statement in a
// sequence is parsed tentatively: when one fails the position is restored and
// the sequence ends, leaving the enclosing rule to accept the token (a `}` or
// EOF). If it cannot, the failed statement's own diagnostic is reported when
// that statement got past its first token.
type Parser struct {
	tokens []Token
	pos    int
}

func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// current returns the token under the cursor. Running off the end yields the
// final EoF token.
func (p *Parser) current() Token {
	return p.at(p.pos)
}

// peek returns the token immediately after the current one.
func (p *Parser) peek() Token {
	return p.at(p.pos + 1)
}

func (p *Parser) at(i int) Token {
	if len(p.tokens) == 0 {
		return Token{Type: EoF}
	}
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) checkpoint() int { return p.pos }

func (p *Parser) rewind(cp int) { p.pos = cp }

func (p *Parser) fail(kind message.Kind, details string, tok Token) *message.Message {
	return message.New(kind, details, tok.Cursor)
}

func (p *Parser) illegal(tok Token) *message.Message {
	return p.fail(message.IllegalCharacter, message.IllegalCharacterDetails(tok.Text), tok)
}

// expect requires the current token to be tt without consuming it. An Error
// token is always reported as an illegal character.
func (p *Parser) expect(tt TokenType, kind message.Kind, details string) (Token, error) {
	tok := p.current()
	if tok.Type == tt {
		return tok, nil
	}
	if tok.Type == Error {
		return tok, p.illegal(tok)
	}
	return tok, p.fail(kind, details, tok)
}

func (p *Parser) expectAndAdvance(tt TokenType, kind message.Kind, details string) (Token, error) {
	tok, err := p.expect(tt, kind, details)
	if err != nil {
		return tok, err
	}
	return p.advance(), nil
}

// suspect reports whether the current token is tt. It only fails on an Error
// token.
func (p *Parser) suspect(tt TokenType) (bool, error) {
	tok := p.current()
	if tok.Type == Error {
		return false, p.illegal(tok)
	}
	return tok.Type == tt, nil
}

func (p *Parser) suspectAndAdvance(tt TokenType) (Token, bool, error) {
	ok, err := p.suspect(tt)
	if err != nil || !ok {
		return p.current(), false, err
	}
	return p.advance(), true, nil
}

// suspectOperator consumes the current token if it is one of ops.
func (p *Parser) suspectOperator(ops ...TokenType) (TokenType, bool, error) {
	for _, op := range ops {
		if tok, ok, err := p.suspectAndAdvance(op); err != nil || ok {
			return tok.Type, ok, err
		}
	}
	return EoF, false, nil
}

func (p *Parser) skipNewLines() error {
	for {
		_, ok, err := p.suspectAndAdvance(NewLine)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

// parseSequence parses newline separated statements up to, but not
// including, a closer token.
func (p *Parser) parseSequence(closer TokenType, separatorDetails string) ([]Expression, error) {
	var stmts []Expression
	var stmtErr error

	if err := p.skipNewLines(); err != nil {
		return nil, err
	}
	for {
		cp := p.checkpoint()
		stmt, err := p.parseStatement()
		if err != nil {
			p.rewind(cp)
			stmtErr = err
			break
		}
		stmts = append(stmts, stmt)

		sep, err := p.suspect(NewLine)
		if err != nil {
			return nil, err
		}
		if !sep {
			break
		}
		if err := p.skipNewLines(); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(closer, message.MissingBlockSeparatorOrClosure, separatorDetails); err != nil {
		// A statement that failed past its first token explains the problem
		// better than the separator diagnostic does.
		if m, ok := message.AsMessage(stmtErr); ok && m.Cursor.Start.Index > p.current().Cursor.Start.Index {
			return nil, stmtErr
		}
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) parseStatement() (Expression, error) {
	switch p.current().Type {
	case Let:
		return p.parseVariableDeclaration()
	case Function:
		return p.parseFunctionDeclaration()
	case Raw:
		return p.parseRawCode()
	}
	return p.parseMath()
}

func (p *Parser) parseVariableDeclaration() (Expression, error) {
	start := p.advance() // let

	name, err := p.expectAndAdvance(Identifier, message.MissingMemberName, message.MissingMemberNameDetails("variable"))
	if err != nil {
		return nil, err
	}
	decl := &VariableDeclaration{Name: name.Text}
	end := name.Cursor

	if _, ok, err := p.suspectAndAdvance(Colon); err != nil {
		return nil, err
	} else if ok {
		t, err := p.expectAndAdvance(Identifier, message.MissingMemberType, message.MissingMemberTypeDetails("variable"))
		if err != nil {
			return nil, err
		}
		decl.Type = &Type{Name: t.Text, Cursor: t.Cursor}
		end = t.Cursor
	}

	if _, ok, err := p.suspectAndAdvance(Assign); err != nil {
		return nil, err
	} else if ok {
		value, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		decl.Value = value
		end = value.Span()
	}

	if decl.Type == nil && decl.Value == nil {
		return nil, p.fail(message.MissingMemberTypeOrValueAssignment,
			message.MissingMemberTypeOrValueAssignmentDetails("variable"), p.current())
	}
	decl.Cursor = start.Cursor.Merge(end)
	return decl, nil
}

func (p *Parser) parseFunctionDeclaration() (Expression, error) {
	start := p.advance() // function

	name, err := p.expectAndAdvance(Identifier, message.MissingMemberName, message.MissingMemberNameDetails("function"))
	if err != nil {
		return nil, err
	}
	decl := &FunctionDeclaration{Name: name.Text}

	if _, err := p.expectAndAdvance(LParen, message.MissingCase, message.MissingCaseDetails("parameter list")); err != nil {
		return nil, err
	}
	_, empty, err := p.suspectAndAdvance(RParen)
	if err != nil {
		return nil, err
	}
	for !empty {
		param, err := p.parseParameter()
		if err != nil {
			return nil, err
		}
		decl.Parameters = append(decl.Parameters, param)

		if _, more, err := p.suspectAndAdvance(Comma); err != nil {
			return nil, err
		} else if more {
			continue
		}
		if _, err := p.expectAndAdvance(RParen, message.MissingCaseSeparatorOrClosure,
			message.MissingCaseSeparatorOrClosureDetails()); err != nil {
			return nil, err
		}
		break
	}

	if _, ok, err := p.suspectAndAdvance(Colon); err != nil {
		return nil, err
	} else if ok {
		t, err := p.expectAndAdvance(Identifier, message.MissingMemberType, message.MissingMemberTypeDetails("return"))
		if err != nil {
			return nil, err
		}
		decl.ReturnType = &Type{Name: t.Text, Cursor: t.Cursor}
	}

	if _, err := p.expectAndAdvance(LBrace, message.MissingBlock, message.MissingBlockDetails()); err != nil {
		return nil, err
	}
	body, err := p.parseSequence(RBrace, message.MissingBlockSeparatorOrClosureDetails())
	if err != nil {
		if m, ok := message.AsMessage(err); ok && m.Kind == message.MissingBlockSeparatorOrClosure && p.current().Type == EoF {
			return nil, p.fail(message.MissingBlockClosure, message.MissingBlockClosureDetails(), p.current())
		}
		return nil, err
	}
	end := p.advance() // }

	decl.Body = body
	decl.Cursor = start.Cursor.Merge(end.Cursor)
	return decl, nil
}

func (p *Parser) parseParameter() (Parameter, error) {
	name, err := p.expectAndAdvance(Identifier, message.MissingMemberName, message.MissingMemberNameDetails("parameter"))
	if err != nil {
		return Parameter{}, err
	}
	if _, err := p.expectAndAdvance(Colon, message.MissingMemberDeclaration,
		message.MissingMemberDeclarationDetails("parameter")); err != nil {
		return Parameter{}, err
	}
	t, err := p.expectAndAdvance(Identifier, message.MissingMemberType, message.MissingMemberTypeDetails("parameter"))
	if err != nil {
		return Parameter{}, err
	}
	return Parameter{
		Name:   name.Text,
		Type:   Type{Name: t.Text, Cursor: t.Cursor},
		Cursor: name.Cursor.Merge(t.Cursor),
	}, nil
}

func (p *Parser) parseRawCode() (Expression, error) {
	start := p.advance() // raw

	value, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	lit, ok := value.(*StringLiteral)
	if !ok {
		return nil, message.New(message.MissingExpression, message.MissingExpressionDetails("string"), value.Span())
	}
	return &RawCode{Text: lit.Value, Cursor: start.Cursor.Merge(lit.Cursor)}, nil
}

// parseMath handles + and - (lowest precedence).
func (p *Parser) parseMath() (Expression, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op, ok, err := p.suspectOperator(Plus, Minus)
		if err != nil {
			return nil, err
		}
		if !ok {
			return left, nil
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		span := left.Span().Merge(right.Span())
		if op == Plus {
			left = &Addition{Left: left, Right: right, Cursor: span}
		} else {
			left = &Subtraction{Left: left, Right: right, Cursor: span}
		}
	}
}

// parseTerm handles * and /.
func (p *Parser) parseTerm() (Expression, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		op, ok, err := p.suspectOperator(Star, Slash)
		if err != nil {
			return nil, err
		}
		if !ok {
			return left, nil
		}
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		span := left.Span().Merge(right.Span())
		if op == Star {
			left = &Multiplication{Left: left, Right: right, Cursor: span}
		} else {
			left = &Division{Left: left, Right: right, Cursor: span}
		}
	}
}

func (p *Parser) parseAtom() (Expression, error) {
	tok := p.current()
	switch tok.Type {
	case Integer:
		p.advance()
		value, err := strconv.ParseInt(strings.ReplaceAll(tok.Text, "_", ""), 10, 64)
		if err != nil {
			return nil, p.fail(message.IntegerBoundsExceeded, message.IntegerBoundsExceededDetails(64), tok)
		}
		return &IntegerLiteral{Value: value, Cursor: tok.Cursor}, nil

	case String:
		p.advance()
		text := tok.Text[1 : len(tok.Text)-1]
		return &StringLiteral{Value: strings.ReplaceAll(text, `\"`, `"`), Cursor: tok.Cursor}, nil

	case Identifier:
		switch p.peek().Type {
		case Assign:
			p.advance()
			p.advance()
			value, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			return &VariableAssign{Name: tok.Text, Value: value, Cursor: tok.Cursor.Merge(value.Span())}, nil
		case LParen:
			p.advance()
			p.advance()
			return p.parseCall(tok)
		}
		p.advance()
		return &VariableAccess{Name: tok.Text, Cursor: tok.Cursor}, nil

	case LParen:
		p.advance()
		inner, err := p.parseMath()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectAndAdvance(RParen, message.MissingCaseClosure, message.MissingCaseClosureDetails()); err != nil {
			return nil, err
		}
		return inner, nil

	case Error:
		return nil, p.illegal(tok)
	}
	return nil, p.fail(message.MissingExpression, message.MissingAnyExpressionDetails(), tok)
}

// parseCall parses the argument list of a call; name and "(" are consumed.
func (p *Parser) parseCall(name Token) (Expression, error) {
	call := &FunctionCall{Name: name.Text}

	end, closed, err := p.suspectAndAdvance(RParen)
	if err != nil {
		return nil, err
	}
	for !closed {
		arg, err := p.parseMath()
		if err != nil {
			return nil, err
		}
		call.Arguments = append(call.Arguments, arg)

		if _, more, err := p.suspectAndAdvance(Comma); err != nil {
			return nil, err
		} else if more {
			continue
		}
		end, err = p.expectAndAdvance(RParen, message.MissingCaseSeparatorOrClosure,
			message.MissingCaseSeparatorOrClosureDetails())
		if err != nil {
			return nil, err
		}
		closed = true
	}
	call.Cursor = name.Cursor.Merge(end.Cursor)
	return call, nil
}

// Parse builds the top level statements of a program.
func Parse(tokens []Token) ([]Expression, error) {
	return NewParser(tokens).parseSequence(EoF, message.MissingStatementSeparatorDetails())
}

// ParseSource lexes and parses src; fileName only labels diagnostics.
func ParseSource(fileName, src string) ([]Expression, error) {
	return Parse(Lex(fileName, src))
}
