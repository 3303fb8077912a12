package compiler

import (
	"fmt"
	"strings"

	"github.com/Zorby-dev/ender-script/pkg/message"
)

// Expression is implemented by every AST node. Statements are expressions
// too: a declaration compiles to a value like anything else. The set of
// implementations is closed to this package.
type Expression interface {
	expressionNode()
	// Span is the source range an error about this node points at.
	Span() message.Cursor
	String() string
}

// Type is a type annotation such as the "int" in `let x: int`.
type Type struct {
	Name   string
	Cursor message.Cursor
}

func (t *Type) String() string { return t.Name }

// Parameter is one `name: type` entry of a function's parameter list.
type Parameter struct {
	Name   string
	Type   Type
	Cursor message.Cursor
}

func (p Parameter) String() string { return p.Name + ": " + p.Type.Name }

// VariableDeclaration introduces a variable. At least one of Type and Value
// is set.
//
//	let x: int = 5
//	    ^  ^^^   ^  Name, Type, Value
type VariableDeclaration struct {
	Name   string
	Type   *Type
	Value  Expression
	Cursor message.Cursor
}

// VariableAssign stores a value into an already declared variable.
//
//	x = x + 1
type VariableAssign struct {
	Name   string
	Value  Expression
	Cursor message.Cursor
}

// FunctionDeclaration declares a function and its body.
//
//	function add(a: int, b: int): int {
//	    let c = a + b
//	}
type FunctionDeclaration struct {
	Name       string
	Parameters []Parameter
	ReturnType *Type
	Body       []Expression
	Cursor     message.Cursor
}

// FunctionCall invokes a declared function.
//
//	add(1, x)
type FunctionCall struct {
	Name      string
	Arguments []Expression
	Cursor    message.Cursor
}

// RawCode is emitted into the current block verbatim.
//
//	raw "say hi"
type RawCode struct {
	Text   string
	Cursor message.Cursor
}

type Addition struct {
	Left, Right Expression
	Cursor      message.Cursor
}

type Subtraction struct {
	Left, Right Expression
	Cursor      message.Cursor
}

type Multiplication struct {
	Left, Right Expression
	Cursor      message.Cursor
}

type Division struct {
	Left, Right Expression
	Cursor      message.Cursor
}

// IntegerLiteral holds the parsed literal. It is range checked against the
// 32-bit scoreboard limit only when compiled.
type IntegerLiteral struct {
	Value  int64
	Cursor message.Cursor
}

type StringLiteral struct {
	Value  string
	Cursor message.Cursor
}

// VariableAccess is a read of a named variable.
type VariableAccess struct {
	Name   string
	Cursor message.Cursor
}

func (*VariableDeclaration) expressionNode() {}
func (*VariableAssign) expressionNode()      {}
func (*FunctionDeclaration) expressionNode() {}
func (*FunctionCall) expressionNode()        {}
func (*RawCode) expressionNode()             {}
func (*Addition) expressionNode()            {}
func (*Subtraction) expressionNode()         {}
func (*Multiplication) expressionNode()      {}
func (*Division) expressionNode()            {}
func (*IntegerLiteral) expressionNode()      {}
func (*StringLiteral) expressionNode()       {}
func (*VariableAccess) expressionNode()      {}

func (e *VariableDeclaration) Span() message.Cursor { return e.Cursor }
func (e *VariableAssign) Span() message.Cursor      { return e.Cursor }
func (e *FunctionDeclaration) Span() message.Cursor { return e.Cursor }
func (e *FunctionCall) Span() message.Cursor        { return e.Cursor }
func (e *RawCode) Span() message.Cursor             { return e.Cursor }
func (e *Addition) Span() message.Cursor            { return e.Cursor }
func (e *Subtraction) Span() message.Cursor         { return e.Cursor }
func (e *Multiplication) Span() message.Cursor      { return e.Cursor }
func (e *Division) Span() message.Cursor            { return e.Cursor }
func (e *IntegerLiteral) Span() message.Cursor      { return e.Cursor }
func (e *StringLiteral) Span() message.Cursor       { return e.Cursor }
func (e *VariableAccess) Span() message.Cursor      { return e.Cursor }

func (e *VariableDeclaration) String() string {
	var b strings.Builder
	b.WriteString("let " + e.Name)
	if e.Type != nil {
		b.WriteString(": " + e.Type.Name)
	}
	if e.Value != nil {
		b.WriteString(" = " + e.Value.String())
	}
	return b.String()
}

func (e *VariableAssign) String() string { return e.Name + " = " + e.Value.String() }

func (e *FunctionDeclaration) String() string {
	params := make([]string, len(e.Parameters))
	for i, p := range e.Parameters {
		params[i] = p.String()
	}
	ret := ""
	if e.ReturnType != nil {
		ret = ": " + e.ReturnType.Name
	}
	body := make([]string, len(e.Body))
	for i, s := range e.Body {
		body[i] = s.String()
	}
	return fmt.Sprintf("function %s(%s)%s { %s }", e.Name, strings.Join(params, ", "), ret, strings.Join(body, "; "))
}

func (e *FunctionCall) String() string { return e.Name + "(" + joinExpressions(e.Arguments) + ")" }

func (e *RawCode) String() string        { return fmt.Sprintf("raw %q", e.Text) }
func (e *Addition) String() string       { return fmt.Sprintf("(%s + %s)", e.Left, e.Right) }
func (e *Subtraction) String() string    { return fmt.Sprintf("(%s - %s)", e.Left, e.Right) }
func (e *Multiplication) String() string { return fmt.Sprintf("(%s * %s)", e.Left, e.Right) }
func (e *Division) String() string       { return fmt.Sprintf("(%s / %s)", e.Left, e.Right) }
func (e *IntegerLiteral) String() string { return fmt.Sprintf("%d", e.Value) }
func (e *StringLiteral) String() string  { return fmt.Sprintf("%q", e.Value) }
func (e *VariableAccess) String() string { return e.Name }

func joinExpressions(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
