package compiler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zorby-dev/ender-script/pkg/message"
)

var ignoreCursors = cmpopts.IgnoreTypes(message.Cursor{})

// TestParse verifies that Parse produces the correct AST for valid inputs.
func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Expression
	}{
		{
			name:  "Typed declaration",
			input: "let x: int = 5",
			expected: []Expression{
				&VariableDeclaration{Name: "x", Type: &Type{Name: "int"}, Value: &IntegerLiteral{Value: 5}},
			},
		},
		{
			name:  "Untyped declaration",
			input: "let y = x",
			expected: []Expression{
				&VariableDeclaration{Name: "y", Value: &VariableAccess{Name: "x"}},
			},
		},
		{
			name:  "Declaration without value",
			input: "let z: int",
			expected: []Expression{
				&VariableDeclaration{Name: "z", Type: &Type{Name: "int"}},
			},
		},
		{
			name:  "Precedence",
			input: "1 + 2 * 3 - 4 / 5",
			expected: []Expression{
				&Subtraction{
					Left: &Addition{
						Left:  &IntegerLiteral{Value: 1},
						Right: &Multiplication{Left: &IntegerLiteral{Value: 2}, Right: &IntegerLiteral{Value: 3}},
					},
					Right: &Division{Left: &IntegerLiteral{Value: 4}, Right: &IntegerLiteral{Value: 5}},
				},
			},
		},
		{
			name:  "Left associativity",
			input: "a - b - c",
			expected: []Expression{
				&Subtraction{
					Left:  &Subtraction{Left: &VariableAccess{Name: "a"}, Right: &VariableAccess{Name: "b"}},
					Right: &VariableAccess{Name: "c"},
				},
			},
		},
		{
			name:  "Parentheses",
			input: "(a + b) * c",
			expected: []Expression{
				&Multiplication{
					Left:  &Addition{Left: &VariableAccess{Name: "a"}, Right: &VariableAccess{Name: "b"}},
					Right: &VariableAccess{Name: "c"},
				},
			},
		},
		{
			name:  "Integer separators and negatives",
			input: "let n = 1_000 + -2",
			expected: []Expression{
				&VariableDeclaration{Name: "n", Value: &Addition{
					Left:  &IntegerLiteral{Value: 1000},
					Right: &IntegerLiteral{Value: -2},
				}},
			},
		},
		{
			name:  "Assignment",
			input: "x = x + 1",
			expected: []Expression{
				&VariableAssign{Name: "x", Value: &Addition{Left: &VariableAccess{Name: "x"}, Right: &IntegerLiteral{Value: 1}}},
			},
		},
		{
			name:  "Call",
			input: "add(1, x * 2)\nnoop()",
			expected: []Expression{
				&FunctionCall{Name: "add", Arguments: []Expression{
					&IntegerLiteral{Value: 1},
					&Multiplication{Left: &VariableAccess{Name: "x"}, Right: &IntegerLiteral{Value: 2}},
				}},
				&FunctionCall{Name: "noop"},
			},
		},
		{
			name:  "Raw code",
			input: `raw "say \"hi\""`,
			expected: []Expression{
				&RawCode{Text: `say "hi"`},
			},
		},
		{
			name:  "Function",
			input: "function add(a: int, b: int): int {\n  let c = a + b\n\n  c\n}",
			expected: []Expression{
				&FunctionDeclaration{
					Name: "add",
					Parameters: []Parameter{
						{Name: "a", Type: Type{Name: "int"}},
						{Name: "b", Type: Type{Name: "int"}},
					},
					ReturnType: &Type{Name: "int"},
					Body: []Expression{
						&VariableDeclaration{Name: "c", Value: &Addition{Left: &VariableAccess{Name: "a"}, Right: &VariableAccess{Name: "b"}}},
						&VariableAccess{Name: "c"},
					},
				},
			},
		},
		{
			name:  "Empty function",
			input: "function f() {}",
			expected: []Expression{
				&FunctionDeclaration{Name: "f"},
			},
		},
		{
			name:  "Function with blank lines only",
			input: "function f() {\n\n}",
			expected: []Expression{
				&FunctionDeclaration{Name: "f"},
			},
		},
		{
			name:  "Statements separated by blank lines",
			input: "\n\nlet a = 1\n\n\nlet b = 2\n\n",
			expected: []Expression{
				&VariableDeclaration{Name: "a", Value: &IntegerLiteral{Value: 1}},
				&VariableDeclaration{Name: "b", Value: &IntegerLiteral{Value: 2}},
			},
		},
		{
			name:     "Empty program",
			input:    "\n\n",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSource("test.es", tt.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.expected, got, ignoreCursors); diff != "" {
				t.Errorf("AST mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestParseErrors verifies the diagnostic kind and where it points.
func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    message.Kind
		details string
		at      string // source text at the start of the reported span
	}{
		{"Let without type or value", "let z", message.MissingMemberTypeOrValueAssignment,
			"Expected ':' to declare variable type or '=' to assign a value", ""},
		{"Let without name", "let = 5", message.MissingMemberName, "Expected variable name", "="},
		{"Let with colon but no type", "let x: = 5", message.MissingMemberType, "Expected variable type", "="},
		{"Illegal character", "let x = $", message.IllegalCharacter, "Character '$' is not allowed", "$"},
		{"Illegal character after statement", "let x = 5 #", message.IllegalCharacter, "Character '#' is not allowed", "#"},
		{"Missing expression", "let x = )", message.MissingExpression, "Expected any expression", ")"},
		{"Missing operand", "1 +", message.MissingExpression, "Expected any expression", ""},
		{"Unclosed parenthesis", "(1 + 2", message.MissingCaseClosure, "Expected ')'", ""},
		{"Missing separator", "let x = 5 let y = 6", message.MissingBlockSeparatorOrClosure, "Expected a new line", "let y"},
		{"Function without name", "function () {}", message.MissingMemberName, "Expected function name", "("},
		{"Function without parameter list", "function f {}", message.MissingCase, "Expected '(' to open parameter list", "{"},
		{"Parameter without name", "function f(: int) {}", message.MissingMemberName, "Expected parameter name", ":"},
		{"Parameter without colon", "function f(a) {}", message.MissingMemberDeclaration, "Expected ':' to declare parameter type", ")"},
		{"Parameter without type", "function f(a: ) {}", message.MissingMemberType, "Expected parameter type", ")"},
		{"Parameter without separator", "function f(a: int b: int) {}", message.MissingCaseSeparatorOrClosure, "Expected ',' or ')'", "b"},
		{"Missing return type", "function f(): {}", message.MissingMemberType, "Expected return type", "{"},
		{"Function without block", "function f()\nlet x = 1", message.MissingBlock, "Expected '{' to open a block", "\n"},
		{"Statements on one line in block", "function f() {\n  let a = 1 let b = 2\n}", message.MissingBlockSeparatorOrClosure,
			"Expected a new line or '}'", "let b"},
		{"Unclosed block", "function f() {\n  let a = 1\n", message.MissingBlockClosure, "Expected '}'", ""},
		{"Unclosed empty block", "function f() {", message.MissingBlockClosure, "Expected '}'", ""},
		{"Block closed by another token", "function f() {\n  let a = 1\n)", message.MissingBlockSeparatorOrClosure, "Expected a new line or '}'", ")"},
		{"Broken statement in block", "function f() {\n  let a = 1\n  let b\n}", message.MissingMemberTypeOrValueAssignment,
			"Expected ':' to declare variable type or '=' to assign a value", "\n"},
		{"Raw without string", "raw 5", message.MissingExpression, "Expected string expression", "5"},
		{"Unclosed call", "f(1, 2", message.MissingCaseSeparatorOrClosure, "Expected ',' or ')'", ""},
		{"Integer beyond 64 bits", "99999999999999999999", message.IntegerBoundsExceeded, "Provided integer exceeds the 64 bit limit", "99999999999999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSource("test.es", tt.input)
			require.Error(t, err)
			m, ok := message.AsMessage(err)
			require.True(t, ok, "expected a diagnostic, got %v", err)
			assert.Equal(t, tt.kind, m.Kind, "got %s: %s", m.Kind.Code(), m.Details)
			assert.Equal(t, tt.details, m.Details)
			assert.Equal(t, tt.at, tt.input[m.Cursor.Start.Index:m.Cursor.Start.Index+len(tt.at)])
		})
	}
}

// TestParseSpans checks that compound nodes span their first to last token.
func TestParseSpans(t *testing.T) {
	src := "let total = a + b * 2\nfunction f(x: int) {\n  x\n}"
	got, err := ParseSource("spans.es", src)
	require.NoError(t, err)
	require.Len(t, got, 2)

	decl := got[0].(*VariableDeclaration)
	assert.Equal(t, "let total = a + b * 2", decl.Span().Slice())
	assert.Equal(t, "a + b * 2", decl.Value.Span().Slice())
	assert.Equal(t, "b * 2", decl.Value.(*Addition).Right.Span().Slice())

	fn := got[1].(*FunctionDeclaration)
	assert.Equal(t, "function f(x: int) {\n  x\n}", fn.Span().Slice())
	assert.Equal(t, "x: int", fn.Parameters[0].Cursor.Slice())
	assert.Equal(t, 2, fn.Span().Start.Line)
	assert.Equal(t, "spans.es", fn.Span().FileName)
}

// TestParseRewind makes sure a failed tentative statement leaves the parser
// exactly where it started.
func TestParseRewind(t *testing.T) {
	p := NewParser(Lex("test.es", "}"))
	_, err := p.parseSequence(RBrace, message.MissingBlockSeparatorOrClosureDetails())
	require.NoError(t, err)
	assert.Equal(t, 0, p.pos)
	assert.Equal(t, RBrace, p.current().Type)

	// A statement that fails on its first token is rewound and the sequence
	// reports the missing separator there, not the statement's own error.
	_, err = ParseSource("test.es", "let x = 1\n)")
	m, ok := message.AsMessage(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, message.MissingBlockSeparatorOrClosure, m.Kind)
	assert.Equal(t, "Expected a new line", m.Details)
	assert.Equal(t, ")", m.Cursor.Slice())
}
