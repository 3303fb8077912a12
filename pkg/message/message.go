package message

import (
	"fmt"

	"github.com/pkg/errors"
)

// Process identifies the stage that produced a diagnostic. It is the first
// digit of a message code.
type Process int

const (
	Parser Process = iota
	Compiler
)

// Severity of a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "Warning"
	}
	return "Error"
}

func (s Severity) letter() byte {
	if s == Warning {
		return 'W'
	}
	return 'E'
}

// Kind is the closed catalogue of diagnostics.
type Kind int

const (
	IllegalCharacter Kind = iota
	MissingExpression
	MissingMemberDeclaration
	MissingMemberName
	MissingMemberType
	MissingMemberTypeOrValueAssignment
	MissingCase
	MissingCaseClosure
	MissingCaseSeparatorOrClosure
	MissingBlock
	MissingBlockClosure
	MissingBlockSeparatorOrClosure

	UnknownType
	IntegerBoundsExceeded
	TypeMismatch
	UnknownMember
	MemberRedeclaration
	ArgumentCountMismatch
	DivisionByZero
	InvalidMemberName

	kindCount
)

type kindInfo struct {
	process  Process
	number   int
	severity Severity
	name     string
}

var kinds = [kindCount]kindInfo{
	IllegalCharacter:                   {Parser, 0, Error, "Illegal character"},
	MissingExpression:                  {Parser, 1, Error, "Missing expression"},
	MissingMemberDeclaration:           {Parser, 2, Error, "Missing member declaration"},
	MissingMemberName:                  {Parser, 3, Error, "Missing member name"},
	MissingMemberType:                  {Parser, 4, Error, "Missing member type"},
	MissingMemberTypeOrValueAssignment: {Parser, 5, Error, "Missing member type or value assignment"},
	MissingCase:                        {Parser, 6, Error, "Missing case"},
	MissingCaseClosure:                 {Parser, 7, Error, "Missing case closure"},
	MissingCaseSeparatorOrClosure:      {Parser, 8, Error, "Missing case separator or closure"},
	MissingBlock:                       {Parser, 9, Error, "Missing block"},
	MissingBlockClosure:                {Parser, 10, Error, "Missing block closure"},
	MissingBlockSeparatorOrClosure:     {Parser, 11, Error, "Missing block separator or closure"},

	UnknownType:           {Compiler, 0, Error, "Unknown type"},
	IntegerBoundsExceeded: {Compiler, 1, Error, "Integer bounds exceeded"},
	TypeMismatch:          {Compiler, 2, Error, "Type mismatch"},
	UnknownMember:         {Compiler, 3, Error, "Unknown member"},
	MemberRedeclaration:   {Compiler, 4, Error, "Member redeclaration"},
	ArgumentCountMismatch: {Compiler, 5, Error, "Argument count mismatch"},
	DivisionByZero:        {Compiler, 6, Error, "Division by zero"},
	InvalidMemberName:     {Compiler, 7, Error, "Invalid member name"},
}

func (k Kind) info() kindInfo {
	if k < 0 || k >= kindCount {
		panic(fmt.Sprintf("message: unknown kind %d", int(k)))
	}
	return kinds[k]
}

// Code is the stable identifier of a kind, e.g. "ES104E".
func (k Kind) Code() string {
	i := k.info()
	return fmt.Sprintf("ES%d%02d%c", i.process, i.number, i.severity.letter())
}

// Name is the human readable title of a kind.
func (k Kind) Name() string { return k.info().name }

func (k Kind) Severity() Severity { return k.info().severity }

func (k Kind) Process() Process { return k.info().process }

func (k Kind) String() string { return k.Code() }

// Message is a diagnostic pointing at a span of source text.
type Message struct {
	Kind    Kind
	Details string
	Cursor  Cursor
}

// New builds a message. Detail helpers below produce the usual wording.
func New(kind Kind, details string, cursor Cursor) *Message {
	return &Message{Kind: kind, Details: details, Cursor: cursor}
}

func (m *Message) Error() string {
	return fmt.Sprintf("%s %s: %s", m.Kind.Code(), m.Cursor, m.Details)
}

// AsMessage finds a diagnostic in err's chain.
func AsMessage(err error) (*Message, bool) {
	var m *Message
	if errors.As(err, &m) {
		return m, true
	}
	return nil, false
}

func IllegalCharacterDetails(character string) string {
	return fmt.Sprintf("Character '%s' is not allowed", character)
}

func MissingAnyExpressionDetails() string {
	return "Expected any expression"
}

func MissingExpressionDetails(expressionType string) string {
	return fmt.Sprintf("Expected %s expression", expressionType)
}

func MissingMemberTypeOrValueAssignmentDetails(memberType string) string {
	return fmt.Sprintf("Expected ':' to declare %s type or '=' to assign a value", memberType)
}

func MissingMemberTypeDetails(memberType string) string {
	return fmt.Sprintf("Expected %s type", memberType)
}

func MissingMemberDeclarationDetails(memberType string) string {
	return fmt.Sprintf("Expected ':' to declare %s type", memberType)
}

func MissingMemberNameDetails(memberType string) string {
	return fmt.Sprintf("Expected %s name", memberType)
}

func MissingCaseDetails(caseType string) string {
	return fmt.Sprintf("Expected '(' to open %s", caseType)
}

func MissingCaseClosureDetails() string {
	return "Expected ')'"
}

func MissingCaseSeparatorOrClosureDetails() string {
	return "Expected ',' or ')'"
}

func MissingBlockDetails() string {
	return "Expected '{' to open a block"
}

func MissingBlockClosureDetails() string {
	return "Expected '}'"
}

func MissingBlockSeparatorOrClosureDetails() string {
	return "Expected a new line or '}'"
}

func MissingStatementSeparatorDetails() string {
	return "Expected a new line"
}

func UnknownTypeDetails(typeName string) string {
	return fmt.Sprintf("Type \"%s\" does not exist in this scope", typeName)
}

func IntegerBoundsExceededDetails(bits int) string {
	return fmt.Sprintf("Provided integer exceeds the %d bit limit", bits)
}

func TypeMismatchDetails(expected, got string) string {
	return fmt.Sprintf("Expected value of type %s, got %s", expected, got)
}

func UnknownMemberDetails(memberType, name string) string {
	return fmt.Sprintf("%s '%s' is not declared in this scope", memberType, name)
}

func MemberRedeclarationDetails(memberType, name string) string {
	return fmt.Sprintf("%s '%s' had already been declared", memberType, name)
}

func ArgumentCountMismatchDetails(function string, expected, got int) string {
	return fmt.Sprintf("Function '%s' takes %d argument(s), got %d", function, expected, got)
}

func DivisionByZeroDetails() string {
	return "Constant expression divides by zero"
}

func InvalidFunctionNameDetails(name string) string {
	return fmt.Sprintf("Function name '%s' must only use lowercase letters and digits", name)
}
