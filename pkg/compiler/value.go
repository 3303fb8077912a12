package compiler

import (
	"fmt"
	"strings"
)

// Value is the result of compiling an expression. The set of
// implementations is closed to this package.
type Value interface {
	valueNode()
	String() string
}

// ConstantInt is known at compile time and costs nothing at run time.
type ConstantInt struct {
	Value int32
}

// StorageRef names a scoreboard score: a slot (the score holder) in a
// block's objective. Two refs are the same location when they compare equal.
type StorageRef struct {
	Block string
	Slot  string
}

// UndefinedRef is a declared variable that was never assigned.
type UndefinedRef struct {
	Block string
	Slot  string
}

// FunctionRef is the value of a function declaration.
type FunctionRef struct {
	Name string
}

// Undefined is produced by statements that yield nothing, like raw code or
// a call.
type Undefined struct{}

func (ConstantInt) valueNode()  {}
func (StorageRef) valueNode()   {}
func (UndefinedRef) valueNode() {}
func (FunctionRef) valueNode()  {}
func (Undefined) valueNode()    {}

func (v ConstantInt) String() string  { return fmt.Sprintf("%d", v.Value) }
func (v StorageRef) String() string   { return v.Slot + " " + v.Block }
func (v UndefinedRef) String() string { return v.Slot + " " + v.Block }
func (v FunctionRef) String() string  { return "function " + v.Name }
func (Undefined) String() string      { return "undefined" }

// TypeName is the type of a value as it appears in diagnostics.
func TypeName(v Value) string {
	switch v.(type) {
	case ConstantInt, StorageRef:
		return "int"
	case UndefinedRef, Undefined:
		return "undefined"
	case FunctionRef:
		return "function"
	}
	panic(fmt.Sprintf("compiler: unhandled value %T", v))
}

// InstructionBlock is one compiled function: a name and its commands in
// execution order.
type InstructionBlock struct {
	Name     string
	Commands []string
}

func (b *InstructionBlock) emit(format string, args ...any) {
	b.Commands = append(b.Commands, fmt.Sprintf(format, args...))
}

// Text joins the commands with newlines, ending with one.
func (b InstructionBlock) Text() string {
	if len(b.Commands) == 0 {
		return ""
	}
	return strings.Join(b.Commands, "\n") + "\n"
}
