package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope(t *testing.T) {
	block := &InstructionBlock{Name: "main"}
	s := newScope(block, -1)

	x := Symbol{Name: "x", Kind: VariableSymbol, Ref: s.Variable("x")}
	require.True(t, s.Declare(x))
	assert.False(t, s.Declare(Symbol{Name: "x", Kind: FunctionSymbol}), "names are unique per scope")

	got, ok := s.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, StorageRef{Block: "main", Slot: "$x"}, got.Ref)

	_, ok = s.Lookup("y")
	assert.False(t, ok)
}

func TestScopeDoesNotSeeParent(t *testing.T) {
	outer := newScope(&InstructionBlock{Name: "main"}, -1)
	outer.Declare(Symbol{Name: "x", Kind: VariableSymbol, Ref: outer.Variable("x")})

	inner := newScope(&InstructionBlock{Name: "f"}, 0)
	_, ok := inner.Lookup("x")
	assert.False(t, ok)
	assert.Equal(t, 0, inner.Parent)
}

func TestScopeString(t *testing.T) {
	s := newScope(&InstructionBlock{Name: "main"}, -1)
	s.Declare(Symbol{Name: "b", Kind: VariableSymbol, Ref: s.Variable("b")})
	s.Declare(Symbol{Name: "add", Kind: FunctionSymbol, Parameters: []Parameter{
		{Name: "l", Type: Type{Name: "int"}},
		{Name: "r", Type: Type{Name: "int"}},
	}})
	s.Declare(Symbol{Name: "a", Kind: VariableSymbol, Ref: s.Variable("a")})

	expected := "scope main (parent -1)\n" +
		"  a          variable $a main\n" +
		"  add        function (l: int, r: int)\n" +
		"  b          variable $b main\n"
	assert.Equal(t, expected, s.String())
}

func TestValueTypeNames(t *testing.T) {
	assert.Equal(t, "int", TypeName(ConstantInt{Value: 1}))
	assert.Equal(t, "int", TypeName(StorageRef{Block: "main", Slot: "$x"}))
	assert.Equal(t, "undefined", TypeName(UndefinedRef{Block: "main", Slot: "$x"}))
	assert.Equal(t, "undefined", TypeName(Undefined{}))
	assert.Equal(t, "function", TypeName(FunctionRef{Name: "f"}))

	assert.True(t, StorageRef{Block: "main", Slot: "$x"} == StorageRef{Block: "main", Slot: "$x"})
	assert.False(t, StorageRef{Block: "main", Slot: "$x"} == StorageRef{Block: "f", Slot: "$x"})
}
