package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Zorby-dev/ender-script/pkg/message"
)

type SymbolKind int

const (
	VariableSymbol SymbolKind = iota
	FunctionSymbol
)

// String is the member type used in diagnostics.
func (k SymbolKind) String() string {
	if k == FunctionSymbol {
		return "Function"
	}
	return "Variable"
}

// Symbol is a name bound in a scope.
type Symbol struct {
	Name string
	Kind SymbolKind

	// Ref is the score a variable lives in.
	Ref StorageRef

	// Parameters of a function, in declaration order.
	Parameters []Parameter

	Cursor message.Cursor
}

// Scope maps names to symbols for one block. Lookup never consults the
// parent: a function body only sees its own declarations and parameters.
type Scope struct {
	Block *InstructionBlock

	// Parent is the index of the enclosing scope in the code generator's
	// scope list, or -1 at the top level.
	Parent int

	symbols map[string]Symbol
}

func newScope(block *InstructionBlock, parent int) *Scope {
	return &Scope{Block: block, Parent: parent, symbols: make(map[string]Symbol)}
}

// Declare binds sym. It returns false when the name is already bound.
func (s *Scope) Declare(sym Symbol) bool {
	if _, exists := s.symbols[sym.Name]; exists {
		return false
	}
	s.symbols[sym.Name] = sym
	return true
}

func (s *Scope) Lookup(name string) (Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

// Variable returns the score a variable called name would live in.
func (s *Scope) Variable(name string) StorageRef {
	return StorageRef{Block: s.Block.Name, Slot: "$" + name}
}

// String dumps the scope sorted by name.
func (s *Scope) String() string {
	names := make([]string, 0, len(s.symbols))
	for name := range s.symbols {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "scope %s (parent %d)\n", s.Block.Name, s.Parent)
	for _, name := range names {
		sym := s.symbols[name]
		switch sym.Kind {
		case VariableSymbol:
			fmt.Fprintf(&b, "  %-10s variable %s\n", name, sym.Ref)
		case FunctionSymbol:
			params := make([]string, len(sym.Parameters))
			for i, p := range sym.Parameters {
				params[i] = p.String()
			}
			fmt.Fprintf(&b, "  %-10s function (%s)\n", name, strings.Join(params, ", "))
		}
	}
	return b.String()
}
