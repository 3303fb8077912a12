package compiler

import "fmt"

// Walk calls fn for e and then, while fn returns true, for each of its
// children in source order.
func Walk(e Expression, fn func(Expression) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch n := e.(type) {
	case *VariableDeclaration:
		Walk(n.Value, fn)
	case *VariableAssign:
		Walk(n.Value, fn)
	case *FunctionDeclaration:
		for _, s := range n.Body {
			Walk(s, fn)
		}
	case *FunctionCall:
		for _, arg := range n.Arguments {
			Walk(arg, fn)
		}
	case *Addition:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Subtraction:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Multiplication:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Division:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *RawCode, *IntegerLiteral, *StringLiteral, *VariableAccess:
		// leaves
	default:
		panic(fmt.Sprintf("compiler: unhandled expression %T", e))
	}
}

// readsVariable reports whether evaluating e reads or writes the variable
// called name. Nested function bodies have their own scope and are skipped.
func readsVariable(e Expression, name string) bool {
	found := false
	Walk(e, func(n Expression) bool {
		switch n := n.(type) {
		case *VariableAccess:
			found = found || n.Name == name
		case *VariableAssign:
			found = found || n.Name == name
		case *FunctionDeclaration:
			return false
		}
		return !found
	})
	return found
}

// operands returns the children of a binary operation.
func operands(e Expression) (left, right Expression, ok bool) {
	switch n := e.(type) {
	case *Addition:
		return n.Left, n.Right, true
	case *Subtraction:
		return n.Left, n.Right, true
	case *Multiplication:
		return n.Left, n.Right, true
	case *Division:
		return n.Left, n.Right, true
	}
	return nil, nil, false
}

// canTarget reports whether value can be computed straight into the
// variable called name. The leftmost operand of the operation chain may be
// name itself since it is read before the first write; nothing else may
// touch it.
func canTarget(value Expression, name string) bool {
	for {
		left, right, ok := operands(value)
		if !ok {
			if access, isAccess := value.(*VariableAccess); isAccess && access.Name == name {
				return true
			}
			return !readsVariable(value, name)
		}
		if readsVariable(right, name) {
			return false
		}
		value = left
	}
}
