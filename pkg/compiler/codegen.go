package compiler

import (
	"fmt"
	"math"
	"path"
	"regexp"

	"github.com/Zorby-dev/ender-script/pkg/message"
)

// DefaultNamespace is used for call commands when Options leaves it empty.
const DefaultNamespace = "enderscript"

// functionName matches names usable as a function resource path segment.
var functionName = regexp.MustCompile(`^[a-z0-9_.-]+$`)

// Options control how compiled blocks refer to each other.
type Options struct {
	// Namespace of the datapack the blocks are written to.
	Namespace string
	// Path is prepended to block names in call commands, e.g. the source
	// file stem when each file gets its own function folder.
	Path string
}

// Resource is the resource location of a block, as used by `function`.
func (o Options) Resource(block string) string {
	ns := o.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	return ns + ":" + path.Join(o.Path, block)
}

// Context is threaded through expression compilation. It is passed by value
// so a callee cannot change what its caller sees.
type Context struct {
	// PreferredDestination is where the caller wants the result to end up.
	PreferredDestination *StorageRef

	// scratch selects the temporary slot: $$temp, $$temp1, ...
	scratch int
}

func (c Context) withDestination(dest *StorageRef) Context {
	c.PreferredDestination = dest
	return c
}

// operand is the context for the right operand of a binary operation: no
// destination and a fresh temporary.
func (c Context) operand() Context {
	return Context{scratch: c.scratch + 1}
}

type arithmetic int

const (
	add arithmetic = iota
	subtract
	multiply
	divide
)

func (a arithmetic) symbol() string {
	return [...]string{"+", "-", "*", "/"}[a]
}

// fold evaluates an operation on constants with 32-bit wrap-around and
// flooring division, as scoreboards do.
func (a arithmetic) fold(x, y int32) int32 {
	switch a {
	case add:
		return x + y
	case subtract:
		return x - y
	case multiply:
		return x * y
	}
	q := x / y
	if x%y != 0 && (x < 0) != (y < 0) {
		q--
	}
	return q
}

// CodeGen walks an AST and emits scoreboard commands.
type CodeGen struct {
	opts   Options
	scopes []*Scope
	// current indexes the scope of the function being compiled.
	current int
	blocks  []InstructionBlock
	// names of every block handed out, so two functions never share a file.
	names map[string]bool
}

func newCodeGen(opts Options) *CodeGen {
	return &CodeGen{opts: opts, current: -1, names: make(map[string]bool)}
}

func (cg *CodeGen) scope() *Scope {
	return cg.scopes[cg.current]
}

func (cg *CodeGen) emit(format string, args ...any) {
	cg.scope().Block.emit(format, args...)
}

func (cg *CodeGen) scratch(ctx Context) StorageRef {
	slot := "$$temp"
	if ctx.scratch > 0 {
		slot = fmt.Sprintf("$$temp%d", ctx.scratch)
	}
	return StorageRef{Block: cg.scope().Block.Name, Slot: slot}
}

func (cg *CodeGen) set(dst StorageRef, v int32) {
	cg.emit("scoreboard players set %s %s %d", dst.Slot, dst.Block, v)
}

func (cg *CodeGen) operation(dst StorageRef, op string, src StorageRef) {
	cg.emit("scoreboard players operation %s %s %s %s %s", dst.Slot, dst.Block, op, src.Slot, src.Block)
}

// constant materializes v into a block local slot named after it.
func (cg *CodeGen) constant(v int32) StorageRef {
	ref := StorageRef{Block: cg.scope().Block.Name, Slot: fmt.Sprintf("%%%d", v)}
	cg.set(ref, v)
	return ref
}

// applyConstant performs dst op= v. Addition and subtraction use add/remove
// which only take non-negative amounts.
func (cg *CodeGen) applyConstant(dst StorageRef, op arithmetic, v int32) {
	if (op == add || op == subtract) && v != math.MinInt32 {
		if v < 0 {
			v = -v
			if op == add {
				op = subtract
			} else {
				op = add
			}
		}
		verb := "add"
		if op == subtract {
			verb = "remove"
		}
		cg.emit("scoreboard players %s %s %s %d", verb, dst.Slot, dst.Block, v)
		return
	}
	cg.operation(dst, op.symbol()+"=", cg.constant(v))
}

// store copies an int value into dst unless it already lives there.
func (cg *CodeGen) store(dst StorageRef, v Value, at message.Cursor) error {
	switch v := v.(type) {
	case ConstantInt:
		cg.set(dst, v.Value)
	case StorageRef:
		if v != dst {
			cg.operation(dst, "=", v)
		}
	default:
		return message.New(message.TypeMismatch, message.TypeMismatchDetails("int", TypeName(v)), at)
	}
	return nil
}

func (cg *CodeGen) compileExpr(e Expression, ctx Context) (Value, error) {
	switch n := e.(type) {
	case *VariableDeclaration:
		return cg.compileVariableDeclaration(n, ctx)
	case *VariableAssign:
		return cg.compileVariableAssign(n, ctx)
	case *FunctionDeclaration:
		return cg.compileFunction(n)
	case *FunctionCall:
		return cg.compileCall(n, ctx)
	case *RawCode:
		cg.emit("%s", n.Text)
		return Undefined{}, nil
	case *Addition:
		return cg.compileArithmetic(add, n.Left, n.Right, ctx)
	case *Subtraction:
		return cg.compileArithmetic(subtract, n.Left, n.Right, ctx)
	case *Multiplication:
		return cg.compileArithmetic(multiply, n.Left, n.Right, ctx)
	case *Division:
		return cg.compileArithmetic(divide, n.Left, n.Right, ctx)
	case *IntegerLiteral:
		if n.Value < math.MinInt32 || n.Value > math.MaxInt32 {
			return nil, message.New(message.IntegerBoundsExceeded, message.IntegerBoundsExceededDetails(32), n.Cursor)
		}
		return ConstantInt{Value: int32(n.Value)}, nil
	case *StringLiteral:
		return nil, message.New(message.TypeMismatch, message.TypeMismatchDetails("int", "string"), n.Cursor)
	case *VariableAccess:
		sym, ok := cg.scope().Lookup(n.Name)
		if !ok {
			return nil, message.New(message.UnknownMember, message.UnknownMemberDetails("Variable", n.Name), n.Cursor)
		}
		if sym.Kind == FunctionSymbol {
			return nil, message.New(message.TypeMismatch, message.TypeMismatchDetails("int", "function"), n.Cursor)
		}
		return sym.Ref, nil
	}
	panic(fmt.Sprintf("compiler: unhandled expression %T", e))
}

// compileOperand compiles one side of an arithmetic operation, which must
// produce an int.
func (cg *CodeGen) compileOperand(e Expression, ctx Context) (Value, error) {
	v, err := cg.compileExpr(e, ctx)
	if err != nil {
		return nil, err
	}
	switch v.(type) {
	case ConstantInt, StorageRef:
		return v, nil
	}
	return nil, message.New(message.TypeMismatch, message.TypeMismatchDetails("int", TypeName(v)), e.Span())
}

func (cg *CodeGen) compileArithmetic(op arithmetic, left, right Expression, ctx Context) (Value, error) {
	lv, err := cg.compileOperand(left, ctx)
	if err != nil {
		return nil, err
	}
	rv, err := cg.compileOperand(right, ctx.operand())
	if err != nil {
		return nil, err
	}

	if c, ok := rv.(ConstantInt); ok && c.Value == 0 && op == divide {
		return nil, message.New(message.DivisionByZero, message.DivisionByZeroDetails(), right.Span())
	}

	scratch := cg.scratch(ctx)
	dest := scratch
	if ctx.PreferredDestination != nil {
		dest = *ctx.PreferredDestination
	}

	switch l := lv.(type) {
	case ConstantInt:
		switch r := rv.(type) {
		case ConstantInt:
			return ConstantInt{Value: op.fold(l.Value, r.Value)}, nil
		case StorageRef:
			if r == dest {
				dest = scratch
			}
			cg.set(dest, l.Value)
			cg.operation(dest, op.symbol()+"=", r)
			return dest, nil
		}
	case StorageRef:
		switch r := rv.(type) {
		case ConstantInt:
			if l != dest {
				cg.operation(dest, "=", l)
			}
			cg.applyConstant(dest, op, r.Value)
			return dest, nil
		case StorageRef:
			if r == dest && l != dest {
				dest = scratch
			}
			if l != dest {
				cg.operation(dest, "=", l)
			}
			cg.operation(dest, op.symbol()+"=", r)
			return dest, nil
		}
	}
	panic(fmt.Sprintf("compiler: unhandled operands %T, %T", lv, rv))
}

func (cg *CodeGen) compileVariableDeclaration(e *VariableDeclaration, ctx Context) (Value, error) {
	scope := cg.scope()
	if _, exists := scope.Lookup(e.Name); exists {
		return nil, message.New(message.MemberRedeclaration, message.MemberRedeclarationDetails("Variable", e.Name), e.Cursor)
	}
	if e.Type != nil && e.Type.Name != "int" {
		return nil, message.New(message.UnknownType, message.UnknownTypeDetails(e.Type.Name), e.Type.Cursor)
	}

	ref := scope.Variable(e.Name)
	sym := Symbol{Name: e.Name, Kind: VariableSymbol, Ref: ref, Cursor: e.Cursor}
	if e.Value == nil {
		scope.Declare(sym)
		return UndefinedRef{Block: ref.Block, Slot: ref.Slot}, nil
	}

	v, err := cg.compileExpr(e.Value, ctx.withDestination(&ref))
	if err != nil {
		return nil, err
	}
	if err := cg.store(ref, v, e.Value.Span()); err != nil {
		return nil, err
	}
	scope.Declare(sym)
	return ref, nil
}

func (cg *CodeGen) compileVariableAssign(e *VariableAssign, ctx Context) (Value, error) {
	sym, ok := cg.scope().Lookup(e.Name)
	if !ok {
		return nil, message.New(message.UnknownMember, message.UnknownMemberDetails("Variable", e.Name), e.Cursor)
	}
	if sym.Kind != VariableSymbol {
		return nil, message.New(message.TypeMismatch, message.TypeMismatchDetails("int", "function"), e.Cursor)
	}

	ref := sym.Ref
	inner := ctx.withDestination(nil)
	if canTarget(e.Value, e.Name) {
		inner = ctx.withDestination(&ref)
	}
	v, err := cg.compileExpr(e.Value, inner)
	if err != nil {
		return nil, err
	}
	if err := cg.store(ref, v, e.Value.Span()); err != nil {
		return nil, err
	}
	return ref, nil
}

// compileFunction compiles a declaration into a new block. The function is
// bound in the enclosing scope once its body compiled, so it cannot call
// itself.
func (cg *CodeGen) compileFunction(e *FunctionDeclaration) (Value, error) {
	enclosing := cg.current
	if enclosing >= 0 {
		if _, exists := cg.scope().Lookup(e.Name); exists {
			return nil, message.New(message.MemberRedeclaration, message.MemberRedeclarationDetails("Function", e.Name), e.Cursor)
		}
	}
	if cg.names[e.Name] {
		return nil, message.New(message.MemberRedeclaration, message.MemberRedeclarationDetails("Function", e.Name), e.Cursor)
	}
	if !functionName.MatchString(e.Name) {
		return nil, message.New(message.InvalidMemberName, message.InvalidFunctionNameDetails(e.Name), e.Cursor)
	}
	if e.ReturnType != nil && e.ReturnType.Name != "int" {
		return nil, message.New(message.UnknownType, message.UnknownTypeDetails(e.ReturnType.Name), e.ReturnType.Cursor)
	}
	cg.names[e.Name] = true

	block := &InstructionBlock{Name: e.Name}
	scope := newScope(block, enclosing)
	for _, p := range e.Parameters {
		if p.Type.Name != "int" {
			return nil, message.New(message.UnknownType, message.UnknownTypeDetails(p.Type.Name), p.Type.Cursor)
		}
		param := Symbol{Name: p.Name, Kind: VariableSymbol, Ref: scope.Variable(p.Name), Cursor: p.Cursor}
		if !scope.Declare(param) {
			return nil, message.New(message.MemberRedeclaration, message.MemberRedeclarationDetails("Parameter", p.Name), p.Cursor)
		}
	}

	cg.scopes = append(cg.scopes, scope)
	cg.current = len(cg.scopes) - 1
	defer func() { cg.current = enclosing }()

	cg.emit("scoreboard objectives add %s dummy", e.Name)
	for _, stmt := range e.Body {
		if _, err := cg.compileExpr(stmt, Context{}); err != nil {
			return nil, err
		}
	}
	cg.emit("scoreboard objectives remove %s", e.Name)

	cg.blocks = append(cg.blocks, *block)
	if enclosing >= 0 {
		cg.scopes[enclosing].Declare(Symbol{
			Name:       e.Name,
			Kind:       FunctionSymbol,
			Parameters: e.Parameters,
			Cursor:     e.Cursor,
		})
	}
	return FunctionRef{Name: e.Name}, nil
}

// compileCall writes the arguments into the callee's parameter scores and
// runs it. The callee's objective is created first so the scores can be set
// before its own body runs.
func (cg *CodeGen) compileCall(e *FunctionCall, ctx Context) (Value, error) {
	sym, ok := cg.scope().Lookup(e.Name)
	if !ok {
		return nil, message.New(message.UnknownMember, message.UnknownMemberDetails("Function", e.Name), e.Cursor)
	}
	if sym.Kind != FunctionSymbol {
		return nil, message.New(message.TypeMismatch, message.TypeMismatchDetails("function", "int"), e.Cursor)
	}
	if len(e.Arguments) != len(sym.Parameters) {
		return nil, message.New(message.ArgumentCountMismatch,
			message.ArgumentCountMismatchDetails(e.Name, len(sym.Parameters), len(e.Arguments)), e.Cursor)
	}

	if len(e.Arguments) > 0 {
		cg.emit("scoreboard objectives add %s dummy", e.Name)
	}
	for i, arg := range e.Arguments {
		dst := StorageRef{Block: e.Name, Slot: "$" + sym.Parameters[i].Name}
		v, err := cg.compileExpr(arg, ctx.withDestination(&dst))
		if err != nil {
			return nil, err
		}
		if err := cg.store(dst, v, arg.Span()); err != nil {
			return nil, err
		}
	}
	cg.emit("function %s", cg.opts.Resource(e.Name))
	return Undefined{}, nil
}
