package compiler

// Compile turns a parsed program into instruction blocks. The program is
// compiled as the body of an implicit function named "main". Blocks appear
// in the order their declarations finished, so "main" is always last.
// The first diagnostic aborts compilation and no blocks are returned.
func Compile(program []Expression, opts Options) ([]InstructionBlock, error) {
	cg := newCodeGen(opts)
	main := &FunctionDeclaration{Name: "main", Body: program}
	if len(program) > 0 {
		main.Cursor = program[0].Span().Merge(program[len(program)-1].Span())
	}
	if _, err := cg.compileFunction(main); err != nil {
		return nil, err
	}
	return cg.blocks, nil
}

// CompileSource runs the whole pipeline over one source text. fileName is
// only used to label diagnostics.
func CompileSource(fileName, src string, opts Options) ([]InstructionBlock, error) {
	program, err := ParseSource(fileName, src)
	if err != nil {
		return nil, err
	}
	return Compile(program, opts)
}
