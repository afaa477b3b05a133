// Package codegen lowers an Orka AST to the target IR.
//
// Lowering runs in two passes. The first declares every global in source
// order, so a call may name a function defined further down the file. The
// second lowers each function body into its entry block with a fresh symbol
// table.
//
// Every function gets the signature void(), whatever it declares or returns;
// an extern gets the parameter types it lists and a void return.
//
// Semantic errors are reported against the offending statement. That
// statement is dropped and lowering goes on, so one run reports every error.
// A module produced with errors must not be handed to later stages.
package codegen

import (
	"fmt"

	"github.com/gmh5225/compiler-orka/internal/ir"
	"github.com/gmh5225/compiler-orka/internal/lexer"
	"github.com/gmh5225/compiler-orka/internal/parser/ast"
	"github.com/gmh5225/compiler-orka/internal/types"
)

// generator holds the module being built and the diagnostics so far.
type generator struct {
	module *ir.Module

	// defined maps each function that was declared in the first pass to its
	// IR function.
	defined map[*ast.Function]*ir.Function

	errors []error
}

// Compile lowers tree into a new module named after the source file.
func Compile(tree *ast.Tree) (*ir.Module, []error) {
	g := &generator{
		module:  ir.NewModule(tree.Filename),
		defined: make(map[*ast.Function]*ir.Function),
	}
	return g.run(tree)
}

func (g *generator) run(tree *ast.Tree) (*ir.Module, []error) {
	for _, global := range tree.Globals {
		g.declare(global)
	}

	for _, global := range tree.Globals {
		fn, ok := global.(*ast.Function)
		if !ok {
			continue
		}
		target, ok := g.defined[fn]
		if !ok {
			continue
		}
		l := newLowering(g.module, target)
		if err := fn.Accept(l); err != nil {
			g.errors = append(g.errors, err)
		}
		g.errors = append(g.errors, l.errors...)
	}

	return g.module, g.errors
}

// declare adds the IR function for one global.
func (g *generator) declare(global ast.Global) {
	if prev := g.module.Function(global.GlobalName()); prev != nil {
		g.error(global.Pos(), "%s redeclared", global.GlobalName())
		return
	}

	switch decl := global.(type) {
	case *ast.Function:
		g.defined[decl] = g.module.NewFunction(decl.Name, ir.Void)

	case *ast.ExternFunction:
		params := make([]*ir.Value, 0, len(decl.Params))
		for _, p := range decl.Params {
			typ, err := translateType(p.Type)
			if err != nil {
				g.error(p.Position, "parameter %s of %s: %v", p.Name, decl.Name, err)
				return
			}
			params = append(params, ir.NewParam(p.Name, typ))
		}
		ret, err := translateReturnType(decl.ReturnType())
		if err != nil {
			g.error(decl.Position, "%s: %v", decl.Name, err)
			return
		}
		g.module.NewExternal(decl.Name, ret, params...)

	default:
		g.error(global.Pos(), "internal error: unexpected global %T", global)
	}
}

func (g *generator) error(pos lexer.Position, format string, args ...interface{}) {
	g.errors = append(g.errors, errorAt(pos, format, args...))
}

// translateType maps a data type to its machine type. Only int and pointer
// to char have one; every other type is an error.
func translateType(t types.Type) (*ir.Type, error) {
	if t == nil {
		return nil, fmt.Errorf("missing type")
	}
	switch types.KindOf(t) {
	case types.KindInt32:
		return ir.I32, nil
	case types.KindPointer:
		if types.IsString(t) {
			return ir.PointerTo(ir.I8), nil
		}
	}
	return nil, fmt.Errorf("type %s has no machine representation", t)
}

// translateReturnType is translateType plus void, which is only valid as a
// return type.
func translateReturnType(t types.Type) (*ir.Type, error) {
	if t != nil && types.KindOf(t) == types.KindVoid {
		return ir.Void, nil
	}
	return translateType(t)
}

// describe names a machine type the way it is spelled in source.
func describe(t *ir.Type) string {
	switch {
	case t.Equal(ir.I32):
		return "int"
	case t.Equal(ir.PointerTo(ir.I8)):
		return "str"
	}
	return t.String()
}

func errorAt(pos lexer.Position, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %s", pos, fmt.Sprintf(format, args...))
}
