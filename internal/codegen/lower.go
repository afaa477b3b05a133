package codegen

import (
	"fmt"

	"github.com/gmh5225/compiler-orka/internal/ir"
	"github.com/gmh5225/compiler-orka/internal/parser/ast"
	"github.com/gmh5225/compiler-orka/internal/symtab"
)

// lowering is the context for lowering one function body. It is created per
// function and dropped afterwards, taking the symbol table with it.
//
// Statement visits return the diagnostic that cancels the statement;
// expression visits return an *ir.Value.
type lowering struct {
	module *ir.Module
	fn     *ir.Function
	b      *ir.Builder
	table  *symtab.Table

	// dead counts the blocks opened for statements that follow a return.
	dead int

	errors []error
}

func newLowering(module *ir.Module, fn *ir.Function) *lowering {
	return &lowering{
		module: module,
		fn:     fn,
		table:  symtab.New(),
	}
}

func (l *lowering) VisitFunction(fn *ast.Function) error {
	l.b = ir.NewBuilder(l.fn, l.fn.NewBlock("entry"))

	for _, stmt := range fn.Body {
		if l.b.Block().IsTerminated() {
			// Statements after a return are still checked, in a block
			// nothing jumps to.
			l.dead++
			l.b.SetInsertPoint(l.fn.NewBlock(fmt.Sprintf("dead.%d", l.dead)))
		}
		if err := stmt.Accept(l); err != nil {
			l.errors = append(l.errors, err)
		}
	}

	if !l.b.Block().IsTerminated() {
		l.b.Ret(nil)
	}
	return nil
}

func (l *lowering) VisitExternFunction(*ast.ExternFunction) error {
	return nil
}

// VisitVarDecl reserves a stack slot. Redeclaring a name replaces the old
// slot for the rest of the function.
func (l *lowering) VisitVarDecl(stmt *ast.VarDecl) error {
	typ, err := translateType(stmt.Type)
	if err != nil {
		return errorAt(stmt.Position, "variable %s: %v", stmt.Name, err)
	}
	slot := l.b.Alloca(stmt.Name, typ)
	l.table.Declare(stmt.Name, stmt.Type, slot, stmt.Position)
	return nil
}

func (l *lowering) VisitVarAssign(stmt *ast.VarAssign) error {
	slot := l.table.Storage(stmt.Name)
	if slot == nil {
		return errorAt(stmt.Position, "undeclared variable %s", stmt.Name)
	}

	switch n := len(stmt.Exprs); {
	case n == 0:
		return errorAt(stmt.Position, "assignment to %s has no value", stmt.Name)
	case n > 1:
		return errorAt(stmt.Position, "assignment to %s has %d values, want 1", stmt.Name, n)
	}

	val, err := l.value(stmt.Exprs[0])
	if err != nil {
		return err
	}
	if !val.Type.Equal(slot.Type.Elem) {
		return errorAt(stmt.Position, "cannot assign %s value to %s of type %s",
			describe(val.Type), stmt.Name, describe(slot.Type.Elem))
	}

	l.b.Store(val, slot)
	return nil
}

// VisitCallStmt lowers the arguments left to right, then resolves the callee
// by exact name. An unresolved or mismatched call is reported and not
// emitted.
func (l *lowering) VisitCallStmt(stmt *ast.CallStmt) error {
	args := make([]*ir.Value, 0, len(stmt.Args))
	for _, arg := range stmt.Args {
		val, err := l.value(arg)
		if err != nil {
			return err
		}
		args = append(args, val)
	}

	callee := l.module.Function(stmt.Name)
	if callee == nil {
		return errorAt(stmt.Position, "invalid call: %s is not a declared function", stmt.Name)
	}
	if len(args) != len(callee.Parameters) {
		return errorAt(stmt.Position, "invalid call to %s: got %d arguments, want %d",
			stmt.Name, len(args), len(callee.Parameters))
	}
	for i, arg := range args {
		if want := callee.Parameters[i].Type; !arg.Type.Equal(want) {
			return errorAt(stmt.Args[i].Pos(), "invalid call to %s: argument %d is %s, want %s",
				stmt.Name, i+1, describe(arg.Type), describe(want))
		}
	}

	l.b.Call(callee, args...)
	return nil
}

// VisitReturn emits a void return for no value and a value return for one.
// More than one value is an error; a void return is still emitted so the
// block stays terminated.
func (l *lowering) VisitReturn(stmt *ast.Return) error {
	switch len(stmt.Exprs) {
	case 0:
		l.b.Ret(nil)
		return nil
	case 1:
		val, err := l.value(stmt.Exprs[0])
		if err != nil {
			return err
		}
		l.b.Ret(val)
		return nil
	default:
		l.b.Ret(nil)
		return errorAt(stmt.Position, "return with %d values, want at most one", len(stmt.Exprs))
	}
}

// value lowers expr and returns the value it produces.
func (l *lowering) value(expr ast.Expr) (*ir.Value, error) {
	v, err := expr.Accept(l)
	if err != nil {
		return nil, err
	}
	return v.(*ir.Value), nil
}

func (l *lowering) VisitIntLiteral(expr *ast.IntLiteral) (interface{}, error) {
	return ir.ConstInt(expr.Value), nil
}

// VisitStringLiteral adds a new string constant for every literal.
func (l *lowering) VisitStringLiteral(expr *ast.StringLiteral) (interface{}, error) {
	return l.module.NewStringConstant(expr.Value), nil
}

// VisitIdentifier loads the variable, reading as many bytes as its declared
// type needs.
func (l *lowering) VisitIdentifier(expr *ast.Identifier) (interface{}, error) {
	slot := l.table.Storage(expr.Name)
	if slot == nil {
		return nil, errorAt(expr.Position, "undeclared variable %s", expr.Name)
	}
	typ, err := translateType(l.table.Type(expr.Name))
	if err != nil {
		return nil, errorAt(expr.Position, "variable %s: %v", expr.Name, err)
	}
	return l.b.Load(expr.Name, typ, slot), nil
}

func (l *lowering) VisitBinaryExpr(expr *ast.BinaryExpr) (interface{}, error) {
	left, err := l.value(expr.Left)
	if err != nil {
		return nil, err
	}
	right, err := l.value(expr.Right)
	if err != nil {
		return nil, err
	}

	if !left.Type.Equal(ir.I32) || !right.Type.Equal(ir.I32) {
		return nil, errorAt(expr.OpPos, "operator %s needs int operands, got %s and %s",
			expr.Op, describe(left.Type), describe(right.Type))
	}

	op, err := machineOp(expr.Op)
	if err != nil {
		return nil, errorAt(expr.OpPos, "%v", err)
	}
	return l.b.BinOp(op, left, right), nil
}

func machineOp(op ast.BinaryOperator) (ir.BinaryOperator, error) {
	switch op {
	case ast.OpAdd:
		return ir.OpAdd, nil
	case ast.OpSub:
		return ir.OpSub, nil
	case ast.OpMul:
		return ir.OpMul, nil
	case ast.OpDiv:
		return ir.OpSDiv, nil
	}
	return 0, fmt.Errorf("internal error: unknown operator %d", int(op))
}
