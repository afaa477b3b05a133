package ast

import (
	"github.com/gmh5225/compiler-orka/internal/lexer"
	"github.com/gmh5225/compiler-orka/internal/types"
)

// VarDecl declares a local. Parameters are declared the same way: the
// declaration lines between a function's name and begin become VarDecls at
// the head of its body.
type VarDecl struct {
	Position lexer.Position
	Name     string
	Type     types.Type
}

func (d *VarDecl) Pos() lexer.Position { return d.Position }
func (d *VarDecl) stmtNode()           {}
func (d *VarDecl) Accept(v Visitor) error {
	return v.VisitVarDecl(d)
}

// VarAssign stores the value of an expression into a declared variable.
// The grammar yields zero or one expression; code generation rejects any
// other count.
type VarAssign struct {
	Position lexer.Position
	Name     string
	Exprs    []Expr
}

func (a *VarAssign) Pos() lexer.Position { return a.Position }
func (a *VarAssign) stmtNode()           {}
func (a *VarAssign) Accept(v Visitor) error {
	return v.VisitVarAssign(a)
}

// CallStmt calls a function for its effect. Args are in source order.
type CallStmt struct {
	Position lexer.Position
	Name     string
	Args     []Expr
}

func (c *CallStmt) Pos() lexer.Position { return c.Position }
func (c *CallStmt) stmtNode()           {}
func (c *CallStmt) Accept(v Visitor) error {
	return v.VisitCallStmt(c)
}

// Return leaves the function, optionally with a value.
type Return struct {
	Position lexer.Position
	Exprs    []Expr
}

func (r *Return) Pos() lexer.Position { return r.Position }
func (r *Return) stmtNode()           {}
func (r *Return) Accept(v Visitor) error {
	return v.VisitReturn(r)
}

// Function is a function definition.
//
// Params stays empty when the function comes from source: declarations are
// recorded as VarDecl statements in Body instead.
type Function struct {
	Position lexer.Position
	Name     string
	Params   []Var
	Body     []Stmt
}

func (f *Function) Pos() lexer.Position { return f.Position }
func (f *Function) GlobalName() string  { return f.Name }
func (f *Function) globalNode()         {}
func (f *Function) Accept(v Visitor) error {
	return v.VisitFunction(f)
}

// ExternFunction declares a function defined outside the compilation unit.
type ExternFunction struct {
	Position lexer.Position
	Name     string
	Params   []Var
}

func (e *ExternFunction) Pos() lexer.Position { return e.Position }
func (e *ExternFunction) GlobalName() string  { return e.Name }
func (e *ExternFunction) globalNode()         {}
func (e *ExternFunction) Accept(v Visitor) error {
	return v.VisitExternFunction(e)
}

// ReturnType is always void for an extern declaration.
func (e *ExternFunction) ReturnType() types.Type {
	return types.Void
}
