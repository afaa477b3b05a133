// Package ast defines the Orka abstract syntax tree.
//
// The node set is closed: globals (Function, ExternFunction), statements
// (VarDecl, VarAssign, CallStmt, Return) and expressions (IntLiteral,
// StringLiteral, Identifier, BinaryExpr). Marker methods keep types outside
// this package from satisfying the node interfaces, and the Visitor interface
// gives every consumer one method per variant so a new variant cannot be
// handled by accident.
//
// Each node owns its children exclusively; the tree has no shared or back
// references.
package ast

import (
	"github.com/gmh5225/compiler-orka/internal/lexer"
	"github.com/gmh5225/compiler-orka/internal/types"
)

// Node is implemented by every AST node.
type Node interface {
	// Pos returns the position of the token that starts the node.
	Pos() lexer.Position
}

// Expr is an expression node.
type Expr interface {
	Node
	Accept(v Visitor) (interface{}, error)
	exprNode()
}

// Stmt is a statement inside a function body.
type Stmt interface {
	Node
	Accept(v Visitor) error
	stmtNode()
}

// Global is a top-level declaration.
type Global interface {
	Node
	Accept(v Visitor) error

	// GlobalName returns the name the declaration introduces.
	GlobalName() string

	globalNode()
}

// Visitor has one method per node variant. Expression visits produce a
// value; the meaning of that value is up to the visitor.
type Visitor interface {
	VisitIntLiteral(expr *IntLiteral) (interface{}, error)
	VisitStringLiteral(expr *StringLiteral) (interface{}, error)
	VisitIdentifier(expr *Identifier) (interface{}, error)
	VisitBinaryExpr(expr *BinaryExpr) (interface{}, error)

	VisitVarDecl(stmt *VarDecl) error
	VisitVarAssign(stmt *VarAssign) error
	VisitCallStmt(stmt *CallStmt) error
	VisitReturn(stmt *Return) error

	VisitFunction(fn *Function) error
	VisitExternFunction(fn *ExternFunction) error
}

// Var is a declared parameter or local.
type Var struct {
	Name     string
	Type     types.Type
	Position lexer.Position
}

// Tree is the result of parsing one source file. Globals are kept in source
// order, which is also the order code is generated in.
type Tree struct {
	Filename string
	Globals  []Global
}

// Append adds g after every global already in the tree.
func (t *Tree) Append(g Global) {
	t.Globals = append(t.Globals, g)
}

// Functions returns the function definitions in source order.
func (t *Tree) Functions() []*Function {
	var fns []*Function
	for _, g := range t.Globals {
		if fn, ok := g.(*Function); ok {
			fns = append(fns, fn)
		}
	}
	return fns
}
