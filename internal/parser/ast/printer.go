package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders the tree as an indented outline, one node per line.
func (t *Tree) String() string {
	p := &printer{}
	for _, g := range t.Globals {
		// printer never fails
		_ = g.Accept(p)
	}
	return p.sb.String()
}

// printer walks a tree and writes one line per node.
type printer struct {
	sb     strings.Builder
	indent int
}

func (p *printer) line(format string, args ...interface{}) {
	p.sb.WriteString(strings.Repeat("  ", p.indent))
	fmt.Fprintf(&p.sb, format, args...)
	p.sb.WriteByte('\n')
}

func (p *printer) nested(fn func()) {
	p.indent++
	fn()
	p.indent--
}

func (p *printer) exprs(list []Expr) {
	p.nested(func() {
		for _, e := range list {
			_, _ = e.Accept(p)
		}
	})
}

func (p *printer) VisitIntLiteral(expr *IntLiteral) (interface{}, error) {
	p.line("int %d", expr.Value)
	return nil, nil
}

func (p *printer) VisitStringLiteral(expr *StringLiteral) (interface{}, error) {
	p.line("string %s", strconv.Quote(expr.Value))
	return nil, nil
}

func (p *printer) VisitIdentifier(expr *Identifier) (interface{}, error) {
	p.line("ident %s", expr.Name)
	return nil, nil
}

func (p *printer) VisitBinaryExpr(expr *BinaryExpr) (interface{}, error) {
	p.line("binary %s", expr.Op)
	p.exprs([]Expr{expr.Left, expr.Right})
	return nil, nil
}

func (p *printer) VisitVarDecl(stmt *VarDecl) error {
	p.line("decl %s: %s", stmt.Name, stmt.Type)
	return nil
}

func (p *printer) VisitVarAssign(stmt *VarAssign) error {
	p.line("assign %s", stmt.Name)
	p.exprs(stmt.Exprs)
	return nil
}

func (p *printer) VisitCallStmt(stmt *CallStmt) error {
	p.line("call %s", stmt.Name)
	p.exprs(stmt.Args)
	return nil
}

func (p *printer) VisitReturn(stmt *Return) error {
	p.line("return")
	p.exprs(stmt.Exprs)
	return nil
}

func (p *printer) VisitFunction(fn *Function) error {
	p.line("func %s(%s)", fn.Name, formatParams(fn.Params))
	p.nested(func() {
		for _, s := range fn.Body {
			_ = s.Accept(p)
		}
	})
	return nil
}

func (p *printer) VisitExternFunction(fn *ExternFunction) error {
	p.line("extern %s(%s) %s", fn.Name, formatParams(fn.Params), fn.ReturnType())
	return nil
}

func formatParams(params []Var) string {
	parts := make([]string, len(params))
	for i, v := range params {
		parts[i] = v.Name + ": " + v.Type.String()
	}
	return strings.Join(parts, ", ")
}
