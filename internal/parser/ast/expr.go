package ast

import (
	"github.com/gmh5225/compiler-orka/internal/lexer"
)

// IntLiteral is a 32-bit integer constant.
type IntLiteral struct {
	Position lexer.Position
	Value    int32
}

func (i *IntLiteral) Pos() lexer.Position { return i.Position }
func (i *IntLiteral) exprNode()           {}
func (i *IntLiteral) Accept(v Visitor) (interface{}, error) {
	return v.VisitIntLiteral(i)
}

// StringLiteral holds the decoded text of a string literal.
type StringLiteral struct {
	Position lexer.Position
	Value    string
}

func (s *StringLiteral) Pos() lexer.Position { return s.Position }
func (s *StringLiteral) exprNode()           {}
func (s *StringLiteral) Accept(v Visitor) (interface{}, error) {
	return v.VisitStringLiteral(s)
}

// Identifier is a reference to a variable by name.
type Identifier struct {
	Position lexer.Position
	Name     string
}

func (i *Identifier) Pos() lexer.Position { return i.Position }
func (i *Identifier) exprNode()           {}
func (i *Identifier) Accept(v Visitor) (interface{}, error) {
	return v.VisitIdentifier(i)
}

// BinaryOperator is one of the four arithmetic operators.
type BinaryOperator int

const (
	OpAdd BinaryOperator = iota
	OpSub
	OpMul
	OpDiv
)

func (op BinaryOperator) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

// OperatorFor maps an operator token type to its BinaryOperator.
func OperatorFor(tt lexer.TokenType) (BinaryOperator, bool) {
	switch tt {
	case lexer.TokenPlus:
		return OpAdd, true
	case lexer.TokenMinus:
		return OpSub, true
	case lexer.TokenStar:
		return OpMul, true
	case lexer.TokenSlash:
		return OpDiv, true
	}
	return 0, false
}

// BinaryExpr is Left Op Right. Division is signed.
type BinaryExpr struct {
	Op    BinaryOperator
	OpPos lexer.Position
	Left  Expr
	Right Expr
}

func (b *BinaryExpr) Pos() lexer.Position {
	if b.Left != nil {
		return b.Left.Pos()
	}
	return b.OpPos
}
func (b *BinaryExpr) exprNode() {}
func (b *BinaryExpr) Accept(v Visitor) (interface{}, error) {
	return v.VisitBinaryExpr(b)
}
