package parser

import (
	"github.com/gmh5225/compiler-orka/internal/lexer"
	"github.com/gmh5225/compiler-orka/internal/parser/ast"
)

// noSeparator is passed to buildExpression when the context takes a single
// expression.
const noSeparator lexer.TokenType = -1

// exprStacks holds the two stacks of the expression builder. Operators are
// pushed without operands and get them when the stacks are folded.
type exprStacks struct {
	operands  []ast.Expr
	operators []*ast.BinaryExpr
}

func (s *exprStacks) empty() bool {
	return len(s.operands) == 0 && len(s.operators) == 0
}

// buildExpression reads expressions up to stop and returns them in source
// order. It does not consume stop.
//
// Integer, string and identifier tokens push a leaf onto the operand stack;
// '+', '-', '*' and '/' push an operator. When separator is met the stacks
// are folded and the result is detached as one expression, so f(a + b, c)
// yields two arguments. A ';', a newline, the end of input or a keyword also
// ends the expression; the token stays in the lookahead for the caller.
//
// The fold applies no precedence: operators are taken from the top of their
// stack, so they combine in the reverse of the order they were read.
// a + b - c becomes a + (b - c).
func (p *Parser) buildExpression(stop, separator lexer.TokenType) []ast.Expr {
	var exprs []ast.Expr
	stacks := &exprStacks{}

	for {
		tok := p.current

		if tok.Type == stop || endsExpression(tok.Type) {
			break
		}

		switch {
		case tok.Type == separator:
			if stacks.empty() {
				p.fail(tok.Position, "missing expression before %s", describe(tok))
			}
			exprs = append(exprs, p.fold(stacks))
			stacks = &exprStacks{}
			p.advance()
			continue

		case tok.Type == lexer.TokenInteger:
			stacks.operands = append(stacks.operands, &ast.IntLiteral{Position: tok.Position, Value: tok.Value})

		case tok.Type == lexer.TokenString:
			stacks.operands = append(stacks.operands, &ast.StringLiteral{Position: tok.Position, Value: tok.Lexeme})

		case tok.Type == lexer.TokenIdentifier:
			stacks.operands = append(stacks.operands, &ast.Identifier{Position: tok.Position, Name: tok.Lexeme})

		case tok.Type.IsOperator():
			op, _ := ast.OperatorFor(tok.Type)
			stacks.operators = append(stacks.operators, &ast.BinaryExpr{Op: op, OpPos: tok.Position})

		default:
			p.fail(tok.Position, "unexpected %s in expression", describe(tok))
		}
		p.advance()
	}

	if len(exprs) > 0 && stacks.empty() {
		p.fail(p.current.Position, "missing expression before %s", describe(p.current))
	}
	if e := p.fold(stacks); e != nil {
		exprs = append(exprs, e)
	}
	return exprs
}

// fold reduces the stacks to a single expression, or nil when there were no
// operands at all. Each operator popped takes the top operand as its right
// side and the next as its left, and the result goes back on the operand
// stack.
func (p *Parser) fold(s *exprStacks) ast.Expr {
	for n := len(s.operators); n > 0; n = len(s.operators) {
		op := s.operators[n-1]
		s.operators = s.operators[:n-1]

		m := len(s.operands)
		if m < 2 {
			p.fail(op.OpPos, "operator %s is missing an operand", op.Op)
		}
		op.Right = s.operands[m-1]
		op.Left = s.operands[m-2]
		s.operands = append(s.operands[:m-2], op)
	}

	switch len(s.operands) {
	case 0:
		return nil
	case 1:
		return s.operands[0]
	default:
		p.fail(s.operands[1].Pos(), "unexpected operand; expressions combine values with + - * or /")
		return nil
	}
}

// endsExpression reports whether tt always ends an expression, whatever the
// caller's stop token.
func endsExpression(tt lexer.TokenType) bool {
	switch tt {
	case lexer.TokenSemicolon, lexer.TokenNewline, lexer.TokenEOF:
		return true
	}
	return tt.IsKeyword()
}
