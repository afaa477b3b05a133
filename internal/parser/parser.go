// Package parser builds an Orka AST from the token stream.
//
// The parser keeps one token of lookahead. Grammar errors are recorded and
// the parser recovers locally: a broken statement is skipped up to the end of
// its line, a broken global declaration up to the next func or extern. Every
// diagnostic is collected; the caller decides whether to go on to code
// generation.
package parser

import (
	"fmt"

	"github.com/gmh5225/compiler-orka/internal/lexer"
	"github.com/gmh5225/compiler-orka/internal/parser/ast"
	"github.com/gmh5225/compiler-orka/internal/types"
)

// Parser turns tokens into an ast.Tree.
type Parser struct {
	lexer *lexer.Lexer

	// current is the lookahead token.
	current lexer.Token

	errors []error
}

// bailout is panicked to abandon the statement or declaration being parsed.
// The diagnostic has already been recorded when it is raised.
type bailout struct{}

// New creates a Parser reading from l and primes the lookahead.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{lexer: l}
	p.advance()
	return p
}

// Parse reads the whole input. At the top level only func and extern start a
// declaration; any other token is skipped.
//
// The returned tree holds every declaration that parsed cleanly, even when
// errors were reported.
func (p *Parser) Parse() (*ast.Tree, []error) {
	tree := &ast.Tree{Filename: p.lexer.Filename()}

	for !p.isAtEnd() {
		switch p.current.Type {
		case lexer.TokenFunc:
			if fn := p.parseGlobal(p.parseFunction); fn != nil {
				tree.Append(fn)
			}
		case lexer.TokenExtern:
			if ext := p.parseGlobal(p.parseExtern); ext != nil {
				tree.Append(ext)
			}
		default:
			p.advance()
		}
	}

	return tree, p.errors
}

// parseGlobal runs parse and turns a bailout into a skip to the next
// top-level declaration.
func (p *Parser) parseGlobal(parse func() ast.Global) (g ast.Global) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			g = nil
			p.synchronizeGlobal()
		}
	}()
	return parse()
}

// parseFunction parses:
//
//	func name
//	  decl-line*
//	begin
//	  stmt*
//	end
func (p *Parser) parseFunction() ast.Global {
	fn := &ast.Function{Position: p.current.Position}
	p.advance()

	fn.Name = p.expectIdentifier("expected function name after 'func'").Lexeme

	for !p.check(lexer.TokenBegin) {
		switch p.current.Type {
		case lexer.TokenNewline, lexer.TokenSemicolon:
			p.advance()
		case lexer.TokenIdentifier:
			p.statement(func() { p.parseVarDecl(fn) })
		case lexer.TokenEOF, lexer.TokenFunc, lexer.TokenExtern:
			p.fail(p.current.Position, "expected 'begin' in function %s, found %s", fn.Name, describe(p.current))
		default:
			p.report(p.current, "unexpected %s in declarations of %s", describe(p.current), fn.Name)
			p.advance()
		}
	}
	p.advance()

	for !p.check(lexer.TokenEnd) {
		switch p.current.Type {
		case lexer.TokenNewline, lexer.TokenSemicolon:
			p.advance()
		case lexer.TokenIdentifier:
			p.statement(func() { p.parseIdentifierStmt(fn) })
		case lexer.TokenReturn:
			p.statement(func() { p.parseReturn(fn) })
		case lexer.TokenEOF, lexer.TokenFunc, lexer.TokenExtern:
			p.fail(p.current.Position, "expected 'end' to close function %s, found %s", fn.Name, describe(p.current))
		default:
			p.report(p.current, "unexpected %s in body of %s", describe(p.current), fn.Name)
			p.advance()
		}
	}
	p.advance()

	return fn
}

// parseExtern parses extern func name(param: type, ...). Any error abandons
// the whole declaration, including the parameters already read.
func (p *Parser) parseExtern() ast.Global {
	ext := &ast.ExternFunction{Position: p.current.Position}
	p.advance()

	p.consume(lexer.TokenFunc, "expected 'func' after 'extern'")
	ext.Name = p.expectIdentifier("expected function name in extern declaration").Lexeme
	p.consume(lexer.TokenLeftParen, "expected '(' after extern function name")

	if p.match(lexer.TokenRightParen) {
		return ext
	}

	for {
		name := p.expectIdentifier("expected parameter name")
		p.consume(lexer.TokenColon, "expected ':' after parameter "+name.Lexeme)
		ext.Params = append(ext.Params, ast.Var{
			Name:     name.Lexeme,
			Type:     p.parseTypeName(),
			Position: name.Position,
		})

		if p.match(lexer.TokenComma) {
			continue
		}
		p.consume(lexer.TokenRightParen, "expected ',' or ')' in parameter list")
		return ext
	}
}

// statement runs parse and turns a bailout into a skip to the end of the
// current line.
func (p *Parser) statement(parse func()) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			p.synchronizeStatement()
		}
	}()
	parse()
}

// parseVarDecl parses name : type, optionally followed by an initializer.
//
// A ';' right after the type ends the declaration, as does a newline, the end
// of input or a keyword. Anything else starts an initializer, which may be
// introduced by '='; it becomes a VarAssign to the same name.
func (p *Parser) parseVarDecl(fn *ast.Function) {
	name := p.current
	p.advance()

	p.consume(lexer.TokenColon, fmt.Sprintf("expected ':' after %s", name.Lexeme))
	fn.Body = append(fn.Body, &ast.VarDecl{
		Position: name.Position,
		Name:     name.Lexeme,
		Type:     p.parseTypeName(),
	})

	switch {
	case p.match(lexer.TokenSemicolon):
		return
	case p.check(lexer.TokenNewline), p.isAtEnd(), p.current.Type.IsKeyword():
		return
	}

	p.match(lexer.TokenAssign)
	p.parseAssignment(fn, name)
}

// parseIdentifierStmt parses a statement that starts with an identifier:
// an assignment or a call.
func (p *Parser) parseIdentifierStmt(fn *ast.Function) {
	name := p.current
	p.advance()

	switch {
	case p.match(lexer.TokenAssign):
		p.parseAssignment(fn, name)
	case p.match(lexer.TokenLeftParen):
		p.parseCall(fn, name)
	default:
		p.fail(p.current.Position, "expected '=' or '(' after %s, found %s", name.Lexeme, describe(p.current))
	}
}

// parseAssignment reads the right-hand side of an assignment to name. The
// VarAssign is kept even when the right-hand side is empty so the tree shows
// what was written.
func (p *Parser) parseAssignment(fn *ast.Function, name lexer.Token) {
	exprs := p.buildExpression(lexer.TokenNewline, noSeparator)
	fn.Body = append(fn.Body, &ast.VarAssign{
		Position: name.Position,
		Name:     name.Lexeme,
		Exprs:    exprs,
	})
	if len(exprs) == 0 {
		p.report(p.current, "missing expression in assignment to %s", name.Lexeme)
	}
}

// parseCall reads the arguments of a call to name, the closing ')' and the
// mandatory ';'.
func (p *Parser) parseCall(fn *ast.Function, name lexer.Token) {
	args := p.buildExpression(lexer.TokenRightParen, lexer.TokenComma)
	p.consume(lexer.TokenRightParen, fmt.Sprintf("expected ')' to close call to %s", name.Lexeme))
	p.consume(lexer.TokenSemicolon, fmt.Sprintf("expected ';' after call to %s", name.Lexeme))

	fn.Body = append(fn.Body, &ast.CallStmt{
		Position: name.Position,
		Name:     name.Lexeme,
		Args:     args,
	})
}

func (p *Parser) parseReturn(fn *ast.Function) {
	ret := &ast.Return{Position: p.current.Position}
	p.advance()

	ret.Exprs = p.buildExpression(lexer.TokenNewline, noSeparator)
	fn.Body = append(fn.Body, ret)
}

// parseTypeName reads int or str.
func (p *Parser) parseTypeName() types.Type {
	switch {
	case p.match(lexer.TokenInt):
		return types.Int32
	case p.match(lexer.TokenStr):
		return types.String
	}
	p.fail(p.current.Position, "unknown type %s, expected int or str", describe(p.current))
	return nil
}

// Helper methods

func (p *Parser) advance() {
	token, err := p.lexer.NextToken()
	if err != nil {
		p.errors = append(p.errors, err)
	}
	p.current = token
}

func (p *Parser) check(tokenType lexer.TokenType) bool {
	return p.current.Type == tokenType
}

func (p *Parser) match(tokenType lexer.TokenType) bool {
	if p.check(tokenType) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consume(tokenType lexer.TokenType, message string) {
	if p.match(tokenType) {
		return
	}
	p.fail(p.current.Position, "%s, found %s", message, describe(p.current))
}

func (p *Parser) expectIdentifier(message string) lexer.Token {
	if !p.check(lexer.TokenIdentifier) {
		p.fail(p.current.Position, "%s, found %s", message, describe(p.current))
	}
	tok := p.current
	p.advance()
	return tok
}

func (p *Parser) isAtEnd() bool {
	return p.current.Type == lexer.TokenEOF
}

// report records a diagnostic at tok. Invalid tokens were already reported
// by the lexer and are not reported again.
func (p *Parser) report(tok lexer.Token, format string, args ...interface{}) {
	if tok.Type == lexer.TokenInvalid {
		return
	}
	p.errorAt(tok.Position, format, args...)
}

// fail records a diagnostic and abandons the current statement or
// declaration.
func (p *Parser) fail(pos lexer.Position, format string, args ...interface{}) {
	if p.current.Type != lexer.TokenInvalid {
		p.errorAt(pos, format, args...)
	}
	panic(bailout{})
}

func (p *Parser) errorAt(pos lexer.Position, format string, args ...interface{}) {
	p.errors = append(p.errors, fmt.Errorf("%s: %s", pos, fmt.Sprintf(format, args...)))
}

// synchronizeStatement skips to the next statement: past the end of the line
// or a ';', or up to a keyword that starts or closes a block.
func (p *Parser) synchronizeStatement() {
	for !p.isAtEnd() {
		switch p.current.Type {
		case lexer.TokenNewline, lexer.TokenSemicolon:
			p.advance()
			return
		case lexer.TokenBegin, lexer.TokenEnd, lexer.TokenReturn,
			lexer.TokenFunc, lexer.TokenExtern:
			return
		}
		p.advance()
	}
}

// synchronizeGlobal skips to the next func or extern.
func (p *Parser) synchronizeGlobal() {
	for !p.isAtEnd() {
		switch p.current.Type {
		case lexer.TokenFunc, lexer.TokenExtern:
			return
		}
		p.advance()
	}
}

// describe names a token for a diagnostic.
func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.TokenEOF:
		return "end of file"
	case lexer.TokenNewline:
		return "newline"
	case lexer.TokenString:
		return "string literal"
	}
	return fmt.Sprintf("%q", tok.Lexeme)
}
