package lexer

import "strconv"

// TokenType is the kind of a token. It is the contract between the lexer and
// the parser.
type TokenType int

const (
	// Special tokens

	// TokenEOF marks the end of the input. Once produced it is produced again
	// on every later call.
	TokenEOF TokenType = iota

	// TokenInvalid accompanies a lexical error returned by NextToken.
	TokenInvalid

	// Keywords
	TokenExtern
	TokenFunc
	TokenBegin
	TokenEnd
	TokenReturn
	TokenInt
	TokenStr

	// Identifiers and literals

	// TokenIdentifier carries the name in Lexeme.
	TokenIdentifier

	// TokenInteger carries the parsed value in Value and the digits in Lexeme.
	TokenInteger

	// TokenString carries the decoded text (escapes applied, quotes removed)
	// in Lexeme.
	TokenString

	// Punctuation
	TokenNewline    // \n
	TokenSemicolon  // ;
	TokenColon      // :
	TokenAssign     // =
	TokenLeftParen  // (
	TokenRightParen // )
	TokenComma      // ,
	TokenPlus       // +
	TokenMinus      // -
	TokenStar       // *
	TokenSlash      // /
)

// Token is a single lexical token. Tokens are values and never change after
// the lexer produces them.
type Token struct {
	Type TokenType

	// Lexeme is the identifier name, the decoded string payload, the integer
	// digits, or the keyword/punctuation spelling.
	Lexeme string

	// Value is the parsed value of a TokenInteger.
	Value int32

	Position Position
}

// String returns a debugging form such as "IDENTIFIER(foo) at main.ok:3:5".
func (t Token) String() string {
	switch t.Type {
	case TokenNewline:
		return t.Type.String() + " at " + t.Position.String()
	case TokenString:
		return t.Type.String() + "(" + strconv.Quote(t.Lexeme) + ") at " + t.Position.String()
	}
	return t.Type.String() + "(" + t.Lexeme + ") at " + t.Position.String()
}

// String returns the name of the token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "EOF"
	case TokenInvalid:
		return "INVALID"
	case TokenExtern:
		return "EXTERN"
	case TokenFunc:
		return "FUNC"
	case TokenBegin:
		return "BEGIN"
	case TokenEnd:
		return "END"
	case TokenReturn:
		return "RETURN"
	case TokenInt:
		return "INT"
	case TokenStr:
		return "STR"
	case TokenIdentifier:
		return "IDENTIFIER"
	case TokenInteger:
		return "INTEGER"
	case TokenString:
		return "STRING"
	case TokenNewline:
		return "NEWLINE"
	case TokenSemicolon:
		return "SEMICOLON"
	case TokenColon:
		return "COLON"
	case TokenAssign:
		return "ASSIGN"
	case TokenLeftParen:
		return "LPAREN"
	case TokenRightParen:
		return "RPAREN"
	case TokenComma:
		return "COMMA"
	case TokenPlus:
		return "PLUS"
	case TokenMinus:
		return "MINUS"
	case TokenStar:
		return "STAR"
	case TokenSlash:
		return "SLASH"
	default:
		return "UNKNOWN"
	}
}

// keywords maps keyword spellings to their token types. Only exact matches
// count: "Int" and "integer" are identifiers.
var keywords = map[string]TokenType{
	"extern": TokenExtern,
	"func":   TokenFunc,
	"begin":  TokenBegin,
	"end":    TokenEnd,
	"return": TokenReturn,
	"int":    TokenInt,
	"str":    TokenStr,
}

// LookupKeyword returns the keyword token type for word, or TokenIdentifier
// if word is not a keyword.
func LookupKeyword(word string) TokenType {
	if tokenType, ok := keywords[word]; ok {
		return tokenType
	}
	return TokenIdentifier
}

// punctuation maps each single-character punctuation rune to its token type.
var punctuation = map[rune]TokenType{
	'\n': TokenNewline,
	';':  TokenSemicolon,
	':':  TokenColon,
	'=':  TokenAssign,
	'(':  TokenLeftParen,
	')':  TokenRightParen,
	',':  TokenComma,
	'+':  TokenPlus,
	'-':  TokenMinus,
	'*':  TokenStar,
	'/':  TokenSlash,
}

// IsKeyword reports whether tt is one of the reserved words.
func (tt TokenType) IsKeyword() bool {
	return tt >= TokenExtern && tt <= TokenStr
}

// IsOperator reports whether tt is one of the arithmetic operators.
func (tt TokenType) IsOperator() bool {
	return tt >= TokenPlus && tt <= TokenSlash
}

// IsLiteral reports whether tt is an integer or string literal.
func (tt TokenType) IsLiteral() bool {
	return tt == TokenInteger || tt == TokenString
}
