package lexer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrUnreadableSource is returned by Open when the source file cannot be
// opened or read. No tokens are produced in that case.
var ErrUnreadableSource = errors.New("unreadable source")

// Lexer converts Orka source into tokens.
//
// Scanning accumulates a buffer of non-whitespace, non-punctuation characters.
// When a punctuation character ends a non-empty buffer, the punctuation token
// is pushed back and the buffer token is returned first, so tokens always come
// out in source order.
type Lexer struct {
	source   string
	filename string

	// current is the byte offset of the next rune to read.
	current int

	// line is the 1-based line of current; lineStart is the offset at which
	// that line begins.
	line      int
	lineStart int

	// pending holds tokens handed back through Pushback. The most recently
	// pushed token is returned first.
	pending []Token
}

// New creates a Lexer over source. filename is only used in positions.
func New(source, filename string) *Lexer {
	return &Lexer{
		source:   source,
		filename: filename,
		line:     1,
	}
}

// Open creates a Lexer over the contents of the file at path. The file is
// closed before Open returns, whether or not reading succeeded.
func Open(path string) (*Lexer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableSource, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableSource, path, err)
	}
	return New(string(data), path), nil
}

// Filename returns the name used in token positions.
func (l *Lexer) Filename() string {
	return l.filename
}

// Pushback returns tok to the lexer; the next call to NextToken yields it.
// Several tokens may be pushed back and come out in reverse order.
func (l *Lexer) Pushback(tok Token) {
	l.pending = append(l.pending, tok)
}

// NextToken returns the next token.
//
// A lexical error (unterminated string, integer literal out of range) is
// returned together with a TokenInvalid token; the lexer stays usable and the
// caller may continue. After the input is exhausted every call returns
// TokenEOF.
func (l *Lexer) NextToken() (Token, error) {
	if n := len(l.pending); n > 0 {
		tok := l.pending[n-1]
		l.pending = l.pending[:n-1]
		return tok, nil
	}

	var buf strings.Builder
	var start Position

	for {
		if l.isAtEnd() {
			if buf.Len() > 0 {
				return l.classify(buf.String(), start)
			}
			return Token{Type: TokenEOF, Position: l.currentPosition()}, nil
		}

		pos := l.currentPosition()
		ch := l.peek()

		switch ch {
		case ' ', '\t', '\r':
			l.advance()
			if buf.Len() > 0 {
				return l.classify(buf.String(), start)
			}
			continue

		case '#':
			// Leave the '#' in place so the next call starts the comment.
			if buf.Len() > 0 {
				return l.classify(buf.String(), start)
			}
			l.skipComment()
			continue

		case '"':
			if buf.Len() > 0 {
				return l.classify(buf.String(), start)
			}
			l.advance()
			return l.scanString(pos)
		}

		if tokenType, ok := punctuation[ch]; ok {
			l.advance()
			punct := Token{Type: tokenType, Lexeme: string(ch), Position: pos}
			if buf.Len() == 0 {
				return punct, nil
			}
			l.Pushback(punct)
			return l.classify(buf.String(), start)
		}

		if buf.Len() == 0 {
			start = pos
		}
		l.advance()
		buf.WriteRune(ch)
	}
}

// Tokenize drains the lexer, returning every token up to and including
// TokenEOF together with any lexical errors met on the way.
func (l *Lexer) Tokenize() ([]Token, []error) {
	var tokens []Token
	var errs []error
	for {
		tok, err := l.NextToken()
		if err != nil {
			errs = append(errs, err)
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, errs
		}
	}
}

// classify turns a completed buffer into a keyword, integer or identifier
// token, in that order of preference.
func (l *Lexer) classify(word string, pos Position) (Token, error) {
	if tokenType := LookupKeyword(word); tokenType != TokenIdentifier {
		return Token{Type: tokenType, Lexeme: word, Position: pos}, nil
	}

	if isInteger(word) {
		value, err := strconv.ParseInt(word, 10, 32)
		if err != nil {
			return Token{Type: TokenInvalid, Lexeme: word, Position: pos},
				errorAt(pos, fmt.Sprintf("integer literal %s is out of range for a 32-bit int", word))
		}
		return Token{Type: TokenInteger, Lexeme: word, Value: int32(value), Position: pos}, nil
	}

	return Token{Type: TokenIdentifier, Lexeme: word, Position: pos}, nil
}

// scanString reads a string literal whose opening quote has been consumed.
// \n and \t are decoded; any other escaped character keeps its backslash.
func (l *Lexer) scanString(pos Position) (Token, error) {
	var sb strings.Builder

	for !l.isAtEnd() {
		ch := l.advance()
		switch ch {
		case '"':
			return Token{Type: TokenString, Lexeme: sb.String(), Position: pos}, nil
		case '\\':
			if l.isAtEnd() {
				break
			}
			switch esc := l.advance(); esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte('\\')
				sb.WriteRune(esc)
			}
		default:
			sb.WriteRune(ch)
		}
	}

	return Token{Type: TokenInvalid, Lexeme: sb.String(), Position: pos},
		errorAt(pos, "unterminated string literal")
}

// skipComment discards a '#' comment up to, but not including, the newline.
func (l *Lexer) skipComment() {
	for !l.isAtEnd() && l.peek() != '\n' {
		l.advance()
	}
}

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.source[l.current:])
	return ch
}

// advance consumes one rune and keeps the line bookkeeping current.
func (l *Lexer) advance() rune {
	if l.isAtEnd() {
		return 0
	}
	ch, size := utf8.DecodeRuneInString(l.source[l.current:])
	l.current += size
	if ch == '\n' {
		l.line++
		l.lineStart = l.current
	}
	return ch
}

func (l *Lexer) currentPosition() Position {
	return Position{
		Filename: l.filename,
		Line:     l.line,
		Column:   utf8.RuneCountInString(l.source[l.lineStart:l.current]) + 1,
		Offset:   l.current,
	}
}

func errorAt(pos Position, message string) error {
	return fmt.Errorf("%s: %s", pos, message)
}

func isInteger(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		if word[i] < '0' || word[i] > '9' {
			return false
		}
	}
	return true
}
