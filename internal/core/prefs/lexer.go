package prefs

import (
	"fmt"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

// Lexer tokenizes the preference DSL one token at a time. It keeps 1-indexed
// line and column counters that advance on every consumed character,
// including characters inside comments and string literals, so error
// positions stay accurate after skipped content.
type Lexer struct {
	input  string
	pos    int
	line   int
	column int
}

// NewLexer returns a lexer over the given input text.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1, column: 1}
}

// Line returns the current 1-indexed line number.
func (l *Lexer) Line() int { return l.line }

// Column returns the current 1-indexed column number.
func (l *Lexer) Column() int { return l.column }

// NextToken returns the next token, or a *LexError. Call repeatedly until a
// TokenEOF is returned.
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespaceAndComments()

	c, ok := l.peek()
	if !ok {
		return Token{Kind: TokenEOF}, nil
	}

	switch {
	case c == '(':
		l.advance()
		return Token{Kind: TokenLeftParen}, nil
	case c == ')':
		l.advance()
		return Token{Kind: TokenRightParen}, nil
	case c == ',':
		l.advance()
		return Token{Kind: TokenComma}, nil
	case c == ';':
		l.advance()
		return Token{Kind: TokenSemicolon}, nil
	case c == '"':
		return l.lexString()
	case c == '-' || (c >= '0' && c <= '9'):
		return l.lexNumber()
	case isIdentStart(c):
		return l.lexIdentifier(), nil
	default:
		return Token{}, l.errorf("unexpected character %q", c)
	}
}

func isIdentStart(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c rune) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// peek returns the rune at the current position without consuming it.
func (l *Lexer) peek() (rune, bool) {
	if l.pos >= len(l.input) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r, true
}

// advance consumes one rune. Newline handling is the caller's job; advance
// only moves the column.
func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}
	_, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	l.column++
}

// next consumes and returns one rune.
func (l *Lexer) next() (rune, bool) {
	r, ok := l.peek()
	if !ok {
		return 0, false
	}
	l.advance()
	return r, true
}

// newline records a consumed '\n'. advance already bumped the column, so the
// reset here leaves the next character at column 1.
func (l *Lexer) newline() {
	l.line++
	l.column = 1
}

func (l *Lexer) errorf(format string, args ...any) error {
	return &LexError{Line: l.line, Column: l.column, Message: fmt.Sprintf(format, args...)}
}

// skipWhitespaceAndComments consumes spaces, tabs, carriage returns, newlines,
// and both comment forms. An unterminated block comment silently runs to end
// of input; prefs files in the wild rely on that leniency.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for {
			c, ok := l.peek()
			if !ok {
				return
			}
			if c == ' ' || c == '\t' || c == '\r' {
				l.advance()
			} else if c == '\n' {
				l.advance()
				l.newline()
			} else {
				break
			}
		}

		c, ok := l.peek()
		if !ok || c != '/' {
			return
		}
		l.advance()

		switch next, _ := l.peek(); next {
		case '/':
			l.advance()
			for {
				c, ok := l.peek()
				if !ok || c == '\n' {
					break
				}
				l.advance()
			}
		case '*':
			l.advance()
			for {
				c, ok := l.next()
				if !ok {
					return // unterminated block comment: recover silently
				}
				if c == '\n' {
					l.newline()
				} else if c == '*' {
					if n, ok := l.peek(); ok && n == '/' {
						l.advance()
						break
					}
				}
			}
		default:
			// A lone slash is not valid here. Leave it for NextToken to
			// report as an unexpected character.
			return
		}
	}
}

func (l *Lexer) lexIdentifier() Token {
	start := l.pos
	for {
		c, ok := l.peek()
		if !ok || !isIdentPart(c) {
			break
		}
		l.advance()
	}
	ident := l.input[start:l.pos]

	switch ident {
	case "true":
		return Token{Kind: TokenBoolean, Bool: true}
	case "false":
		return Token{Kind: TokenBoolean, Bool: false}
	case "null":
		return Token{Kind: TokenNull}
	default:
		return Token{Kind: TokenIdentifier, Text: ident}
	}
}

// lexString decodes a double-quoted string literal, processing the full
// JavaScript escape table used by preference files. Raw newlines inside the
// literal are accepted verbatim.
func (l *Lexer) lexString() (Token, error) {
	startCol := l.column
	l.advance() // opening quote

	var out []rune
	for {
		c, ok := l.next()
		if !ok {
			return Token{}, &LexError{Line: l.line, Column: startCol, Message: "unterminated string literal"}
		}
		switch c {
		case '"':
			return Token{Kind: TokenString, Text: string(out)}, nil
		case '\n':
			l.newline()
			out = append(out, '\n')
		case '\\':
			r, err := l.lexEscape()
			if err != nil {
				return Token{}, err
			}
			out = append(out, r)
		default:
			out = append(out, c)
		}
	}
}

func (l *Lexer) lexEscape() (rune, error) {
	c, ok := l.next()
	if !ok {
		return 0, l.errorf("unexpected end of input in escape sequence")
	}
	switch c {
	case '"':
		return '"', nil
	case '\'':
		return '\'', nil
	case '\\':
		return '\\', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'b':
		return '\x08', nil
	case 'f':
		return '\x0c', nil
	case '0':
		// \0 is NUL, but \00 would be an octal escape, which the format does
		// not support. \0 followed by 1-9 is fine: NUL then that digit.
		if n, ok := l.peek(); ok && n == '0' {
			return 0, l.errorf("octal escape sequences are not supported, use \\x00 instead")
		}
		return 0, nil
	case 'x':
		return l.lexHexEscape(2, 'x')
	case 'u':
		return l.lexHexEscape(4, 'u')
	default:
		return 0, l.errorf("invalid escape sequence '\\%c'", c)
	}
}

// lexHexEscape reads exactly n hex digits after \x or \u. \xHH yields that
// byte as a rune; \uHHHH is one UTF-16 code unit, with unpaired surrogates
// replaced by U+FFFD.
func (l *Lexer) lexHexEscape(n int, introducer rune) (rune, error) {
	var digits []rune
	for i := 0; i < n; i++ {
		c, ok := l.peek()
		if !ok || !isHexDigit(c) {
			break
		}
		digits = append(digits, c)
		l.advance()
	}
	if len(digits) != n {
		return 0, l.errorf("incomplete hex escape '\\%c%s'", introducer, string(digits))
	}
	v, err := strconv.ParseUint(string(digits), 16, 32)
	if err != nil {
		return 0, l.errorf("invalid hex escape '\\%c%s'", introducer, string(digits))
	}
	r := rune(v)
	if introducer == 'u' && utf16.IsSurrogate(r) {
		r = utf8.RuneError
	}
	return r, nil
}

// lexNumber scans an optionally signed decimal literal with optional fraction
// and exponent. The accumulated text is parsed as a float64; the parser
// decides later whether it becomes an Integer or a Float.
func (l *Lexer) lexNumber() (Token, error) {
	startCol := l.column
	var buf []byte

	if c, ok := l.peek(); ok && c == '-' {
		buf = append(buf, '-')
		l.advance()
	}

	for {
		c, ok := l.peek()
		if !ok || c < '0' || c > '9' {
			break
		}
		buf = append(buf, byte(c))
		l.advance()
	}

	if c, ok := l.peek(); ok && c == '.' {
		buf = append(buf, '.')
		l.advance()
		for {
			c, ok := l.peek()
			if !ok || c < '0' || c > '9' {
				break
			}
			buf = append(buf, byte(c))
			l.advance()
		}
	}

	if c, ok := l.peek(); ok && (c == 'e' || c == 'E') {
		buf = append(buf, 'e')
		l.advance()
		if c, ok := l.peek(); ok && (c == '+' || c == '-') {
			buf = append(buf, byte(c))
			l.advance()
		}
		hasExpDigit := false
		for {
			c, ok := l.peek()
			if !ok || c < '0' || c > '9' {
				break
			}
			buf = append(buf, byte(c))
			l.advance()
			hasExpDigit = true
		}
		if !hasExpDigit {
			return Token{}, l.errorf("missing exponent digits in scientific notation")
		}
	}

	f, err := strconv.ParseFloat(string(buf), 64)
	if err != nil {
		return Token{}, &LexError{
			Line:    l.line,
			Column:  startCol,
			Message: fmt.Sprintf("failed to parse number %q", string(buf)),
		}
	}
	return Token{Kind: TokenNumber, Number: f}, nil
}
