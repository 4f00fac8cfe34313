package prefs

import "fmt"

// TokenKind enumerates the token types produced by the Lexer.
type TokenKind int

const (
	TokenIdentifier TokenKind = iota
	TokenString
	TokenNumber
	TokenBoolean
	TokenNull
	TokenLeftParen
	TokenRightParen
	TokenComma
	TokenSemicolon
	TokenEOF
)

// String returns a human-readable name for the token kind, used in parse
// error messages ("expected ';', got identifier").
func (k TokenKind) String() string {
	switch k {
	case TokenIdentifier:
		return "identifier"
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	case TokenBoolean:
		return "boolean"
	case TokenNull:
		return "null"
	case TokenLeftParen:
		return "'('"
	case TokenRightParen:
		return "')'"
	case TokenComma:
		return "','"
	case TokenSemicolon:
		return "';'"
	case TokenEOF:
		return "end of input"
	default:
		return fmt.Sprintf("unknown token kind %d", int(k))
	}
}

// Token is a single lexeme. Text carries identifier names and decoded string
// contents, Number carries numeric literals, Bool carries boolean literals.
// Tokens are transient: the parser holds at most one of lookahead.
type Token struct {
	Kind   TokenKind
	Text   string
	Number float64
	Bool   bool
}

// String renders the token for error messages, quoting identifier names so
// typos show up verbatim.
func (t Token) String() string {
	switch t.Kind {
	case TokenIdentifier:
		return fmt.Sprintf("identifier %q", t.Text)
	case TokenString:
		return fmt.Sprintf("string %q", t.Text)
	case TokenNumber:
		return fmt.Sprintf("number %v", t.Number)
	case TokenBoolean:
		return fmt.Sprintf("boolean %v", t.Bool)
	default:
		return t.Kind.String()
	}
}
