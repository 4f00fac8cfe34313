package prefs

import (
	"errors"
	"fmt"
	"os"
)

// Parse tokenizes and parses preference DSL text into entries, one per
// statement, in file order. Duplicate keys are not collapsed here; the merge
// layer's key map decides which occurrence wins.
func Parse(input string) ([]PrefEntry, error) {
	p := &parser{lex: NewLexer(input)}
	if err := p.advance(); err != nil {
		return nil, err
	}

	var entries []PrefEntry
	for p.tok.Kind != TokenEOF {
		entry, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ParseFile reads and parses a preference file from disk.
func ParseFile(path string) ([]PrefEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &FileNotFoundError{File: path}
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	entries, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return entries, nil
}

// parser is a recursive-descent parser with one token of lookahead.
type parser struct {
	lex *Lexer
	tok Token
}

// advance fetches the next token. A lexer failure is rewrapped as a
// ParseError at the lexer's position so the caller sees one error channel.
func (p *parser) advance() error {
	tok, err := p.lex.NextToken()
	if err != nil {
		var le *LexError
		if errors.As(err, &le) {
			return &ParseError{Line: le.Line, Column: le.Column, Message: le.Message}
		}
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{
		Line:    p.lex.Line(),
		Column:  p.lex.Column(),
		Message: fmt.Sprintf(format, args...),
	}
}

// parseStatement consumes one `fn("key", value);` statement.
func (p *parser) parseStatement() (PrefEntry, error) {
	prefType, err := p.parsePrefType()
	if err != nil {
		return PrefEntry{}, err
	}
	if err := p.expect(TokenLeftParen); err != nil {
		return PrefEntry{}, err
	}
	key, err := p.expectString()
	if err != nil {
		return PrefEntry{}, err
	}
	if err := p.expect(TokenComma); err != nil {
		return PrefEntry{}, err
	}
	value, err := p.parseValue()
	if err != nil {
		return PrefEntry{}, err
	}
	if err := p.expect(TokenRightParen); err != nil {
		return PrefEntry{}, err
	}
	if err := p.expect(TokenSemicolon); err != nil {
		return PrefEntry{}, err
	}
	return PrefEntry{Key: key, Value: value, Type: prefType}, nil
}

// parsePrefType maps the leading identifier to a PrefType. Only the four
// preference functions are accepted; anything else is a hard error naming
// the offending identifier.
func (p *parser) parsePrefType() (PrefType, error) {
	if p.tok.Kind != TokenIdentifier {
		return 0, p.errorf("expected pref function name (user_pref, pref, lock_pref, sticky_pref), got %s", p.tok)
	}
	var prefType PrefType
	switch p.tok.Text {
	case "user_pref":
		prefType = PrefTypeUser
	case "pref":
		prefType = PrefTypeDefault
	case "lock_pref":
		prefType = PrefTypeLocked
	case "sticky_pref":
		prefType = PrefTypeSticky
	default:
		return 0, p.errorf("unknown pref function %q, expected user_pref, pref, lock_pref, or sticky_pref", p.tok.Text)
	}
	if err := p.advance(); err != nil {
		return 0, err
	}
	return prefType, nil
}

// parseValue maps a value token to its PrefValue variant. Numbers go through
// the Integer/Float disambiguation in NumberValue.
func (p *parser) parseValue() (PrefValue, error) {
	var value PrefValue
	switch p.tok.Kind {
	case TokenString:
		value = StringValue(p.tok.Text)
	case TokenNumber:
		value = NumberValue(p.tok.Number)
	case TokenBoolean:
		value = BoolValue(p.tok.Bool)
	case TokenNull:
		value = NullValue()
	default:
		return PrefValue{}, p.errorf("expected value, got %s", p.tok)
	}
	if err := p.advance(); err != nil {
		return PrefValue{}, err
	}
	return value, nil
}

func (p *parser) expect(kind TokenKind) error {
	if p.tok.Kind != kind {
		return p.errorf("expected %s, got %s", kind, p.tok)
	}
	return p.advance()
}

func (p *parser) expectString() (string, error) {
	if p.tok.Kind != TokenString {
		return "", p.errorf("expected string, got %s", p.tok)
	}
	s := p.tok.Text
	if err := p.advance(); err != nil {
		return "", err
	}
	return s, nil
}
