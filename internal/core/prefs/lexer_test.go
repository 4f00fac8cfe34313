package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lexAll drains the lexer, failing the test on any error.
func lexAll(t *testing.T, input string) []Token {
	t.Helper()
	lex := NewLexer(input)
	var tokens []Token
	for {
		tok, err := lex.NextToken()
		require.NoError(t, err)
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens
		}
	}
}

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestLexer_Punctuation(t *testing.T) {
	tokens := lexAll(t, "( ) , ;")
	assert.Equal(t, []TokenKind{
		TokenLeftParen, TokenRightParen, TokenComma, TokenSemicolon, TokenEOF,
	}, kinds(tokens))
}

func TestLexer_SkipsWhitespace(t *testing.T) {
	tokens := lexAll(t, "   (  \t\r  )  ;")
	assert.Equal(t, []TokenKind{TokenLeftParen, TokenRightParen, TokenSemicolon, TokenEOF}, kinds(tokens))
}

func TestLexer_Comments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenKind
	}{
		{
			name:  "single_line_comment",
			input: "( // a comment\n )",
			want:  []TokenKind{TokenLeftParen, TokenRightParen, TokenEOF},
		},
		{
			name:  "block_comment",
			input: "( /* spans\ntwo lines */ )",
			want:  []TokenKind{TokenLeftParen, TokenRightParen, TokenEOF},
		},
		{
			name:  "unterminated_block_comment_recovers",
			input: "( /* never closed",
			want:  []TokenKind{TokenLeftParen, TokenEOF},
		},
		{
			name:  "comment_only_input",
			input: "// nothing here",
			want:  []TokenKind{TokenEOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(lexAll(t, tt.input)))
		})
	}
}

func TestLexer_IdentifiersAndKeywords(t *testing.T) {
	tokens := lexAll(t, "user_pref pref lock_pref sticky_pref true false null")
	require.Len(t, tokens, 8)
	assert.Equal(t, Token{Kind: TokenIdentifier, Text: "user_pref"}, tokens[0])
	assert.Equal(t, Token{Kind: TokenIdentifier, Text: "pref"}, tokens[1])
	assert.Equal(t, Token{Kind: TokenIdentifier, Text: "lock_pref"}, tokens[2])
	assert.Equal(t, Token{Kind: TokenIdentifier, Text: "sticky_pref"}, tokens[3])
	assert.Equal(t, Token{Kind: TokenBoolean, Bool: true}, tokens[4])
	assert.Equal(t, Token{Kind: TokenBoolean, Bool: false}, tokens[5])
	assert.Equal(t, Token{Kind: TokenNull}, tokens[6])
}

func TestLexer_Strings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: `"hello world"`, want: "hello world"},
		{name: "escaped_quotes", input: `"value with \"quotes\""`, want: `value with "quotes"`},
		{name: "single_quote_escape", input: `"it\'s"`, want: "it's"},
		{name: "backslashes", input: `"C:\\path\\to\\file"`, want: `C:\path\to\file`},
		{name: "newline_tab", input: `"line1\nline2\ttab"`, want: "line1\nline2\ttab"},
		{name: "carriage_return", input: `"a\rb"`, want: "a\rb"},
		{name: "backspace", input: `"test\bvalue"`, want: "test\x08value"},
		{name: "form_feed", input: `"test\fvalue"`, want: "test\x0cvalue"},
		{name: "null_escape", input: `"test\0value"`, want: "test\x00value"},
		{name: "null_then_nonzero_digit", input: `"test\01"`, want: "test\x001"},
		{name: "hex_escape", input: `"\x41"`, want: "A"},
		{name: "unicode_escape", input: `"\u0041"`, want: "A"},
		{name: "unicode_bmp", input: `"\u00e9"`, want: "\u00e9"},
		{name: "unicode_lone_surrogate_replaced", input: `"\ud800"`, want: "\uFFFD"},
		{name: "escape_run", input: `"\b\f\0"`, want: "\x08\x0c\x00"},
		{name: "raw_newline_kept", input: "\"a\nb\"", want: "a\nb"},
		{name: "raw_utf8_passthrough", input: `"héllo"`, want: "héllo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lex := NewLexer(tt.input)
			tok, err := lex.NextToken()
			require.NoError(t, err)
			require.Equal(t, TokenString, tok.Kind)
			assert.Equal(t, tt.want, tok.Text)
		})
	}
}

func TestLexer_StringErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{name: "octal_escape_rejected", input: `"test\00"`, wantMsg: "octal escape"},
		{name: "unknown_escape", input: `"bad\q"`, wantMsg: "invalid escape sequence"},
		{name: "short_hex_escape", input: `"\x4"`, wantMsg: "incomplete hex escape"},
		{name: "nonhex_hex_escape", input: `"\xGG"`, wantMsg: "incomplete hex escape"},
		{name: "short_unicode_escape", input: `"\u041"`, wantMsg: "incomplete hex escape"},
		{name: "eof_in_escape", input: `"trailing\`, wantMsg: "unexpected end of input"},
		{name: "unterminated", input: `"no closing quote`, wantMsg: "unterminated string literal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lex := NewLexer(tt.input)
			_, err := lex.NextToken()
			require.Error(t, err)
			var lexErr *LexError
			require.ErrorAs(t, err, &lexErr)
			assert.Contains(t, lexErr.Message, tt.wantMsg)
		})
	}
}

func TestLexer_UnterminatedString_ReportsOpeningQuoteColumn(t *testing.T) {
	lex := NewLexer(`  "never closed`)
	_, err := lex.NextToken()
	var lexErr *LexError
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, 1, lexErr.Line)
	assert.Equal(t, 3, lexErr.Column)
}

func TestLexer_Numbers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "integer", input: "42", want: 42},
		{name: "negative_integer", input: "-42", want: -42},
		{name: "zero", input: "0", want: 0},
		{name: "float", input: "2.5", want: 2.5},
		{name: "negative_float", input: "-3.14", want: -3.14},
		{name: "scientific", input: "1.5e10", want: 1.5e10},
		{name: "scientific_negative_exponent", input: "3e-8", want: 3e-8},
		{name: "scientific_explicit_plus", input: "-2.5e+3", want: -2.5e3},
		{name: "uppercase_exponent", input: "1E3", want: 1e3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lex := NewLexer(tt.input)
			tok, err := lex.NextToken()
			require.NoError(t, err)
			require.Equal(t, TokenNumber, tok.Kind)
			assert.Equal(t, tt.want, tok.Number)
		})
	}
}

func TestLexer_NumberErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{name: "missing_exponent_digits", input: "1e", wantMsg: "missing exponent digits"},
		{name: "missing_exponent_digits_after_sign", input: "1e+", wantMsg: "missing exponent digits"},
		{name: "bare_minus", input: "-", wantMsg: "failed to parse number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lex := NewLexer(tt.input)
			_, err := lex.NextToken()
			require.Error(t, err)
			var lexErr *LexError
			require.ErrorAs(t, err, &lexErr)
			assert.Contains(t, lexErr.Message, tt.wantMsg)
		})
	}
}

func TestLexer_UnexpectedCharacter(t *testing.T) {
	lex := NewLexer("\n  @")
	_, err := lex.NextToken()
	var lexErr *LexError
	require.ErrorAs(t, err, &lexErr)
	assert.Contains(t, lexErr.Message, "unexpected character")
	assert.Equal(t, 2, lexErr.Line)
	assert.Equal(t, 3, lexErr.Column)
}

func TestLexer_PositionTracking_AcrossCommentsAndStrings(t *testing.T) {
	// The @ sits on line 4 after a block comment and a multi-line string.
	input := "/* one\ntwo */ \"a\nb\"\n@"
	lex := NewLexer(input)
	tok, err := lex.NextToken()
	require.NoError(t, err)
	require.Equal(t, TokenString, tok.Kind)

	_, err = lex.NextToken()
	var lexErr *LexError
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, 4, lexErr.Line)
	assert.Equal(t, 1, lexErr.Column)
}

func TestLexer_FullStatement(t *testing.T) {
	tokens := lexAll(t, `user_pref("key", value);`)
	assert.Equal(t, []TokenKind{
		TokenIdentifier, TokenLeftParen, TokenString, TokenComma,
		TokenIdentifier, TokenRightParen, TokenSemicolon, TokenEOF,
	}, kinds(tokens))
}
