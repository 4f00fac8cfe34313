package prefs

import "fmt"

// LexError reports a tokenization failure with its 1-indexed source position.
type LexError struct {
	Line    int
	Column  int
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// ParseError reports a grammar violation with its 1-indexed source position.
// Lexer failures encountered during parsing are surfaced as ParseErrors
// carrying the lexer's position, so callers deal with one error channel.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// FileNotFoundError indicates a preference file expected on disk is missing.
type FileNotFoundError struct {
	File string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("preference file not found: %s", e.File)
}
