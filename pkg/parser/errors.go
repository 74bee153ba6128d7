package parser

import (
	"fmt"
	"strings"

	"github.com/hdc-lang/hdc/pkg/token"
)

type ErrorKind int

const (
	EndedTokens ErrorKind = iota
	UnexpectedToken
	WrongToken
	InQueueParsing
	ExpectedBlock
)

// ParseStep records one consumed token and the parse function that
// consumed it.
type ParseStep struct {
	Fn  string
	Tok token.Token
}

// ParsingError is fatal to the whole compilation. The backtrace lists the
// parse functions that were active when the error surfaced, outermost first.
type ParsingError struct {
	Kind      ErrorKind
	Expected  token.Kind
	Received  token.Kind
	Tok       token.Token
	Backtrace []ParseStep
}

func (e *ParsingError) Error() string {
	switch e.Kind {
	case EndedTokens:
		return "ran out of tokens while parsing"
	case UnexpectedToken:
		return fmt.Sprintf("unexpected token %s at %d:%d", e.Received, e.Tok.Line, e.Tok.Column)
	case WrongToken:
		return fmt.Sprintf("wrong token: expected %s, received %s at %d:%d",
			e.Expected, e.Received, e.Tok.Line, e.Tok.Column)
	case InQueueParsing:
		return "parser already holds an unconsumed token queue"
	case ExpectedBlock:
		return fmt.Sprintf("expected a block body at %d:%d", e.Tok.Line, e.Tok.Column)
	}
	return "parsing failed"
}

// BacktraceString renders the consumed tokens for diagnostics, one per
// line, oldest first.
func (e *ParsingError) BacktraceString() string {
	if len(e.Backtrace) == 0 {
		return ""
	}
	var b strings.Builder
	for _, step := range e.Backtrace {
		fmt.Fprintf(&b, "  in %s at %d:%d (%s)\n", step.Fn, step.Tok.Line, step.Tok.Column, step.Tok.Kind)
	}
	return strings.TrimRight(b.String(), "\n")
}
