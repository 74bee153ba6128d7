package lexer

import (
	"fmt"
	"unicode"

	"github.com/hdc-lang/hdc/pkg/token"
)

// ErrorKind discriminates tokenization failures.
type ErrorKind int

const (
	UnexpectedChar ErrorKind = iota
	InvalidDigit
	// FoundUnexpectedEof is reserved for callers that require further input;
	// the scanner itself accepts a run cut short by the end of the buffer.
	FoundUnexpectedEof
)

// TokenizationError is fatal to the whole compilation and carries the
// line/column of the offending position.
type TokenizationError struct {
	Kind   ErrorKind
	Char   rune
	Text   string
	Line   int
	Column int
}

func (e *TokenizationError) Error() string {
	switch e.Kind {
	case UnexpectedChar:
		return fmt.Sprintf("unexpected character %q at %d:%d", e.Char, e.Line, e.Column)
	case InvalidDigit:
		return fmt.Sprintf("invalid numeric literal %q at %d:%d", e.Text, e.Line, e.Column)
	default:
		return fmt.Sprintf("unexpected end of input at %d:%d", e.Line, e.Column)
	}
}

var singleCharKinds = map[rune]token.Kind{
	'(': token.LParen,
	')': token.RParen,
	'{': token.LBrace,
	'}': token.RBrace,
	';': token.Semi,
	':': token.Colon,
	'=': token.Eq,
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Star,
	'/': token.Slash,
}

// Lexer performs a single left-to-right scan over the source runes.
type Lexer struct {
	source []rune
	cur    token.Cursor
}

func New(source string) *Lexer {
	return &Lexer{source: []rune(source), cur: token.NewCursor()}
}

// Scan converts the whole source into a token queue. No end-of-input marker
// is appended; callers detect exhaustion by queue emptiness.
func (l *Lexer) Scan() ([]token.Token, error) {
	var toks []token.Token
	for l.cur.Index() < len(l.source) {
		ch := l.source[l.cur.Index()]
		startLine, startCol := l.cur.Line(), l.cur.Column()

		switch {
		case ch == '\n':
			l.cur.AdvanceLine()
		case unicode.IsSpace(ch):
			l.cur.Advance()
		case unicode.IsDigit(ch):
			tok, err := l.digitLit(startLine, startCol)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
		case unicode.IsLetter(ch):
			toks = append(toks, l.identifierOrKeyword(startLine, startCol))
		default:
			if kind, ok := singleCharKinds[ch]; ok {
				l.cur.Advance()
				toks = append(toks, token.Token{Kind: kind, Line: startLine, Column: startCol, Len: 1})
				break
			}
			return nil, &TokenizationError{Kind: UnexpectedChar, Char: ch, Line: startLine, Column: startCol}
		}
	}
	return toks, nil
}

// read returns the rune under the cursor and steps past it. A rune that
// turns out to end the current run is handed back with Backward.
func (l *Lexer) read() (rune, bool) {
	if l.cur.Index() >= len(l.source) {
		return 0, false
	}
	ch := l.source[l.cur.Index()]
	l.cur.Advance()
	return ch, true
}

// digitLit greedily consumes a run of digits and dots. The whole run is
// scanned before a second dot is reported, so the error names the complete
// malformed literal.
func (l *Lexer) digitLit(startLine, startCol int) (token.Token, error) {
	start := l.cur.Index()
	dots := 0
	for {
		c, ok := l.read()
		if !ok {
			break
		}
		if c == '.' {
			dots++
			continue
		}
		if !unicode.IsDigit(c) {
			l.cur.Backward()
			break
		}
	}

	raw := string(l.source[start:l.cur.Index()])
	if dots > 1 {
		return token.Token{}, &TokenizationError{Kind: InvalidDigit, Text: raw, Line: startLine, Column: startCol}
	}
	kind := token.IntLit
	if dots == 1 {
		kind = token.FloatLit
	}
	return token.Token{Kind: kind, Value: raw, Line: startLine, Column: startCol, Len: len(raw)}, nil
}

func (l *Lexer) identifierOrKeyword(startLine, startCol int) token.Token {
	start := l.cur.Index()
	for {
		c, ok := l.read()
		if !ok {
			break
		}
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			l.cur.Backward()
			break
		}
	}

	value := string(l.source[start:l.cur.Index()])
	tok := token.Token{Kind: token.Ident, Value: value, Line: startLine, Column: startCol, Len: len(value)}
	if kind, isKeyword := token.KeywordMap[value]; isKeyword {
		tok.Kind = kind
		tok.Value = ""
	}
	return tok
}
