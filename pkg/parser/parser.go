package parser

import (
	"github.com/hdc-lang/hdc/pkg/ast"
	"github.com/hdc-lang/hdc/pkg/token"
)

// Parser consumes a token queue front-to-back and builds the AST by
// recursive descent. A Parser instance is single-use per queue: handing it a
// new queue while the previous one is unfinished is an error.
type Parser struct {
	tokens    []token.Token
	backtrace []ParseStep
	// rules is the stack of active parse function names; the innermost
	// one labels each consumed token's backtrace entry.
	rules []string
}

func New() *Parser {
	return &Parser{}
}

// ParseTokens parses the whole queue into a Program node. On failure the
// returned error carries the descent backtrace and the unconsumed remainder
// of the queue stays in place.
func (p *Parser) ParseTokens(toks []token.Token) (*ast.Node, error) {
	if len(p.tokens) > 0 {
		return nil, p.fail(&ParsingError{Kind: InQueueParsing})
	}
	p.tokens = toks

	var stmts []*ast.Node
	for len(p.tokens) > 0 {
		stmt, err := p.parse()
		if err != nil {
			return nil, err
		}
		if err := p.terminate(stmt); err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		p.backtrace = nil
	}
	return ast.NewProgram(stmts), nil
}

// terminate enforces the trailing semicolon. A function declared with a
// block body self-terminates; its semicolon is optional.
func (p *Parser) terminate(stmt *ast.Node) error {
	p.enter("parse")
	defer p.leave()
	if tk, ok := p.peek(); ok && tk.Kind == token.Semi {
		p.next()
		return nil
	}
	if stmt.Type == ast.FuncDecl && !stmt.Data.(*ast.FuncDeclNode).IsArrow {
		return nil
	}
	_, err := p.expect(token.Semi)
	return err
}

func (p *Parser) parse() (*ast.Node, error) {
	p.enter("parse")
	defer p.leave()
	tk, ok := p.peek()
	if !ok {
		return nil, p.fail(&ParsingError{Kind: EndedTokens})
	}
	switch tk.Kind {
	case token.Let:
		return p.parseLet()
	case token.Func:
		return p.parseFunc()
	default:
		first, _ := p.next()
		return p.parseAdditive(first)
	}
}

func (p *Parser) parseLet() (*ast.Node, error) {
	p.enter("parseLet")
	defer p.leave()
	letTok, _ := p.next()
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Eq); err != nil {
		return nil, err
	}
	first, ok := p.next()
	if !ok {
		return nil, p.fail(&ParsingError{Kind: EndedTokens})
	}
	init, err := p.parseAdditive(first)
	if err != nil {
		return nil, err
	}
	return ast.NewLetDecl(letTok, name.Value, init), nil
}

func (p *Parser) parseFunc() (*ast.Node, error) {
	p.enter("parseFunc")
	defer p.leave()
	funcTok, _ := p.next()
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}

	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}

	returnType := ""
	isArrow := false
	tk, ok := p.peek()
	if !ok {
		return nil, p.fail(&ParsingError{Kind: EndedTokens})
	}
	switch tk.Kind {
	case token.Colon:
		p.next()
		rt, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		returnType = rt.Value
		if eq, ok := p.peek(); ok && eq.Kind == token.Eq {
			p.next()
			isArrow = true
		}
	case token.Eq:
		p.next()
		isArrow = true
	case token.LBrace:
	default:
		return nil, p.fail(&ParsingError{Kind: UnexpectedToken, Received: tk.Kind, Tok: tk})
	}

	body, err := p.parse()
	if err != nil {
		return nil, err
	}
	if !isArrow && body.Type != ast.Block {
		return nil, p.fail(&ParsingError{Kind: ExpectedBlock, Tok: body.Tok})
	}
	return ast.NewFuncDecl(funcTok, name.Value, params, returnType, body, isArrow), nil
}

// parseParams consumes `name: type` pairs separated by semicolons up to and
// including the closing parenthesis.
func (p *Parser) parseParams() ([]ast.Param, error) {
	p.enter("parseParams")
	defer p.leave()
	var params []ast.Param
	for {
		tk, ok := p.peek()
		if !ok {
			return nil, p.fail(&ParsingError{Kind: EndedTokens})
		}
		if tk.Kind == token.RParen {
			p.next()
			return params, nil
		}
		name, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon); err != nil {
			return nil, err
		}
		ptype, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: name.Value, TypeName: ptype.Value, Tok: name})

		if sep, ok := p.peek(); ok && sep.Kind == token.RParen {
			p.next()
			return params, nil
		}
		if _, err := p.expect(token.Semi); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseAdditive(first token.Token) (*ast.Node, error) {
	p.enter("parseAdditive")
	defer p.leave()
	lhs, err := p.parseMultiplicative(first)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peek()
		if !ok || (op.Kind != token.Plus && op.Kind != token.Minus) {
			return lhs, nil
		}
		p.next()
		next, ok := p.next()
		if !ok {
			return nil, p.fail(&ParsingError{Kind: EndedTokens})
		}
		rhs, err := p.parseMultiplicative(next)
		if err != nil {
			return nil, err
		}
		lhs = ast.NewBinExpr(op, op.Kind, lhs, rhs)
	}
}

func (p *Parser) parseMultiplicative(first token.Token) (*ast.Node, error) {
	p.enter("parseMultiplicative")
	defer p.leave()
	lhs, err := p.parsePrimary(first)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peek()
		if !ok || (op.Kind != token.Star && op.Kind != token.Slash) {
			return lhs, nil
		}
		p.next()
		next, ok := p.next()
		if !ok {
			return nil, p.fail(&ParsingError{Kind: EndedTokens})
		}
		rhs, err := p.parsePrimary(next)
		if err != nil {
			return nil, err
		}
		lhs = ast.NewBinExpr(op, op.Kind, lhs, rhs)
	}
}

func (p *Parser) parsePrimary(first token.Token) (*ast.Node, error) {
	p.enter("parsePrimary")
	defer p.leave()
	switch first.Kind {
	case token.Ident:
		return ast.NewIdent(first), nil
	case token.IntLit:
		return ast.NewIntLit(first), nil
	case token.FloatLit:
		return ast.NewFloatLit(first), nil
	case token.Minus:
		next, ok := p.next()
		if !ok {
			return nil, p.fail(&ParsingError{Kind: EndedTokens})
		}
		inner, err := p.parseAdditive(next)
		if err != nil {
			return nil, err
		}
		return ast.NewNegative(first, inner), nil
	case token.LParen:
		next, ok := p.next()
		if !ok {
			return nil, p.fail(&ParsingError{Kind: EndedTokens})
		}
		expr, err := p.parseAdditive(next)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return expr, nil
	case token.LBrace:
		return p.parseBlock(first)
	default:
		return nil, p.fail(&ParsingError{Kind: UnexpectedToken, Received: first.Kind, Tok: first})
	}
}

func (p *Parser) parseBlock(lbrace token.Token) (*ast.Node, error) {
	p.enter("parseBlock")
	defer p.leave()
	var stmts []*ast.Node
	for {
		tk, ok := p.peek()
		if !ok {
			return nil, p.fail(&ParsingError{Kind: EndedTokens})
		}
		if tk.Kind == token.RBrace {
			p.next()
			return ast.NewBlock(lbrace, stmts), nil
		}
		stmt, err := p.parse()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)

		if sep, ok := p.peek(); ok {
			if sep.Kind == token.Semi {
				p.next()
				continue
			}
			if sep.Kind == token.RBrace {
				p.next()
				return ast.NewBlock(lbrace, stmts), nil
			}
		}
		if _, err := p.expect(token.Semi); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) peek() (token.Token, bool) {
	if len(p.tokens) == 0 {
		return token.Token{}, false
	}
	return p.tokens[0], true
}

// next consumes the front of the queue, logging the token to the backtrace
// under the active parse function.
func (p *Parser) next() (token.Token, bool) {
	if len(p.tokens) == 0 {
		return token.Token{}, false
	}
	tk := p.tokens[0]
	p.tokens = p.tokens[1:]
	fn := ""
	if len(p.rules) > 0 {
		fn = p.rules[len(p.rules)-1]
	}
	p.backtrace = append(p.backtrace, ParseStep{Fn: fn, Tok: tk})
	return tk, true
}

func (p *Parser) expect(kind token.Kind) (token.Token, error) {
	tk, ok := p.next()
	if !ok {
		return token.Token{}, p.fail(&ParsingError{Kind: EndedTokens, Expected: kind})
	}
	if tk.Kind != kind {
		return token.Token{}, p.fail(&ParsingError{Kind: WrongToken, Expected: kind, Received: tk.Kind, Tok: tk})
	}
	return tk, nil
}

func (p *Parser) enter(fn string) {
	p.rules = append(p.rules, fn)
}

func (p *Parser) leave() {
	p.rules = p.rules[:len(p.rules)-1]
}

// fail snapshots the current backtrace into the error.
func (p *Parser) fail(e *ParsingError) *ParsingError {
	e.Backtrace = append([]ParseStep(nil), p.backtrace...)
	return e
}
