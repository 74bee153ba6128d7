package token

// Kind identifies the lexical class of a token.
type Kind int

const (
	EOF Kind = iota
	Let
	Func
	Ident
	IntLit
	FloatLit
	LParen
	RParen
	LBrace
	RBrace
	Semi
	Colon
	Eq
	Plus
	Minus
	Star
	Slash
)

var KeywordMap = map[string]Kind{
	"let":  Let,
	"func": Func,
}

var kindNames = map[Kind]string{
	EOF:      "EndOfInput",
	Let:      "Let",
	Func:     "Func",
	Ident:    "Identifier",
	IntLit:   "IntLit",
	FloatLit: "FloatLit",
	LParen:   "LParen",
	RParen:   "RParen",
	LBrace:   "LBrace",
	RBrace:   "RBrace",
	Semi:     "SemiColon",
	Colon:    "Colon",
	Eq:       "Eq",
	Plus:     "Plus",
	Minus:    "Minus",
	Star:     "Star",
	Slash:    "Slash",
}

var kindGlyphs = map[Kind]string{
	LParen: "(",
	RParen: ")",
	LBrace: "{",
	RBrace: "}",
	Semi:   ";",
	Colon:  ":",
	Eq:     "=",
	Plus:   "+",
	Minus:  "-",
	Star:   "*",
	Slash:  "/",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Token is an immutable positioned lexeme. Value holds the raw source text
// for identifiers and numeric literals and is empty for fixed lexemes.
type Token struct {
	Kind   Kind
	Value  string
	Line   int
	Column int
	Len    int
}

// Text returns the source spelling of the token.
func (t Token) Text() string {
	switch t.Kind {
	case Let:
		return "let"
	case Func:
		return "func"
	case Ident, IntLit, FloatLit:
		return t.Value
	default:
		return kindGlyphs[t.Kind]
	}
}
