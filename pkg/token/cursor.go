package token

// Cursor tracks an absolute offset together with the line/column it maps to.
// The lexer owns exactly one cursor for the duration of a scan.
type Cursor struct {
	line   int
	column int
	idx    int
}

func NewCursor() Cursor {
	return Cursor{line: 1, column: 1}
}

func (c *Cursor) Line() int   { return c.line }
func (c *Cursor) Column() int { return c.column }
func (c *Cursor) Index() int  { return c.idx }

// Advance moves one character forward on the current line.
func (c *Cursor) Advance() int {
	c.column++
	c.idx++
	return c.idx
}

// Backward is the one-character pushback used after over-reading a
// greedy identifier or digit run.
func (c *Cursor) Backward() int {
	c.column--
	c.idx--
	return c.idx
}

// AdvanceLine consumes a newline, moving to column 1 of the next line.
func (c *Cursor) AdvanceLine() int {
	c.line++
	c.column = 1
	c.idx++
	return c.idx
}
