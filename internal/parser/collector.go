package parser

import (
	"bufio"
	"io"
	"strings"
)

// DefaultCloser is the token that terminates a block construct when it is
// the first non-space text on a line
const DefaultCloser = "}"

// maxLineSize caps a single script line
const maxLineSize = 1024 * 1024

// sourceLine is a line plus where it came from. col is non-zero for the
// remainder of a terminator line pushed back onto the source.
type sourceLine struct {
	text string
	num  int // 1-indexed
	col  int // 0-indexed offset of text within the original line
}

// lineSource is a cursor over the input lines. Lines pushed back are read
// again before the underlying reader is advanced.
type lineSource struct {
	scanner *bufio.Scanner
	pending []sourceLine // stack, top is last
	lineNum int
}

func newLineSource(r io.Reader) *lineSource {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &lineSource{scanner: s}
}

// next returns the next line, or false at end of input or on a read error
func (ls *lineSource) next() (sourceLine, bool) {
	if n := len(ls.pending); n > 0 {
		l := ls.pending[n-1]
		ls.pending = ls.pending[:n-1]
		return l, true
	}
	if !ls.scanner.Scan() {
		return sourceLine{}, false
	}
	ls.lineNum++
	return sourceLine{text: ls.scanner.Text(), num: ls.lineNum}, true
}

// pushBack makes l the next line returned
func (ls *lineSource) pushBack(l sourceLine) {
	ls.pending = append(ls.pending, l)
}

// err reports the read error that ended the source, if any
func (ls *lineSource) err() error {
	return ls.scanner.Err()
}

// Construct is a recognized unit: a single line, or a block header plus the
// lines collected up to its terminator
type Construct struct {
	Phrase     Phrase
	Header     string   // Text matched by the phrase on the opening line
	Lines      []string // Lines between header and terminator
	Terminator string   // Closing line, empty if input ended first
	Terminated bool
	StartLine  int
	EndLine    int
	Column     int // 0-indexed column where Header starts
}

// Text joins the header, collected lines and terminator
func (c *Construct) Text() string {
	parts := make([]string, 0, len(c.Lines)+2)
	parts = append(parts, c.Header)
	parts = append(parts, c.Lines...)
	if c.Terminated {
		parts = append(parts, c.Terminator)
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// isTerminator checks if the line's first non-space text is the closer
func isTerminator(line, closer string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), closer)
}

// indentOf returns the width of the line's leading whitespace
func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

// remainder returns what follows the closer on a terminator line and the
// column where it starts
func remainder(line, closer string) (string, int) {
	start := indentOf(line) + len(closer)
	if start > len(line) {
		return "", len(line)
	}
	rest := line[start:]
	offset := start + indentOf(rest)
	return strings.TrimSpace(rest), offset
}

// collect accumulates lines into c until a terminator line or end of input.
// Nested blocks are not tracked: the first line starting with the closer
// ends the construct.
func collect(c *Construct, src *lineSource, closer string) (sourceLine, error) {
	c.EndLine = c.StartLine
	for {
		l, ok := src.next()
		if !ok {
			// Input ended inside the block; treat it as closed here.
			return sourceLine{}, src.err()
		}
		c.EndLine = l.num
		if isTerminator(l.text, closer) {
			c.Terminator = l.text
			c.Terminated = true
			return l, nil
		}
		c.Lines = append(c.Lines, l.text)
	}
}
