package parser

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/jarredhawkins/gremlin-scripts/internal/types"
)

const definitionKeyword = "def"

// ExtractMethod derives the method record from a definition construct.
//
//	def add(a, b) {     <- header: signature "add(a, b)", name "add"
//	  return a + b      <- body
//	}                   <- terminator
//
// A block cut short by end of input keeps everything after the header.
func ExtractMethod(c *Construct, ctx *ParseContext) (*types.Method, error) {
	text := c.Text()

	signature, ok := methodSignature(text)
	if !ok {
		return nil, extractionError(c, ctx, ErrNoSignature)
	}
	name, ok := methodName(signature)
	if !ok {
		return nil, extractionError(c, ctx, ErrNoName)
	}

	sum := sha1.Sum([]byte(text))

	// Search past the keyword so "def de()" points at the name
	column := c.Column
	skip := 0
	if strings.HasPrefix(c.Header, definitionKeyword) {
		skip = len(definitionKeyword)
	}
	if i := strings.Index(c.Header[skip:], name); i >= 0 {
		column += skip + i
	}

	return &types.Method{
		Name:       name,
		Signature:  signature,
		Body:       methodBody(text, c.Terminated),
		Definition: text,
		SHA1:       hex.EncodeToString(sum[:]),
		FilePath:   ctx.FilePath,
		Line:       c.StartLine,
		EndLine:    c.EndLine,
		Column:     column,
	}, nil
}

// methodSignature returns the text between the def keyword and the first {
func methodSignature(text string) (string, bool) {
	head, _, found := strings.Cut(text, "{")
	if !found {
		return "", false
	}
	head = strings.TrimSpace(head)
	head = strings.TrimPrefix(head, definitionKeyword)
	return strings.TrimSpace(head), true
}

// methodName returns the signature up to its parameter list
func methodName(signature string) (string, bool) {
	name, _, found := strings.Cut(signature, "(")
	if !found {
		return "", false
	}
	name = strings.TrimSpace(name)
	return name, name != ""
}

// methodBody drops the header line and, when present, the closing line
func methodBody(text string, terminated bool) string {
	lines := strings.Split(text, "\n")
	lines = lines[1:]
	if terminated && len(lines) > 0 {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func extractionError(c *Construct, ctx *ParseContext, err error) error {
	return &ExtractionError{
		FilePath: ctx.FilePath,
		Line:     c.StartLine,
		Header:   c.Header,
		Err:      err,
	}
}
