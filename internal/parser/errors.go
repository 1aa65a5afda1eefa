package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyLexicon indicates a scanner was built without any phrases
	ErrEmptyLexicon = errors.New("empty lexicon")

	// ErrInvalidPattern indicates a lexicon phrase failed to compile
	ErrInvalidPattern = errors.New("invalid phrase pattern")

	// ErrNoSignature indicates a definition has no opening brace
	ErrNoSignature = errors.New("method signature not found")

	// ErrNoName indicates a signature has no parameter list
	ErrNoName = errors.New("method name not found")
)

// ExtractionError reports a matched definition that does not have the
// structure the extractor expects. It aborts the scan of the file.
type ExtractionError struct {
	FilePath string
	Line     int
	Header   string
	Err      error
}

func (e *ExtractionError) Error() string {
	loc := fmt.Sprintf("line %d", e.Line)
	if e.FilePath != "" {
		loc = fmt.Sprintf("%s:%d", e.FilePath, e.Line)
	}
	return fmt.Sprintf("%s: %v: %q", loc, e.Err, e.Header)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
