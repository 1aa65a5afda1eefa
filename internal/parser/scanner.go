package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/jarredhawkins/gremlin-scripts/internal/types"
)

// Methods maps method name to method body. A name defined twice keeps the
// later body.
type Methods map[string]string

// Option configures a Scanner
type Option func(*Scanner)

// WithCloser sets the token that terminates block constructs
func WithCloser(closer string) Option {
	return func(s *Scanner) {
		if closer != "" {
			s.closer = closer
		}
	}
}

// Scanner parses script files line by line
type Scanner struct {
	matcher *Matcher
	closer  string
}

// NewScanner compiles the registry's lexicon into a scanner
func NewScanner(registry *Registry, opts ...Option) (*Scanner, error) {
	matcher, err := Compile(registry.Phrases())
	if err != nil {
		return nil, err
	}
	s := &Scanner{
		matcher: matcher,
		closer:  DefaultCloser,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewDefaultScanner returns a scanner for the default lexicon
func NewDefaultScanner(opts ...Option) (*Scanner, error) {
	registry := NewRegistry()
	RegisterDefaults(registry)
	return NewScanner(registry, opts...)
}

// scanLines runs the core parse loop, calling emit for every method in
// source order. The remainder of a terminator line goes back on the line
// source so the same line can open the next construct.
func (s *Scanner) scanLines(r io.Reader, filePath string, emit func(*types.Method)) error {
	src := newLineSource(r)
	ctx := &ParseContext{FilePath: filePath}

	for {
		line, ok := src.next()
		if !ok {
			break
		}
		ctx.LineNum = line.num

		match, ok := s.matcher.Match(line.text)
		if !ok {
			continue
		}

		c := &Construct{
			Phrase:    s.matcher.Phrase(match.Index),
			Header:    match.Text,
			StartLine: line.num,
			EndLine:   line.num,
			Column:    line.col + indentOf(line.text),
		}

		var terminator sourceLine
		if c.Phrase.Kind == ConstructBlock {
			var err error
			if terminator, err = collect(c, src, s.closer); err != nil {
				return readError(filePath, err)
			}
		}

		if err := s.dispatch(c, ctx, emit); err != nil {
			return err
		}

		if c.Terminated {
			if rest, offset := remainder(terminator.text, s.closer); rest != "" {
				src.pushBack(sourceLine{text: rest, num: terminator.num, col: offset})
			}
		}
	}

	if err := src.err(); err != nil {
		return readError(filePath, err)
	}
	return nil
}

func (s *Scanner) dispatch(c *Construct, ctx *ParseContext, emit func(*types.Method)) error {
	switch c.Phrase.Action {
	case ActionDefineMethod:
		m, err := ExtractMethod(c, ctx)
		if err != nil {
			return err
		}
		emit(m)
	case ActionIgnore:
	default:
		return fmt.Errorf("phrase %s: unknown action %v", c.Phrase.Name, c.Phrase.Action)
	}
	return nil
}

// Scan reads r to the end and returns its method bodies by name
func (s *Scanner) Scan(r io.Reader) (Methods, error) {
	methods := make(Methods)
	err := s.scanLines(r, "", func(m *types.Method) {
		methods[m.Name] = m.Body
	})
	if err != nil {
		return nil, err
	}
	return methods, nil
}

// ScanFile opens and scans a script file
func (s *Scanner) ScanFile(filePath string) (Methods, error) {
	records, err := s.ParseFile(filePath)
	if err != nil {
		return nil, err
	}
	return ToMethods(records), nil
}

// Parse scans the file content and returns every method record in source
// order, duplicates included
func (s *Scanner) Parse(filePath string, content []byte) ([]*types.Method, error) {
	var records []*types.Method
	err := s.scanLines(bytes.NewReader(content), filePath, func(m *types.Method) {
		records = append(records, m)
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ParseFile reads and parses a script file
func (s *Scanner) ParseFile(filePath string) ([]*types.Method, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return s.Parse(filePath, content)
}

// ToMethods collapses records into a name -> body map, last one wins
func ToMethods(records []*types.Method) Methods {
	methods := make(Methods, len(records))
	for _, m := range records {
		methods[m.Name] = m.Body
	}
	return methods
}

func readError(filePath string, err error) error {
	if filePath == "" {
		return fmt.Errorf("read script: %w", err)
	}
	return fmt.Errorf("read %s: %w", filePath, err)
}
