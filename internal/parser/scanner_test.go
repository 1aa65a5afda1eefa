package parser

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScanner(t *testing.T, opts ...Option) *Scanner {
	t.Helper()
	s, err := NewDefaultScanner(opts...)
	require.NoError(t, err)
	return s
}

func scanString(t *testing.T, content string) Methods {
	t.Helper()
	methods, err := newTestScanner(t).Scan(strings.NewReader(content))
	require.NoError(t, err)
	return methods
}

func TestScan_DistinctDefinitions(t *testing.T) {
	methods := scanString(t, `def add(a, b) {
  return a + b
}
def sub(a, b) {
  return a - b
}
`)

	assert.Equal(t, Methods{
		"add": "return a + b",
		"sub": "return a - b",
	}, methods)
}

func TestScan_RedefinitionKeepsLater(t *testing.T) {
	methods := scanString(t, `def f() {
  return 1
}
def f() {
  return 2
}
`)

	assert.Equal(t, Methods{"f": "return 2"}, methods)
}

func TestScan_CloserAndOpenerOnSameLine(t *testing.T) {
	methods := scanString(t, `def f() {
  return 1
} def g() {
  return 2
}`)

	assert.Equal(t, Methods{"f": "return 1", "g": "return 2"}, methods)
}

func TestScan_ManyConstructsShareTerminatorLines(t *testing.T) {
	var b strings.Builder
	b.WriteString("def m0() {\n  0\n")
	for i := 1; i < 500; i++ {
		b.WriteString("} def m")
		b.WriteString(strconv.Itoa(i))
		b.WriteString("() {\n  ")
		b.WriteString(strconv.Itoa(i))
		b.WriteString("\n")
	}
	b.WriteString("}\n")

	methods := scanString(t, b.String())
	require.Len(t, methods, 500)
	assert.Equal(t, "0", methods["m0"])
	assert.Equal(t, "499", methods["m499"])
}

func TestScan_UnterminatedDefinition(t *testing.T) {
	methods := scanString(t, `def first() {
  return 1
}
def last(v) {
  v.out()
  v.in()`)

	assert.Equal(t, Methods{
		"first": "return 1",
		"last":  "v.out()\n  v.in()",
	}, methods)
}

func TestScan_IgnoresUnmatchedLines(t *testing.T) {
	methods := scanString(t, `// helper scripts
import com.tinkerpop.gremlin.Tokens

x = 1

def one() {
  return 1
}

println "loaded"
`)

	assert.Equal(t, Methods{"one": "return 1"}, methods)
}

func TestScan_IndentedDefinitions(t *testing.T) {
	methods := scanString(t, `  def a() {
    return 'a'
  }
	def b() {
		return 'b'
	}
`)

	assert.Equal(t, Methods{"a": "return 'a'", "b": "return 'b'"}, methods)
}

func TestScan_NestedBlockEndsAtFirstCloser(t *testing.T) {
	// Brace depth is not tracked: the inner closer ends the definition.
	methods := scanString(t, `def f(x) {
  if (x) {
    return 1
  }
  return 2
}
`)

	assert.Equal(t, Methods{"f": "if (x) {\n    return 1"}, methods)
}

func TestScan_DoubleCloserDropsFollowingDefinition(t *testing.T) {
	// Only one closer is removed before the rest of the line is rescanned,
	// so "}def g() {" does not open a definition.
	methods := scanString(t, `def f() {
  1
}}def g() {
  2
}
`)

	assert.Equal(t, Methods{"f": "1"}, methods)
}

func TestScan_OneLineDefinitionSwallowsNext(t *testing.T) {
	// A closer on the header line is not seen; the block runs to the next
	// line that starts with the closer.
	methods := scanString(t, `def f() { 1 }
def g() {
  2
}
`)

	assert.Equal(t, Methods{"f": "def g() {\n  2"}, methods)
}

func TestScan_EmptyInput(t *testing.T) {
	methods := scanString(t, "")
	assert.Empty(t, methods)
	assert.NotNil(t, methods)
}

func TestScan_ExtractionErrorAbortsScan(t *testing.T) {
	s := newTestScanner(t)

	_, err := s.Scan(strings.NewReader(`def ok() {
  return 1
}
def broken()
  return 2
}
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSignature)

	var extractErr *ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.Equal(t, 4, extractErr.Line)
	assert.Equal(t, "def broken()", extractErr.Header)
}

func TestScan_ReadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := newTestScanner(t).Scan(iotest.ErrReader(boom))
	assert.ErrorIs(t, err, boom)
}

func TestScan_ReadErrorInsideBlock(t *testing.T) {
	boom := errors.New("boom")
	r := &failingReader{data: "def f() {\n  partial\n", err: boom}
	_, err := newTestScanner(t).Scan(r)
	assert.ErrorIs(t, err, boom)
}

func TestScan_SingleLineConstructs(t *testing.T) {
	registry := NewRegistry()
	registry.Register(Phrase{Name: "comment", Pattern: `//.*`, Kind: ConstructLine, Action: ActionIgnore})
	RegisterDefaults(registry)

	s, err := NewScanner(registry)
	require.NoError(t, err)

	methods, err := s.Scan(strings.NewReader(`// def hidden() {
def shown() {
  return 1
}
`))
	require.NoError(t, err)
	assert.Equal(t, Methods{"shown": "return 1"}, methods)
}

func TestScan_CustomCloser(t *testing.T) {
	registry := NewRegistry()
	registry.Register(Phrase{Name: "definition", Pattern: `def\s.*`, Kind: ConstructBlock, Action: ActionDefineMethod})

	s, err := NewScanner(registry, WithCloser("end"))
	require.NoError(t, err)

	methods, err := s.Scan(strings.NewReader("def f() {\n  1\nend def g() {\n  2\nend\n"))
	require.NoError(t, err)
	assert.Equal(t, Methods{"f": "1", "g": "2"}, methods)
}

func TestNewScanner_InvalidLexicon(t *testing.T) {
	_, err := NewScanner(NewRegistry())
	assert.ErrorIs(t, err, ErrEmptyLexicon)

	registry := NewRegistry()
	registry.Register(Phrase{Name: "bad", Pattern: `[`})
	_, err = NewScanner(registry)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestParse_RecordsLocations(t *testing.T) {
	s := newTestScanner(t)

	records, err := s.Parse("/test/gremlin.groovy", []byte(`// header

def add(a, b) {
  return a + b
} def sub(a, b) {
  return a - b
}
def add(a, b) {
  a + b
}
`))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "add", records[0].Name)
	assert.Equal(t, "add(a, b)", records[0].Signature)
	assert.Equal(t, 3, records[0].Line)
	assert.Equal(t, 5, records[0].EndLine)
	assert.Equal(t, "/test/gremlin.groovy", records[0].FilePath)

	assert.Equal(t, 4, records[0].Column)

	assert.Equal(t, "sub", records[1].Name)
	assert.Equal(t, 5, records[1].Line)
	assert.Equal(t, 6, records[1].Column)
	assert.Equal(t, 7, records[1].EndLine)

	assert.Equal(t, "add", records[2].Name)
	assert.Equal(t, 8, records[2].Line)

	assert.Equal(t, Methods{"add": "a + b", "sub": "return a - b"}, ToMethods(records))
}

func TestScanFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gremlin.groovy")
	require.NoError(t, os.WriteFile(path, []byte("def v(id) {\n  g.v(id)\n}\n"), 0644))

	s := newTestScanner(t)
	methods, err := s.ScanFile(path)
	require.NoError(t, err)
	assert.Equal(t, Methods{"v": "g.v(id)"}, methods)

	_, err = s.ScanFile(filepath.Join(dir, "missing.groovy"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestScanFile_ExtractionErrorNamesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.groovy")
	require.NoError(t, os.WriteFile(path, []byte("def nope {\n}\n"), 0644))

	_, err := newTestScanner(t).ScanFile(path)
	require.ErrorIs(t, err, ErrNoName)
	assert.Contains(t, err.Error(), path+":1")
}

// failingReader returns data, then err
type failingReader struct {
	data string
	err  error
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, r.err
	}
	r.done = true
	return copy(p, r.data), nil
}
