package types

import "strconv"

// Method is a named method definition extracted from a script file
type Method struct {
	Name       string // e.g., "add"
	Signature  string // e.g., "add(a, b)"
	Body       string // Inner lines of the definition, trimmed
	Definition string // Full definition text, header through closing line
	SHA1       string // Hex digest of Definition, for change detection
	FilePath   string // Absolute path of the source file
	Line       int    // 1-indexed line of the def header
	EndLine    int    // 1-indexed line of the closing brace (or last line read)
	Column     int    // 0-indexed column of Name on the header line
}

// Location returns a simple file:line representation
func (m *Method) Location() string {
	return m.FilePath + ":" + strconv.Itoa(m.Line)
}

// Contains reports whether the 1-indexed line falls inside the definition
func (m *Method) Contains(line int) bool {
	return line >= m.Line && line <= m.EndLine
}

// Reference represents a usage of a method name in a script
type Reference struct {
	FilePath string
	Line     int    // 1-indexed
	Column   int    // 0-indexed
	Length   int    // Length of the matched text
	LineText string // Full line text for display
}
