package lsp

import (
	"strings"

	"github.com/jarredhawkins/gremlin-scripts/internal/types"
)

// LSP Protocol types - minimal set for definition and references in scripts

// TextDocumentSyncKind defines how text document changes are synced
type TextDocumentSyncKind int

const (
	TextDocumentSyncKindNone        TextDocumentSyncKind = 0
	TextDocumentSyncKindFull        TextDocumentSyncKind = 1
	TextDocumentSyncKindIncremental TextDocumentSyncKind = 2
)

// Position in a text document
type Position struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

// Range in a text document
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Location represents a location in a resource
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

// TextDocumentIdentifier identifies a text document
type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

// VersionedTextDocumentIdentifier identifies a versioned text document
type VersionedTextDocumentIdentifier struct {
	TextDocumentIdentifier
	Version int `json:"version"`
}

// TextDocumentItem represents an open text document
type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

// TextDocumentPositionParams is a parameter for requests that require a position
type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

// ReferenceContext includes info about reference requests
type ReferenceContext struct {
	IncludeDeclaration bool `json:"includeDeclaration"`
}

// ReferenceParams for textDocument/references
type ReferenceParams struct {
	TextDocumentPositionParams
	Context ReferenceContext `json:"context"`
}

// TextDocumentSyncOptions defines text document sync options
type TextDocumentSyncOptions struct {
	OpenClose bool                 `json:"openClose,omitempty"`
	Change    TextDocumentSyncKind `json:"change,omitempty"`
}

// ServerCapabilities defines what the server can do
type ServerCapabilities struct {
	TextDocumentSync   *TextDocumentSyncOptions `json:"textDocumentSync,omitempty"`
	DefinitionProvider bool                     `json:"definitionProvider,omitempty"`
	ReferencesProvider bool                     `json:"referencesProvider,omitempty"`
}

// ServerInfo contains information about the server
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// InitializeResult is the result of the initialize request
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   *ServerInfo        `json:"serverInfo,omitempty"`
}

// DidOpenTextDocumentParams for textDocument/didOpen
type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

// TextDocumentContentChangeEvent describes changes to a text document
type TextDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

// DidChangeTextDocumentParams for textDocument/didChange
type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

// DidCloseTextDocumentParams for textDocument/didClose
type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// Script registry requests (gremlin/*)

// MethodParams names a method for gremlin/get
type MethodParams struct {
	Name string `json:"name"`
}

// MethodResult is the effective definition of a method
type MethodResult struct {
	Name      string   `json:"name"`
	Signature string   `json:"signature"`
	Body      string   `json:"body"`
	SHA1      string   `json:"sha1"`
	Location  Location `json:"location"`
}

// MethodSummary is one entry of gremlin/list
type MethodSummary struct {
	Name      string `json:"name"`
	Signature string `json:"signature"`
	URI       string `json:"uri"`
	Line      int    `json:"line"`
}

// UpdateParams names a script file for gremlin/update
type UpdateParams struct {
	Path string `json:"path"`
}

// IndexStatus is returned by gremlin/update and gremlin/refresh
type IndexStatus struct {
	Methods int      `json:"methods"`
	Sources []string `json:"sources"`
}

// Helper functions

// uriToPath converts a file:// URI to a file path
func uriToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

// pathToURI converts a file path to a file:// URI
func pathToURI(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + path
}

// methodToLocation points at the method name on its header line
func methodToLocation(m *types.Method) Location {
	line := uint32(m.Line - 1) // LSP is 0-indexed
	return Location{
		URI: pathToURI(m.FilePath),
		Range: Range{
			Start: Position{Line: line, Character: uint32(m.Column)},
			End:   Position{Line: line, Character: uint32(m.Column + len(m.Name))},
		},
	}
}

// referenceToLocation converts a search hit to an LSP Location
func referenceToLocation(ref *types.Reference) Location {
	line := uint32(ref.Line - 1)
	return Location{
		URI: pathToURI(ref.FilePath),
		Range: Range{
			Start: Position{Line: line, Character: uint32(ref.Column)},
			End:   Position{Line: line, Character: uint32(ref.Column + ref.Length)},
		},
	}
}

// extractWordAt extracts the identifier at the given position in the content
func extractWordAt(content string, line, char int) string {
	lines := strings.Split(content, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}

	lineText := lines[line]
	if char < 0 || len(lineText) == 0 {
		return ""
	}
	if char >= len(lineText) {
		// Cursor at end of line: take the word just before it
		char = len(lineText) - 1
	}
	// Cursor just past a word, e.g. on the ( of a call
	if !isWordChar(lineText[char]) && char > 0 && isWordChar(lineText[char-1]) {
		char--
	}

	start := char
	for start > 0 && isWordChar(lineText[start-1]) {
		start--
	}

	end := char
	for end < len(lineText) && isWordChar(lineText[end]) {
		end++
	}

	if start == end {
		return ""
	}

	return lineText[start:end]
}

// isWordChar returns true if c is a valid Groovy identifier character
func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '_' || c == '$'
}
