package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jarredhawkins/gremlin-scripts/internal/index"
	"go.lsp.dev/jsonrpc2"
)

// codeMethodNotFound is returned by gremlin/get for unknown script methods.
// It sits in the implementation-defined server error range.
const codeMethodNotFound jsonrpc2.Code = -32001

// Server serves the script index over JSON-RPC: LSP navigation for script
// files plus gremlin/* requests for the script registry
type Server struct {
	index     *index.Index
	documents *DocumentStore
	version   string
}

// NewServer creates a new server
func NewServer(idx *index.Index, version string) *Server {
	return &Server{
		index:     idx,
		documents: NewDocumentStore(),
		version:   version,
	}
}

// Serve starts the server on the given reader/writer
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stream := jsonrpc2.NewStream(&readWriteCloser{in, out})
	conn := jsonrpc2.NewConn(stream)

	conn.Go(ctx, s.handler)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-conn.Done():
		return conn.Err()
	}
}

func (s *Server) handler(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	log.Printf("rpc request: %s", req.Method())

	switch req.Method() {
	case "initialize":
		return s.handleInitialize(ctx, reply, req)
	case "initialized":
		return reply(ctx, nil, nil)
	case "shutdown":
		return reply(ctx, nil, nil)
	case "exit":
		return nil
	case "textDocument/definition":
		return s.handleDefinition(ctx, reply, req)
	case "textDocument/references":
		return s.handleReferences(ctx, reply, req)
	case "textDocument/didOpen":
		return s.handleDidOpen(ctx, reply, req)
	case "textDocument/didChange":
		return s.handleDidChange(ctx, reply, req)
	case "textDocument/didClose":
		return s.handleDidClose(ctx, reply, req)
	case "gremlin/get":
		return s.handleGet(ctx, reply, req)
	case "gremlin/list":
		return s.handleList(ctx, reply, req)
	case "gremlin/update":
		return s.handleUpdate(ctx, reply, req)
	case "gremlin/refresh":
		return s.handleRefresh(ctx, reply, req)
	default:
		return reply(ctx, nil, &jsonrpc2.Error{
			Code:    jsonrpc2.MethodNotFound,
			Message: "method not supported: " + req.Method(),
		})
	}
}

func invalidParams(err error) error {
	return &jsonrpc2.Error{
		Code:    jsonrpc2.InvalidParams,
		Message: err.Error(),
	}
}

func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: &TextDocumentSyncOptions{
				OpenClose: true,
				Change:    TextDocumentSyncKindFull,
			},
			DefinitionProvider: true,
			ReferencesProvider: true,
		},
		ServerInfo: &ServerInfo{
			Name:    "gremlin-scripts",
			Version: s.version,
		},
	}
	return reply(ctx, result, nil)
}

// wordAt returns the identifier under the cursor, or "" if there is none
func (s *Server) wordAt(params TextDocumentPositionParams) string {
	content := s.getDocumentContent(params.TextDocument.URI)
	if content == "" {
		return ""
	}
	return extractWordAt(content, int(params.Position.Line), int(params.Position.Character))
}

func (s *Server) handleDefinition(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params TextDocumentPositionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, invalidParams(err))
	}

	word := s.wordAt(params)
	if word == "" {
		return reply(ctx, nil, nil)
	}

	log.Printf("definition request for word: %s", word)

	// Jump to the definition that wins, the one a caller would get
	m, ok := s.index.Method(word)
	if !ok {
		return reply(ctx, nil, nil)
	}
	return reply(ctx, methodToLocation(m), nil)
}

func (s *Server) handleReferences(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params ReferenceParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, invalidParams(err))
	}

	word := s.wordAt(params.TextDocumentPositionParams)
	if word == "" {
		return reply(ctx, nil, nil)
	}

	log.Printf("references request for word: %s", word)

	// Deduplicate by file:line:col
	seen := make(map[string]struct{})
	var locations []Location
	add := func(loc Location) {
		key := fmt.Sprintf("%s:%d:%d", loc.URI, loc.Range.Start.Line, loc.Range.Start.Character)
		if _, exists := seen[key]; exists {
			return
		}
		seen[key] = struct{}{}
		locations = append(locations, loc)
	}

	// Declarations are also hits in the text search, so drop them first
	// when the client does not want them
	declarations := make(map[string]struct{})
	for _, m := range s.index.Definitions(word) {
		loc := methodToLocation(m)
		if params.Context.IncludeDeclaration {
			add(loc)
		} else {
			declarations[fmt.Sprintf("%s:%d:%d", loc.URI, loc.Range.Start.Line, loc.Range.Start.Character)] = struct{}{}
		}
	}

	for _, ref := range s.index.FindReferences(word) {
		loc := referenceToLocation(ref)
		key := fmt.Sprintf("%s:%d:%d", loc.URI, loc.Range.Start.Line, loc.Range.Start.Character)
		if _, isDecl := declarations[key]; isDecl {
			continue
		}
		add(loc)
	}

	return reply(ctx, locations, nil)
}

func (s *Server) handleDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, invalidParams(err))
	}

	s.documents.Open(params.TextDocument.URI, params.TextDocument.Version, params.TextDocument.Text)
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, invalidParams(err))
	}

	if len(params.ContentChanges) > 0 {
		// Full sync mode - just take the last content
		last := params.ContentChanges[len(params.ContentChanges)-1].Text
		s.documents.Update(params.TextDocument.URI, params.TextDocument.Version, last)
	}
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidCloseTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, invalidParams(err))
	}

	s.documents.Close(params.TextDocument.URI)
	return reply(ctx, nil, nil)
}

func (s *Server) handleGet(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params MethodParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, invalidParams(err))
	}

	m, ok := s.index.Method(params.Name)
	if !ok {
		return reply(ctx, nil, &jsonrpc2.Error{
			Code:    codeMethodNotFound,
			Message: fmt.Sprintf("%v: %s", index.ErrMethodNotFound, params.Name),
		})
	}

	return reply(ctx, MethodResult{
		Name:      m.Name,
		Signature: m.Signature,
		Body:      m.Body,
		SHA1:      m.SHA1,
		Location:  methodToLocation(m),
	}, nil)
}

func (s *Server) handleList(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	names := s.index.Names()
	summaries := make([]MethodSummary, 0, len(names))
	for _, name := range names {
		m, ok := s.index.Method(name)
		if !ok {
			continue // removed since Names
		}
		summaries = append(summaries, MethodSummary{
			Name:      m.Name,
			Signature: m.Signature,
			URI:       pathToURI(m.FilePath),
			Line:      m.Line,
		})
	}
	return reply(ctx, summaries, nil)
}

func (s *Server) handleUpdate(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params UpdateParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, invalidParams(err))
	}
	if params.Path == "" {
		return reply(ctx, nil, invalidParams(fmt.Errorf("path is required")))
	}

	if err := s.index.Update(uriToPath(params.Path)); err != nil {
		return reply(ctx, nil, &jsonrpc2.Error{
			Code:    jsonrpc2.InternalError,
			Message: err.Error(),
		})
	}
	return reply(ctx, s.status(), nil)
}

func (s *Server) handleRefresh(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	if err := s.index.Refresh(); err != nil {
		return reply(ctx, nil, &jsonrpc2.Error{
			Code:    jsonrpc2.InternalError,
			Message: err.Error(),
		})
	}
	return reply(ctx, s.status(), nil)
}

func (s *Server) status() IndexStatus {
	sources := s.index.Sources()
	uris := make([]string, len(sources))
	for i, src := range sources {
		uris[i] = pathToURI(src)
	}
	return IndexStatus{
		Methods: s.index.MethodCount(),
		Sources: uris,
	}
}

func (s *Server) getDocumentContent(uri string) string {
	// Check open documents first
	if content, ok := s.documents.Get(uri); ok {
		return content
	}

	// Fall back to reading from disk
	path := uriToPath(uri)
	content, err := os.ReadFile(path)
	if err != nil {
		log.Printf("failed to read file %s: %v", path, err)
		return ""
	}
	return string(content)
}

// readWriteCloser wraps reader and writer into a ReadWriteCloser
type readWriteCloser struct {
	io.Reader
	io.Writer
}

func (rwc *readWriteCloser) Close() error {
	return nil
}
