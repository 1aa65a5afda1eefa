package index

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jarredhawkins/gremlin-scripts/internal/parser"
	"github.com/jarredhawkins/gremlin-scripts/internal/types"
)

// ErrMethodNotFound is returned when no loaded script defines a method
var ErrMethodNotFound = errors.New("method not found")

// Index is the script registry: it scans script files in load order and
// merges their methods so a later file overrides an earlier one by name
type Index struct {
	mu sync.RWMutex

	// Merged view: method name -> effective definition
	methods map[string]*types.Method

	// File index: path -> methods in source order
	byFile map[string][]*types.Method

	// Load order, later wins
	sources []string

	// Trigram index for reference search
	trigram *TrigramIndex

	rootPath string
	scanner  *parser.Scanner
}

// New creates a new index for the given root path
func New(rootPath string, scanner *parser.Scanner) *Index {
	return &Index{
		methods:  make(map[string]*types.Method),
		byFile:   make(map[string][]*types.Method),
		trigram:  NewTrigramIndex(),
		rootPath: rootPath,
		scanner:  scanner,
	}
}

type parsed struct {
	methods []*types.Method
	content []byte
	err     error
}

// Build loads every file in order. Files are parsed concurrently but
// merged in the given order so precedence does not depend on scheduling.
// Files that fail to load are skipped and reported in the returned error.
func (idx *Index) Build(ctx context.Context, files []string) error {
	log.Printf("building script index for %s (%d files)", idx.rootPath, len(files))

	results := make([]parsed, len(files))

	var wg sync.WaitGroup
	sem := make(chan struct{}, 8) // Limit concurrency

	for i, file := range files {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				results[i].err = err
				return
			}
			results[i].methods, results[i].content, results[i].err = idx.parseFile(path)
		}(i, file)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	idx.mu.Lock()
	var errs []error
	for i, path := range files {
		if results[i].err != nil {
			log.Printf("failed to load %s: %v", path, results[i].err)
			errs = append(errs, results[i].err)
			continue
		}
		idx.storeLocked(path, results[i].methods, results[i].content)
		idx.appendSourceLocked(path)
	}
	idx.mergeLocked()
	idx.mu.Unlock()

	log.Printf("indexed %d methods from %d files", idx.MethodCount(), len(idx.Sources()))
	return errors.Join(errs...)
}

// Update loads a script file and makes it the most recent source, so its
// methods override every previously loaded definition of the same name
func (idx *Index) Update(path string) error {
	methods, content, err := idx.parseFile(path)
	if err != nil {
		return err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.removeSourceLocked(path)
	idx.appendSourceLocked(path)
	idx.storeLocked(path, methods, content)
	idx.mergeLocked()
	return nil
}

// UpdateFile re-parses a file in place, keeping its load position. Unknown
// files are appended as the most recent source.
func (idx *Index) UpdateFile(path string) error {
	methods, content, err := idx.parseFile(path)
	if err != nil {
		return err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.appendSourceLocked(path)
	idx.storeLocked(path, methods, content)
	idx.mergeLocked()
	return nil
}

// RemoveFile drops a file and all of its methods
func (idx *Index) RemoveFile(path string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.byFile[path]; !ok {
		return
	}
	delete(idx.byFile, path)
	idx.removeSourceLocked(path)
	idx.trigram.RemoveFile(path)
	idx.mergeLocked()
}

// Refresh re-reads every source in load order. A file that fails keeps its
// previous methods; failures are reported in the returned error.
func (idx *Index) Refresh() error {
	var errs []error
	for _, path := range idx.Sources() {
		methods, content, err := idx.parseFile(path)
		if err != nil {
			log.Printf("failed to refresh %s: %v", path, err)
			errs = append(errs, err)
			continue
		}
		idx.mu.Lock()
		// The file may have been removed while we were parsing
		if _, ok := idx.byFile[path]; ok {
			idx.storeLocked(path, methods, content)
		}
		idx.mu.Unlock()
	}

	idx.mu.Lock()
	idx.mergeLocked()
	idx.mu.Unlock()

	return errors.Join(errs...)
}

// Get returns the body of the effective definition of name
func (idx *Index) Get(name string) (string, error) {
	m, ok := idx.Method(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMethodNotFound, name)
	}
	return m.Body, nil
}

// Method returns the effective definition of name
func (idx *Index) Method(name string) (*types.Method, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	m, ok := idx.methods[name]
	return m, ok
}

// Definitions returns every loaded definition of name in load order; the
// last one is the effective definition
func (idx *Index) Definitions(name string) []*types.Method {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var defs []*types.Method
	for _, path := range idx.sources {
		for _, m := range idx.byFile[path] {
			if m.Name == name {
				defs = append(defs, m)
			}
		}
	}
	return defs
}

// MethodAt returns the method whose definition spans the 1-indexed line
func (idx *Index) MethodAt(filePath string, line int) *types.Method {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	for _, m := range idx.byFile[filePath] {
		if m.Contains(line) {
			return m
		}
	}
	return nil
}

// Methods returns the merged name -> body map
func (idx *Index) Methods() parser.Methods {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make(parser.Methods, len(idx.methods))
	for name, m := range idx.methods {
		out[name] = m.Body
	}
	return out
}

// Names returns the effective method names, sorted
func (idx *Index) Names() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	names := make([]string, 0, len(idx.methods))
	for name := range idx.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MethodsInFile returns the methods defined in a file, in source order
func (idx *Index) MethodsInFile(path string) []*types.Method {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	methods := idx.byFile[path]
	result := make([]*types.Method, len(methods))
	copy(result, methods)
	return result
}

// FindReferences finds all whole-word uses of name in loaded scripts
func (idx *Index) FindReferences(name string) []*types.Reference {
	return idx.trigram.Search(name)
}

// Sources returns the loaded files in load order
func (idx *Index) Sources() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]string, len(idx.sources))
	copy(out, idx.sources)
	return out
}

// MethodCount returns the number of effective methods
func (idx *Index) MethodCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.methods)
}

// RootPath returns the root path of the index
func (idx *Index) RootPath() string {
	return idx.rootPath
}

func (idx *Index) parseFile(path string) ([]*types.Method, []byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	methods, err := idx.scanner.Parse(path, content)
	if err != nil {
		return nil, nil, err
	}
	return methods, content, nil
}

func (idx *Index) storeLocked(path string, methods []*types.Method, content []byte) {
	idx.byFile[path] = methods
	idx.trigram.AddFile(path, content)
}

func (idx *Index) appendSourceLocked(path string) {
	for _, s := range idx.sources {
		if s == path {
			return
		}
	}
	idx.sources = append(idx.sources, path)
}

func (idx *Index) removeSourceLocked(path string) {
	filtered := idx.sources[:0]
	for _, s := range idx.sources {
		if s != path {
			filtered = append(filtered, s)
		}
	}
	idx.sources = filtered
}

// mergeLocked rebuilds the merged view, later sources overwriting earlier
func (idx *Index) mergeLocked() {
	methods := make(map[string]*types.Method, len(idx.methods))
	for _, path := range idx.sources {
		for _, m := range idx.byFile[path] {
			methods[m.Name] = m
		}
	}
	idx.methods = methods
}

// DisplayPath returns path relative to the root when possible
func (idx *Index) DisplayPath(path string) string {
	if rel, err := filepath.Rel(idx.rootPath, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
