package index

import (
	"sort"
	"strings"
	"sync"

	"github.com/jarredhawkins/gremlin-scripts/internal/types"
)

// TrigramIndex provides identifier search across script files.
// Candidate files come from trigram posting lists and are then verified
// line by line for whole-identifier matches.
type TrigramIndex struct {
	mu sync.RWMutex

	// Inverted index: trigram -> set of file paths
	postings map[string]map[string]struct{}

	// File lines, kept for verification and display
	lines map[string][]string
}

// NewTrigramIndex creates a new trigram index
func NewTrigramIndex() *TrigramIndex {
	return &TrigramIndex{
		postings: make(map[string]map[string]struct{}),
		lines:    make(map[string][]string),
	}
}

// AddFile indexes a file's content, replacing any previous version
func (t *TrigramIndex) AddFile(path string, content []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.removeLocked(path)

	text := string(content)
	t.lines[path] = strings.Split(text, "\n")
	for tri := range trigramsOf(text) {
		files := t.postings[tri]
		if files == nil {
			files = make(map[string]struct{})
			t.postings[tri] = files
		}
		files[path] = struct{}{}
	}
}

// RemoveFile removes a file from the index
func (t *TrigramIndex) RemoveFile(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeLocked(path)
}

func (t *TrigramIndex) removeLocked(path string) {
	lines, ok := t.lines[path]
	if !ok {
		return
	}
	delete(t.lines, path)

	for tri := range trigramsOf(strings.Join(lines, "\n")) {
		if files, ok := t.postings[tri]; ok {
			delete(files, path)
			if len(files) == 0 {
				delete(t.postings, tri)
			}
		}
	}
}

// Search finds whole-word occurrences of name, ordered by file then position
func (t *TrigramIndex) Search(name string) []*types.Reference {
	if name == "" {
		return nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	candidates := t.candidates(name)
	if len(candidates) == 0 {
		return nil
	}

	paths := make([]string, 0, len(candidates))
	for path := range candidates {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var refs []*types.Reference
	for _, path := range paths {
		for i, line := range t.lines[path] {
			for _, col := range wordColumns(line, name) {
				refs = append(refs, &types.Reference{
					FilePath: path,
					Line:     i + 1,
					Column:   col,
					Length:   len(name),
					LineText: line,
				})
			}
		}
	}
	return refs
}

// candidates intersects the posting lists of every trigram in name
func (t *TrigramIndex) candidates(name string) map[string]struct{} {
	if len(name) < 3 {
		// Too short for trigrams, every file is a candidate
		all := make(map[string]struct{}, len(t.lines))
		for path := range t.lines {
			all[path] = struct{}{}
		}
		return all
	}

	var result map[string]struct{}
	for tri := range trigramsOf(name) {
		files, ok := t.postings[tri]
		if !ok {
			return nil
		}
		if result == nil {
			result = make(map[string]struct{}, len(files))
			for path := range files {
				result[path] = struct{}{}
			}
			continue
		}
		for path := range result {
			if _, ok := files[path]; !ok {
				delete(result, path)
			}
		}
		if len(result) == 0 {
			return nil
		}
	}
	return result
}

func trigramsOf(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for i := 0; i+3 <= len(s); i++ {
		set[s[i:i+3]] = struct{}{}
	}
	return set
}

// wordColumns returns the start of every whole-identifier occurrence of
// name in line. $ counts as an identifier character in Groovy.
func wordColumns(line, name string) []int {
	var cols []int
	for start := 0; start < len(line); {
		i := strings.Index(line[start:], name)
		if i < 0 {
			break
		}
		col := start + i
		end := col + len(name)
		if (col == 0 || !isIdentByte(line[col-1])) && (end == len(line) || !isIdentByte(line[end])) {
			cols = append(cols, col)
		}
		start = col + 1
	}
	return cols
}

func isIdentByte(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '_' || c == '$'
}
