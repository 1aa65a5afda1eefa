package index

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	root    glob.Glob // pattern without a leading **/, for files in the root
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("compile glob %q: %w", pattern, err)
		}
		cp := compiledPattern{pattern: pattern, glob: g}
		// "**/*.groovy" should match "gremlin.groovy" as well as "lib/x.groovy"
		if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
			if rg, err := glob.Compile(rest, '/'); err == nil {
				cp.root = rg
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

func (cp compiledPattern) match(relPath string) bool {
	if cp.glob.Match(relPath) {
		return true
	}
	return cp.root != nil && !strings.Contains(relPath, "/") && cp.root.Match(relPath)
}

// Discovery finds script files under a root with include and ignore globs.
// Patterns are matched against slash-separated paths relative to the root.
type Discovery struct {
	rootDir string
	include []compiledPattern
	ignore  []compiledPattern
}

// NewDiscovery compiles the include and ignore patterns
func NewDiscovery(rootDir string, include, ignore []string) (*Discovery, error) {
	inc, err := compilePatterns(include)
	if err != nil {
		return nil, err
	}
	ign, err := compilePatterns(ignore)
	if err != nil {
		return nil, err
	}
	return &Discovery{
		rootDir: filepath.Clean(rootDir),
		include: inc,
		ignore:  ign,
	}, nil
}

// Matches reports whether path (absolute or relative to the root) is a
// script file that discovery would pick up
func (d *Discovery) Matches(path string) bool {
	rel, ok := d.rel(path)
	if !ok || d.ignored(rel) {
		return false
	}
	return matchAny(rel, d.include)
}

// IgnoredDir reports whether a directory should not be walked or watched
func (d *Discovery) IgnoredDir(path string) bool {
	rel, ok := d.rel(path)
	if !ok {
		return true
	}
	if rel == "." {
		return false
	}
	if strings.HasPrefix(filepath.Base(rel), ".") {
		return true
	}
	return d.ignored(rel + "/")
}

// Discover walks the root and returns matching files in lexical order
func (d *Discovery) Discover(ctx context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(d.rootDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if entry.IsDir() {
			if d.IgnoredDir(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Matches(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Plan returns the load order for the root: the default file when it
// exists, then every other discovered file, then the explicit files in the
// order given. Later entries take precedence, so listed files beat unlisted
// ones.
func (d *Discovery) Plan(ctx context.Context, defaultFile string, files []string) ([]string, error) {
	var plan []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			plan = append(plan, path)
		}
	}

	explicit := make([]string, 0, len(files))
	listed := make(map[string]bool, len(files))
	for _, f := range files {
		path := d.abs(f)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("script file %s: %w", f, err)
		}
		explicit = append(explicit, path)
		listed[path] = true
	}

	if defaultFile != "" {
		path := d.abs(defaultFile)
		if info, err := os.Stat(path); err == nil && !info.IsDir() && !listed[path] {
			add(path)
		}
	}

	discovered, err := d.Discover(ctx)
	if err != nil {
		return nil, err
	}
	for _, path := range discovered {
		if !listed[path] {
			add(path)
		}
	}

	for _, path := range explicit {
		add(path)
	}

	return plan, nil
}

func (d *Discovery) ignored(rel string) bool {
	return matchAny(rel, d.ignore)
}

func (d *Discovery) abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(d.rootDir, path)
}

func (d *Discovery) rel(path string) (string, bool) {
	rel, err := filepath.Rel(d.rootDir, d.abs(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func matchAny(relPath string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.match(relPath) {
			return true
		}
	}
	return false
}
