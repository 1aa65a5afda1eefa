package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/jarredhawkins/gremlin-scripts/internal/config"
	"github.com/jarredhawkins/gremlin-scripts/internal/index"
	"github.com/jarredhawkins/gremlin-scripts/internal/parser"
)

// workspace is a loaded script registry plus the settings it was built from
type workspace struct {
	root      string
	cfg       *config.Config
	discovery *index.Discovery
	index     *index.Index
}

// resolveRoot returns the absolute root directory from --root or the
// working directory
func resolveRoot() (string, error) {
	root := rootDir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root %s: %w", root, err)
	}
	return abs, nil
}

func loadConfig(root string) (*config.Config, error) {
	if cfgFile != "" {
		return config.NewFileLoader(root, cfgFile).Load()
	}
	return config.NewLoader(root).Load()
}

// setupLogging points the standard logger at the configured file. Without
// a file, query commands stay quiet unless --verbose is set; serve always
// logs to stderr since stdout carries the protocol.
func setupLogging(cfg *config.Config, quiet bool) (func(), error) {
	cleanup := func() {}

	switch {
	case cfg.Log.File != "":
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		log.SetOutput(f)
		cleanup = func() {
			log.SetOutput(os.Stderr)
			f.Close()
		}
	case quiet && !verbose:
		log.SetOutput(io.Discard)
		cleanup = func() { log.SetOutput(os.Stderr) }
	default:
		log.SetOutput(os.Stderr)
	}

	if cfg.Log.Debug || verbose {
		log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	return cleanup, nil
}

func newScanner(cfg *config.Config) (*parser.Scanner, error) {
	return parser.NewDefaultScanner(parser.WithCloser(cfg.Parser.Closer))
}

// openWorkspace loads config and builds the registry for the root. Files
// that fail to load are reported on warn and left out.
func openWorkspace(ctx context.Context, cfg *config.Config, root string, warn io.Writer) (*workspace, error) {
	scanner, err := newScanner(cfg)
	if err != nil {
		return nil, err
	}

	discovery, err := index.NewDiscovery(root, cfg.Scripts.Include, cfg.Scripts.Ignore)
	if err != nil {
		return nil, err
	}

	files, err := discovery.Plan(ctx, cfg.Scripts.DefaultFile, cfg.Scripts.Files)
	if err != nil {
		return nil, err
	}

	idx := index.New(root, scanner)
	if err := idx.Build(ctx, files); err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		fmt.Fprintf(warn, "warning: %v\n", err)
	}

	return &workspace{
		root:      root,
		cfg:       cfg,
		discovery: discovery,
		index:     idx,
	}, nil
}

// loadWorkspace is the common prelude for query commands
func loadWorkspace(ctx context.Context, warn io.Writer) (*workspace, func(), error) {
	root, err := resolveRoot()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, nil, err
	}
	cleanup, err := setupLogging(cfg, true)
	if err != nil {
		return nil, nil, err
	}
	ws, err := openWorkspace(ctx, cfg, root, warn)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return ws, cleanup, nil
}
