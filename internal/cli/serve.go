package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jarredhawkins/gremlin-scripts/internal/lsp"
	"github.com/jarredhawkins/gremlin-scripts/internal/watcher"
)

var serveNoWatchFlag bool

// serveCmd runs the JSON-RPC server on stdio
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the script registry over JSON-RPC on stdio",
	Long: `Serve the script registry to an editor or tool over JSON-RPC 2.0 on
stdin/stdout. Besides go-to-definition and find-references for script files,
the server answers gremlin/get, gremlin/list, gremlin/update and
gremlin/refresh requests.

Script files are watched for changes unless watch.enabled is false or
--no-watch is given. Logs go to stderr or to log.file from the config.
`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveNoWatchFlag, "no-watch", false, "Do not watch script files for changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	cleanup, err := setupLogging(cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	log.Printf("gremlin-scripts %s starting, root=%s", Version, root)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Println("shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
	}()

	ws, err := openWorkspace(ctx, cfg, root, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}

	if cfg.Watch.Enabled && !serveNoWatchFlag {
		debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond
		w, err := watcher.New(root, ws.discovery, debounce, func(changed, removed []string) {
			for _, path := range removed {
				ws.index.RemoveFile(path)
			}
			for _, path := range changed {
				if err := ws.index.UpdateFile(path); err != nil {
					log.Printf("failed to update file %s: %v", path, err)
				}
			}
		})
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		defer w.Close()

		if err := w.Start(); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
	}

	stdin := cmd.InOrStdin()
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintln(cmd.ErrOrStderr(), "gremlin-scripts serve speaks JSON-RPC on stdin/stdout; start it from an editor or pipe requests in")
	}

	server := lsp.NewServer(ws.index, Version)
	if err := server.Serve(ctx, stdin, cmd.OutOrStdout()); err != nil && ctx.Err() == nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Println("gremlin-scripts shutdown complete")
	return nil
}
