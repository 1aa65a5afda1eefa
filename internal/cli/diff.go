package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jarredhawkins/gremlin-scripts/internal/diff"
	"github.com/jarredhawkins/gremlin-scripts/internal/index"
)

var diffContextFlag int

// diffCmd shows how an override changed a method
var diffCmd = &cobra.Command{
	Use:   "diff NAME",
	Short: "Show how overrides changed a method",
	Long: `Compare the first loaded definition of a method with the one that
wins, as a unified diff of their bodies.

Nothing is printed beyond a note when the method is defined once or every
definition has the same body.
`,
	Args: cobra.ExactArgs(1),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().IntVarP(&diffContextFlag, "context", "U", diff.DefaultContext, "Lines of context around each change")
}

func runDiff(cmd *cobra.Command, args []string) error {
	ws, cleanup, err := loadWorkspace(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer cleanup()

	name := args[0]
	defs := ws.index.Definitions(name)
	if len(defs) == 0 {
		return fmt.Errorf("%w: %s", index.ErrMethodNotFound, name)
	}

	out := cmd.OutOrStdout()
	first, last := defs[0], defs[len(defs)-1]
	if len(defs) == 1 {
		fmt.Fprintf(out, "%s is defined once, in %s:%d\n", name, ws.index.DisplayPath(first.FilePath), first.Line)
		return nil
	}

	patch, err := diff.Unified(
		fmt.Sprintf("%s:%d", ws.index.DisplayPath(first.FilePath), first.Line),
		fmt.Sprintf("%s:%d", ws.index.DisplayPath(last.FilePath), last.Line),
		first.Body+"\n",
		last.Body+"\n",
		diffContextFlag,
	)
	if err != nil {
		return fmt.Errorf("failed to diff %s: %w", name, err)
	}
	if patch == "" {
		fmt.Fprintf(out, "%s has %d definitions with identical bodies\n", name, len(defs))
		return nil
	}

	fmt.Fprint(out, patch)
	return nil
}
