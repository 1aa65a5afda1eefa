package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// refsCmd lists whole-word uses of a method name across loaded scripts
var refsCmd = &cobra.Command{
	Use:   "refs NAME",
	Short: "Find uses of a method name in script files",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefs,
}

func init() {
	rootCmd.AddCommand(refsCmd)
}

func runRefs(cmd *cobra.Command, args []string) error {
	ws, cleanup, err := loadWorkspace(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer cleanup()

	out := cmd.OutOrStdout()
	refs := ws.index.FindReferences(args[0])
	if len(refs) == 0 {
		fmt.Fprintf(out, "No references to %s\n", args[0])
		return nil
	}

	for _, ref := range refs {
		// Columns are printed 1-indexed, like compiler output
		fmt.Fprintf(out, "%s:%d:%d: %s\n", ws.index.DisplayPath(ref.FilePath), ref.Line, ref.Column+1, ref.LineText)
	}
	return nil
}
