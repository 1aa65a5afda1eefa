package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jarredhawkins/gremlin-scripts/internal/index"
)

var (
	getDefinitionFlag bool
	getSHA1Flag       bool
)

// getCmd prints the body of the effective definition of a method
var getCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Print the body of a method",
	Long: `Print the body of the named method as the registry resolves it, that
is from the last loaded file that defines it.

Examples:
  # Body only, ready to send to a Gremlin server
  gremlin-scripts get vertices

  # Full definition including the def line and closing brace
  gremlin-scripts get vertices --definition
`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().BoolVarP(&getDefinitionFlag, "definition", "d", false, "Print the whole definition instead of the body")
	getCmd.Flags().BoolVar(&getSHA1Flag, "sha1", false, "Print the SHA1 of the definition")
}

func runGet(cmd *cobra.Command, args []string) error {
	ws, cleanup, err := loadWorkspace(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer cleanup()

	name := args[0]
	m, ok := ws.index.Method(name)
	if !ok {
		return fmt.Errorf("%w: %s", index.ErrMethodNotFound, name)
	}

	out := cmd.OutOrStdout()
	switch {
	case getSHA1Flag:
		fmt.Fprintln(out, m.SHA1)
	case getDefinitionFlag:
		fmt.Fprintln(out, m.Definition)
	default:
		fmt.Fprintln(out, m.Body)
	}
	return nil
}
