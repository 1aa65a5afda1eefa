package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	rootDir string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gremlin-scripts",
	Short: "Index and serve methods defined in Gremlin/Groovy script files",
	Long: `gremlin-scripts scans Groovy script files for top-level method
definitions and keeps a registry of them by name. Later files override
methods of the same name defined in earlier ones.

The registry can be queried from the command line or served to an editor
over JSON-RPC on stdio.

Configuration is read from .gremlin/config.yml in the root directory, with
GREMLIN_* environment variables taking precedence.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <root>/.gremlin/config.yml)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "root directory of the scripts (defaults to current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
