package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jarredhawkins/gremlin-scripts/internal/types"
)

var (
	methodsBodyFlag   bool
	methodsOutputFlag string
)

// methodRecord is the structured form of a method for yaml and json output
type methodRecord struct {
	Name      string `yaml:"name" json:"name"`
	Signature string `yaml:"signature" json:"signature"`
	Body      string `yaml:"body" json:"body"`
	SHA1      string `yaml:"sha1" json:"sha1"`
	File      string `yaml:"file" json:"file"`
	Line      int    `yaml:"line" json:"line"`
}

// methodsCmd lists the effective methods of the registry, or of the given
// files scanned in order
var methodsCmd = &cobra.Command{
	Use:   "methods [files...]",
	Short: "List the methods defined in script files",
	Long: `List every method name with its signature and where it is defined.

Without arguments the script files under the root are loaded in order: the
default file (gremlin.groovy), then discovered files sorted by path, then
scripts.files from the config in the order listed, so listed files override
unlisted ones. With file arguments only those files are scanned, in the
order given; a later file overrides methods of the same name from an
earlier one.

Examples:
  # Methods of the whole registry
  gremlin-scripts methods

  # Methods of two files, custom.groovy overriding gremlin.groovy
  gremlin-scripts methods gremlin.groovy custom.groovy

  # Include method bodies
  gremlin-scripts methods --body

  # Dump the registry as YAML
  gremlin-scripts methods -o yaml
`,
	RunE: runMethods,
}

func init() {
	rootCmd.AddCommand(methodsCmd)
	methodsCmd.Flags().BoolVarP(&methodsBodyFlag, "body", "b", false, "Print each method body under its name")
	methodsCmd.Flags().StringVarP(&methodsOutputFlag, "output", "o", "table", "Output format: table, yaml or json")
}

func runMethods(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return runMethodsForFiles(cmd, args)
	}

	ws, cleanup, err := loadWorkspace(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer cleanup()

	var methods []*types.Method
	for _, name := range ws.index.Names() {
		if m, ok := ws.index.Method(name); ok {
			methods = append(methods, m)
		}
	}
	return printMethods(cmd.OutOrStdout(), methods, ws.index.DisplayPath)
}

// runMethodsForFiles scans files directly, without discovery or config
// include patterns
func runMethodsForFiles(cmd *cobra.Command, files []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	scanner, err := newScanner(cfg)
	if err != nil {
		return err
	}

	merged := make(map[string]*types.Method)
	for _, file := range files {
		records, err := scanner.ParseFile(file)
		if err != nil {
			return err
		}
		for _, m := range records {
			merged[m.Name] = m
		}
	}

	methods := make([]*types.Method, 0, len(merged))
	for _, m := range merged {
		methods = append(methods, m)
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i].Name < methods[j].Name })

	return printMethods(cmd.OutOrStdout(), methods, func(path string) string { return path })
}

func printMethods(out io.Writer, methods []*types.Method, display func(string) string) error {
	switch methodsOutputFlag {
	case "table", "":
	case "yaml", "json":
		records := make([]methodRecord, len(methods))
		for i, m := range methods {
			records[i] = methodRecord{
				Name:      m.Name,
				Signature: m.Signature,
				Body:      m.Body,
				SHA1:      m.SHA1,
				File:      display(m.FilePath),
				Line:      m.Line,
			}
		}
		if methodsOutputFlag == "json" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", methodsOutputFlag)
	}

	if len(methods) == 0 {
		fmt.Fprintln(out, "No methods found")
		return nil
	}

	if methodsBodyFlag {
		for _, m := range methods {
			fmt.Fprintf(out, "%s  (%s:%d)\n", m.Signature, display(m.FilePath), m.Line)
			fmt.Fprintln(out, indent(m.Body, "    "))
			fmt.Fprintln(out)
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIGNATURE\tLOCATION")
	for _, m := range methods {
		fmt.Fprintf(w, "%s\t%s\t%s:%d\n", m.Name, m.Signature, display(m.FilePath), m.Line)
	}
	return w.Flush()
}

func indent(text, prefix string) string {
	if text == "" {
		return prefix
	}
	out := make([]byte, 0, len(text)+len(prefix))
	out = append(out, prefix...)
	for i := 0; i < len(text); i++ {
		out = append(out, text[i])
		if text[i] == '\n' {
			out = append(out, prefix...)
		}
	}
	return string(out)
}

