package cli

// Test Plan for CLI commands:
// - version prints the build information
// - methods lists the effective registry with the overriding file
// - methods with file arguments scans only those files, later wins
// - methods --body prints bodies
// - methods -o yaml round-trips the records, unknown formats fail
// - get prints the effective body, the definition, or the SHA1
// - get reports unknown methods with ErrMethodNotFound
// - diff shows the change between first and effective definitions
// - diff notes a single definition
// - refs prints 1-indexed file:line:col hits
// - an explicit --config file is honored

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jarredhawkins/gremlin-scripts/internal/diff"
	"github.com/jarredhawkins/gremlin-scripts/internal/index"
)

const defaultScript = `def vertices(g) {
  g.V()
}

def outE(g, id) {
  vertices(g).has('id', id).outE()
}
`

const customScript = `def vertices(g) {
  g.V().limit(10)
}
`

// setupScripts writes gremlin.groovy and custom.groovy into a temp root
func setupScripts(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "gremlin.groovy"), []byte(defaultScript), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "custom.groovy"), []byte(customScript), 0644))
	return root
}

// runCLI executes the root command with fresh flag state and returns
// everything written to stdout and stderr
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgFile, rootDir, verbose = "", "", false
	methodsBodyFlag, methodsOutputFlag = false, "table"
	getDefinitionFlag, getSHA1Flag = false, false
	diffContextFlag = diff.DefaultContext

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "gremlin-scripts dev")
	assert.Contains(t, out, "Git commit: none")
}

func TestMethods_ListsEffectiveRegistry(t *testing.T) {
	root := setupScripts(t)

	out, err := runCLI(t, "methods", "--root", root)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], "outE(g, id)")
	assert.Contains(t, lines[1], "gremlin.groovy:5")
	assert.Contains(t, lines[2], "vertices(g)")
	assert.Contains(t, lines[2], "custom.groovy:1")
}

func TestMethods_FileArgumentsInOrder(t *testing.T) {
	root := setupScripts(t)
	custom := filepath.Join(root, "custom.groovy")
	base := filepath.Join(root, "gremlin.groovy")

	out, err := runCLI(t, "methods", "--root", root, "--body", custom, base)
	require.NoError(t, err)

	// gremlin.groovy comes last so its vertices wins
	assert.Contains(t, out, "    g.V()\n")
	assert.NotContains(t, out, "limit(10)")
}

func TestMethods_YAMLOutput(t *testing.T) {
	root := setupScripts(t)

	out, err := runCLI(t, "methods", "--root", root, "-o", "yaml")
	require.NoError(t, err)

	var records []methodRecord
	require.NoError(t, yaml.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "outE", records[0].Name)
	assert.Equal(t, "vertices(g).has('id', id).outE()", records[0].Body)
	assert.Equal(t, "gremlin.groovy", records[0].File)
	assert.Equal(t, "vertices", records[1].Name)
	assert.Equal(t, "custom.groovy", records[1].File)
	assert.Equal(t, 1, records[1].Line)
}

func TestMethods_UnknownOutput(t *testing.T) {
	root := setupScripts(t)

	_, err := runCLI(t, "methods", "--root", root, "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestMethods_NoScripts(t *testing.T) {
	out, err := runCLI(t, "methods", "--root", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No methods found")
}

func TestGet(t *testing.T) {
	root := setupScripts(t)

	out, err := runCLI(t, "get", "--root", root, "vertices")
	require.NoError(t, err)
	assert.Equal(t, "g.V().limit(10)\n", out)

	out, err = runCLI(t, "get", "--root", root, "--definition", "outE")
	require.NoError(t, err)
	assert.Equal(t, "def outE(g, id) {\n  vertices(g).has('id', id).outE()\n}\n", out)

	out, err = runCLI(t, "get", "--root", root, "--sha1", "outE")
	require.NoError(t, err)
	assert.Len(t, strings.TrimSpace(out), 40)
}

func TestGet_UnknownMethod(t *testing.T) {
	root := setupScripts(t)

	_, err := runCLI(t, "get", "--root", root, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, index.ErrMethodNotFound)
}

func TestDiff_ShowsOverride(t *testing.T) {
	root := setupScripts(t)

	out, err := runCLI(t, "diff", "--root", root, "vertices")
	require.NoError(t, err)
	assert.Contains(t, out, "--- gremlin.groovy:1")
	assert.Contains(t, out, "+++ custom.groovy:1")
	assert.Contains(t, out, "-g.V()\n")
	assert.Contains(t, out, "+g.V().limit(10)\n")
}

func TestDiff_SingleDefinition(t *testing.T) {
	root := setupScripts(t)

	out, err := runCLI(t, "diff", "--root", root, "outE")
	require.NoError(t, err)
	assert.Contains(t, out, "outE is defined once, in gremlin.groovy:5")
}

func TestRefs(t *testing.T) {
	root := setupScripts(t)

	out, err := runCLI(t, "refs", "--root", root, "outE")
	require.NoError(t, err)
	// The definition plus the .outE() step on the same line as the call
	assert.Contains(t, out, "gremlin.groovy:5:5: def outE(g, id) {")
	assert.Contains(t, out, "gremlin.groovy:6:29:")

	out, err = runCLI(t, "refs", "--root", root, "nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "No references to nothing")
}

func TestExplicitConfigFile(t *testing.T) {
	root := setupScripts(t)
	cfgPath := filepath.Join(t.TempDir(), "scripts.yml")
	cfg := `scripts:
  default_file: custom.groovy
  files:
    - gremlin.groovy
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	// custom.groovy loads first, gremlin.groovy overrides it
	out, err := runCLI(t, "get", "--root", root, "--config", cfgPath, "vertices")
	require.NoError(t, err)
	assert.Equal(t, "g.V()\n", out)
}
