package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDiscovery(t *testing.T, root string) *Discovery {
	t.Helper()
	d, err := NewDiscovery(root, []string{"**/*.groovy"}, []string{"vendor/**", "build/**"})
	require.NoError(t, err)
	return d
}

func TestDiscovery_Matches(t *testing.T) {
	d := newTestDiscovery(t, "/scripts")

	tests := []struct {
		path string
		want bool
	}{
		{"/scripts/gremlin.groovy", true},
		{"/scripts/lib/graph.groovy", true},
		{"lib/deep/more.groovy", true},
		{"/scripts/vendor/lib.groovy", false},
		{"/scripts/build/out.groovy", false},
		{"/scripts/readme.md", false},
		{"/other/gremlin.groovy", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.Matches(tt.path), tt.path)
	}
}

func TestDiscovery_IgnoredDir(t *testing.T) {
	d := newTestDiscovery(t, "/scripts")

	assert.False(t, d.IgnoredDir("/scripts"))
	assert.False(t, d.IgnoredDir("/scripts/lib"))
	assert.True(t, d.IgnoredDir("/scripts/vendor"))
	assert.True(t, d.IgnoredDir("/scripts/.git"))
	assert.True(t, d.IgnoredDir("/outside"))
}

func TestDiscovery_Discover(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "gremlin.groovy", baseScript)
	writeScript(t, dir, "lib/b.groovy", overrideScript)
	writeScript(t, dir, "lib/a.groovy", overrideScript)
	writeScript(t, dir, "vendor/skip.groovy", overrideScript)
	writeScript(t, dir, ".hidden/skip.groovy", overrideScript)
	writeScript(t, dir, "notes.txt", "def x() {\n}\n")

	files, err := newTestDiscovery(t, dir).Discover(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "gremlin.groovy"),
		filepath.Join(dir, "lib", "a.groovy"),
		filepath.Join(dir, "lib", "b.groovy"),
	}, files)
}

func TestDiscovery_Plan(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "gremlin.groovy", baseScript)
	writeScript(t, dir, "a.groovy", overrideScript)
	writeScript(t, dir, "z.groovy", overrideScript)
	writeScript(t, dir, "extra/late.gremlin", overrideScript)

	d := newTestDiscovery(t, dir)

	// Unlisted files load after the default file, explicit files last in
	// the given order
	plan, err := d.Plan(context.Background(), "gremlin.groovy", []string{"z.groovy", "extra/late.gremlin"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "gremlin.groovy"),
		filepath.Join(dir, "a.groovy"),
		filepath.Join(dir, "z.groovy"),
		filepath.Join(dir, "extra", "late.gremlin"),
	}, plan)
}

func TestDiscovery_PlanListedFilesOverrideUnlisted(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "custom.groovy", "def f() {\n  return 'listed'\n}\n")
	writeScript(t, dir, "zz_extra.groovy", "def f() {\n  return 'unlisted'\n}\n")

	plan, err := newTestDiscovery(t, dir).Plan(context.Background(), "gremlin.groovy", []string{"custom.groovy"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "zz_extra.groovy"),
		filepath.Join(dir, "custom.groovy"),
	}, plan)

	idx := newTestIndex(t, dir)
	require.NoError(t, idx.Build(context.Background(), plan))
	body, err := idx.Get("f")
	require.NoError(t, err)
	assert.Equal(t, "return 'listed'", body)
}

func TestDiscovery_PlanDefaultFileListedExplicitly(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "gremlin.groovy", baseScript)
	writeScript(t, dir, "a.groovy", overrideScript)

	// Listing the default file moves it to its explicit position
	plan, err := newTestDiscovery(t, dir).Plan(context.Background(), "gremlin.groovy", []string{"gremlin.groovy"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.groovy"),
		filepath.Join(dir, "gremlin.groovy"),
	}, plan)
}

func TestDiscovery_PlanMissingDefaultIsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "a.groovy", overrideScript)

	plan, err := newTestDiscovery(t, dir).Plan(context.Background(), "gremlin.groovy", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.groovy")}, plan)
}

func TestDiscovery_PlanMissingExplicitFile(t *testing.T) {
	dir := t.TempDir()
	_, err := newTestDiscovery(t, dir).Plan(context.Background(), "", []string{"missing.groovy"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.groovy")
}

func TestNewDiscovery_InvalidPattern(t *testing.T) {
	_, err := NewDiscovery("/scripts", []string{"[abc"}, nil)
	assert.Error(t, err)
}
