// internal/discovery/finder_test.go
package discovery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// writeTree creates the given files (with empty content) under a temp dir.
func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("// "+f), 0o644))
	}
	return root
}

func rel(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(root, f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func defaultFinder(t *testing.T) *FileFinder {
	t.Helper()
	f, err := NewFileFinder(Config{
		Exclude: []string{"**/node_modules/**", "**/bower_components/**", "**/*.min.js"},
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return f
}

func TestFileFinder_Directory(t *testing.T) {
	root := writeTree(t,
		"app.js",
		"src/controllers/main.js",
		"src/controllers/main.spec.js",
		"src/styles.css",
		"vendor/angular.min.js",
		"node_modules/lib/index.js",
		"src/node_modules/nested.js",
		"bower_components/x/x.js",
	)

	files, err := defaultFinder(t).Find(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"app.js",
		"src/controllers/main.js",
		"src/controllers/main.spec.js",
	}, rel(t, root, files))
}

func TestFileFinder_CustomPatterns(t *testing.T) {
	root := writeTree(t, "src/a.js", "src/a.spec.js", "test/b.js", "lib/c.mjs")

	f, err := NewFileFinder(Config{
		Include: []string{"src/**/*.js", "**/*.mjs"},
		Exclude: []string{"**/*.spec.js"},
	}, nil)
	require.NoError(t, err)

	files, err := f.Find(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/c.mjs", "src/a.js"}, rel(t, root, files))
}

func TestFileFinder_ExplicitFilesAndDeduplication(t *testing.T) {
	root := writeTree(t, "a.js", "b.ts", "lib.min.js")
	a := filepath.Join(root, "a.js")

	files, err := defaultFinder(t).Find(context.Background(), []string{
		a,
		filepath.Join(root, "b.ts"),       // named explicitly, so the extension does not matter
		filepath.Join(root, "lib.min.js"), // still excluded
		root,
		a,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.js", "b.ts"}, rel(t, root, files))
}

func TestFileFinder_GlobArgument(t *testing.T) {
	root := writeTree(t, "src/a.js", "src/deep/b.js", "src/c.min.js", "other/d.js")

	files, err := defaultFinder(t).Find(context.Background(), []string{filepath.Join(root, "src", "**", "*.js")})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.js", "src/deep/b.js"}, rel(t, root, files))
}

func TestFileFinder_Errors(t *testing.T) {
	_, err := NewFileFinder(Config{Include: []string{"src/[a-"}}, nil)
	assert.True(t, errors.Is(err, ErrBadPattern))

	_, err = defaultFinder(t).Find(context.Background(), []string{filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot access")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = defaultFinder(t).Find(ctx, []string{t.TempDir()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileFinder_Selects(t *testing.T) {
	f := defaultFinder(t)
	root := filepath.Join("project")

	assert.True(t, f.Selects(root, filepath.Join(root, "src", "a.js")))
	assert.False(t, f.Selects(root, filepath.Join(root, "src", "a.min.js")))
	assert.False(t, f.Selects(root, filepath.Join(root, "node_modules", "x", "a.js")))
	assert.False(t, f.Selects(root, filepath.Join(root, "README.md")))
	assert.False(t, f.Selects(root, filepath.Join("elsewhere", "a.js")), "paths outside root are never selected")

	assert.True(t, f.IsExcludedDir(root, filepath.Join(root, "node_modules")))
	assert.True(t, f.IsExcludedDir(root, filepath.Join(root, "a", "bower_components")))
	assert.False(t, f.IsExcludedDir(root, filepath.Join(root, "src")))
	assert.False(t, f.IsExcludedDir(root, root))

	assert.True(t, f.IsExcluded("/abs/path/node_modules/x.js"))
	assert.False(t, f.IsExcluded("/abs/path/src/x.js"))
}

func TestConfig_SetDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, []string{"**/*.js"}, c.Include)

	assert.Equal(t, []string{"**/node_modules/**", "**/bower_components/**", "**/*.min.js"}, c.Exclude)

	c = Config{Include: []string{"*.mjs"}, Exclude: []string{}}
	c.SetDefaults()
	assert.Equal(t, []string{"*.mjs"}, c.Include)
	assert.Empty(t, c.Exclude, "an explicit empty list disables the default excludes")
}

func TestFileFinder_ZeroConfigSkipsVendoredCode(t *testing.T) {
	root := writeTree(t, "a.js", "node_modules/x/index.js", "vendor/bower_components/y.js", "dist/app.min.js")

	f, err := NewFileFinder(Config{}, nil)
	require.NoError(t, err)

	files, err := f.Find(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.js"}, rel(t, root, files))
}
