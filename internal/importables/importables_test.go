package importables_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/importables"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestList(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "imports", "network.yaml"), "node_templates:\n  net:\n    type: cloudify.nodes.Network\n")
	write(t, filepath.Join(root, "imports", "inputs.yaml"), "inputs:\n  region:\n    type: string\n")
	write(t, filepath.Join(root, "imports", "notes.txt"), "not yaml")
	write(t, filepath.Join(root, "imports", "broken.yaml"), "a: [unclosed\n")
	write(t, filepath.Join(root, "imports", "list.yaml"), "- a\n- b\n")

	l := importables.New()
	defer l.Close()

	assert.Equal(t, []string{"imports/inputs.yaml", "imports/network.yaml"}, l.List(filepath.Join(root, "blueprint.yaml")))
}

func TestListWithoutDirectory(t *testing.T) {
	l := importables.New()
	defer l.Close()
	assert.Empty(t, l.List(filepath.Join(t.TempDir(), "blueprint.yaml")))
}

func TestListNoticesNewFiles(t *testing.T) {
	root := t.TempDir()
	bp := filepath.Join(root, "blueprint.yaml")
	write(t, filepath.Join(root, "imports", "a.yaml"), "inputs: {}\n")

	l := importables.New()
	defer l.Close()
	require.Equal(t, []string{"imports/a.yaml"}, l.List(bp))

	write(t, filepath.Join(root, "imports", "b.yaml"), "inputs: {}\n")
	assert.Eventually(t, func() bool {
		return len(l.List(bp)) == 2
	}, 2*time.Second, 20*time.Millisecond)
}
