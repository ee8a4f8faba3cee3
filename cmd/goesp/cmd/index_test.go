package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexAndLookupCommands(t *testing.T) {
	path := writeTestPlugin(t)
	indexDir := filepath.Join(t.TempDir(), "idx")

	out, err := execute(t, "index", path, "--index-dir", indexDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed test.esp: 1 records")

	out, err = execute(t, "lookup", "42", "--index-dir", indexDir)
	require.NoError(t, err)
	assert.Contains(t, out, "00000042 AACT test.esp ActionTest")

	out, err = execute(t, "lookup", "--tag", "AACT", "--index-dir", indexDir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 records")

	_, err = execute(t, "lookup", "FFFF", "--index-dir", indexDir)
	assert.Error(t, err)
}
