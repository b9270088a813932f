package voter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCredential(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cred")
	require.NoError(t, os.WriteFile(path, []byte("NYC-SgM-axC-fCu-pvP\n"), 0o600))

	cred, err := readCredential(path)
	require.NoError(t, err)
	assert.Equal(t, "NYC-SgM-axC-fCu-pvP", cred)

	cred, err = readCredential("egc-hNc-GvW-E33-KCp")
	require.NoError(t, err)
	assert.Equal(t, "egc-hNc-GvW-E33-KCp", cred)
}
