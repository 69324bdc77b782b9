package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kozaktomas/cubescout/internal/presence"
)

func TestRunManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faces.csv")
	content := "data/alice/1.png;1\ndata/alice/2.png;1\ndata/bob_smith/1.png;2\nbroken line\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	var out bytes.Buffer
	manifestCmd.SetOut(&out)
	defer manifestCmd.SetOut(nil)

	require.NoError(t, runManifest(manifestCmd, []string{path}))

	assert.Equal(t, "3 images, 2 people, 1 malformed lines skipped\n"+
		"     1  Alice                    2 images\n"+
		"     2  Bob Smith                1 images\n", out.String())
}

func TestRunManifest_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0o644))

	err := runManifest(manifestCmd, []string{path})
	assert.ErrorIs(t, err, presence.ErrConfiguration)
}
