package auth

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransport_SetsTokenHeader(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewTransport("s3cr3t", srv.Client().Transport)}
	res, err := client.Get(srv.URL)
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, "Token s3cr3t", got)
}

func TestSaveAndLoadAPIKey(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	key, err := LoadAPIKey()
	require.NoError(t, err)
	assert.Empty(t, key, "no token file yet")

	path, err := SaveAPIKey("  abc123  ")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "taskdump", TokenFile), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	key, err = LoadAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "abc123", key)
}

func TestSaveAPIKey_Empty(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := SaveAPIKey("   ")
	assert.Error(t, err)
}

func TestLoadAPIKey_Corrupt(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "taskdump"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "taskdump", TokenFile), []byte("{"), 0600))

	_, err := LoadAPIKey()
	assert.Error(t, err)
}
