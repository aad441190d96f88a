package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheDir_Home(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".cache", appName), dir)
}

func TestCacheDir_XDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	dir, err := cacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/custom-cache", appName), dir)
}

func TestRedisAddr(t *testing.T) {
	t.Setenv(redisEnv, "redis://env:6379/0")

	c := &CLI{}
	assert.Equal(t, "redis://env:6379/0", c.redisAddr())

	c.redisURL = "redis://flag:6379/1"
	assert.Equal(t, "redis://flag:6379/1", c.redisAddr())
}
