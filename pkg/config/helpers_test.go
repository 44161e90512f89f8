package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/frate/pkg/fsutil"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{"cache_dir", "http_timeout", "log_format", "log_level", "registry_url", "user_agent"}, Keys())
}

func TestSetAndGetValue(t *testing.T) {
	cfg := DefaultConfig(fsutil.PathsAt(t.TempDir()))

	require.NoError(t, cfg.SetValue("http_timeout", "1m30s"))
	assert.Equal(t, 90*time.Second, cfg.Settings.HTTPTimeout)

	require.NoError(t, cfg.SetValue("log_level", "DEBUG"))
	value, err := cfg.GetValue("log_level")
	require.NoError(t, err)
	assert.Equal(t, "debug", value)

	require.NoError(t, cfg.SetValue("registry_url", "https://mirror.example.com/{name}.json"))
	value, err = cfg.GetValue("registry_url")
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example.com/{name}.json", value)

	value, err = cfg.GetValue("http_timeout")
	require.NoError(t, err)
	assert.Equal(t, "1m30s", value)

	assert.Error(t, cfg.SetValue("http_timeout", "soon"))
	assert.Error(t, cfg.SetValue("color", "true"))
	_, err = cfg.GetValue("color")
	assert.Error(t, err)
}

func TestToMap(t *testing.T) {
	cfg := DefaultConfig(fsutil.PathsAt("/tmp/frate"))
	m := cfg.ToMap()

	assert.Len(t, m, len(Keys()))
	assert.Equal(t, "0s", m["http_timeout"])
	assert.Equal(t, "info", m["log_level"])
}
