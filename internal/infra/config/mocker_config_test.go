package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
mode: optin
log:
  level: debug
  format: json
delivery:
  poolSize: 8
transport:
  maxRedirects: 3
  cacheTTL: 30s
ignore:
  - url: https://cdn.example.com
    match: prefix
rules:
  - url: https://api.example.com/user
    contentType: json
    statusCode: 200
    delay: 150ms
    headers:
      X-Trace: abc
    responses:
      GET:
        body: '{"name":"Mocker"}'
      PUT:
        bodyFile: fixtures/user.json
  - fileExtensions: [png, jpg]
    responses:
      GET:
        bodyBase64: iVBORw0KGgo=
`

func TestParseMockerConfig(t *testing.T) {
	c, err := ParseMockerConfig([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "optin", c.Mode)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, 8, c.Delivery.PoolSize)
	assert.Equal(t, 3, c.Transport.MaxRedirects)
	assert.Equal(t, 30*time.Second, c.Transport.CacheTTL)
	require.Len(t, c.Ignore, 1)
	require.Len(t, c.Rules, 2)
	assert.Equal(t, 150*time.Millisecond, c.Rules[0].Delay)
	assert.Equal(t, "abc", c.Rules[0].Headers["X-Trace"])
	assert.Equal(t, "fixtures/user.json", c.Rules[0].Responses["PUT"].BodyFile)
	assert.Equal(t, []string{"png", "jpg"}, c.Rules[1].FileExtensions)
}

func TestParseMockerConfigDefaults(t *testing.T) {
	c, err := ParseMockerConfig([]byte("rules: []\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultMode, c.Mode)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "text", c.Log.Format)
	assert.Equal(t, DefaultPoolSize, c.Delivery.PoolSize)
	assert.Equal(t, DefaultMaxRedirects, c.Transport.MaxRedirects)
	assert.Equal(t, DefaultCacheTTL, c.Transport.CacheTTL)
	assert.Equal(t, DefaultMockerConfig().Transport, c.Transport)
}

func TestParseMockerConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad mode", yaml: "mode: sometimes\n"},
		{name: "bad log format", yaml: "log:\n  format: xml\n"},
		{name: "bad ignore url", yaml: "ignore:\n  - url: not a url\n"},
		{name: "rule without responses", yaml: "rules:\n  - url: https://h/p\n"},
		{name: "bad status", yaml: "rules:\n  - url: https://h/p\n    statusCode: 99\n    responses:\n      GET: {body: x}\n"},
		{name: "bad cache policy", yaml: "rules:\n  - url: https://h/p\n    cachePolicy: sometimes\n    responses:\n      GET: {body: x}\n"},
		{name: "two body sources", yaml: "rules:\n  - url: https://h/p\n    responses:\n      GET: {body: x, bodyFile: y}\n"},
		{name: "anonymous rule without GET", yaml: "rules:\n  - responses:\n      POST: {body: x}\n"},
		{name: "malformed yaml", yaml: "rules: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMockerConfig([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestAnonymousRuleMethodKeyCase(t *testing.T) {
	for _, key := range []string{"GET", "get", "Get"} {
		t.Run(key, func(t *testing.T) {
			c, err := ParseMockerConfig([]byte("rules:\n  - responses:\n      '" + key + "': {body: x}\n"))
			require.NoError(t, err)
			assert.Len(t, c.Rules, 1)
		})
	}
}

func TestLoadMockerConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mocker.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	t.Run("explicit path", func(t *testing.T) {
		c, err := LoadMockerConfig(path)
		require.NoError(t, err)
		assert.Equal(t, dir, c.Dir())
		assert.Equal(t, filepath.Join(dir, "fixtures/user.json"), c.ResolvePath("fixtures/user.json"))
		assert.Equal(t, "/abs/file", c.ResolvePath("/abs/file"))
	})

	t.Run("env path", func(t *testing.T) {
		t.Setenv("MOCKER_CONFIG_PATH", path)
		c, err := LoadMockerConfig("")
		require.NoError(t, err)
		assert.Equal(t, "optin", c.Mode)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := LoadMockerConfig(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("missing default file yields defaults", func(t *testing.T) {
		t.Setenv("MOCKER_CONFIG_PATH", "")
		t.Setenv("MOCKER_ENV", "does-not-exist")
		c, err := LoadMockerConfig("")
		require.NoError(t, err)
		assert.Equal(t, DefaultMode, c.Mode)
	})
}
