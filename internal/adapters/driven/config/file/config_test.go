package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ISSUESCOPE_GITHUB_TOKEN", "GITHUB_TOKEN", "ISSUESCOPE_REPO",
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_FullFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[github]
token = "ghp_secret"
repo = "acme/widgets"

[sync]
interval_minutes = 15
page_size = 50
page_delay_ms = 200
comment_workers = 3

[llm]
provider = "anthropic"
api_key = "sk-ant-secret"
model = "claude-3-5-haiku-latest"

[server]
addr = "0.0.0.0:9000"
snapshot = "/var/lib/issuescope/snapshot.json"

[data]
dir = "/var/lib/issuescope"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ghp_secret", cfg.GitHub.Token)
	assert.Equal(t, "acme/widgets", cfg.GitHub.Repo)
	assert.Equal(t, 15, cfg.Sync.IntervalMinutes)
	assert.Equal(t, 50, cfg.Sync.PageSize)
	assert.Equal(t, 200, cfg.Sync.PageDelayMs)
	assert.Equal(t, 3, cfg.Sync.CommentWorkers)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "sk-ant-secret", cfg.LLM.APIKey)
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.LLM.Model)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.Equal(t, "/var/lib/issuescope/snapshot.json", cfg.Server.Snapshot)
	assert.Equal(t, "/var/lib/issuescope", cfg.Data.Dir)
}

func TestLoad_DefaultsApplied(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[github]
repo = "acme/widgets"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultIntervalMinutes, cfg.Sync.IntervalMinutes)
	assert.Equal(t, DefaultPageSize, cfg.Sync.PageSize)
	assert.Equal(t, DefaultCommentWorkers, cfg.Sync.CommentWorkers)
	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)
	assert.Empty(t, cfg.LLM.Provider)
}

func TestLoad_MissingFileWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ISSUESCOPE_REPO", "acme/widgets")
	t.Setenv("GITHUB_TOKEN", "ghp_fromenv")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, "acme/widgets", cfg.GitHub.Repo)
	assert.Equal(t, "ghp_fromenv", cfg.GitHub.Token)
}

func TestLoad_EnvPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("ISSUESCOPE_GITHUB_TOKEN", "ghp_specific")
	t.Setenv("GITHUB_TOKEN", "ghp_generic")
	t.Setenv("ISSUESCOPE_REPO", "acme/widgets")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, "ghp_specific", cfg.GitHub.Token, "the app-specific variable wins")
}

func TestLoad_FileBeatsEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_fromenv")
	path := writeConfig(t, `
[github]
token = "ghp_fromfile"
repo = "acme/widgets"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ghp_fromfile", cfg.GitHub.Token)
}

func TestLoad_ProviderAPIKeyFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-env")
	t.Setenv("OPENAI_API_KEY", "sk-oai-env")
	path := writeConfig(t, `
[github]
repo = "acme/widgets"

[llm]
provider = "openai"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-oai-env", cfg.LLM.APIKey, "only the selected provider's key applies")
}

func TestLoad_RepoRequired(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "github.repo is required")
}

func TestLoad_UnsupportedProvider(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[github]
repo = "acme/widgets"

[llm]
provider = "cohere"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported llm.provider "cohere"`)
}

func TestLoad_MalformedTOML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `[github` + "\n")

	_, err := Load(path)
	assert.Error(t, err)
}
