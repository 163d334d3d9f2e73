package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.RunnerURL)
	assert.Equal(t, "bench/suite.yaml", cfg.SuitePath)
	assert.Equal(t, 1, cfg.Runs)
	assert.Equal(t, 800*time.Millisecond, cfg.PollInterval)
	assert.Zero(t, cfg.RequestTimeout)
	assert.Equal(t, "en", cfg.Locale)
	assert.Empty(t, cfg.Models)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "benchdash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
runner_url: http://runner:9000
models: [qwen, llama]
runs: 3
poll_interval: 250ms
use_llm_judge: true
judge_model: judge-7b
locale: ja
`), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "http://runner:9000", cfg.RunnerURL)
	assert.Equal(t, []string{"qwen", "llama"}, cfg.Models)
	assert.Equal(t, 3, cfg.Runs)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, "ja", cfg.Locale)

	req := cfg.StartRequest(cfg.Models)
	require.NotNil(t, req.JudgeModel)
	assert.Equal(t, "judge-7b", *req.JudgeModel)
	assert.Equal(t, 3, req.Runs)
}

func TestLoad_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "benchdash.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"suite_path":"bench/vision.yaml","warmup":2}`), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "bench/vision.yaml", cfg.SuitePath)
	assert.Equal(t, 2, cfg.Warmup)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("BENCHDASH_RUNNER_URL", "http://env-runner:8000")
	t.Setenv("BENCHDASH_MODELS", "a, b,,c")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "http://env-runner:8000", cfg.RunnerURL)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Models)
}

func TestValidate(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	bad := cfg
	bad.RunnerURL = "localhost"
	bad.Runs = 0
	bad.PollInterval = 0
	bad.Locale = "!!"
	err = bad.Validate()
	require.Error(t, err)
	for _, want := range []string{"runner_url", "runs", "poll_interval", "locale"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestStartRequest_NoJudgeWithoutFlag(t *testing.T) {
	cfg := Config{JudgeModel: "judge", UseLLMJudge: false, Runs: 1}
	assert.Nil(t, cfg.StartRequest([]string{"m"}).JudgeModel)
}
