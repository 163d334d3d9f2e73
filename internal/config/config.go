// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/mwiater/benchdash/internal/runner"
)

// EnvPrefix prefixes every environment override, e.g. BENCHDASH_RUNNER_URL.
const EnvPrefix = "BENCHDASH"

// Config contains the settings shared by every command.
type Config struct {
	// RunnerURL is the Job Runner root, for example "http://localhost:8000".
	RunnerURL string `mapstructure:"runner_url" json:"runner_url" yaml:"runner_url"`
	// BaseURL is the inference server the runner benchmarks against.
	BaseURL   string   `mapstructure:"base_url" json:"base_url" yaml:"base_url"`
	Models    []string `mapstructure:"models" json:"models" yaml:"models"`
	SuitePath string   `mapstructure:"suite_path" json:"suite_path" yaml:"suite_path"`
	Runs      int      `mapstructure:"runs" json:"runs" yaml:"runs"`
	Warmup    int      `mapstructure:"warmup" json:"warmup" yaml:"warmup"`
	// Timeout is the per-inference timeout in seconds, enforced by the runner.
	Timeout     float64 `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
	UseLLMJudge bool    `mapstructure:"use_llm_judge" json:"use_llm_judge" yaml:"use_llm_judge"`
	JudgeModel  string  `mapstructure:"judge_model" json:"judge_model" yaml:"judge_model"`

	PollInterval time.Duration `mapstructure:"poll_interval" json:"poll_interval" yaml:"poll_interval"`
	// RequestTimeout bounds each HTTP call to the runner. Zero means none.
	RequestTimeout time.Duration `mapstructure:"request_timeout" json:"request_timeout" yaml:"request_timeout"`

	// Locale is the BCP 47 tag used to collate sorted string columns.
	Locale      string `mapstructure:"locale" json:"locale" yaml:"locale"`
	LogFile     string `mapstructure:"log_file" json:"log_file" yaml:"log_file"`
	Debug       bool   `mapstructure:"debug" json:"debug" yaml:"debug"`
	MetricsAddr string `mapstructure:"metrics_addr" json:"metrics_addr" yaml:"metrics_addr"`
	Format      string `mapstructure:"format" json:"format" yaml:"format"`
}

// Defaults are applied before the config file, environment and flags.
var Defaults = map[string]any{
	"runner_url":      "http://localhost:8000",
	"base_url":        "http://localhost:1234/v1",
	"models":          []string{},
	"suite_path":      "bench/suite.yaml",
	"runs":            1,
	"warmup":          0,
	"timeout":         60.0,
	"use_llm_judge":   false,
	"judge_model":     "",
	"poll_interval":   800 * time.Millisecond,
	"request_timeout": time.Duration(0),
	"locale":          "en",
	"log_file":        "debug.log",
	"debug":           false,
	"metrics_addr":    "",
	"format":          "text",
}

// Register installs defaults and environment lookup on v.
func Register(v *viper.Viper) {
	for k, val := range Defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
}

// New returns a viper instance with defaults and environment lookup.
func New() *viper.Viper {
	v := viper.New()
	Register(v)
	return v
}

// Load reads the optional config file at path into v and decodes the result.
// Unknown file keys are ignored.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("could not read config file: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("could not decode config: %w", err)
	}
	cfg.Models = splitModels(cfg.Models)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// splitModels accepts "a,b" from flags or the environment as two models.
func splitModels(in []string) []string {
	out := make([]string, 0, len(in))
	for _, m := range in {
		for _, part := range strings.Split(m, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.RunnerURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("runner_url %q is not an absolute URL", c.RunnerURL))
	}
	if c.Runs < 1 {
		errs = append(errs, fmt.Errorf("runs must be at least 1, got %d", c.Runs))
	}
	if c.Warmup < 0 {
		errs = append(errs, fmt.Errorf("warmup must not be negative, got %d", c.Warmup))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request_timeout must not be negative, got %s", c.RequestTimeout))
	}
	if _, err := language.Parse(c.Locale); err != nil {
		errs = append(errs, fmt.Errorf("locale %q: %w", c.Locale, err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// StartRequest builds the runner start request for models.
func (c Config) StartRequest(models []string) runner.StartRequest {
	req := runner.StartRequest{
		BaseURL:     c.BaseURL,
		Models:      models,
		Runs:        c.Runs,
		Warmup:      c.Warmup,
		Timeout:     c.Timeout,
		SuitePath:   c.SuitePath,
		UseLLMJudge: c.UseLLMJudge,
	}
	if c.UseLLMJudge && c.JudgeModel != "" {
		judge := c.JudgeModel
		req.JudgeModel = &judge
	}
	return req
}

// Client returns a runner client configured from c.
func (c Config) Client() *runner.Client {
	return runner.NewClient(c.RunnerURL, runner.WithTimeout(c.RequestTimeout))
}
