package config

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	CodeScenarioInvalid = "SCENARIO_INVALID"
	CodeEnvInvalid      = "ENV_INVALID"
)

// Env holds overrides read from the environment (and a local .env file).
type Env struct {
	Handler   string        `env:"CMDQUEUE_HANDLER"`
	Retry     string        `env:"CMDQUEUE_RETRY"`
	Delay     *time.Duration `env:"CMDQUEUE_DELAY"`
	LogLevel  string        `env:"CMDQUEUE_LOG_LEVEL" envDefault:"info"`
	LogFormat string        `env:"CMDQUEUE_LOG_FORMAT" envDefault:"console"`
}

var defaultEnvLoaded sync.Once

// LoadEnv reads Env, loading a .env file from the working directory first
// when one exists.
func LoadEnv() (Env, error) {
	defaultEnvLoaded.Do(func() {
		// the .env file is optional
		_ = godotenv.Load()
	})

	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Wrap(err, errors.CategoryBadInput, "parse environment").
			WithTextCode(CodeEnvInvalid)
	}
	return cfg, nil
}

// JSONLogs reports whether the log format asks for JSON output.
func (e Env) JSONLogs() bool {
	return strings.EqualFold(strings.TrimSpace(e.LogFormat), "json")
}

// Apply overrides scenario settings with the values set in the environment.
func (e Env) Apply(s Scenario) Scenario {
	if v := strings.TrimSpace(e.Handler); v != "" {
		s.Handler = v
	}
	if v := strings.TrimSpace(e.Retry); v != "" {
		s.Retry = v
	}
	// an explicit zero switches pacing off
	if e.Delay != nil {
		s.Delay = *e.Delay
	}
	return s
}

// ParseScenario parses YAML (or JSON) into a validated Scenario.
func ParseScenario(data []byte) (Scenario, error) {
	var s Scenario
	// yaml can handle JSON too, so a single attempt is fine
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, errors.Wrap(err, errors.CategoryBadInput, "decode scenario").
			WithTextCode(CodeScenarioInvalid)
	}
	if err := s.Validate(); err != nil {
		return s, errors.Wrap(err, errors.CategoryValidation, "invalid scenario").
			WithTextCode(CodeScenarioInvalid).
			WithMetadata(map[string]any{
				"scenario": s.Name,
			})
	}
	return s, nil
}

// LoadScenarioFile reads and parses a scenario file.
func LoadScenarioFile(path string) (Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, errors.Wrap(err, errors.CategoryBadInput, "read scenario").
			WithTextCode(CodeScenarioInvalid).
			WithMetadata(map[string]any{
				"path": path,
			})
	}
	s, err := ParseScenario(raw)
	if err != nil {
		return s, err
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}
