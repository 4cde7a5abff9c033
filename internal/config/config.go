package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"devops-report/internal/devops"
	"devops-report/internal/llm"
	"devops-report/internal/report"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DevOps devops.Config
	LLM    llm.Config
	Report report.Settings
	Server ServerConfig
}

// ServerConfig holds the settings of the websocket trigger server.
type ServerConfig struct {
	Addr string
}

// FileConfig is the optional YAML file named by REPORT_CONFIG.
type FileConfig struct {
	// Strategy names a preset; ignored when Custom is set.
	Strategy            string           `yaml:"strategy"`
	Custom              *report.Strategy `yaml:"custom,omitempty"`
	RiskHorizonDays     int              `yaml:"risk_horizon_days,omitempty"`
	EnableMermaidCharts *bool            `yaml:"enable_mermaid_charts,omitempty"`
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory
	if exePath, err := os.Executable(); err == nil {
		envPath := filepath.Join(filepath.Dir(exePath), ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*AppConfig, error) {
	delayMillis := getEnvInt("AZURE_DEVOPS_REQUEST_DELAY_MS", 0)
	retry := llm.DefaultRetryConfig()
	if n := getEnvInt("OPENAI_MAX_ATTEMPTS", 0); n > 0 {
		retry.MaxAttempts = n
	}

	var temperature *float64
	if v, err := strconv.ParseFloat(getEnv("OPENAI_TEMPERATURE", ""), 64); err == nil {
		temperature = &v
	}

	cfg := &AppConfig{
		DevOps: devops.Config{
			BaseURL:      getEnv("AZURE_DEVOPS_URL", ""),
			Organization: getEnv("AZURE_DEVOPS_ORG", ""),
			Project:      getEnv("AZURE_DEVOPS_PROJECT", ""),
			PAT:          getEnv("AZURE_DEVOPS_PAT", ""),
			APIVersion:   getEnv("AZURE_DEVOPS_API_VERSION", ""),
			RequestDelay: time.Duration(delayMillis) * time.Millisecond,
			BatchSize:    getEnvInt("AZURE_DEVOPS_BATCH_SIZE", 0),
			Timeout:      time.Duration(getEnvInt("AZURE_DEVOPS_TIMEOUT_SECONDS", 0)) * time.Second,
		},
		LLM: llm.Config{
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Model:       getEnv("OPENAI_MODEL", ""),
			Temperature: temperature,
			MaxTokens:   getEnvInt("OPENAI_MAX_TOKENS", 0),
			Timeout:     time.Duration(getEnvInt("OPENAI_TIMEOUT_SECONDS", 0)) * time.Second,
			Retry:       retry,
		},
		Report: report.DefaultSettings(),
		Server: ServerConfig{
			Addr: ":" + getEnv("PORT", "3600"),
		},
	}

	strategy, err := report.LookupStrategy(getEnv("REPORT_STRATEGY", report.StrategyOpenHierarchy))
	if err != nil {
		return nil, err
	}
	cfg.Report.Strategy = strategy
	cfg.Report.EnableMermaidCharts = getEnvBool("ENABLE_MERMAID_CHARTS", false)

	if path := os.Getenv("REPORT_CONFIG"); path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// ApplyFile overlays the report settings found in a YAML file.
func (c *AppConfig) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read report config %s: %w", path, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse report config %s: %w", path, err)
	}

	switch {
	case fc.Custom != nil:
		if fc.Custom.Name == "" {
			fc.Custom.Name = "custom"
		}
		c.Report.Strategy = *fc.Custom
	case fc.Strategy != "":
		s, err := report.LookupStrategy(fc.Strategy)
		if err != nil {
			return err
		}
		c.Report.Strategy = s
	}

	if fc.RiskHorizonDays > 0 {
		c.Report.RiskHorizon = time.Duration(fc.RiskHorizonDays) * 24 * time.Hour
	}
	if fc.EnableMermaidCharts != nil {
		c.Report.EnableMermaidCharts = *fc.EnableMermaidCharts
	}

	log.Debug().Str("path", path).Str("strategy", c.Report.Strategy.Name).Msg("Applied report config file")
	return nil
}

// Validate reports missing credentials and an unusable strategy.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.DevOps.Organization == "" {
		errs = append(errs, errors.New("AZURE_DEVOPS_ORG is required"))
	}
	if c.DevOps.Project == "" {
		errs = append(errs, errors.New("AZURE_DEVOPS_PROJECT is required"))
	}
	if c.DevOps.PAT == "" {
		errs = append(errs, errors.New("AZURE_DEVOPS_PAT is required"))
	}
	// Local OpenAI-compatible endpoints (Ollama, vLLM) run without a key.
	if c.LLM.APIKey == "" && c.LLM.BaseURL == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required unless OPENAI_BASE_URL points to a keyless endpoint"))
	}
	if err := c.Report.Strategy.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvInt returns fallback when the variable is unset, empty, or not a number.
func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
