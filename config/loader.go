package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ClarifierMode controls when the generative clarifier runs.
// "off" disables it, "auto" runs it only when pattern matching came up
// short, "always" runs it on every query.
const (
	ClarifierOff    = "off"
	ClarifierAuto   = "auto"
	ClarifierAlways = "always"
)

// PipelineConfig holds the query-pipeline feature switches.
type PipelineConfig struct {
	MaxTextLen        int    `yaml:"max_text_len"`
	UseNER            bool   `yaml:"use_ner"`
	ClarifierMode     string `yaml:"clarifier_mode"`
	ClarifierOverride bool   `yaml:"clarifier_override"` // let clarifier overwrite pattern slots
}

// CollaboratorConfig points at one downstream service.
type CollaboratorConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	Port        int `yaml:"port"`
	EventPort   int `yaml:"event_port"`
	MaxUploadMB int `yaml:"max_upload_mb"`
}

// Config is the main service configuration, loadable from YAML.
type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	STT           CollaboratorConfig `yaml:"stt"`
	ProductFinder CollaboratorConfig `yaml:"product_finder"`
	Tagger        CollaboratorConfig `yaml:"tagger"`
	LogLevel      string             `yaml:"log_level"`
	LogJSON       bool               `yaml:"log_json"`
}

// EnvConfig holds environment variable overrides.
type EnvConfig struct {
	Port        int
	EventPort   int
	MaxUploadMB int

	STTURL    string
	FinderURL string
	TaggerURL string
	FinderKey string

	UseNER            bool
	ClarifierMode     string
	ClarifierOverride bool

	LogLevel string
}

// Default returns the configuration the service runs with when no file
// or environment is provided.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8000, EventPort: 8091, MaxUploadMB: 20},
		Pipeline: PipelineConfig{MaxTextLen: 600, UseNER: false, ClarifierMode: ClarifierAuto},
		STT:      CollaboratorConfig{BaseURL: "http://localhost:8001", TimeoutSeconds: 30},
		ProductFinder: CollaboratorConfig{
			BaseURL:        "http://localhost:8003",
			TimeoutSeconds: 15,
		},
		Tagger:   CollaboratorConfig{BaseURL: "http://localhost:8004", TimeoutSeconds: 5},
		LogLevel: "info",
		LogJSON:  true,
	}
}

// Load reads the YAML config file, falling back to defaults when the
// path is empty or missing, then applies environment overrides.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	env, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	cfg.applyEnv(env)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv loads environment variables, reading a .env file if present.
func LoadEnv() (*EnvConfig, error) {
	_ = godotenv.Load()

	cfg := &EnvConfig{
		STTURL:            getEnv("VM_STT_URL", ""),
		FinderURL:         getEnv("VM_FINDER_URL", ""),
		TaggerURL:         getEnv("VM_TAGGER_URL", ""),
		FinderKey:         getEnv("VM_FINDER_KEY", ""),
		ClarifierMode:     getEnv("VM_CLARIFIER", ""),
		LogLevel:          getEnv("VM_LOG_LEVEL", ""),
		UseNER:            getEnvBool("VM_USE_NER", false),
		ClarifierOverride: getEnvBool("VM_CLARIFIER_OVERRIDE", false),
	}
	cfg.Port = getEnvInt("VM_PORT", 0)
	cfg.EventPort = getEnvInt("VM_EVENT_PORT", 0)
	cfg.MaxUploadMB = getEnvInt("VM_MAX_UPLOAD_MB", 0)
	return cfg, nil
}

func (c *Config) applyEnv(env *EnvConfig) {
	if env.Port > 0 {
		c.Server.Port = env.Port
	}
	if env.EventPort > 0 {
		c.Server.EventPort = env.EventPort
	}
	if env.MaxUploadMB > 0 {
		c.Server.MaxUploadMB = env.MaxUploadMB
	}
	if env.STTURL != "" {
		c.STT.BaseURL = env.STTURL
	}
	if env.FinderURL != "" {
		c.ProductFinder.BaseURL = env.FinderURL
	}
	if env.FinderKey != "" {
		c.ProductFinder.APIKey = env.FinderKey
	}
	if env.TaggerURL != "" {
		c.Tagger.BaseURL = env.TaggerURL
	}
	if env.ClarifierMode != "" {
		c.Pipeline.ClarifierMode = env.ClarifierMode
	}
	if env.UseNER {
		c.Pipeline.UseNER = true
	}
	if env.ClarifierOverride {
		c.Pipeline.ClarifierOverride = true
	}
	if env.LogLevel != "" {
		c.LogLevel = env.LogLevel
	}
}

// Validate checks the parts of the config that would otherwise fail at
// request time.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Pipeline.ClarifierMode) {
	case ClarifierOff, ClarifierAuto, ClarifierAlways:
	default:
		return fmt.Errorf("unsupported clarifier_mode: %q (supported: off, auto, always)", c.Pipeline.ClarifierMode)
	}
	if c.Pipeline.MaxTextLen <= 0 {
		c.Pipeline.MaxTextLen = 600
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server port must be positive, got %d", c.Server.Port)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func expandEnvVars(s string) string {
	// Replace ${VAR_NAME} with environment variable values
	return os.Expand(s, func(key string) string {
		return os.Getenv(key)
	})
}
