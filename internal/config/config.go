package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Source and explainer providers
const (
	ProviderFunctions = "functions"
	ProviderEtherscan = "etherscan"
	ProviderMySQL     = "mysql"
	ProviderPostgres  = "postgres"
	ProviderMinio     = "minio"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Source    ProviderConfig  `yaml:"source"`
	Explainer ProviderConfig  `yaml:"explainer"`
	Functions FunctionsConfig `yaml:"functions"`
	Etherscan EtherscanConfig `yaml:"etherscan"`
	Database  DatabaseConfig  `yaml:"database"`
	Minio     MinioConfig     `yaml:"minio"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
}

type ServerConfig struct {
	Port           int               `yaml:"port"`
	AllowedOrigins []string          `yaml:"allowedOrigins"`
	APIKeys        map[string]string `yaml:"apiKeys"`
	RateLimit      RateLimitConfig   `yaml:"rateLimit"`
	SessionTTL     time.Duration     `yaml:"sessionTTL"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ProviderConfig struct {
	Provider string        `yaml:"provider"`
	Timeout  time.Duration `yaml:"timeout"`
}

type FunctionsConfig struct {
	BaseURL          string `yaml:"baseURL"`
	APIKey           string `yaml:"apiKey"`
	SourceFunction   string `yaml:"sourceFunction"`
	AnalysisFunction string `yaml:"analysisFunction"`
}

type EtherscanConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslMode"`
}

type MinioConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"accessKey"`
	SecretKey  string `yaml:"secretKey"`
	BucketName string `yaml:"bucketName"`
	Region     string `yaml:"region"`
	UseSSL     bool   `yaml:"useSSL"`
}

type OpenAIConfig struct {
	APIKey         string `yaml:"apiKey"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"baseURL"`
	MaxSourceChars int    `yaml:"maxSourceChars"`
}

type AnthropicConfig struct {
	APIKey         string `yaml:"apiKey"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"baseURL"`
	MaxSourceChars int    `yaml:"maxSourceChars"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
			RateLimit:      RateLimitConfig{RPS: 5, Burst: 10},
			SessionTTL:     30 * time.Minute,
		},
		Log:       LogConfig{Level: "info", Format: "json"},
		Source:    ProviderConfig{Provider: ProviderFunctions, Timeout: 60 * time.Second},
		Explainer: ProviderConfig{Provider: ProviderFunctions, Timeout: 60 * time.Second},
		Functions: FunctionsConfig{
			SourceFunction:   "analyze-contract",
			AnalysisFunction: "analyze-with-ai",
		},
		Etherscan: EtherscanConfig{BaseURL: "https://api.etherscan.io/v2/api"},
		Database:  DatabaseConfig{SSLMode: "disable"},
		Minio:     MinioConfig{Region: "us-east-1", BucketName: "contract-sources"},
	}
}

// Load baca file config.yaml on top of the defaults. A missing file is not
// an error. Secrets from the environment win over the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, eris.Wrapf(err, "config: read %s", path)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, eris.Wrapf(err, "config: parse %s", path)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set("OPENAI_API_KEY", &c.OpenAI.APIKey)
	set("ANTHROPIC_API_KEY", &c.Anthropic.APIKey)
	set("ETHERSCAN_API_KEY", &c.Etherscan.APIKey)
	set("FUNCTIONS_API_KEY", &c.Functions.APIKey)
	set("DATABASE_PASSWORD", &c.Database.Password)
	set("MINIO_SECRET_KEY", &c.Minio.SecretKey)
}

// Validate checks the selected providers have what they need.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.Server.RateLimit.RPS < 0 {
		return eris.New("config: server.rateLimit.rps must not be negative")
	}

	switch c.Source.Provider {
	case ProviderFunctions:
		if err := c.Functions.validate(); err != nil {
			return err
		}
	case ProviderEtherscan:
		if c.Etherscan.APIKey == "" {
			return eris.New("config: etherscan.apiKey is required")
		}
	case ProviderMySQL, ProviderPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			return eris.New("config: database.host and database.name are required")
		}
	case ProviderMinio:
		if c.Minio.Endpoint == "" || c.Minio.BucketName == "" {
			return eris.New("config: minio.endpoint and minio.bucketName are required")
		}
	default:
		return eris.Errorf("config: unknown source provider %q", c.Source.Provider)
	}

	switch c.Explainer.Provider {
	case ProviderFunctions:
		if err := c.Functions.validate(); err != nil {
			return err
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return eris.New("config: openai.apiKey is required")
		}
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return eris.New("config: anthropic.apiKey is required")
		}
	default:
		return eris.Errorf("config: unknown explainer provider %q", c.Explainer.Provider)
	}
	return nil
}

func (f FunctionsConfig) validate() error {
	if f.BaseURL == "" {
		return eris.New("config: functions.baseURL is required")
	}
	if _, err := url.ParseRequestURI(f.BaseURL); err != nil {
		return eris.Wrap(err, "config: functions.baseURL")
	}
	return nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	port := c.Database.Port
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq URL, escaping credentials.
func (c *Config) PostgresDSN() string {
	port := c.Database.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Database.User, c.Database.Password),
		Host:   fmt.Sprintf("%s:%d", c.Database.Host, port),
		Path:   "/" + c.Database.Name,
	}
	q := url.Values{}
	q.Set("sslmode", c.Database.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// InitLogger builds the zap logger, installs it globally and returns it.
func InitLogger(cfg LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if strings.EqualFold(cfg.Format, "console") {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	levelText := cfg.Level
	if levelText == "" {
		levelText = "info"
	}
	level, err := zapcore.ParseLevel(levelText)
	if err != nil {
		return nil, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}
