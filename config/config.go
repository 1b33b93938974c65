package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type AppConfig struct {
	Env       string          `yaml:"env"`
	Logging   LoggingConfig   `yaml:"logging"`
	Server    ServerConfig    `yaml:"server"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Providers ProvidersConfig `yaml:"providers"`
	Import    ImportConfig    `yaml:"import"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// StorageConfig selects the persistence backend.
// "mongo" (default) requires a replica set for multi-document transactions.
// "memory" keeps everything in process and is meant for local runs.
type StorageConfig struct {
	Driver string `yaml:"driver"`
}

type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"`
	Issuer         string        `yaml:"issuer"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
	AllowDevTokens bool          `yaml:"allow_dev_tokens"`
}

// RateLimitConfig 는 사용자별 평가 요청 한도를 정의한다.
// MaxRequests 가 0 이하면 제한 없음으로 간주한다.
type RateLimitConfig struct {
	MaxRequests int           `yaml:"max_requests"`
	Window      time.Duration `yaml:"window"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	BootstrapServers string `yaml:"bootstrap_servers"`
	ClientID         string `yaml:"client_id"`
}

type ProvidersConfig struct {
	OpenAI    ProviderConfig `yaml:"openai"`
	Anthropic ProviderConfig `yaml:"anthropic"`
	Google    ProviderConfig `yaml:"google"`
}

// ProviderConfig is a single LLM vendor configuration item.
// APIKey is normally supplied through the environment, never through config.yaml.
type ProviderConfig struct {
	APIKey       string        `yaml:"api_key"`
	BaseURL      string        `yaml:"base_url"`
	DefaultModel string        `yaml:"default_model"`
	Models       []string      `yaml:"models"`
	Timeout      time.Duration `yaml:"timeout"`
}

type ImportConfig struct {
	Timeout  time.Duration `yaml:"timeout"`
	MaxBytes int64         `yaml:"max_bytes"`
}

var config *AppConfig

func InitApp() {
	c, err := Load(GetBasePath())
	if err != nil {
		panic(err)
	}
	config = c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

// Load reads .env and config.yaml from dir, applies defaults and then
// environment overrides. A missing config.yaml is not an error.
func Load(dir string) (*AppConfig, error) {
	// load environment variables
	_ = godotenv.Load(filepath.Join(dir, ENV_FILE))

	var c AppConfig
	data, err := os.ReadFile(filepath.Join(dir, CONFIG_FILE))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", CONFIG_FILE, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read %s: %w", CONFIG_FILE, err)
	}

	applyDefaults(&c)
	applyEnv(&c)
	return &c, nil
}

func (c AppConfig) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

func applyDefaults(c *AppConfig) {
	if c.Env == "" {
		c.Env = EnvDevelopment
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.Port == "" {
		c.Server.Port = "5000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"http://localhost:3000"}
	}
	if c.Mongo.URI == "" {
		// Fallback for local docker-compose default
		c.Mongo.URI = "mongodb://localhost:27017/?replicaSet=rs0"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "model_evaluation"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "mongo"
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "model-eval"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 30 * 24 * time.Hour
	}
	if c.RateLimit.MaxRequests == 0 {
		c.RateLimit.MaxRequests = 100
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = 15 * time.Minute
	}
	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = "model-eval-api"
	}
	if c.Import.Timeout == 0 {
		c.Import.Timeout = 15 * time.Second
	}
	if c.Import.MaxBytes == 0 {
		c.Import.MaxBytes = 5 << 20
	}

	providerDefaults(&c.Providers.OpenAI, "gpt-3.5-turbo",
		[]string{"gpt-4o", "gpt-4", "gpt-3.5-turbo"})
	providerDefaults(&c.Providers.Anthropic, "claude-3-sonnet-20240229",
		[]string{"claude-3-opus-20240229", "claude-3-sonnet-20240229", "claude-3-haiku-20240307"})
	providerDefaults(&c.Providers.Google, "gemini-pro",
		[]string{"gemini-pro", "gemini-pro-vision"})

	if need := FanOutWriteTimeout(c.Providers); c.Server.WriteTimeout < need {
		c.Server.WriteTimeout = need
	}
}

// writeTimeoutSlack covers storage and response writing after the last
// provider call of a run.
const writeTimeoutSlack = 30 * time.Second

// FanOutWriteTimeout is the shortest server write timeout that lets a
// multi-provider run call every provider in turn and still answer.
func FanOutWriteTimeout(p ProvidersConfig) time.Duration {
	return p.OpenAI.Timeout + p.Anthropic.Timeout + p.Google.Timeout + writeTimeoutSlack
}

func providerDefaults(p *ProviderConfig, model string, models []string) {
	if p.DefaultModel == "" {
		p.DefaultModel = model
	}
	if len(p.Models) == 0 {
		p.Models = models
	}
	if p.Timeout == 0 {
		p.Timeout = 2 * time.Minute
	}
}

func applyEnv(c *AppConfig) {
	setString(&c.Env, "APP_ENV")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Server.Port, "PORT")
	setString(&c.Mongo.URI, "MONGODB_URI")
	setString(&c.Mongo.Database, "MONGODB_DATABASE")
	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Redis.Address, "REDIS_ADDRESS")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Kafka.BootstrapServers, "KAFKA_BOOTSTRAP_SERVERS")
	setString(&c.Providers.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.Providers.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setString(&c.Providers.Google.APIKey, "GOOGLE_API_KEY")

	if v := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.CORSOrigins = origins
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
