package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort             string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL          string `env:"DATABASE_URL,required,notEmpty"`
	AutoMigrate          bool   `env:"AUTO_MIGRATE" envDefault:"true"`
	LLMProvider          string `env:"LLM_PROVIDER" envDefault:"ollama"`
	LLMAPIKey            string `env:"LLM_API_KEY"`
	LLMBaseURL           string `env:"LLM_BASE_URL" envDefault:"http://localhost:11434"`
	LLMModel             string `env:"LLM_MODEL"`
	JWTSecret            string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`
	LoginMaxAttempts     int    `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	RedisAddr            string `env:"REDIS_ADDR"`
	RedisPassword        string `env:"REDIS_PASSWORD"`
	RedisDB              int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ClientConfig configura el cliente de terminal.
type ClientConfig struct {
	APIURL         string        `env:"STORYPALS_API_URL" envDefault:"http://localhost:8080/api"`
	SessionFile    string        `env:"STORYPALS_SESSION_FILE"`
	RequestTimeout time.Duration `env:"STORYPALS_REQUEST_TIMEOUT" envDefault:"0s"`
	DebugLogFile   string        `env:"STORYPALS_DEBUG_LOG" envDefault:"storychat-debug.log"`
}

// LoadClientConfig carga la configuración del cliente desde variables de entorno.
func LoadClientConfig() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
