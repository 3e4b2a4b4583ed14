package config

import "github.com/caarlos0/env/v10"

// InsecureDevSecret es el fallback de firma para entornos de desarrollo.
// Nunca debe usarse en producción; main emite un warning cuando está activo.
const InsecureDevSecret = "dev_secret_change_me"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort           string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL        string `env:"DATABASE_URL,required"`
	SecretKey          string `env:"SECRET_KEY" envDefault:"dev_secret_change_me"`
	AccessTokenExpires int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"60"`
	TavilyAPIKey       string `env:"TAVILY_API_KEY,required"`
	TavilyBaseURL      string `env:"TAVILY_BASE_URL" envDefault:"https://api.tavily.com"`
	GeminiAPIKey       string `env:"GEMINI_API_KEY,required"`
	GeminiBaseURL      string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiModel        string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	RedisAddr          string `env:"REDIS_ADDR"`
	RedisPassword      string `env:"REDIS_PASSWORD"`
	RedisDB            int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UsesInsecureSecret indica si el servicio corre con el secreto de desarrollo.
func (c *Config) UsesInsecureSecret() bool {
	return c.SecretKey == InsecureDevSecret
}
