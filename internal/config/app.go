package config

import (
	"log"
	"os"
	"sync"
	"time"
)

type AppConfig struct {
	Name           string
	Env            string
	Port           string
	BaseURL        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "development"
			log.Printf("Warning: APP_ENV not set, defaulting to %s", env)
		}
		port := os.Getenv("APP_PORT")
		if port == "" {
			port = ":8083"
		}
		name := os.Getenv("APP_NAME")
		if name == "" {
			name = "sparkapply-matching"
		}
		appConfig = &AppConfig{
			Name:           name,
			Env:            env,
			Port:           port,
			BaseURL:        os.Getenv("APP_URL"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			RequestTimeout: getDuration("REQUEST_TIMEOUT", 10*time.Second),
		}
	})
	return appConfig
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
