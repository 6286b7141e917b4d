package config

import (
	"os"
	"strconv"
	"sync"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName string
	Port    string
	Env     string
	Debug   bool
	// DefaultExchangeRate is the source->destination currency multiplier
	// applied until the user overrides it.
	DefaultExchangeRate float64
	// MaxSelectedCategories bounds the price-filter selection.
	MaxSelectedCategories int
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() {
	once.Do(func() {
		rate := 80.0
		if v := os.Getenv("DEFAULT_EXCHANGE_RATE"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
				rate = f
			}
		}
		AppConfig = &Config{
			AppName:               os.Getenv("APP_NAME"),
			Port:                  os.Getenv("PORT"),
			Env:                   os.Getenv("APP_ENV"),
			Debug:                 os.Getenv("DEBUG") == "true",
			DefaultExchangeRate:   rate,
			MaxSelectedCategories: 10,
		}
	})
}
