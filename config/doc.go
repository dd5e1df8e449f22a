// Package config provides configuration loading and validation.
//
// It uses Viper to load a config.yml and godotenv to load a .env file, then
// lets environment variables override file values. UPPER_SNAKE variables are
// bound to nested keys (e.g. LOGGING_LEVEL -> logging.level).
//
// # Usage
//
//	var cfg MyConfig
//	err := config.LoadConfig("my-service", &cfg)
//
// LookupEnv and RequireEnv read single variables after the .env file has
// been loaded.
package config
