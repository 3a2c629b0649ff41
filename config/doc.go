// Package config loads service configuration from a YAML file, a .env file
// and the process environment using viper and godotenv.
//
// Environment variables override file values. Nested keys are derived from
// underscore-separated names, so AUTH_SECRET_KEY populates auth.secret_key
// and AUTH_ACCESS_TTL populates auth.access_ttl.
//
//	var cfg MyConfig
//	if err := config.LoadConfig("authkitd", &cfg); err != nil { ... }
package config
