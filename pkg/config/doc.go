// Package config loads logai settings from defaults, an optional YAML file,
// a .env file and environment variables.
package config
