// Package config loads the server configuration from defaults, an optional
// YAML file, a .env file and ACCOUNT_* environment variables, then validates
// it with struct tags before anything else starts.
package config
