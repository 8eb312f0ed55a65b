// Package config reads application settings from a YAML file with
// environment overrides.
package config
