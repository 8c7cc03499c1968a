// Package config loads application settings from YAML, applies DOCCACHE_*
// environment overrides and validates the result.
package config
