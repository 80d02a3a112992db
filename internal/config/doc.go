// Package config loads and validates application settings from an
// optional config.yaml and from MATHTRAIL_-prefixed environment
// variables, with the environment taking precedence.
package config
