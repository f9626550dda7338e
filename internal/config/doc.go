// Package config loads, normalizes, and validates vinscan configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads an optional dotenv file, and honours
// environment fallbacks such as VINSCAN_API_KEY and GEMINI_API_KEY for the
// recognition credential. A missing credential is not fatal: callers check
// RecognitionConfigured and keep manual entry, history, and export usable.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
