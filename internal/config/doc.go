// Package config loads, normalizes, and validates b2ctail configuration data.
//
// It supplies repository defaults, reads TOML files, loads optional .env files,
// and honours environment fallbacks such as SFCC_SERVER, SFCC_USERNAME and
// SFCC_PASSWORD. The Config type centralizes the instance connection, tail
// cadence, digest caps, and the local project root used for path rewriting.
//
// Always obtain settings through this package so downstream code receives
// trimmed credentials, expanded paths, and clear validation errors.
package config
