// Package config loads, normalizes, and validates the TOML configuration
// used by the crosstalk CLI.
//
// Load resolves the config file location, applies repository defaults for
// missing values, expands ~ in path fields, and validates the result. A
// missing config file is not an error; defaults apply.
package config
