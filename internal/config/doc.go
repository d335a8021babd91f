// Package config holds the settings of a storyscraper run and loads the
// optional YAML file with per-site overrides.
package config
