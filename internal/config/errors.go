package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoSpider is returned when no spider name was given.
	ErrNoSpider = errors.New("no spider specified: run 'storyscraper spiders' to list them")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingOutputs is returned when both --output and --auto-name
	// are given.
	ErrConflictingOutputs = errors.New("conflicting outputs: --output and --auto-name cannot be used together")

	// ErrConflictingProxies is returned when both --proxy and --tor are given.
	ErrConflictingProxies = errors.New("conflicting proxies: --proxy and --tor cannot be used together")

	// ErrInvalidTorStartupTimeout is returned when Tor is enabled with a
	// non-positive startup timeout.
	ErrInvalidTorStartupTimeout = errors.New("invalid tor startup timeout: must be positive")
)
