package config

import "errors"

var (
	// ErrConfigInvalid is returned when a configuration source cannot be
	// parsed or the merged configuration fails validation.
	ErrConfigInvalid = errors.New("invalid config")

	// ErrConfigFileNotFound is returned when an explicit config file does not
	// exist.
	ErrConfigFileNotFound = errors.New("config file not found")
)
