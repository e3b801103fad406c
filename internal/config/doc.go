// Package config loads, normalizes, and validates automv configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the AUTOMV_REPO_DIR environment
// override. Paths that live inside the AutoMV checkout (results root, the
// credential .env file, the run lock) default relative to repo_dir so a single
// setting relocates everything.
//
// Always obtain settings through this package so downstream code receives
// absolute paths and clear validation errors.
package config
