// Package file provides file-based configuration storage using TOML.
// Configuration lives in ~/.lectern/config.toml; environment variables
// override file values at load time.
package file
