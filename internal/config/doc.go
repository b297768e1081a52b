// Package config loads and watches the linetab configuration.
//
// Configuration is a TOML file merged over built-in defaults, with
// LINETAB_* environment variables taking precedence over both. A missing
// file is not an error; the defaults apply. A Watcher reloads the file
// on change and notifies a callback with the fresh configuration.
package config
