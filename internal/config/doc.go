// Package config implements the configuration store for the link relay.
//
// Configuration is resolved once at process start: baseline defaults, then an
// optional YAML file, then LINKRELAY_* environment overrides, then validation.
// The resulting value is passed down explicitly; nothing here is global.
package config
