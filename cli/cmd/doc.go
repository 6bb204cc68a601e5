// Package cmd provides the dotenvy subcommands that consume a resolved
// environment: print, exec, and check.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// to the default configuration file.
	ConfigIdentifier = "config"
)
