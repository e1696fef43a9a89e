// Package cli is the command-line surface of kubelower. It builds the cobra
// command tree, layers configuration from defaults, a TOML file, the
// environment and flags, and prints run summaries.
package cli
