// Package app contains the core application logic. It wires the HCL loader,
// the rewriter and the exporters for one run, decoupled from any specific
// entrypoint like a CLI.
package app
