// Package cmd implements the command-line interface for the sKV settings
// store. It provides a hierarchical command structure for inspecting and
// modifying store files.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value store operations (get, set, delete, etc.)
//   - watch: Command for following changes to a store file
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See skv -help for a list of all commands.
package cmd
