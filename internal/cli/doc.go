// Package cli implements the command-line interface for agedcare-docs.
//
// The cli package provides the Cobra-based CLI with the pricing, ratings, providers and
// compliance subcommands and text, JSON or YAML output. It loads configuration, wires the
// search, fetch, dataset and report packages together for each command and saves every
// run under the data directory.
package cli
