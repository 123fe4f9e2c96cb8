// Package report provides sinks for per-provider result rows.
//
// The CSVReporter appends rows to a running log file, writing the header only when the
// file is new. The DryRunReporter prints rows instead of storing them.
package report
