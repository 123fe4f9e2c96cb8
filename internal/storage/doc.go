// Package storage manages the agedcare-docs data directory.
//
// Downloaded documents live under downloads/<kind>/ and every command run is saved as a
// JSON snapshot under runs/, named <command>_<UTC timestamp>.json, so the most recent
// results for a command can be reloaded later. The default location is ./data.
package storage
