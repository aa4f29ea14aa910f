// Package logs reads the zipseal log file for the CLI.
//
// Last returns the trailing lines of the file with bounded memory, and
// Follow streams complete lines appended after an offset until the context
// ends. Both accept a match func so callers can narrow output to one run.
package logs
