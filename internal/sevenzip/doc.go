// Package sevenzip locates and drives the external 7-Zip binary that writes
// AES-256 encrypted zip archives.
//
// Command execution goes through the Executor interface so tests can swap in
// stubs. The archive password is passed on the command line (7-Zip has no
// other non-interactive input for it) and is masked wherever arguments are
// logged or returned in errors.
package sevenzip
