// Package probe decides whether a zip archive is already password protected.
//
// The check opens the first entry without a password and reads one byte.
// Failures are classified by IsPasswordError; every other outcome, including
// unreadable and empty archives, counts as not protected so the caller errs
// toward re-encoding rather than skipping.
package probe
