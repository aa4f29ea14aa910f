// Package preflight provides readiness checks for the filesystem paths,
// secret, and external tool that zipseal depends on.
//
// The CLI "zipseal status" command runs RunAll and renders each Result. The
// checks never print the archive password; the secret check only reports
// whether the configured variable is set.
package preflight
