// Package batch walks a dump directory once and protects every archive whose
// sidecar carries the PROTECT tag.
//
// Archives are handled strictly one at a time. Each archive goes through the
// same decision path: sidecar, tag, backup marker, protection probe, and
// finally re-encoding. A failure on one archive is recorded in the summary
// and never stops the batch; only configuration problems (missing directory,
// missing password, a concurrent run) abort before any archive is touched.
package batch
