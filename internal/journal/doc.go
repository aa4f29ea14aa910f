// Package journal keeps a SQLite history of batch runs and the decision taken
// for every archive.
//
// The journal is informational. The backup file next to each archive stays
// the only idempotence marker; nothing in the batch path reads the journal
// back.
package journal
