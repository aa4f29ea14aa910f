// Package reencode replaces an unprotected zip archive with an AES-256
// encrypted copy of the same contents.
//
// The operation is transactional from the caller's point of view: the
// original is copied to a backup before it is deleted, and any failure after
// that point copies the backup back. The backup is kept on success; its
// presence is how later runs recognise an archive as already handled.
package reencode
