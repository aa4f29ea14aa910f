package sidecar

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ProtectTitle is the tag title, compared after upper-casing, that marks an
// archive for password protection.
const ProtectTitle = "PROTECT"

// HasProtectTag reports whether any tag of doc carries the protect title.
// Entries without a title never match.
func HasProtectTag(doc *Document) bool {
	if doc == nil {
		return false
	}
	for _, tag := range doc.Tags {
		if tag.Title != nil && IsProtectTitle(*tag.Title) {
			return true
		}
	}
	return false
}

// IsProtectTitle applies full Unicode upper-casing before comparing, so
// "protect" and "Protect" match but " PROTECT" does not.
func IsProtectTitle(title string) bool {
	// Casers keep internal state and are not shared.
	return cases.Upper(language.Und).String(title) == ProtectTitle
}
