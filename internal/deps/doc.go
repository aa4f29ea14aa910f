// Package deps reports whether the external binaries zipseal drives are
// installed.
//
// 7-Zip is one logical dependency with many spellings: 7z, 7zz and 7za on
// PATH, or absolute install paths that may reference ${USERNAME}. The
// configured candidates are therefore checked as a group by CheckSevenZip,
// which is satisfied by the first one present, rather than as separate
// requirements that would each report missing. Presence is all this package
// checks; sevenzip.Locator decides whether a candidate actually starts.
package deps
