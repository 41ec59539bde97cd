// Package po reads and writes gettext PO catalogs and merges translations
// back into plain-text templates.
//
// Catalogs are built from one or more units.Store values. Identical source
// strings share a single entry whose references list every location.
package po
