// Package build runs an extraction pass: it extracts translation units from
// a set of documents in parallel and writes the resulting PO templates. The
// CLI routes every extract invocation, watch-triggered ones included,
// through Service.
package build
