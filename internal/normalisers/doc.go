// Package normalisers extracts the text to embed from document files.
// Each sub-package knows one family of formats; the Registry picks the
// highest priority normaliser for a document's MIME type.
package normalisers
