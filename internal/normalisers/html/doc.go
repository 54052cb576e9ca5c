// Package html provides a Normaliser for HTML documents. It keeps the
// readable text, dropping tags, scripts and styles and decoding entities.
package html
