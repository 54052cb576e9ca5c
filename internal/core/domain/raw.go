package domain

// RawDocument is a file handed to the CLI before its text is extracted.
type RawDocument struct {
	// URI is the original location (file path, or "-" for stdin).
	URI string

	// MIMEType is the content type (e.g., "text/markdown").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}
