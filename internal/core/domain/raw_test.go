package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRawDocument_Fields(t *testing.T) {
	raw := RawDocument{
		URI:      "notes/readme.md",
		MIMEType: "text/markdown",
		Content:  []byte("# Title"),
	}

	assert.Equal(t, "notes/readme.md", raw.URI)
	assert.Equal(t, "text/markdown", raw.MIMEType)
	assert.Equal(t, []byte("# Title"), raw.Content)
}
