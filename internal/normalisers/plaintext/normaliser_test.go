package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-embed/internal/core/domain"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	require.NotEmpty(t, mimeTypes)
	assert.Contains(t, mimeTypes, "text/plain")
	assert.Contains(t, mimeTypes, "text/x-go")
	assert.Contains(t, mimeTypes, "application/json")
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 5, New().Priority())
}

func TestNormalise(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain", "This is plain text content.", "This is plain text content."},
		{"trims", "\n  padded  \n\n", "padded"},
		{"windows line endings", "one\r\ntwo\r\n", "one\ntwo"},
		{"byte order mark", "\ufeffhello", "hello"},
		{"invalid utf8", "ok \xff\xfe done", "ok \ufffd done"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().Normalise(context.Background(), &domain.RawDocument{
				URI:      "/path/to/document.txt",
				MIMEType: "text/plain",
				Content:  []byte(tt.content),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
