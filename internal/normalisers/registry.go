package normalisers

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-embed/internal/core/domain"
	"github.com/custodia-labs/sercha-embed/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-embed/internal/normalisers/html"
	"github.com/custodia-labs/sercha-embed/internal/normalisers/markdown"
	"github.com/custodia-labs/sercha-embed/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// extensionTypes covers extensions the platform MIME table often lacks.
var extensionTypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".text":     "text/plain",
	".go":       "text/x-go",
	".py":       "text/x-python",
	".rs":       "text/x-rust",
	".java":     "text/x-java",
	".rb":       "text/x-ruby",
	".sh":       "text/x-shellscript",
	".sql":      "text/x-sql",
	".yaml":     "text/yaml",
	".yml":      "text/yaml",
	".toml":     "text/toml",
	".ts":       "text/typescript",
	".htm":      "text/html",
	".html":     "text/html",
}

// Registry dispatches documents to the highest priority normaliser
// registered for their MIME type.
type Registry struct {
	mu     sync.RWMutex
	byType map[string][]driven.Normaliser
}

// NewRegistry creates a registry holding normalisers.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	r := &Registry{byType: make(map[string][]driven.Normaliser)}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Default returns a registry with the plain text, Markdown and HTML normalisers.
func Default() *Registry {
	return NewRegistry(plaintext.New(), markdown.New(), html.New())
}

// Register adds a normaliser for each of its MIME types.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range n.SupportedMIMETypes() {
		list := append(r.byType[t], n)
		slices.SortStableFunc(list, func(a, b driven.Normaliser) int {
			return b.Priority() - a.Priority()
		})
		r.byType[t] = list
	}
}

// Normalise extracts text with the best normaliser for raw.MIMEType.
// Unregistered text/* types fall back to text/plain.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	mimeType := baseType(raw.MIMEType)

	r.mu.RLock()
	list := r.byType[mimeType]
	if len(list) == 0 && strings.HasPrefix(mimeType, "text/") {
		list = r.byType["text/plain"]
	}
	r.mu.RUnlock()

	if len(list) == 0 {
		return "", fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedFormat, raw.URI, raw.MIMEType)
	}
	return list[0].Normalise(ctx, raw)
}

// SupportedMIMETypes returns all registered MIME types, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.byType))
	for t := range r.byType {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// MIMETypeForPath guesses the MIME type of a file from its extension.
// Unknown extensions are treated as plain text.
func MIMETypeForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return baseType(t)
	}
	return "text/plain"
}

// baseType drops MIME parameters such as "; charset=utf-8".
func baseType(t string) string {
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.ToLower(strings.TrimSpace(t))
}
