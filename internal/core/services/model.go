package services

import (
	"errors"
	"sync"

	"github.com/custodia-labs/sercha-embed/internal/core/ports/driven"
)

// Model is a loaded bi-encoder: its tokenizer and its network.
// It is shared read-only by every embedding call.
type Model struct {
	Tokenizer driven.Tokenizer
	Encoder   driven.Encoder
}

// LoadFunc builds a Model. It runs at most once per ModelLoader.
type LoadFunc func() (*Model, error)

// ModelLoader initialises a Model on first use and returns the same
// instance (or the same error) for the rest of the process lifetime.
type ModelLoader struct {
	once  sync.Once
	load  LoadFunc
	model *Model
	err   error
}

// NewModelLoader creates a loader for load.
func NewModelLoader(load LoadFunc) *ModelLoader {
	return &ModelLoader{load: load}
}

// StaticModel returns a loader for an already built model.
func StaticModel(model *Model) *ModelLoader {
	return NewModelLoader(func() (*Model, error) {
		return model, nil
	})
}

// Load returns the shared model, loading it on the first call.
func (l *ModelLoader) Load() (*Model, error) {
	l.once.Do(func() {
		if l.load == nil {
			l.err = errors.New("model loader: no load function")
			return
		}
		l.model, l.err = l.load()
		if l.err == nil && (l.model == nil || l.model.Tokenizer == nil || l.model.Encoder == nil) {
			l.model = nil
			l.err = errors.New("model loader: tokenizer and encoder are required")
		}
	})
	return l.model, l.err
}
