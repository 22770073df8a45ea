package curator

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/Nishad-30/vibelist-ai/internal/shared"
)

// bundleVersion guards against loading model files written by an
// incompatible build.
const bundleVersion = 1

// Bundle holds every fitted artifact needed for inference: the vectorizer,
// the genre label set, and the three forests.
type Bundle struct {
	Version       int
	Vectorizer    *Vectorizer
	Classes       []string
	GenreForest   *Forest
	EnergyForest  *Forest
	ValenceForest *Forest
}

// Save writes the bundle to path using gob encoding.
func (b *Bundle) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}
	defer f.Close()

	b.Version = bundleVersion
	if err := gob.NewEncoder(f).Encode(b); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return nil
}

// LoadBundle reads a gob-encoded model bundle from path.
func LoadBundle(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrModelNotTrained, path)
		}
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer f.Close()

	var b Bundle
	if err := gob.NewDecoder(f).Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrModelIncompatible, err)
	}

	if b.Version != bundleVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", shared.ErrModelIncompatible, b.Version, bundleVersion)
	}
	if b.Vectorizer == nil || b.GenreForest == nil || b.EnergyForest == nil || b.ValenceForest == nil {
		return nil, fmt.Errorf("%w: missing fitted artifacts", shared.ErrModelIncompatible)
	}

	return &b, nil
}

// ClassName resolves a predicted class index to its genre label.
func (b *Bundle) ClassName(idx int) string {
	if idx < 0 || idx >= len(b.Classes) {
		return "unknown"
	}
	return b.Classes[idx]
}
