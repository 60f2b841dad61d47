package detect

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/codeswitch/internal/weights"
)

// Model file base names inside a models directory.
const (
	NameOriginalES       = "model_es"
	NameOriginalEN       = "model_en"
	NameDiscriminativeES = "model_es_disc"
	NameDiscriminativeEN = "model_en_disc"
)

var modelExts = []string{".json", ".msgpack"}

// ModelPath returns the path of the named model in dir, preferring an
// existing file. When none exists the JSON path is returned.
func ModelPath(dir, name string) string {
	for _, ext := range modelExts {
		p := filepath.Join(dir, name+ext)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(dir, name+modelExts[0])
}

// LoadModels reads the four models from dir. A missing model fails with
// weights.ErrModelNotFound; it is never replaced by an empty one.
func LoadModels(dir string) (Models, error) {
	var models Models
	targets := []struct {
		name string
		dst  **weights.Model
	}{
		{NameOriginalES, &models.OriginalES},
		{NameOriginalEN, &models.OriginalEN},
		{NameDiscriminativeES, &models.DiscriminativeES},
		{NameDiscriminativeEN, &models.DiscriminativeEN},
	}

	var g errgroup.Group
	for _, target := range targets {
		g.Go(func() error {
			m, err := weights.Load(ModelPath(dir, target.name))
			if err != nil {
				return err
			}
			*target.dst = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, weights.ErrModelNotFound) {
			return Models{}, fmt.Errorf("%w\nRun: codeswitch train and codeswitch train-disc to build models in %s", err, dir)
		}
		return Models{}, err
	}
	return models, nil
}
