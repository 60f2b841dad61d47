package detect

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/codeswitch/internal/model"
)

// DetectAll classifies texts concurrently and returns results in input
// order. It stops early when ctx is cancelled.
func (d *Detector) DetectAll(ctx context.Context, texts []string, threshold float64) ([]model.Result, error) {
	results := make([]model.Result, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, text := range texts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = d.Detect(text, threshold)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
