package train

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/codeswitch/internal/corpus"
	"github.com/verte-zerg/codeswitch/internal/weights"
)

// DiscriminativeOptions control two-corpus training.
type DiscriminativeOptions struct {
	Options
	Mode   PenaltyMode
	Factor float64
}

// DefaultDiscriminativeOptions uses the discriminative mode with factor 0.1.
func DefaultDiscriminativeOptions() DiscriminativeOptions {
	return DiscriminativeOptions{
		Options: DefaultOptions(),
		Mode:    PenaltyDiscriminative,
		Factor:  DefaultPenaltyFactor,
	}
}

// DiscriminativeReport summarizes a two-corpus run.
type DiscriminativeReport struct {
	Overlap Overlap
	A       Report
	B       Report
}

// TrainDiscriminative weighs both corpora, penalizes their overlap and
// finalizes each map into a model.
func TrainDiscriminative(textA, textB string, opts DiscriminativeOptions) (*weights.Model, *weights.Model, DiscriminativeReport, error) {
	if opts.K < 1 {
		return nil, nil, DiscriminativeReport{}, fmt.Errorf("%w: got %d", ErrInvalidK, opts.K)
	}
	if opts.Mode.UsesFactor() && (opts.Factor <= 0 || opts.Factor > 1) {
		return nil, nil, DiscriminativeReport{}, fmt.Errorf("%w: got %v", ErrInvalidPenaltyFactor, opts.Factor)
	}

	var rawA, rawB map[string]float64
	var g errgroup.Group
	g.Go(func() error {
		var err error
		rawA, err = Weigh(textA, opts.Options)
		if err != nil {
			return fmt.Errorf("corpus a: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rawB, err = Weigh(textB, opts.Options)
		if err != nil {
			return fmt.Errorf("corpus b: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, DiscriminativeReport{}, err
	}

	penA, penB, overlap, err := ApplyPenalty(rawA, rawB, opts.Mode, opts.Factor)
	if err != nil {
		return nil, nil, DiscriminativeReport{}, err
	}
	modelA, reportA, err := Finalize(penA, opts.K)
	if err != nil {
		return nil, nil, DiscriminativeReport{}, err
	}
	modelB, reportB, err := Finalize(penB, opts.K)
	if err != nil {
		return nil, nil, DiscriminativeReport{}, err
	}
	return modelA, modelB, DiscriminativeReport{Overlap: overlap, A: reportA, B: reportB}, nil
}

// TrainDiscriminativeFiles reads two corpora, trains and writes both models.
// Neither output is replaced unless both models were built and encoded.
func TrainDiscriminativeFiles(corpusA, corpusB, outA, outB string, opts DiscriminativeOptions) (DiscriminativeReport, error) {
	load := corpus.LoadOptions{NFC: opts.NFC}
	textA, err := corpus.Load(corpusA, load)
	if err != nil {
		return DiscriminativeReport{}, err
	}
	if textA == "" {
		return DiscriminativeReport{}, fmt.Errorf("%w: %s", ErrEmptyCorpus, corpusA)
	}
	textB, err := corpus.Load(corpusB, load)
	if err != nil {
		return DiscriminativeReport{}, err
	}
	if textB == "" {
		return DiscriminativeReport{}, fmt.Errorf("%w: %s", ErrEmptyCorpus, corpusB)
	}

	modelA, modelB, report, err := TrainDiscriminative(textA, textB, opts)
	if err != nil {
		return DiscriminativeReport{}, err
	}
	if err := weights.SaveAll(
		weights.File{Path: outA, Model: modelA},
		weights.File{Path: outB, Model: modelB},
	); err != nil {
		return DiscriminativeReport{}, err
	}
	return report, nil
}
