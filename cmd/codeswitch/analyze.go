package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/codeswitch/internal/config"
	"github.com/verte-zerg/codeswitch/internal/corpus"
	"github.com/verte-zerg/codeswitch/internal/generator"
	"github.com/verte-zerg/codeswitch/internal/stats"
)

var (
	calibrateCases         string
	calibrateSynthetic     int
	calibrateWordsES       string
	calibrateWordsEN       string
	calibrateSeed          int64
	calibrateSentenceWords int
	calibratePlotWidth     int
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [text...]",
		Short: "Compare original and discriminative model scores",
		Long:  "Score each text with both model pairs and show how far the discriminative pair separates the languages. Without arguments a built-in set of labeled texts is used.",
		RunE:  runCompareCmd,
	}
	addDetectorFlags(cmd)
	return cmd
}

func runCompareCmd(cmd *cobra.Command, args []string) error {
	d, err := loadDetector(cmd)
	if err != nil {
		return err
	}
	texts := stats.DefaultComparisonTexts
	if len(args) > 0 {
		texts = make([]stats.LabeledText, 0, len(args))
		for _, arg := range args {
			texts = append(texts, stats.LabeledText{Text: arg, Label: "Input"})
		}
	}
	if err := stats.RenderComparison(cmd.OutOrStdout(), stats.Compare(d, texts)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newCalibrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Measure minority shares on labeled cases and suggest a threshold",
		Args:  cobra.NoArgs,
		RunE:  runCalibrateCmd,
	}
	addDetectorFlags(cmd)
	wordDir := config.DefaultWordListDir()
	cmd.Flags().StringVar(&calibrateCases, "cases", "", "TOML file of [[case]] entries (default: built-in cases)")
	cmd.Flags().IntVar(&calibrateSynthetic, "synthetic", 0, "generate N sentences per category from word lists instead of labeled cases")
	cmd.Flags().StringVar(&calibrateWordsES, "words-es", filepath.Join(wordDir, "es.txt"), "Spanish word list for --synthetic")
	cmd.Flags().StringVar(&calibrateWordsEN, "words-en", filepath.Join(wordDir, "en.txt"), "English word list for --synthetic")
	cmd.Flags().Int64Var(&calibrateSeed, "seed", 0, "random seed for --synthetic (0 uses the clock)")
	cmd.Flags().IntVar(&calibrateSentenceWords, "sentence-words", 8, "words per synthetic sentence")
	cmd.Flags().IntVar(&calibratePlotWidth, "plot-width", 0, "plot width in cells (0 fits the terminal)")
	return cmd
}

func runCalibrateCmd(cmd *cobra.Command, _ []string) error {
	if calibrateCases != "" && calibrateSynthetic > 0 {
		return fmt.Errorf("--cases and --synthetic are mutually exclusive")
	}
	cases, err := calibrationCases()
	if err != nil {
		return err
	}
	d, err := loadDetector(cmd)
	if err != nil {
		return err
	}
	logger.Debug("calibrating", "cases", len(cases), "threshold", detectThreshold)
	cal, err := stats.Calibrate(d, cases, detectThreshold)
	if err != nil {
		return err
	}
	if err := stats.RenderCalibration(cmd.OutOrStdout(), cal, calibratePlotWidth, false); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func calibrationCases() ([]stats.Case, error) {
	switch {
	case calibrateCases != "":
		return stats.LoadCases(config.ExpandHome(calibrateCases))
	case calibrateSynthetic > 0:
		return syntheticCases()
	}
	return stats.DefaultCases, nil
}

func syntheticCases() ([]stats.Case, error) {
	if calibrateSentenceWords < 1 {
		return nil, fmt.Errorf("--sentence-words must be > 0")
	}
	es, err := loadWordList(calibrateWordsES, "es")
	if err != nil {
		return nil, err
	}
	en, err := loadWordList(calibrateWordsEN, "en")
	if err != nil {
		return nil, err
	}
	gen := generator.New()
	if calibrateSeed != 0 {
		gen = generator.NewSeeded(calibrateSeed)
	}
	samples := gen.Samples(es, en, calibrateSynthetic, calibrateSentenceWords)
	return stats.SyntheticCases(samples), nil
}

func loadWordList(path, lang string) ([]string, error) {
	path = config.ExpandHome(path)
	lines, err := corpus.LoadLines(path)
	if err != nil {
		hint := fmt.Sprintf("Download word lists: codeswitch corpus words --lang %s", lang)
		return nil, fmt.Errorf("%s\n%s", err.Error(), hint)
	}
	return lines, nil
}
