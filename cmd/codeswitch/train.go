package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/codeswitch/internal/ngram"
	"github.com/verte-zerg/codeswitch/internal/stats"
	"github.com/verte-zerg/codeswitch/internal/train"
	"github.com/verte-zerg/codeswitch/internal/weights"
)

var (
	trainK              int
	trainMinN           int
	trainMaxN           int
	trainProbExponent   float64
	trainLengthExponent float64
	trainNFC            bool

	trainPenaltyMode   string
	trainPenaltyFactor float64

	sharedTop int
)

func addTrainFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&trainK, "k", train.DefaultK, "number of n-grams to keep (top-K)")
	cmd.Flags().IntVar(&trainMinN, "min-n", ngram.DefaultMinN, "shortest n-gram length")
	cmd.Flags().IntVar(&trainMaxN, "max-n", ngram.DefaultMaxN, "longest n-gram length")
	cmd.Flags().Float64Var(&trainProbExponent, "prob-exponent", train.DefaultProbExponent, "exponent applied to relative frequency")
	cmd.Flags().Float64Var(&trainLengthExponent, "length-exponent", train.DefaultLengthExponent, "exponent applied to n-gram length")
	cmd.Flags().BoolVar(&trainNFC, "nfc", false, "normalize corpora to Unicode NFC")
}

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train <corpus> <output>",
		Short: "Train a single-language model",
		Long:  "Train a weighted n-gram model from a UTF-8 corpus. The output format follows the extension (.json or .msgpack).",
		Args:  cobra.ExactArgs(2),
		RunE:  runTrainCmd,
	}
	addTrainFlags(cmd)
	return cmd
}

func newTrainDiscCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train-disc <corpus-a> <corpus-b> <output-a> <output-b>",
		Short: "Train two discriminative models",
		Long:  "Train models for two languages at once and penalize the n-grams both corpora share.",
		Args:  cobra.ExactArgs(4),
		RunE:  runTrainDiscCmd,
	}
	addTrainFlags(cmd)
	cmd.Flags().StringVar(&trainPenaltyMode, "penalty-mode", string(train.PenaltyDiscriminative), fmt.Sprintf("penalty for shared n-grams %v", train.PenaltyModes()))
	cmd.Flags().Float64Var(&trainPenaltyFactor, "penalty-factor", train.DefaultPenaltyFactor, "penalty factor in (0, 1] for proportional and discriminative modes")
	return cmd
}

func trainOptions(cmd *cobra.Command) (train.Options, error) {
	tc := fileCfg.Train
	applyIntConfig(cmd, "k", &trainK, tc.K)
	applyIntConfig(cmd, "min-n", &trainMinN, tc.MinN)
	applyIntConfig(cmd, "max-n", &trainMaxN, tc.MaxN)
	applyFloatConfig(cmd, "prob-exponent", &trainProbExponent, tc.ProbExponent)
	applyFloatConfig(cmd, "length-exponent", &trainLengthExponent, tc.LengthExponent)
	applyBoolConfig(cmd, "nfc", &trainNFC, tc.NFC)

	if trainK < 1 {
		return train.Options{}, fmt.Errorf("--k must be > 0")
	}
	if trainMinN < 1 || trainMaxN < trainMinN {
		return train.Options{}, fmt.Errorf("--min-n and --max-n must satisfy 1 <= min-n <= max-n")
	}
	opts := train.DefaultOptions()
	opts.K = trainK
	opts.Extract.MinN = trainMinN
	opts.Extract.MaxN = trainMaxN
	opts.ProbExponent = trainProbExponent
	opts.LengthExponent = trainLengthExponent
	opts.NFC = trainNFC
	return opts, nil
}

func runTrainCmd(cmd *cobra.Command, args []string) error {
	opts, err := trainOptions(cmd)
	if err != nil {
		return err
	}
	corpusPath, outPath := args[0], args[1]
	logger.Info("training model", "corpus", corpusPath, "k", opts.K, "min_n", opts.Extract.MinN, "max_n", opts.Extract.MaxN)
	report, err := train.TrainFile(corpusPath, outPath, opts)
	if err != nil {
		return fmt.Errorf("failed to train model: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Model saved to %s (%s)\n", outPath, report); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runTrainDiscCmd(cmd *cobra.Command, args []string) error {
	opts, err := trainOptions(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "penalty-mode", &trainPenaltyMode, fileCfg.Train.PenaltyMode)
	applyFloatConfig(cmd, "penalty-factor", &trainPenaltyFactor, fileCfg.Train.PenaltyFactor)
	mode, err := train.ParsePenaltyMode(trainPenaltyMode)
	if err != nil {
		return err
	}

	discOpts := train.DiscriminativeOptions{Options: opts, Mode: mode, Factor: trainPenaltyFactor}
	logger.Info("training discriminative models", "corpus_a", args[0], "corpus_b", args[1], "mode", mode, "factor", trainPenaltyFactor)
	report, err := train.TrainDiscriminativeFiles(args[0], args[1], args[2], args[3], discOpts)
	if err != nil {
		return fmt.Errorf("failed to train discriminative models: %w", err)
	}

	out := cmd.OutOrStdout()
	ov := report.Overlap
	if _, err := fmt.Fprintf(out, "Shared n-grams: %d (%.1f%% of all distinct)\nUnique to A:    %d\nUnique to B:    %d\nPenalty:        %s\nModel A saved to %s (%s)\nModel B saved to %s (%s)\n",
		len(ov.Shared), ov.SharedPercent(), len(ov.UniqueA), len(ov.UniqueB), mode,
		args[2], report.A, args[3], report.B); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newSharedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shared <model-a> <model-b>",
		Short: "Analyze n-grams shared by two models",
		Args:  cobra.ExactArgs(2),
		RunE:  runSharedCmd,
	}
	cmd.Flags().IntVar(&sharedTop, "top", 20, "number of shared n-grams to list")
	return cmd
}

func runSharedCmd(cmd *cobra.Command, args []string) error {
	a, err := weights.Load(args[0])
	if err != nil {
		return err
	}
	b, err := weights.Load(args[1])
	if err != nil {
		return err
	}
	return stats.RenderShared(cmd.OutOrStdout(), stats.SharedNgrams(a, b), sharedTop)
}
