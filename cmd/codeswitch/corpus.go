package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/codeswitch/internal/config"
	"github.com/verte-zerg/codeswitch/internal/corpus"
	"github.com/verte-zerg/codeswitch/internal/wordfreq"
)

const bytesPerMB = 1024 * 1024

var (
	fetchLang     string
	fetchSizeMB   float64
	fetchOutDir   string
	fetchBalanced bool
	blendRatio    float64

	wordsLang   string
	wordsLimit  int
	wordsOutDir string
	wordsForce  bool
)

func newCorpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Download and assemble training data",
	}
	cmd.AddCommand(newCorpusFetchCmd())
	cmd.AddCommand(newCorpusBlendCmd())
	cmd.AddCommand(newCorpusWordsCmd())
	return cmd
}

func newCorpusFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download Wikipedia articles as a training corpus",
		Long:  "Download plain-text Wikipedia extracts until the target size is reached and write <lang>-wikipedia.txt to the output directory.",
		Args:  cobra.NoArgs,
		RunE:  runCorpusFetchCmd,
	}
	cmd.Flags().StringVar(&fetchLang, "lang", "both", "language to fetch (es, en, both)")
	cmd.Flags().Float64Var(&fetchSizeMB, "size", 5, "target corpus size in MB per language")
	cmd.Flags().StringVar(&fetchOutDir, "out-dir", config.DefaultCorpusDir(), "output directory")
	cmd.Flags().BoolVar(&fetchBalanced, "create-balanced", false, "blend <lang>-secondary.txt into <lang>-final.txt when present")
	cmd.Flags().Float64Var(&blendRatio, "ratio", 0.9, "share of the primary corpus in a blend")
	return cmd
}

func fetchLanguages(lang string) ([]string, error) {
	switch lang {
	case "es", "en":
		return []string{lang}, nil
	case "both":
		return []string{"es", "en"}, nil
	default:
		return nil, fmt.Errorf("unsupported language %q (use es, en or both)", lang)
	}
}

func runCorpusFetchCmd(cmd *cobra.Command, _ []string) error {
	langs, err := fetchLanguages(fetchLang)
	if err != nil {
		return err
	}
	if fetchSizeMB <= 0 {
		return fmt.Errorf("--size must be > 0")
	}
	target := int(fetchSizeMB * bytesPerMB)
	outDir := config.ExpandHome(fetchOutDir)
	out := cmd.OutOrStdout()

	fetcher := corpus.NewFetcher()
	for _, lang := range langs {
		logger.Info("fetching corpus", "lang", lang, "target_bytes", target)
		collected, err := fetcher.Crawl(cmd.Context(), lang, target,
			func(title string, chars, total int) {
				logger.Info("article", "lang", lang, "title", title, "chars", chars, "total_bytes", total)
			})
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, lang+"-wikipedia.txt")
		if err := corpus.WriteFile(path, collected.Text); err != nil {
			return err
		}
		if collected.Bytes < target {
			logger.Warn("corpus is smaller than the target", "lang", lang, "bytes", collected.Bytes, "target_bytes", target)
		}
		if _, err := fmt.Fprintf(out, "%s: %d articles, %.2f MB -> %s\n",
			lang, collected.Articles, float64(collected.Bytes)/bytesPerMB, path); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}

		if !fetchBalanced {
			continue
		}
		secondary := filepath.Join(outDir, lang+"-secondary.txt")
		final := filepath.Join(outDir, lang+"-final.txt")
		if err := blendFiles(path, secondary, final, blendRatio); err != nil {
			if errors.Is(err, corpus.ErrCorpusNotFound) {
				logger.Warn("no secondary corpus, skipping blend", "path", secondary)
				continue
			}
			return err
		}
		if _, err := fmt.Fprintf(out, "%s: balanced corpus -> %s\n", lang, final); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newCorpusBlendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blend <primary> <secondary> <output>",
		Short: "Combine two corpora with a fixed size ratio",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := blendFiles(args[0], args[1], args[2], blendRatio); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Blended corpus saved to %s\n", args[2])
			return err
		},
	}
	cmd.Flags().Float64Var(&blendRatio, "ratio", 0.9, "share of the primary corpus in the result")
	return cmd
}

func blendFiles(primaryPath, secondaryPath, outPath string, ratio float64) error {
	primary, err := corpus.Load(primaryPath, corpus.LoadOptions{})
	if err != nil {
		return err
	}
	secondary, err := corpus.Load(secondaryPath, corpus.LoadOptions{})
	if err != nil {
		return err
	}
	blended, err := corpus.Blend(primary, secondary, ratio)
	if err != nil {
		return err
	}
	return corpus.WriteFile(outPath, blended)
}

func newCorpusWordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "words",
		Short: "Download frequency-ranked word lists from wordfreq",
		Long:  "Download the latest wordfreq wheel and write the most frequent words of each language to <lang>.txt, one per line.",
		Args:  cobra.NoArgs,
		RunE:  runCorpusWordsCmd,
	}
	cmd.Flags().StringVar(&wordsLang, "lang", "es,en", "comma-separated languages")
	cmd.Flags().IntVar(&wordsLimit, "limit", 5000, "number of words per language")
	cmd.Flags().StringVar(&wordsOutDir, "out-dir", config.DefaultWordListDir(), "output directory")
	cmd.Flags().BoolVar(&wordsForce, "force", false, "overwrite existing word lists")
	return cmd
}

func runCorpusWordsCmd(cmd *cobra.Command, _ []string) error {
	if wordsLimit < 1 {
		return fmt.Errorf("--limit must be > 0")
	}
	outDir := config.ExpandHome(wordsOutDir)
	var pending []string
	for _, lang := range strings.Split(wordsLang, ",") {
		lang = strings.TrimSpace(lang)
		if lang == "" {
			continue
		}
		path := filepath.Join(outDir, lang+".txt")
		if _, err := os.Stat(path); err == nil && !wordsForce {
			logger.Info("word list exists, skipping", "path", path)
			continue
		}
		pending = append(pending, lang)
	}
	if len(pending) == 0 {
		return nil
	}

	wheel, err := wordfreq.DownloadLatestWheel(cmd.Context(), config.DefaultWordfreqCacheDir())
	if err != nil {
		return err
	}
	logger.Info("using wordfreq wheel", "file", wheel.Filename, "cached", wheel.Cached)

	out := cmd.OutOrStdout()
	for _, lang := range pending {
		words, err := wordfreq.ExtractWords(wheel.Path, lang, wordsLimit)
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, lang+".txt")
		if err := corpus.WriteFile(path, strings.Join(words, "\n")+"\n"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(out, "%s: %d words -> %s\n", lang, len(words), path); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
