package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/codeswitch/internal/config"
	"github.com/verte-zerg/codeswitch/internal/corpus"
	"github.com/verte-zerg/codeswitch/internal/detect"
	"github.com/verte-zerg/codeswitch/internal/model"
	"github.com/verte-zerg/codeswitch/internal/weights"
)

var (
	modelsDir       string
	detectThreshold float64

	detectFile string
	detectJSON bool
	detectDemo bool
)

var demoTexts = []string{
	"Hoy es un día hermoso para caminar por el parque",
	"La situación económica del país ha mejorado considerablemente",
	"The weather is beautiful today for a walk in the park",
	"The economic situation of the country has improved considerably",
	"Voy a hacer shopping porque necesito unos jeans nuevos",
	"I'm going to the tienda to buy some tortillas for dinner",
	"Let me tell you something, eso no está cool bro, you need to chill",
	"Estaba chilling en mi house cuando llegó mi friend",
	"We were at the party y de repente everyone started dancing",
}

func addDetectorFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&modelsDir, "models", config.DefaultModelsDir(), "directory holding model_es, model_en, model_es_disc and model_en_disc")
	cmd.Flags().Float64Var(&detectThreshold, "threshold", detect.DefaultThreshold, "Spanglish threshold reported with each request")
}

// loadDetector applies the [detect] config and loads the four models.
func loadDetector(cmd *cobra.Command) (*detect.Detector, error) {
	dc := fileCfg.Detect
	applyStringConfig(cmd, "models", &modelsDir, dc.ModelsDir)
	applyFloatConfig(cmd, "threshold", &detectThreshold, dc.Threshold)
	cfg := detectorConfig(fileCfg)

	dir := config.ExpandHome(modelsDir)
	models, err := detect.LoadModels(dir)
	if err != nil {
		if errors.Is(err, weights.ErrModelNotFound) {
			return nil, modelsMissingError(dir, err)
		}
		return nil, err
	}
	logger.Debug("loaded models", "dir", dir,
		"es", models.OriginalES.Len(), "en", models.OriginalEN.Len(),
		"es_disc", models.DiscriminativeES.Len(), "en_disc", models.DiscriminativeEN.Len())
	return detect.New(models, cfg)
}

// detectorConfig overlays the decision thresholds from [detect] and the
// extraction settings from [train] on the defaults.
func detectorConfig(fc config.FileConfig) detect.Config {
	dc := fc.Detect
	cfg := detect.DefaultConfig()
	t := &cfg.Thresholds
	for _, o := range []struct {
		dst *float64
		src *float64
	}{
		{&t.MixedMaxDiff, dc.MixedMaxDiff},
		{&t.MixedMinShare, dc.MixedMinShare},
		{&t.SecondaryMaxDiff, dc.SecondaryMaxDiff},
		{&t.SecondaryMinShare, dc.SecondaryMinShare},
		{&t.SubtypeMargin, dc.SubtypeMargin},
	} {
		if o.src != nil {
			*o.dst = *o.src
		}
	}
	tc := fc.Train
	if tc.MinN != nil {
		cfg.Extract.MinN = *tc.MinN
	}
	if tc.MaxN != nil {
		cfg.Extract.MaxN = *tc.MaxN
	}
	if tc.NFC != nil {
		cfg.NFC = *tc.NFC
	}
	return cfg
}

func modelsMissingError(dir string, err error) error {
	lines := []string{
		err.Error(),
		fmt.Sprintf("expected models in: %s", dir),
		"Download corpora: codeswitch corpus fetch",
		fmt.Sprintf("Train: codeswitch train es-wikipedia.txt %s", detect.ModelPath(dir, detect.NameOriginalES)),
		fmt.Sprintf("       codeswitch train en-wikipedia.txt %s", detect.ModelPath(dir, detect.NameOriginalEN)),
		fmt.Sprintf("       codeswitch train-disc es-wikipedia.txt en-wikipedia.txt %s %s",
			detect.ModelPath(dir, detect.NameDiscriminativeES), detect.ModelPath(dir, detect.NameDiscriminativeEN)),
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func newDetectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect [text...]",
		Short: "Classify text as Spanish, English or Spanglish",
		Long:  "Classify the text given as arguments, one text per line of --file, the built-in demo texts, or standard input.",
		RunE:  runDetectCmd,
	}
	addDetectorFlags(cmd)
	cmd.Flags().StringVar(&detectFile, "file", "", "classify each non-blank line of a file")
	cmd.Flags().BoolVar(&detectJSON, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&detectDemo, "demo", false, "classify built-in sample sentences")
	return cmd
}

func runDetectCmd(cmd *cobra.Command, args []string) error {
	texts, err := detectInputs(cmd, args)
	if err != nil {
		return err
	}
	d, err := loadDetector(cmd)
	if err != nil {
		return err
	}
	results, err := d.DetectAll(cmd.Context(), texts, detectThreshold)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if detectJSON {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if len(results) == 1 && detectFile == "" && !detectDemo {
			return enc.Encode(results[0])
		}
		return enc.Encode(results)
	}
	for i, res := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(out); err != nil {
				return err
			}
		}
		if err := printResult(out, res); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func detectInputs(cmd *cobra.Command, args []string) ([]string, error) {
	switch {
	case detectDemo:
		return demoTexts, nil
	case detectFile != "":
		return corpus.LoadLines(detectFile)
	case len(args) > 0:
		return []string{strings.Join(args, " ")}, nil
	}
	in := cmd.InOrStdin()
	if isTerminal(in) {
		return nil, fmt.Errorf("provide text as arguments, --file, --demo or standard input")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, fmt.Errorf("no text on standard input")
	}
	return []string{text}, nil
}

func printResult(w io.Writer, res model.Result) error {
	dim := paint(w, color.Faint)
	bold := paint(w, color.Bold)
	mixed := paint(w, color.FgMagenta, color.Bold)
	spanish := paint(w, color.FgYellow, color.Bold)
	english := paint(w, color.FgCyan, color.Bold)

	d := res.Details
	if _, err := fmt.Fprintf(w, "Text: %q\n", res.Text); err != nil {
		return err
	}
	if _, err := dim.Fprintf(w, "  Original:       %5.1f%% ES | %5.1f%% EN\n  Discriminative: %5.1f%% ES | %5.1f%% EN\n  Unique matches: %d ES | %d EN\n",
		d.Original.ES, d.Original.EN, d.Discriminative.ES, d.Discriminative.EN, d.MatchesDisc.ES, d.MatchesDisc.EN); err != nil {
		return err
	}
	if res.IsSpanglish {
		if _, err := fmt.Fprintf(w, "%s %s\n  Base: %s\n  Mix:  %.1f%% Español | %.1f%% Inglés\n",
			bold.Sprint("Result:"), mixed.Sprintf("SPANGLISH (%s)", res.Type()), res.DominantLanguage,
			res.Proportions.Spanish, res.Proportions.English); err != nil {
			return err
		}
		return nil
	}
	lang := english
	if res.DominantLanguage == model.LabelSpanish {
		lang = spanish
	}
	_, err := fmt.Fprintf(w, "%s %s\n  Confidence: %.1f%%\n", bold.Sprint("Result:"), lang.Sprint(res.DominantLanguage), res.Confidence)
	return err
}
