// Package corpus reads, cleans, and assembles training text.
package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrCorpusNotFound is returned when a corpus file does not exist.
var ErrCorpusNotFound = errors.New("corpus not found")

// LoadOptions controls how a corpus is read.
type LoadOptions struct {
	// NFC composes the text into Unicode normal form C after reading.
	NFC bool
}

// Load reads the whole corpus file as UTF-8 text.
func Load(path string, opts LoadOptions) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrCorpusNotFound, path)
		}
		return "", fmt.Errorf("failed to read corpus: %w", err)
	}
	text := string(data)
	if opts.NFC {
		text = norm.NFC.String(text)
	}
	return text, nil
}

// LoadLines reads one entry per non-blank line, trimmed.
func LoadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCorpusNotFound, path)
		}
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%s contains no lines", path)
	}
	return lines, nil
}

var (
	citationRe = regexp.MustCompile(`\[\d+\]`)
	urlRe      = regexp.MustCompile(`https?://\S+`)
	symbolRe   = regexp.MustCompile(`[^\p{L}\p{N}_\s.,;:!?'"\-()]`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// Clean strips citation markers, URLs and uncommon symbols, then collapses
// whitespace to single spaces. Text shorter than minLen runes after cleaning
// is discarded.
func Clean(text string, minLen int) string {
	text = citationRe.ReplaceAllString(text, "")
	text = urlRe.ReplaceAllString(text, "")
	text = symbolRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
	if len([]rune(text)) <= minLen {
		return ""
	}
	return text
}

// Blend appends the head of secondary to primary so that primary makes up
// ratio of the result, measured in bytes.
func Blend(primary, secondary string, ratio float64) (string, error) {
	if ratio <= 0 || ratio > 1 {
		return "", fmt.Errorf("ratio must be in (0, 1], got %v", ratio)
	}
	if ratio == 1 || secondary == "" {
		return primary, nil
	}
	target := int(float64(len(primary)) * (1 - ratio) / ratio)
	if len(secondary) > target {
		secondary = truncateUTF8(secondary, target)
	}
	return primary + "\n\n" + secondary, nil
}

func truncateUTF8(s string, maxBytes int) string {
	if maxBytes <= 0 {
		return ""
	}
	if len(s) <= maxBytes {
		return s
	}
	end := 0
	for i := range s {
		if i > maxBytes {
			break
		}
		end = i
	}
	return s[:end]
}

// WriteFile writes text to path through a temp file and rename.
func WriteFile(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create corpus dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "corpus-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temp corpus: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if _, err := writer.WriteString(text); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush corpus: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close corpus: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	return nil
}
