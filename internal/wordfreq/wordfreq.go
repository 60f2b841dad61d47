// Package wordfreq extracts ranked vocabularies from the wordfreq dataset.
// They feed the synthetic mixed-sample generator used during calibration.
package wordfreq

import (
	"archive/zip"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/vmihailenco/msgpack/v5"
)

var pypiEndpoint = "https://pypi.org/pypi/wordfreq/json"

// Wheel describes a cached wordfreq wheel.
type Wheel struct {
	Version  string
	Path     string
	Filename string
	Cached   bool
}

type pypiFile struct {
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	Packagetype string `json:"packagetype"`
}

type pypiResponse struct {
	Info struct {
		Version string `json:"version"`
	} `json:"info"`
	URLs []pypiFile `json:"urls"`
}

// DownloadLatestWheel fetches the latest wordfreq wheel into cacheDir,
// reusing a cached copy of the same file.
func DownloadLatestWheel(ctx context.Context, cacheDir string) (Wheel, error) {
	if cacheDir == "" {
		return Wheel{}, fmt.Errorf("cache directory is required")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return Wheel{}, fmt.Errorf("failed to create cache dir: %w", err)
	}

	resp, err := httpRequest(ctx, pypiEndpoint)
	if err != nil {
		return Wheel{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return Wheel{}, fmt.Errorf("unexpected pypi status: %s", resp.Status)
	}

	var payload pypiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Wheel{}, fmt.Errorf("failed to decode pypi response: %w", err)
	}
	if payload.Info.Version == "" {
		return Wheel{}, fmt.Errorf("missing version in pypi response")
	}
	file, ok := pickWheel(payload.URLs)
	if !ok {
		return Wheel{}, fmt.Errorf("no suitable wordfreq wheel found")
	}

	destPath := filepath.Join(cacheDir, file.Filename)
	if _, err := os.Stat(destPath); err == nil {
		return Wheel{Version: payload.Info.Version, Path: destPath, Filename: file.Filename, Cached: true}, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return Wheel{}, fmt.Errorf("failed to stat cached wheel: %w", err)
	}

	tmpFile, err := os.CreateTemp(cacheDir, "wordfreq-*.whl")
	if err != nil {
		return Wheel{}, fmt.Errorf("failed to create temp wheel: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	wheelResp, err := httpRequest(ctx, file.URL)
	if err != nil {
		return Wheel{}, err
	}
	defer func() {
		_ = wheelResp.Body.Close()
	}()
	if wheelResp.StatusCode != http.StatusOK {
		return Wheel{}, fmt.Errorf("unexpected wheel status: %s", wheelResp.Status)
	}
	if _, err := io.Copy(tmpFile, wheelResp.Body); err != nil {
		return Wheel{}, fmt.Errorf("failed to download wheel: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return Wheel{}, fmt.Errorf("failed to close temp wheel: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return Wheel{}, fmt.Errorf("failed to move wheel into cache: %w", err)
	}
	return Wheel{Version: payload.Info.Version, Path: destPath, Filename: file.Filename}, nil
}

// ExtractWords returns up to limit words for lang, most frequent first.
// Only alphabetic words of 2..20 letters that belong to the language's
// alphabet are kept.
func ExtractWords(wheelPath, lang string, limit int) ([]string, error) {
	if wheelPath == "" {
		return nil, fmt.Errorf("wheel path is required")
	}
	lang = strings.ToLower(lang)
	if lang == "" {
		return nil, fmt.Errorf("language is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	bins, err := readBins(wheelPath, lang)
	if err != nil {
		return nil, err
	}
	keep := alphabetFor(lang)
	words := make([]string, 0, limit)
	seen := make(map[string]struct{})
	for _, bin := range bins {
		for _, word := range bin {
			if _, ok := seen[word]; ok {
				continue
			}
			length := utf8.RuneCountInString(word)
			if length < 2 || length > 20 || !keep(word) {
				continue
			}
			seen[word] = struct{}{}
			words = append(words, word)
			if len(words) >= limit {
				return words, nil
			}
		}
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("no words found for %s", lang)
	}
	return words, nil
}

func httpRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func pickWheel(files []pypiFile) (pypiFile, bool) {
	var fallback *pypiFile
	for i, f := range files {
		if f.Packagetype != "bdist_wheel" {
			continue
		}
		if strings.HasSuffix(f.Filename, "py3-none-any.whl") {
			return f, true
		}
		if fallback == nil {
			fallback = &files[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return pypiFile{}, false
}

// readBins decodes the cBpack list for lang: a header map followed by one
// list of words per frequency bin, most frequent bin first.
func readBins(wheelPath, lang string) ([][]string, error) {
	reader, err := zip.OpenReader(wheelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wheel: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	dataFile := selectDataFile(reader.File, lang)
	if dataFile == nil {
		return nil, fmt.Errorf("no data file found for %s", lang)
	}
	rc, err := dataFile.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer func() {
		_ = rc.Close()
	}()

	var src io.Reader = rc
	if strings.HasSuffix(dataFile.Name, ".gz") {
		gz, err := gzip.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer func() {
			_ = gz.Close()
		}()
		src = gz
	}

	var raw []msgpack.RawMessage
	if err := msgpack.NewDecoder(src).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", dataFile.Name, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("wordfreq data contained no entries")
	}

	bins := make([][]string, 0, len(raw))
	for i, item := range raw {
		var words []string
		if err := msgpack.Unmarshal(item, &words); err != nil {
			if i == 0 {
				// header
				continue
			}
			return nil, fmt.Errorf("failed to decode bin %d: %w", i, err)
		}
		bins = append(bins, words)
	}
	return bins, nil
}

// selectDataFile prefers the large list over the small one.
func selectDataFile(files []*zip.File, lang string) *zip.File {
	var small *zip.File
	for _, file := range files {
		name := strings.ToLower(file.Name)
		if !strings.HasPrefix(name, "wordfreq/data/") {
			continue
		}
		base := strings.TrimSuffix(strings.TrimSuffix(strings.TrimPrefix(name, "wordfreq/data/"), ".gz"), ".msgpack")
		switch base {
		case "large_" + lang:
			return file
		case "small_" + lang:
			small = file
		}
	}
	return small
}

func alphabetFor(lang string) func(string) bool {
	switch lang {
	case "en":
		return func(word string) bool {
			for i := 0; i < len(word); i++ {
				if word[i] < 'a' || word[i] > 'z' {
					return false
				}
			}
			return true
		}
	case "es":
		return func(word string) bool {
			for _, r := range word {
				if (r < 'a' || r > 'z') && !strings.ContainsRune("áéíóúüñ", r) {
					return false
				}
			}
			return true
		}
	default:
		return func(word string) bool {
			for _, r := range word {
				if !unicode.IsLetter(r) {
					return false
				}
			}
			return true
		}
	}
}
