package weights

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrModelNotFound is returned when a model file does not exist.
var ErrModelNotFound = errors.New("model not found")

// ErrInvalidModel is returned when a model file holds unusable weights.
var ErrInvalidModel = errors.New("invalid model")

const msgpackSchemaVersion uint16 = 1

// Format selects the on-disk codec.
type Format int

const (
	// FormatJSON is a flat, indented JSON object of n-gram to weight.
	FormatJSON Format = iota
	// FormatMsgpack is a compact binary encoding of the same mapping.
	FormatMsgpack
)

type msgpackPayload struct {
	Schema  uint16             `msgpack:"schema"`
	Count   uint32             `msgpack:"count"`
	Weights map[string]float64 `msgpack:"weights"`
}

// FormatFor picks the codec from the file extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp":
		return FormatMsgpack
	default:
		return FormatJSON
	}
}

// Load reads a model file. A missing file yields ErrModelNotFound.
func Load(path string) (*Model, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return nil, fmt.Errorf("failed to open model: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	entries, err := Decode(bufio.NewReader(file), FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", path, err)
	}
	return New(entries), nil
}

// Decode reads a weight mapping in the given format and validates it.
func Decode(r io.Reader, format Format) (map[string]float64, error) {
	var entries map[string]float64
	switch format {
	case FormatMsgpack:
		var payload msgpackPayload
		if err := msgpack.NewDecoder(r).Decode(&payload); err != nil {
			return nil, fmt.Errorf("failed to decode msgpack: %w", err)
		}
		if payload.Schema != msgpackSchemaVersion {
			return nil, fmt.Errorf("%w: unsupported schema %d", ErrInvalidModel, payload.Schema)
		}
		if int(payload.Count) != len(payload.Weights) {
			return nil, fmt.Errorf("%w: header count %d, found %d entries", ErrInvalidModel, payload.Count, len(payload.Weights))
		}
		entries = payload.Weights
	default:
		if err := json.NewDecoder(r).Decode(&entries); err != nil {
			return nil, fmt.Errorf("failed to decode json: %w", err)
		}
	}
	if entries == nil {
		entries = map[string]float64{}
	}
	for k, w := range entries {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: weight %v for %q", ErrInvalidModel, w, k)
		}
	}
	return entries, nil
}

// Encode writes the model in the given format with keys in sorted order.
func Encode(w io.Writer, m *Model, format Format) error {
	entries := m.Map()
	switch format {
	case FormatMsgpack:
		count, err := safecast.Conv[uint32](len(entries))
		if err != nil {
			return fmt.Errorf("model too large: %w", err)
		}
		enc := msgpack.NewEncoder(w)
		enc.SetSortMapKeys(true)
		return enc.Encode(msgpackPayload{Schema: msgpackSchemaVersion, Count: count, Weights: entries})
	default:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
}

// Save writes the model to path atomically, creating parent directories.
func Save(path string, m *Model) error {
	return SaveAll(File{Path: path, Model: m})
}

// File pairs a model with its destination path.
type File struct {
	Path  string
	Model *Model
}

// SaveAll encodes every model into a temp file next to its destination and
// renames them into place only once all of them were written. On an encode
// failure no destination is touched.
func SaveAll(files ...File) error {
	staged := make([]string, 0, len(files))
	defer func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}()
	for _, f := range files {
		tmp, err := stage(f.Path, f.Model)
		if err != nil {
			return err
		}
		staged = append(staged, tmp)
	}
	for i, f := range files {
		if err := os.Rename(staged[i], f.Path); err != nil {
			return fmt.Errorf("failed to write model: %w", err)
		}
	}
	return nil
}

func stage(path string, m *Model) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create model dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "model-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp model: %w", err)
	}
	tmpPath := tmpFile.Name()
	fail := func(format string, err error) (string, error) {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf(format, err)
	}

	writer := bufio.NewWriter(tmpFile)
	if err := Encode(writer, m, FormatFor(path)); err != nil {
		return fail("failed to encode model: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fail("failed to flush model: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close model: %w", err)
	}
	return tmpPath, nil
}
