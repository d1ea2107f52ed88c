// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/sporeid/pkg/types"
)

// ExportEntry is one record as written by WriteYAML and WriteJSON.
type ExportEntry struct {
	Label      string  `json:"label" yaml:"label"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Timestamp  int64   `json:"timestamp" yaml:"timestamp"`
	Time       string  `json:"time" yaml:"time"`
}

func exportEntries(records []types.HistoryRecord) []ExportEntry {
	entries := make([]ExportEntry, len(records))
	for i, r := range records {
		entries[i] = ExportEntry{
			Label:      r.Label,
			Confidence: r.Confidence,
			Timestamp:  r.Timestamp,
			Time:       r.Time().UTC().Format(time.RFC3339),
		}
	}
	return entries
}

// WriteYAML writes records to w as a YAML sequence.
func WriteYAML(w io.Writer, records []types.HistoryRecord) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(exportEntries(records)); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// WriteJSON writes records to w as an indented JSON array.
func WriteJSON(w io.Writer, records []types.HistoryRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exportEntries(records)); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}
