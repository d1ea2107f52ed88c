// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HistoryRecord is one past classification. Records are never modified
// after creation.
type HistoryRecord struct {
	// ID is assigned by durable stores at insert time and is zero for
	// in-memory records. It is a persistence key only and is not shown.
	ID int64 `json:"-" yaml:"-"`

	Label      string  `json:"label" yaml:"label"`
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Timestamp is milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp" yaml:"timestamp"`
}

// NewHistoryRecord stamps a record with t.
func NewHistoryRecord(label string, confidence float64, t time.Time) HistoryRecord {
	return HistoryRecord{
		Label:      label,
		Confidence: confidence,
		Timestamp:  t.UnixMilli(),
	}
}

// Time returns the record timestamp in local time.
func (r HistoryRecord) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}
