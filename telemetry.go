// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package rawzip

import (
	"context"
	"encoding/json"
	"time"
)

// TelemetryData holds all telemetry data of an extraction.
type TelemetryData struct {
	// ExtractedFiles is the number of successfully extracted files
	ExtractedFiles int64 `json:"extracted_files"`

	// ExtractionDuration is the time it took to extract the archive
	ExtractionDuration time.Duration `json:"extraction_duration"`

	// ExtractionErrors is the number of per-entry errors during extraction
	ExtractionErrors int64 `json:"extraction_errors"`

	// ExtractionSize is the total decompressed size of the extracted files
	ExtractionSize int64 `json:"extraction_size"`

	// InputSize is the size of the archive buffer
	InputSize int64 `json:"input_size"`

	// LastExtractionError is the last per-entry error during extraction
	LastExtractionError error `json:"last_extraction_error"`

	// ParsedEntries is the number of entries in the archive index
	ParsedEntries int64 `json:"parsed_entries"`

	// SkippedDirs is the number of directory entries skipped during extraction
	SkippedDirs int64 `json:"skipped_dirs"`
}

// String returns a string representation of [TelemetryData].
func (td TelemetryData) String() string {
	b, _ := json.Marshal(td)
	return string(b)
}

// MarshalJSON implements the [encoding/json.Marshaler] interface.
func (td TelemetryData) MarshalJSON() ([]byte, error) {
	var lastError string
	if td.LastExtractionError != nil {
		lastError = td.LastExtractionError.Error()
	}

	type Alias TelemetryData
	return json.Marshal(&struct {
		LastExtractionError string `json:"last_extraction_error"`
		*Alias
	}{
		LastExtractionError: lastError,
		Alias:               (*Alias)(&td),
	})
}

// TelemetryHook is a function type that performs operations on
// [TelemetryData] after an extraction has finished, which can be used to
// submit the data to a telemetry service, for example.
type TelemetryHook func(context.Context, *TelemetryData)

// now is a function alias to enable mocking in tests.
var now = time.Now

// captureExtractionDuration stores the duration since start in td.
func captureExtractionDuration(td *TelemetryData, start time.Time) {
	td.ExtractionDuration = now().Sub(start)
}
