// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import "fmt"

// DiagnosticKind classifies a non-fatal problem met while scanning a file.
type DiagnosticKind int

const (
	IOError       DiagnosticKind = iota // File unreadable or permission denied
	EncodingError                       // Binary or non-UTF-8 content
	TooLarge                            // File exceeds the configured size limit
	ParseAnomaly                        // Structural parser met something it could not close
)

func (k DiagnosticKind) String() string {
	switch k {
	case IOError:
		return "io_error"
	case EncodingError:
		return "encoding_error"
	case TooLarge:
		return "too_large"
	case ParseAnomaly:
		return "parse_anomaly"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k DiagnosticKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Diagnostic records why one file contributed less than it could have.
// Diagnostics never abort an operation.
type Diagnostic struct {
	Path    string         `json:"path"`    // Path relative to the repository root
	Kind    DiagnosticKind `json:"kind"`    // Failure class
	Message string         `json:"message"` // Human-readable detail
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Path, d.Kind, d.Message)
}
