// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines shared types used across codeassist packages.
package types

// Language is the closed set of languages the structural parser understands.
type Language string

const (
	Rust       Language = "rust"
	Python     Language = "python"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	PHP        Language = "php"
	Go         Language = "go"
	Unknown    Language = "unknown"
)

// Languages lists every known language except Unknown, in a fixed order
// used wherever iteration order must be deterministic.
var Languages = []Language{Rust, Go, TypeScript, JavaScript, Python, PHP}

// String returns the language tag.
func (l Language) String() string {
	if l == "" {
		return string(Unknown)
	}
	return string(l)
}

// Family returns the language family. JavaScript and TypeScript share one.
func (l Language) Family() string {
	switch l {
	case JavaScript, TypeScript:
		return "ecmascript"
	default:
		return l.String()
	}
}

// SymbolKind identifies the category of a code symbol.
type SymbolKind int

const (
	Module    SymbolKind = iota // Module, package, namespace
	Type                        // Struct, class, enum, type alias
	Function                    // Free function
	Method                      // Function bound to a type or class
	Component                   // UI component (JSX-returning function, Angular component)
	Hook                        // React hook or Drupal hook implementation
	Interface                   // Interface, trait, protocol
	Service                     // Injectable service
	Hint                        // Route registration, macro, other structural hint
)

// String returns the human-readable name of the symbol kind.
func (k SymbolKind) String() string {
	switch k {
	case Module:
		return "module"
	case Type:
		return "type"
	case Function:
		return "function"
	case Method:
		return "method"
	case Component:
		return "component"
	case Hook:
		return "hook"
	case Interface:
		return "interface"
	case Service:
		return "service"
	case Hint:
		return "hint"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name so JSON output stays readable.
func (k SymbolKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Symbol is one declaration found by the structural parser.
type Symbol struct {
	Name      string     `json:"name"`
	Kind      SymbolKind `json:"kind"`
	StartLine int        `json:"start_line"`       // 1-based
	EndLine   int        `json:"end_line"`         // 1-based, >= StartLine
	Parent    string     `json:"parent,omitempty"` // Receiver type, enclosing class, or hook module
}

// ParseResult is the structural summary of one file. It is owned by the
// caller that requested it.
type ParseResult struct {
	FilePath    string   `json:"file_path"`
	Language    Language `json:"language"`
	Symbols     []Symbol `json:"symbols"`
	ParseErrors []string `json:"parse_errors,omitempty"`
	Imports     []string `json:"imports,omitempty"`
	LineCount   int      `json:"line_count"`
}
