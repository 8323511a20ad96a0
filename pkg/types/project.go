// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import (
	"encoding/json"
	"sort"
	"strings"
)

// Feature names a marker found by the feature detector.
type Feature string

const (
	FeatureCargoToml      Feature = "cargo_toml"
	FeaturePyProject      Feature = "pyproject_toml"
	FeatureSetupPy        Feature = "setup_py"
	FeatureRequirements   Feature = "requirements_txt"
	FeaturePipfile        Feature = "pipfile"
	FeatureManagePy       Feature = "manage_py"
	FeaturePackageJSON    Feature = "package_json"
	FeatureTSConfig       Feature = "tsconfig_json"
	FeatureAngularJSON    Feature = "angular_json"
	FeatureNextConfig     Feature = "next_config"
	FeatureComposerJSON   Feature = "composer_json"
	FeatureGoMod          Feature = "go_mod"
	FeatureDrupalInfo     Feature = "drupal_info_yml"
	FeatureDrupalServices Feature = "drupal_services_yml"
)

// ProjectFeatures is the immutable result of one feature scan. Build it
// with a FeatureSet and Freeze.
type ProjectFeatures struct {
	flags         map[Feature]bool
	deps          map[string]bool
	drupalModules []string
	fileCounts    map[Language]int
}

// Has reports whether the marker was found.
func (f ProjectFeatures) Has(name Feature) bool {
	return f.flags[name]
}

// HasDependency reports whether any manifest lists the dependency. Names
// are compared lowercase.
func (f ProjectFeatures) HasDependency(name string) bool {
	return f.deps[strings.ToLower(name)]
}

// HasDependencyPrefix reports whether any dependency starts with prefix.
func (f ProjectFeatures) HasDependencyPrefix(prefix string) bool {
	prefix = strings.ToLower(prefix)
	for d := range f.deps {
		if strings.HasPrefix(d, prefix) {
			return true
		}
	}
	return false
}

// Features returns the markers found, sorted.
func (f ProjectFeatures) Features() []Feature {
	out := make([]Feature, 0, len(f.flags))
	for k, v := range f.flags {
		if v {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Dependencies returns every dependency name found, sorted.
func (f ProjectFeatures) Dependencies() []string {
	out := make([]string, 0, len(f.deps))
	for d := range f.deps {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// DrupalModules returns the machine names of Drupal modules declared by
// *.info.yml files, sorted.
func (f ProjectFeatures) DrupalModules() []string {
	return append([]string(nil), f.drupalModules...)
}

// FileCount returns how many source files of lang the scan saw.
func (f ProjectFeatures) FileCount(lang Language) int {
	return f.fileCounts[lang]
}

// MarshalJSON renders the features with sorted keys.
func (f ProjectFeatures) MarshalJSON() ([]byte, error) {
	counts := make(map[string]int, len(f.fileCounts))
	for l, n := range f.fileCounts {
		counts[l.String()] = n
	}
	return json.Marshal(struct {
		Features      []Feature      `json:"features"`
		Dependencies  []string       `json:"dependencies"`
		DrupalModules []string       `json:"drupal_modules,omitempty"`
		FileCounts    map[string]int `json:"file_counts,omitempty"`
	}{
		Features:      f.Features(),
		Dependencies:  f.Dependencies(),
		DrupalModules: f.DrupalModules(),
		FileCounts:    counts,
	})
}

// FeatureSet accumulates markers during a scan. It is not safe for
// concurrent use.
type FeatureSet struct {
	flags         map[Feature]bool
	deps          map[string]bool
	drupalModules map[string]bool
	fileCounts    map[Language]int
}

// NewFeatureSet returns an empty builder.
func NewFeatureSet() *FeatureSet {
	return &FeatureSet{
		flags:         make(map[Feature]bool),
		deps:          make(map[string]bool),
		drupalModules: make(map[string]bool),
		fileCounts:    make(map[Language]int),
	}
}

// Mark records a marker.
func (s *FeatureSet) Mark(name Feature) *FeatureSet {
	s.flags[name] = true
	return s
}

// AddDependency records dependency names, lowercased.
func (s *FeatureSet) AddDependency(names ...string) *FeatureSet {
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			s.deps[n] = true
		}
	}
	return s
}

// AddDrupalModule records a Drupal module machine name.
func (s *FeatureSet) AddDrupalModule(name string) *FeatureSet {
	if name != "" {
		s.drupalModules[name] = true
	}
	return s
}

// CountFile increments the source file count for lang.
func (s *FeatureSet) CountFile(lang Language) *FeatureSet {
	if lang != Unknown && lang != "" {
		s.fileCounts[lang]++
	}
	return s
}

// Freeze copies the accumulated state into an immutable ProjectFeatures.
func (s *FeatureSet) Freeze() ProjectFeatures {
	f := ProjectFeatures{
		flags:      make(map[Feature]bool, len(s.flags)),
		deps:       make(map[string]bool, len(s.deps)),
		fileCounts: make(map[Language]int, len(s.fileCounts)),
	}
	for k, v := range s.flags {
		f.flags[k] = v
	}
	for k, v := range s.deps {
		f.deps[k] = v
	}
	for k, v := range s.fileCounts {
		f.fileCounts[k] = v
	}
	for m := range s.drupalModules {
		f.drupalModules = append(f.drupalModules, m)
	}
	sort.Strings(f.drupalModules)
	return f
}

// ProjectKind is the primary language of a project.
type ProjectKind string

const (
	KindRust       ProjectKind = "rust"
	KindPython     ProjectKind = "python"
	KindJavaScript ProjectKind = "javascript"
	KindTypeScript ProjectKind = "typescript"
	KindPHP        ProjectKind = "php"
	KindGo         ProjectKind = "go"
	KindGeneric    ProjectKind = "generic"
)

// Framework is the sub-framework of a project, if any.
type Framework string

const (
	NoFramework Framework = ""
	Django      Framework = "django"
	Flask       Framework = "flask"
	FastAPI     Framework = "fastapi"
	React       Framework = "react"
	Angular     Framework = "angular"
	NextJS      Framework = "nextjs"
	Drupal      Framework = "drupal"
)

// ProjectType is the classification of a repository snapshot.
type ProjectType struct {
	Kind      ProjectKind `json:"kind"`
	Framework Framework   `json:"framework,omitempty"`
}

// GenericProject is the type of a repository with no recognised markers.
var GenericProject = ProjectType{Kind: KindGeneric}

// PrimaryLanguage maps the project kind to the parser language.
func (t ProjectType) PrimaryLanguage() Language {
	switch t.Kind {
	case KindRust:
		return Rust
	case KindPython:
		return Python
	case KindJavaScript:
		return JavaScript
	case KindTypeScript:
		return TypeScript
	case KindPHP:
		return PHP
	case KindGo:
		return Go
	default:
		return Unknown
	}
}

// IsDrupal reports whether the project is a Drupal PHP project.
func (t ProjectType) IsDrupal() bool {
	return t.Kind == KindPHP && t.Framework == Drupal
}

func (t ProjectType) String() string {
	kind := t.Kind
	if kind == "" {
		kind = KindGeneric
	}
	if t.Framework == NoFramework {
		return string(kind)
	}
	return string(kind) + " (" + string(t.Framework) + ")"
}
