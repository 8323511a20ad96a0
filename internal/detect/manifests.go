// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package detect

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"

	"github.com/petar-djukic/codeassist/pkg/types"
)

// manifest is a marker file the detector understands. parse may be nil
// for markers whose presence is all that matters.
type manifest struct {
	feature types.Feature
	parse   func(fs *types.FeatureSet, name string, data []byte) error
}

// manifestFor returns the handler for a file, matched by base name.
func manifestFor(base string) (manifest, bool) {
	switch {
	case base == "Cargo.toml":
		return manifest{types.FeatureCargoToml, parseCargo}, true
	case base == "pyproject.toml":
		return manifest{types.FeaturePyProject, parsePyProject}, true
	case base == "Pipfile":
		return manifest{types.FeaturePipfile, parsePipfile}, true
	case base == "setup.py":
		return manifest{types.FeatureSetupPy, parseSetupPy}, true
	case base == "manage.py":
		return manifest{types.FeatureManagePy, nil}, true
	case strings.HasPrefix(base, "requirements") && strings.HasSuffix(base, ".txt"):
		return manifest{types.FeatureRequirements, parseRequirements}, true
	case base == "package.json":
		return manifest{types.FeaturePackageJSON, parsePackageJSON}, true
	case base == "tsconfig.json":
		return manifest{types.FeatureTSConfig, nil}, true
	case base == "angular.json":
		return manifest{types.FeatureAngularJSON, nil}, true
	case strings.HasPrefix(base, "next.config."):
		return manifest{types.FeatureNextConfig, nil}, true
	case base == "composer.json":
		return manifest{types.FeatureComposerJSON, parseComposer}, true
	case base == "go.mod":
		return manifest{types.FeatureGoMod, parseGoMod}, true
	case strings.HasSuffix(base, ".info.yml"):
		return manifest{types.FeatureDrupalInfo, parseDrupalInfo}, true
	case strings.HasSuffix(base, ".services.yml"):
		return manifest{types.FeatureDrupalServices, nil}, true
	}
	return manifest{}, false
}

var (
	requirementNameRe = regexp.MustCompile(`^\s*([A-Za-z0-9][A-Za-z0-9._-]*)`)
	setupRequiresRe   = regexp.MustCompile(`(?s)(?:install_requires|requires)\s*=\s*\[(.*?)\]`)
	quotedRe          = regexp.MustCompile(`['"]([^'"]+)['"]`)
)

// requirementName returns the distribution name of a PEP 508 requirement
// such as "Django>=4.2; python_version>'3.8'".
func requirementName(req string) string {
	m := requirementNameRe.FindStringSubmatch(req)
	if m == nil {
		return ""
	}
	return m[1]
}

func parseCargo(fs *types.FeatureSet, _ string, data []byte) error {
	var doc struct {
		Dependencies      map[string]any `toml:"dependencies"`
		DevDependencies   map[string]any `toml:"dev-dependencies"`
		BuildDependencies map[string]any `toml:"build-dependencies"`
		Workspace         struct {
			Dependencies map[string]any `toml:"dependencies"`
		} `toml:"workspace"`
	}
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return fmt.Errorf("decoding Cargo.toml: %w", err)
	}
	for _, deps := range []map[string]any{doc.Dependencies, doc.DevDependencies, doc.BuildDependencies, doc.Workspace.Dependencies} {
		fs.AddDependency(keys(deps)...)
	}
	return nil
}

func parsePyProject(fs *types.FeatureSet, _ string, data []byte) error {
	var doc struct {
		Project struct {
			Dependencies         []string            `toml:"dependencies"`
			OptionalDependencies map[string][]string `toml:"optional-dependencies"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Dependencies    map[string]any `toml:"dependencies"`
				DevDependencies map[string]any `toml:"dev-dependencies"`
				Group           map[string]struct {
					Dependencies map[string]any `toml:"dependencies"`
				} `toml:"group"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return fmt.Errorf("decoding pyproject.toml: %w", err)
	}
	for _, req := range doc.Project.Dependencies {
		fs.AddDependency(requirementName(req))
	}
	for _, group := range doc.Project.OptionalDependencies {
		for _, req := range group {
			fs.AddDependency(requirementName(req))
		}
	}
	poetry := doc.Tool.Poetry
	fs.AddDependency(keys(poetry.Dependencies)...)
	fs.AddDependency(keys(poetry.DevDependencies)...)
	for _, g := range poetry.Group {
		fs.AddDependency(keys(g.Dependencies)...)
	}
	return nil
}

func parsePipfile(fs *types.FeatureSet, _ string, data []byte) error {
	var doc struct {
		Packages    map[string]any `toml:"packages"`
		DevPackages map[string]any `toml:"dev-packages"`
	}
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return fmt.Errorf("decoding Pipfile: %w", err)
	}
	fs.AddDependency(keys(doc.Packages)...)
	fs.AddDependency(keys(doc.DevPackages)...)
	return nil
}

func parseRequirements(fs *types.FeatureSet, _ string, data []byte) error {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if i := strings.Index(line, " #"); i >= 0 {
			line = line[:i]
		}
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		fs.AddDependency(requirementName(line))
	}
	return sc.Err()
}

func parseSetupPy(fs *types.FeatureSet, _ string, data []byte) error {
	for _, block := range setupRequiresRe.FindAllSubmatch(data, -1) {
		for _, q := range quotedRe.FindAllSubmatch(block[1], -1) {
			fs.AddDependency(requirementName(string(q[1])))
		}
	}
	return nil
}

func parsePackageJSON(fs *types.FeatureSet, _ string, data []byte) error {
	var doc struct {
		Dependencies     map[string]string `json:"dependencies"`
		DevDependencies  map[string]string `json:"devDependencies"`
		PeerDependencies map[string]string `json:"peerDependencies"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decoding package.json: %w", err)
	}
	fs.AddDependency(keys(doc.Dependencies)...)
	fs.AddDependency(keys(doc.DevDependencies)...)
	fs.AddDependency(keys(doc.PeerDependencies)...)
	return nil
}

func parseComposer(fs *types.FeatureSet, _ string, data []byte) error {
	var doc struct {
		Require    map[string]string `json:"require"`
		RequireDev map[string]string `json:"require-dev"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decoding composer.json: %w", err)
	}
	fs.AddDependency(keys(doc.Require)...)
	fs.AddDependency(keys(doc.RequireDev)...)
	return nil
}

func parseGoMod(fs *types.FeatureSet, name string, data []byte) error {
	f, err := modfile.ParseLax(name, data, nil)
	if err != nil {
		return fmt.Errorf("parsing go.mod: %w", err)
	}
	for _, r := range f.Require {
		fs.AddDependency(r.Mod.Path)
	}
	return nil
}

// drupalExtensionTypes are the info.yml types that make a directory a
// Drupal extension.
var drupalExtensionTypes = map[string]bool{"module": true, "theme": true, "profile": true}

func parseDrupalInfo(fs *types.FeatureSet, name string, data []byte) error {
	var doc struct {
		Name string `yaml:"name"`
		Type string `yaml:"type"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decoding %s: %w", path.Base(name), err)
	}
	if drupalExtensionTypes[strings.ToLower(doc.Type)] {
		fs.AddDrupalModule(strings.TrimSuffix(path.Base(name), ".info.yml"))
	}
	return nil
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
