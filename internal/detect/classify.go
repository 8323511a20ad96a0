// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package detect

import "github.com/petar-djukic/codeassist/pkg/types"

// Classify maps detected features to a project type. It is pure and total:
// the first matching rule wins, and a repository with no markers and no
// recognised source files is Generic.
func Classify(f types.ProjectFeatures) types.ProjectType {
	js := types.KindJavaScript
	if f.Has(types.FeatureTSConfig) || f.HasDependency("typescript") {
		js = types.KindTypeScript
	}

	switch {
	case len(f.DrupalModules()) > 0 || f.HasDependencyPrefix("drupal/core"):
		return types.ProjectType{Kind: types.KindPHP, Framework: types.Drupal}
	case f.Has(types.FeatureAngularJSON) || f.HasDependency("@angular/core"):
		return types.ProjectType{Kind: js, Framework: types.Angular}
	case f.Has(types.FeatureNextConfig) || f.HasDependency("next"):
		return types.ProjectType{Kind: js, Framework: types.NextJS}
	case f.HasDependency("react"):
		return types.ProjectType{Kind: js, Framework: types.React}
	case f.HasDependency("django") || f.Has(types.FeatureManagePy):
		return types.ProjectType{Kind: types.KindPython, Framework: types.Django}
	case f.HasDependency("fastapi"):
		return types.ProjectType{Kind: types.KindPython, Framework: types.FastAPI}
	case f.HasDependency("flask"):
		return types.ProjectType{Kind: types.KindPython, Framework: types.Flask}
	case f.Has(types.FeatureCargoToml):
		return types.ProjectType{Kind: types.KindRust}
	case f.Has(types.FeatureGoMod):
		return types.ProjectType{Kind: types.KindGo}
	case f.Has(types.FeaturePackageJSON):
		return types.ProjectType{Kind: js}
	case f.Has(types.FeaturePyProject) || f.Has(types.FeatureSetupPy) ||
		f.Has(types.FeatureRequirements) || f.Has(types.FeaturePipfile):
		return types.ProjectType{Kind: types.KindPython}
	case f.Has(types.FeatureComposerJSON):
		return types.ProjectType{Kind: types.KindPHP}
	}
	return dominant(f)
}

// dominant picks the language with the most source files. Ties resolve in
// the order of types.Languages.
func dominant(f types.ProjectFeatures) types.ProjectType {
	best, bestCount := types.Unknown, 0
	for _, l := range types.Languages {
		if n := f.FileCount(l); n > bestCount {
			best, bestCount = l, n
		}
	}
	if kind, ok := kindOf[best]; ok {
		return types.ProjectType{Kind: kind}
	}
	return types.GenericProject
}

var kindOf = map[types.Language]types.ProjectKind{
	types.Rust:       types.KindRust,
	types.Go:         types.KindGo,
	types.TypeScript: types.KindTypeScript,
	types.JavaScript: types.KindJavaScript,
	types.Python:     types.KindPython,
	types.PHP:        types.KindPHP,
}
