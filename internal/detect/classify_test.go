// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/petar-djukic/codeassist/pkg/types"
)

func TestClassify_Precedence(t *testing.T) {
	tests := []struct {
		name  string
		build func(fs *types.FeatureSet)
		want  types.ProjectType
	}{
		{
			name:  "nothing",
			build: func(*types.FeatureSet) {},
			want:  types.GenericProject,
		},
		{
			name: "drupal beats composer and react",
			build: func(fs *types.FeatureSet) {
				fs.Mark(types.FeatureComposerJSON).Mark(types.FeaturePackageJSON).
					AddDependency("react").AddDrupalModule("shop")
			},
			want: types.ProjectType{Kind: types.KindPHP, Framework: types.Drupal},
		},
		{
			name: "angular beats react",
			build: func(fs *types.FeatureSet) {
				fs.Mark(types.FeaturePackageJSON).Mark(types.FeatureAngularJSON).AddDependency("react")
			},
			want: types.ProjectType{Kind: types.KindJavaScript, Framework: types.Angular},
		},
		{
			name: "angular with typescript dependency",
			build: func(fs *types.FeatureSet) {
				fs.AddDependency("@angular/core", "typescript")
			},
			want: types.ProjectType{Kind: types.KindTypeScript, Framework: types.Angular},
		},
		{
			name: "next beats react",
			build: func(fs *types.FeatureSet) {
				fs.AddDependency("next", "react")
			},
			want: types.ProjectType{Kind: types.KindJavaScript, Framework: types.NextJS},
		},
		{
			name: "django beats fastapi",
			build: func(fs *types.FeatureSet) {
				fs.AddDependency("fastapi", "django")
			},
			want: types.ProjectType{Kind: types.KindPython, Framework: types.Django},
		},
		{
			name: "fastapi beats flask",
			build: func(fs *types.FeatureSet) {
				fs.AddDependency("flask", "fastapi")
			},
			want: types.ProjectType{Kind: types.KindPython, Framework: types.FastAPI},
		},
		{
			name: "rust beats package.json",
			build: func(fs *types.FeatureSet) {
				fs.Mark(types.FeatureCargoToml).Mark(types.FeaturePackageJSON)
			},
			want: types.ProjectType{Kind: types.KindRust},
		},
		{
			name: "go beats python",
			build: func(fs *types.FeatureSet) {
				fs.Mark(types.FeatureGoMod).Mark(types.FeatureRequirements)
			},
			want: types.ProjectType{Kind: types.KindGo},
		},
		{
			name: "typescript needs package.json",
			build: func(fs *types.FeatureSet) {
				fs.Mark(types.FeaturePackageJSON).Mark(types.FeatureTSConfig)
			},
			want: types.ProjectType{Kind: types.KindTypeScript},
		},
		{
			name: "tsconfig alone falls back to file counts",
			build: func(fs *types.FeatureSet) {
				fs.Mark(types.FeatureTSConfig).CountFile(types.Python)
			},
			want: types.ProjectType{Kind: types.KindPython},
		},
		{
			name: "python beats composer",
			build: func(fs *types.FeatureSet) {
				fs.Mark(types.FeatureComposerJSON).Mark(types.FeaturePyProject)
			},
			want: types.ProjectType{Kind: types.KindPython},
		},
		{
			name: "composer",
			build: func(fs *types.FeatureSet) {
				fs.Mark(types.FeatureComposerJSON).AddDependency("laravel/framework")
			},
			want: types.ProjectType{Kind: types.KindPHP},
		},
		{
			name: "dominant language",
			build: func(fs *types.FeatureSet) {
				fs.CountFile(types.Python).CountFile(types.Python).CountFile(types.Go)
			},
			want: types.ProjectType{Kind: types.KindPython},
		},
		{
			name: "dominant tie resolves in fixed order",
			build: func(fs *types.FeatureSet) {
				fs.CountFile(types.PHP).CountFile(types.Go).CountFile(types.JavaScript)
			},
			want: types.ProjectType{Kind: types.KindGo},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := types.NewFeatureSet()
			tt.build(fs)
			assert.Equal(t, tt.want, Classify(fs.Freeze()))
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	fs := types.NewFeatureSet().Mark(types.FeaturePackageJSON).AddDependency("react", "typescript")
	f := fs.Freeze()
	first := Classify(f)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(f))
	}
	assert.Equal(t, "typescript (react)", first.String())
}
