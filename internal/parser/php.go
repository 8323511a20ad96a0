// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package parser

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/petar-djukic/codeassist/internal/lang"
	"github.com/petar-djukic/codeassist/pkg/types"
)

// docblockLookback bounds how far above a function its docblock may start.
const docblockLookback = 15

var (
	phpNamespaceRe  = regexp.MustCompile(`^\s*namespace\s+([\w\\]+)\s*[;{]`)
	phpTypeRe       = regexp.MustCompile(`^\s*(?:(?:abstract|final|readonly)\s+)*(class|trait|enum|interface)\s+([A-Za-z_]\w*)`)
	phpFunctionRe   = regexp.MustCompile(`^\s*(?:(?:public|private|protected|static|abstract|final)\s+)*function\s+&?\s*([A-Za-z_]\w*)\s*\(`)
	phpImplementsRe = regexp.MustCompile(`(?i)Implements\s+hook_(\w+)\(\)`)
	phpFormAlterRe  = regexp.MustCompile(`^(\w+?)_form_\w+_alter$`)
	phpUpdateRe     = regexp.MustCompile(`^(\w+?)_update_\d+$`)
)

// drupalHooks are hook suffixes recognised on module-prefixed functions,
// longest first so the most specific suffix wins.
var drupalHooks = func() []string {
	hooks := []string{
		"menu", "help", "permission", "theme", "form_alter", "install", "uninstall",
		"schema", "cron", "init", "boot", "mail", "tokens", "token_info", "requirements",
		"node_insert", "node_update", "node_delete", "node_view", "node_presave", "node_access",
		"entity_insert", "entity_update", "entity_delete", "entity_presave", "entity_view",
		"entity_base_field_info", "entity_type_build", "entity_type_alter",
		"page_attachments", "page_attachments_alter", "page_top", "page_bottom",
		"preprocess", "preprocess_page", "preprocess_node", "preprocess_html", "preprocess_block",
		"preprocess_field", "preprocess_region", "theme_suggestions_alter",
		"block_info", "block_view", "user_login", "user_logout", "user_insert", "user_cancel",
		"views_data", "views_data_alter", "views_pre_render", "views_query_alter",
		"library_info_alter", "library_info_build", "menu_links_discovered_alter",
		"local_tasks_alter", "toolbar", "field_formatter_info", "field_widget_info",
		"module_implements_alter", "rebuild", "cache_flush", "query_alter", "link_alter",
		"cron_queue_info", "element_info_alter", "js_alter", "css_alter", "update_dependencies",
		"post_update", "modules_installed", "modules_uninstalled", "rest_resource_alter",
	}
	sort.SliceStable(hooks, func(i, j int) bool { return len(hooks[i]) > len(hooks[j]) })
	return hooks
}()

func parsePHP(path, text string) ([]types.Symbol, []string) {
	lines, anomalies := scanLines(text, phpLexer)
	drupal := lang.DrupalExtension(path) || lang.DetectSignatures([]byte(text), types.PHP).Drupal
	module := drupalModuleName(path)

	var (
		syms []types.Symbol
		open stack
	)
	for i, ln := range lines {
		open.advance(i)
		code := ln.code

		if m := phpNamespaceRe.FindStringSubmatch(code); m != nil {
			end := span(lines, i)
			syms = append(syms, sym(m[1], types.Module, i, end, ""))
			if end > i {
				open.push(container{name: m[1], kind: namespaceContainer, depth: ln.depth, end: end})
			}
			continue
		}
		if m := phpTypeRe.FindStringSubmatch(code); m != nil {
			kind := types.Type
			if m[1] == "interface" {
				kind = types.Interface
			}
			end := span(lines, i)
			syms = append(syms, sym(m[2], kind, i, end, ""))
			open.push(container{name: m[2], kind: typeContainer, depth: ln.depth, end: end})
			continue
		}
		m := phpFunctionRe.FindStringSubmatch(code)
		if m == nil {
			continue
		}
		end := span(lines, i)
		switch parent, ok := open.directParent(ln.depth); {
		case ok && parent.kind == typeContainer:
			syms = append(syms, sym(m[1], types.Method, i, end, parent.name))
		case drupal && !open.inside(functionContainer):
			if owner, isHook := drupalHook(m[1], module, docblock(lines, i)); isHook {
				syms = append(syms, sym(m[1], types.Hook, i, end, owner))
			} else {
				syms = append(syms, sym(m[1], types.Function, i, end, ""))
			}
		default:
			syms = append(syms, sym(m[1], types.Function, i, end, ""))
		}
		open.push(container{name: m[1], kind: functionContainer, depth: ln.depth, end: end})
	}
	return syms, anomalies
}

// drupalHook decides whether a top-level function implements a Drupal hook
// and returns the module that owns it.
func drupalHook(name, module, doc string) (string, bool) {
	if m := phpImplementsRe.FindStringSubmatch(doc); m != nil {
		hook := strings.ToLower(m[1])
		if owner, ok := strings.CutSuffix(name, "_"+hook); ok && owner != "" {
			return owner, true
		}
		if module != "" && strings.HasPrefix(name, module+"_") {
			return module, true
		}
		if i := strings.IndexByte(name, '_'); i > 0 {
			return name[:i], true
		}
	}
	if module != "" {
		if IsDrupalHook(name, module) {
			return module, true
		}
		return "", false
	}
	for _, re := range []*regexp.Regexp{phpFormAlterRe, phpUpdateRe} {
		if m := re.FindStringSubmatch(name); m != nil {
			return m[1], true
		}
	}
	for _, hook := range drupalHooks {
		if owner, ok := strings.CutSuffix(name, "_"+hook); ok && owner != "" {
			return owner, true
		}
	}
	return "", false
}

// IsDrupalHook reports whether the function name implements a hook for
// module, as "mymodule_menu" or "mymodule_form_node_form_alter" do.
func IsDrupalHook(name, module string) bool {
	rest, ok := strings.CutPrefix(name, module+"_")
	return ok && module != "" && knownHook(rest)
}

// knownHook reports whether name, with the module prefix removed, is a
// recognised hook.
func knownHook(name string) bool {
	for _, hook := range drupalHooks {
		if name == hook {
			return true
		}
	}
	return phpFormAlterRe.MatchString("x_"+name) || phpUpdateRe.MatchString("x_"+name)
}

// docblock returns the raw comment lines directly above line index i.
func docblock(lines []srcLine, i int) string {
	var parts []string
	for k := i - 1; k >= 0 && k >= i-docblockLookback; k-- {
		t := strings.TrimSpace(lines[k].text)
		if t == "" && len(parts) == 0 {
			continue
		}
		if !strings.HasPrefix(t, "*") && !strings.HasPrefix(t, "/*") && !strings.HasPrefix(t, "//") && !strings.HasPrefix(t, "#") {
			break
		}
		parts = append(parts, t)
	}
	return strings.Join(parts, "\n")
}

// drupalModuleName returns the module machine name for Drupal module files:
// "mymodule" for both "mymodule.module" and "mymodule.admin.inc".
func drupalModuleName(path string) string {
	if path == "" || !lang.DrupalExtension(path) {
		return ""
	}
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}
