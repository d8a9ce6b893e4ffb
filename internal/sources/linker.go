// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sources

import (
	"net/url"
	"strings"

	"github.com/epistemic-technology/termchat/internal/model"
)

// =============================================================================
// LINKER
// =============================================================================

// Linker resolves source file paths to page URLs on the site.
//
// A path under ContentDir (every path, when ContentDir is empty) is made relative and its trailing ".md" replaced
// by "/"; any other path is passed through unchanged. The result is then
// resolved against Origin.
type Linker struct {
	origin     *url.URL
	contentDir string
}

// NewLinker creates a linker. An unparsable origin resolves paths as-is.
func NewLinker(origin, contentDir string) *Linker {
	l := &Linker{contentDir: contentDir}
	if u, err := url.Parse(origin); err == nil && origin != "" {
		l.origin = u
	}
	return l
}

// Origin returns the configured site origin.
func (l *Linker) Origin() string {
	if l == nil || l.origin == nil {
		return ""
	}
	return l.origin.String()
}

// ContentDir returns the configured content base directory.
func (l *Linker) ContentDir() string {
	if l == nil {
		return ""
	}
	return l.contentDir
}

// URL returns the page URL for a source file path.
func (l *Linker) URL(filePath string) string {
	return l.Resolve(l.RelativePath(filePath))
}

// SourceURL returns the page URL for a source.
func (l *Linker) SourceURL(src model.Source) string {
	return l.URL(src.FilePath)
}

// RelativePath strips the content directory and maps "x.md" to "x/".
func (l *Linker) RelativePath(filePath string) string {
	if l == nil || !strings.HasPrefix(filePath, l.contentDir) {
		return filePath
	}
	rel := strings.TrimPrefix(filePath, l.contentDir)
	if strings.HasSuffix(rel, ".md") {
		rel = strings.TrimSuffix(rel, ".md") + "/"
	}
	return rel
}

// Resolve resolves a site-relative reference against the origin.
func (l *Linker) Resolve(ref string) string {
	if l == nil || l.origin == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return l.origin.ResolveReference(u).String()
}
