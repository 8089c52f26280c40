package types

import (
	"path/filepath"
	"strings"
)

// DocumentClass selects how text is extracted from a stored artifact
type DocumentClass string

const (
	DocumentClassPlain  DocumentClass = "plain"
	DocumentClassPDF    DocumentClass = "pdf"
	DocumentClassOpaque DocumentClass = "opaque"
)

var plainTextExtensions = map[string]struct{}{
	".txt": {}, ".md": {}, ".json": {}, ".xml": {}, ".html": {}, ".htm": {},
	".css": {}, ".js": {}, ".java": {}, ".py": {}, ".sql": {}, ".log": {},
	".csv": {}, ".properties": {}, ".yaml": {}, ".yml": {}, ".ini": {},
	".conf": {}, ".config": {}, ".sh": {}, ".bat": {}, ".ps1": {},
}

// Extension returns the lower-cased extension of name including the dot,
// or "" if name has none.
func Extension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// ClassifyExtension maps a lower-cased extension (".txt") to its class
func ClassifyExtension(ext string) DocumentClass {
	ext = strings.ToLower(ext)
	if _, ok := plainTextExtensions[ext]; ok {
		return DocumentClassPlain
	}
	if ext == ".pdf" {
		return DocumentClassPDF
	}
	return DocumentClassOpaque
}

// ClassifyName is ClassifyExtension(Extension(name))
func ClassifyName(name string) DocumentClass {
	return ClassifyExtension(Extension(name))
}

// String returns the string representation of the class
func (c DocumentClass) String() string {
	return string(c)
}
