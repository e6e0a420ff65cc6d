// Package docref holds the document reference predicates shared by the
// dispatcher and the OCR providers: URL detection and the supported
// file extension set.
package docref

import (
	"path/filepath"
	"strings"
)

// urlPrefixes is the allow-list of URL schemes. A reference matching one of
// these is always treated as a URL, never as a local path.
var urlPrefixes = []string{"http://", "https://"}

// defaultExtensions are the file suffixes the OCR provider accepts.
var defaultExtensions = []string{
	".pdf",
	".png",
	".jpg", ".jpeg",
	".tiff", ".tif",
	".bmp",
}

// ExtensionSet is an immutable, case-insensitive set of file suffixes used
// as a filter predicate.
type ExtensionSet struct {
	exts map[string]struct{}
}

// NewExtensionSet builds a set from the given suffixes. Suffixes are
// lowercased and get a leading dot if missing. An empty list yields the
// default supported set.
func NewExtensionSet(exts ...string) ExtensionSet {
	if len(exts) == 0 {
		exts = defaultExtensions
	}
	m := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		m[e] = struct{}{}
	}
	return ExtensionSet{exts: m}
}

// DefaultExtensions returns the default supported set.
func DefaultExtensions() ExtensionSet {
	return NewExtensionSet()
}

// Contains reports whether path's lowercase suffix is in the set.
func (s ExtensionSet) Contains(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := s.exts[ext]
	return ok
}

// List returns the suffixes in the set. Order is not defined.
func (s ExtensionSet) List() []string {
	out := make([]string, 0, len(s.exts))
	for e := range s.exts {
		out = append(out, e)
	}
	return out
}

// IsURL reports whether ref starts with an allow-listed URL prefix.
func IsURL(ref string) bool {
	for _, p := range urlPrefixes {
		if strings.HasPrefix(ref, p) {
			return true
		}
	}
	return false
}
