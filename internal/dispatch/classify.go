package dispatch

import (
	"os"

	"github.com/jackzampolin/docr/internal/docref"
)

// InputKind is the classification of an input reference.
type InputKind string

const (
	KindURL       InputKind = "url"
	KindFile      InputKind = "file"
	KindDirectory InputKind = "directory"
	KindInvalid   InputKind = "invalid"
)

// Classify determines what an input string refers to. The URL check runs
// before any filesystem check: a URL is never a valid local path, and a
// same-named file on disk must not shadow it. Order is URL > file >
// directory > invalid.
func Classify(input string) InputKind {
	if docref.IsURL(input) {
		return KindURL
	}
	info, err := os.Stat(input)
	if err != nil {
		return KindInvalid
	}
	if info.Mode().IsRegular() {
		return KindFile
	}
	if info.IsDir() {
		return KindDirectory
	}
	return KindInvalid
}
