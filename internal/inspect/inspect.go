// Package inspect runs local pre-flight checks on documents before they are
// shipped to the OCR provider.
package inspect

import (
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/jackzampolin/docr/internal/ocrerr"
)

// PDFInfo describes a local PDF document.
type PDFInfo struct {
	Path      string
	PageCount int
	SizeBytes int64
}

// PDF validates that path is a readable PDF and returns its page count.
func PDF(path string) (*PDFInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ocrerr.Wrap(ocrerr.KindFileAccess, err, "error reading file").WithPath(path)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, ocrerr.Wrap(ocrerr.KindFileAccess, err, "error reading file").WithPath(path)
	}

	pageCount, err := api.PageCount(f, nil)
	if err != nil {
		return nil, ocrerr.Wrap(ocrerr.KindUnsupportedFileType, err, "not a valid PDF").WithPath(path)
	}

	return &PDFInfo{
		Path:      path,
		PageCount: pageCount,
		SizeBytes: stat.Size(),
	}, nil
}
