package inspect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jackzampolin/docr/internal/ocrerr"
)

func TestPDF(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := PDF("/does/not/exist.pdf")
		if !ocrerr.IsKind(err, ocrerr.KindFileAccess) {
			t.Errorf("expected file_access, got %v", err)
		}
	})

	t.Run("not a PDF", func(t *testing.T) {
		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, "bogus.pdf")
		if err := os.WriteFile(path, []byte("this is not a pdf"), 0o644); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}

		_, err := PDF(path)
		if !ocrerr.IsKind(err, ocrerr.KindUnsupportedFileType) {
			t.Errorf("expected unsupported_file_type, got %v", err)
		}
	})
}
