package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/local/pagesift/internal/compose"
	"github.com/local/pagesift/internal/pdferr"
)

// Writer stores finished output documents as <dir>/<name>.pdf.
type Writer struct {
	dir      string
	composer *compose.Composer
}

// NewWriter returns a Writer rooted at dir.
func NewWriter(dir string, c *compose.Composer) *Writer {
	return &Writer{dir: dir, composer: c}
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// Path returns where the document called name is written.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name+".pdf")
}

// Prepare creates the output directory if it does not exist yet.
func (w *Writer) Prepare() error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return pdferr.Filesystem("create dir", w.dir, err)
	}
	return nil
}

// Write serializes target and writes it, replacing any existing file.
func (w *Writer) Write(target *compose.OutputDocument) (string, error) {
	data, err := w.composer.Bytes(target)
	if err != nil {
		return "", fmt.Errorf("serialize %s: %w", target.Name, err)
	}
	if err := w.Prepare(); err != nil {
		return "", err
	}
	p := w.Path(target.Name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", pdferr.Filesystem("write file", p, err)
	}
	log.Info().Str("file", p).Int("pages", target.PageCount()).Int("bytes", len(data)).Msg("output written")
	return p, nil
}
