package scan

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/local/pagesift/internal/pdferr"
)

// Ext is the only file extension the scanner picks up.
const Ext = ".pdf"

// Entry is a candidate input file.
type Entry struct {
	Name string
	Path string
}

// Dir lists the regular entries of dir whose name ends in Ext, in directory
// read order. Subdirectories are not descended into.
func Dir(dir string) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, pdferr.Filesystem("read dir", dir, err)
	}
	out := make([]Entry, 0, len(des))
	for _, de := range des {
		if de.IsDir() || !strings.HasSuffix(de.Name(), Ext) {
			continue
		}
		out = append(out, Entry{Name: de.Name(), Path: filepath.Join(dir, de.Name())})
	}
	return out, nil
}

// Read loads the whole file.
func Read(e Entry) ([]byte, error) {
	data, err := os.ReadFile(e.Path)
	if err != nil {
		return nil, pdferr.Filesystem("read file", e.Path, err)
	}
	return data, nil
}

// Sniff reports the MIME type detected from magic bytes and whether it is a
// PDF. It never filters; callers only log it.
func Sniff(data []byte) (string, bool) {
	mt := mimetype.Detect(data)
	return mt.String(), mt.Is("application/pdf")
}
