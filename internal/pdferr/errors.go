package pdferr

import "fmt"

// FilesystemError reports a missing or unreadable input directory or an
// unwritable output path.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("filesystem: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// ParseError reports PDF content that the text or composition backend could
// not parse.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IndexOutOfRangeError reports a requested page index outside [0, PageCount).
type IndexOutOfRangeError struct {
	Path      string
	Index     int
	PageCount int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("page index %d out of range for %s (document has %d pages)", e.Index, e.Path, e.PageCount)
}

// Filesystem wraps err as a *FilesystemError.
func Filesystem(op, path string, err error) error {
	return &FilesystemError{Op: op, Path: path, Err: err}
}

// Parse wraps err as a *ParseError.
func Parse(path string, err error) error {
	return &ParseError{Path: path, Err: err}
}
