package textlayer

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Doc abstracts an opened PDF for text extraction.
type Doc interface {
	NumPage() int
	// Runs returns the text runs of page i (0-based) in content order.
	Runs(i int) ([]string, error)
	Close() error
}

// Opener abstracts opening PDF bytes into a Doc. Name identifies the backend
// and takes part in match cache keys.
type Opener interface {
	Name() string
	Open(data []byte) (Doc, error)
}

// JoinPolicy describes how runs of a page become the single string markers
// are matched against.
type JoinPolicy struct {
	Separator  string
	DecodeRuns bool // percent-decode each run before joining
}

// DefaultPolicy joins runs with a single space after percent-decoding each one.
var DefaultPolicy = JoinPolicy{Separator: " ", DecodeRuns: true}

// Backend names accepted by New.
const (
	BackendFitz = "fitz"
	BackendPDF  = "pdf"
)

// ErrUnknownBackend is returned by New for an unrecognised backend name.
var ErrUnknownBackend = errors.New("unknown text backend")

// New returns the Opener registered under name.
func New(name string) (Opener, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendFitz:
		return FitzOpener{}, nil
	case BackendPDF:
		return PDFOpener{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// PageTexts opens data with o and returns the joined text of every page in
// document order.
func PageTexts(o Opener, data []byte, policy JoinPolicy) ([]string, error) {
	if o == nil {
		return nil, errors.New("no text backend configured")
	}
	d, err := o.Open(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer d.Close()

	n := d.NumPage()
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		runs, err := d.Runs(i)
		if err != nil {
			return nil, fmt.Errorf("text page %d: %w", i, err)
		}
		out = append(out, Join(runs, policy))
	}
	return out, nil
}

// Join applies policy to runs.
func Join(runs []string, policy JoinPolicy) string {
	if !policy.DecodeRuns {
		return strings.Join(runs, policy.Separator)
	}
	decoded := make([]string, len(runs))
	for i, r := range runs {
		decoded[i] = DecodeRun(r)
	}
	return strings.Join(decoded, policy.Separator)
}

// DecodeRun percent-decodes r. A run holding an invalid escape (a literal
// "18%" in extracted text, say) is returned unchanged.
func DecodeRun(r string) string {
	if !strings.Contains(r, "%") {
		return r
	}
	s, err := url.PathUnescape(r)
	if err != nil {
		return r
	}
	return s
}
